package domain

import "github.com/google/uuid"

// Role is the coarse authorization role of a caller.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Caller identifies the principal invoking an engine operation. The
// transport resolves credentials to a Caller; the engine only consults the
// role through the AuthorizationGate.
type Caller struct {
	ID   uuid.UUID
	Role Role
}
