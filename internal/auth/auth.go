package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/cricledger/auction-backend/internal/domain"
)

// TokenRegistry resolves bearer tokens to callers. Tokens are opaque
// strings provisioned at startup; anything unknown stays unauthenticated.
type TokenRegistry struct {
	mu     sync.RWMutex
	tokens map[string]domain.Caller
}

// NewTokenRegistry creates an empty registry.
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{tokens: make(map[string]domain.Caller)}
}

// Register binds a token to a caller with the given role. The caller id is
// minted here; identity management lives outside this service.
func (r *TokenRegistry) Register(token string, role domain.Role) domain.Caller {
	caller := domain.Caller{ID: uuid.New(), Role: role}
	r.mu.Lock()
	r.tokens[token] = caller
	r.mu.Unlock()
	return caller
}

// Resolve looks a token up.
func (r *TokenRegistry) Resolve(token string) (domain.Caller, bool) {
	r.mu.RLock()
	caller, ok := r.tokens[token]
	r.mu.RUnlock()
	return caller, ok
}

// RoleGate is the AuthorizationGate over caller roles: only admins may run
// privileged lifecycle operations.
type RoleGate struct{}

// IsPrivileged reports whether the caller holds the admin role.
func (RoleGate) IsPrivileged(caller domain.Caller) bool {
	return caller.Role == domain.RoleAdmin
}

type callerContextKey struct{}

// WithCaller stores the authenticated caller on the context.
func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey{}, caller)
}

// CallerFrom returns the authenticated caller, or a guest when none was
// attached.
func CallerFrom(ctx context.Context) domain.Caller {
	if caller, ok := ctx.Value(callerContextKey{}).(domain.Caller); ok {
		return caller
	}
	return domain.Caller{Role: domain.RoleGuest}
}
