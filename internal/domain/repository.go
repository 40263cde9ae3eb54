package domain

import (
	"context"

	"github.com/google/uuid"
)

// TeamLedger exposes team purse data and records the debit of a finalized
// sale. The engine queries and debits it; team records themselves are
// managed elsewhere.
type TeamLedger interface {
	// RemainingBudget returns the team's total purse minus the sum of all
	// amounts committed for players already finalized.
	// Returns ErrTeamNotFound for an unknown team.
	RemainingBudget(ctx context.Context, teamID uuid.UUID) (Money, error)

	// Commit atomically debits the team for a won player. It fails with
	// ErrInsufficientBudget when the debit would push the team's committed
	// spend past its total purse, and with ErrAlreadyExists when the player
	// has already been assigned. Commits for the same team are serialized,
	// so two concurrent finalizations can never both pass the solvency
	// check against a stale budget.
	Commit(ctx context.Context, teamID, playerID uuid.UUID, amount Money) error

	// TeamBudgets returns the purse summary for every team.
	TeamBudgets(ctx context.Context) ([]TeamBudget, error)

	// Assignments returns the player -> team mapping of finalized sales.
	Assignments(ctx context.Context) (map[uuid.UUID]uuid.UUID, error)
}

// AuthorizationGate answers whether a caller may invoke privileged
// lifecycle operations (start, stop, finalize).
type AuthorizationGate interface {
	IsPrivileged(caller Caller) bool
}
