package domain

import "errors"

// Sentinel errors for every outcome the auction engine can report.
// Callers match with errors.Is; messages are presentation hints only.
var (
	ErrAlreadyExists      = errors.New("auction for this player already exists")
	ErrNotFound           = errors.New("auction does not exist")
	ErrTeamNotFound       = errors.New("team does not exist")
	ErrNotActive          = errors.New("auction is not active")
	ErrAlreadyStopped     = errors.New("auction has already been stopped")
	ErrNotStopped         = errors.New("auction has not been stopped")
	ErrAlreadyFinalized   = errors.New("auction has already been finalized")
	ErrNoBids             = errors.New("cannot finalize an auction without any bids")
	ErrNotHigher          = errors.New("bid is not higher than the current highest bid")
	ErrIncrementMismatch  = errors.New("bid increment mismatch")
	ErrInsufficientBudget = errors.New("insufficient remaining budget")
	ErrUnauthorized       = errors.New("caller is not authorized")
	ErrInvalidAmount      = errors.New("invalid amount")
)

// ErrorKind returns a stable tag for an engine error, suitable for metric
// labels and wire responses. Unrecognized errors map to "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTeamNotFound):
		return "team_not_found"
	case errors.Is(err, ErrNotActive):
		return "not_active"
	case errors.Is(err, ErrAlreadyStopped):
		return "already_stopped"
	case errors.Is(err, ErrNotStopped):
		return "not_stopped"
	case errors.Is(err, ErrAlreadyFinalized):
		return "already_finalized"
	case errors.Is(err, ErrNoBids):
		return "no_bids"
	case errors.Is(err, ErrNotHigher):
		return "not_higher"
	case errors.Is(err, ErrIncrementMismatch):
		return "increment_mismatch"
	case errors.Is(err, ErrInsufficientBudget):
		return "insufficient_budget"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	default:
		return "internal"
	}
}
