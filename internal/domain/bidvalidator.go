package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// EvaluateBid decides whether a proposed bid is legal given the current
// record and the bidding team's remaining budget. It mutates nothing; the
// engine applies the bid only on a nil return.
//
// The rules run in a fixed order so rejections are deterministic:
// not-active, not-higher, increment-mismatch, insufficient-budget. The
// increment check must fire before the budget check so clients can surface
// the required unit.
func EvaluateBid(rec *AuctionRecord, teamID uuid.UUID, proposed Money, remainingBudget Money) error {
	if rec == nil || rec.Status != StatusActive {
		return ErrNotActive
	}
	if !proposed.GreaterThan(rec.HighestBid) {
		return fmt.Errorf("%w: bid %s is not higher than the current highest bid %s",
			ErrNotHigher, proposed, rec.HighestBid)
	}
	if rec.FixedIncrement && !proposed.IsExactIncrementAbove(rec.HighestBid, FixedIncrementUnit) {
		return fmt.Errorf("%w: bid must be exactly %s higher than the current highest bid %s",
			ErrIncrementMismatch, FixedIncrementUnit, rec.HighestBid)
	}
	if proposed.GreaterThan(remainingBudget) {
		return fmt.Errorf("%w: bid %s exceeds team %s remaining budget %s",
			ErrInsufficientBudget, proposed, teamID, remainingBudget)
	}
	return nil
}
