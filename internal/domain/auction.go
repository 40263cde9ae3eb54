package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuctionStatus is the lifecycle state of a player's auction. A player
// with no record at all has not been put up for auction yet.
type AuctionStatus string

const (
	StatusActive    AuctionStatus = "ACTIVE"
	StatusStopped   AuctionStatus = "STOPPED"
	StatusFinalized AuctionStatus = "FINALIZED"
)

// AuctionRecord is the per-player auction state: one record per player,
// created when bidding opens and retained forever as the audit trail of
// the sale. Status only moves forward (ACTIVE -> STOPPED -> FINALIZED).
type AuctionRecord struct {
	PlayerID            uuid.UUID     `json:"playerId"`
	Status              AuctionStatus `json:"status"`
	StartingBid         Money         `json:"startingBid"`
	HighestBid          Money         `json:"highestBid"`
	HighestBidderTeamID *uuid.UUID    `json:"highestBidTeamId,omitempty"`
	FixedIncrement      bool          `json:"fixedIncrement"`
	StartedAt           time.Time     `json:"startedAt"`
	StoppedAt           *time.Time    `json:"stoppedAt,omitempty"`
	FinalizedAt         *time.Time    `json:"finalizedAt,omitempty"`
}

// NewAuctionRecord opens an auction for a player. The starting bid must be
// strictly positive; HighestBid starts at the starting bid with no bidder.
func NewAuctionRecord(playerID uuid.UUID, startingBid Money, fixedIncrement bool, now time.Time) (*AuctionRecord, error) {
	if !startingBid.IsPositive() {
		return nil, fmt.Errorf("%w: starting bid must be greater than zero", ErrInvalidAmount)
	}
	return &AuctionRecord{
		PlayerID:       playerID,
		Status:         StatusActive,
		StartingBid:    startingBid,
		HighestBid:     startingBid,
		FixedIncrement: fixedIncrement,
		StartedAt:      now,
	}, nil
}

// ApplyBid records an accepted bid. Callers must have validated the bid
// first (see EvaluateBid); this only mutates.
func (r *AuctionRecord) ApplyBid(teamID uuid.UUID, amount Money) {
	team := teamID
	r.HighestBid = amount
	r.HighestBidderTeamID = &team
}

// Stop closes bidding on an active auction.
func (r *AuctionRecord) Stop(now time.Time) error {
	if r.Status != StatusActive {
		return ErrAlreadyStopped
	}
	r.Status = StatusStopped
	stopped := now
	r.StoppedAt = &stopped
	return nil
}

// CanFinalize reports whether the record may be sealed: it must be stopped
// and must have at least one accepted bid.
func (r *AuctionRecord) CanFinalize() error {
	switch r.Status {
	case StatusActive:
		return ErrNotStopped
	case StatusFinalized:
		return ErrAlreadyFinalized
	}
	if r.HighestBidderTeamID == nil {
		return ErrNoBids
	}
	return nil
}

// Finalize seals the record. The ledger debit for the winning team must
// already have succeeded; after this call the record is immutable.
func (r *AuctionRecord) Finalize(now time.Time) error {
	if err := r.CanFinalize(); err != nil {
		return err
	}
	r.Status = StatusFinalized
	finalized := now
	r.FinalizedAt = &finalized
	return nil
}

// Snapshot returns a value copy that shares no pointers with the record,
// so readers can never alias engine-owned state.
func (r *AuctionRecord) Snapshot() AuctionRecord {
	snap := *r
	if r.HighestBidderTeamID != nil {
		team := *r.HighestBidderTeamID
		snap.HighestBidderTeamID = &team
	}
	if r.StoppedAt != nil {
		stopped := *r.StoppedAt
		snap.StoppedAt = &stopped
	}
	if r.FinalizedAt != nil {
		finalized := *r.FinalizedAt
		snap.FinalizedAt = &finalized
	}
	return snap
}
