package auction

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cricledger/auction-backend/internal/domain"
	"github.com/cricledger/auction-backend/internal/metrics"
)

// Service is the player auction engine. It owns one AuctionRecord per
// player and serializes all mutations per player: operations on different
// players proceed independently, operations on the same player are
// linearized behind that player's lock.
type Service struct {
	ledger  domain.TeamLedger
	gate    domain.AuthorizationGate
	logger  *slog.Logger
	metrics *metrics.Recorder

	mu      sync.Mutex
	entries map[uuid.UUID]*auctionEntry

	now func() time.Time
}

// auctionEntry bundles a record with the lock that serializes it.
type auctionEntry struct {
	mu  sync.Mutex
	rec *domain.AuctionRecord
}

// NewService creates the engine. The metrics recorder may be nil.
func NewService(ledger domain.TeamLedger, gate domain.AuthorizationGate, logger *slog.Logger, rec *metrics.Recorder) *Service {
	return &Service{
		ledger:  ledger,
		gate:    gate,
		logger:  logger,
		metrics: rec,
		entries: make(map[uuid.UUID]*auctionEntry),
		now:     time.Now,
	}
}

// Start opens an auction for a player at the given starting bid.
// Privileged callers only. Fails with ErrAlreadyExists when any record
// exists for the player; a finalized auction is never reopened.
func (s *Service) Start(ctx context.Context, caller domain.Caller, playerID uuid.UUID, startingBid domain.Money, fixedIncrement bool) (err error) {
	defer func() { s.metrics.OperationHandled("start", err) }()

	if !s.gate.IsPrivileged(caller) {
		return fmt.Errorf("%w: starting an auction requires the admin role", domain.ErrUnauthorized)
	}

	rec, err := domain.NewAuctionRecord(playerID, startingBid, fixedIncrement, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	if _, exists := s.entries[playerID]; exists {
		s.mu.Unlock()
		return domain.ErrAlreadyExists
	}
	s.entries[playerID] = &auctionEntry{rec: rec}
	s.mu.Unlock()

	s.metrics.AuctionStarted()
	s.logger.Info("auction started",
		"playerId", playerID,
		"startingBid", startingBid,
		"fixedIncrement", fixedIncrement)
	return nil
}

// PlaceBid submits a bid for a team on an active auction. Any
// authenticated (non-guest) caller may bid; team ownership is enforced by
// the authorization collaborator outside the engine.
//
// The remaining budget is read before the per-player lock is taken: only
// finalized commitments count against a team at validation time, so the
// read does not need to be atomic with the bid itself.
func (s *Service) PlaceBid(ctx context.Context, caller domain.Caller, playerID, teamID uuid.UUID, amount domain.Money) (err error) {
	defer func() {
		s.metrics.OperationHandled("bid", err)
		if err != nil {
			s.metrics.BidRejected(err)
		}
	}()

	if caller.Role == domain.RoleGuest {
		return fmt.Errorf("%w: guests cannot bid", domain.ErrUnauthorized)
	}

	entry, ok := s.entryFor(playerID)
	if !ok {
		return domain.ErrNotFound
	}

	remaining, err := s.ledger.RemainingBudget(ctx, teamID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	switch entry.rec.Status {
	case domain.StatusStopped, domain.StatusFinalized:
		return domain.ErrAlreadyStopped
	}
	if err := domain.EvaluateBid(entry.rec, teamID, amount, remaining); err != nil {
		s.logger.Debug("bid rejected",
			"playerId", playerID,
			"teamId", teamID,
			"amount", amount,
			"reason", domain.ErrorKind(err))
		return err
	}
	entry.rec.ApplyBid(teamID, amount)

	s.logger.Info("bid accepted",
		"playerId", playerID,
		"teamId", teamID,
		"amount", amount)
	return nil
}

// Stop closes bidding on an active auction. Privileged callers only.
func (s *Service) Stop(ctx context.Context, caller domain.Caller, playerID uuid.UUID) (err error) {
	defer func() { s.metrics.OperationHandled("stop", err) }()

	if !s.gate.IsPrivileged(caller) {
		return fmt.Errorf("%w: stopping an auction requires the admin role", domain.ErrUnauthorized)
	}

	entry, ok := s.entryFor(playerID)
	if !ok {
		return domain.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.rec.Stop(s.now()); err != nil {
		return err
	}
	s.logger.Info("auction stopped", "playerId", playerID, "highestBid", entry.rec.HighestBid)
	return nil
}

// Finalize seals a stopped auction: it debits the winning team's ledger by
// the highest bid and records the player as assigned, atomically. Either
// both the ledger commit and the status transition take effect, or
// neither: a failed commit leaves the record stopped and re-finalizable.
// Privileged callers only.
func (s *Service) Finalize(ctx context.Context, caller domain.Caller, playerID uuid.UUID) (err error) {
	defer func() { s.metrics.OperationHandled("finalize", err) }()

	if !s.gate.IsPrivileged(caller) {
		return fmt.Errorf("%w: finalizing an auction requires the admin role", domain.ErrUnauthorized)
	}

	entry, ok := s.entryFor(playerID)
	if !ok {
		return domain.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.rec.CanFinalize(); err != nil {
		return err
	}
	winner := *entry.rec.HighestBidderTeamID
	price := entry.rec.HighestBid

	// The one external call allowed under the per-player lock: a single
	// atomic debit-and-assign against the ledger.
	if err := s.ledger.Commit(ctx, winner, playerID, price); err != nil {
		return err
	}
	if err := entry.rec.Finalize(s.now()); err != nil {
		// CanFinalize passed under the same lock, so this cannot happen.
		return err
	}

	s.metrics.AuctionFinalized()
	s.logger.Info("auction finalized",
		"playerId", playerID,
		"teamId", winner,
		"soldPrice", price)
	return nil
}

// Get returns a snapshot of the player's auction record, if one exists.
// Snapshots share no state with the engine and are safe to retain.
func (s *Service) Get(ctx context.Context, playerID uuid.UUID) (domain.AuctionRecord, bool) {
	entry, ok := s.entryFor(playerID)
	if !ok {
		return domain.AuctionRecord{}, false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.rec.Snapshot(), true
}

// List returns snapshots of every auction record, oldest first.
func (s *Service) List(ctx context.Context) []domain.AuctionRecord {
	s.mu.Lock()
	entries := make([]*auctionEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	snaps := make([]domain.AuctionRecord, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		snaps = append(snaps, e.rec.Snapshot())
		e.mu.Unlock()
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].StartedAt.Before(snaps[j].StartedAt) })
	return snaps
}

func (s *Service) entryFor(playerID uuid.UUID) (*auctionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[playerID]
	return entry, ok
}
