package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/cricledger/auction-backend/internal/domain"
)

// TeamLedger is an in-memory domain.TeamLedger with the same semantics as
// the postgres adapter. It backs tests and database-less local runs.
type TeamLedger struct {
	mu          sync.Mutex
	teams       map[uuid.UUID]domain.Team
	commitments map[uuid.UUID]commitment // keyed by player id
}

type commitment struct {
	teamID uuid.UUID
	amount domain.Money
}

// NewTeamLedger creates a ledger seeded with the given teams.
func NewTeamLedger(teams ...domain.Team) *TeamLedger {
	l := &TeamLedger{
		teams:       make(map[uuid.UUID]domain.Team),
		commitments: make(map[uuid.UUID]commitment),
	}
	for _, t := range teams {
		l.teams[t.ID] = t
	}
	return l
}

// AddTeam registers a team after construction.
func (l *TeamLedger) AddTeam(team domain.Team) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.teams[team.ID] = team
}

// RemainingBudget returns the team's purse minus its finalized commitments.
func (l *TeamLedger) RemainingBudget(ctx context.Context, teamID uuid.UUID) (domain.Money, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	team, ok := l.teams[teamID]
	if !ok {
		return domain.Money{}, fmt.Errorf("%w: %s", domain.ErrTeamNotFound, teamID)
	}
	return team.TotalPurse.Sub(l.committedLocked(teamID))
}

// Commit debits the team for a won player. The ledger mutex makes the
// solvency check and the debit one atomic step across teams and players.
func (l *TeamLedger) Commit(ctx context.Context, teamID, playerID uuid.UUID, amount domain.Money) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	team, ok := l.teams[teamID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTeamNotFound, teamID)
	}
	if _, taken := l.commitments[playerID]; taken {
		return fmt.Errorf("%w: player %s has already been assigned", domain.ErrAlreadyExists, playerID)
	}

	committed := l.committedLocked(teamID).Add(amount)
	if committed.GreaterThan(team.TotalPurse) {
		return fmt.Errorf("%w: committing %s would exceed team %s purse %s",
			domain.ErrInsufficientBudget, amount, teamID, team.TotalPurse)
	}

	l.commitments[playerID] = commitment{teamID: teamID, amount: amount}
	return nil
}

// TeamBudgets returns the purse summary for every team, sorted by name.
func (l *TeamLedger) TeamBudgets(ctx context.Context) ([]domain.TeamBudget, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	budgets := make([]domain.TeamBudget, 0, len(l.teams))
	for id, team := range l.teams {
		committed := l.committedLocked(id)
		remaining, err := team.TotalPurse.Sub(committed)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, domain.TeamBudget{
			TeamID:     id,
			Name:       team.Name,
			TotalPurse: team.TotalPurse,
			Committed:  committed,
			Remaining:  remaining,
		})
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Name < budgets[j].Name })
	return budgets, nil
}

// Assignments returns the player -> team mapping of finalized sales.
func (l *TeamLedger) Assignments(ctx context.Context) (map[uuid.UUID]uuid.UUID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	assignments := make(map[uuid.UUID]uuid.UUID, len(l.commitments))
	for playerID, c := range l.commitments {
		assignments[playerID] = c.teamID
	}
	return assignments, nil
}

func (l *TeamLedger) committedLocked(teamID uuid.UUID) domain.Money {
	var total domain.Money
	for _, c := range l.commitments {
		if c.teamID == teamID {
			total = total.Add(c.amount)
		}
	}
	return total
}
