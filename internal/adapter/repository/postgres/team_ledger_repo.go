package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/cricledger/auction-backend/internal/domain"
)

// teamLedger implements domain.TeamLedger
type teamLedger struct {
	db *DB
}

// NewTeamLedger creates a new postgres-backed team ledger
func NewTeamLedger(db *DB) domain.TeamLedger {
	return &teamLedger{db: db}
}

// RemainingBudget returns the team's purse minus the sum of its finalized
// commitments.
func (r *teamLedger) RemainingBudget(ctx context.Context, teamID uuid.UUID) (domain.Money, error) {
	query := `
		SELECT t.total_purse, COALESCE(SUM(c.amount), 0)
		FROM teams t
		LEFT JOIN auction_commitments c ON c.team_id = t.id
		WHERE t.id = $1
		GROUP BY t.total_purse
	`

	var purseStr, committedStr string
	err := r.db.QueryRowContext(ctx, query, teamID).Scan(&purseStr, &committedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Money{}, fmt.Errorf("%w: %s", domain.ErrTeamNotFound, teamID)
		}
		return domain.Money{}, fmt.Errorf("failed to query remaining budget: %w", err)
	}

	return remainingFrom(purseStr, committedStr)
}

// Commit debits the team for a won player inside a single transaction. The
// team row is locked for the duration, so two finalizations for the same
// team cannot both pass the solvency check against a stale total.
func (r *teamLedger) Commit(ctx context.Context, teamID, playerID uuid.UUID, amount domain.Money) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin commit transaction: %w", err)
	}
	defer tx.Rollback()

	var purseStr string
	err = tx.QueryRowContext(ctx,
		`SELECT total_purse FROM teams WHERE id = $1 FOR UPDATE`, teamID,
	).Scan(&purseStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrTeamNotFound, teamID)
		}
		return fmt.Errorf("failed to lock team row: %w", err)
	}
	purse, err := decimal.NewFromString(purseStr)
	if err != nil {
		return fmt.Errorf("failed to parse total_purse: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO auction_commitments (player_id, team_id, amount) VALUES ($1, $2, $3)`,
		playerID, teamID, amount.Decimal().String(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: player %s has already been assigned", domain.ErrAlreadyExists, playerID)
		}
		return fmt.Errorf("failed to insert commitment: %w", err)
	}

	var committedStr string
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM auction_commitments WHERE team_id = $1`, teamID,
	).Scan(&committedStr)
	if err != nil {
		return fmt.Errorf("failed to sum commitments: %w", err)
	}
	committed, err := decimal.NewFromString(committedStr)
	if err != nil {
		return fmt.Errorf("failed to parse committed sum: %w", err)
	}

	if committed.GreaterThan(purse) {
		return fmt.Errorf("%w: committing %s would exceed team %s purse %s",
			domain.ErrInsufficientBudget, amount, teamID, purseStr)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}
	return nil
}

// TeamBudgets returns the purse summary for every team.
func (r *teamLedger) TeamBudgets(ctx context.Context) ([]domain.TeamBudget, error) {
	query := `
		SELECT t.id, t.name, t.total_purse, COALESCE(SUM(c.amount), 0)
		FROM teams t
		LEFT JOIN auction_commitments c ON c.team_id = t.id
		GROUP BY t.id, t.name, t.total_purse
		ORDER BY t.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query team budgets: %w", err)
	}
	defer rows.Close()

	var budgets []domain.TeamBudget
	for rows.Next() {
		var b domain.TeamBudget
		var purseStr, committedStr string
		if err := rows.Scan(&b.TeamID, &b.Name, &purseStr, &committedStr); err != nil {
			return nil, fmt.Errorf("failed to scan team budget: %w", err)
		}
		purse, err := decimal.NewFromString(purseStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse total_purse: %w", err)
		}
		committed, err := decimal.NewFromString(committedStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse committed sum: %w", err)
		}
		if b.TotalPurse, err = domain.NewMoney(purse); err != nil {
			return nil, err
		}
		if b.Committed, err = domain.NewMoney(committed); err != nil {
			return nil, err
		}
		if b.Remaining, err = b.TotalPurse.Sub(b.Committed); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team budgets: %w", err)
	}
	return budgets, nil
}

// Assignments returns the player -> team mapping of finalized sales.
func (r *teamLedger) Assignments(ctx context.Context) (map[uuid.UUID]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT player_id, team_id FROM auction_commitments`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	assignments := make(map[uuid.UUID]uuid.UUID)
	for rows.Next() {
		var playerID, teamID uuid.UUID
		if err := rows.Scan(&playerID, &teamID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments[playerID] = teamID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assignments, nil
}

func remainingFrom(purseStr, committedStr string) (domain.Money, error) {
	purse, err := decimal.NewFromString(purseStr)
	if err != nil {
		return domain.Money{}, fmt.Errorf("failed to parse total_purse: %w", err)
	}
	committed, err := decimal.NewFromString(committedStr)
	if err != nil {
		return domain.Money{}, fmt.Errorf("failed to parse committed sum: %w", err)
	}
	return domain.NewMoney(purse.Sub(committed))
}
