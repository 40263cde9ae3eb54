package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bigBudget = MustMoney("100")

func TestEvaluateBid_RecordMustBeActive(t *testing.T) {
	teamID := uuid.New()

	assert.ErrorIs(t, EvaluateBid(nil, teamID, MustMoney("2.5"), bigBudget), ErrNotActive)

	rec := newActiveRecord(t, false)
	require.NoError(t, rec.Stop(time.Now()))
	assert.ErrorIs(t, EvaluateBid(rec, teamID, MustMoney("2.5"), bigBudget), ErrNotActive)
}

func TestEvaluateBid_MustBeStrictlyHigher(t *testing.T) {
	rec := newActiveRecord(t, false) // starting bid 2.0
	teamA := uuid.New()
	teamB := uuid.New()

	require.NoError(t, EvaluateBid(rec, teamA, MustMoney("2.5"), bigBudget))
	rec.ApplyBid(teamA, MustMoney("2.5"))

	// Matching the current highest bid is not enough.
	err := EvaluateBid(rec, teamB, MustMoney("2.5"), bigBudget)
	assert.ErrorIs(t, err, ErrNotHigher)

	assert.ErrorIs(t, EvaluateBid(rec, teamB, MustMoney("2.0"), bigBudget), ErrNotHigher)
	require.NoError(t, EvaluateBid(rec, teamB, MustMoney("3.0"), bigBudget))
}

func TestEvaluateBid_FixedIncrement(t *testing.T) {
	rec, err := NewAuctionRecord(uuid.New(), MustMoney("1.0"), true, time.Now())
	require.NoError(t, err)
	teamA := uuid.New()

	err = EvaluateBid(rec, teamA, MustMoney("1.3"), bigBudget)
	assert.ErrorIs(t, err, ErrIncrementMismatch)
	// The message must name the required unit for the client to surface.
	assert.Contains(t, err.Error(), "exactly 0.2 higher")

	assert.NoError(t, EvaluateBid(rec, teamA, MustMoney("1.2"), bigBudget))
}

func TestEvaluateBid_InsufficientBudget(t *testing.T) {
	rec, err := NewAuctionRecord(uuid.New(), MustMoney("1.0"), false, time.Now())
	require.NoError(t, err)
	teamX := uuid.New()

	err = EvaluateBid(rec, teamX, MustMoney("1.5"), MustMoney("1.0"))
	assert.ErrorIs(t, err, ErrInsufficientBudget)

	// Bidding the entire remaining budget is allowed.
	assert.NoError(t, EvaluateBid(rec, teamX, MustMoney("1.5"), MustMoney("1.5")))
}

func TestEvaluateBid_IncrementCheckedBeforeBudget(t *testing.T) {
	rec, err := NewAuctionRecord(uuid.New(), MustMoney("1.0"), true, time.Now())
	require.NoError(t, err)

	// Both rules fail; the increment mismatch must be the reported reason.
	err = EvaluateBid(rec, uuid.New(), MustMoney("5.0"), MustMoney("0.5"))
	assert.ErrorIs(t, err, ErrIncrementMismatch)
	assert.NotErrorIs(t, err, ErrInsufficientBudget)
}
