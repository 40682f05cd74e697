package settlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/bankroll"
	"github.com/radieske/value-bet-platform/internal/betting"
	"github.com/radieske/value-bet-platform/pkg/contracts/events"
)

type fakeROI struct{ users []string }

func (f *fakeROI) RecalculateROI(_ context.Context, userID string) (float64, error) {
	f.users = append(f.users, userID)
	return 0, nil
}

type fakeFinisher struct{ finished []string }

func (f *fakeFinisher) MarkMatchFinished(_ context.Context, matchID string) error {
	f.finished = append(f.finished, matchID)
	return nil
}

func newTestWorker(t *testing.T) (*Worker, *betting.MemoryRepo, *bankroll.Memory, *fakeROI, *fakeFinisher) {
	t.Helper()
	bets := betting.NewMemoryRepo()
	ledger := bankroll.NewMemory()
	roi := &fakeROI{}
	fin := &fakeFinisher{}
	w := &Worker{
		Log:     zap.NewNop(),
		Service: betting.NewService(zap.NewNop(), bets, ledger),
		Bets:    bets,
		Ledger:  roi,
		Matches: fin,
	}
	return w, bets, ledger, roi, fin
}

func place(t *testing.T, w *Worker, userID, matchID, outcome string, simulation bool) *betting.Bet {
	t.Helper()
	bet, err := w.Service.Place(context.Background(), betting.PlaceParams{
		UserID:     userID,
		MatchID:    matchID,
		Outcome:    outcome,
		StakeCents: 10_000,
		Odds:       2.0,
		Simulation: simulation,
	})
	require.NoError(t, err)
	return bet
}

func TestProcessResult(t *testing.T) {
	ctx := context.Background()

	t.Run("settles winners and losers by picked outcome", func(t *testing.T) {
		w, bets, ledger, _, fin := newTestWorker(t)
		won := place(t, w, "u1", "m1", "home", false)
		lost := place(t, w, "u2", "m1", "away", false)

		err := w.processResult(ctx, events.MatchResult{MatchID: "m1", Result: "home"})
		require.NoError(t, err)

		got, err := bets.Get(ctx, won.ID)
		require.NoError(t, err)
		assert.Equal(t, betting.StatusWon, got.Status)
		assert.Equal(t, won.PotentialPayoutCents, got.ActualPayoutCents)

		got, err = bets.Get(ctx, lost.ID)
		require.NoError(t, err)
		assert.Equal(t, betting.StatusLost, got.Status)
		assert.Zero(t, got.ActualPayoutCents)

		b, err := ledger.GetOrCreate(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(110_000), b.BalanceCents)

		assert.Equal(t, []string{"m1"}, fin.finished)
	})

	t.Run("void result refunds every pending bet", func(t *testing.T) {
		w, bets, ledger, _, _ := newTestWorker(t)
		bet := place(t, w, "u1", "m1", "draw", false)

		require.NoError(t, w.processResult(ctx, events.MatchResult{MatchID: "m1", Result: "void"}))

		got, err := bets.Get(ctx, bet.ID)
		require.NoError(t, err)
		assert.Equal(t, betting.StatusVoid, got.Status)

		b, err := ledger.GetOrCreate(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(100_000), b.BalanceCents)
	})

	t.Run("only touches bets of the settled match", func(t *testing.T) {
		w, bets, _, _, _ := newTestWorker(t)
		other := place(t, w, "u1", "m2", "home", false)

		require.NoError(t, w.processResult(ctx, events.MatchResult{MatchID: "m1", Result: "home"}))

		got, err := bets.Get(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, betting.StatusPending, got.Status)
	})

	t.Run("recalculates roi only for real-balance users", func(t *testing.T) {
		w, _, _, roi, _ := newTestWorker(t)
		place(t, w, "real", "m1", "home", false)
		place(t, w, "sim", "m1", "home", true)

		require.NoError(t, w.processResult(ctx, events.MatchResult{MatchID: "m1", Result: "home"}))

		assert.Equal(t, []string{"real"}, roi.users)
	})

	t.Run("redelivery settles nothing twice", func(t *testing.T) {
		w, _, ledger, _, fin := newTestWorker(t)
		place(t, w, "u1", "m1", "home", false)

		require.NoError(t, w.processResult(ctx, events.MatchResult{MatchID: "m1", Result: "home"}))
		require.NoError(t, w.processResult(ctx, events.MatchResult{MatchID: "m1", Result: "home"}))

		b, err := ledger.GetOrCreate(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(110_000), b.BalanceCents)
		assert.Equal(t, []string{"m1", "m1"}, fin.finished)
	})
}

func TestValidateResult(t *testing.T) {
	assert.NoError(t, validateResult(events.MatchResult{MatchID: "m1", Result: "home"}))
	assert.NoError(t, validateResult(events.MatchResult{MatchID: "m1", Result: "void"}))
	assert.Error(t, validateResult(events.MatchResult{Result: "home"}))
	assert.Error(t, validateResult(events.MatchResult{MatchID: "m1", Result: "postponed"}))
}
