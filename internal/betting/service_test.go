package betting

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/bankroll"
)

func newTestService(t *testing.T) (*Service, *bankroll.Memory, *MemoryRepo) {
	t.Helper()
	ledger := bankroll.NewMemory()
	repo := NewMemoryRepo()
	return NewService(zap.NewNop(), repo, ledger), ledger, repo
}

func realBalance(t *testing.T, ledger *bankroll.Memory, userID string) int64 {
	t.Helper()
	b, err := ledger.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	return b.BalanceCents
}

func place(t *testing.T, svc *Service, stakeCents int64, odds float64) *Bet {
	t.Helper()
	bet, err := svc.Place(context.Background(), PlaceParams{
		UserID:     "u1",
		MatchID:    "m1",
		Outcome:    "home",
		StakeCents: stakeCents,
		Odds:       odds,
	})
	require.NoError(t, err)
	return bet
}

func TestPlaceDebitsBalanceAndCreatesPendingBet(t *testing.T) {
	svc, ledger, _ := newTestService(t)

	// banca 1000.00, aposta 100.00 @ 2.0
	bet := place(t, svc, 10_000, 2.0)

	assert.Equal(t, StatusPending, bet.Status)
	assert.EqualValues(t, 20_000, bet.PotentialPayoutCents)
	assert.EqualValues(t, 0, bet.ActualPayoutCents)
	assert.EqualValues(t, 90_000, realBalance(t, ledger, "u1"))
}

func TestPlaceValidation(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]PlaceParams{
		"zero stake":      {UserID: "u1", MatchID: "m1", Outcome: "home", StakeCents: 0, Odds: 2.0},
		"negative stake":  {UserID: "u1", MatchID: "m1", Outcome: "home", StakeCents: -100, Odds: 2.0},
		"odds at 1":       {UserID: "u1", MatchID: "m1", Outcome: "home", StakeCents: 100, Odds: 1.0},
		"odds below 1":    {UserID: "u1", MatchID: "m1", Outcome: "home", StakeCents: 100, Odds: 0.5},
		"unknown outcome": {UserID: "u1", MatchID: "m1", Outcome: "banana", StakeCents: 100, Odds: 2.0},
		"missing user":    {MatchID: "m1", Outcome: "home", StakeCents: 100, Odds: 2.0},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Place(ctx, params)
			assert.ErrorIs(t, err, ErrInvalidBetParameters)
		})
	}

	// nenhuma validação falha pode ter tocado a banca
	assert.EqualValues(t, bankroll.DefaultBalanceCents, realBalance(t, ledger, "u1"))
}

func TestPlaceInsufficientBalance(t *testing.T) {
	svc, ledger, repo := newTestService(t)

	// 1000.01 contra banca de 1000.00
	_, err := svc.Place(context.Background(), PlaceParams{
		UserID: "u1", MatchID: "m1", Outcome: "home", StakeCents: 100_001, Odds: 2.0,
	})
	assert.ErrorIs(t, err, bankroll.ErrInsufficientBalance)

	// saldo intacto, nenhuma aposta registrada
	assert.EqualValues(t, bankroll.DefaultBalanceCents, realBalance(t, ledger, "u1"))
	pending, err := repo.ListPendingByMatch(context.Background(), "m1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSettleWon(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	bet := place(t, svc, 10_000, 2.0) // saldo 900.00

	settled, err := svc.Settle(context.Background(), bet.ID, ResultWon)
	require.NoError(t, err)

	assert.Equal(t, StatusWon, settled.Status)
	assert.EqualValues(t, 20_000, settled.ActualPayoutCents)
	assert.NotNil(t, settled.SettledAt)
	assert.EqualValues(t, 110_000, realBalance(t, ledger, "u1")) // 900 + 200
}

func TestSettleLostDoesNotTouchLedger(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	bet := place(t, svc, 10_000, 2.0)

	settled, err := svc.Settle(context.Background(), bet.ID, ResultLost)
	require.NoError(t, err)

	assert.Equal(t, StatusLost, settled.Status)
	assert.EqualValues(t, 0, settled.ActualPayoutCents)
	// stake já debitado na colocação; lost não movimenta mais nada
	assert.EqualValues(t, 90_000, realBalance(t, ledger, "u1"))
}

func TestSettleVoidRefundsStake(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	bet := place(t, svc, 10_000, 2.0)

	settled, err := svc.Settle(context.Background(), bet.ID, ResultVoid)
	require.NoError(t, err)

	assert.Equal(t, StatusVoid, settled.Status)
	assert.EqualValues(t, 10_000, settled.ActualPayoutCents)
	assert.EqualValues(t, 100_000, realBalance(t, ledger, "u1"))
}

func TestSettleTwiceIsRejectedWithoutDoubleCredit(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	bet := place(t, svc, 10_000, 2.0)

	_, err := svc.Settle(context.Background(), bet.ID, ResultWon)
	require.NoError(t, err)
	balanceAfterFirst := realBalance(t, ledger, "u1")

	_, err = svc.Settle(context.Background(), bet.ID, ResultWon)
	assert.ErrorIs(t, err, ErrAlreadySettled)
	assert.Equal(t, balanceAfterFirst, realBalance(t, ledger, "u1"))
}

// flakyLedger falha os primeiros Credits e depois delega ao ledger real.
type flakyLedger struct {
	*bankroll.Memory
	failCredits int
}

func (f *flakyLedger) Credit(ctx context.Context, userID string, amountCents int64, simulation bool, ref string) error {
	if f.failCredits > 0 {
		f.failCredits--
		return errors.New("ledger unavailable")
	}
	return f.Memory.Credit(ctx, userID, amountCents, simulation, ref)
}

func TestSettleCreditFailureReopensBetForRetry(t *testing.T) {
	ledger := &flakyLedger{Memory: bankroll.NewMemory(), failCredits: 1}
	repo := NewMemoryRepo()
	svc := NewService(zap.NewNop(), repo, ledger)
	bet := place(t, svc, 10_000, 2.0) // saldo 900.00

	// primeiro crédito falha: a aposta volta a PENDING e nada é creditado
	_, err := svc.Settle(context.Background(), bet.ID, ResultWon)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadySettled)

	reloaded, err := repo.Get(context.Background(), bet.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reloaded.Status)
	assert.EqualValues(t, 0, reloaded.ActualPayoutCents)
	assert.Nil(t, reloaded.SettledAt)
	assert.EqualValues(t, 90_000, realBalance(t, ledger.Memory, "u1"))

	// a retentativa refaz o ciclo completo e credita exatamente uma vez
	settled, err := svc.Settle(context.Background(), bet.ID, ResultWon)
	require.NoError(t, err)
	assert.Equal(t, StatusWon, settled.Status)
	assert.EqualValues(t, 20_000, settled.ActualPayoutCents)
	assert.EqualValues(t, 110_000, realBalance(t, ledger.Memory, "u1"))
}

func TestSettleUnknownBet(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Settle(context.Background(), "nope", ResultWon)
	assert.ErrorIs(t, err, ErrBetNotFound)
}

func TestSettleInvalidResult(t *testing.T) {
	svc, _, _ := newTestService(t)
	bet := place(t, svc, 1_000, 2.0)
	_, err := svc.Settle(context.Background(), bet.ID, Result("maybe"))
	assert.ErrorIs(t, err, ErrInvalidBetParameters)
}

func TestSimulationBetsUseSimulationBalance(t *testing.T) {
	svc, ledger, _ := newTestService(t)

	bet, err := svc.Place(context.Background(), PlaceParams{
		UserID: "u1", MatchID: "m1", Outcome: "away", StakeCents: 50_000, Odds: 3.0, Simulation: true,
	})
	require.NoError(t, err)

	b, err := ledger.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, bankroll.DefaultBalanceCents, b.BalanceCents)
	assert.EqualValues(t, bankroll.DefaultSimulationBalanceCents-50_000, b.SimulationBalanceCents)

	_, err = svc.Settle(context.Background(), bet.ID, ResultWon)
	require.NoError(t, err)

	b, _ = ledger.GetOrCreate(context.Background(), "u1")
	assert.EqualValues(t, bankroll.DefaultBalanceCents, b.BalanceCents)
	assert.EqualValues(t, bankroll.DefaultSimulationBalanceCents+100_000, b.SimulationBalanceCents)
}

func TestConcurrentPlacementsCannotOverdraw(t *testing.T) {
	svc, ledger, _ := newTestService(t)
	ctx := context.Background()

	// banca 1000.00; duas colocações concorrentes de 600.00
	_, err := ledger.GetOrCreate(ctx, "u1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Place(ctx, PlaceParams{
				UserID: "u1", MatchID: "m1", Outcome: "home", StakeCents: 60_000, Odds: 1.9,
			})
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		if err == nil {
			ok++
		} else if assert.ErrorIs(t, err, bankroll.ErrInsufficientBalance) {
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.EqualValues(t, 40_000, realBalance(t, ledger, "u1"))
}

func TestPayoutRounding(t *testing.T) {
	svc, _, _ := newTestService(t)

	// 33.33 @ 1.91 = 63.6603 -> 63.66
	bet := place(t, svc, 3_333, 1.91)
	assert.EqualValues(t, 6_366, bet.PotentialPayoutCents)
}
