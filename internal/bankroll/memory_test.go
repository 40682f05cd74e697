package bankroll

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateSeedsDefaults(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	b, err := m.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, DefaultBalanceCents, b.BalanceCents)
	assert.EqualValues(t, DefaultSimulationBalanceCents, b.SimulationBalanceCents)

	// idempotente: segundo acesso devolve a mesma banca
	again, err := m.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, b.BalanceCents, again.BalanceCents)
}

func TestReserveDebitsScopedBalance(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Reserve(ctx, "u1", 10_000, false, "bet-1"))

	b, _ := m.GetOrCreate(ctx, "u1")
	assert.EqualValues(t, DefaultBalanceCents-10_000, b.BalanceCents)
	// escopo de simulação intocado
	assert.EqualValues(t, DefaultSimulationBalanceCents, b.SimulationBalanceCents)
}

func TestReserveInsufficientBalance(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.Reserve(ctx, "u1", DefaultBalanceCents+1, false, "bet-1")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// saldo não pode ter sido debitado parcialmente
	b, _ := m.GetOrCreate(ctx, "u1")
	assert.EqualValues(t, DefaultBalanceCents, b.BalanceCents)
}

func TestReserveInvalidAmount(t *testing.T) {
	m := NewMemory()
	assert.ErrorIs(t, m.Reserve(context.Background(), "u1", 0, false, ""), ErrInvalidAmount)
	assert.ErrorIs(t, m.Reserve(context.Background(), "u1", -5, false, ""), ErrInvalidAmount)
}

func TestCreditRequiresExistingBankroll(t *testing.T) {
	m := NewMemory()
	assert.ErrorIs(t, m.Credit(context.Background(), "ghost", 100, false, ""), ErrNotFound)
}

func TestConcurrentReservesNeverOverdraw(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	// banca 1000.00; duas reservas concorrentes de 600.00: exatamente uma passa
	_, err := m.GetOrCreate(ctx, "u1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.Reserve(ctx, "u1", 60_000, false, "bet")
		}(i)
	}
	wg.Wait()

	var okCount, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			okCount++
		case assert.ErrorIs(t, err, ErrInsufficientBalance):
			insufficient++
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, insufficient)

	b, _ := m.GetOrCreate(ctx, "u1")
	assert.EqualValues(t, 40_000, b.BalanceCents)
}

func TestBalanceNeverGoesNegative(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Reserve(ctx, "u1", 7_000, false, "bet")
		}()
	}
	wg.Wait()

	b, _ := m.GetOrCreate(ctx, "u1")
	assert.GreaterOrEqual(t, b.BalanceCents, int64(0))
}
