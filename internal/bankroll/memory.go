package bankroll

import (
	"context"
	"sync"
	"time"
)

// Memory é um ledger em memória com a mesma disciplina de exclusão mútua
// do repositório Postgres (checagem e débito sob o mesmo lock). Usado em
// testes e no modo standalone do feed-simulator.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*Bankroll
}

func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]*Bankroll)}
}

func (m *Memory) GetOrCreate(_ context.Context, userID string) (*Bankroll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.getOrCreateLocked(userID)
	cp := *b
	return &cp, nil
}

func (m *Memory) Reserve(_ context.Context, userID string, amountCents int64, simulation bool, _ string) error {
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.getOrCreateLocked(userID)
	if b.ScopedBalance(simulation) < amountCents {
		return ErrInsufficientBalance
	}
	if simulation {
		b.SimulationBalanceCents -= amountCents
	} else {
		b.BalanceCents -= amountCents
	}
	b.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) Credit(_ context.Context, userID string, amountCents int64, simulation bool, _ string) error {
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.accounts[userID]
	if !ok {
		return ErrNotFound
	}
	if simulation {
		b.SimulationBalanceCents += amountCents
	} else {
		b.BalanceCents += amountCents
	}
	b.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) getOrCreateLocked(userID string) *Bankroll {
	if b, ok := m.accounts[userID]; ok {
		return b
	}
	now := time.Now()
	b := &Bankroll{
		UserID:                 userID,
		BalanceCents:           DefaultBalanceCents,
		SimulationBalanceCents: DefaultSimulationBalanceCents,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	m.accounts[userID] = b
	return b
}
