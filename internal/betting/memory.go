package betting

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepo é a persistência de apostas em memória, com as mesmas regras
// de transição do repositório Postgres. Usada em testes.
type MemoryRepo struct {
	mu   sync.Mutex
	bets map[string]*Bet
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{bets: make(map[string]*Bet)}
}

func (m *MemoryRepo) Insert(_ context.Context, b *Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.bets[b.ID] = &cp
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, betID string) (*Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bets[betID]
	if !ok {
		return nil, ErrBetNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MemoryRepo) MarkSettled(_ context.Context, betID string, status Status, actualPayoutCents int64, settledAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bets[betID]
	if !ok {
		return ErrBetNotFound
	}
	if b.Status != StatusPending {
		return ErrAlreadySettled
	}
	b.Status = status
	b.ActualPayoutCents = actualPayoutCents
	t := settledAt
	b.SettledAt = &t
	return nil
}

func (m *MemoryRepo) Reopen(_ context.Context, betID string, from Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bets[betID]
	if !ok {
		return ErrBetNotFound
	}
	if b.Status != from {
		return fmt.Errorf("reopen bet %s: not in status %s", betID, from)
	}
	b.Status = StatusPending
	b.ActualPayoutCents = 0
	b.SettledAt = nil
	return nil
}

func (m *MemoryRepo) ListByUser(_ context.Context, userID string, f ListFilter) ([]Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Bet
	for _, b := range m.bets {
		if b.UserID != userID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Simulation != nil && b.Simulation != *f.Simulation {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.After(out[j].PlacedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *MemoryRepo) ListSettled(_ context.Context, userID string, simulation bool) ([]Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Bet
	for _, b := range m.bets {
		if b.UserID == userID && b.Simulation == simulation && (b.Status == StatusWon || b.Status == StatusLost) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.Before(out[j].PlacedAt) })
	return out, nil
}

func (m *MemoryRepo) ListPendingByMatch(_ context.Context, matchID string) ([]Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Bet
	for _, b := range m.bets {
		if b.MatchID == matchID && b.Status == StatusPending {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.Before(out[j].PlacedAt) })
	return out, nil
}
