package bankroll

import (
	"errors"
	"time"
)

// Saldos iniciais de uma banca recém-criada, em centavos.
const (
	DefaultBalanceCents           = 100_000   // 1000.00 de banca real
	DefaultSimulationBalanceCents = 1_000_000 // 10000.00 de banca de treino
)

var (
	// ErrInsufficientBalance indica reserva maior que o saldo disponível
	// no escopo (real ou simulação). O saldo nunca é debitado parcialmente.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrNotFound indica banca inexistente para o usuário.
	ErrNotFound = errors.New("bankroll not found")
	// ErrInvalidAmount indica valor não positivo em reserva/crédito.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Bankroll é a banca de um usuário: saldo real e saldo de simulação.
// Toda mutação passa pelas operações do ledger, nunca por escrita direta.
type Bankroll struct {
	UserID                 string
	BalanceCents           int64
	SimulationBalanceCents int64
	ROIPercentage          float64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// ScopedBalance devolve o saldo selecionado pela flag de simulação.
func (b *Bankroll) ScopedBalance(simulation bool) int64 {
	if simulation {
		return b.SimulationBalanceCents
	}
	return b.BalanceCents
}
