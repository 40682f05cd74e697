package betting

import (
	"errors"
	"time"

	"github.com/radieske/value-bet-platform/internal/valuebet"
)

// Status de uma aposta. PENDING transita uma única vez para um estado
// terminal; nenhuma transição sai de um estado terminal.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusWon     Status = "WON"
	StatusLost    Status = "LOST"
	StatusVoid    Status = "VOID"
)

// Terminal informa se o status encerra o ciclo de vida da aposta.
func (s Status) Terminal() bool { return s != StatusPending }

// Result é o desfecho informado na liquidação.
type Result string

const (
	ResultWon  Result = "won"
	ResultLost Result = "lost"
	ResultVoid Result = "void"
)

func (r Result) Valid() bool {
	switch r {
	case ResultWon, ResultLost, ResultVoid:
		return true
	}
	return false
}

var (
	// ErrInvalidBetParameters indica stake não positivo, odd inválida ou
	// resultado desconhecido na colocação.
	ErrInvalidBetParameters = errors.New("invalid bet parameters")
	// ErrBetNotFound indica aposta inexistente.
	ErrBetNotFound = errors.New("bet not found")
	// ErrAlreadySettled indica tentativa de liquidar aposta já terminal.
	ErrAlreadySettled = errors.New("bet already settled")
)

// Bet é uma aposta individual. Linhas de aposta são append/transition-only:
// nunca removidas, nunca reabertas.
type Bet struct {
	ID                   string
	UserID               string
	MatchID              string
	ValueBetID           string // oportunidade de origem, quando houver
	Outcome              valuebet.Outcome
	StakeCents           int64
	Odds                 float64
	PotentialPayoutCents int64
	ActualPayoutCents    int64
	Status               Status
	Simulation           bool
	PlacedAt             time.Time
	SettledAt            *time.Time
}
