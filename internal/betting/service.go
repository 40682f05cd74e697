package betting

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/valuebet"
)

// Ledger é o contrato mínimo do ledger de banca usado pelo ciclo de vida
// de apostas. ref identifica a operação no extrato (id da aposta).
type Ledger interface {
	Reserve(ctx context.Context, userID string, amountCents int64, simulation bool, ref string) error
	Credit(ctx context.Context, userID string, amountCents int64, simulation bool, ref string) error
}

// Repo é o contrato de persistência de apostas.
type Repo interface {
	Insert(ctx context.Context, b *Bet) error
	Get(ctx context.Context, betID string) (*Bet, error)
	// MarkSettled aplica a transição PENDING -> terminal de forma condicional.
	// Devolve ErrBetNotFound ou ErrAlreadySettled conforme o caso.
	MarkSettled(ctx context.Context, betID string, status Status, actualPayoutCents int64, settledAt time.Time) error
	// Reopen desfaz a transição (from -> PENDING) quando o crédito da
	// liquidação falha, para que a retentativa refaça o ciclo completo.
	Reopen(ctx context.Context, betID string, from Status) error
}

// Service implementa o ciclo de vida de uma aposta: colocação com reserva
// atômica de saldo e liquidação com crédito do pagamento.
type Service struct {
	log    *zap.Logger
	bets   Repo
	ledger Ledger
}

func NewService(log *zap.Logger, bets Repo, ledger Ledger) *Service {
	return &Service{log: log, bets: bets, ledger: ledger}
}

// PlaceParams são os parâmetros de colocação de uma aposta.
type PlaceParams struct {
	UserID     string
	MatchID    string
	ValueBetID string
	Outcome    string
	StakeCents int64
	Odds       float64
	Simulation bool
}

func (p PlaceParams) validate() error {
	if p.UserID == "" || p.MatchID == "" {
		return fmt.Errorf("%w: user and match are required", ErrInvalidBetParameters)
	}
	if p.StakeCents <= 0 {
		return fmt.Errorf("%w: stake must be positive", ErrInvalidBetParameters)
	}
	if math.IsNaN(p.Odds) || math.IsInf(p.Odds, 0) || p.Odds <= 1 {
		return fmt.Errorf("%w: odds must be greater than 1", ErrInvalidBetParameters)
	}
	if !valuebet.Outcome(p.Outcome).Valid() {
		return fmt.Errorf("%w: unknown outcome %q", ErrInvalidBetParameters, p.Outcome)
	}
	return nil
}

// Place valida os parâmetros, reserva o stake no escopo da banca e registra
// a aposta em PENDING. Tudo ou nada: falha na reserva não cria aposta e
// falha na criação estorna a reserva.
func (s *Service) Place(ctx context.Context, p PlaceParams) (*Bet, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()

	if err := s.ledger.Reserve(ctx, p.UserID, p.StakeCents, p.Simulation, "bet:"+id); err != nil {
		return nil, fmt.Errorf("reserve stake: %w", err)
	}

	bet := &Bet{
		ID:                   id,
		UserID:               p.UserID,
		MatchID:              p.MatchID,
		ValueBetID:           p.ValueBetID,
		Outcome:              valuebet.Outcome(p.Outcome),
		StakeCents:           p.StakeCents,
		Odds:                 p.Odds,
		PotentialPayoutCents: payoutCents(p.StakeCents, p.Odds),
		Status:               StatusPending,
		Simulation:           p.Simulation,
		PlacedAt:             time.Now().UTC(),
	}

	if err := s.bets.Insert(ctx, bet); err != nil {
		// compensação: devolve o stake reservado
		if cerr := s.ledger.Credit(ctx, p.UserID, p.StakeCents, p.Simulation, "bet-rollback:"+id); cerr != nil {
			s.log.Error("stake rollback failed after insert error",
				zap.String("bet_id", id), zap.Error(cerr))
		}
		return nil, fmt.Errorf("insert bet: %w", err)
	}

	return bet, nil
}

// Settle aplica o desfecho a uma aposta pendente e credita o pagamento:
// won credita o payout potencial, lost não movimenta a banca (stake já
// debitado na colocação), void estorna o stake integral. Segunda chamada
// para a mesma aposta falha com ErrAlreadySettled e não credita de novo.
func (s *Service) Settle(ctx context.Context, betID string, result Result) (*Bet, error) {
	if !result.Valid() {
		return nil, fmt.Errorf("%w: unknown result %q", ErrInvalidBetParameters, result)
	}

	bet, err := s.bets.Get(ctx, betID)
	if err != nil {
		return nil, err
	}

	var status Status
	var payout int64
	switch result {
	case ResultWon:
		status = StatusWon
		payout = bet.PotentialPayoutCents
	case ResultLost:
		status = StatusLost
		payout = 0
	case ResultVoid:
		status = StatusVoid
		payout = bet.StakeCents
	}

	settledAt := time.Now().UTC()
	// transição condicional primeiro: em corrida de liquidações, só a que
	// efetivou a transição chega ao crédito
	if err := s.bets.MarkSettled(ctx, betID, status, payout, settledAt); err != nil {
		return nil, err
	}

	if payout > 0 {
		if err := s.ledger.Credit(ctx, bet.UserID, payout, bet.Simulation, "settle:"+betID); err != nil {
			// reabre a aposta: sem isso a retentativa cai em ErrAlreadySettled
			// e o pagamento nunca é creditado
			if rerr := s.bets.Reopen(ctx, betID, status); rerr != nil {
				s.log.Error("settlement reopen failed, bet settled without credit",
					zap.String("bet_id", betID),
					zap.String("user_id", bet.UserID),
					zap.Int64("payout_cents", payout),
					zap.Error(rerr))
			} else {
				s.log.Warn("settlement credit failed, bet reopened for retry",
					zap.String("bet_id", betID),
					zap.String("user_id", bet.UserID),
					zap.Int64("payout_cents", payout),
					zap.Error(err))
			}
			return nil, fmt.Errorf("settlement credit: %w", err)
		}
	}

	bet.Status = status
	bet.ActualPayoutCents = payout
	bet.SettledAt = &settledAt
	return bet, nil
}

// payoutCents calcula stake * odds em aritmética decimal, arredondando
// meio-para-cima no centavo.
func payoutCents(stakeCents int64, odds float64) int64 {
	return decimal.NewFromInt(stakeCents).
		Mul(decimal.NewFromFloat(odds)).
		Round(0).
		IntPart()
}
