package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/betting"
	"github.com/radieske/value-bet-platform/internal/shared/kafka"
	"github.com/radieske/value-bet-platform/pkg/contracts/events"
)

// PendingLister localiza as apostas pendentes de uma partida.
type PendingLister interface {
	ListPendingByMatch(ctx context.Context, matchID string) ([]betting.Bet, error)
}

// ROIRecalculator atualiza o ROI persistido após liquidações da banca real.
type ROIRecalculator interface {
	RecalculateROI(ctx context.Context, userID string) (float64, error)
}

// MatchFinisher tira a partida liquidada do conjunto agendado.
type MatchFinisher interface {
	MarkMatchFinished(ctx context.Context, matchID string) error
}

// Worker consome resultados de partidas e liquida cada aposta pendente
// através do ciclo de vida de apostas. A liquidação de uma aposta sempre
// acontece depois da sua colocação (só apostas persistidas são listadas);
// redelivery do mesmo resultado é inofensivo: a transição condicional
// rejeita a segunda liquidação.
type Worker struct {
	Log     *zap.Logger
	Reader  *kafkago.Reader
	Service *betting.Service
	Bets    PendingLister
	Ledger  ROIRecalculator
	Matches MatchFinisher
	Settled *kafkago.Writer // tópico bet_settled
	DLQ     *kafkago.Writer // opcional

	OnProcessed func()       // métricas: resultado processado
	OnSettled   func()       // métricas: aposta liquidada
	OnError     func(string) // métricas por fase
}

// Run inicia o loop principal de consumo.
func (w *Worker) Run(ctx context.Context) error {
	for {
		m, err := w.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.Log.Warn("kafka read failed", zap.Error(err))
			w.onError("read")
			time.Sleep(time.Second)
			continue
		}

		var res events.MatchResult
		if err := json.Unmarshal(m.Value, &res); err != nil {
			w.Log.Error("unmarshal match_result", zap.Error(err))
			w.onError("decode")
			w.toDLQ(ctx, string(m.Key), m.Value)
			continue
		}
		if err := validateResult(res); err != nil {
			w.Log.Error("match_result rejected", zap.String("match_id", res.MatchID), zap.Error(err))
			w.onError("validate")
			w.toDLQ(ctx, res.MatchID, m.Value)
			continue
		}

		if err := w.processResult(ctx, res); err != nil {
			w.Log.Error("process match result", zap.String("match_id", res.MatchID), zap.Error(err))
			w.onError("process")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if w.OnProcessed != nil {
			w.OnProcessed()
		}
	}
}

// processResult liquida todas as apostas pendentes da partida e marca a
// partida como encerrada. Falha em uma aposta não impede as demais.
func (w *Worker) processResult(ctx context.Context, res events.MatchResult) error {
	pending, err := w.Bets.ListPendingByMatch(ctx, res.MatchID)
	if err != nil {
		return fmt.Errorf("list pending bets: %w", err)
	}

	roiUsers := make(map[string]struct{})
	var failed int
	for _, bet := range pending {
		settled, err := w.Service.Settle(ctx, bet.ID, resultFor(bet, res.Result))
		if err != nil {
			if errors.Is(err, betting.ErrAlreadySettled) {
				continue // redelivery: outra instância chegou primeiro
			}
			w.Log.Error("settle bet failed",
				zap.String("bet_id", bet.ID),
				zap.String("match_id", res.MatchID),
				zap.Error(err))
			failed++
			continue
		}
		if w.OnSettled != nil {
			w.OnSettled()
		}
		if !settled.Simulation {
			roiUsers[settled.UserID] = struct{}{}
		}

		if w.Settled != nil {
			evs := events.BetSettled{
				BetID:       settled.ID,
				UserID:      settled.UserID,
				MatchID:     settled.MatchID,
				Status:      string(settled.Status),
				PayoutCents: settled.ActualPayoutCents,
				Simulation:  settled.Simulation,
				Ts:          time.Now(),
			}
			if err := kafka.WriteJSON(ctx, w.Settled, settled.ID, evs); err != nil {
				w.Log.Warn("publish bet_settled failed", zap.String("bet_id", settled.ID), zap.Error(err))
			}
		}
	}

	for userID := range roiUsers {
		if _, err := w.Ledger.RecalculateROI(ctx, userID); err != nil {
			w.Log.Warn("roi recalculation failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if failed == 0 {
		if err := w.Matches.MarkMatchFinished(ctx, res.MatchID); err != nil {
			w.Log.Warn("mark match finished failed", zap.String("match_id", res.MatchID), zap.Error(err))
		}
	}
	return nil
}

// resultFor converte o resultado da partida no desfecho da aposta.
func resultFor(bet betting.Bet, matchResult string) betting.Result {
	if matchResult == "void" {
		return betting.ResultVoid
	}
	if string(bet.Outcome) == matchResult {
		return betting.ResultWon
	}
	return betting.ResultLost
}

func (w *Worker) onError(stage string) {
	if w.OnError != nil {
		w.OnError(stage)
	}
}

func (w *Worker) toDLQ(ctx context.Context, key string, value []byte) {
	if w.DLQ == nil {
		return
	}
	if err := w.DLQ.WriteMessages(ctx, kafkago.Message{Key: []byte(key), Value: value, Time: time.Now()}); err != nil {
		w.Log.Warn("dlq write failed", zap.Error(err))
	}
}

func validateResult(e events.MatchResult) error {
	if e.MatchID == "" {
		return errors.New("match_id is required")
	}
	switch e.Result {
	case "home", "draw", "away", "void":
		return nil
	}
	return fmt.Errorf("unknown result %q", e.Result)
}
