package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/market-data/cache"
	"github.com/radieske/value-bet-platform/internal/market-data/repo"
	"github.com/radieske/value-bet-platform/pkg/contracts/events"
)

// Processor consome cotações e previsões do Kafka, valida na fronteira,
// faz cache das cotações correntes e persiste tudo no Postgres.
// Callbacks de métricas monitoram cada etapa.
type Processor struct {
	Log    *zap.Logger
	Quotes *kafka.Reader
	Preds  *kafka.Reader
	Repo   *repo.Postgres
	Cache  *cache.RedisCache
	DLQ    *kafka.Writer // opcional: cotações rejeitadas na fronteira

	OnConsumed func(topic string) // métricas (counter++)
	OnPersist  func(topic string) // métricas
	OnRejected func(topic string) // métricas: payload rejeitado na validação
	OnError    func(stage string) // métricas por fase
}

// Run inicia os dois loops de consumo e bloqueia até o contexto encerrar.
func (p *Processor) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() { errCh <- p.runQuotes(ctx) }()
	go func() { errCh <- p.runPredictions(ctx) }()

	// primeiro loop a morrer derruba o worker; o outro encerra pelo contexto
	return <-errCh
}

func (p *Processor) runQuotes(ctx context.Context) error {
	for {
		m, err := p.Quotes.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.String("topic", "odds_quotes"), zap.Error(err))
			p.onError("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		p.onConsumed("odds_quotes")

		var ev events.OddsQuoteUpdated
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid quote message", zap.Error(err))
			p.onError("decode")
			p.toDLQ(ctx, m.Key, m.Value)
			continue
		}
		if err := ValidateQuote(ev); err != nil {
			// payload malformado não aborta o restante do fluxo
			p.Log.Warn("quote rejected at boundary",
				zap.String("match_id", ev.MatchID),
				zap.String("bookmaker", ev.Bookmaker),
				zap.Error(err))
			p.onRejected("odds_quotes")
			p.toDLQ(ctx, m.Key, m.Value)
			continue
		}

		if err := p.Cache.SetCurrent(ctx, ev); err != nil {
			p.Log.Warn("redis set failed", zap.Error(err))
			p.onError("cache")
			// cache frio não bloqueia a persistência
		}

		if err := p.Repo.UpsertMatch(ctx, ev); err != nil {
			p.Log.Warn("match upsert failed", zap.Error(err))
			p.onError("db_match")
			continue
		}
		if err := p.Repo.UpsertQuote(ctx, ev); err != nil {
			p.Log.Warn("quote upsert failed", zap.Error(err))
			p.onError("db_quote")
			continue
		}
		if err := p.Repo.InsertQuoteHistory(ctx, ev); err != nil {
			p.Log.Warn("quote history insert failed", zap.Error(err))
			p.onError("db_history")
			continue
		}
		p.onPersist("odds_quotes")
	}
}

func (p *Processor) runPredictions(ctx context.Context) error {
	for {
		m, err := p.Preds.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.String("topic", "prediction_updates"), zap.Error(err))
			p.onError("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		p.onConsumed("prediction_updates")

		var ev events.PredictionCreated
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid prediction message", zap.Error(err))
			p.onError("decode")
			continue
		}
		if err := ValidatePrediction(ev); err != nil {
			p.Log.Warn("prediction rejected at boundary",
				zap.String("match_id", ev.MatchID),
				zap.Error(err))
			p.onRejected("prediction_updates")
			continue
		}

		if _, err := p.Repo.InsertPrediction(ctx, ev); err != nil {
			p.Log.Warn("prediction insert failed", zap.Error(err))
			p.onError("db_prediction")
			continue
		}
		p.onPersist("prediction_updates")
	}
}

func (p *Processor) toDLQ(ctx context.Context, key, value []byte) {
	if p.DLQ == nil {
		return
	}
	if err := p.DLQ.WriteMessages(ctx, kafka.Message{Key: key, Value: value, Time: time.Now()}); err != nil {
		p.Log.Warn("dlq write failed", zap.Error(err))
	}
}

func (p *Processor) onConsumed(topic string) {
	if p.OnConsumed != nil {
		p.OnConsumed(topic)
	}
}

func (p *Processor) onPersist(topic string) {
	if p.OnPersist != nil {
		p.OnPersist(topic)
	}
}

func (p *Processor) onRejected(topic string) {
	if p.OnRejected != nil {
		p.OnRejected(topic)
	}
}

func (p *Processor) onError(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
