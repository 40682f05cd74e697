package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/valuebet"
	"github.com/radieske/value-bet-platform/internal/valuebet/cache"
)

// InputSource carrega os insumos de um scan: partidas agendadas com a
// previsão mais recente e as cotações correntes.
type InputSource interface {
	LoadScanInputs(ctx context.Context) ([]valuebet.MatchData, error)
}

// BatchStore persiste o lote de oportunidades, substituindo o anterior.
type BatchStore interface {
	ReplaceBatch(ctx context.Context, opps []valuebet.Opportunity) error
}

// Worker executa o ciclo de scan: carrega insumos, precifica, substitui o
// lote persistido e publica o refresh para os clientes WebSocket. Roda em
// intervalo fixo e também sob demanda (trigger da API).
type Worker struct {
	Log     *zap.Logger
	Source  InputSource
	Scanner *valuebet.Scanner
	Store   BatchStore
	Cache   *cache.Cache // opcional

	OnScan  func(count int) // métricas
	OnError func(stage string)
}

// Summary descreve o resultado de um ciclo de scan.
type Summary struct {
	BatchID   string    `json:"batch_id"`
	Matches   int       `json:"matches_scanned"`
	Count     int       `json:"opportunities"`
	TopValue  float64   `json:"top_value_percent"`
	ScannedAt time.Time `json:"scanned_at"`
}

// RunOnce executa um ciclo completo de scan.
func (w *Worker) RunOnce(ctx context.Context) (Summary, error) {
	data, err := w.Source.LoadScanInputs(ctx)
	if err != nil {
		w.onError("load")
		return Summary{}, fmt.Errorf("load scan inputs: %w", err)
	}

	opps := w.Scanner.Scan(data)

	if err := w.Store.ReplaceBatch(ctx, opps); err != nil {
		w.onError("persist")
		return Summary{}, fmt.Errorf("replace batch: %w", err)
	}

	sum := Summary{
		BatchID:   uuid.NewString(),
		Matches:   len(data),
		Count:     len(opps),
		ScannedAt: time.Now().UTC(),
	}
	if len(opps) > 0 {
		sum.TopValue = opps[0].ValuePercent // lote já ordenado por valor desc
	}

	if w.Cache != nil {
		if err := w.Cache.SetBatch(ctx, opps); err != nil {
			// cache frio não invalida o scan: o lote persistido é a verdade
			w.Log.Warn("value bet cache set failed", zap.Error(err))
			w.onError("cache")
		}
		if err := w.Cache.PublishRefresh(ctx, cache.BatchRefresh{
			BatchID:   sum.BatchID,
			Count:     sum.Count,
			TopValue:  sum.TopValue,
			CreatedAt: sum.ScannedAt,
		}); err != nil {
			w.Log.Warn("refresh publish failed", zap.Error(err))
			w.onError("publish")
		}
	}

	if w.OnScan != nil {
		w.OnScan(sum.Count)
	}
	w.Log.Info("scan completed",
		zap.String("batch_id", sum.BatchID),
		zap.Int("matches", sum.Matches),
		zap.Int("opportunities", sum.Count),
		zap.Float64("top_value", sum.TopValue),
	)
	return sum, nil
}

// Run executa ciclos de scan no intervalo dado até o contexto encerrar.
// Um ciclo com erro não derruba o worker.
func (w *Worker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := w.RunOnce(ctx); err != nil {
		w.Log.Error("scan cycle failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.Log.Error("scan cycle failed", zap.Error(err))
			}
		}
	}
}

func (w *Worker) onError(stage string) {
	if w.OnError != nil {
		w.OnError(stage)
	}
}
