package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/bankroll"
	"github.com/radieske/value-bet-platform/internal/betting"
	mdrepo "github.com/radieske/value-bet-platform/internal/market-data/repo"
	"github.com/radieske/value-bet-platform/internal/settlement"
	"github.com/radieske/value-bet-platform/internal/shared/config"
	"github.com/radieske/value-bet-platform/internal/shared/db"
	"github.com/radieske/value-bet-platform/internal/shared/kafka"
	"github.com/radieske/value-bet-platform/internal/shared/logger"
	"github.com/radieske/value-bet-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicMatchResults, "settlement")
	defer reader.Close()
	settled := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settled.Close()
	dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchResultsDLQ)
	defer dlq.Close()

	// Métricas Prometheus da liquidação
	processed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_results_processed_total", Help: "resultados processados"})
	betsSettled := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_bets_settled_total", Help: "apostas liquidadas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por fase"}, []string{"stage"})
	prometheus.MustRegister(processed, betsSettled, errorsBy)

	ledger := bankroll.NewPostgres(pg)
	betRepo := betting.NewPostgres(pg)

	worker := &settlement.Worker{
		Log:         log,
		Reader:      reader,
		Service:     betting.NewService(log, betRepo, ledger),
		Bets:        betRepo,
		Ledger:      ledger,
		Matches:     mdrepo.NewPostgres(pg),
		Settled:     settled,
		DLQ:         dlq,
		OnProcessed: func() { processed.Inc() },
		OnSettled:   func() { betsSettled.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	defer metricsSrv.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-worker started")
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("settlement stopped with error", zap.Error(err))
	}
	log.Info("settlement-worker stopped")
}
