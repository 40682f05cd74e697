package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/scanner"
	sharedcache "github.com/radieske/value-bet-platform/internal/shared/cache"
	"github.com/radieske/value-bet-platform/internal/shared/config"
	"github.com/radieske/value-bet-platform/internal/shared/db"
	"github.com/radieske/value-bet-platform/internal/shared/logger"
	"github.com/radieske/value-bet-platform/internal/shared/metrics"
	"github.com/radieske/value-bet-platform/internal/valuebet"
	vbcache "github.com/radieske/value-bet-platform/internal/valuebet/cache"
	vbrepo "github.com/radieske/value-bet-platform/internal/valuebet/repo"
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

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Métricas Prometheus do ciclo de scan
	scans := prometheus.NewCounter(prometheus.CounterOpts{Name: "valuebet_scans_total", Help: "ciclos de scan executados"})
	opportunities := prometheus.NewGauge(prometheus.GaugeOpts{Name: "valuebet_opportunities", Help: "oportunidades do último lote"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "valuebet_scan_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(scans, opportunities, errorsBy)

	vbRepo := vbrepo.NewPostgres(pg)
	worker := &scanner.Worker{
		Log:     log,
		Source:  vbRepo,
		Scanner: valuebet.NewScanner(log, cfg.MinValuePercent),
		Store:   vbRepo,
		Cache:   vbcache.New(redisClient, 60*time.Second),
		OnScan: func(count int) {
			scans.Inc()
			opportunities.Set(float64(count))
		},
		OnError: func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	defer metricsSrv.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("scanner-worker started",
		zap.Duration("interval", cfg.ScanInterval),
		zap.Float64("min_value_percent", cfg.MinValuePercent),
	)
	if err := worker.Run(ctx, cfg.ScanInterval); err != nil && ctx.Err() == nil {
		log.Fatal("scanner stopped with error", zap.Error(err))
	}
	log.Info("scanner-worker stopped")
}
