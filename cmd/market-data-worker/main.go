package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/market-data/cache"
	"github.com/radieske/value-bet-platform/internal/market-data/consumer"
	"github.com/radieske/value-bet-platform/internal/market-data/repo"
	sharedcache "github.com/radieske/value-bet-platform/internal/shared/cache"
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

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	quotes := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicOddsQuotes, "market-data")
	defer quotes.Close()
	preds := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicPredictionUpdates, "market-data")
	defer preds.Close()
	dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOddsQuotesDLQ)
	defer dlq.Close()

	// Métricas Prometheus do pipeline de dados de mercado
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "market_data_messages_consumed_total", Help: "mensagens consumidas"}, []string{"topic"})
	persisted := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "market_data_messages_persisted_total", Help: "mensagens persistidas"}, []string{"topic"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "market_data_messages_rejected_total", Help: "payloads rejeitados na validação"}, []string{"topic"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "market_data_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persisted, rejected, errorsBy)

	proc := &consumer.Processor{
		Log:        log,
		Quotes:     quotes,
		Preds:      preds,
		Repo:       repo.NewPostgres(pg),
		Cache:      cache.NewRedisCache(redisClient, 60*time.Second),
		DLQ:        dlq,
		OnConsumed: func(topic string) { consumed.WithLabelValues(topic).Inc() },
		OnPersist:  func(topic string) { persisted.WithLabelValues(topic).Inc() },
		OnRejected: func(topic string) { rejected.WithLabelValues(topic).Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
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

	log.Info("market-data-worker started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("market-data-worker stopped")
}
