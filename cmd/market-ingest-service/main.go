package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/radieske/value-bet-platform/internal/market-ingest/publisher"
	"github.com/radieske/value-bet-platform/internal/market-ingest/service"
	"github.com/radieske/value-bet-platform/internal/shared/config"
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

	pub := publisher.NewKafkaPublisher(
		strings.Split(cfg.KafkaBrokers, ","),
		cfg.TopicOddsQuotes,
		cfg.TopicPredictionUpdates,
		cfg.TopicMatchResults,
		log,
	)
	defer pub.Close()

	// Métricas Prometheus da ingestão
	received := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ingest_feed_messages_received_total", Help: "mensagens recebidas do feed"}, []string{"type"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ingest_feed_messages_published_total", Help: "mensagens publicadas no Kafka"}, []string{"type"})
	prometheus.MustRegister(received, published)

	client := &service.WSClient{
		URL:         cfg.FeedWSURL,
		Log:         log,
		Publisher:   pub,
		OnReceived:  func(t string) { received.WithLabelValues(t).Inc() },
		OnPublished: func(t string) { published.WithLabelValues(t).Inc() },
	}

	metricsSrv := metrics.StartServer(cfg.MetricsPort, func(context.Context) error { return nil })
	defer metricsSrv.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("market-ingest-service started")
	client.Start(ctx)
	log.Info("market-ingest-service stopped")
}
