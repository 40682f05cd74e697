package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/pkg/contracts/events"
)

// KafkaPublisher encaminha cada tipo de mensagem do feed para o seu tópico:
// cotações, previsões e resultados de partidas.
type KafkaPublisher struct {
	quotes      *kafka.Writer
	predictions *kafka.Writer
	results     *kafka.Writer
	log         *zap.Logger
}

// NewKafkaPublisher cria os três writers. Em ambientes local/dev os tópicos
// são criados no controller do cluster antes do primeiro write.
func NewKafkaPublisher(brokers []string, quotesTopic, predictionsTopic, resultsTopic string, log *zap.Logger) *KafkaPublisher {
	if len(brokers) == 0 {
		log.Fatal("kafka brokers not provided")
	}

	if env := os.Getenv("APP_ENV"); env == "local" || env == "dev" {
		ensureTopics(brokers, []string{quotesTopic, predictionsTopic, resultsTopic}, log)
	}

	return &KafkaPublisher{
		quotes:      newWriter(brokers, quotesTopic),
		predictions: newWriter(brokers, predictionsTopic),
		results:     newWriter(brokers, resultsTopic),
		log:         log,
	}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
	}
}

// ensureTopics emite CreateTopics no controller; tópico já existente não é erro.
func ensureTopics(brokers []string, topics []string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		log.Fatal("failed to connect to kafka", zap.Error(err))
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		log.Fatal("failed to get kafka controller", zap.Error(err))
	}

	controllerAddr := fmt.Sprintf("%s:%d", controller.Host, controller.Port)
	cconn, err := kafka.DialContext(ctx, "tcp", controllerAddr)
	if err != nil {
		log.Fatal("failed to dial controller", zap.Error(err))
	}
	defer cconn.Close()

	for _, topic := range topics {
		cfg := kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}
		if err := cconn.CreateTopics(cfg); err != nil && !strings.Contains(err.Error(), "already exists") {
			log.Warn("failed to create kafka topic", zap.String("topic", topic), zap.Error(err))
		} else if err == nil {
			log.Info("kafka topic created", zap.String("topic", topic))
		}
	}
}

// PublishQuote publica uma cotação chaveada por partida, preservando a ordem
// por partição para cada match_id.
func (p *KafkaPublisher) PublishQuote(ctx context.Context, e events.OddsQuoteUpdated) error {
	return p.publish(ctx, p.quotes, e.MatchID, e)
}

func (p *KafkaPublisher) PublishPrediction(ctx context.Context, e events.PredictionCreated) error {
	return p.publish(ctx, p.predictions, e.MatchID, e)
}

func (p *KafkaPublisher) PublishResult(ctx context.Context, e events.MatchResult) error {
	return p.publish(ctx, p.results, e.MatchID, e)
}

func (p *KafkaPublisher) publish(ctx context.Context, w *kafka.Writer, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := kafka.Message{Key: []byte(key), Value: value, Time: time.Now()}
	if err := w.WriteMessages(ctx, msg); err != nil {
		p.log.Error("failed to publish feed message", zap.String("topic", w.Topic), zap.Error(err))
		return err
	}
	p.log.Debug("published feed message", zap.String("topic", w.Topic), zap.String("key", key))
	return nil
}

// Close finaliza os writers e libera recursos associados.
func (p *KafkaPublisher) Close() error {
	for _, w := range []*kafka.Writer{p.quotes, p.predictions, p.results} {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}
