package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/market-ingest/publisher"
	"github.com/radieske/value-bet-platform/pkg/contracts/events"
)

// WSClient consome o feed WebSocket do supplier de dados de mercado e
// roteia cada mensagem do envelope para o tópico Kafka correspondente.
type WSClient struct {
	URL       string
	Log       *zap.Logger
	Publisher *publisher.KafkaPublisher

	OnReceived  func(feedType string) // métricas
	OnPublished func(feedType string) // métricas
}

// Start inicia o loop de conexão e escuta do WebSocket.
// Em caso de desconexão, tenta reconectar automaticamente com backoff.
func (c *WSClient) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.Log.Info("context canceled, stopping WS client")
			return
		default:
			if err := c.connectAndListen(ctx); err != nil {
				c.Log.Warn("connection closed", zap.Error(err))
				time.Sleep(3 * time.Second) // Aguarda antes de tentar reconectar
			}
		}
	}
}

func (c *WSClient) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	c.Log.Info("connected to market data feed", zap.String("url", c.URL))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, context.Canceled) {
				return nil
			}
			c.Log.Error("read message failed", zap.Error(err))
			return err
		}

		var msg events.FeedMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.Log.Warn("invalid feed message", zap.Error(err))
			continue
		}
		if c.OnReceived != nil {
			c.OnReceived(msg.Type)
		}

		if err := c.route(ctx, msg); err != nil {
			c.Log.Error("failed to publish to Kafka", zap.String("type", msg.Type), zap.Error(err))
			continue
		}
		if c.OnPublished != nil {
			c.OnPublished(msg.Type)
		}
	}
}

// route despacha o envelope para o tópico do seu tipo. Envelope sem payload
// coerente com o tipo é descartado com log.
func (c *WSClient) route(ctx context.Context, msg events.FeedMessage) error {
	switch msg.Type {
	case events.FeedTypeOdds:
		if msg.Odds == nil {
			return errors.New("odds envelope without payload")
		}
		return c.Publisher.PublishQuote(ctx, *msg.Odds)
	case events.FeedTypePrediction:
		if msg.Prediction == nil {
			return errors.New("prediction envelope without payload")
		}
		return c.Publisher.PublishPrediction(ctx, *msg.Prediction)
	case events.FeedTypeResult:
		if msg.Result == nil {
			return errors.New("result envelope without payload")
		}
		return c.Publisher.PublishResult(ctx, *msg.Result)
	}
	return errors.New("unknown feed message type " + msg.Type)
}
