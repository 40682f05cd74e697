package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/value-bet-platform/internal/valuebet"
)

// ChannelBatchRefresh é o canal Redis Pub/Sub notificado a cada novo lote.
const ChannelBatchRefresh = "value_bets_refresh"

const keyBatch = "valuebets:current"

// Cache guarda o lote corrente de oportunidades no Redis e notifica
// assinantes (WebSocket do valuebet-api) quando um novo lote é publicado.
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *Cache {
	return &Cache{R: r, TTL: ttl}
}

// BatchRefresh é o payload publicado no canal de refresh.
type BatchRefresh struct {
	BatchID   string    `json:"batch_id"`
	Count     int       `json:"count"`
	TopValue  float64   `json:"top_value"`
	CreatedAt time.Time `json:"created_at"`
}

// SetBatch grava o lote corrente com TTL.
func (c *Cache) SetBatch(ctx context.Context, opps []valuebet.Opportunity) error {
	b, err := json.Marshal(opps)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, keyBatch, b, c.TTL).Err()
}

// GetBatch lê o lote corrente. ok=false quando o cache está frio.
func (c *Cache) GetBatch(ctx context.Context, dst *[]valuebet.Opportunity) (bool, error) {
	b, err := c.R.Get(ctx, keyBatch).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

// PublishRefresh notifica os assinantes de que um novo lote está disponível.
func (c *Cache) PublishRefresh(ctx context.Context, r BatchRefresh) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.R.Publish(ctx, ChannelBatchRefresh, b).Err()
}
