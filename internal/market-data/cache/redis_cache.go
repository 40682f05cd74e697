package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/value-bet-platform/pkg/contracts/events"
)

// RedisCache guarda a cotação corrente de cada (partida, bookmaker) com TTL.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

func key(matchID, bookmaker string) string {
	return "quote:current:" + matchID + ":" + bookmaker
}

// SetCurrent armazena a cotação corrente no Redis.
func (r *RedisCache) SetCurrent(ctx context.Context, e events.OddsQuoteUpdated) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(e.MatchID, e.Bookmaker), b, r.TTL).Err()
}

// GetCurrent lê a cotação corrente. ok=false quando expirada/ausente.
func (r *RedisCache) GetCurrent(ctx context.Context, matchID, bookmaker string) (events.OddsQuoteUpdated, bool, error) {
	var e events.OddsQuoteUpdated
	b, err := r.Client.Get(ctx, key(matchID, bookmaker)).Bytes()
	if err == redis.Nil {
		return e, false, nil
	}
	if err != nil {
		return e, false, err
	}
	if err := json.Unmarshal(b, &e); err != nil {
		return e, false, err
	}
	return e, true, nil
}
