package ws

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/internal/valuebet/cache"
)

// StartRedisSubscriber escuta o canal de refresh do lote de value bets e
// repassa cada notificação para os clientes WebSocket conectados via Hub.
// O payload é repassado como recebido (já é JSON do publisher).
func StartRedisSubscriber(ctx context.Context, log *zap.Logger, r *redis.Client, hub *Hub) {
	sub := r.Subscribe(ctx, cache.ChannelBatchRefresh)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				log.Debug("broadcasting batch refresh", zap.Int("bytes", len(msg.Payload)))
				hub.Broadcast([]byte(msg.Payload))
			}
		}
	}()
}
