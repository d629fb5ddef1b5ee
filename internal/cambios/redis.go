package cambios

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Canal is the redis pub/sub channel shared by every instance.
const Canal = "infourbi:cambios"

// RedisPublisher publishes events to the shared redis channel. Pair it with a
// Relay on every instance so local hubs see events from all instances.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Evento) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, Canal, raw).Err(); err != nil {
		return fmt.Errorf("cambios: publish redis: %w", err)
	}
	return nil
}

// Relay re-broadcasts events received on the redis channel into a local Hub.
type Relay struct {
	rdb *redis.Client
	hub *Hub
}

func NewRelay(rdb *redis.Client, hub *Hub) *Relay {
	return &Relay{rdb: rdb, hub: hub}
}

// Run blocks until ctx is cancelled or the redis subscription ends.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, Canal)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("cambios: subscribe redis: %w", err)
	}
	log.Info().Str("component", "cambios").Str("canal", Canal).Msg("relay de cambios activo")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Evento
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn().Str("component", "cambios").Err(err).Msg("evento redis invalido")
				continue
			}
			_ = r.hub.Publish(ctx, ev)
		}
	}
}
