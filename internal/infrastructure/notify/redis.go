package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Materiales-api/internal/application/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
)

var _ inventory.NotificationSink = (*RedisSink)(nil)

// Publisher lo que usa RedisSink de *redis.Client.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisSink publica la alerta en un canal pub/sub para consumidores en tiempo real.
type RedisSink struct {
	client  Publisher
	channel string
}

// NewRedisSink construye el sink sobre un cliente ya configurado.
func NewRedisSink(client Publisher, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

// NewRedisClient abre el cliente de go-redis.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Emit publica la alerta serializada en JSON.
func (s *RedisSink) Emit(ctx context.Context, alert entity.StockAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("redis: serializar alerta: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", s.channel, err)
	}
	return nil
}
