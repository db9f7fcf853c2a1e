package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukaramakaro/opa2-preview/config"
	"github.com/dukaramakaro/opa2-preview/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps recently consulted reservations so the public lookup
// endpoint does not hit the store on every poll of the confirmation page.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
	}
}

func (c *RedisCache) GetReservation(ctx context.Context, code string) (*domain.Reservation, error) {
	data, err := c.client.Get(ctx, reservationKey(code)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var r domain.Reservation
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *RedisCache) SetReservation(ctx context.Context, r *domain.Reservation) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, reservationKey(r.Code), payload, c.ttl).Err()
}

// Invalidate drops the cached copy after a status change or delete.
func (c *RedisCache) Invalidate(ctx context.Context, code string) error {
	return c.client.Del(ctx, reservationKey(code)).Err()
}

func reservationKey(code string) string {
	return fmt.Sprintf("cache:reserva:%s", code)
}
