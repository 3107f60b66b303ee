package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gamestore_pos/internal/models"
)

// RedisStore mirrors in-flight checkout sessions so a register restart can
// resume an open cart. The in-process registry stays authoritative; every
// failure here is non-fatal and surfaced as a warning by the caller.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

func (s *RedisStore) Close() error {
	if s.Client != nil {
		return s.Client.Close()
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("checkout_session:%s", id)
}

func (s *RedisStore) StoreSession(ctx context.Context, session models.CheckoutSession, ttl time.Duration) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}

	if err := s.Client.Set(ctx, sessionKey(session.ID), sessionJSON, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set checkout session in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) GetSession(ctx context.Context, id string) (*models.CheckoutSession, error) {
	val, err := s.Client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get checkout session from redis: %w", err)
	}

	var session models.CheckoutSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session from redis: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, id string) error {
	if err := s.Client.Del(ctx, sessionKey(id)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to delete checkout session from redis: %w", err)
	}
	return nil
}
