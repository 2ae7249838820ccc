package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/hotelbot/config"
	"github.com/Domenick1991/hotelbot/internal/session"
	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps conversation sessions in Redis so they survive a
// restart and expire on their own.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (c *RedisSessionStore) Get(ctx context.Context, key session.Key) (session.Session, error) {
	data, err := c.client.Get(ctx, sessionKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.New(), nil
		}
		return session.Session{}, err
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return session.Session{}, fmt.Errorf("decode session %s: %w", key, err)
	}
	return s, nil
}

func (c *RedisSessionStore) Save(ctx context.Context, key session.Key, s session.Session) error {
	s.UpdatedAt = time.Now()
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKey(key), payload, c.ttl).Err()
}

func (c *RedisSessionStore) Delete(ctx context.Context, key session.Key) error {
	return c.client.Del(ctx, sessionKey(key)).Err()
}

func (c *RedisSessionStore) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func sessionKey(key session.Key) string {
	return "session:" + key.String()
}

var _ session.Store = (*RedisSessionStore)(nil)
