package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/clonetts/internal/config"
)

// AudioCache keeps synthesized audio in Redis as raw bytes.
type AudioCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAudioCache(client *redis.Client, ttl time.Duration) *AudioCache {
	return &AudioCache{client: client, ttl: ttl}
}

// Connect opens a Redis client from cfg and pings it.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// GetAudio returns the cached audio for key; ok is false on a miss.
func (c *AudioCache) GetAudio(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return val, true, nil
}

func (c *AudioCache) SetAudio(ctx context.Context, key string, audio []byte) error {
	if err := c.client.Set(ctx, key, audio, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
