package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tgienger/double/internal/models"
)

// DefaultRedisKey is the key the session blob is stored under.
const DefaultRedisKey = "double:session"

// RedisConfig holds configuration for the Redis connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Redis stores the session as one JSON blob.
type Redis struct {
	rdb *redis.Client
	key string
}

// NewRedis connects to Redis and validates the connection.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{rdb: rdb, key: key}, nil
}

// Load returns the saved session, or nil if the key does not exist.
func (r *Redis) Load(ctx context.Context) (*models.Session, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	s, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// Save replaces the saved session.
func (r *Redis) Save(ctx context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Clear deletes the saved session.
func (r *Redis) Clear(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.rdb.Close()
}
