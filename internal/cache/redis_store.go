// Package cache keeps the notification engine's state in Redis so it
// survives restarts.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"PintellAPI/internal/notify"

	"github.com/go-redis/redis/v8"
)

// DefaultStateKey holds the JSON snapshot of the engine.
const DefaultStateKey = "pintell:notifications:state"

// RedisStore implements notify.Store on a single Redis key.
type RedisStore struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Timeout  time.Duration
}

// NewRedisStore connects to Redis and checks the connection.
func NewRedisStore(opts Options) (*RedisStore, error) {
	if opts.Key == "" {
		opts.Key = DefaultStateKey
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     10,
		MinIdleConns: 1,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})

	store := &RedisStore{client: client, key: opts.Key, timeout: opts.Timeout}
	if err := store.Ping(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return store, nil
}

// Load returns nil without error when no snapshot has been saved yet.
func (s *RedisStore) Load() (*notify.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read notification state: %w", err)
	}
	return decodeSnapshot(data)
}

func (s *RedisStore) Save(snapshot *notify.Snapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write notification state: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func encodeSnapshot(snapshot *notify.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification state: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (*notify.Snapshot, error) {
	var snapshot notify.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification state: %w", err)
	}
	return &snapshot, nil
}
