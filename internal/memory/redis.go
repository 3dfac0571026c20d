package memory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// memoryTTL is the sliding retention period of the durable tier; it is
// renewed on every save.
const memoryTTL = 7 * 24 * time.Hour

// RedisStore is the durable tier: serialized turn lists keyed under the
// conversation namespace with a sliding expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// Ping probes connectivity; the manager calls it once at construction to
// pick the active tier.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]Turn, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading memory from redis: %w", err)
	}
	return UnmarshalTurns(data)
}

func (s *RedisStore) Save(ctx context.Context, key string, turns []Turn) error {
	data, err := MarshalTurns(turns)
	if err != nil {
		return fmt.Errorf("error serializing memory: %w", err)
	}
	if err := s.client.Set(ctx, key, data, memoryTTL).Err(); err != nil {
		return fmt.Errorf("error saving memory to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	deleted, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("error deleting memory from redis: %w", err)
	}
	return deleted > 0, nil
}

func (s *RedisStore) Keys(ctx context.Context, ownerID string) ([]string, error) {
	pattern := keyPrefix + "*"
	if ownerID != "" {
		pattern = keyPrefix + ownerID + ":*"
	}
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("error scanning memory keys: %w", err)
	}
	return keys, nil
}

func (s *RedisStore) Name() string {
	return "redis"
}

// ServerInfo is the durable-tier diagnostic summary exposed on /redis/info.
type ServerInfo struct {
	Connected        bool   `json:"connected"`
	Version          string `json:"version,omitempty"`
	UptimeSeconds    int64  `json:"uptime,omitempty"`
	MemoryUsed       string `json:"memory_used,omitempty"`
	ConnectedClients int64  `json:"connected_clients,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Info queries the server and extracts the fields the diagnostics endpoint
// reports.
func (s *RedisStore) Info(ctx context.Context) ServerInfo {
	raw, err := s.client.Info(ctx).Result()
	if err != nil {
		return ServerInfo{Connected: false, Error: err.Error()}
	}

	info := ServerInfo{Connected: true}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		switch name {
		case "redis_version":
			info.Version = value
		case "uptime_in_seconds":
			info.UptimeSeconds, _ = strconv.ParseInt(value, 10, 64)
		case "used_memory_human":
			info.MemoryUsed = value
		case "connected_clients":
			info.ConnectedClients, _ = strconv.ParseInt(value, 10, 64)
		}
	}
	return info
}
