package cache

import (
	"context"
	"errors"
	"fieldmap-service/internal/platform/obs"
	"fieldmap-service/internal/ports"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "fieldmap:snapshot:"

// Redis backed store for upstream payloads. Each snapshot is a hash with
// payload and fetched_at fields; TTL bounds how long a stale copy survives.
// A zero TTL keeps entries until they are replaced.
type RedisSnapshotCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{Client: client, TTL: ttl}
}

// Fetch the stored payload for key.
func (s *RedisSnapshotCache) Get(ctx context.Context, key string) (_ ports.Snapshot, _ bool, err error) {
	defer obs.Time(ctx, "snapshot.redis.Get")(&err)

	if s.Client == nil {
		return ports.Snapshot{}, false, errors.New("snapshot cache: redis client is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return ports.Snapshot{}, false, errors.New("get snapshot cache: key must not be empty")
	}

	fields, err := s.Client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return ports.Snapshot{}, false, fmt.Errorf("get snapshot cache: hgetall %q: %w", key, err)
	}
	if len(fields) == 0 {
		return ports.Snapshot{}, false, nil
	}

	payload, ok := fields["payload"]
	if !ok {
		return ports.Snapshot{}, false, fmt.Errorf("get snapshot cache: %q has no payload field", key)
	}

	ms, err := strconv.ParseInt(fields["fetched_at"], 10, 64)
	if err != nil {
		return ports.Snapshot{}, false, fmt.Errorf("get snapshot cache: %q fetched_at: %w", key, err)
	}

	return ports.Snapshot{
		Key:       key,
		Payload:   []byte(payload),
		FetchedAt: time.UnixMilli(ms).UTC(),
	}, true, nil
}

// Store or replace the payload for key.
func (s *RedisSnapshotCache) Put(ctx context.Context, key string, payload []byte, fetchedAt time.Time) error {
	if s.Client == nil {
		return errors.New("snapshot cache: redis client is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert snapshot cache: key must not be empty")
	}

	rkey := redisKeyPrefix + key
	_, err := s.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, rkey)
		p.HSet(ctx, rkey, "payload", payload, "fetched_at", fetchedAt.UnixMilli())
		if s.TTL > 0 {
			p.Expire(ctx, rkey, s.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert snapshot cache key=%q: %w", key, err)
	}

	return nil
}
