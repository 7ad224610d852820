package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenCache implements domain.SeenCache using Redis SET NX with a TTL.
// Keys are namespaced under "seen:" so a FLUSHDB-free cleanup stays possible.
type SeenCache struct {
	rdb *redis.Client
}

// NewSeenCache creates a SeenCache backed by the given Client.
func NewSeenCache(c *Client) *SeenCache {
	return &SeenCache{rdb: c.Underlying()}
}

func seenKey(key string) string {
	return "seen:" + key
}

// MarkSeen records key with the given TTL and reports whether this call was
// the first sighting. SET NX guarantees exactly one caller wins per key even
// under concurrent pipeline runs.
func (sc *SeenCache) MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	first, err := sc.rdb.SetNX(ctx, seenKey(key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: mark seen %s: %w", key, err)
	}
	return first, nil
}

// Clear removes a seen marker, allowing the key to be emitted again.
func (sc *SeenCache) Clear(ctx context.Context, key string) error {
	if err := sc.rdb.Del(ctx, seenKey(key)).Err(); err != nil {
		return fmt.Errorf("redis: clear seen %s: %w", key, err)
	}
	return nil
}
