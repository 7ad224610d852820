package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/epinal/sharpline/internal/domain"
)

// splitsTTL bounds how long stale splits survive between refreshes. A day is
// enough to carry figures across one slate of games.
const splitsTTL = 24 * time.Hour

// SplitsCache implements domain.SplitsCache using Redis string keys holding
// JSON-encoded splits, one key per game.
type SplitsCache struct {
	rdb *redis.Client
}

// NewSplitsCache creates a SplitsCache backed by the given Client.
func NewSplitsCache(c *Client) *SplitsCache {
	return &SplitsCache{rdb: c.Underlying()}
}

func splitsKey(gameID string) string {
	return "splits:" + gameID
}

// Set stores the splits for one game, overwriting any previous figures.
func (sc *SplitsCache) Set(ctx context.Context, splits domain.PublicSplits) error {
	data, err := json.Marshal(splits)
	if err != nil {
		return fmt.Errorf("redis: marshal splits %s: %w", splits.GameID, err)
	}
	if err := sc.rdb.Set(ctx, splitsKey(splits.GameID), data, splitsTTL).Err(); err != nil {
		return fmt.Errorf("redis: set splits %s: %w", splits.GameID, err)
	}
	return nil
}

// Get retrieves the cached splits for a game. It returns domain.ErrNotFound
// when no figures are cached.
func (sc *SplitsCache) Get(ctx context.Context, gameID string) (domain.PublicSplits, error) {
	data, err := sc.rdb.Get(ctx, splitsKey(gameID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.PublicSplits{}, domain.ErrNotFound
		}
		return domain.PublicSplits{}, fmt.Errorf("redis: get splits %s: %w", gameID, err)
	}

	var splits domain.PublicSplits
	if err := json.Unmarshal(data, &splits); err != nil {
		return domain.PublicSplits{}, fmt.Errorf("redis: unmarshal splits %s: %w", gameID, err)
	}
	return splits, nil
}

// SetBatch stores splits for multiple games using a pipeline.
func (sc *SplitsCache) SetBatch(ctx context.Context, splits []domain.PublicSplits) error {
	if len(splits) == 0 {
		return nil
	}

	pipe := sc.rdb.Pipeline()
	for _, s := range splits {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("redis: marshal splits %s: %w", s.GameID, err)
		}
		pipe.Set(ctx, splitsKey(s.GameID), data, splitsTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set splits batch: %w", err)
	}
	return nil
}
