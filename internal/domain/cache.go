package domain

import (
	"context"
	"time"
)

// SeenCache deduplicates picks across pipeline runs. MarkSeen records the key
// with a TTL and reports whether this was the first sighting; a false return
// means a pick for the same (game, market, side) was already emitted.
type SeenCache interface {
	MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Clear(ctx context.Context, key string) error
}

// SplitsCache holds the most recent public betting splits per game so the
// merger can fall back to the last known figures between splits refreshes.
type SplitsCache interface {
	Set(ctx context.Context, splits PublicSplits) error
	Get(ctx context.Context, gameID string) (PublicSplits, error)
	SetBatch(ctx context.Context, splits []PublicSplits) error
}
