package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// PickStore persists generated picks.
type PickStore interface {
	Insert(ctx context.Context, pick Pick) error
	InsertBatch(ctx context.Context, picks []Pick) error
	GetByID(ctx context.Context, id string) (Pick, error)
	ListRecent(ctx context.Context, opts ListOpts) ([]Pick, error)
	ListByGame(ctx context.Context, gameID string) ([]Pick, error)
	Count(ctx context.Context) (int64, error)
}

// OpeningLineStore persists the first line observed per game per day.
// SetIfAbsent must not overwrite an existing capture for the same
// (game_id, date) pair.
type OpeningLineStore interface {
	SetIfAbsent(ctx context.Context, line OpeningLine) error
	Get(ctx context.Context, gameID, date string) (OpeningLine, error)
	ListByDate(ctx context.Context, date string) ([]OpeningLine, error)
}
