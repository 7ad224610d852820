package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/epinal/sharpline/internal/domain"
)

// OpeningLineStore implements domain.OpeningLineStore using PostgreSQL.
type OpeningLineStore struct {
	pool *pgxpool.Pool
}

// NewOpeningLineStore creates a new OpeningLineStore backed by the given
// connection pool.
func NewOpeningLineStore(pool *pgxpool.Pool) *OpeningLineStore {
	return &OpeningLineStore{pool: pool}
}

// SetIfAbsent records the opening line for (game_id, date) only if no capture
// exists yet. A later call for the same pair is a no-op, which is what makes
// the first observation of the day the opening line.
func (s *OpeningLineStore) SetIfAbsent(ctx context.Context, line domain.OpeningLine) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO opening_lines (game_id, date, spread, total, captured_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, date) DO NOTHING`,
		line.GameID, line.Date, line.Spread, line.Total, line.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: set opening line %s/%s: %w", line.GameID, line.Date, err)
	}
	return nil
}

// Get returns the opening line captured for (game_id, date), or
// domain.ErrNotFound.
func (s *OpeningLineStore) Get(ctx context.Context, gameID, date string) (domain.OpeningLine, error) {
	var line domain.OpeningLine
	err := s.pool.QueryRow(ctx, `
		SELECT game_id, date, spread, total, captured_at
		FROM opening_lines WHERE game_id = $1 AND date = $2`,
		gameID, date,
	).Scan(&line.GameID, &line.Date, &line.Spread, &line.Total, &line.CapturedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OpeningLine{}, domain.ErrNotFound
		}
		return domain.OpeningLine{}, fmt.Errorf("postgres: get opening line %s/%s: %w", gameID, date, err)
	}
	return line, nil
}

// ListByDate returns every opening line captured on the given date.
func (s *OpeningLineStore) ListByDate(ctx context.Context, date string) ([]domain.OpeningLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT game_id, date, spread, total, captured_at
		FROM opening_lines WHERE date = $1 ORDER BY game_id ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opening lines for %s: %w", date, err)
	}
	defer rows.Close()

	var lines []domain.OpeningLine
	for rows.Next() {
		var line domain.OpeningLine
		if err := rows.Scan(&line.GameID, &line.Date, &line.Spread, &line.Total, &line.CapturedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan opening line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: scan opening lines: %w", err)
	}
	return lines, nil
}
