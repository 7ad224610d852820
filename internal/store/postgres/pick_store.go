package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/epinal/sharpline/internal/domain"
)

// PickStore implements domain.PickStore using PostgreSQL.
type PickStore struct {
	pool *pgxpool.Pool
}

// NewPickStore creates a new PickStore backed by the given connection pool.
func NewPickStore(pool *pgxpool.Pool) *PickStore {
	return &PickStore{pool: pool}
}

const pickSelectCols = `id, game_id, game, market, pick, tier, confidence,
	signals, reasoning, best_book, created_at`

const pickInsertQuery = `
	INSERT INTO picks (
		id, game_id, game, market, pick, tier, confidence,
		signals, reasoning, best_book, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11
	) ON CONFLICT (id) DO NOTHING`

func pickInsertArgs(p domain.Pick) []any {
	signals := make([]string, len(p.Signals))
	for i, s := range p.Signals {
		signals[i] = string(s)
	}
	return []any{
		p.ID, p.GameID, p.Game, string(p.Market), p.Pick, string(p.Tier),
		p.Confidence, signals, p.Reasoning, p.BestBook, p.Timestamp,
	}
}

func scanPickRows(rows pgx.Rows) ([]domain.Pick, error) {
	var picks []domain.Pick
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

func scanPick(row pgx.Row) (domain.Pick, error) {
	var (
		p       domain.Pick
		market  string
		tier    string
		signals []string
	)
	if err := row.Scan(
		&p.ID, &p.GameID, &p.Game, &market, &p.Pick, &tier, &p.Confidence,
		&signals, &p.Reasoning, &p.BestBook, &p.Timestamp,
	); err != nil {
		return domain.Pick{}, err
	}
	p.Market = domain.MarketKey(market)
	p.Tier = domain.Tier(tier)
	p.Signals = make([]domain.SignalType, len(signals))
	for i, s := range signals {
		p.Signals[i] = domain.SignalType(s)
	}
	return p, nil
}

// Insert stores a single pick, reporting domain.ErrAlreadyExists when the ID
// is already stored.
func (s *PickStore) Insert(ctx context.Context, pick domain.Pick) error {
	tag, err := s.pool.Exec(ctx, pickInsertQuery, pickInsertArgs(pick)...)
	if err != nil {
		return fmt.Errorf("postgres: insert pick %s: %w", pick.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: insert pick %s: %w", pick.ID, domain.ErrAlreadyExists)
	}
	return nil
}

// InsertBatch inserts multiple picks efficiently using pgx Batch. Duplicate
// IDs are silently skipped via ON CONFLICT DO NOTHING.
func (s *PickStore) InsertBatch(ctx context.Context, picks []domain.Pick) error {
	if len(picks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range picks {
		batch.Queue(pickInsertQuery, pickInsertArgs(p)...)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range picks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert pick batch item %d: %w", i, err)
		}
	}
	return nil
}

// GetByID returns the pick with the given ID, or domain.ErrNotFound.
func (s *PickStore) GetByID(ctx context.Context, id string) (domain.Pick, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pickSelectCols+` FROM picks WHERE id = $1`, id)
	p, err := scanPick(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Pick{}, domain.ErrNotFound
		}
		return domain.Pick{}, fmt.Errorf("postgres: get pick %s: %w", id, err)
	}
	return p, nil
}

// ListRecent returns picks ordered by creation time descending, with
// pagination and optional time filtering.
func (s *PickStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.Pick, error) {
	query := `SELECT ` + pickSelectCols + ` FROM picks WHERE 1=1`
	var args []any
	argIdx := 1

	if opts.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent picks: %w", err)
	}
	defer rows.Close()

	picks, err := scanPickRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan recent picks: %w", err)
	}
	return picks, nil
}

// ListByGame returns every pick stored for the given game, newest first.
func (s *PickStore) ListByGame(ctx context.Context, gameID string) ([]domain.Pick, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pickSelectCols+` FROM picks WHERE game_id = $1 ORDER BY created_at DESC`,
		gameID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list picks by game: %w", err)
	}
	defer rows.Close()

	picks, err := scanPickRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan picks by game: %w", err)
	}
	return picks, nil
}

// Count returns the total number of stored picks.
func (s *PickStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM picks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count picks: %w", err)
	}
	return n, nil
}
