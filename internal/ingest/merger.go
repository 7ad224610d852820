// Package ingest merges the three upstream feeds (odds windows, opening
// lines, public splits) into the typed per-game records the detectors
// consume. Validation happens here, at the boundary: out-of-range or
// non-finite values are dropped so downstream code only ever sees clean,
// possibly sparse, records.
package ingest

import (
	"log/slog"
	"math"

	"github.com/epinal/sharpline/internal/domain"
)

// Merger builds GameRecords from raw feed data.
type Merger struct {
	logger *slog.Logger
}

// NewMerger creates a Merger.
func NewMerger(logger *slog.Logger) *Merger {
	return &Merger{logger: logger.With(slog.String("component", "merger"))}
}

// Merge combines an odds snapshot with opening lines and public splits, both
// keyed by game id, into one GameRecord per game. Current lines come from
// the first bookmaker's listings. Games missing from the opening
// or splits maps produce records with nil lines / even splits, which the
// detectors treat as "decline to fire" rather than an error.
func (m *Merger) Merge(
	snap domain.OddsSnapshot,
	openingLines map[string]domain.OpeningLine,
	splits map[string]domain.PublicSplits,
) []domain.GameRecord {
	games := make([]domain.GameRecord, 0, len(snap.Games))

	for _, g := range snap.Games {
		rec := domain.GameRecord{
			GameID:       g.ID,
			HomeTeam:     g.HomeTeam,
			AwayTeam:     g.AwayTeam,
			CommenceTime: g.CommenceTime,
			Bookmakers:   g.Bookmakers,
		}

		rec.CurrentSpread, rec.CurrentTotal = CurrentLines(g)

		if opening, ok := openingLines[g.ID]; ok {
			rec.OpeningSpread = finiteOrNil(opening.Spread)
			rec.OpeningTotal = finiteOrNil(opening.Total)
		}

		sp := splits[g.ID]
		rec.PublicPctHome = m.pctOrEven(g.ID, "spread_home", sp.SpreadHome)
		rec.PublicPctHomeSpread = m.pctOrEven(g.ID, "spread_home", sp.SpreadHome)
		rec.PublicPctOver = m.pctOrEven(g.ID, "total_over", sp.TotalOver)
		rec.PublicPctHomeML = m.pctOrEven(g.ID, "ml_home", sp.MLHome)
		rec.HomeATSL10 = sp.HomeATSL10
		rec.AwayATSL10 = sp.AwayATSL10

		games = append(games, rec)
	}

	m.logger.Info("merged game data", slog.Int("games", len(games)))
	return games
}

// CurrentLines extracts the current home spread and game total from the
// first bookmaker's listings. The pipeline also uses it to capture
// opening lines on the day's first sighting of a game.
func CurrentLines(g domain.OddsGame) (spread, total *float64) {
	if len(g.Bookmakers) == 0 {
		return nil, nil
	}
	for _, mkt := range g.Bookmakers[0].Markets {
		switch mkt.Key {
		case domain.MarketSpreads:
			for _, outcome := range mkt.Outcomes {
				if outcome.Name == g.HomeTeam && outcome.Point != nil {
					spread = finiteOrNil(outcome.Point)
				}
			}
		case domain.MarketTotals:
			if len(mkt.Outcomes) > 0 && mkt.Outcomes[0].Point != nil {
				total = finiteOrNil(mkt.Outcomes[0].Point)
			}
		}
	}
	return spread, total
}

// pctOrEven validates a public percentage and falls back to an even 0.5
// split when the feed had no figure or an out-of-range one.
func (m *Merger) pctOrEven(gameID, field string, p *float64) *float64 {
	if p == nil {
		return domain.Float(0.5)
	}
	if *p < 0 || *p > 1 || math.IsNaN(*p) {
		m.logger.Warn("dropping out-of-range public percentage",
			slog.String("game_id", gameID),
			slog.String("field", field),
			slog.Float64("value", *p),
		)
		return domain.Float(0.5)
	}
	return p
}

// finiteOrNil rejects NaN and infinite line values.
func finiteOrNil(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
