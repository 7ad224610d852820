package ingest

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/epinal/sharpline/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func oddsGame(id string) domain.OddsGame {
	return domain.OddsGame{
		ID:           id,
		HomeTeam:     "Bucks",
		AwayTeam:     "Pacers",
		CommenceTime: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Bookmakers: []domain.Bookmaker{
			{
				Key:   "draftkings",
				Title: "DraftKings",
				Markets: []domain.MarketListing{
					{
						Key: domain.MarketSpreads,
						Outcomes: []domain.Outcome{
							{Name: "Pacers", Price: 1.91, Point: domain.Float(5.5)},
							{Name: "Bucks", Price: 1.91, Point: domain.Float(-5.5)},
						},
					},
					{
						Key: domain.MarketTotals,
						Outcomes: []domain.Outcome{
							{Name: "Over", Price: 1.91, Point: domain.Float(218.5)},
							{Name: "Under", Price: 1.91, Point: domain.Float(218.5)},
						},
					},
				},
			},
			{
				Key:   "fanduel",
				Title: "FanDuel",
				Markets: []domain.MarketListing{{
					Key: domain.MarketSpreads,
					Outcomes: []domain.Outcome{
						{Name: "Bucks", Price: 1.91, Point: domain.Float(-6.0)},
					},
				}},
			},
		},
	}
}

func TestMerge(t *testing.T) {
	m := NewMerger(discardLogger())

	snap := domain.OddsSnapshot{
		Sport:     "basketball_nba",
		FetchedAt: time.Now(),
		Games:     []domain.OddsGame{oddsGame("g1")},
	}
	openings := map[string]domain.OpeningLine{
		"g1": {GameID: "g1", Date: "20260314", Spread: domain.Float(-7.5), Total: domain.Float(223.5)},
	}
	splits := map[string]domain.PublicSplits{
		"g1": {
			GameID:     "g1",
			SpreadHome: domain.Float(0.65),
			TotalOver:  domain.Float(0.64),
			MLHome:     domain.Float(0.70),
			HomeATSL10: "5-5",
			AwayATSL10: "2-8",
		},
	}

	games := m.Merge(snap, openings, splits)
	if len(games) != 1 {
		t.Fatalf("games = %d, want 1", len(games))
	}
	g := games[0]

	if g.GameID != "g1" || g.HomeTeam != "Bucks" || g.AwayTeam != "Pacers" {
		t.Errorf("identity fields wrong: %+v", g)
	}
	// Lines come from the first bookmaker only.
	if g.CurrentSpread == nil || *g.CurrentSpread != -5.5 {
		t.Errorf("CurrentSpread = %v, want -5.5", g.CurrentSpread)
	}
	if g.CurrentTotal == nil || *g.CurrentTotal != 218.5 {
		t.Errorf("CurrentTotal = %v, want 218.5", g.CurrentTotal)
	}
	if g.OpeningSpread == nil || *g.OpeningSpread != -7.5 {
		t.Errorf("OpeningSpread = %v, want -7.5", g.OpeningSpread)
	}
	if g.OpeningTotal == nil || *g.OpeningTotal != 223.5 {
		t.Errorf("OpeningTotal = %v, want 223.5", g.OpeningTotal)
	}
	if g.PublicPctHome == nil || *g.PublicPctHome != 0.65 {
		t.Errorf("PublicPctHome = %v, want 0.65", g.PublicPctHome)
	}
	if g.PublicPctHomeSpread == nil || *g.PublicPctHomeSpread != 0.65 {
		t.Errorf("PublicPctHomeSpread = %v, want 0.65", g.PublicPctHomeSpread)
	}
	if g.PublicPctOver == nil || *g.PublicPctOver != 0.64 {
		t.Errorf("PublicPctOver = %v, want 0.64", g.PublicPctOver)
	}
	if g.PublicPctHomeML == nil || *g.PublicPctHomeML != 0.70 {
		t.Errorf("PublicPctHomeML = %v, want 0.70", g.PublicPctHomeML)
	}
	if g.HomeATSL10 != "5-5" || g.AwayATSL10 != "2-8" {
		t.Errorf("ATS records = %q / %q", g.HomeATSL10, g.AwayATSL10)
	}
	if len(g.Bookmakers) != 2 {
		t.Errorf("Bookmakers = %d, want 2 preserved", len(g.Bookmakers))
	}
}

func TestMergeMissingFeeds(t *testing.T) {
	m := NewMerger(discardLogger())

	snap := domain.OddsSnapshot{Games: []domain.OddsGame{oddsGame("g1")}}
	games := m.Merge(snap, nil, nil)
	if len(games) != 1 {
		t.Fatalf("games = %d, want 1", len(games))
	}
	g := games[0]

	if g.OpeningSpread != nil || g.OpeningTotal != nil {
		t.Errorf("opening lines = %v / %v, want nil without an opening record", g.OpeningSpread, g.OpeningTotal)
	}
	for name, p := range map[string]*float64{
		"PublicPctHome":   g.PublicPctHome,
		"PublicPctOver":   g.PublicPctOver,
		"PublicPctHomeML": g.PublicPctHomeML,
	} {
		if p == nil || *p != 0.5 {
			t.Errorf("%s = %v, want even 0.5 split", name, p)
		}
	}
	if g.HomeATSL10 != "" || g.AwayATSL10 != "" {
		t.Errorf("ATS records = %q / %q, want empty", g.HomeATSL10, g.AwayATSL10)
	}
}

func TestMergeRejectsBadValues(t *testing.T) {
	m := NewMerger(discardLogger())

	snap := domain.OddsSnapshot{Games: []domain.OddsGame{oddsGame("g1")}}
	openings := map[string]domain.OpeningLine{
		"g1": {GameID: "g1", Spread: domain.Float(math.NaN()), Total: domain.Float(math.Inf(1))},
	}
	splits := map[string]domain.PublicSplits{
		"g1": {
			SpreadHome: domain.Float(1.2),
			TotalOver:  domain.Float(-0.1),
			MLHome:     domain.Float(math.NaN()),
		},
	}

	g := m.Merge(snap, openings, splits)[0]

	if g.OpeningSpread != nil {
		t.Errorf("OpeningSpread = %v, want nil for NaN", g.OpeningSpread)
	}
	if g.OpeningTotal != nil {
		t.Errorf("OpeningTotal = %v, want nil for Inf", g.OpeningTotal)
	}
	for name, p := range map[string]*float64{
		"PublicPctHome":   g.PublicPctHome,
		"PublicPctOver":   g.PublicPctOver,
		"PublicPctHomeML": g.PublicPctHomeML,
	} {
		if p == nil || *p != 0.5 {
			t.Errorf("%s = %v, want fallback 0.5", name, p)
		}
	}
}

func TestCurrentLinesEdgeCases(t *testing.T) {
	t.Run("no bookmakers", func(t *testing.T) {
		spread, total := CurrentLines(domain.OddsGame{HomeTeam: "Bucks"})
		if spread != nil || total != nil {
			t.Errorf("got %v / %v, want nil / nil", spread, total)
		}
	})

	t.Run("spread outcome without a point", func(t *testing.T) {
		g := domain.OddsGame{
			HomeTeam: "Bucks",
			Bookmakers: []domain.Bookmaker{{
				Markets: []domain.MarketListing{{
					Key:      domain.MarketSpreads,
					Outcomes: []domain.Outcome{{Name: "Bucks", Price: 1.91}},
				}},
			}},
		}
		spread, _ := CurrentLines(g)
		if spread != nil {
			t.Errorf("spread = %v, want nil", spread)
		}
	})

	t.Run("second bookmaker is ignored", func(t *testing.T) {
		g := oddsGame("g1")
		g.Bookmakers[0].Markets = nil
		spread, total := CurrentLines(g)
		if spread != nil || total != nil {
			t.Errorf("got %v / %v, want nil from an empty first book", spread, total)
		}
	})
}
