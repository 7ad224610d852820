package domain

import "time"

// MarketKey identifies a betting market within a bookmaker listing.
type MarketKey string

const (
	MarketSpreads MarketKey = "spreads"
	MarketTotals  MarketKey = "totals"
	MarketML      MarketKey = "h2h"
)

// Side is the bettable side of a market.
type Side string

const (
	SideHome  Side = "home"
	SideAway  Side = "away"
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// Outcome is a single priced outcome within a bookmaker market. Price is in
// decimal-odds convention. Point is nil for moneyline outcomes.
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// MarketListing is one market (spreads, totals, h2h) offered by a bookmaker.
type MarketListing struct {
	Key      MarketKey `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Bookmaker is a single book's listings for one game. Order within a
// GameRecord is significant: best-line ties break toward the earlier listing.
type Bookmaker struct {
	Key     string          `json:"key"`
	Title   string          `json:"title"`
	Markets []MarketListing `json:"markets"`
}

// GameRecord is the merged per-game view consumed by every detector. Line and
// percentage fields are pointers: nil means the upstream source had no data,
// which detectors must treat as "decline to fire", never as zero.
//
// Spread sign convention: negative means the home team is favored by that
// many points.
type GameRecord struct {
	GameID       string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time

	OpeningSpread *float64
	CurrentSpread *float64
	OpeningTotal  *float64
	CurrentTotal  *float64

	// Public bet shares, each in [0,1].
	PublicPctHome       *float64 // share of spread bets on home
	PublicPctOver       *float64
	PublicPctHomeML     *float64
	PublicPctHomeSpread *float64

	// ATS records over the last 10 games, "W-L" form (e.g. "2-8").
	HomeATSL10 string
	AwayATSL10 string

	Bookmakers []Bookmaker
}

// Label renders the conventional "AWAY @ HOME" game label.
func (g GameRecord) Label() string {
	return g.AwayTeam + " @ " + g.HomeTeam
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 { return &v }

// OddsGame is one game in a raw odds-window snapshot, prior to merging.
type OddsGame struct {
	ID           string      `json:"id"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	CommenceTime time.Time   `json:"commence_time"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// OddsSnapshot is a timestamped odds window fetched from the odds provider.
type OddsSnapshot struct {
	Sport     string     `json:"sport"`
	FetchedAt time.Time  `json:"fetched_at"`
	Games     []OddsGame `json:"games"`
}

// OpeningLine is the first spread/total observed for a game on a given date,
// captured once and never overwritten for that date.
type OpeningLine struct {
	GameID     string
	Date       string // YYYYMMDD
	Spread     *float64
	Total      *float64
	CapturedAt time.Time
}

// PublicSplits carries the public betting percentages and ATS records for one
// game, keyed by game id upstream. Nil percentage means the source had no
// figure for that market.
type PublicSplits struct {
	GameID     string   `json:"game_id"`
	SpreadHome *float64 `json:"spread_home,omitempty"`
	TotalOver  *float64 `json:"total_over,omitempty"`
	MLHome     *float64 `json:"ml_home,omitempty"`
	HomeATSL10 string   `json:"home_ats_l10,omitempty"`
	AwayATSL10 string   `json:"away_ats_l10,omitempty"`
}
