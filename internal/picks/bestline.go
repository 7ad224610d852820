package picks

import (
	"strings"

	"github.com/epinal/sharpline/internal/domain"
)

// BestLine is the most favorable listing found across bookmakers for one
// market/side.
type BestLine struct {
	Point        float64
	Price        float64 // decimal odds
	AmericanOdds int
	Bookmaker    string
}

// FindBestLine scans every bookmaker listing on the game for the requested
// market and side and returns the one with the numerically highest decimal
// price. Ties break toward the earlier listing in input order. Listings
// without a point or with a degenerate price (<= 1.0) are skipped. ok is
// false when no listing matched.
func FindBestLine(game domain.GameRecord, market domain.MarketKey, side domain.Side) (BestLine, bool) {
	var best BestLine
	found := false

	for _, book := range game.Bookmakers {
		for _, mkt := range book.Markets {
			if mkt.Key != market {
				continue
			}
			for _, outcome := range mkt.Outcomes {
				if !outcomeMatches(game, market, side, outcome.Name) {
					continue
				}
				if outcome.Point == nil || outcome.Price <= 1.0 {
					continue
				}
				if !found || outcome.Price > best.Price {
					best = BestLine{
						Point:        *outcome.Point,
						Price:        outcome.Price,
						AmericanOdds: DecimalToAmerican(outcome.Price),
						Bookmaker:    book.Title,
					}
					found = true
				}
			}
		}
	}

	return best, found
}

// outcomeMatches reports whether an outcome name names the requested side:
// the home or away team for spreads, "Over"/"Under" for totals.
func outcomeMatches(game domain.GameRecord, market domain.MarketKey, side domain.Side, name string) bool {
	switch market {
	case domain.MarketSpreads:
		switch side {
		case domain.SideHome:
			return strings.EqualFold(name, game.HomeTeam)
		case domain.SideAway:
			return strings.EqualFold(name, game.AwayTeam)
		}
	case domain.MarketTotals:
		return strings.EqualFold(name, string(side))
	}
	return false
}

// DecimalToAmerican converts decimal odds to American odds: (d-1)*100 for
// d >= 2.0, otherwise -100/(d-1). Callers must not pass d <= 1.0.
func DecimalToAmerican(decimal float64) int {
	if decimal >= 2.0 {
		return int((decimal - 1) * 100)
	}
	return int(-100 / (decimal - 1))
}
