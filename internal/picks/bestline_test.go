package picks

import (
	"testing"

	"github.com/epinal/sharpline/internal/domain"
)

func spreadBook(title string, homePoint, homePrice, awayPoint, awayPrice float64) domain.Bookmaker {
	return domain.Bookmaker{
		Key:   title,
		Title: title,
		Markets: []domain.MarketListing{{
			Key: domain.MarketSpreads,
			Outcomes: []domain.Outcome{
				{Name: "Bucks", Price: homePrice, Point: domain.Float(homePoint)},
				{Name: "Pacers", Price: awayPrice, Point: domain.Float(awayPoint)},
			},
		}},
	}
}

func totalsBook(title string, point, overPrice, underPrice float64) domain.Bookmaker {
	return domain.Bookmaker{
		Key:   title,
		Title: title,
		Markets: []domain.MarketListing{{
			Key: domain.MarketTotals,
			Outcomes: []domain.Outcome{
				{Name: "Over", Price: overPrice, Point: domain.Float(point)},
				{Name: "Under", Price: underPrice, Point: domain.Float(point)},
			},
		}},
	}
}

func TestFindBestLine(t *testing.T) {
	game := domain.GameRecord{
		GameID:   "g1",
		HomeTeam: "Bucks",
		AwayTeam: "Pacers",
		Bookmakers: []domain.Bookmaker{
			spreadBook("DraftKings", -5.5, 1.91, 5.5, 1.91),
			spreadBook("FanDuel", -5.5, 1.87, 5.5, 1.95),
			totalsBook("DraftKings", 218.5, 1.91, 1.91),
			totalsBook("FanDuel", 219.0, 1.95, 1.87),
		},
	}

	tests := []struct {
		name          string
		market        domain.MarketKey
		side          domain.Side
		wantOK        bool
		wantPoint     float64
		wantPrice     float64
		wantBookmaker string
		wantAmerican  int
	}{
		{
			name:          "home spread takes highest price",
			market:        domain.MarketSpreads,
			side:          domain.SideHome,
			wantOK:        true,
			wantPoint:     -5.5,
			wantPrice:     1.91,
			wantBookmaker: "DraftKings",
			wantAmerican:  -109,
		},
		{
			name:          "away spread found at the later book",
			market:        domain.MarketSpreads,
			side:          domain.SideAway,
			wantOK:        true,
			wantPoint:     5.5,
			wantPrice:     1.95,
			wantBookmaker: "FanDuel",
			wantAmerican:  -105,
		},
		{
			name:          "over takes the better price and its point",
			market:        domain.MarketTotals,
			side:          domain.SideOver,
			wantOK:        true,
			wantPoint:     219.0,
			wantPrice:     1.95,
			wantBookmaker: "FanDuel",
			wantAmerican:  -105,
		},
		{
			name:          "under stays at the first book",
			market:        domain.MarketTotals,
			side:          domain.SideUnder,
			wantOK:        true,
			wantPoint:     218.5,
			wantPrice:     1.91,
			wantBookmaker: "DraftKings",
			wantAmerican:  -109,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, ok := FindBestLine(game, tt.market, tt.side)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if best.Point != tt.wantPoint {
				t.Errorf("Point = %v, want %v", best.Point, tt.wantPoint)
			}
			if best.Price != tt.wantPrice {
				t.Errorf("Price = %v, want %v", best.Price, tt.wantPrice)
			}
			if best.Bookmaker != tt.wantBookmaker {
				t.Errorf("Bookmaker = %q, want %q", best.Bookmaker, tt.wantBookmaker)
			}
			if best.AmericanOdds != tt.wantAmerican {
				t.Errorf("AmericanOdds = %d, want %d", best.AmericanOdds, tt.wantAmerican)
			}
		})
	}
}

func TestFindBestLineTieKeepsFirstListing(t *testing.T) {
	game := domain.GameRecord{
		HomeTeam: "Bucks",
		AwayTeam: "Pacers",
		Bookmakers: []domain.Bookmaker{
			spreadBook("DraftKings", -5.5, 1.91, 5.5, 1.91),
			spreadBook("FanDuel", -6.0, 1.91, 6.0, 1.91),
		},
	}

	best, ok := FindBestLine(game, domain.MarketSpreads, domain.SideHome)
	if !ok {
		t.Fatal("expected a line")
	}
	if best.Bookmaker != "DraftKings" || best.Point != -5.5 {
		t.Errorf("got %q %v, want DraftKings -5.5", best.Bookmaker, best.Point)
	}
}

func TestFindBestLineSkipsDegenerateListings(t *testing.T) {
	game := domain.GameRecord{
		HomeTeam: "Bucks",
		AwayTeam: "Pacers",
		Bookmakers: []domain.Bookmaker{
			{
				Title: "BadBook",
				Markets: []domain.MarketListing{{
					Key: domain.MarketSpreads,
					Outcomes: []domain.Outcome{
						{Name: "Bucks", Price: 1.91}, // no point
						{Name: "Pacers", Price: 1.0, Point: domain.Float(5.5)},
					},
				}},
			},
		},
	}

	if _, ok := FindBestLine(game, domain.MarketSpreads, domain.SideHome); ok {
		t.Error("pointless listing should be skipped")
	}
	if _, ok := FindBestLine(game, domain.MarketSpreads, domain.SideAway); ok {
		t.Error("even-or-worse price should be skipped")
	}
	if _, ok := FindBestLine(game, domain.MarketTotals, domain.SideOver); ok {
		t.Error("absent market should not match")
	}
}

func TestDecimalToAmerican(t *testing.T) {
	tests := []struct {
		decimal float64
		want    int
	}{
		{2.0, 100},
		{2.5, 150},
		{3.25, 225},
		{1.95, -105},
		{1.91, -109},
		{1.5, -200},
	}

	for _, tt := range tests {
		if got := DecimalToAmerican(tt.decimal); got != tt.want {
			t.Errorf("DecimalToAmerican(%v) = %d, want %d", tt.decimal, got, tt.want)
		}
	}
}
