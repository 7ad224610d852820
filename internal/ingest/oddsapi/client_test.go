package oddsapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:         baseURL,
		APIKey:          "test-key",
		Sport:           "basketball_nba",
		Regions:         "us",
		Timeout:         2 * time.Second,
		MaxRetryElapsed: 2 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const oddsBody = `[
	{
		"id": "g1",
		"sport_key": "basketball_nba",
		"commence_time": "2026-03-14T00:00:00Z",
		"home_team": "Milwaukee Bucks",
		"away_team": "Indiana Pacers",
		"bookmakers": [
			{
				"key": "draftkings",
				"title": "DraftKings",
				"markets": [
					{
						"key": "spreads",
						"outcomes": [
							{"name": "Milwaukee Bucks", "price": 1.91, "point": -5.5},
							{"name": "Indiana Pacers", "price": 1.91, "point": 5.5}
						]
					}
				]
			}
		]
	}
]`

func TestFetchOdds(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sports/basketball_nba/odds" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Write([]byte(oddsBody))
	}))
	defer srv.Close()

	snap, err := testClient(srv.URL).FetchOdds(context.Background())
	if err != nil {
		t.Fatalf("FetchOdds: %v", err)
	}

	for _, param := range []string{"apiKey=test-key", "regions=us", "oddsFormat=decimal"} {
		if !containsParam(gotQuery, param) {
			t.Errorf("query %q missing %q", gotQuery, param)
		}
	}

	if snap.Sport != "basketball_nba" {
		t.Errorf("Sport = %q", snap.Sport)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
	if len(snap.Games) != 1 {
		t.Fatalf("games = %d, want 1", len(snap.Games))
	}
	g := snap.Games[0]
	if g.ID != "g1" || g.HomeTeam != "Milwaukee Bucks" || g.AwayTeam != "Indiana Pacers" {
		t.Errorf("game = %+v", g)
	}
	if len(g.Bookmakers) != 1 || len(g.Bookmakers[0].Markets) != 1 {
		t.Fatalf("bookmakers not carried through: %+v", g.Bookmakers)
	}
	outcomes := g.Bookmakers[0].Markets[0].Outcomes
	if len(outcomes) != 2 || outcomes[0].Point == nil || *outcomes[0].Point != -5.5 {
		t.Errorf("outcomes = %+v", outcomes)
	}
}

func TestFetchOddsRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	snap, err := testClient(srv.URL).FetchOdds(context.Background())
	if err != nil {
		t.Fatalf("FetchOdds: %v", err)
	}
	if got := calls.Load(); got < 3 {
		t.Errorf("calls = %d, want at least 3", got)
	}
	if len(snap.Games) != 0 {
		t.Errorf("games = %d, want 0", len(snap.Games))
	}
}

func TestFetchOddsUnauthorizedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).FetchOdds(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want exactly 1", got)
	}
}

func TestFetchOddsMalformedBodyIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).FetchOdds(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want exactly 1", got)
	}
}

func containsParam(query, param string) bool {
	return strings.Contains("&"+query+"&", "&"+param+"&")
}
