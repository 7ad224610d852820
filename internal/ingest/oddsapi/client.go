// Package oddsapi fetches odds windows from The Odds API over HTTP.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/epinal/sharpline/internal/domain"
)

// Config holds the odds provider endpoint and credentials.
type Config struct {
	BaseURL string
	APIKey  string
	Sport   string // e.g. "basketball_nba"
	Regions string // e.g. "us"
	Timeout time.Duration
	// MaxRetryElapsed bounds the total time spent retrying one fetch.
	MaxRetryElapsed time.Duration
}

// Client is an HTTP client for the odds provider. Transient failures are
// retried with exponential backoff before being reported to the caller.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the given provider config.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if cfg.MaxRetryElapsed == 0 {
		cfg.MaxRetryElapsed = 45 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "oddsapi")),
	}
}

// gameResponse mirrors the provider's per-game JSON shape.
type gameResponse struct {
	ID           string             `json:"id"`
	SportKey     string             `json:"sport_key"`
	CommenceTime time.Time          `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []domain.Bookmaker `json:"bookmakers"`
}

// FetchOdds retrieves the current odds window for the configured sport with
// spreads, totals, and moneyline markets in decimal-odds format.
func (c *Client) FetchOdds(ctx context.Context) (domain.OddsSnapshot, error) {
	endpoint := fmt.Sprintf("%s/sports/%s/odds", c.cfg.BaseURL, c.cfg.Sport)

	q := url.Values{}
	q.Set("apiKey", c.cfg.APIKey)
	q.Set("regions", c.cfg.Regions)
	q.Set("markets", "spreads,totals,h2h")
	q.Set("oddsFormat", "decimal")

	var games []gameResponse
	operation := func() error {
		body, err := c.get(ctx, endpoint+"?"+q.Encode())
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &games); err != nil {
			// A malformed body will not improve on retry.
			return backoff.Permanent(fmt.Errorf("oddsapi: decode response: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.NewExponentialBackOff(backoff.WithMaxElapsedTime(c.cfg.MaxRetryElapsed)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return domain.OddsSnapshot{}, fmt.Errorf("oddsapi: fetch odds for %s: %w", c.cfg.Sport, err)
	}

	snap := domain.OddsSnapshot{
		Sport:     c.cfg.Sport,
		FetchedAt: time.Now().UTC(),
		Games:     make([]domain.OddsGame, 0, len(games)),
	}
	for _, g := range games {
		snap.Games = append(snap.Games, domain.OddsGame{
			ID:           g.ID,
			HomeTeam:     g.HomeTeam,
			AwayTeam:     g.AwayTeam,
			CommenceTime: g.CommenceTime,
			Bookmakers:   g.Bookmakers,
		})
	}

	c.logger.Info("fetched odds window",
		slog.String("sport", c.cfg.Sport),
		slog.Int("games", len(snap.Games)),
	)
	return snap, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("oddsapi: create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oddsapi: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("oddsapi: read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, backoff.Permanent(fmt.Errorf("oddsapi: status %d: %s", resp.StatusCode, string(body)))
	default:
		return nil, fmt.Errorf("oddsapi: status %d: %s", resp.StatusCode, string(body))
	}
}
