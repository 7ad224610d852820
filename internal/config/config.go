// Package config defines the top-level configuration for the sharpline
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SHARPLINE_* environment
// variables.
type Config struct {
	OddsAPI  OddsAPIConfig  `toml:"odds_api"`
	Splits   SplitsConfig   `toml:"splits"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Detect   DetectConfig   `toml:"detect"`
	Scorer   ScorerConfig   `toml:"scorer"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// OddsAPIConfig holds the odds provider endpoint and credentials.
type OddsAPIConfig struct {
	BaseURL         string   `toml:"base_url"`
	APIKey          string   `toml:"api_key"`
	Sport           string   `toml:"sport"`
	Regions         string   `toml:"regions"`
	Timeout         duration `toml:"timeout"`
	MaxRetryElapsed duration `toml:"max_retry_elapsed"`
}

// SplitsConfig holds the public betting splits source. Splits are loaded
// from a JSON file refreshed by an external process (manual or scraped).
type SplitsConfig struct {
	Path string `toml:"path"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for snapshot
// archival.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// DetectConfig holds every detector threshold. Each maps one-to-one onto a
// detector config struct and is independently overridable.
type DetectConfig struct {
	SpreadMinPublicThreshold float64 `toml:"spread_min_public_threshold"`
	SpreadMinLineMove        float64 `toml:"spread_min_line_move"`
	TotalMinMove             float64 `toml:"total_min_move"`
	TotalStrongMove          float64 `toml:"total_strong_move"`
	TotalMinPublicThreshold  float64 `toml:"total_min_public_threshold"`
	MinDivergence            float64 `toml:"min_divergence"`
	StrongDivergence         float64 `toml:"strong_divergence"`
	ATSExtremeThreshold      float64 `toml:"ats_extreme_threshold"`
}

// ScorerConfig holds the tier thresholds and minimum-signal gate.
type ScorerConfig struct {
	Tier1Threshold float64 `toml:"tier1_threshold"`
	Tier2Threshold float64 `toml:"tier2_threshold"`
	LeanThreshold  float64 `toml:"lean_threshold"`
	MinSignals     int     `toml:"min_signals"`
}

// PipelineConfig holds the scrape/analyze loop parameters.
type PipelineConfig struct {
	ScrapeInterval duration `toml:"scrape_interval"`
	// SeenTTL controls how long a (game, market, side) pick stays
	// deduplicated in the seen cache.
	SeenTTL duration `toml:"seen_ttl"`
	// MaxConcurrency bounds parallel per-game evaluation.
	MaxConcurrency int `toml:"max_concurrency"`
	ArchiveEnabled bool `toml:"archive_enabled"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials. Tiers lists the pick
// tiers that trigger a notification; empty means all tiers.
type NotifyConfig struct {
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	Tiers             []string `toml:"tiers"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration that Load merges the TOML file
// on top of. Detector and scorer thresholds are the production values.
func Defaults() Config {
	return Config{
		OddsAPI: OddsAPIConfig{
			BaseURL:         "https://api.the-odds-api.com/v4",
			Sport:           "basketball_nba",
			Regions:         "us",
			Timeout:         duration{15 * time.Second},
			MaxRetryElapsed: duration{45 * time.Second},
		},
		Splits: SplitsConfig{
			Path: "data/public_splits.json",
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "sharpline",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "sharpline-data",
			ForcePathStyle: true,
		},
		Detect: DetectConfig{
			SpreadMinPublicThreshold: 0.55,
			SpreadMinLineMove:        1.5,
			TotalMinMove:             2.0,
			TotalStrongMove:          4.0,
			TotalMinPublicThreshold:  0.60,
			MinDivergence:            0.15,
			StrongDivergence:         0.30,
			ATSExtremeThreshold:      0.70,
		},
		Scorer: ScorerConfig{
			Tier1Threshold: 0.85,
			Tier2Threshold: 0.75,
			LeanThreshold:  0.60,
			MinSignals:     2,
		},
		Pipeline: PipelineConfig{
			ScrapeInterval: duration{30 * time.Minute},
			SeenTTL:        duration{18 * time.Hour},
			MaxConcurrency: 8,
			ArchiveEnabled: true,
		},
		Server: ServerConfig{
			Enabled: false,
			Port:    8080,
		},
		Mode:     "run",
		LogLevel: "info",
	}
}

// validModes are the supported operating modes.
var validModes = map[string]bool{
	"run":   true, // one-shot: fetch, analyze, persist, exit
	"watch": true, // pipeline loop on scrape_interval
	"serve": true, // pipeline loop + HTTP/WebSocket API
}

// validLogLevels are the supported log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for invalid or inconsistent values and
// returns a combined error listing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: run, watch, serve)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.OddsAPI.BaseURL == "" {
		errs = append(errs, "odds_api: base_url must not be empty")
	}
	if c.OddsAPI.APIKey == "" {
		errs = append(errs, "odds_api: api_key must not be empty")
	}
	if c.OddsAPI.Sport == "" {
		errs = append(errs, "odds_api: sport must not be empty")
	}

	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port %d out of range", c.Postgres.Port))
		}
	}

	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}

	if c.S3.Enabled && c.S3.Bucket == "" {
		errs = append(errs, "s3: bucket must not be empty when s3 is enabled")
	}

	errs = append(errs, c.validateThresholds()...)

	if c.Pipeline.ScrapeInterval.Duration <= 0 {
		errs = append(errs, "pipeline: scrape_interval must be positive")
	}
	if c.Pipeline.SeenTTL.Duration <= 0 {
		errs = append(errs, "pipeline: seen_ttl must be positive")
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server: port %d out of range", c.Server.Port))
	}

	for _, tier := range c.Notify.Tiers {
		switch strings.ToUpper(tier) {
		case "TIER_1", "TIER_2", "LEAN":
		default:
			errs = append(errs, fmt.Sprintf("notify: unknown tier %q (valid: TIER_1, TIER_2, LEAN)", tier))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %d error(s):\n  - %s", len(errs), strings.Join(errs, "\n  - "))
	}
	return nil
}

// validateThresholds covers the detector and scorer parameter ranges. The
// detector constructors re-validate at construction time; checking here too
// surfaces bad values at startup with the rest of the config errors.
func (c *Config) validateThresholds() []string {
	var errs []string

	pct := func(name string, v float64) {
		if v <= 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("detect: %s %.3f must be in (0,1]", name, v))
		}
	}
	pct("spread_min_public_threshold", c.Detect.SpreadMinPublicThreshold)
	pct("total_min_public_threshold", c.Detect.TotalMinPublicThreshold)
	pct("min_divergence", c.Detect.MinDivergence)

	if c.Detect.SpreadMinLineMove <= 0 {
		errs = append(errs, "detect: spread_min_line_move must be positive")
	}
	if c.Detect.TotalMinMove <= 0 {
		errs = append(errs, "detect: total_min_move must be positive")
	}
	if c.Detect.TotalStrongMove < c.Detect.TotalMinMove {
		errs = append(errs, "detect: total_strong_move must be >= total_min_move")
	}
	if c.Detect.StrongDivergence < c.Detect.MinDivergence {
		errs = append(errs, "detect: strong_divergence must be >= min_divergence")
	}
	if c.Detect.ATSExtremeThreshold <= 0.5 || c.Detect.ATSExtremeThreshold > 1 {
		errs = append(errs, "detect: ats_extreme_threshold must be in (0.5,1]")
	}

	if c.Scorer.MinSignals < 1 {
		errs = append(errs, "scorer: min_signals must be at least 1")
	}
	if !(c.Scorer.LeanThreshold <= c.Scorer.Tier2Threshold && c.Scorer.Tier2Threshold <= c.Scorer.Tier1Threshold) {
		errs = append(errs, "scorer: thresholds must satisfy lean <= tier2 <= tier1")
	}

	return errs
}
