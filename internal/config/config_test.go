package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
mode = "serve"
log_level = "debug"

[odds_api]
api_key = "test-key"
timeout = "5s"

[detect]
total_min_move = 2.5

[pipeline]
scrape_interval = "10m"

[notify]
tiers = ["TIER_1", "TIER_2"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "serve" {
		t.Errorf("Mode = %q, want serve", cfg.Mode)
	}
	if cfg.OddsAPI.APIKey != "test-key" {
		t.Errorf("APIKey = %q", cfg.OddsAPI.APIKey)
	}
	if cfg.OddsAPI.Timeout.Duration != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.OddsAPI.Timeout.Duration)
	}
	if cfg.Detect.TotalMinMove != 2.5 {
		t.Errorf("TotalMinMove = %v, want 2.5", cfg.Detect.TotalMinMove)
	}
	if cfg.Pipeline.ScrapeInterval.Duration != 10*time.Minute {
		t.Errorf("ScrapeInterval = %v, want 10m", cfg.Pipeline.ScrapeInterval.Duration)
	}
	if len(cfg.Notify.Tiers) != 2 {
		t.Errorf("Tiers = %v", cfg.Notify.Tiers)
	}

	// Untouched sections keep their defaults.
	if cfg.OddsAPI.Sport != "basketball_nba" {
		t.Errorf("Sport = %q, want default", cfg.OddsAPI.Sport)
	}
	if cfg.Detect.SpreadMinLineMove != 1.5 {
		t.Errorf("SpreadMinLineMove = %v, want default 1.5", cfg.Detect.SpreadMinLineMove)
	}
	if cfg.Scorer.MinSignals != 2 {
		t.Errorf("MinSignals = %d, want default 2", cfg.Scorer.MinSignals)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[odds_api]
api_key = "file-key"
`)

	t.Setenv("SHARPLINE_ODDS_API_KEY", "env-key")
	t.Setenv("SHARPLINE_POSTGRES_PORT", "5433")
	t.Setenv("SHARPLINE_DETECT_SPREAD_MIN_LINE_MOVE", "2.0")
	t.Setenv("SHARPLINE_S3_ENABLED", "true")
	t.Setenv("SHARPLINE_PIPELINE_SCRAPE_INTERVAL", "15m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OddsAPI.APIKey != "env-key" {
		t.Errorf("APIKey = %q, env should win over the file", cfg.OddsAPI.APIKey)
	}
	if cfg.Postgres.Port != 5433 {
		t.Errorf("Postgres.Port = %d, want 5433", cfg.Postgres.Port)
	}
	if cfg.Detect.SpreadMinLineMove != 2.0 {
		t.Errorf("SpreadMinLineMove = %v, want 2.0", cfg.Detect.SpreadMinLineMove)
	}
	if !cfg.S3.Enabled {
		t.Error("S3.Enabled should be set from env")
	}
	if cfg.Pipeline.ScrapeInterval.Duration != 15*time.Minute {
		t.Errorf("ScrapeInterval = %v, want 15m", cfg.Pipeline.ScrapeInterval.Duration)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func validConfig() Config {
	cfg := Defaults()
	cfg.OddsAPI.APIKey = "k"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string // empty means valid
	}{
		{
			name:   "defaults plus api key are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.OddsAPI.APIKey = "" },
			wantErr: "api_key",
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Mode = "daemon" },
			wantErr: "unknown mode",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "log_level",
		},
		{
			name:    "postgres port out of range without dsn",
			mutate:  func(c *Config) { c.Postgres.Port = 99999 },
			wantErr: "port",
		},
		{
			name: "dsn makes host and port optional",
			mutate: func(c *Config) {
				c.Postgres.DSN = "postgres://u:p@host:5432/db"
				c.Postgres.Host = ""
				c.Postgres.Port = 0
			},
		},
		{
			name:    "s3 enabled without a bucket",
			mutate:  func(c *Config) { c.S3.Enabled = true; c.S3.Bucket = "" },
			wantErr: "bucket",
		},
		{
			name:    "spread public threshold out of range",
			mutate:  func(c *Config) { c.Detect.SpreadMinPublicThreshold = 1.2 },
			wantErr: "spread_min_public_threshold",
		},
		{
			name:    "strong move below minimum move",
			mutate:  func(c *Config) { c.Detect.TotalStrongMove = 1.0 },
			wantErr: "total_strong_move",
		},
		{
			name:    "ats threshold at the even point",
			mutate:  func(c *Config) { c.Detect.ATSExtremeThreshold = 0.5 },
			wantErr: "ats_extreme_threshold",
		},
		{
			name:    "tier ordering violated",
			mutate:  func(c *Config) { c.Scorer.Tier2Threshold = 0.90 },
			wantErr: "lean <= tier2 <= tier1",
		},
		{
			name:    "non-positive scrape interval",
			mutate:  func(c *Config) { c.Pipeline.ScrapeInterval.Duration = 0 },
			wantErr: "scrape_interval",
		},
		{
			name:    "unknown notify tier",
			mutate:  func(c *Config) { c.Notify.Tiers = []string{"TIER_9"} },
			wantErr: "unknown tier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsEveryError(t *testing.T) {
	cfg := validConfig()
	cfg.OddsAPI.APIKey = ""
	cfg.Mode = "daemon"
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	msg := err.Error()
	for _, want := range []string{"api_key", "unknown mode", "redis"} {
		if !strings.Contains(msg, want) {
			t.Errorf("combined error missing %q: %s", want, msg)
		}
	}
}

func TestDurationText(t *testing.T) {
	var d duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", d.Duration)
	}

	out, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(out) != "1m30s" {
		t.Errorf("MarshalText = %q, want 1m30s", out)
	}

	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("expected an error for a malformed duration")
	}
}
