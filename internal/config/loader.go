package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SHARPLINE_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SHARPLINE_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Odds API ──
	setStr(&cfg.OddsAPI.BaseURL, "SHARPLINE_ODDS_API_BASE_URL")
	setStr(&cfg.OddsAPI.APIKey, "SHARPLINE_ODDS_API_KEY")
	setStr(&cfg.OddsAPI.Sport, "SHARPLINE_ODDS_API_SPORT")
	setStr(&cfg.OddsAPI.Regions, "SHARPLINE_ODDS_API_REGIONS")
	setDuration(&cfg.OddsAPI.Timeout, "SHARPLINE_ODDS_API_TIMEOUT")
	setDuration(&cfg.OddsAPI.MaxRetryElapsed, "SHARPLINE_ODDS_API_MAX_RETRY_ELAPSED")

	// ── Splits ──
	setStr(&cfg.Splits.Path, "SHARPLINE_SPLITS_PATH")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "SHARPLINE_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SHARPLINE_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SHARPLINE_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SHARPLINE_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SHARPLINE_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SHARPLINE_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SHARPLINE_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SHARPLINE_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SHARPLINE_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SHARPLINE_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "SHARPLINE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SHARPLINE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SHARPLINE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SHARPLINE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SHARPLINE_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SHARPLINE_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "SHARPLINE_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "SHARPLINE_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SHARPLINE_S3_REGION")
	setStr(&cfg.S3.Bucket, "SHARPLINE_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SHARPLINE_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SHARPLINE_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SHARPLINE_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SHARPLINE_S3_FORCE_PATH_STYLE")

	// ── Detect ──
	setFloat64(&cfg.Detect.SpreadMinPublicThreshold, "SHARPLINE_DETECT_SPREAD_MIN_PUBLIC_THRESHOLD")
	setFloat64(&cfg.Detect.SpreadMinLineMove, "SHARPLINE_DETECT_SPREAD_MIN_LINE_MOVE")
	setFloat64(&cfg.Detect.TotalMinMove, "SHARPLINE_DETECT_TOTAL_MIN_MOVE")
	setFloat64(&cfg.Detect.TotalStrongMove, "SHARPLINE_DETECT_TOTAL_STRONG_MOVE")
	setFloat64(&cfg.Detect.TotalMinPublicThreshold, "SHARPLINE_DETECT_TOTAL_MIN_PUBLIC_THRESHOLD")
	setFloat64(&cfg.Detect.MinDivergence, "SHARPLINE_DETECT_MIN_DIVERGENCE")
	setFloat64(&cfg.Detect.StrongDivergence, "SHARPLINE_DETECT_STRONG_DIVERGENCE")
	setFloat64(&cfg.Detect.ATSExtremeThreshold, "SHARPLINE_DETECT_ATS_EXTREME_THRESHOLD")

	// ── Scorer ──
	setFloat64(&cfg.Scorer.Tier1Threshold, "SHARPLINE_SCORER_TIER1_THRESHOLD")
	setFloat64(&cfg.Scorer.Tier2Threshold, "SHARPLINE_SCORER_TIER2_THRESHOLD")
	setFloat64(&cfg.Scorer.LeanThreshold, "SHARPLINE_SCORER_LEAN_THRESHOLD")
	setInt(&cfg.Scorer.MinSignals, "SHARPLINE_SCORER_MIN_SIGNALS")

	// ── Pipeline ──
	setDuration(&cfg.Pipeline.ScrapeInterval, "SHARPLINE_PIPELINE_SCRAPE_INTERVAL")
	setDuration(&cfg.Pipeline.SeenTTL, "SHARPLINE_PIPELINE_SEEN_TTL")
	setInt(&cfg.Pipeline.MaxConcurrency, "SHARPLINE_PIPELINE_MAX_CONCURRENCY")
	setBool(&cfg.Pipeline.ArchiveEnabled, "SHARPLINE_PIPELINE_ARCHIVE_ENABLED")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SHARPLINE_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SHARPLINE_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SHARPLINE_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.DiscordWebhookURL, "SHARPLINE_NOTIFY_DISCORD_WEBHOOK_URL")
	setStr(&cfg.Notify.TelegramToken, "SHARPLINE_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SHARPLINE_NOTIFY_TELEGRAM_CHAT_ID")
	setStringSlice(&cfg.Notify.Tiers, "SHARPLINE_NOTIFY_TIERS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SHARPLINE_MODE")
	setStr(&cfg.LogLevel, "SHARPLINE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
