package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARBSCOUT_* environment variable overrides, and
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

// applyEnvOverrides reads well-known ARBSCOUT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Kalshi ──
	setStr(&cfg.Kalshi.BaseURL, "ARBSCOUT_KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.ApiKey, "ARBSCOUT_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "ARBSCOUT_KALSHI_RSA_PRIVATE_KEY_PATH")
	setStringSlice(&cfg.Kalshi.SeriesTickers, "ARBSCOUT_KALSHI_SERIES_TICKERS")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "ARBSCOUT_POLYMARKET_GAMMA_HOST")

	// ── Matcher ──
	setStr(&cfg.Matcher.AliasPath, "ARBSCOUT_MATCHER_ALIAS_PATH")
	setFloat64(&cfg.Matcher.MinMatchScore, "ARBSCOUT_MATCHER_MIN_MATCH_SCORE")

	// ── Scanner ──
	setInt(&cfg.Scanner.Workers, "ARBSCOUT_SCANNER_WORKERS")
	setDecimal(&cfg.Scanner.MinProfit, "ARBSCOUT_SCANNER_MIN_PROFIT")
	setDuration(&cfg.Scanner.Interval, "ARBSCOUT_SCANNER_INTERVAL")
	setDuration(&cfg.Scanner.Staleness, "ARBSCOUT_SCANNER_STALENESS")
	setBool(&cfg.Scanner.Archive, "ARBSCOUT_SCANNER_ARCHIVE")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "ARBSCOUT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ARBSCOUT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ARBSCOUT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ARBSCOUT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ARBSCOUT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ARBSCOUT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ARBSCOUT_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ARBSCOUT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ARBSCOUT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "ARBSCOUT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "ARBSCOUT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "ARBSCOUT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARBSCOUT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARBSCOUT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ARBSCOUT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ARBSCOUT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "ARBSCOUT_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.RecordTTL, "ARBSCOUT_REDIS_RECORD_TTL")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "ARBSCOUT_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "ARBSCOUT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "ARBSCOUT_S3_REGION")
	setStr(&cfg.S3.Bucket, "ARBSCOUT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "ARBSCOUT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "ARBSCOUT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "ARBSCOUT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "ARBSCOUT_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "ARBSCOUT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "ARBSCOUT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "ARBSCOUT_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.ApiKey, "ARBSCOUT_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ARBSCOUT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ARBSCOUT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ARBSCOUT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "ARBSCOUT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "ARBSCOUT_MODE")
	setStr(&cfg.LogLevel, "ARBSCOUT_LOG_LEVEL")
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

func setDecimal(dst *decimal.Decimal, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			*dst = d
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
