package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"consult-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port                string
	Env                 string
	CORSAllowOrigin     []string
	DatabaseURL         string
	RedisURL            string
	JWTSecret           string
	CatalogPath         string
	KRWUSDRate          float64
	RecommendRatePerSec float64
	RecommendBurst      int
	CacheTTL            time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() Config {
	return load(viper.New(), ".env")
}

func load(v *viper.Viper, envFile string) Config {
	setDefaults(v)

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			telemetry.Warn("config.env_file_unreadable", map[string]any{"path": envFile, "error": err})
		}
	}
	v.AutomaticEnv()

	env := normalizeEnv(v.GetString("ENV"))
	dbURL := strings.TrimSpace(v.GetString("DATABASE_URL"))
	secret := v.GetString("JWT_SECRET")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}
	if env == "production" && secret == "" {
		telemetry.Warn("config.jwt_secret_missing", map[string]any{"env": env})
	}

	rate := v.GetFloat64("KRW_USD_RATE")
	if rate <= 0 {
		rate = defaultKRWUSDRate
	}

	return Config{
		Port:                v.GetString("PORT"),
		Env:                 env,
		CORSAllowOrigin:     splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		DatabaseURL:         dbURL,
		RedisURL:            strings.TrimSpace(v.GetString("REDIS_URL")),
		JWTSecret:           secret,
		CatalogPath:         strings.TrimSpace(v.GetString("CATALOG_PATH")),
		KRWUSDRate:          rate,
		RecommendRatePerSec: v.GetFloat64("RECOMMEND_RATE_PER_SEC"),
		RecommendBurst:      v.GetInt("RECOMMEND_BURST"),
		CacheTTL:            v.GetDuration("CACHE_TTL"),
	}
}

const defaultKRWUSDRate = 0.00075

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	v.SetDefault("KRW_USD_RATE", defaultKRWUSDRate)
	v.SetDefault("RECOMMEND_RATE_PER_SEC", 2.0)
	v.SetDefault("RECOMMEND_BURST", 10)
	v.SetDefault("CACHE_TTL", "10m")
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
