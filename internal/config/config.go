package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/constants"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	OpenF1BaseURL string
	ServerPort    string
	LogLevel      string
	CacheTTL      time.Duration

	// 429 backoff
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
	RetryMaxAttempts  uint64

	// qualifying segmentation windows
	Q1Duration            time.Duration
	Q1Break               time.Duration
	Q2Duration            time.Duration
	Q2Break               time.Duration
	QualifyingMaxDuration time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		OpenF1BaseURL:         getEnv("OPENF1_BASE_URL", "https://api.openf1.org/v1"),
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		CacheTTL:              getDurationEnv("CACHE_TTL", constants.SessionCacheTTL),
		RetryInitialDelay:     getDurationEnv("RETRY_INITIAL_DELAY", constants.RetryInitialDelay),
		RetryMaxDelay:         getDurationEnv("RETRY_MAX_DELAY", constants.RetryMaxDelay),
		RetryMaxAttempts:      getUintEnv("RETRY_MAX_ATTEMPTS", constants.RetryMaxAttempts),
		Q1Duration:            getDurationEnv("Q1_DURATION", constants.Q1Duration),
		Q1Break:               getDurationEnv("Q1_BREAK", constants.Q1Break),
		Q2Duration:            getDurationEnv("Q2_DURATION", constants.Q2Duration),
		Q2Break:               getDurationEnv("Q2_BREAK", constants.Q2Break),
		QualifyingMaxDuration: getDurationEnv("QUALIFYING_MAX_DURATION", constants.QualifyingMaxDuration),
	}

	if cfg.OpenF1BaseURL == "" {
		return nil, fmt.Errorf("OPENF1_BASE_URL must not be empty")
	}
	for name, d := range map[string]time.Duration{
		"CACHE_TTL":               cfg.CacheTTL,
		"RETRY_INITIAL_DELAY":     cfg.RetryInitialDelay,
		"RETRY_MAX_DELAY":         cfg.RetryMaxDelay,
		"Q1_DURATION":             cfg.Q1Duration,
		"Q1_BREAK":                cfg.Q1Break,
		"Q2_DURATION":             cfg.Q2Duration,
		"Q2_BREAK":                cfg.Q2Break,
		"QUALIFYING_MAX_DURATION": cfg.QualifyingMaxDuration,
	} {
		if d <= 0 {
			return nil, fmt.Errorf("%s must be positive", name)
		}
	}

	logger.Info().
		Str("openf1_base_url", cfg.OpenF1BaseURL).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getUintEnv(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
