package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port         int
	Env          string
	DatabaseURL  string
	LogLevel     string
	GeminiAPIKey string
	GeminiModel  string
	JWTSecret    string
	NatsURL      string
	NatsToken    string
}

func Load() Config {
	return Config{
		Port:         envInt("PORT", 8080),
		Env:          envStr("MAZAO_ENV", "production"),
		DatabaseURL:  envStr("DATABASE_URL", ""),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		GeminiAPIKey: envStr("GEMINI_API_KEY", ""),
		GeminiModel:  envStr("GEMINI_MODEL", "gemini-1.5-flash"),
		JWTSecret:    envStr("JWT_SECRET", ""),
		NatsURL:      envStr("NATS_URL", ""),
		NatsToken:    envStr("NATS_TOKEN", ""),
	}
}

// Development reports whether diagnostic detail may be attached to error
// responses.
func (c Config) Development() bool {
	return c.Env == "development"
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
