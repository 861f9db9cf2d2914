package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// DATABASE_URL is the runtime connection (often PgBouncer/pooler).
	// DIRECT_URL, when set, is used for migrations only.
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	// SessionSecret signs HS256 session tokens. Required outside dev.
	SessionSecret string

	// SessionTTLMinutes bounds dev-issued tokens.
	SessionTTLMinutes int
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8080"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "barangayops"),
			User:     env("DB_USER", "barangayops"),
			Password: env("DB_PASSWORD", "barangayops"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		SessionSecret:     env("SESSION_SECRET", "dev-only-secret"),
		SessionTTLMinutes: envInt("SESSION_TTL_MINUTES", 12*60),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}
