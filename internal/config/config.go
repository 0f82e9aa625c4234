package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/erazemk/najdeno/internal/auth"
)

// Config holds the server settings read from the environment and .env.
type Config struct {
	DBPath    string
	Addr      string
	LogPath   string
	LogFormat string

	// JWTSecret is empty when the secret should come from the database.
	JWTSecret string
	JWTTTL    time.Duration

	AdminName  string
	AdminEmail string

	SentryDSN   string
	Environment string

	// CORSOrigins lists the browser origins allowed to call the API. Empty
	// disables CORS headers.
	CORSOrigins []string
	// TrustProxy takes the client address from X-Forwarded-For and X-Real-IP.
	TrustProxy bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv files.
func LoadFiles(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		slog.Debug("no .env file found, relying on environment variables")
	}

	return &Config{
		DBPath:      getEnv("NAJDENO_DB", "najdeno.sqlite3"),
		Addr:        getEnv("NAJDENO_ADDR", ":8080"),
		LogPath:     getEnv("NAJDENO_LOG", ""),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTTTL:      getEnvAsDuration("JWT_TTL", auth.DefaultTokenTTL),
		AdminName:   getEnv("ADMIN_NAME", "Admin"),
		AdminEmail:  getEnv("ADMIN_EMAIL", "admin@localhost"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		Environment: getEnv("APP_ENV", "development"),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", "*"),
		TrustProxy:  getEnvAsBool("TRUST_PROXY", false),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

// getEnvAsList splits a comma-separated value, dropping blank entries.
func getEnvAsList(key, fallback string) []string {
	var list []string
	for _, v := range strings.Split(getEnv(key, fallback), ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	return list
}
