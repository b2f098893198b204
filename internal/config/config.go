package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DataBackendREST     = "rest"
	DataBackendPostgres = "postgres"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Backend
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	BackendTimeout    time.Duration

	// Data backend: "rest" talks to the backend's REST API, "postgres"
	// connects to its database directly.
	DataBackend string
	DatabaseURL string

	// Collections and buckets
	GamesTable        string
	ReviewsTable      string
	CoversBucket      string
	ScreenshotsBucket string

	// Logging
	LogLevel  string
	LogFormat string

	// Cookies and abuse control
	CookieSecure      bool
	AuthRatePerMinute int
}

// Load reads the configuration from the environment. A .env file in the
// working directory (or at ENV_FILE) is loaded first when present; variables
// already set in the environment win.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		SupabaseURL:       getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:   getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		BackendTimeout:    time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 30)) * time.Second,
		DataBackend:       strings.ToLower(getEnv("DATA_BACKEND", DataBackendREST)),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		GamesTable:        getEnv("GAMES_TABLE", "games"),
		ReviewsTable:      getEnv("REVIEWS_TABLE", "reviews"),
		CoversBucket:      getEnv("COVERS_BUCKET", "covers"),
		ScreenshotsBucket: getEnv("SCREENSHOTS_BUCKET", "screenshots"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		CookieSecure:      getEnvBool("COOKIE_SECURE", false),
		AuthRatePerMinute: getEnvInt("AUTH_RATE_PER_MINUTE", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL environment variable is required")
	}
	if c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY environment variable is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET environment variable is required")
	}

	switch c.DataBackend {
	case DataBackendREST:
	case DataBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_BACKEND=%s", DataBackendPostgres)
		}
	default:
		return fmt.Errorf("unknown DATA_BACKEND %q", c.DataBackend)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
