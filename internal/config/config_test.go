package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dom/game-review-catalog/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.DataBackendREST, cfg.DataBackend)
	assert.Equal(t, "games", cfg.GamesTable)
	assert.Equal(t, "reviews", cfg.ReviewsTable)
	assert.Equal(t, "covers", cfg.CoversBucket)
	assert.Equal(t, "screenshots", cfg.ScreenshotsBucket)
	assert.Equal(t, 30*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 10, cfg.AuthRatePerMinute)
	assert.False(t, cfg.CookieSecure)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{name: "missing url", unset: "SUPABASE_URL"},
		{name: "missing anon key", unset: "SUPABASE_ANON_KEY"},
		{name: "missing jwt secret", unset: "SUPABASE_JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.unset)
		})
	}
}

func TestLoad_PostgresBackendNeedsDatabaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("DATA_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := config.Load()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/catalog")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.DataBackendPostgres, cfg.DataBackend)
}

func TestLoad_UnknownBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("DATA_BACKEND", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_EnvFile(t *testing.T) {
	setRequired(t)
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("GAMES_TABLE=jogos\nPORT=9090\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	// Variables already in the environment take precedence over the file.
	t.Setenv("PORT", "7070")
	t.Cleanup(func() { os.Unsetenv("GAMES_TABLE") })

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "jogos", cfg.GamesTable)
	assert.Equal(t, "7070", cfg.Port)
}
