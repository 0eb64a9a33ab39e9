package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/store"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "prospect.db", cfg.Store.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "default", cfg.Defaults.OwnerID)
	assert.Equal(t, int32(10), cfg.Store.Pool.MaxConns)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROSPECT_STORE_DRIVER", "postgres")
	t.Setenv("PROSPECT_SERVER_PORT", "9090")
	t.Setenv("PROSPECT_PROVIDER_API_KEY", "env-key")
	t.Setenv("PROSPECT_HOOKS_ENRICH_URL", "https://hooks.example.com/enrich")
	t.Setenv("PROSPECT_STORE_DATABASE_URL", "postgres://localhost/prospect")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.Provider.APIKey)
	assert.Equal(t, "https://hooks.example.com/enrich", cfg.Hooks.EnrichURL)
	assert.Equal(t, "postgres://localhost/prospect", cfg.Store.DatabaseURL)
}

func TestResolveOverlaysSettings(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))

	require.NoError(t, st.SetSetting(ctx, "provider.api_key", "db-key"))
	require.NoError(t, st.SetSetting(ctx, "hooks.enrich_url", "https://hooks.example.com/enrich"))
	require.NoError(t, st.SetSetting(ctx, "unknown.key", "ignored"))

	cfg := &Config{}
	cfg.Provider.APIKey = "file-key"

	applied, err := cfg.Resolve(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, "db-key", cfg.Provider.APIKey)
	assert.Equal(t, "https://hooks.example.com/enrich", cfg.Hooks.EnrichURL)
}

func TestResolveEmptySettingsKeepFileValues(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	cfg := &Config{}
	cfg.Provider.APIKey = "file-key"

	applied, err := cfg.Resolve(context.Background(), st)
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Equal(t, "file-key", cfg.Provider.APIKey)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	require.Error(t, InitLogger(LogConfig{Level: "shouty"}))
}
