package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, 8580, cfg.Server.Port)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, 4, cfg.WorkerCount())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PYVALUE_PORT", "9090")
	t.Setenv("PYVALUE_STORAGE_BACKEND", "SurrealDB")
	t.Setenv("PYVALUE_DATA_PATH", "/tmp/pv")
	t.Setenv("PYVALUE_WORKERS", "8")
	t.Setenv("SEC_USER_AGENT", "tester test@example.com")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "surrealdb", cfg.Storage.Backend)
	assert.Equal(t, filepath.Join("/tmp/pv", "store"), cfg.Storage.Badger.Path)
	assert.Equal(t, filepath.Join("/tmp/pv", "fx"), cfg.FX.Path)
	assert.Equal(t, 8, cfg.WorkerCount())
	assert.Equal(t, "tester test@example.com", cfg.Clients.SEC.UserAgent)
}

func TestConfig_InvalidPortEnvIgnored(t *testing.T) {
	t.Setenv("PYVALUE_PORT", "not-a-port")
	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)
	assert.Equal(t, 8580, cfg.Server.Port)
}

func TestLoadConfig_FileMergeAndMissingFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
environment = "production"

[compute]
workers = 2

[schedule]
cron = "0 0 6 * * *"
provider = "SEC"
symbols = ["AAPL.US", "MSFT.US"]
`), 0o644))
	require.NoError(t, os.WriteFile(override, []byte(`
[compute]
workers = 6
`), 0o644))

	cfg, err := LoadConfig(base, filepath.Join(dir, "missing.toml"), override, "")
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 6, cfg.Compute.Workers)
	assert.Equal(t, []string{"AAPL.US", "MSFT.US"}, cfg.Schedule.Symbols)
	assert.Equal(t, "SEC", cfg.Schedule.Provider)
}

func TestLoadConfig_InvalidBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[storage]
backend = "sqlite"
`), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfig_ParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("environment = ["), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_GetTimeout(t *testing.T) {
	c := EODHDConfig{Timeout: "5s"}
	assert.Equal(t, 5*time.Second, c.GetTimeout())
	s := SECConfig{Timeout: "garbage"}
	assert.Equal(t, 30*time.Second, s.GetTimeout())
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("EODHD_API_KEY", "")
	t.Setenv("PYVALUE_EODHD_API_KEY", "")

	_, err := ResolveAPIKey("eodhd_api_key", "")
	assert.Error(t, err)

	key, err := ResolveAPIKey("eodhd_api_key", "from-config")
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)

	t.Setenv("PYVALUE_EODHD_API_KEY", "from-env")
	key, err = ResolveAPIKey("eodhd_api_key", "from-config")
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestIsRecentDate(t *testing.T) {
	now := time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		date   string
		maxAge int
		want   bool
	}{
		{"same day", "2024-06-30", MaxFactAgeDays, true},
		{"exact cutoff is recent", now.AddDate(0, 0, -MaxFactAgeDays).Format(DateLayout), MaxFactAgeDays, true},
		{"one day past cutoff", now.AddDate(0, 0, -MaxFactAgeDays-1).Format(DateLayout), MaxFactAgeDays, false},
		{"long window", "2022-12-31", MaxFYFactAgeDays, true},
		{"exact long cutoff is recent", now.AddDate(0, 0, -MaxFYFactAgeDays).Format(DateLayout), MaxFYFactAgeDays, true},
		{"one day past long cutoff", now.AddDate(0, 0, -MaxFYFactAgeDays-1).Format(DateLayout), MaxFYFactAgeDays, false},
		{"empty", "", MaxFactAgeDays, false},
		{"garbage", "31/12/2023", MaxFactAgeDays, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRecentDate(tt.date, tt.maxAge, now))
		})
	}
}
