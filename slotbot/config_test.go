package slotbot

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SLOTBOT_TOKEN", "")
	path := writeConfig(t, `
[bot]
token = "abc"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.Bot.Token)
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "🎰 SLOTS", cfg.Slots.CategoryName)
	assert.Equal(t, 10*time.Minute, cfg.Slots.SweepInterval.Duration)
	assert.Equal(t, time.Friday, cfg.Weekend.OpenDay)
	assert.Equal(t, 18, cfg.Weekend.OpenHour)
	assert.Equal(t, time.Monday, cfg.Weekend.CloseDay)
	assert.Zero(t, cfg.Weekend.Days, "derived from the weekend window")
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Spaces.Bucket)
}

func TestLoadConfig_FileValues(t *testing.T) {
	t.Setenv("SLOTBOT_TOKEN", "")
	path := writeConfig(t, `
[log]
level = "DEBUG"
format = "json"

[bot]
token = "abc"
dev_guilds = [123456789012345678]

[slots]
category_name = "slots"
sweep_interval = "5m"

[weekend]
open_day = 6
open_hour = 9
days = 2

[redis]
addr = "localhost:6379"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	require.Len(t, cfg.Bot.DevGuilds, 1)
	assert.Equal(t, "123456789012345678", cfg.Bot.DevGuilds[0].String())
	assert.Equal(t, "slots", cfg.Slots.CategoryName)
	assert.Equal(t, 5*time.Minute, cfg.Slots.SweepInterval.Duration)
	assert.Equal(t, time.Saturday, cfg.Weekend.OpenDay)
	assert.Equal(t, 9, cfg.Weekend.OpenHour)
	assert.Equal(t, 2, cfg.Weekend.Days)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SLOTBOT_TOKEN", "from-env")
	t.Setenv("SLOTBOT_DB_PASSWORD", "secret")
	path := writeConfig(t, `
[bot]
token = "from-file"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Bot.Token)
	assert.Equal(t, "secret", cfg.DB.Password)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv("SLOTBOT_TOKEN", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "failed to open config")

	_, err = LoadConfig(writeConfig(t, `[slots]
sweep_interval = "soon"
`))
	assert.ErrorContains(t, err, "invalid duration")

	_, err = LoadConfig(writeConfig(t, `[log]
level = "info"
`))
	assert.ErrorContains(t, err, "bot token is required")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no token", func(c *Config) { c.Bot.Token = "" }, "bot token"},
		{"short sweep", func(c *Config) { c.Slots.SweepInterval = Duration{30 * time.Second} }, "sweep_interval"},
		{"bad open hour", func(c *Config) { c.Weekend.OpenHour = 24 }, "weekend hours"},
		{"bad close hour", func(c *Config) { c.Weekend.CloseHour = -1 }, "weekend hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Bot.Token = "abc"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration)

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
