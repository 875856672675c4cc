package slotbot

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	// .env is optional, values there only feed the overrides below
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", slog.Any("error", err))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := DefaultConfig()
	if err = toml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyEnv()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns the values used for anything the config file leaves out.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: slog.LevelInfo, Format: "text"},
		DB: DBConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "slotbot",
			PoolSize: 10,
		},
		Slots: SlotsConfig{
			CategoryName:  "🎰 SLOTS",
			SweepInterval: Duration{10 * time.Minute},
		},
		Weekend: WeekendConfig{
			OpenDay:   time.Friday,
			OpenHour:  18,
			CloseDay:  time.Monday,
			CloseHour: 0,
		},
	}
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Bot     BotConfig     `toml:"bot"`
	DB      DBConfig      `toml:"db"`
	Redis   RedisConfig   `toml:"redis"`
	Spaces  SpacesConfig  `toml:"spaces"`
	Slots   SlotsConfig   `toml:"slots"`
	Weekend WeekendConfig `toml:"weekend"`
	Roles   RolesConfig   `toml:"roles"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// RedisConfig enables redis-backed cooldown timers when Addr is set.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// SpacesConfig enables backups when Bucket is set.
type SpacesConfig struct {
	Key    string `toml:"key"`
	Secret string `toml:"secret"`
	Region string `toml:"region"`
	Bucket string `toml:"bucket"`
	Root   string `toml:"root"`
}

type SlotsConfig struct {
	CategoryName  string   `toml:"category_name"`
	SweepInterval Duration `toml:"sweep_interval"`
}

// WeekendConfig describes the weekend window. Days is the weekend slot
// lifetime; zero derives it from the window length.
type WeekendConfig struct {
	OpenDay   time.Weekday `toml:"open_day"`
	OpenHour  int          `toml:"open_hour"`
	CloseDay  time.Weekday `toml:"close_day"`
	CloseHour int          `toml:"close_hour"`
	Days      int          `toml:"days"`
}

// RolesConfig holds the fallback role ids used before a guild sets its own.
type RolesConfig struct {
	Newbie        string `toml:"newbie"`
	Member        string `toml:"member"`
	VerifyChannel string `toml:"verify_channel"`
}

// Duration decodes TOML strings like "10m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SLOTBOT_TOKEN"); v != "" {
		c.Bot.Token = v
	}
	if v := os.Getenv("SLOTBOT_DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv("SLOTBOT_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("SLOTBOT_SPACES_SECRET"); v != "" {
		c.Spaces.Secret = v
	}
}

func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot token is required")
	}
	if c.Slots.SweepInterval.Duration < time.Minute {
		return fmt.Errorf("slots.sweep_interval must be at least 1m, got %s", c.Slots.SweepInterval)
	}
	if c.Weekend.OpenHour < 0 || c.Weekend.OpenHour > 23 || c.Weekend.CloseHour < 0 || c.Weekend.CloseHour > 23 {
		return fmt.Errorf("weekend hours must be between 0 and 23")
	}
	return nil
}
