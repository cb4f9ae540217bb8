package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// sync engine defaults
const (
	DefaultConcurrency        = 5
	DefaultFinalsRequiredWins = 2
	DefaultReplayTolerance    = time.Minute
)

// Config global configuration (matches config/config.yaml)
type Config struct {
	Server   ServerConfig            `mapstructure:"server"`
	Database DatabaseConfig          `mapstructure:"database"`
	Sync     SyncConfig              `mapstructure:"sync"`
	Sources  map[string]SourceConfig `mapstructure:"sources"` // keyed by sync source id
	Notify   NotifyConfig            `mapstructure:"notify"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug/release/test
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"` // silent/error/warn/info
}

// SyncConfig scheduling and engine tuning
type SyncConfig struct {
	Interval           time.Duration `mapstructure:"interval"`            // scheduler period, 0 disables
	RunOnStart         bool          `mapstructure:"run_on_start"`        // sync all once at startup
	Concurrency        int           `mapstructure:"concurrency"`         // events synced in parallel
	ActiveWindowLead   time.Duration `mapstructure:"active_window_lead"`  // start syncing this long before start
	ActiveWindowLag    time.Duration `mapstructure:"active_window_lag"`   // keep syncing this long after end
	FinalsRequiredWins int           `mapstructure:"finals_required_wins"`
	ReplayTolerance    time.Duration `mapstructure:"replay_tolerance"`
	EnabledSources     []string      `mapstructure:"enabled_sources"`
}

// SourceConfig one external event-data API
type SourceConfig struct {
	BaseURL       string  `mapstructure:"base_url"`
	Username      string  `mapstructure:"username"`
	Token         string  `mapstructure:"token"`
	Timeout       int     `mapstructure:"timeout"` // seconds
	Proxy         string  `mapstructure:"proxy"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Timeout    int    `mapstructure:"timeout"`
}

// LoadConfig reads config/config.yaml; secrets come from .env / environment
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(v)
}

// LoadConfigFrom reads an explicit config file path
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	overrideFromEnv(&cfg)
	applySyncDefaults(&cfg.Sync)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("sync.interval", 2*time.Minute)
	v.SetDefault("sync.concurrency", DefaultConcurrency)
	v.SetDefault("sync.active_window_lead", 24*time.Hour)
	v.SetDefault("sync.active_window_lag", 48*time.Hour)
	v.SetDefault("sync.finals_required_wins", DefaultFinalsRequiredWins)
	v.SetDefault("sync.replay_tolerance", DefaultReplayTolerance)
	v.SetDefault("notify.timeout", 10)
}

func applySyncDefaults(s *SyncConfig) {
	if s.Concurrency <= 0 {
		s.Concurrency = DefaultConcurrency
	}
	if s.FinalsRequiredWins <= 0 {
		s.FinalsRequiredWins = DefaultFinalsRequiredWins
	}
	if s.ReplayTolerance <= 0 {
		s.ReplayTolerance = DefaultReplayTolerance
	}
}

// overrideFromEnv env beats yaml for credentials
func overrideFromEnv(cfg *Config) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]SourceConfig)
	}
	for name, src := range cfg.Sources {
		prefix := envPrefix(name)
		if v := os.Getenv(prefix + "_USERNAME"); v != "" {
			src.Username = v
		}
		if v := os.Getenv(prefix + "_TOKEN"); v != "" {
			src.Token = v
		}
		if v := os.Getenv(prefix + "_PROXY"); v != "" {
			src.Proxy = v
		}
		cfg.Sources[name] = src
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("NOTIFY_WEBHOOK_URL"); v != "" {
		cfg.Notify.WebhookURL = v
	}
}

// envPrefix frc_events -> FRC_API
func envPrefix(source string) string {
	name := strings.ToUpper(source)
	name = strings.TrimSuffix(name, "_EVENTS")
	return name + "_API"
}

// Validate required settings
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	for _, name := range c.Sync.EnabledSources {
		src, ok := c.Sources[name]
		if !ok {
			return fmt.Errorf("sync.enabled_sources: source %q has no configuration", name)
		}
		if src.BaseURL == "" {
			return fmt.Errorf("sources.%s.base_url is required", name)
		}
	}
	return nil
}

// EnabledSourceConfigs configs of sources listed in sync.enabled_sources (all sources when empty)
func (c *Config) EnabledSourceConfigs() map[string]SourceConfig {
	if len(c.Sync.EnabledSources) == 0 {
		return c.Sources
	}
	out := make(map[string]SourceConfig, len(c.Sync.EnabledSources))
	for _, name := range c.Sync.EnabledSources {
		if src, ok := c.Sources[name]; ok {
			out[name] = src
		}
	}
	return out
}
