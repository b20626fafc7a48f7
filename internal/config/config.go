package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fragmede/habrscore/internal/layout"
)

type Config struct {
	CacheDir      string         `mapstructure:"cache_dir"`
	DBPath        string         `mapstructure:"db_path"`
	LogPath       string         `mapstructure:"log_path"`
	LogLevel      string         `mapstructure:"log_level"`
	PageTTL       time.Duration  `mapstructure:"page_ttl"`
	RetryInterval time.Duration  `mapstructure:"retry_interval"`
	FetchTimeout  time.Duration  `mapstructure:"fetch_timeout"`
	MaxConcurrent int            `mapstructure:"max_concurrent"`
	UserAgent     string         `mapstructure:"user_agent"`
	Layout        layout.Variant `mapstructure:"layout"`
	LayoutFile    string         `mapstructure:"layout_file"`
}

// EnvPrefix prefixes environment overrides, e.g. HABRSCORE_LOG_LEVEL.
const EnvPrefix = "HABRSCORE"

func Default() Config {
	cacheDir := filepath.Join(userConfigDir(), "habrscore")
	return Config{
		CacheDir:      cacheDir,
		DBPath:        filepath.Join(cacheDir, "cache.db"),
		LogPath:       filepath.Join(cacheDir, "debug.log"),
		LogLevel:      "info",
		PageTTL:       10 * time.Minute,
		RetryInterval: 1 * time.Second,
		FetchTimeout:  10 * time.Second,
		MaxConcurrent: 4,
		UserAgent:     "habrscore/1.0",
		Layout:        layout.Auto,
	}
}

// SetDefaults registers Default() with v so that files, environment and
// flags only need to name the keys they change.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("db_path", "")
	v.SetDefault("log_path", "")
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("page_ttl", d.PageTTL)
	v.SetDefault("retry_interval", d.RetryInterval)
	v.SetDefault("fetch_timeout", d.FetchTimeout)
	v.SetDefault("max_concurrent", d.MaxConcurrent)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("layout", string(d.Layout))
	v.SetDefault("layout_file", "")
}

// Load reads configuration from v. When path is set it must exist; the
// environment is layered on top of the file.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	// Paths inside the cache dir follow it unless set explicitly.
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.CacheDir, "cache.db")
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(cfg.CacheDir, "debug.log")
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Layout {
	case layout.Auto, layout.Desktop, layout.Mobile:
	default:
		return fmt.Errorf("layout must be auto, desktop or mobile, got %q", c.Layout)
	}
	if c.RetryInterval <= 0 {
		return fmt.Errorf("retry_interval must be positive, got %s", c.RetryInterval)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1, got %d", c.MaxConcurrent)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
