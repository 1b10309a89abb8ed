package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration. Values come from
// environment variables (prefix TWSCREEN) overlaid on an optional YAML file.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Fetch   FetchConfig   `yaml:"fetch" envconfig:"FETCH"`
	Screen  ScreenConfig  `yaml:"screen" envconfig:"SCREEN"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
}

// PathsConfig contains filesystem paths.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	CacheDir  string `yaml:"cache_dir" envconfig:"CACHE_DIR"` // defaults to <data_dir>/cache
	NotesFile string `yaml:"notes_file" envconfig:"NOTES_FILE"`
	HistoryDB string `yaml:"history_db" envconfig:"HISTORY_DB"`
}

// FetchConfig controls the source fetcher and its caches.
type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"60s"`
	CacheTTL    time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" default:"30m"`
	ResultTTL   time.Duration `yaml:"result_ttl" envconfig:"RESULT_TTL" default:"30m"`
	BaseURL     string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://drive.google.com/uc?export=download"`
	TWSEBaseURL string        `yaml:"twse_base_url" envconfig:"TWSE_BASE_URL" default:"https://www.twse.com.tw/exchangeReport/STOCK_DAY"`
}

// ScreenConfig holds default screening parameters. All are overridable per
// request.
type ScreenConfig struct {
	Window           int     `yaml:"window" envconfig:"WINDOW" default:"5"`
	TopN             int     `yaml:"top_n" envconfig:"TOP_N" default:"10"`
	LimitUpThreshold float64 `yaml:"limit_up_threshold" envconfig:"LIMIT_UP_THRESHOLD" default:"9.9"`
	VolumeMultiple   float64 `yaml:"volume_multiple" envconfig:"VOLUME_MULTIPLE" default:"2.0"`
}

// Load loads configuration from the optional YAML file at path (empty path
// skips the file) and then applies environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := envconfig.Process("TWSCREEN", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	cfg.applyPathDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) applyPathDefaults() {
	if c.Paths.DataDir == "" {
		c.Paths.DataDir = "data"
	}
	if c.Paths.CacheDir == "" {
		c.Paths.CacheDir = filepath.Join(c.Paths.DataDir, "cache")
	}
	if c.Paths.NotesFile == "" {
		c.Paths.NotesFile = filepath.Join(c.Paths.DataDir, "notes.csv")
	}
	if c.Paths.HistoryDB == "" {
		c.Paths.HistoryDB = filepath.Join(c.Paths.DataDir, "screens.db")
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Screen.Window < 1 {
		return fmt.Errorf("screen window must be positive, got %d", c.Screen.Window)
	}
	if c.Screen.TopN < 1 {
		return fmt.Errorf("screen top_n must be positive, got %d", c.Screen.TopN)
	}
	if c.Fetch.CacheTTL < 0 || c.Fetch.ResultTTL < 0 {
		return fmt.Errorf("cache TTLs must not be negative")
	}
	return nil
}

// EnsureDirs creates the data and cache directories if absent.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
