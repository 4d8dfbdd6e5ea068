package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Source    SourceConfig    `yaml:"source" mapstructure:"source"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
	Walk      WalkConfig      `yaml:"walk" mapstructure:"walk"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SourceConfig points at the stats site.
type SourceConfig struct {
	EventsURL    string `yaml:"events_url" mapstructure:"events_url"`
	NextSelector string `yaml:"next_selector" mapstructure:"next_selector"`
}

// FetchConfig configures page downloads.
type FetchConfig struct {
	Backend     string  `yaml:"backend" mapstructure:"backend"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
}

// NormalizeConfig configures the normalization core.
type NormalizeConfig struct {
	Encoding        string         `yaml:"encoding" mapstructure:"encoding"`
	SplitPoints     map[string]int `yaml:"split_points" mapstructure:"split_points"`
	ColumnKindsFile string         `yaml:"column_kinds_file" mapstructure:"column_kinds_file"`
	Lenient         bool           `yaml:"lenient" mapstructure:"lenient"`
	RequiredLabels  []string       `yaml:"required_labels" mapstructure:"required_labels"`
}

// WalkConfig bounds the listing walk. MaxPages 0 means unlimited.
type WalkConfig struct {
	MaxPages int `yaml:"max_pages" mapstructure:"max_pages"`
}

// BatchConfig configures concurrent fight assembly.
type BatchConfig struct {
	MaxConcurrentFights int `yaml:"max_concurrent_fights" mapstructure:"max_concurrent_fights"`
}

// ExportConfig configures the output sink.
type ExportConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FIGHTSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("source.events_url", "http://ufcstats.com/statistics/events/completed")
	v.SetDefault("source.next_selector", `a.b-link_style_black[href*="page"]:last-child`)
	v.SetDefault("fetch.backend", "http")
	v.SetDefault("fetch.user_agent", "fightstats/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_sec", 2.0)
	v.SetDefault("fetch.burst", 2)
	v.SetDefault("normalize.encoding", "double_space")
	v.SetDefault("normalize.column_kinds_file", "")
	v.SetDefault("normalize.lenient", false)
	v.SetDefault("normalize.required_labels", []string{"method", "round", "time"})
	v.SetDefault("walk.max_pages", 0)
	v.SetDefault("batch.max_concurrent_fights", 4)
	v.SetDefault("export.format", "csv")
	v.SetDefault("export.dir", ".")
	v.SetDefault("server.port", 8080)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Mode is "scrape"
// for the fetching commands and "serve" for the API.
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "scrape":
		switch c.Fetch.Backend {
		case "http", "colly":
		default:
			return eris.Errorf("config: unknown fetch.backend %q (valid: http, colly)", c.Fetch.Backend)
		}
		if c.Source.EventsURL == "" {
			missing = append(missing, "source.events_url")
		}
		if c.Fetch.RatePerSec <= 0 {
			return eris.Errorf("config: fetch.rate_per_sec must be positive, got %v", c.Fetch.RatePerSec)
		}
		if c.Fetch.MaxRetries < 0 {
			return eris.Errorf("config: fetch.max_retries must not be negative, got %d", c.Fetch.MaxRetries)
		}
		if c.Batch.MaxConcurrentFights < 1 || c.Batch.MaxConcurrentFights > 64 {
			return eris.Errorf("config: batch.max_concurrent_fights must be between 1 and 64, got %d", c.Batch.MaxConcurrentFights)
		}
		if c.Walk.MaxPages < 0 {
			return eris.Errorf("config: walk.max_pages must not be negative, got %d", c.Walk.MaxPages)
		}
	case "serve":
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			return eris.Errorf("config: server.port must be between 1 and 65535, got %d", c.Server.Port)
		}
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required fields for %s: %s", mode, strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
