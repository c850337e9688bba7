package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Preview PreviewConfig `yaml:"preview" mapstructure:"preview"`
	Archive ArchiveConfig `yaml:"archive" mapstructure:"archive"`
}

// APIConfig points at the LandWatch backend.
type APIConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// Timeout returns the per-request timeout
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the local HTTP host.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// PreviewConfig configures where staged-file previews are written.
type PreviewConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ArchiveConfig configures the optional S3-compatible artifact archive.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Region    string `yaml:"region" mapstructure:"region"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("landwatch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".landwatch"))
	}

	// Environment
	v.SetEnvPrefix("LANDWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key needs one so AutomaticEnv can see it on Unmarshal.
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout_secs", 120)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("api.rate_per_sec", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.port", 8888)
	v.SetDefault("preview.dir", "uploads")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.access_key", "")
	v.SetDefault("archive.secret_key", "")
	v.SetDefault("archive.bucket", "landwatch-artifacts")
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.use_ssl", false)
	v.SetDefault("archive.prefix", "analyses")

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

// Validate checks the settings a given command depends on
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.API.BaseURL == "" {
		problems = append(problems, "api.base_url is required")
	}
	if c.API.TimeoutSecs <= 0 {
		problems = append(problems, "api.timeout_secs must be > 0")
	}
	if c.API.MaxRetries < 0 {
		problems = append(problems, "api.max_retries must be >= 0")
	}

	switch mode {
	case "cli":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be between 1 and 65535")
		}
	case "archive":
		if c.Archive.Endpoint == "" {
			problems = append(problems, "archive.endpoint is required")
		}
		if c.Archive.Bucket == "" {
			problems = append(problems, "archive.bucket is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// NewLogger builds a slog logger writing to w.
func NewLogger(cfg LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("config: unknown log format %q", cfg.Format)
	}
}

// InitLogger installs the default slog logger on stderr.
func InitLogger(cfg LogConfig) error {
	logger, err := NewLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
