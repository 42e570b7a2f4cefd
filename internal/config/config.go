package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tox-wtf/lfstage/internal/progress"
)

// DefaultPath is where the system-wide configuration lives.
const DefaultPath = "/etc/lfstage/config.yaml"

// Config defines runtime configuration. It is constructed once at process
// start and passed by value into the subsystems that need it; nothing reads
// ambient global state.
type Config struct {
	Jobs           int            `yaml:"jobs"`
	DefaultProfile string         `yaml:"default_profile"`
	LogLevel       string         `yaml:"log_level"`
	LogMaxSize     int64          `yaml:"log_max_size"`
	Strip          bool           `yaml:"strip"`
	Download       DownloadConfig `yaml:"download"`
}

// DownloadConfig defines source download behavior.
type DownloadConfig struct {
	Workers        int           `yaml:"workers"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	RedirectLimit  int           `yaml:"redirect_limit"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Jobs:           runtime.NumCPU(),
		DefaultProfile: "x86_64-glibc-tox-stage2",
		LogLevel:       "debug",
		LogMaxSize:     10 * 1024 * 1024, // 10MB
		Strip:          true,
		Download: DownloadConfig{
			Workers:        16,
			ConnectTimeout: 32 * time.Second,
			RedirectLimit:  16,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with human-readable sizes and
// durations.
type yamlConfig struct {
	Jobs           int    `yaml:"jobs"`
	DefaultProfile string `yaml:"default_profile"`
	LogLevel       string `yaml:"log_level"`
	LogMaxSize     string `yaml:"log_max_size"`
	Strip          *bool  `yaml:"strip"`
	Download       struct {
		Workers        int    `yaml:"workers"`
		ConnectTimeout string `yaml:"connect_timeout"`
		RedirectLimit  int    `yaml:"redirect_limit"`
	} `yaml:"download"`
}

// LoadFromFile loads configuration from a YAML file, filling unset fields
// with defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Jobs != 0 {
		cfg.Jobs = yc.Jobs
	}
	if yc.DefaultProfile != "" {
		cfg.DefaultProfile = yc.DefaultProfile
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}
	if yc.LogMaxSize != "" {
		size, err := progress.ParseBytes(yc.LogMaxSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse log_max_size: %w", err)
		}
		cfg.LogMaxSize = size
	}
	if yc.Strip != nil {
		cfg.Strip = *yc.Strip
	}
	if yc.Download.Workers != 0 {
		cfg.Download.Workers = yc.Download.Workers
	}
	if yc.Download.ConnectTimeout != "" {
		d, err := time.ParseDuration(yc.Download.ConnectTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse download.connect_timeout: %w", err)
		}
		cfg.Download.ConnectTimeout = d
	}
	if yc.Download.RedirectLimit != 0 {
		cfg.Download.RedirectLimit = yc.Download.RedirectLimit
	}

	return cfg, nil
}

// Load returns the configuration at path, or the defaults when the file
// does not exist. Any other failure is an error; a present-but-broken
// config should not be silently ignored.
func Load(path string) (Config, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromEnv applies environment overrides. Variables use the LFSTAGE_
// prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("LFSTAGE_JOBS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse LFSTAGE_JOBS: %w", err)
		}
		c.Jobs = n
	}
	if v := os.Getenv("LFSTAGE_DEFAULT_PROFILE"); v != "" {
		c.DefaultProfile = v
	}
	if v := os.Getenv("LFSTAGE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LFSTAGE_LOG_MAX_SIZE"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse LFSTAGE_LOG_MAX_SIZE: %w", err)
		}
		c.LogMaxSize = size
	}
	if v := os.Getenv("LFSTAGE_STRIP"); v != "" {
		c.Strip = v == "true" || v == "1"
	}
	if v := os.Getenv("LFSTAGE_DOWNLOAD_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse LFSTAGE_DOWNLOAD_WORKERS: %w", err)
		}
		c.Download.Workers = n
	}
	if v := os.Getenv("LFSTAGE_CONNECT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse LFSTAGE_CONNECT_TIMEOUT: %w", err)
		}
		c.Download.ConnectTimeout = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Jobs <= 0 {
		return errors.New("config: jobs must be positive")
	}
	if c.DefaultProfile == "" {
		return errors.New("config: default_profile is required")
	}
	if c.LogMaxSize <= 0 {
		return errors.New("config: log_max_size must be positive")
	}
	if c.Download.Workers <= 0 {
		return errors.New("config: download.workers must be positive")
	}
	if c.Download.ConnectTimeout < 0 {
		return errors.New("config: download.connect_timeout must not be negative")
	}
	if c.Download.RedirectLimit < 0 {
		return errors.New("config: download.redirect_limit must not be negative")
	}
	return nil
}
