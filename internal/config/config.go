// Package config loads shipcam settings from .env, an optional config file,
// SHIPCAM_* environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultConfigDir = ".shipcam"
	envPrefix        = "SHIPCAM"
)

// Config holds all runtime settings.
type Config struct {
	Env           string `mapstructure:"env"`
	LogLevel      string `mapstructure:"log_level"`
	DBPath        string `mapstructure:"db_path"`
	SuggestionCap int    `mapstructure:"suggestion_cap"`
	MaxDimension  int    `mapstructure:"max_dimension"`
	JPEGQuality   int    `mapstructure:"jpeg_quality"`
	DeviceInfo    string `mapstructure:"device_info"`
}

// Load reads configuration. configFile may be empty to search the default
// locations (~/.shipcam/config.yaml, ./config.yaml).
func Load(configFile string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(filepath.Join(home, defaultConfigDir))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", EnvLocal)
	v.SetDefault("log_level", "info")
	v.SetDefault("db_path", filepath.Join(home, defaultConfigDir, "shipcam.db"))
	v.SetDefault("suggestion_cap", 200)
	v.SetDefault("max_dimension", 1200)
	v.SetDefault("jpeg_quality", 85)
	v.SetDefault("device_info", fmt.Sprintf("%s/%s shipcam", runtime.GOOS, runtime.GOARCH))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return errors.New("config: db_path must not be empty")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("config: jpeg_quality must be in [1,100], got %d", c.JPEGQuality)
	}
	if c.MaxDimension < 64 {
		return fmt.Errorf("config: max_dimension must be at least 64, got %d", c.MaxDimension)
	}
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("config: unknown env %q", c.Env)
	}
	return nil
}

// IsLocal reports whether the local environment is active.
func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal || c.Env == ""
}
