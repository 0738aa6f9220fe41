package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config carries everything the server needs. Values come from an
// optional config file, overridden by SHIPMENTGEN_* environment
// variables.
type Config struct {
	Addr       string `mapstructure:"addr"`
	SQLitePath string `mapstructure:"sqlite_path"`
	TempDir    string `mapstructure:"temp_dir"`
	OutputsDir string `mapstructure:"outputs_dir"`
	DataDir    string `mapstructure:"data_dir"`
	LogLevel   string `mapstructure:"log_level"`
}

// Load reads the configuration. path may be empty; then only defaults
// and environment apply, plus a config.toml in the working directory
// when one exists.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("addr", ":8000")
	v.SetDefault("sqlite_path", "shipmentgen.db")
	v.SetDefault("temp_dir", "temp")
	v.SetDefault("outputs_dir", "outputs")
	v.SetDefault("data_dir", ".")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("SHIPMENTGEN")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// SetupLogging installs the process-wide slog handler at the configured
// level.
func (c *Config) SetupLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
