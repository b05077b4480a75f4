// Package config loads territorio settings from a YAML file with
// environment variable overrides (TERRITORIO_<SECTION>_<KEY>).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Data    DataConfig    `mapstructure:"data"`
	Client  ClientConfig  `mapstructure:"client"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DataConfig points at the source extracts. BusinessPath may be empty.
type DataConfig struct {
	CensusPath   string `mapstructure:"census_path"`
	BusinessPath string `mapstructure:"business_path"`
}

type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // "text" or "json"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("data.census_path", "data/censo_manzanas.csv")
	v.SetDefault("data.business_path", "data/denue.csv")
	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.timeout", 15*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TERRITORIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads ./config/config.yaml or /etc/territorio/config.yaml when
// present; defaults and environment variables apply either way.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/territorio")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// ConfigureLogging applies the logging section to the standard logrus logger.
func (c LoggingConfig) ConfigureLogging() error {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	logrus.SetLevel(level)

	switch c.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Format)
	}
	return nil
}
