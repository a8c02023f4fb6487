// Package config loads the armlinkctl application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/robokit/armlink/internal/link"
)

type ControllerConfig struct {
	Host                   string `toml:"host"`
	Port                   int    `toml:"port"`
	Topic                  string `toml:"topic"`
	MessageTimeoutMS       int    `toml:"message_timeout_ms"`
	MaxConsecutiveTimeouts int    `toml:"max_consecutive_timeouts"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type MetricsConfig struct {
	// Addr enables the /metrics listener when non-empty.
	Addr string `toml:"addr"`
}

type AppConfig struct {
	Controller ControllerConfig `toml:"controller"`
	Logging    LoggingConfig    `toml:"logging"`
	Metrics    MetricsConfig    `toml:"metrics"`
}

func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if cfg.Controller.MessageTimeoutMS == 0 {
		cfg.Controller.MessageTimeoutMS = int(link.DefaultMessageTimeout / time.Millisecond)
	}
	if cfg.Controller.MaxConsecutiveTimeouts == 0 {
		cfg.Controller.MaxConsecutiveTimeouts = link.DefaultMaxConsecutiveTimeouts
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func Validate(cfg AppConfig) error {
	if strings.TrimSpace(cfg.Controller.Host) == "" {
		return fmt.Errorf("controller config missing host")
	}
	if cfg.Controller.Port < 1 || cfg.Controller.Port > 65535 {
		return fmt.Errorf("controller config port %d out of range", cfg.Controller.Port)
	}
	return nil
}

// LinkConfig converts the file form into the link's runtime config.
func LinkConfig(cfg AppConfig) link.Config {
	return link.Config{
		Host:                   cfg.Controller.Host,
		Port:                   cfg.Controller.Port,
		Topic:                  cfg.Controller.Topic,
		MessageTimeout:         time.Duration(cfg.Controller.MessageTimeoutMS) * time.Millisecond,
		MaxConsecutiveTimeouts: cfg.Controller.MaxConsecutiveTimeouts,
	}
}
