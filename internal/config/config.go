// Package config loads the rpccall configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"rpcfailover/client"
)

const (
	DefaultTimeoutSeconds = 30
	DefaultLogLevel       = "info"
)

// Config mirrors the JSON configuration file.
type Config struct {
	Endpoints      []string `json:"endpoints"`
	MaxFailovers   int      `json:"maxFailovers"`
	MaxWorkers     int      `json:"maxWorkers"`
	TimeoutSeconds int      `json:"timeoutSeconds"`
	Retries        int      `json:"retries"`
	MaxIdleConns   int      `json:"maxIdleConns"`
	PoolBlock      bool     `json:"poolBlock"`
	TCPKeepAlive   *bool    `json:"tcpKeepalive"`
	RateLimit      float64  `json:"rateLimit"`
	LogLevel       string   `json:"logLevel"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for unset fields. The client
// applies its own defaults for zero-valued knobs it owns.
func applyDefaults(cfg *Config) {
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	if len(cfg.Endpoints) == 0 {
		return errors.New("at least one endpoint is required")
	}
	for i, ep := range cfg.Endpoints {
		if ep == "" {
			return fmt.Errorf("endpoints[%d]: must not be empty", i)
		}
	}

	if cfg.MaxWorkers < 0 {
		return errors.New("maxWorkers must be non-negative")
	}
	if cfg.TimeoutSeconds < 0 {
		return errors.New("timeoutSeconds must be non-negative")
	}
	if cfg.RateLimit < 0 {
		return errors.New("rateLimit must be non-negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return errors.New("logLevel must be one of: debug, info, warn, error")
	}

	return nil
}

// ToClientConfig converts the file configuration into a client.Config
// with the given logger injected.
func (cfg *Config) ToClientConfig(logger zerolog.Logger) client.Config {
	cc := client.Config{
		Endpoints:    cfg.Endpoints,
		MaxFailovers: cfg.MaxFailovers,
		MaxWorkers:   cfg.MaxWorkers,
		Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		Retries:      cfg.Retries,
		MaxIdleConns: cfg.MaxIdleConns,
		PoolBlock:    cfg.PoolBlock,
		RateLimit:    cfg.RateLimit,
		Logger:       logger,
	}
	if cfg.TCPKeepAlive != nil && !*cfg.TCPKeepAlive {
		cc.DisableTCPKeepAlive = true
	}
	return cc
}
