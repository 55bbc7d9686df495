package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the full server configuration. Values come from an optional
// YAML file, then environment variables override field by field.
type AppConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	OpsAddr    string `yaml:"ops_addr"`

	AllowedOrigins []string `yaml:"allowed_origins"`

	PingIntervalSec int `yaml:"ping_interval_sec"`
	SendBufferSize  int `yaml:"send_buffer_size"`
}

// Load reads path (may be empty) and applies environment overrides.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:      ":3000",
		PingIntervalSec: 15,
		SendBufferSize:  64,
	}

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("OPS_ADDR")); v != "" {
		cfg.OpsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		cfg.AllowedOrigins = nil
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, s)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("PING_INTERVAL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PingIntervalSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("SEND_BUFFER_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SendBufferSize = n
		}
	}

	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return nil, errors.New("listen_addr is required")
	}

	return cfg, nil
}
