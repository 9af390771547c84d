// Package config loads the client-side TOML configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the client configuration for one session.
type Config struct {
	Server ServerConfig `toml:"server"`
	Sync   SyncConfig   `toml:"sync"`
}

// ServerConfig points at the gateway.
type ServerConfig struct {
	BaseURL string `toml:"base_url"`
}

// SyncConfig controls cross-session broadcasting.
type SyncConfig struct {
	RelayURL  string `toml:"relay_url"`
	SlotTTLMS int    `toml:"slot_ttl_ms"`
}

// Default returns the configuration for a gateway and relay on localhost.
func Default() *Config {
	return &Config{
		Server: ServerConfig{BaseURL: "http://localhost:8080"},
		Sync:   SyncConfig{RelayURL: "ws://localhost:8080/ws", SlotTTLMS: 1000},
	}
}

// Load reads and parses a TOML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path if it exists, falling back to defaults.
func LoadOrDefault(path string) *Config {
	if _, err := os.Stat(path); err != nil {
		return Default()
	}
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}
