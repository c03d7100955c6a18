// Package config provides configuration management for the access layer.
//
// Config file locations (priority order):
//  1. $USERSTREAM_CONFIG
//  2. ./userstream.yaml
//  3. ~/.config/userstream/config.yaml
//  4. /etc/userstream/config.yaml
//
// Store credentials may also be supplied through the environment
// (USERSTREAM_DB_HOST and friends); environment values override the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables overriding the store section of the config file.
const (
	EnvDBDriver   = "USERSTREAM_DB_DRIVER"
	EnvDBHost     = "USERSTREAM_DB_HOST"
	EnvDBPort     = "USERSTREAM_DB_PORT"
	EnvDBUser     = "USERSTREAM_DB_USER"
	EnvDBPassword = "USERSTREAM_DB_PASSWORD"
	EnvDBName     = "USERSTREAM_DB_NAME"
)

// Load finds and loads the config file, or returns defaults if none found.
// Environment overrides are applied in both cases.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation: an
// embedded SQLite store next to the binary.
func DefaultConfig() *Config {
	cfg := &Config{Version: 1}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	if c.Store.Driver == DriverSQLite && c.Store.Path == "" {
		c.Store.Path = "./userstream.db"
	}
	if c.Store.Driver == DriverMySQL {
		if c.Store.Host == "" {
			c.Store.Host = "localhost"
		}
		if c.Store.Port == 0 {
			c.Store.Port = 3306
		}
	}
	if c.Store.MaxOpenConns == 0 {
		c.Store.MaxOpenConns = 10
	}
	if c.Store.MaxIdleConns == 0 {
		c.Store.MaxIdleConns = 5
	}
	if c.Store.ConnMaxLifetime == 0 {
		c.Store.ConnMaxLifetime = Duration(30 * time.Minute)
	}
}

// applyEnv overrides store settings from the environment
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBDriver); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv(EnvDBHost); v != "" {
		c.Store.Host = v
	}
	if v := os.Getenv(EnvDBPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Store.Port = port
		}
	}
	if v := os.Getenv(EnvDBUser); v != "" {
		c.Store.User = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Store.Password = v
	}
	if v := os.Getenv(EnvDBName); v != "" {
		c.Store.Database = v
	}
	c.applyDefaults()
}
