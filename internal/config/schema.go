package config

import (
	"fmt"
	"time"
)

// Supported store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config is the root configuration structure
type Config struct {
	Version int         `yaml:"version"`
	Store   StoreConfig `yaml:"store"`
	Seed    SeedConfig  `yaml:"seed"`
}

// StoreConfig describes how to reach the relational store.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite or mysql

	// SQLite.
	Path string `yaml:"path,omitempty"`

	// MySQL.
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`

	// Pool limits.
	MaxOpenConns    int      `yaml:"max_open_conns,omitempty"`
	MaxIdleConns    int      `yaml:"max_idle_conns,omitempty"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime,omitempty"`
}

// SeedConfig points at the tabular import source.
type SeedConfig struct {
	CSVPath string `yaml:"csv_path,omitempty"`
}

// DSN builds the driver-specific data source name for the configured
// database.
func (s StoreConfig) DSN() string {
	switch s.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			s.User, s.Password, s.Host, s.Port, s.Database)
	default:
		return s.Path
	}
}

// ServerDSN is the MySQL DSN without a database selected, used by seeding
// to create the database itself. For SQLite it equals DSN.
func (s StoreConfig) ServerDSN() string {
	if s.Driver == DriverMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/", s.User, s.Password, s.Host, s.Port)
	}
	return s.DSN()
}

// Validate checks that the config describes a reachable store.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	case DriverMySQL:
		if c.Store.Database == "" {
			return fmt.Errorf("store.database is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// Duration wraps time.Duration with yaml support ("30m", "5s", ...).
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
