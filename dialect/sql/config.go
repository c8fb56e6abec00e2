package sql

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect"
)

// Config holds the connection settings for a Database.
type Config struct {
	Dialect      string `yaml:"dialect"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// DefaultConfig returns a local PostgreSQL configuration.
func DefaultConfig() Config {
	return Config{
		Dialect:  dialect.Postgres,
		Host:     "localhost",
		Port:     5432,
		Username: "postgres",
		Database: "postgres",
	}
}

// ConfigFromEnv builds a configuration from ROWMAP_DB_* environment
// variables, falling back to DefaultConfig for unset ones.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("ROWMAP_DB_DIALECT"); v != "" {
		cfg.Dialect = v
	}
	if v := os.Getenv("ROWMAP_DB_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("ROWMAP_DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("ROWMAP_DB_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("ROWMAP_DB_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("ROWMAP_DB_DATABASE"); v != "" {
		cfg.Database = v
	}
	return cfg
}

// ConfigFromFile loads a YAML configuration file.
func ConfigFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("dialect/sql: read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("dialect/sql: parse config: %w", err)
	}
	return cfg, nil
}

// DSN renders the data source name for the configured dialect. For
// SQLite the database field is the file path.
func (c Config) DSN() string {
	switch c.Dialect {
	case dialect.MySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.Username, c.Password, c.Host, c.Port, c.Database)
	case dialect.SQLite:
		return c.Database
	default:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.Username, c.Password, c.Database)
	}
}

// OpenConfig opens a Database from a configuration and applies the pool
// limits.
func OpenConfig(cfg Config) (*Database, error) {
	if cfg.Dialect == "" {
		return nil, rowmap.NewConnectionError("no dialect configured", nil)
	}
	db, err := Open(cfg.Dialect, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.DB().SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.DB().SetMaxIdleConns(cfg.MaxIdleConns)
	}
	return db, nil
}
