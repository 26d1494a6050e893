package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SnapshotDriverNone     = "none"
	SnapshotDriverSqlite   = "sqlite"
	SnapshotDriverPostgres = "postgres"
	SnapshotDriverRedis    = "redis"
)

// Config holds all service settings.
// Precedence: environment > YAML file > defaults.
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Server   ServerConfig   `yaml:"server"`
	Cluster  ClusterConfig  `yaml:"cluster"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type BackendConfig struct {
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Timeout string `yaml:"timeout"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type ClusterConfig struct {
	Tolerance   float64 `yaml:"tolerance"`
	LabelPrefix string  `yaml:"label_prefix"`
}

type SnapshotConfig struct {
	Driver      string `yaml:"driver"`
	DBPath      string `yaml:"db_path"`
	DatabaseURL string `yaml:"database_url"`
	RedisAddr   string `yaml:"redis_addr"`
	MaxAge      string `yaml:"max_age"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{Timeout: "10s"},
		Server:  ServerConfig{Port: "8080"},
		Cluster: ClusterConfig{
			Tolerance:   0.0002,
			LabelPrefix: "Comanda #",
		},
		Snapshot: SnapshotConfig{
			Driver: SnapshotDriverSqlite,
			DBPath: "data/snapshots.db",
			MaxAge: "24h",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadEnv reads a .env file into the process environment if one exists.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads the YAML file at path (missing file means defaults), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("load config: parse %q: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("load config: read %q: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	setString("BACKEND_URL", &c.Backend.URL)
	setString("BACKEND_TOKEN", &c.Backend.Token)
	setString("BACKEND_TIMEOUT", &c.Backend.Timeout)
	setString("PORT", &c.Server.Port)
	setString("LABEL_PREFIX", &c.Cluster.LabelPrefix)
	setString("SNAPSHOT_DRIVER", &c.Snapshot.Driver)
	setString("DB_PATH", &c.Snapshot.DBPath)
	setString("DATABASE_URL", &c.Snapshot.DatabaseURL)
	setString("REDIS_ADDR", &c.Snapshot.RedisAddr)
	setString("SNAPSHOT_MAX_AGE", &c.Snapshot.MaxAge)
	setString("LOG_LEVEL", &c.Logging.Level)

	if v := strings.TrimSpace(os.Getenv("CLUSTER_TOLERANCE")); v != "" {
		tol, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CLUSTER_TOLERANCE %q: %w", v, err)
		}
		c.Cluster.Tolerance = tol
	}

	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.URL) == "" {
		return errors.New("BACKEND_URL is required")
	}

	if !(c.Cluster.Tolerance > 0) {
		return fmt.Errorf("cluster tolerance must be positive, got %v", c.Cluster.Tolerance)
	}

	if _, err := c.GetBackendTimeout(); err != nil {
		return err
	}
	if _, err := c.GetSnapshotMaxAge(); err != nil {
		return err
	}

	switch c.Snapshot.Driver {
	case SnapshotDriverNone:
	case SnapshotDriverSqlite:
		if strings.TrimSpace(c.Snapshot.DBPath) == "" {
			return errors.New("DB_PATH is required for the sqlite snapshot driver")
		}
	case SnapshotDriverPostgres:
		if strings.TrimSpace(c.Snapshot.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required for the postgres snapshot driver")
		}
	case SnapshotDriverRedis:
		if strings.TrimSpace(c.Snapshot.RedisAddr) == "" {
			return errors.New("REDIS_ADDR is required for the redis snapshot driver")
		}
	default:
		return fmt.Errorf("unknown snapshot driver %q", c.Snapshot.Driver)
	}

	return nil
}

func (c *Config) GetBackendTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil {
		return 0, fmt.Errorf("backend timeout %q: %w", c.Backend.Timeout, err)
	}
	return d, nil
}

// Zero means snapshots of any age may be served.
func (c *Config) GetSnapshotMaxAge() (time.Duration, error) {
	if strings.TrimSpace(c.Snapshot.MaxAge) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Snapshot.MaxAge)
	if err != nil {
		return 0, fmt.Errorf("snapshot max age %q: %w", c.Snapshot.MaxAge, err)
	}
	return d, nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
