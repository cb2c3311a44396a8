package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (NEXTGEN_ prefix), flags, or YAML config files.
type Config struct {
	Addr     string         `yaml:"addr" default:"0.0.0.0:8080" usage:"API server listen address"`
	Storage  StorageConfig  `yaml:"storage"`
	Graceful GracefulConfig `yaml:"graceful"`
}

// StorageConfig selects and configures the repository backend.
type StorageConfig struct {
	Driver      string `yaml:"driver" default:"postgres" usage:"Storage backend: postgres, sqlite or memory"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL" usage:"PostgreSQL connection URL (NEXTGEN_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	SQLitePath  string `yaml:"sqlite_path" env:"SQLITE_PATH" default:"nextgen.db" usage:"SQLite database file, or :memory:" flag:"sqlite-path"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `yaml:"readiness_delay" default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, flags and YAML
// config files, then applies platform defaults and validates the result.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		Files: []string{"config.yaml", "/etc/nextgen/config.yaml"},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	ac.EnvPrefix = "NEXTGEN"
	ac.FileDecoders = map[string]aconfig.FileDecoder{
		".yaml": aconfigyaml.New(),
	}

	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("database URL is required for postgres: set NEXTGEN_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite path is required")
		}
	case DriverMemory:
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables such as
// DATABASE_URL and PORT onto the NEXTGEN_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		c.Storage.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
