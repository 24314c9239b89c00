// Package config loads the service configuration from defaults, an optional
// YAML file and environment variables, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Storage drivers
const (
	DriverMongoDB = "mongodb"
	DriverSQLite  = "sqlite"
	DriverMemory  = "memory"
)

const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// envKeys maps environment variable names to configuration keys
var envKeys = map[string]string{
	"HTTP_HOST":        "http.host",
	"HTTP_PORT":        "http.port",
	"GIN_MODE":         "http.mode",
	"SHUTDOWN_TIMEOUT": "http.shutdown_timeout",
	"DB_DRIVER":        "database.driver",
	"DB_URL":           "database.url",
	"DB_PORT":          "database.port",
	"DB_NAME":          "database.name",
	"DB_USER":          "database.user",
	"DB_PASSWORD":      "database.password",
	"SQLITE_PATH":      "database.sqlite_path",
	"ITEMS_PER_PAGE":   "api.items_per_page",
	"MAX_PAGE_SIZE":    "api.max_page_size",
	"MAX_UPLOAD_SIZE":  "api.max_upload_size",
	"LOG_LEVEL":        "logging.level",
	"LOG_FORMAT":       "logging.format",
}

type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Database DatabaseConfig `koanf:"database"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type HTTPConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	// Mode is the gin mode: debug, release or test
	Mode            string        `koanf:"mode"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver     string `koanf:"driver"`
	URL        string `koanf:"url"`
	Port       string `koanf:"port"`
	Name       string `koanf:"name"`
	User       string `koanf:"user"`
	Password   string `koanf:"password"`
	SQLitePath string `koanf:"sqlite_path"`
}

type APIConfig struct {
	ItemsPerPage int64 `koanf:"items_per_page"`
	// MaxPageSize caps the requested page size, 0 disables the cap
	MaxPageSize int64 `koanf:"max_page_size"`
	// MaxUploadSize is the maximum size in bytes of an uploaded film file
	MaxUploadSize int64 `koanf:"max_upload_size"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "release",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:     DriverSQLite,
			URL:        "localhost",
			Port:       "27017",
			Name:       "filmbase",
			SQLitePath: "filmbase.db",
		},
		API: APIConfig{
			ItemsPerPage:  10,
			MaxPageSize:   100,
			MaxUploadSize: 10 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration and validates it
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransformFunc returns the configuration key of an environment variable.
// Unknown variables are skipped.
func envTransformFunc(key string) string {
	return envKeys[strings.ToUpper(key)]
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	switch c.HTTP.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.HTTP.Mode))
	}

	switch c.Database.Driver {
	case DriverMongoDB:
		if c.Database.URL == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("DB_URL and DB_NAME are required for the mongodb driver"))
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be mongodb, sqlite or memory, got %q", c.Database.Driver))
	}

	if c.API.ItemsPerPage < 1 {
		errs = append(errs, fmt.Errorf("ITEMS_PER_PAGE must be positive, got %d", c.API.ItemsPerPage))
	}
	if c.API.MaxPageSize < 0 {
		errs = append(errs, fmt.Errorf("MAX_PAGE_SIZE must not be negative, got %d", c.API.MaxPageSize))
	}
	if c.API.MaxPageSize > 0 && c.API.MaxPageSize < c.API.ItemsPerPage {
		errs = append(errs, errors.New("MAX_PAGE_SIZE must not be lower than ITEMS_PER_PAGE"))
	}
	if c.API.MaxUploadSize < 1 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.API.MaxUploadSize))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// MongoURI returns the connection string of the MongoDB server
func (d DatabaseConfig) MongoURI() string {
	if d.User == "" {
		return fmt.Sprintf("mongodb://%s:%s", d.URL, d.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s", d.User, d.Password, d.URL, d.Port)
}

// Addr returns the listen address of the HTTP server
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}
