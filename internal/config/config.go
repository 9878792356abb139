// Package config reads the application's configuration from the environment.
//
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported storage backends.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every setting the server needs.
type Config struct {
	Port          int
	DBDriver      string
	DBPath        string
	DatabaseURL   string
	DefaultUserID string
	LogLevel      string
	CORSOrigins   []string
	TemplateDir   string
	StaticDir     string
}

// Load reads .env (if any) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults and
// validating the result.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		DBDriver:      strings.ToLower(get("DB_DRIVER", DriverSQLite)),
		DBPath:        get("DB_PATH", "data/shopping.db"),
		DatabaseURL:   get("DATABASE_URL", ""),
		DefaultUserID: get("DEFAULT_USER_ID", "user1"),
		LogLevel:      get("LOG_LEVEL", "info"),
		CORSOrigins:   splitOrigins(get("CORS_ORIGINS", "http://localhost:5173")),
		TemplateDir:   get("TEMPLATE_DIR", "web/templates"),
		StaticDir:     get("STATIC_DIR", "web/static"),
	}

	portStr := get("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("config: invalid PORT %q", portStr)
	}
	cfg.Port = port

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("config: DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("config: unknown DB_DRIVER %q (want sqlite or postgres)", cfg.DBDriver)
	}

	return cfg, nil
}

// splitOrigins parses a comma-separated origin list, dropping blanks and
// trailing slashes.
func splitOrigins(raw string) []string {
	var origins []string
	for _, p := range strings.Split(raw, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
