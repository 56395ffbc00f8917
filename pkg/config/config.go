// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	ServerPort string
	DBDriver   string

	SQLitePath string

	PGHost     string
	PGPort     string
	PGUser     string
	PGPassword string
	PGDB       string
	PGSSLMode  string
}

// Load reads a .env file if one exists, then builds the config from the
// environment with defaults suitable for local development.
func Load() (*Config, error) {
	// Missing .env is fine, real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: getenv("SERVER_PORT", "8080"),
		DBDriver:   getenv("DB_DRIVER", DriverSQLite),
		SQLitePath: getenv("SQLITE_PATH", "loantrack.db"),
		PGHost:     getenv("PG_HOST", "localhost"),
		PGPort:     getenv("PG_PORT", "5432"),
		PGUser:     getenv("PG_USER", "postgres"),
		PGPassword: getenv("PG_PASSWORD", ""),
		PGDB:       getenv("PG_DB", "loantrack"),
		PGSSLMode:  getenv("PG_SSLMODE", "disable"),
	}

	if cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
