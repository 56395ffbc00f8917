package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, DriverSQLite, cfg.DBDriver)
	require.Equal(t, "loantrack.db", cfg.SQLitePath)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", DriverPostgres)
	t.Setenv("PG_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.ServerPort)
	require.Equal(t, DriverPostgres, cfg.DBDriver)
	require.Equal(t, "db.internal", cfg.PGHost)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
}
