// Package repotest opens throwaway migrated databases for tests.
package repotest

import (
	"fmt"
	"os"
	"testing"

	"walletledger/internal/config"
	"walletledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenSQLite returns a migrated in-memory database private to t. A single
// connection keeps every query on the same in-memory database.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := repositories.InitDB(config.DatabaseConfig{
		Driver:       repositories.DriverSQLite,
		Path:         dsn,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// OpenPostgres connects to DATABASE_URL-style settings taken from the
// standard DB_* variables, skipping the test when TEST_POSTGRES is unset.
// Every call resets the shared database, so packages using it need -p 1.
func OpenPostgres(t testing.TB) *gorm.DB {
	t.Helper()

	if os.Getenv("TEST_POSTGRES") == "" {
		t.Skip("TEST_POSTGRES not set; skipping postgres integration test")
	}
	db, err := repositories.InitDB(config.DatabaseConfig{
		Driver:   repositories.DriverPostgres,
		Host:     config.GetEnv("DB_HOST", "localhost"),
		Port:     config.GetEnv("DB_PORT", "5432"),
		User:     config.GetEnv("DB_USER", "postgres"),
		Password: config.GetEnv("DB_PASSWORD", "postgres"),
		Name:     config.GetEnv("DB_NAME", "walletledger_test"),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.ResetDatabase(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
