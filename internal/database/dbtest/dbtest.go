// Package dbtest opens migrated in-memory catalog databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/Aidin1998/pricecatalog/internal/config"
	"github.com/Aidin1998/pricecatalog/internal/database"
)

// Config returns a sqlite configuration private to one test.
func Config() config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString()),
	}
}

// Open returns an empty, migrated database. With seed set the reference
// catalog of nine brands and eight categories is loaded.
func Open(t testing.TB, seed bool) *gorm.DB {
	t.Helper()
	logger := zaptest.NewLogger(t)

	db, err := database.Open(Config(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.NewMigrator(db, logger, seed).Up(context.Background()))
	return db
}
