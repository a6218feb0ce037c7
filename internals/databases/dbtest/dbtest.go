// Package dbtest opens a migrated in-memory sqlite store for package tests.
package dbtest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"chitfund_backend/internals/configs"
	database "chitfund_backend/internals/databases"
)

// Open returns a fresh store named after the test. The shared cache keeps the
// in-memory database alive across pooled connections; one open connection
// serialises writers the way sqlite needs.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db := OpenRaw(t)
	require.NoError(t, database.Migrate(db))
	return db
}

// OpenRaw returns an empty store without running migrations.
func OpenRaw(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(configs.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: "file:" + name + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	database.TunePool(db)
	t.Cleanup(func() { database.Close(db) })
	return db
}
