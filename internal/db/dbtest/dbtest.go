// Package dbtest opens throwaway in-memory databases for package tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shivgems/internal/db"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), gdb))

	t.Cleanup(func() {
		_ = db.Close(gdb)
	})
	return gdb
}
