// Package databasetest provides migrated in-memory stores for tests.
package databasetest

import (
	"context"
	"testing"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/database"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/pkg/logger"
)

// New opens a fresh in-memory sqlite store with the schema applied.
// The store is closed when the test finishes.
func New(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		URL:          ":memory:",
		MaxOpenConns: 1,
	}, logger.New("error"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
