// Package testdb provides an isolated in-memory database per test.
package testdb

import (
	"context"
	"fmt"
	"testing"

	"tyrehub/internal/migrate"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a migrated in-memory sqlite database. A single connection is
// shared so concurrent test goroutines serialize at the driver instead of
// failing with a locked database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.Migrate(context.Background(), db, zap.NewNop(), migrate.DefaultOptions()); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return db
}
