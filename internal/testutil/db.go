// Package testutil provides an isolated in-memory database per test.
package testutil

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/schema"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/database"
)

// SetupTestDB opens a fresh shared-cache sqlite database named after the test
// and migrates every model.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := database.GormConfig("silent")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := schema.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
