package database

import (
	"brainer_backend/internal/config"
	"brainer_backend/internal/model"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{"", "sqlite", false},
		{"sqlite", "sqlite", false},
		{"mysql", "mysql", false},
		{"postgres", "postgres", false},
		{"oracle", "", true},
	}
	for _, tt := range tests {
		d, err := Dialector(&config.DatabaseConfig{Driver: tt.driver, Port: 5432})
		if (err != nil) != tt.wantErr {
			t.Errorf("Dialector(%q) error = %v, wantErr %v", tt.driver, err, tt.wantErr)
			continue
		}
		if err == nil && d.Name() != tt.want {
			t.Errorf("Dialector(%q).Name() = %q, want %q", tt.driver, d.Name(), tt.want)
		}
	}
}

// assertDuplicateSlug checks that the unique slug index is translated for the given backend.
func assertDuplicateSlug(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Create(&model.Course{Slug: "go", Title: "Go"}).Error; err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := db.Create(&model.Course{Slug: "go", Title: "Go again"}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("duplicate slug error = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestInitDBSqlite(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "brainer.db")}
	db, err := InitDB(cfg, true)
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	if !db.Migrator().HasTable(&model.ReviewSheet{}) {
		t.Errorf("review_sheets table missing after migration")
	}
	assertDuplicateSlug(t, db)
}

func TestInitDBPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("brainer"),
		tcpostgres.WithUsername("brainer"),
		tcpostgres.WithPassword("brainer"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatal(err)
	}

	db, err := InitDB(&config.DatabaseConfig{
		Driver:   "postgres",
		Host:     host,
		Port:     port.Int(),
		User:     "brainer",
		Password: "brainer",
		DBName:   "brainer",
		SSLMode:  "disable",
	}, true)
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	for _, table := range []interface{}{&model.Course{}, &model.Chapter{}, &model.ExerciseSubmission{}} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table for %T missing after migration", table)
		}
	}
	// order 存在 sort_order 列里
	if !db.Migrator().HasColumn(&model.Chapter{}, "sort_order") {
		t.Errorf("chapters.sort_order column missing")
	}
	assertDuplicateSlug(t, db)
}
