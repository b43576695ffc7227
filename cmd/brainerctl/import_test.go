package main

import (
	"brainer_backend/internal/app"
	"brainer_backend/internal/config"
	"brainer_backend/internal/service"
	"brainer_backend/pkg/client"
	"brainer_backend/pkg/database"
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"
)

func newBrainerServer(t *testing.T) *client.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), gormlogger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	a := app.New(&config.Config{
		Server:  config.ServerConfig{Port: "0", Mode: gin.TestMode},
		JWT:     config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", ExpireTime: time.Hour},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir(), PublicPrefix: "/static", MaxUploadMB: 1},
	}, db, nil)
	server := httptest.NewServer(a.Router)
	t.Cleanup(server.Close)

	ctx := context.Background()
	c := client.New(server.URL, nil)
	if _, err := c.Register(ctx, service.RegisterRequest{Email: "author@example.com", Username: "author", Password: "password123"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := c.Login(ctx, "author@example.com", "password123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return c
}

func TestImportPlanResumes(t *testing.T) {
	c := newBrainerServer(t)
	ctx := context.Background()

	full, err := DecodePlan(strings.NewReader(yamlPlan), ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	// 第一次导入在第一章之后中断
	partial := *full
	first := full.Parts[0]
	first.Chapters = first.Chapters[:1]
	partial.Parts = []PlanPart{first}

	var out bytes.Buffer
	if err := ImportPlan(ctx, c, &partial, &out); err != nil {
		t.Fatalf("partial ImportPlan() error = %v", err)
	}
	if err := ImportPlan(ctx, c, full, &out); err != nil {
		t.Fatalf("resumed ImportPlan() error = %v", err)
	}
	// 重复导入不应报错，也不应产生新记录
	if err := ImportPlan(ctx, c, full, &out); err != nil {
		t.Fatalf("repeated ImportPlan() error = %v", err)
	}

	parts, err := c.ListParts(ctx, full.Course.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 2 {
		t.Errorf("parts = %d, want 2", len(parts))
	}
	chapters, err := c.ListChapters(ctx, full.Course.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != 3 {
		t.Fatalf("chapters = %d, want 3", len(chapters))
	}
	if chapters[2].Slug != "replication" || chapters[2].PartID == nil || *chapters[2].PartID != parts[1].ID {
		t.Errorf("last chapter = %+v, want replication in the second part", chapters[2])
	}
	if !strings.Contains(out.String(), "(exists)") {
		t.Errorf("output = %q, want reused parts and chapters reported", out.String())
	}
}

func TestImportPlanOrderTakenByOtherChapter(t *testing.T) {
	c := newBrainerServer(t)
	ctx := context.Background()

	plan, err := DecodePlan(strings.NewReader(jsonPlan), ".json")
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := ImportPlan(ctx, c, plan, &out); err != nil {
		t.Fatalf("ImportPlan() error = %v", err)
	}

	plan.Parts[0].Chapters[0].Slug = "threads"
	err = ImportPlan(ctx, c, plan, &out)
	if err == nil || !strings.Contains(err.Error(), "taken by another chapter") {
		t.Errorf("ImportPlan() error = %v, want an order clash", err)
	}
}
