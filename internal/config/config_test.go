package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate clears the variables LoadConfig binds so the host environment does not leak in.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"PORT", "SERVER_MODE", "SECRET_KEY", "DATABASE_DRIVER", "DATABASE_PATH",
		"REDIS_ENABLED", "STORAGE_TYPE", "JUDGE0_URL", "AI_BASE_URL", "TRACING_ENABLED",
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Setenv("STORAGE_LOCAL_PATH", filepath.Join(dir, "static"))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "8000" {
		t.Errorf("Server.Port = %q, want 8000", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "brainer.db" {
		t.Errorf("Database = %s/%s, want sqlite/brainer.db", cfg.Database.Driver, cfg.Database.Path)
	}
	if cfg.JWT.ExpireTime != 24*time.Hour {
		t.Errorf("JWT.ExpireTime = %v, want 24h", cfg.JWT.ExpireTime)
	}
	if cfg.Storage.PublicPrefix != "/static" {
		t.Errorf("Storage.PublicPrefix = %q, want /static", cfg.Storage.PublicPrefix)
	}
	if cfg.Redis.TTLSeconds != 300 {
		t.Errorf("Redis.TTLSeconds = %d, want 300", cfg.Redis.TTLSeconds)
	}
	if cfg.RateLimit.MaxRequests != 6000 || cfg.RateLimit.WindowMinutes != 1 {
		t.Errorf("RateLimit = %+v, want 6000 per 1 minute", cfg.RateLimit)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORS.AllowedOrigins = %v, want [http://localhost:3000]", cfg.CORS.AllowedOrigins)
	}
	if _, err := os.Stat(filepath.Join(dir, "static", "images")); err != nil {
		t.Errorf("images directory not created: %v", err)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := isolate(t)
	yaml := `
server:
  port: "9000"
  mode: debug
database:
  driver: postgres
  host: db
  port: 5432
  dbname: brainer
jwt:
  expire_hours: 2
judge0:
  url: http://judge0:2358
  timeout_seconds: 3
cors:
  allowed_origins:
    - https://brainer.example
    - https://admin.brainer.example
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"port from env", cfg.Server.Port, "7000"},
		{"driver from file", cfg.Database.Driver, "postgres"},
		{"db port", cfg.Database.Port, 5432},
		{"jwt expiry", cfg.JWT.ExpireTime, 2 * time.Hour},
		{"judge0 url", cfg.Judge0.URL, "http://judge0:2358"},
		{"judge0 timeout", cfg.Judge0.Timeout, 3},
		{"redis enabled from env", cfg.Redis.Enabled, true},
		{"origins", len(cfg.CORS.AllowedOrigins), 2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadConfigReleaseNeedsStrongSecret(t *testing.T) {
	dir := isolate(t)
	t.Setenv("SERVER_MODE", "release")
	t.Setenv("SECRET_KEY", "short")

	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("LoadConfig() error = nil, want weak secret rejection")
	}

	t.Setenv("SECRET_KEY", "0123456789abcdef0123456789abcdef")
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("Server.Mode = %q, want release", cfg.Server.Mode)
	}
}
