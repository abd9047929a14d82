package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitStateDirWritesDefaultConfig(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitStateDir(projectDir); err != nil {
		t.Fatalf("init state dir: %v", err)
	}
	for _, sub := range []string{"logs", "state", "exports"} {
		if info, err := os.Stat(filepath.Join(projectDir, StateDirName, sub)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s dir, err=%v", sub, err)
		}
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Project.Handoff.Store != "file" {
		t.Fatalf("default file should select file store, got %q", cfg.Project.Handoff.Store)
	}
	if cfg.Project.Backend.Timeout != 10*time.Second {
		t.Fatalf("timeout = %s", cfg.Project.Backend.Timeout)
	}
}

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", cfg.Project.Version)
	}
	if cfg.Project.Locale != DefaultLocale {
		t.Fatalf("expected locale %q, got %q", DefaultLocale, cfg.Project.Locale)
	}
	if cfg.Project.Handoff.Store != "memory" {
		t.Fatalf("expected memory store, got %q", cfg.Project.Handoff.Store)
	}
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `
version: 1
locale: EN
backend:
  base_url: https://inventory.example.com/
  timeout: 3s
handoff:
  store: redis
  redis:
    addr: 10.0.0.5:6379
    db: 2
auth:
  mode: none
  required_role: User
`)
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	p := cfg.Project
	if p.Locale != "en" {
		t.Fatalf("locale not normalized: %q", p.Locale)
	}
	if p.Backend.BaseURL != "https://inventory.example.com" {
		t.Fatalf("base url not trimmed: %q", p.Backend.BaseURL)
	}
	if p.Backend.Timeout != 3*time.Second {
		t.Fatalf("timeout = %s", p.Backend.Timeout)
	}
	if p.Handoff.Redis.Addr != "10.0.0.5:6379" || p.Handoff.Redis.DB != 2 {
		t.Fatalf("redis settings not parsed: %+v", p.Handoff.Redis)
	}
	if p.Handoff.Redis.Key != DefaultRedisKey {
		t.Fatalf("redis key default missing: %q", p.Handoff.Redis.Key)
	}
	if p.Auth.RequiredRole != "user" {
		t.Fatalf("role not normalized: %q", p.Auth.RequiredRole)
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	cases := map[string]string{
		"redis without addr":  "handoff:\n  store: redis\n",
		"bad scheme":          "backend:\n  base_url: ftp://x\n",
		"token without key":   "auth:\n  mode: token\n",
		"unknown locale":      "locale: fr\n",
		"device without path": "scanner:\n  source: device\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			writeConfig(t, projectDir, body)
			if _, err := NewConfig(projectDir); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
}

func TestEnvOverridesAndDotEnv(t *testing.T) {
	projectDir := t.TempDir()
	dotenv := "INTAKE_BACKEND_URL=http://10.1.1.1:8080\nINTAKE_AUTH_MODE=none\n"
	if err := os.WriteFile(filepath.Join(projectDir, ".env"), []byte(dotenv), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INTAKE_BACKEND_TIMEOUT", "750ms")
	t.Setenv("INTAKE_REDIS_DB", "not-a-number")
	// godotenv never overrides variables already present
	t.Setenv("INTAKE_AUTH_MODE", "userinfo")
	t.Setenv("INTAKE_STATUS_ENABLED", "true")
	t.Setenv("INTAKE_STATUS_HOST", "0.0.0.0")
	t.Setenv("INTAKE_STATUS_PORT", "9001")
	cfg, err := NewConfig(projectDir)
	t.Cleanup(func() { _ = os.Unsetenv("INTAKE_BACKEND_URL") })
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Project.Backend.BaseURL != "http://10.1.1.1:8080" {
		t.Fatalf("expected .env base url, got %q", cfg.Project.Backend.BaseURL)
	}
	if cfg.Project.Backend.Timeout != 750*time.Millisecond {
		t.Fatalf("timeout override ignored: %s", cfg.Project.Backend.Timeout)
	}
	if cfg.Project.Auth.Mode != "userinfo" {
		t.Fatalf("process env must win over .env, got %q", cfg.Project.Auth.Mode)
	}
	if cfg.Project.Handoff.Redis.DB != 0 {
		t.Fatalf("invalid db override should be ignored")
	}
	status := cfg.Project.StatusServer
	if status.Enabled == nil || !*status.Enabled || status.Host != "0.0.0.0" || status.Port != 9001 {
		t.Fatalf("status overrides not applied: %+v", status)
	}
}

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	dir := filepath.Join(projectDir, StateDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(strings.TrimSpace(body)+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}
