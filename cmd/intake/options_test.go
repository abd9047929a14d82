package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/Hernesto-SRL/management-front/internal/config"
	"github.com/Hernesto-SRL/management-front/internal/inventory"
)

func parse(t *testing.T, args ...string) *Options {
	t.Helper()
	opts := NewOptions()
	fs := pflag.NewFlagSet("intake", pflag.ContinueOnError)
	opts.AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return opts
}

func TestOptionsApplyOverrides(t *testing.T) {
	dir := t.TempDir()
	opts := parse(t, "--project", dir, "--backend", "http://10.0.0.5:5000", "--locale", "en", "--device", "/dev/ttyACM0", "--kind", "Stock-Exit")
	if err := opts.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !opts.hasKind || opts.startKind != inventory.KindStockExit {
		t.Fatalf("expected stock-exit start kind, got %v (set %v)", opts.startKind, opts.hasKind)
	}

	if err := config.InitStateDir(dir); err != nil {
		t.Fatalf("InitStateDir: %v", err)
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	opts.Apply(cfg)
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Project.Backend.BaseURL != "http://10.0.0.5:5000" {
		t.Fatalf("backend override not applied: %q", cfg.Project.Backend.BaseURL)
	}
	if cfg.Project.Locale != "en" {
		t.Fatalf("locale override not applied: %q", cfg.Project.Locale)
	}
	if cfg.Project.Scanner.Source != "device" || cfg.Project.Scanner.Device != "/dev/ttyACM0" {
		t.Fatalf("device override not applied: %+v", cfg.Project.Scanner)
	}
}

func TestOptionsRejectUnknownKind(t *testing.T) {
	opts := parse(t, "--project", t.TempDir(), "--kind", "inventory-count")
	if err := opts.Complete(); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
}

func TestOptionsRejectBadStatusAddr(t *testing.T) {
	for _, addr := range []string{"9500", "localhost:0", "127.0.0.1:http"} {
		opts := parse(t, "--project", t.TempDir(), "--status-addr", addr)
		if err := opts.Complete(); err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if err := opts.Validate(); err == nil {
			t.Fatalf("expected --status-addr %q to fail", addr)
		}
	}
	opts := parse(t, "--project", t.TempDir(), "--status-addr", ":9500")
	if err := opts.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate %q: %v", opts.StatusAddr, err)
	}
}

func TestOptionsRejectMissingProject(t *testing.T) {
	opts := parse(t, "--project", filepath.Join(t.TempDir(), "missing"))
	if err := opts.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := opts.Validate(); err == nil {
		t.Fatalf("expected missing project directory to fail")
	}
}
