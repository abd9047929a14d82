package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Hernesto-SRL/management-front/internal/config"
	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/statusserver"
)

// Options holds the command line overrides for one terminal run.
type Options struct {
	ProjectDir string
	BackendURL string
	Locale     string
	Kind       string
	StatusAddr string
	Device     string
	Version    bool

	startKind inventory.WorkflowKind
	hasKind   bool

	fs *pflag.FlagSet
}

// NewOptions returns Options rooted at the working directory.
func NewOptions() *Options {
	cwd, _ := os.Getwd()
	return &Options{ProjectDir: cwd}
}

// AddFlags binds the Options fields to command-line flags on the given FlagSet.
func (opts *Options) AddFlags(fs *pflag.FlagSet) {
	if fs == nil {
		fs = pflag.CommandLine
	}
	opts.fs = fs

	fs.StringVarP(&opts.ProjectDir, "project", "C", opts.ProjectDir,
		"Directory holding the .intake state folder.")
	fs.StringVar(&opts.BackendURL, "backend", opts.BackendURL,
		"Inventory API base URL. Overrides backend.base_url.")
	fs.StringVar(&opts.Locale, "locale", opts.Locale,
		"Language for operator messages: es or en.")
	fs.StringVar(&opts.Kind, "kind", opts.Kind,
		"Open this workflow right after the role check (stock-entry, stock-exit, register-product, register-batch).")
	fs.StringVar(&opts.StatusAddr, "status-addr", opts.StatusAddr,
		"host:port for the health and metrics listener. Enables it.")
	fs.StringVar(&opts.Device, "device", opts.Device,
		"Serial scanner path. Switches scanner.source to device.")
	fs.BoolVar(&opts.Version, "version", false, "Print the version and exit.")
}

// Complete parses derived values once flags are in.
func (opts *Options) Complete() error {
	opts.ProjectDir = strings.TrimSpace(opts.ProjectDir)
	if opts.ProjectDir == "" {
		return fmt.Errorf("--project must not be empty")
	}
	if kind := strings.TrimSpace(opts.Kind); kind != "" {
		parsed, err := inventory.ParseWorkflowKind(kind)
		if err != nil {
			return fmt.Errorf("--kind: %w", err)
		}
		opts.startKind = parsed
		opts.hasKind = true
	}
	return nil
}

// Validate checks the flags that cannot be validated by config.Finalize.
func (opts *Options) Validate() error {
	info, err := os.Stat(opts.ProjectDir)
	if err != nil {
		return fmt.Errorf("--project: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("--project: %s is not a directory", opts.ProjectDir)
	}
	if opts.StatusAddr != "" {
		if _, err := (statusserver.Settings{}).Override(opts.StatusAddr); err != nil {
			return fmt.Errorf("--status-addr: %w", err)
		}
	}
	return nil
}

// Apply writes the overrides into cfg. The caller runs cfg.Finalize after.
func (opts *Options) Apply(cfg *config.Config) {
	if v := strings.TrimSpace(opts.BackendURL); v != "" {
		cfg.Project.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(opts.Locale); v != "" {
		cfg.Project.Locale = v
	}
	if v := strings.TrimSpace(opts.Device); v != "" {
		cfg.Project.Scanner.Source = "device"
		cfg.Project.Scanner.Device = v
	}
}
