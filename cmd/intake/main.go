// cmd/intake/main.go
//
// This is the entry point for the warehouse intake terminal.
// When you run `intake` from a terminal directory, this is what executes.
//
// Flow:
// 1. Parse flags and load .intake/config.yaml (plus .env and INTAKE_* overrides)
// 2. Build the backend client and the services every workflow shares
// 3. Start the serial scanner and the status server when configured
// 4. Launch the TUI and block until the operator quits

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/Hernesto-SRL/management-front/internal/auth"
	"github.com/Hernesto-SRL/management-front/internal/backend"
	"github.com/Hernesto-SRL/management-front/internal/config"
	"github.com/Hernesto-SRL/management-front/internal/handoff"
	"github.com/Hernesto-SRL/management-front/internal/journal"
	"github.com/Hernesto-SRL/management-front/internal/locale"
	"github.com/Hernesto-SRL/management-front/internal/logbook"
	"github.com/Hernesto-SRL/management-front/internal/logging"
	"github.com/Hernesto-SRL/management-front/internal/lookup"
	"github.com/Hernesto-SRL/management-front/internal/metrics"
	"github.com/Hernesto-SRL/management-front/internal/notify"
	"github.com/Hernesto-SRL/management-front/internal/refdata"
	"github.com/Hernesto-SRL/management-front/internal/scan"
	"github.com/Hernesto-SRL/management-front/internal/statusserver"
	"github.com/Hernesto-SRL/management-front/internal/submission"
	"github.com/Hernesto-SRL/management-front/internal/tui"
)

var version = "dev"

func main() {
	opts := NewOptions()
	opts.AddFlags(pflag.CommandLine)
	pflag.Parse()
	if opts.Version {
		fmt.Println(version)
		return
	}
	if err := opts.Complete(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.InitStateDir(opts.ProjectDir); err != nil {
		return fmt.Errorf("initializing .intake directory: %w", err)
	}
	cfg, err := config.NewConfig(opts.ProjectDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	opts.Apply(cfg)
	if err := cfg.Finalize(); err != nil {
		return err
	}

	logger, err := logging.New(opts.ProjectDir)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer logger.Close()

	book, err := logbook.New(filepath.Join(cfg.LogsDir(), "journey.log"))
	if err != nil {
		return fmt.Errorf("opening journey log: %w", err)
	}

	metrics.Register()
	tr := locale.New(cfg.Project.Locale)

	api := backend.New(cfg.Project.Backend.BaseURL, cfg.Project.Backend.Timeout,
		backend.WithToken(cfg.Project.Backend.Token),
		backend.WithLogger(logger.Named("backend")),
	)
	loader := refdata.NewLoader(api)
	resolver := lookup.New(api, lookup.WithTranslator(tr), lookup.WithLogger(logger.Named("lookup")))
	gateway := submission.New(api,
		submission.WithInvalidator(loader),
		submission.WithTranslator(tr),
		submission.WithLogger(logger.Named("submission")),
	)

	store, err := handoff.Open(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	authorizer, required, err := auth.FromConfig(cfg.Project.Auth, api)
	if err != nil {
		return err
	}
	debouncer, err := scan.NewDebouncer(cfg.Project.Scanner.Debounce)
	if err != nil {
		return err
	}

	var appOpts []tui.AppOption
	if opts.hasKind {
		appOpts = append(appOpts, tui.WithStartKind(opts.startKind))
	}
	switch cfg.Project.Scanner.Source {
	case "none":
		appOpts = append(appOpts, tui.WithManualOnly())
	case "device":
		device, err := os.Open(cfg.Project.Scanner.Device)
		if err != nil {
			return fmt.Errorf("opening scanner: %w", err)
		}
		defer device.Close()
		adapter := scan.NewAdapter(scan.NewLineDecoder(device),
			scan.WithDebouncer(debouncer),
			scan.WithLogger(logger.Named("scan")),
		)
		appOpts = append(appOpts, tui.WithScanner(adapter.Start(ctx)))
		// The adapter owns the debouncer once a device is attached.
		debouncer = nil
	}

	status := startStatusServer(ctx, cfg, opts, api, store, logger)
	if status != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = status.Shutdown(shutdownCtx)
		}()
	}

	app, err := tui.NewApp(tui.Services{
		Resolver:     resolver,
		Gateway:      gateway,
		RefData:      loader,
		Handoff:      handoff.New(store),
		Journal:      journal.New(cfg.ExportsDir()),
		Logbook:      book,
		Notifier:     notify.Fanout{notify.ToLogbook(book), notify.ToZap(logger.Zap())},
		Authorizer:   authorizer,
		RequiredRole: required,
		Debouncer:    debouncer,
		Translator:   tr,
		Logger:       logger.Named("workflow"),
	}, appOpts...)
	if err != nil {
		return err
	}
	defer app.Close()

	logger.Printf("intake: started against %s (locale %s, handoff %s, scanner %s)",
		api.BaseURL(), tr.Lang(), cfg.Project.Handoff.Store, cfg.Project.Scanner.Source)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// startStatusServer returns nil when the listener is disabled or fails to
// bind. The terminal keeps working without it.
func startStatusServer(ctx context.Context, cfg *config.Config, opts *Options, api *backend.Client, store handoff.Store, logger *logging.Logger) *statusserver.Server {
	settings := statusserver.SettingsFromConfig(cfg)
	if opts.StatusAddr != "" {
		// Validate already rejected a malformed address.
		settings, _ = settings.Override(opts.StatusAddr)
	}
	checks := []statusserver.Option{
		statusserver.WithVersion(version),
		statusserver.WithLogger(logger.Named("status")),
		statusserver.WithCheck("backend", func(ctx context.Context) error {
			resp, err := api.Get(ctx, backend.PathWarehouse, nil)
			if err != nil {
				return err
			}
			if resp.Status >= 500 {
				return fmt.Errorf("backend answered %d", resp.Status)
			}
			return nil
		}),
	}
	if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
		checks = append(checks, statusserver.WithCheck("handoff", pinger.Ping))
	}
	server := statusserver.New(settings, checks...)
	if err := server.Start(ctx); err != nil {
		if !errors.Is(err, statusserver.ErrDisabled) {
			logger.Printf("intake: status server: %v", err)
		}
		return nil
	}
	return server
}
