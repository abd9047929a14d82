// cmd/stub-backend/main.go
//
// Serves the in-memory inventory API so the terminal can run without the real
// backend. Point backend.base_url (or --backend) at the address printed here.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/Hernesto-SRL/management-front/internal/stubapi"
)

func main() {
	addr := pflag.String("addr", "127.0.0.1:5000", "Listen address.")
	seed := pflag.Bool("seed", true, "Load the demo catalog on start.")
	pflag.Parse()

	stub := stubapi.New()
	if *seed {
		stub.Seed()
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           stub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "stub backend listening on http://%s\n", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
		os.Exit(1)
	}
}
