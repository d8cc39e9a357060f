// Command despensa-fakeapi serves the shopping-list REST API from memory so
// the TUI can be run without the real backend.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/five82/despensa/internal/apitest"
	"github.com/five82/despensa/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", "127.0.0.1:8080", "listen address")
	seedPath := flag.String("seed", "", "YAML seed file (optional, defaults to the bundled fixture)")
	logLevel := flag.String("log-level", "debug", "debug, info, warn or error")
	flag.Parse()

	logger := logging.Setup(*logLevel, os.Stderr)

	seed := apitest.DefaultSeed()
	if *seedPath != "" {
		loaded, err := apitest.LoadSeed(*seedPath)
		if err != nil {
			logger.Error("load seed failed", slog.Any("error", err))
			return 1
		}
		seed = loaded
	}

	backend := apitest.NewBackend(seed)
	backend.SetLogger(logger)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fake api listening",
			slog.String("url", "http://"+*addr+"/api"),
			slog.Int("categorias", len(seed.Categorias)),
			slog.Int("produtos", len(seed.Produtos)),
			slog.Int("listas", len(seed.Listas)))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("server error", slog.Any("error", err))
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
		return 1
	}
	return 0
}
