package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/achi131830/transaction-tracker-postgres/internal/auth"
	"github.com/achi131830/transaction-tracker-postgres/internal/config"
	"github.com/achi131830/transaction-tracker-postgres/internal/http/handlers"
	"github.com/achi131830/transaction-tracker-postgres/internal/pairing"
	"github.com/achi131830/transaction-tracker-postgres/internal/service"
	"github.com/achi131830/transaction-tracker-postgres/internal/splitter"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage/postgres"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage/sqlite"
	"github.com/achi131830/transaction-tracker-postgres/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err, "driver", cfg.Driver)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.Driver)

	pairings := pairing.NewManager(store)
	splits := splitter.New(pairings, store)
	ledger := service.NewLedger(store, pairings, splits)

	authenticator := auth.NewPasswordAuthenticator(store)
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	server := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      handlers.NewRouter(ledger, authenticator, tokens),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	default:
		return sqlite.New(cfg.SQLitePath)
	}
}
