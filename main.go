package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"personal-ledger/config"
	"personal-ledger/handler"
	"personal-ledger/service"
	"personal-ledger/storage"

	"golang.org/x/sync/errgroup"
)

func main() {
	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// Route both slog and the standard logger through one text handler
	level, _ := config.ParseLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Initialize storage
	store, ledger, closeLedger, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeLedger()
	slog.Info("storage initialized", "backend", cfg.LedgerBackend, "data_dir", cfg.DataDir)

	registry := service.NewRegistry(store, ledger, slog.Default())

	// Create and start server
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler.NewRouter(registry),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Wait for shutdown signal or a failed listener
		<-gctx.Done()
		log.Println("Shutting down server...")

		// Create a context for shutdown with a timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server stopped with error: %v", err)
		return
	}
	log.Println("Server gracefully stopped")
}

// openStorage builds the account store and history ledger for the
// configured backend. Account collections always live in flat files except
// for the memory backend.
func openStorage(ctx context.Context, cfg *config.Config) (storage.AccountStore, storage.Ledger, func(), error) {
	noop := func() {}
	switch cfg.LedgerBackend {
	case config.BackendMemory:
		return storage.NewMemoryAccountStore(), storage.NewMemoryLedger(), noop, nil
	case config.BackendPostgres:
		ledger, err := storage.NewPostgresLedger(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return storage.NewFileAccountStore(cfg.DataDir, slog.Default()), ledger, ledger.Close, nil
	default:
		return storage.NewFileAccountStore(cfg.DataDir, slog.Default()), storage.NewFileLedger(cfg.DataDir), noop, nil
	}
}
