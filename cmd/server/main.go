package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/roomsplit/internal/config"
	"github.com/mmynk/roomsplit/internal/metrics"
	"github.com/mmynk/roomsplit/internal/middleware"
	"github.com/mmynk/roomsplit/internal/rpc"
	"github.com/mmynk/roomsplit/internal/service"
	"github.com/mmynk/roomsplit/internal/storage"
	"github.com/mmynk/roomsplit/internal/storage/postgres"
	"github.com/mmynk/roomsplit/internal/storage/sqlite"
	"github.com/mmynk/roomsplit/pkg/logging"
)

// maxRequestBytes caps a single RPC request body.
const maxRequestBytes = 1 << 20

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "roomsplit-server: %v\n", err)
		os.Exit(1)
	}
	logging.SetupFromString(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	m := metrics.New()
	mux := http.NewServeMux()

	// Register Connect service
	path, handler := rpc.NewReceiptServiceHandler(
		service.NewReceiptService(store),
		connect.WithInterceptors(middleware.LoggingInterceptor(), middleware.MetricsInterceptor(m)),
		connect.WithReadMaxBytes(maxRequestBytes),
	)
	mux.Handle(path, handler)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(corsMiddleware(mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// openStore opens the authoritative store selected by storage.driver.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		store, err := postgres.New(ctx, cfg.Postgres.DSN(), cfg.Postgres.PoolMaxConns)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", "postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.DBName)
		return store, nil
	default:
		store, err := sqlite.New(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", "sqlite", "database", cfg.Storage.SQLitePath)
		return store, nil
	}
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
