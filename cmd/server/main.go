package main

import (
	"context"
	"errors"
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

	"github.com/mmynk/splitshare/internal/auth"
	"github.com/mmynk/splitshare/internal/config"
	"github.com/mmynk/splitshare/internal/metrics"
	"github.com/mmynk/splitshare/internal/middleware"
	"github.com/mmynk/splitshare/internal/reminder"
	"github.com/mmynk/splitshare/internal/service"
	"github.com/mmynk/splitshare/internal/storage"
	"github.com/mmynk/splitshare/internal/storage/memory"
	"github.com/mmynk/splitshare/internal/storage/mongodb"
	"github.com/mmynk/splitshare/internal/storage/sqlite"
	"github.com/mmynk/splitshare/pkg/logging"
	"github.com/mmynk/splitshare/pkg/proto/protoconnect"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logging.Setup(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "backend", cfg.StoreBackend)

	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	interceptors := connect.WithInterceptors(
		m.Interceptor(),
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(slog.Default()),
	)

	mux := http.NewServeMux()

	// Register Connect services
	groupPath, groupHandler := protoconnect.NewGroupServiceHandler(service.NewGroupService(store), interceptors)
	mux.Handle(groupPath, groupHandler)

	expenseService := service.NewExpenseService(store, service.WithRejectionRecorder(m))
	expensePath, expenseHandler := protoconnect.NewExpenseServiceHandler(expenseService, interceptors)
	mux.Handle(expensePath, expenseHandler)

	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if cfg.ReminderSchedule != "" {
		job := reminder.NewJob(store, reminder.LogNotifier{Logger: slog.Default()})
		scheduler, err := reminder.Schedule(cfg.ReminderSchedule, job)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		slog.Info("Balance reminders scheduled", "schedule", cfg.ReminderSchedule)
	}

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		if cfg.SeedFile != "" {
			return memory.LoadSeed(cfg.SeedFile)
		}
		return memory.New(), nil
	case config.BackendMongo:
		return mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
	default:
		return sqlite.New(cfg.DBPath)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
