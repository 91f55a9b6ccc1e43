package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/planboard/internal/advisor"
	"github.com/mmynk/planboard/internal/auth"
	"github.com/mmynk/planboard/internal/config"
	"github.com/mmynk/planboard/internal/hub"
	"github.com/mmynk/planboard/internal/metrics"
	"github.com/mmynk/planboard/internal/middleware"
	"github.com/mmynk/planboard/internal/rpc"
	"github.com/mmynk/planboard/internal/service"
	"github.com/mmynk/planboard/internal/storage"
	"github.com/mmynk/planboard/internal/storage/postgres"
	"github.com/mmynk/planboard/internal/storage/sqlite"
	"github.com/mmynk/planboard/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	closeLog := logging.SetupWithOptions(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	store, err := openStore(ctx, cfg.Server)
	if err != nil {
		return err
	}
	defer store.Close()

	h := hub.New(store, hub.Config{OriginPatterns: cfg.Server.OriginPatterns})
	defer h.Close()

	adv, err := newAdvisor(ctx, cfg.Advisor)
	if err != nil {
		return err
	}

	gate, err := auth.NewPasswordGate(cfg.Server.PasswordHash, cfg.Server.Password)
	if err != nil {
		return err
	}
	jwtManager := auth.NewJWTManager(jwtSecret(cfg.Server), cfg.Server.TokenTTL)

	interceptors := []connect.Interceptor{middleware.LoggingInterceptor()}
	if gate.Enabled() {
		interceptors = append(interceptors, middleware.RequireAuth(jwtManager, rpc.AuthServiceLoginProcedure))
		slog.Info("Password gate enabled")
	} else {
		slog.Warn("No password configured, dashboard is open")
	}
	opts := connect.WithInterceptors(interceptors...)

	mux := http.NewServeMux()

	// Register Connect services
	mux.Handle(rpc.NewDocumentServiceHandler(service.NewDocumentService(store, h), opts))
	mux.Handle(rpc.NewAuthServiceHandler(service.NewAuthService(gate, jwtManager, slog.Default()), opts))
	mux.Handle(rpc.NewAdvisorServiceHandler(service.NewAdvisorService(adv), opts))

	var ws http.Handler = h
	if gate.Enabled() {
		ws = middleware.RequireAuthHTTP(jwtManager, h)
	}
	mux.Handle("/ws", ws)
	mux.HandleFunc("/healthz", h.HandleHealth)
	mux.Handle("/metrics", metrics.Handler())

	// Add logging and CORS middleware
	loggedHandler := loggingMiddleware(corsMiddleware(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(loggedHandler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// Shutdown does not wait for hijacked websocket connections.
		h.Close()
		return err
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.ServerConfig) (storage.Store, error) {
	if cfg.DatabaseURL != "" {
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		slog.Info("Storage initialized", "driver", "postgres")
		return store, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("Storage initialized", "driver", "sqlite", "database", cfg.DBPath)
	return store, nil
}

func newAdvisor(ctx context.Context, cfg config.AdvisorConfig) (*advisor.Advisor, error) {
	provider, err := advisor.NewProvider(ctx, advisor.ProviderConfig{
		Provider:        cfg.Provider,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
	})
	if err != nil {
		return nil, err
	}
	if provider == nil {
		slog.Warn("No AI API key found, advisor disabled")
	} else {
		slog.Info("Advisor enabled", "provider", provider.Name())
	}

	eventDate, err := cfg.EventTime()
	if err != nil {
		return nil, err
	}
	return advisor.New(provider, advisor.Options{EventDate: eventDate, Location: cfg.Location}), nil
}

// jwtSecret returns the configured secret or a random one, which invalidates
// sessions on restart.
func jwtSecret(cfg config.ServerConfig) string {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	slog.Warn("No JWT secret configured, sessions end on restart")
	return hex.EncodeToString(b)
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

		slog.Info("Request completed",
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
