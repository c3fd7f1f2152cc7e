// Command membershipd serves the membership HTTP API.
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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xraph/membership"
	"github.com/xraph/membership/api"
	"github.com/xraph/membership/clock"
	"github.com/xraph/membership/observability"
	"github.com/xraph/membership/store"
	"github.com/xraph/membership/store/memory"
	mongostore "github.com/xraph/membership/store/mongo"
	"github.com/xraph/membership/store/postgres"
	redisstore "github.com/xraph/membership/store/redis"
	"github.com/xraph/membership/store/sqlite"
	"github.com/xraph/membership/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "membershipd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	// LoadConfig only lets the genesis default for the memory store.
	genesis := cfg.Genesis
	if genesis.IsZero() {
		genesis = time.Now()
	}
	ledger, err := clock.NewRounds(types.Identity(cfg.ServiceIdentity), genesis, cfg.TickPeriod,
		clock.WithGenesisTick(types.Tick(cfg.GenesisTick)),
	)
	if err != nil {
		return err
	}

	svc := membership.New(st, ledger,
		membership.WithLogger(logger),
		membership.WithFee(types.Amount(cfg.Fee)),
		membership.WithDuration(cfg.Duration),
		membership.WithPlugin(observability.NewMetricsExtension(
			observability.NewPrometheusFactory(prometheus.DefaultRegisterer),
		)),
	)
	if err := svc.Initialize(ctx); err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("close service", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, svc, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("membershipd listening",
			"addr", cfg.Addr,
			"store", cfg.Store,
			"base_path", cfg.BasePath,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(cfg Config, svc *membership.Service, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Route(cfg.BasePath, func(r chi.Router) {
		api.New(svc, logger).Register(r)
	})
	return r
}

func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.Store {
	case "redis":
		return redisstore.NewFromURL(ctx, cfg.RedisURL, redisstore.WithKeyPrefix(cfg.KeyPrefix))
	case "sqlite":
		return sqlite.Open(ctx, cfg.DSN)
	case "postgres":
		return postgres.Open(ctx, cfg.DSN)
	case "mongo":
		return mongostore.Open(ctx, cfg.DSN)
	default:
		return memory.New(), nil
	}
}
