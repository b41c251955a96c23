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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"aegis/internal/access/app"
	"aegis/internal/access/notify"
	"aegis/internal/access/ports"
	"aegis/internal/access/store/session"
	"aegis/internal/access/workers/cleanup"
	"aegis/internal/platform/config"
	"aegis/internal/platform/health"
	"aegis/internal/platform/kv"
	"aegis/internal/platform/logger"
	redisclient "aegis/internal/platform/redis"
	"aegis/pkg/platform/clock"
	"aegis/pkg/platform/middleware/admin"
	"aegis/pkg/platform/middleware/metadata"
	"aegis/pkg/platform/middleware/request"
)

const poolStatsInterval = 15 * time.Second

// main wires the shared store, the access components and the dashboard
// router. Business logic lives in internal/access.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing aegis",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"redis", cfg.Redis.URL != "",
		"local_keylock", cfg.LocalKeyLock,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	trusted, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	clk := clock.System{}
	healthHandler := health.New(cfg.Environment)
	workers, workerCtx := errgroup.WithContext(ctx)

	var (
		store    ports.KVStore
		sessions ports.SessionDirectory
	)
	rdb, err := redisclient.New(ctx, cfg.Redis, redisclient.NewPoolMetrics(registry))
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close() //nolint:errcheck // process is exiting
		store = kv.NewBounded(kv.NewRedis(rdb.Client), cfg.Access.StoreTimeout)
		sessions = session.NewRedis(rdb.Client, clk)
		healthHandler.RegisterCheck("redis", rdb.Health)
		workers.Go(func() error {
			recordPoolStats(workerCtx, rdb)
			return nil
		})
	} else {
		log.Warn("REDIS_URL not set; state is process-local and lost on restart")
		store = kv.NewMemory(clk)
		directory := session.NewInMemory()
		sessions = directory
		sweeper := cleanup.New(directory, clk,
			cleanup.WithLogger(log),
			cleanup.WithInterval(cfg.SessionCleanupInterval),
		)
		workers.Go(func() error {
			if err := sweeper.Start(workerCtx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	access, err := app.New(cfg, app.Deps{
		Store:      store,
		Sessions:   sessions,
		Sender:     notify.NewLogSender(log),
		Clock:      clk,
		Logger:     log,
		Registerer: registry,
	})
	if err != nil {
		return err
	}
	defer access.Close()

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.New(trusted).Handler)
	r.Use(request.Observe(log, request.NewMetrics(registry)))
	r.Use(request.Recovery(log))
	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	if cfg.AdminToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(admin.RequireToken(cfg.AdminToken, log))
			r.Use(request.ContentTypeJSON)
			access.Handler().Register(r)
		})
	} else {
		log.Warn("AEGIS_ADMIN_TOKEN not set; dashboard routes disabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	workers.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	workers.Go(func() error {
		<-workerCtx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return workers.Wait()
}

func recordPoolStats(ctx context.Context, rdb *redisclient.Client) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rdb.RecordPoolStats()
		case <-ctx.Done():
			return
		}
	}
}
