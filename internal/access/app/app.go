// Package app assembles the access-control components over a shared store.
// An authentication service embeds App and calls Coordinator on every login;
// cmd/server uses it to serve the dashboard.
package app

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"aegis/internal/access/handler"
	"aegis/internal/access/metrics"
	"aegis/internal/access/notify"
	"aegis/internal/access/ports"
	"aegis/internal/access/service/bruteforce"
	"aegis/internal/access/service/coordinator"
	"aegis/internal/access/service/devicetrust"
	"aegis/internal/access/service/history"
	"aegis/internal/access/service/risk"
	"aegis/internal/access/service/sessions"
	"aegis/internal/access/service/slidingwindow"
	"aegis/internal/platform/config"
	"aegis/pkg/platform/circuit"
	psync "aegis/pkg/platform/sync"
)

// Deps are the adapters App runs on.
type Deps struct {
	Store    ports.KVStore
	Sessions ports.SessionDirectory
	// Sender delivers notifications; App wraps it in an async dispatcher
	Sender     ports.Notifier
	Clock      ports.Clock
	Logger     *slog.Logger
	Registerer prometheus.Registerer
}

type App struct {
	Coordinator *coordinator.Coordinator
	Limiter     *slidingwindow.Limiter
	Guard       *bruteforce.Guard
	Devices     *devicetrust.Store
	Sessions    *sessions.Manager
	History     *history.Tracker
	Scorer      *risk.Scorer
	Metrics     *metrics.Metrics

	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

func New(cfg config.Server, deps Deps) (*App, error) {
	if deps.Store == nil || deps.Sessions == nil || deps.Sender == nil || deps.Clock == nil {
		return nil, fmt.Errorf("store, sessions, sender and clock are required")
	}
	if cfg.Access == nil {
		return nil, fmt.Errorf("access config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	access := cfg.Access
	m := metrics.New(deps.Registerer)

	limiterOpts := []slidingwindow.Option{
		slidingwindow.WithLogger(logger),
		slidingwindow.WithMaxStoredEvents(access.MaxStoredEvents),
	}
	if cfg.LocalKeyLock {
		limiterOpts = append(limiterOpts, slidingwindow.WithKeyLock(psync.NewKeyLock(psync.DefaultShards)))
	}
	limiter, err := slidingwindow.New(deps.Store, deps.Clock, limiterOpts...)
	if err != nil {
		return nil, fmt.Errorf("init sliding window limiter: %w", err)
	}

	guard, err := bruteforce.New(limiter, deps.Clock,
		bruteforce.WithLogger(logger),
		bruteforce.WithConfig(access),
	)
	if err != nil {
		return nil, fmt.Errorf("init brute force guard: %w", err)
	}

	devices, err := devicetrust.New(deps.Store, deps.Clock,
		devicetrust.WithLogger(logger),
		devicetrust.WithConfig(access.Devices),
	)
	if err != nil {
		return nil, fmt.Errorf("init device trust store: %w", err)
	}

	tracker, err := history.New(deps.Store, limiter, deps.Clock,
		history.WithLogger(logger),
		history.WithConfig(access),
	)
	if err != nil {
		return nil, fmt.Errorf("init login history: %w", err)
	}

	manager, err := sessions.New(deps.Sessions, deps.Clock,
		sessions.WithLogger(logger),
		sessions.WithConfig(access.Sessions),
		sessions.WithMetrics(m),
	)
	if err != nil {
		return nil, fmt.Errorf("init session manager: %w", err)
	}

	breaker := circuit.New("notifier",
		circuit.WithFailureThreshold(cfg.Notify.BreakerThreshold),
		circuit.WithCooldown(cfg.Notify.BreakerCooldown),
		circuit.WithClock(deps.Clock),
	)
	dispatcher, err := notify.NewDispatcher(deps.Sender,
		notify.WithLogger(logger),
		notify.WithMetrics(m),
		notify.WithBufferSize(cfg.Notify.BufferSize),
		notify.WithSendTimeout(cfg.Notify.SendTimeout),
		notify.WithBreaker(breaker),
	)
	if err != nil {
		return nil, fmt.Errorf("init notification dispatcher: %w", err)
	}

	scorer := risk.New(access.Risk.Location)
	coord, err := coordinator.New(guard, devices, tracker, scorer, dispatcher, deps.Clock,
		coordinator.WithLogger(logger),
		coordinator.WithMetrics(m),
		coordinator.WithConfig(access),
	)
	if err != nil {
		dispatcher.Close()
		return nil, fmt.Errorf("init access coordinator: %w", err)
	}

	return &App{
		Coordinator: coord,
		Limiter:     limiter,
		Guard:       guard,
		Devices:     devices,
		Sessions:    manager,
		History:     tracker,
		Scorer:      scorer,
		Metrics:     m,
		dispatcher:  dispatcher,
		logger:      logger,
	}, nil
}

// Handler returns the dashboard routes over this App's components.
func (a *App) Handler() *handler.Handler {
	return handler.New(a.Sessions, a.Devices, a.Scorer, a.logger)
}

// Close drains pending notifications.
func (a *App) Close() {
	a.dispatcher.Close()
}
