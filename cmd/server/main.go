// Package main is the entry point for the service. It wires all dependencies
// using samber/do v2, starts the HTTP server, and handles graceful shutdown
// on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel/metric"

	adapthttp "github.com/planfold/planfold/internal/adapters/http"
	"github.com/planfold/planfold/internal/adapters/http/handlers"
	"github.com/planfold/planfold/internal/adapters/http/middleware"
	"github.com/planfold/planfold/internal/adapters/identity"
	"github.com/planfold/planfold/internal/adapters/store/sqlite"
	"github.com/planfold/planfold/internal/app"
	"github.com/planfold/planfold/internal/domain"
	"github.com/planfold/planfold/internal/domain/event"
	"github.com/planfold/planfold/internal/platform/cache"
	"github.com/planfold/planfold/internal/platform/config"
	"github.com/planfold/planfold/internal/platform/health"
	"github.com/planfold/planfold/internal/platform/logging"
	"github.com/planfold/planfold/internal/platform/telemetry"
	"github.com/planfold/planfold/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	registerDependencies(injector, cfg, logger)

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	store := do.MustInvoke[*sqlite.Store](injector)
	defer store.Close()

	// The store doubles as the readiness probe target.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	registry.Register(store)

	// Wire reactors and metric hooks onto the bus.
	bus := do.MustInvoke[*event.Bus](injector)
	unsubscribe := app.RegisterReactors(bus,
		store.Projects(),
		store.Todos(),
		do.MustInvoke[*cache.Cache](injector),
		logger,
	)
	defer unsubscribe()

	if otel.metrics != nil {
		bus.Instrument(
			func(ctx context.Context, eventType string) {
				otel.metrics.EventPublishedTotal.Add(ctx, 1,
					metric.WithAttributes(telemetry.AttrEventType.String(eventType)))
			},
			func(ctx context.Context, eventType string) {
				otel.metrics.EventHandlerFailures.Add(ctx, 1,
					metric.WithAttributes(telemetry.AttrEventType.String(eventType)))
			},
		)
	}

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(_ do.Injector) (*sqlite.Store, error) {
		return sqlite.Open(sqlite.Config{
			Path:        cfg.Store.Path,
			BusyTimeout: cfg.Store.BusyTimeout,
		}, domain.SystemClock{})
	})

	do.Provide(injector, func(_ do.Injector) (*event.Bus, error) {
		// The process-wide bus is the production instance; rebuilding it
		// here attaches the configured logger.
		event.Default = event.New(logger)
		return event.Default, nil
	})

	do.Provide(injector, func(_ do.Injector) (*cache.Cache, error) {
		if !cfg.Cache.Enabled {
			return nil, nil
		}
		return cache.New(cfg.Cache.Size, cfg.Cache.TTL), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.IdentityProvider, error) {
		if !cfg.Auth.Enabled {
			return nil, nil
		}
		return identity.NewJWTProvider(identity.Config{
			Secret:   cfg.Auth.Secret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
		}), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.ProjectService, error) {
		store := do.MustInvoke[*sqlite.Store](i)
		bus := do.MustInvoke[*event.Bus](i)
		c := do.MustInvoke[*cache.Cache](i)
		return app.NewProjectApplicationService(store.Projects(), bus, c, domain.SystemClock{}, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.TodoService, error) {
		store := do.MustInvoke[*sqlite.Store](i)
		bus := do.MustInvoke[*event.Bus](i)
		return app.NewTodoApplicationService(store.Todos(), bus, domain.SystemClock{}, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.UserService, error) {
		store := do.MustInvoke[*sqlite.Store](i)
		return app.NewUserApplicationService(store.Users(), domain.SystemClock{}, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.ProjectHandler, error) {
		svc := do.MustInvoke[ports.ProjectService](i)
		return handlers.NewProjectHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.TodoHandler, error) {
		svc := do.MustInvoke[ports.TodoService](i)
		return handlers.NewTodoHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.UserHandler, error) {
		svc := do.MustInvoke[ports.UserService](i)
		return handlers.NewUserHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		projH := do.MustInvoke[*handlers.ProjectHandler](i)
		todoH := do.MustInvoke[*handlers.TodoHandler](i)
		userH := do.MustInvoke[*handlers.UserHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		provider := do.MustInvoke[ports.IdentityProvider](i)
		users := do.MustInvoke[ports.UserService](i)

		return adapthttp.NewRouter(projH, todoH, userH, healthH,
			middleware.Auth(provider, users),
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.WriteTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
