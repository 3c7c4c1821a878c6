package app

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
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"mriopack/internal/config"
	apierrors "mriopack/internal/errors"
	"mriopack/internal/infrastructure"
	customMiddleware "mriopack/internal/middleware"
	"mriopack/internal/services"
	handlers "mriopack/internal/transport/http"
)

// systemMetricsInterval is the sampling period of the runtime gauges
const systemMetricsInterval = 15 * time.Second

// Application is the package server container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Collector     *infrastructure.SystemMetricsCollector
	Packages      *services.PackageService
	Health        *services.HealthService
}

// NewApplication wires the package server. providers may be nil, in which
// case the global (no-op until initialized) OpenTelemetry providers are used
// and /metrics is not served.
func NewApplication(cfg *config.Config, paths *config.Paths, providers *infrastructure.OTelProviders, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.setupRouter()
	app.createServer()
	return app, nil
}

// initializeServices creates the metrics and the services behind the handlers
func (a *Application) initializeServices() error {
	meter := otel.Meter(infrastructure.MeterName)
	if a.OTelProviders != nil && a.OTelProviders.Meter != nil {
		meter = a.OTelProviders.Meter
	}

	metrics, err := infrastructure.CreateBusinessMetrics(meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	collector, err := infrastructure.NewSystemMetricsCollector(meter, systemMetricsInterval)
	if err != nil {
		return err
	}
	a.Collector = collector

	a.Packages = services.NewPackageService(a.Paths.PackagesDir, metrics, a.Logger)
	a.Health = services.NewHealthService(config.AppVersion, a.Paths.PackagesDir, collector, a.Logger)
	return nil
}

// setupRouter configures the HTTP router. Order: RequestID, RealIP, OTel,
// error logging and recovery, security headers, rate limiting.
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")

	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)

	var tracer trace.Tracer
	if a.OTelProviders != nil {
		tracer = a.OTelProviders.Tracer
	}
	r.Use(customMiddleware.NewOTelMiddleware(tracer, a.Metrics, a.Logger).Handler)
	r.Use(apierrors.NewErrorMiddleware(errorHandler, a.Logger).Handler)
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// probes and scrapes are not rate limited
	healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
	r.Get("/healthz", healthHandler.HealthCheck)
	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		if rl := a.Config.Server.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}

		packageHandler := handlers.NewPackageHandler(a.Packages, a.Logger, errorHandler)
		r.Mount("/packages", packageHandler.Routes())
	})

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	s := a.Config.Server
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", s.Port),
		Handler:        a.Router,
		ReadTimeout:    s.ReadTimeout,
		WriteTimeout:   s.WriteTimeout,
		IdleTimeout:    s.IdleTimeout,
		MaxHeaderBytes: s.MaxHeaderBytes,
	}
}

// Start starts the collector and the server in the background. A listener
// failure cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting package server",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("addr", a.Server.Addr),
		slog.String("packages_dir", a.Paths.PackagesDir),
	)

	go a.Collector.Start(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()
	return nil
}

// Stop gracefully stops the server, the collector and the providers
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down package server")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	a.Collector.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down opentelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}

// Run serves until ctx is cancelled or the process is interrupted
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "received signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
	}

	// a fresh context so the shutdown is not cut short by the cancelled one
	return a.Stop(context.WithoutCancel(ctx))
}
