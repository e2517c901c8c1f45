package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/httpwrap/component"
	"github.com/kbukum/httpwrap/httpclient"
	"github.com/kbukum/httpwrap/httpwrap"
	"github.com/kbukum/httpwrap/logger"
	"github.com/kbukum/httpwrap/observability"
)

// App owns the HTTP client component and the telemetry providers of a
// service.
type App struct {
	Cfg        *Config
	Logger     *logger.Logger
	Components *component.Registry
	HTTP       *httpclient.Component

	gracefulTimeout time.Duration
	shutdown        []func(context.Context) error
}

// NewApp applies defaults, validates cfg and registers the HTTP client
// component. Nothing is started until Start or RunTask.
func NewApp(cfg *Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	log := o.logger
	if log == nil {
		logger.Init(cfg.Logging)
		log = logger.GetGlobalLogger()
	}

	a := &App{
		Cfg:             cfg,
		Logger:          log,
		Components:      component.NewRegistry(),
		HTTP:            httpclient.NewComponent(cfg.HTTPClient, o.clientOpts...),
		gracefulTimeout: o.gracefulTimeout,
	}
	if err := a.Components.Register(a.HTTP); err != nil {
		return nil, err
	}
	return a, nil
}

// Start installs telemetry providers and starts all components.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Cfg.Name,
		"version", a.Cfg.Version,
	))

	if err := a.initObservability(ctx); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			a.Logger.Warn("component unhealthy", logger.Fields(logger.FieldComponent, h.Name, "message", h.Message))
		}
	}
	desc := a.HTTP.Describe()
	a.Logger.Info("Application ready", logger.Fields(logger.FieldComponent, desc.Name, "base_url", desc.Details))
	return nil
}

func (a *App) initObservability(ctx context.Context) error {
	obs := a.Cfg.Observability

	if obs.Tracing {
		tc := observability.DefaultTracerConfig(a.Cfg.Name)
		if a.Cfg.Version != "" {
			tc.ServiceVersion = a.Cfg.Version
		}
		tc.Environment = a.Cfg.Environment
		tc.Endpoint = obs.Endpoint
		tc.Insecure = obs.Insecure
		tc.SampleRate = obs.SampleRate

		tp, err := observability.InitTracer(ctx, tc)
		if err != nil {
			return err
		}
		a.shutdown = append(a.shutdown, tp.Shutdown)
	}

	if obs.Metrics {
		mc := observability.DefaultMeterConfig(a.Cfg.Name)
		if a.Cfg.Version != "" {
			mc.ServiceVersion = a.Cfg.Version
		}
		mc.Environment = a.Cfg.Environment
		mc.Endpoint = obs.Endpoint
		mc.Insecure = obs.Insecure
		mc.Interval = obs.Interval

		mp, err := observability.InitMeter(ctx, mc)
		if err != nil {
			return err
		}
		a.shutdown = append(a.shutdown, mp.Shutdown)
	}
	return nil
}

// Client returns the started HTTP client behind the httpwrap.Client
// interface. It fails before Start.
func (a *App) Client() (httpwrap.Client, error) {
	return httpwrap.New(a.HTTP.Client())
}

// RunTask starts the application, runs task with the HTTP client and shuts
// down when the task returns. SIGINT and SIGTERM cancel the task context.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context, client httpwrap.Client) error) error {
	if err := a.Start(ctx); err != nil {
		_ = a.Stop()
		return err
	}

	client, err := a.Client()
	if err != nil {
		_ = a.Stop()
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx, client)

	if stopErr := a.Stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// Stop stops all components, then flushes and shuts down telemetry
// providers, within the graceful timeout.
func (a *App) Stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := a.Components.StopAll(ctx); err != nil {
		errs = append(errs, err)
	}
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.shutdown = nil

	if err := errors.Join(errs...); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	a.Logger.Info("Application shutdown complete")
	return nil
}
