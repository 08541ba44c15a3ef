package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bnema/exchange-dash/internal/adapters/api/fixture"
	"github.com/bnema/exchange-dash/internal/adapters/api/httpapi"
	"github.com/bnema/exchange-dash/internal/adapters/credentials"
	chainstore "github.com/bnema/exchange-dash/internal/adapters/credentials/chain"
	"github.com/bnema/exchange-dash/internal/adapters/metrics"
	"github.com/bnema/exchange-dash/internal/adapters/render/dashboard"
	"github.com/bnema/exchange-dash/internal/adapters/visibility"
	"github.com/bnema/exchange-dash/internal/application"
	"github.com/bnema/exchange-dash/internal/config"
	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/bnema/exchange-dash/internal/ports"
	"github.com/bnema/exchange-dash/internal/version"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
)

type app struct {
	cfg          config.Config
	service      *application.Service
	tokens       *credentials.TokenSource
	registry     *prometheus.Registry
	logger       *slog.Logger
	clock        clockwork.Clock
	dashRenderer func(application.State, dashboard.RenderOptions) (string, error)
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New(), envOrDefault("XD_CONFIG", ""))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(os.Stderr, cfg.LogLevel)
	clock := clockwork.NewRealClock()

	store, err := chainstore.NewPassWithFileFallback(cfg.Credentials.PassPrefix, cfg.Credentials.Dir)
	if err != nil {
		return nil, fmt.Errorf("wire credential store chain: %w", err)
	}
	tokens := credentials.NewTokenSource(store, cfg.Credentials.Key, cfg.API.Token)

	policy, err := visibility.New(visibility.Config{
		ElevatedRoles: cfg.Visibility.ElevatedRoles,
		ExchangeRule:  cfg.Visibility.ExchangeRule,
		TaskRule:      cfg.Visibility.TaskRule,
	})
	if err != nil {
		return nil, fmt.Errorf("wire visibility policy: %w", err)
	}

	api, err := newDashboardAPI(cfg, tokens, policy, clock)
	if err != nil {
		return nil, fmt.Errorf("wire dashboard api: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	service := application.NewService(api, policy,
		application.WithClock(clock),
		application.WithLogger(logger),
		application.WithRecorder(metrics.NewRecorder(registry)),
		application.WithCacheTTL(cfg.CacheTTL),
	)

	return &app{
		cfg:          cfg,
		service:      service,
		tokens:       tokens,
		registry:     registry,
		logger:       logger,
		clock:        clock,
		dashRenderer: dashboard.Render,
	}, nil
}

func newDashboardAPI(cfg config.Config, tokens ports.TokenSource, policy domain.Visibility, clock clockwork.Clock) (ports.DashboardAPI, error) {
	if cfg.Fixture != "" {
		backend, err := fixture.NewBackend(cfg.Fixture, clock, fixture.WithVisibility(policy))
		if err != nil {
			return nil, err
		}
		return backend, nil
	}

	client, err := httpapi.NewClient(cfg.API.BaseURL, tokens,
		httpapi.WithTimeout(cfg.API.Timeout),
		httpapi.WithUserAgent("xd/"+version.Version),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (a *app) now() time.Time {
	return a.clock.Now()
}

// close disposes the service. It is a no-op on an app that failed to wire.
func (a *app) close() {
	if a == nil || a.service == nil {
		return
	}
	a.service.Close()
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
