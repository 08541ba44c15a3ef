package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bnema/exchange-dash/internal/adapters/render/dashboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const metricsShutdownTimeout = 5 * time.Second

func newWatchCmd(app *app) *cobra.Command {
	var viewer viewerFlags
	var interval time.Duration
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show a live dashboard that refreshes on an interval",
		Long:  "watch keeps the dashboard on screen and refreshes it every --interval. Press r to refresh, s to trigger an external sync and q to quit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scope, err := viewer.scope(app.cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("interval") {
				scope.RefreshInterval = interval
			}
			scope.AutoRefresh = true
			if err := scope.Validate(); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if metricsAddr != "" {
				stop, err := serveMetrics(ctx, app, metricsAddr)
				if err != nil {
					return err
				}
				defer stop()
			}

			sub, err := app.service.Subscribe(scope)
			if err != nil {
				return err
			}
			defer sub.Close()

			model := dashboard.NewLiveModel(ctx, sub, dashboard.RenderOptions{StaleAfter: app.cfg.CacheTTL}, app.now)
			p := tea.NewProgram(model,
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("run live dashboard: %w", err)
			}
			return nil
		},
	}

	viewer.bind(cmd)
	cmd.Flags().DurationVar(&interval, "interval", app.cfg.Dashboard.RefreshInterval, "Refresh interval")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while watching (e.g. 127.0.0.1:9464)")

	return cmd
}

// serveMetrics exposes the app registry on addr until the returned stop is
// called.
func serveMetrics(ctx context.Context, app *app, addr string) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for metrics on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("metrics server stopped", slog.String("addr", addr), slog.String("error", err.Error()))
		}
	}()
	app.logger.Info("serving metrics", slog.String("addr", listener.Addr().String()))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn("metrics server shutdown", slog.String("error", err.Error()))
		}
	}, nil
}
