package cmd

import (
	"context"

	"github.com/bnema/exchange-dash/internal/application"
	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/spf13/cobra"
)

func newSnapshotCmd(app *app) *cobra.Command {
	var viewer viewerFlags
	var output outputFlags

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Show the dashboard, served from cache while it is fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboardQuery(cmd, app, viewer, output, "Loading dashboard...", app.service.Snapshot)
		},
	}

	viewer.bind(cmd)
	output.bind(cmd)

	return cmd
}

func newRefreshCmd(app *app) *cobra.Command {
	var viewer viewerFlags
	var output outputFlags

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Resolve the dashboard again, bypassing the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboardQuery(cmd, app, viewer, output, "Refreshing dashboard...", app.service.Refresh)
		},
	}

	viewer.bind(cmd)
	output.bind(cmd)

	return cmd
}

type dashboardQuery func(ctx context.Context, scope domain.Scope) (application.State, error)

func runDashboardQuery(cmd *cobra.Command, app *app, viewer viewerFlags, output outputFlags, label string, query dashboardQuery) error {
	format, err := output.resolve()
	if err != nil {
		return err
	}
	scope, err := viewer.scope(app.cfg)
	if err != nil {
		return err
	}

	state, err := loadState(cmd, app, format, label, func(ctx context.Context) (application.State, error) {
		return query(ctx, scope)
	})
	if err != nil {
		return err
	}

	return writeStateOutput(cmd, app, state, format)
}
