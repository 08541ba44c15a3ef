package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bnema/exchange-dash/internal/application"
	"github.com/spf13/cobra"
)

func newSyncCmd(app *app) *cobra.Command {
	var viewer viewerFlags
	var output outputFlags

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Trigger an external sync and reload the dashboard (elevated roles only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.resolve()
			if err != nil {
				return err
			}
			scope, err := viewer.scope(app.cfg)
			if err != nil {
				return err
			}

			var result application.SyncResult
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Syncing with the external system...", func(ctx context.Context) error {
				var syncErr error
				result, syncErr = app.service.TriggerExternalSync(ctx, scope)
				return syncErr
			})
			if err != nil && !result.State.HasData() {
				return err
			}
			if err != nil {
				app.logger.Warn("sync completed but the dashboard could not be reloaded", slog.String("error", err.Error()))
			}

			if format != outputTable {
				return writeStructured(cmd, format, syncOutput{
					JobID:           result.Receipt.JobID,
					Status:          result.Receipt.Status,
					ExchangesSynced: result.Receipt.ExchangesSynced,
					TasksSynced:     result.Receipt.TasksSynced,
					IdempotencyKey:  result.Receipt.IdempotencyKey,
					Dashboard:       newStateOutput(result.State),
				})
			}

			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "sync %s (job %s): %d exchanges, %d tasks\n",
				result.Receipt.Status, result.Receipt.JobID, result.Receipt.ExchangesSynced, result.Receipt.TasksSynced); err != nil {
				return err
			}
			return writeStateOutput(cmd, app, result.State, format)
		},
	}

	viewer.bind(cmd)
	output.bind(cmd)

	return cmd
}
