package cmd

import (
	"fmt"

	"github.com/bnema/exchange-dash/internal/adapters/api/fixture"
	"github.com/spf13/cobra"
)

func newFixtureCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Work with offline fixture backends",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init <path>",
		Short: "Write a sample fixture backend file (use it with backend.fixture or XD_BACKEND_FIXTURE)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fixture.WriteSample(args[0], app.now()); err != nil {
				return fmt.Errorf("write sample fixture: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "fixture written to %s\n", args[0])
			return err
		},
	})

	return cmd
}
