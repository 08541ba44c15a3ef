package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return execute(newRootCmd())
}

// execute runs root and disposes app afterwards, whether the command
// succeeded or not.
func execute(root *cobra.Command, app *app) error {
	defer app.close()
	return root.Execute()
}

func newRootCmd() (*cobra.Command, *app) {
	rootCmd := &cobra.Command{
		Use:           "xd",
		Short:         "Exchange dashboard CLI (xd): cached, self-refreshing dashboard snapshots",
		Long:          "xd resolves the exchange dashboard from the backend's enhanced analytics, standard overview or raw exchange and task lists, caches the result per viewer and keeps it fresh while you watch.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd, nil
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSnapshotCmd(app),
		newRefreshCmd(app),
		newWatchCmd(app),
		newSyncCmd(app),
		newTokenCmd(app),
		newFixtureCmd(app),
	)

	return rootCmd, app
}
