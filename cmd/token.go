package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var errEmptyToken = errors.New("token is empty")

func newTokenCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the API bearer token",
	}

	cmd.AddCommand(newTokenSetCmd(app), newTokenClearCmd(app))

	return cmd
}

func newTokenSetCmd(app *app) *cobra.Command {
	var value string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API token in pass, falling back to the credentials directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token := value
			if fromStdin {
				read, err := readToken(cmd.InOrStdin())
				if err != nil {
					return err
				}
				token = read
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return errEmptyToken
			}

			if err := app.tokens.Save(cmd.Context(), token); err != nil {
				return fmt.Errorf("store token: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "token stored")
			return err
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "Token value")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the token from stdin")
	cmd.MarkFlagsOneRequired("value", "stdin")
	cmd.MarkFlagsMutuallyExclusive("value", "stdin")

	return cmd
}

func newTokenClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.tokens.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear token: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "token cleared")
			return err
		},
	}
}

func readToken(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read token from stdin: %w", err)
	}
	return line, nil
}
