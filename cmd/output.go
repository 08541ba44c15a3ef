package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bnema/exchange-dash/internal/adapters/render/dashboard"
	"github.com/bnema/exchange-dash/internal/application"
	"github.com/bnema/exchange-dash/internal/config"
	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

var errUnknownOutputFormat = errors.New("unknown output format")

// viewerFlags overrides the configured viewer for one invocation.
type viewerFlags struct {
	role   string
	userID string
}

func (f *viewerFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.role, "role", "", "Viewer role (default: dashboard.role)")
	cmd.Flags().StringVar(&f.userID, "user", "", "Viewer user ID (default: dashboard.user_id)")
}

func (f viewerFlags) scope(cfg config.Config) (domain.Scope, error) {
	if f.role != "" {
		cfg.Dashboard.Role = domain.Role(f.role).Normalize()
	}
	if f.userID != "" {
		cfg.Dashboard.UserID = strings.TrimSpace(f.userID)
	}
	return cfg.Scope()
}

type outputFlags struct {
	format string
	asJSON bool
}

func (f *outputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "output", "o", string(outputTable), "Output format: table, json or yaml")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Render JSON output (same as --output json)")
}

func (f outputFlags) resolve() (outputFormat, error) {
	if f.asJSON {
		return outputJSON, nil
	}
	switch format := outputFormat(strings.ToLower(strings.TrimSpace(f.format))); format {
	case outputTable, outputJSON, outputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w %q", errUnknownOutputFormat, f.format)
	}
}

// stateOutput is the machine-readable form of a dashboard state.
type stateOutput struct {
	Scope    string           `json:"scope" yaml:"scope"`
	Phase    string           `json:"phase" yaml:"phase"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

type syncOutput struct {
	JobID           string      `json:"job_id" yaml:"job_id"`
	Status          string      `json:"status" yaml:"status"`
	ExchangesSynced int         `json:"exchanges_synced" yaml:"exchanges_synced"`
	TasksSynced     int         `json:"tasks_synced" yaml:"tasks_synced"`
	IdempotencyKey  string      `json:"idempotency_key" yaml:"idempotency_key"`
	Dashboard       stateOutput `json:"dashboard" yaml:"dashboard"`
}

func newStateOutput(state application.State) stateOutput {
	out := stateOutput{
		Scope:    string(state.Scope),
		Phase:    string(state.Phase),
		Snapshot: state.Snapshot,
	}
	if state.Err != nil {
		out.Error = state.Err.Error()
	}
	return out
}

func writeStructured(cmd *cobra.Command, format outputFormat, value any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case outputYAML:
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w %q", errUnknownOutputFormat, format)
	}
}

func writeStateOutput(cmd *cobra.Command, app *app, state application.State, format outputFormat) error {
	if format != outputTable {
		return writeStructured(cmd, format, newStateOutput(state))
	}

	rendered, err := app.dashRenderer(state, dashboard.RenderOptions{
		Now:        app.now(),
		StaleAfter: app.cfg.CacheTTL,
	})
	if err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// loadState runs load behind a spinner and reports a failure only when
// there is nothing to show. A failed refresh over a cached snapshot is
// rendered as stale data.
func loadState(cmd *cobra.Command, app *app, format outputFormat, label string, load func(context.Context) (application.State, error)) (application.State, error) {
	var state application.State
	fetch := func(ctx context.Context) error {
		var err error
		state, err = load(ctx)
		return err
	}

	var err error
	if format == outputTable {
		err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), label, fetch)
	} else {
		err = fetch(cmd.Context())
	}

	if err != nil && !state.HasData() {
		return application.State{}, err
	}
	if err != nil {
		app.logger.Warn("showing cached dashboard after failed refresh", slog.String("error", err.Error()))
	}
	return state, nil
}
