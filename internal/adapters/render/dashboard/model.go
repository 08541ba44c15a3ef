// Package dashboard renders dashboard state for the terminal.
package dashboard

import (
	"errors"
	"io"

	"github.com/bnema/exchange-dash/internal/application"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

// snapshotModel renders one State and quits.
type snapshotModel struct {
	state  application.State
	opts   RenderOptions
	styles styles
	output string
}

func (m snapshotModel) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m snapshotModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(renderReadyMsg); ok {
		m.output = renderView(m.state, m.opts, m.styles)
		return m, tea.Quit
	}
	return m, nil
}

func (m snapshotModel) View() string {
	return m.output
}

func Render(state application.State, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		snapshotModel{state: state, opts: opts, styles: newStyles()},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	final, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := final.(snapshotModel)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}
	return rendered.View(), nil
}
