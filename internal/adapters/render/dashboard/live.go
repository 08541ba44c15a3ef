package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/exchange-dash/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Source is a mounted dashboard view. *application.Subscription satisfies
// it.
type Source interface {
	Updates() <-chan application.State
	State() application.State
	Snapshot(ctx context.Context) (application.State, error)
	Refresh(ctx context.Context) (application.State, error)
	TriggerExternalSync(ctx context.Context) (application.SyncResult, error)
}

type stateMsg struct {
	state application.State
	open  bool
}

type actionDoneMsg struct {
	notice string
	err    error
}

type tickMsg time.Time

// LiveModel is the interactive watch view. It redraws on every state the
// source publishes and lets the user refresh or sync by hand.
type LiveModel struct {
	ctx     context.Context
	source  Source
	opts    RenderOptions
	now     func() time.Time
	styles  styles
	spinner spinner.Model

	state  application.State
	busy   bool
	notice string
	failed error
}

func NewLiveModel(ctx context.Context, source Source, opts RenderOptions, now func() time.Time) LiveModel {
	if now == nil {
		now = time.Now
	}

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	return LiveModel{
		ctx:     ctx,
		source:  source,
		opts:    opts,
		now:     now,
		styles:  newStyles(),
		spinner: spin,
		state:   source.State(),
	}
}

func (m LiveModel) Init() tea.Cmd {
	return tea.Batch(m.waitForState(), m.load(), m.spinner.Tick, tickEvery())
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.notice = ""
			return m, m.refresh()
		case "s":
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.notice = "external sync requested"
			return m, m.sync()
		}
	case stateMsg:
		if !msg.open {
			return m, tea.Quit
		}
		m.state = msg.state
		return m, m.waitForState()
	case actionDoneMsg:
		m.busy = false
		m.notice = msg.notice
		m.failed = msg.err
		m.state = m.source.State()
		return m, nil
	case tickMsg:
		return m, tickEvery()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m LiveModel) View() string {
	opts := m.opts
	opts.Now = m.now()

	body := renderView(m.state, opts, m.styles)
	footer := make([]string, 0, 3)
	if m.busy || m.state.Loading {
		footer = append(footer, m.spinner.View()+" working")
	}
	if m.failed != nil {
		footer = append(footer, m.styles.warning.Render(m.failed.Error()))
	} else if m.notice != "" {
		footer = append(footer, m.styles.notice.Render(m.notice))
	}
	footer = append(footer, m.styles.help.Render("r refresh  s sync  q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, append([]string{body}, footer...)...) + "\n"
}

func (m LiveModel) waitForState() tea.Cmd {
	updates := m.source.Updates()
	return func() tea.Msg {
		state, open := <-updates
		return stateMsg{state: state, open: open}
	}
}

// load serves the mounted view from the cache when it is still fresh.
func (m LiveModel) load() tea.Cmd {
	return func() tea.Msg {
		_, err := m.source.Snapshot(m.ctx)
		return actionDoneMsg{err: err}
	}
}

func (m LiveModel) refresh() tea.Cmd {
	return func() tea.Msg {
		_, err := m.source.Refresh(m.ctx)
		return actionDoneMsg{err: err}
	}
}

func (m LiveModel) sync() tea.Cmd {
	return func() tea.Msg {
		result, err := m.source.TriggerExternalSync(m.ctx)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{notice: fmt.Sprintf("sync %s: %d exchanges, %d tasks", result.Receipt.Status, result.Receipt.ExchangesSynced, result.Receipt.TasksSynced)}
	}
}

// tickEvery keeps relative timestamps current between updates.
func tickEvery() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}
