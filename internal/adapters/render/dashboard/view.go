package dashboard

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/bnema/exchange-dash/internal/application"
	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const defaultMaxItems = 5

type RenderOptions struct {
	Now time.Time
	// StaleAfter is the cache TTL; the resolved-at stamp fades as a
	// snapshot approaches it.
	StaleAfter time.Duration
	MaxItems   int
}

func (o RenderOptions) maxItems() int {
	if o.MaxItems <= 0 {
		return defaultMaxItems
	}
	return o.MaxItems
}

func renderView(state application.State, opts RenderOptions, s styles) string {
	lines := []string{s.title.Render("Exchange Dashboard")}
	lines = append(lines, statusLines(state, opts, s)...)

	if !state.HasData() {
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	snapshot := state.Snapshot
	lines = append(lines,
		s.section.Render("Exchanges"),
		exchangeLine(snapshot.Stats.Exchanges, s),
		s.section.Render("Tasks"),
	)
	lines = append(lines, taskLines(snapshot.Stats.Tasks, s)...)

	if extra := optionalLines(snapshot.Stats, opts, s); len(extra) > 0 {
		lines = append(lines, s.section.Render("Activity"))
		lines = append(lines, extra...)
	}
	if len(snapshot.Exchanges) > 0 {
		lines = append(lines, s.section.Render("Recent exchanges"))
		lines = append(lines, recentExchangeLines(snapshot.Exchanges, opts, s)...)
	}
	if open := openTasks(snapshot.Tasks); len(open) > 0 {
		lines = append(lines, s.section.Render("Open tasks"))
		lines = append(lines, openTaskLines(open, opts, s)...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func statusLines(state application.State, opts RenderOptions, s styles) []string {
	lines := make([]string, 0, 3)

	header := fmt.Sprintf("scope: %s", scopeLabel(state.Scope))
	if state.HasData() {
		header += fmt.Sprintf("  source: %s", state.Snapshot.Tier)
	}
	lines = append(lines, s.header.Render(header))

	if state.HasData() {
		age := lipgloss.NewStyle().Foreground(freshnessColor(state.Snapshot.ResolvedAt, opts.Now, opts.StaleAfter))
		lines = append(lines, age.Render(fmt.Sprintf("resolved %s", formatAge(state.Snapshot.ResolvedAt, opts.Now))))
	}

	switch {
	case state.Loading:
		lines = append(lines, s.notice.Render("refreshing..."))
	case state.Err != nil && state.HasData():
		lines = append(lines, s.warning.Render("[stale] last refresh failed: "+state.Err.Error()))
	case state.Err != nil:
		lines = append(lines, s.warning.Render("dashboard data unavailable: "+state.Err.Error()))
	case !state.HasData():
		lines = append(lines, s.empty.Render("No dashboard data loaded yet."))
	}

	return lines
}

// scopeLabel turns "client|client-1|false|0s" into "client (client-1)".
func scopeLabel(key domain.ScopeKey) string {
	parts := strings.Split(string(key), "|")
	if len(parts) < 2 || parts[0] == "" {
		return "unknown"
	}
	if parts[1] == "" {
		return parts[0]
	}
	return fmt.Sprintf("%s (%s)", parts[0], parts[1])
}

func exchangeLine(stats domain.ExchangeStats, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		counter("total", stats.Total, s),
		"  ",
		counter("pending", stats.Pending, s),
		"  ",
		counter("active", stats.Active, s),
		"  ",
		counter("completed", stats.Completed, s),
		"  ",
		renderProgressBar(ratio(stats.Completed, stats.Total), 20, s),
	)
}

func taskLines(stats domain.TaskStats, s styles) []string {
	progress := lipgloss.JoinHorizontal(
		lipgloss.Top,
		counter("total", stats.Total, s),
		"  ",
		counter("pending", stats.Pending, s),
		"  ",
		counter("in progress", stats.InProgress, s),
		"  ",
		counter("completed", stats.Completed, s),
	)

	overdue := counter("overdue", stats.Overdue, s)
	if stats.Overdue > 0 {
		overdue = s.label.Render("overdue:") + " " + s.warning.Render(fmt.Sprintf("%d", stats.Overdue))
	}
	attention := lipgloss.JoinHorizontal(
		lipgloss.Top,
		overdue,
		"  ",
		counter("urgent", stats.Urgent, s),
		"  ",
		counter("due this week", stats.DueThisWeek, s),
	)

	return []string{progress, attention}
}

func optionalLines(stats domain.Stats, opts RenderOptions, s styles) []string {
	lines := make([]string, 0, 4)
	if stats.Documents != nil {
		lines = append(lines, counter("documents", stats.Documents.Total, s)+"  "+counter("awaiting signature", stats.Documents.PendingSignatures, s))
	}
	if stats.Messages != nil {
		lines = append(lines, counter("messages", stats.Messages.Total, s)+"  "+counter("unread", stats.Messages.Unread, s))
	}
	if stats.Users != nil {
		lines = append(lines, counter("users", stats.Users.Total, s)+"  "+counter("active", stats.Users.Active, s))
	}
	if stats.System != nil {
		line := s.label.Render("system:") + " " + s.value.Render(cmp.Or(stats.System.Status, "unknown"))
		if !stats.System.LastSync.IsZero() {
			line += "  " + s.meta.Render("last sync "+formatAge(stats.System.LastSync, opts.Now))
		}
		lines = append(lines, line)
	}
	return lines
}

func recentExchangeLines(exchanges []domain.Exchange, opts RenderOptions, s styles) []string {
	limit := min(len(exchanges), opts.maxItems())
	lines := make([]string, 0, limit+1)
	for _, exchange := range exchanges[:limit] {
		name := cmp.Or(strings.TrimSpace(exchange.Name), exchange.ID)
		lines = append(lines, fmt.Sprintf("%s %s",
			s.value.Render(name),
			s.meta.Render(fmt.Sprintf("[%s, %s]", exchange.Status, exchange.Status.Category())),
		))
	}
	if more := len(exchanges) - limit; more > 0 {
		lines = append(lines, s.empty.Render(fmt.Sprintf("... and %d more", more)))
	}
	return lines
}

// openTasks returns non-terminal tasks, earliest due first, undated last.
func openTasks(tasks []domain.Task) []domain.Task {
	open := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if !task.Status.Terminal() {
			open = append(open, task)
		}
	}

	slices.SortStableFunc(open, func(a, b domain.Task) int {
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		default:
			return a.DueDate.Compare(*b.DueDate)
		}
	})
	return open
}

func openTaskLines(tasks []domain.Task, opts RenderOptions, s styles) []string {
	limit := min(len(tasks), opts.maxItems())
	lines := make([]string, 0, limit+1)
	for _, task := range tasks[:limit] {
		title := cmp.Or(strings.TrimSpace(task.Title), task.ID)
		due := s.meta.Render(formatDue(task.DueDate, opts.Now))
		if task.DueDate != nil && !opts.Now.IsZero() && task.DueDate.Before(opts.Now) {
			due = s.warning.Render(formatDue(task.DueDate, opts.Now))
		}

		line := s.value.Render(title) + " " + due
		if task.Priority.Highest() {
			line += " " + s.warning.Render("[urgent]")
		}
		lines = append(lines, line)
	}
	if more := len(tasks) - limit; more > 0 {
		lines = append(lines, s.empty.Render(fmt.Sprintf("... and %d more", more)))
	}
	return lines
}

func counter(label string, value int, s styles) string {
	return s.label.Render(label+":") + " " + s.value.Render(fmt.Sprintf("%d", value))
}

func ratio(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func renderProgressBar(fraction float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * math.Max(0, math.Min(1, fraction))))
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func formatAge(at, now time.Time) string {
	if at.IsZero() {
		return "never"
	}
	if now.IsZero() {
		return "at " + at.Format(time.RFC3339)
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed/time.Minute), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return plural(int(elapsed/time.Hour), "hour") + " ago"
	default:
		return "on " + at.Format("02 Jan 15:04")
	}
}

func formatDue(due *time.Time, now time.Time) string {
	if due == nil {
		return "(no due date)"
	}
	if now.IsZero() {
		return "(due " + due.Format(time.DateOnly) + ")"
	}

	days := int(math.Ceil(due.Sub(now).Hours() / 24))
	switch {
	case due.Before(now):
		overdue := max(1, int(math.Ceil(now.Sub(*due).Hours()/24)))
		return fmt.Sprintf("(overdue %s)", plural(overdue, "day"))
	case days <= 1:
		return "(due within a day)"
	default:
		return fmt.Sprintf("(due in %s)", plural(days, "day"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// freshnessColor fades from bright white for a new snapshot to grey as it
// approaches staleAfter.
func freshnessColor(resolvedAt, now time.Time, staleAfter time.Duration) lipgloss.Color {
	if now.IsZero() || staleAfter <= 0 || resolvedAt.IsZero() {
		return lipgloss.Color("255")
	}

	remaining := staleAfter - now.Sub(resolvedAt)
	normalized := math.Max(0, math.Min(1, remaining.Seconds()/staleAfter.Seconds()))

	// ANSI 256 greyscale ramp, 240 (faded) to 255 (bright).
	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
