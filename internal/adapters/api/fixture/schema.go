package fixture

import (
	"fmt"
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version   int              `toml:"version"`
	Latency   string           `toml:"latency,omitempty"`
	Failures  failureSchema    `toml:"failures"`
	Enhanced  *enhancedSchema  `toml:"enhanced,omitempty"`
	Overview  *statsSchema     `toml:"overview,omitempty"`
	Exchanges []exchangeSchema `toml:"exchanges"`
	Tasks     []taskSchema     `toml:"tasks"`
	Sync      syncSchema       `toml:"sync"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validate() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported fixture schema version %d (current %d)", s.Version, currentSchemaVersion)
	}
	for name, mode := range map[string]string{
		"enhanced":  s.Failures.Enhanced,
		"overview":  s.Failures.Overview,
		"exchanges": s.Failures.Exchanges,
		"tasks":     s.Failures.Tasks,
		"sync":      s.Failures.Sync,
	} {
		switch mode {
		case "", failTransport, failShape:
		default:
			return fmt.Errorf("failures.%s: unknown failure mode %q", name, mode)
		}
	}
	if s.Latency != "" {
		if _, err := time.ParseDuration(s.Latency); err != nil {
			return fmt.Errorf("latency: %w", err)
		}
	}
	return nil
}

func (s fileSchema) latency() time.Duration {
	d, _ := time.ParseDuration(s.Latency)
	return d
}

const (
	failTransport = "transport"
	failShape     = "shape"
)

// failureSchema forces an endpoint to fail with the named kind of error.
type failureSchema struct {
	Enhanced  string `toml:"enhanced,omitempty"`
	Overview  string `toml:"overview,omitempty"`
	Exchanges string `toml:"exchanges,omitempty"`
	Tasks     string `toml:"tasks,omitempty"`
	Sync      string `toml:"sync,omitempty"`
}

type enhancedSchema struct {
	Stats           statsSchema  `toml:"stats"`
	RecentExchanges []string     `toml:"recent_exchanges,omitempty"`
	Users           []userSchema `toml:"users,omitempty"`
}

type statsSchema struct {
	Exchanges exchangeStatsSchema `toml:"exchanges"`
	Tasks     taskStatsSchema     `toml:"tasks"`
	Documents *pairSchema         `toml:"documents,omitempty"`
	Messages  *pairSchema         `toml:"messages,omitempty"`
	Users     *pairSchema         `toml:"users,omitempty"`
}

type exchangeStatsSchema struct {
	Total     int `toml:"total"`
	Pending   int `toml:"pending"`
	Active    int `toml:"active"`
	Completed int `toml:"completed"`
}

type taskStatsSchema struct {
	Total       int `toml:"total"`
	Pending     int `toml:"pending"`
	InProgress  int `toml:"in_progress"`
	Completed   int `toml:"completed"`
	Overdue     int `toml:"overdue"`
	Urgent      int `toml:"urgent"`
	DueThisWeek int `toml:"due_this_week"`
}

// pairSchema holds the two counters of the optional stat blocks: total and
// the block specific one (pending signatures, unread, active).
type pairSchema struct {
	Total int `toml:"total"`
	Count int `toml:"count"`
}

type exchangeSchema struct {
	ID           string   `toml:"id"`
	Name         string   `toml:"name"`
	Status       string   `toml:"status"`
	Coordinator  string   `toml:"coordinator,omitempty"`
	Client       string   `toml:"client,omitempty"`
	Participants []string `toml:"participants,omitempty"`
	ExternalID   string   `toml:"external_id,omitempty"`
	CreatedAt    string   `toml:"created_at,omitempty"`
	UpdatedAt    string   `toml:"updated_at,omitempty"`
}

type taskSchema struct {
	ID         string `toml:"id"`
	Title      string `toml:"title"`
	Status     string `toml:"status"`
	Priority   string `toml:"priority,omitempty"`
	Due        string `toml:"due,omitempty"`
	AssignedTo string `toml:"assigned_to,omitempty"`
	CreatedBy  string `toml:"created_by,omitempty"`
	ExchangeID string `toml:"exchange_id,omitempty"`
}

type userSchema struct {
	ID     string `toml:"id"`
	Email  string `toml:"email,omitempty"`
	Role   string `toml:"role"`
	Active bool   `toml:"active"`
}

type syncSchema struct {
	Runs    int    `toml:"runs"`
	LastKey string `toml:"last_key,omitempty"`
	LastRun string `toml:"last_run,omitempty"`
}

func (s statsSchema) toDomain(lastSync time.Time) domain.Stats {
	stats := domain.Stats{
		Exchanges: domain.ExchangeStats(s.Exchanges),
		Tasks:     domain.TaskStats(s.Tasks),
	}
	if s.Documents != nil {
		stats.Documents = &domain.DocumentStats{Total: s.Documents.Total, PendingSignatures: s.Documents.Count}
	}
	if s.Messages != nil {
		stats.Messages = &domain.MessageStats{Total: s.Messages.Total, Unread: s.Messages.Count}
	}
	if s.Users != nil {
		stats.Users = &domain.UserStats{Total: s.Users.Total, Active: s.Users.Count}
	}
	if !lastSync.IsZero() {
		stats.System = &domain.SystemHealth{Status: "fixture", LastSync: lastSync}
	}
	return stats
}

func (e exchangeSchema) toDomain() domain.Exchange {
	return domain.Exchange{
		ID:             e.ID,
		Name:           e.Name,
		Status:         domain.ExchangeStatus(e.Status),
		CoordinatorID:  e.Coordinator,
		ClientID:       e.Client,
		ParticipantIDs: append([]string(nil), e.Participants...),
		ExternalID:     e.ExternalID,
		CreatedAt:      parseTime(e.CreatedAt),
		UpdatedAt:      parseTime(e.UpdatedAt),
	}
}

func (t taskSchema) toDomain() domain.Task {
	task := domain.Task{
		ID:         t.ID,
		Title:      t.Title,
		Status:     domain.TaskStatus(t.Status),
		Priority:   domain.TaskPriority(t.Priority),
		AssignedTo: t.AssignedTo,
		CreatedBy:  t.CreatedBy,
		ExchangeID: t.ExchangeID,
	}
	if due := parseTime(t.Due); !due.IsZero() {
		task.DueDate = &due
	}
	return task
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
