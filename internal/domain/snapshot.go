package domain

import (
	"slices"
	"time"
)

// Tier names the data source that produced a snapshot.
type Tier string

const (
	TierEnhanced Tier = "enhanced"
	TierOverview Tier = "overview"
	TierRaw      Tier = "raw"
)

type ExchangeStats struct {
	Total     int `json:"total" yaml:"total"`
	Pending   int `json:"pending" yaml:"pending"`
	Active    int `json:"active" yaml:"active"`
	Completed int `json:"completed" yaml:"completed"`
}

type TaskStats struct {
	Total       int `json:"total" yaml:"total"`
	Pending     int `json:"pending" yaml:"pending"`
	InProgress  int `json:"inProgress" yaml:"in_progress"`
	Completed   int `json:"completed" yaml:"completed"`
	Overdue     int `json:"overdue" yaml:"overdue"`
	Urgent      int `json:"urgent" yaml:"urgent"`
	DueThisWeek int `json:"dueThisWeek" yaml:"due_this_week"`
}

type DocumentStats struct {
	Total             int `json:"total" yaml:"total"`
	PendingSignatures int `json:"pendingSignatures" yaml:"pending_signatures"`
}

type MessageStats struct {
	Total  int `json:"total" yaml:"total"`
	Unread int `json:"unread" yaml:"unread"`
}

type UserStats struct {
	Total  int `json:"total" yaml:"total"`
	Active int `json:"active" yaml:"active"`
}

type SystemHealth struct {
	Status   string    `json:"status" yaml:"status"`
	LastSync time.Time `json:"lastSync,omitzero" yaml:"last_sync,omitempty"`
}

type Stats struct {
	Exchanges ExchangeStats  `json:"exchanges" yaml:"exchanges"`
	Tasks     TaskStats      `json:"tasks" yaml:"tasks"`
	Documents *DocumentStats `json:"documents,omitempty" yaml:"documents,omitempty"`
	Messages  *MessageStats  `json:"messages,omitempty" yaml:"messages,omitempty"`
	Users     *UserStats     `json:"users,omitempty" yaml:"users,omitempty"`
	System    *SystemHealth  `json:"system,omitempty" yaml:"system,omitempty"`
}

// Snapshot is the unit of resolved dashboard data. Values handed out by the
// cache are private copies.
type Snapshot struct {
	ID         string     `json:"id" yaml:"id"`
	Tier       Tier       `json:"tier" yaml:"tier"`
	ResolvedAt time.Time  `json:"resolvedAt" yaml:"resolved_at"`
	Stats      Stats      `json:"stats" yaml:"stats"`
	Exchanges  []Exchange `json:"exchanges,omitempty" yaml:"exchanges,omitempty"`
	Tasks      []Task     `json:"tasks,omitempty" yaml:"tasks,omitempty"`
	Documents  []Document `json:"documents,omitempty" yaml:"documents,omitempty"`
	Messages   []Message  `json:"messages,omitempty" yaml:"messages,omitempty"`
	Users      []User     `json:"users,omitempty" yaml:"users,omitempty"`
}

func (s Snapshot) Clone() Snapshot {
	out := s
	out.Stats = s.Stats.clone()

	if s.Exchanges != nil {
		out.Exchanges = make([]Exchange, len(s.Exchanges))
		for i, exchange := range s.Exchanges {
			out.Exchanges[i] = exchange.clone()
		}
	}
	if s.Tasks != nil {
		out.Tasks = make([]Task, len(s.Tasks))
		for i, task := range s.Tasks {
			out.Tasks[i] = task.clone()
		}
	}
	out.Documents = slices.Clone(s.Documents)
	out.Messages = slices.Clone(s.Messages)
	out.Users = slices.Clone(s.Users)

	return out
}

func (s Stats) clone() Stats {
	out := s
	if s.Documents != nil {
		documents := *s.Documents
		out.Documents = &documents
	}
	if s.Messages != nil {
		messages := *s.Messages
		out.Messages = &messages
	}
	if s.Users != nil {
		users := *s.Users
		out.Users = &users
	}
	if s.System != nil {
		system := *s.System
		out.System = &system
	}
	return out
}
