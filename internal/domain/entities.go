package domain

import (
	"slices"
	"strings"
	"time"
)

type ExchangeStatus string

const (
	ExchangeStatusPending    ExchangeStatus = "PENDING"
	ExchangeStatusDraft      ExchangeStatus = "DRAFT"
	ExchangeStatusNew        ExchangeStatus = "NEW"
	ExchangeStatusActive     ExchangeStatus = "ACTIVE"
	ExchangeStatusInProgress ExchangeStatus = "IN_PROGRESS"
	ExchangeStatus45Day      ExchangeStatus = "45D"
	ExchangeStatus180Day     ExchangeStatus = "180D"
	ExchangeStatusCompleted  ExchangeStatus = "COMPLETED"
	ExchangeStatusClosed     ExchangeStatus = "CLOSED"
	ExchangeStatusCancelled  ExchangeStatus = "CANCELLED"
)

type ExchangeCategory string

const (
	ExchangeCategoryPending   ExchangeCategory = "pending"
	ExchangeCategoryActive    ExchangeCategory = "active"
	ExchangeCategoryCompleted ExchangeCategory = "completed"
	ExchangeCategoryOther     ExchangeCategory = "other"
)

func (s ExchangeStatus) Category() ExchangeCategory {
	switch ExchangeStatus(strings.ToUpper(strings.TrimSpace(string(s)))) {
	case ExchangeStatusPending, ExchangeStatusDraft, ExchangeStatusNew:
		return ExchangeCategoryPending
	case ExchangeStatusActive, ExchangeStatusInProgress, ExchangeStatus45Day, ExchangeStatus180Day:
		return ExchangeCategoryActive
	case ExchangeStatusCompleted, ExchangeStatusClosed:
		return ExchangeCategoryCompleted
	default:
		return ExchangeCategoryOther
	}
}

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

func (s TaskStatus) normalized() TaskStatus {
	return TaskStatus(strings.ToUpper(strings.TrimSpace(string(s))))
}

// Terminal reports whether no further work is expected on the task.
func (s TaskStatus) Terminal() bool {
	switch s.normalized() {
	case TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

func (p TaskPriority) Highest() bool {
	return TaskPriority(strings.ToUpper(strings.TrimSpace(string(p)))) == TaskPriorityUrgent
}

type Exchange struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Status         ExchangeStatus `json:"status" yaml:"status"`
	CoordinatorID  string         `json:"coordinatorId" yaml:"coordinator_id"`
	ClientID       string         `json:"clientId" yaml:"client_id"`
	ParticipantIDs []string       `json:"participantIds,omitempty" yaml:"participant_ids,omitempty"`
	// ExternalID is the identifier of the record in the external practice
	// management system that sync pulls from.
	ExternalID string    `json:"externalId,omitempty" yaml:"external_id,omitempty"`
	CreatedAt  time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt,omitzero" yaml:"updated_at,omitempty"`
}

type Task struct {
	ID         string       `json:"id" yaml:"id"`
	Title      string       `json:"title" yaml:"title"`
	Status     TaskStatus   `json:"status" yaml:"status"`
	Priority   TaskPriority `json:"priority" yaml:"priority"`
	DueDate    *time.Time   `json:"dueDate,omitempty" yaml:"due_date,omitempty"`
	AssignedTo string       `json:"assignedTo,omitempty" yaml:"assigned_to,omitempty"`
	CreatedBy  string       `json:"createdBy,omitempty" yaml:"created_by,omitempty"`
	ExchangeID string       `json:"exchangeId" yaml:"exchange_id"`
	ExternalID string       `json:"externalId,omitempty" yaml:"external_id,omitempty"`
}

type Document struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	ExchangeID string    `json:"exchangeId" yaml:"exchange_id"`
	UploadedBy string    `json:"uploadedBy" yaml:"uploaded_by"`
	CreatedAt  time.Time `json:"createdAt" yaml:"created_at"`
}

type Message struct {
	ID         string    `json:"id" yaml:"id"`
	ExchangeID string    `json:"exchangeId" yaml:"exchange_id"`
	SenderID   string    `json:"senderId" yaml:"sender_id"`
	Content    string    `json:"content" yaml:"content"`
	Read       bool      `json:"read" yaml:"read"`
	CreatedAt  time.Time `json:"createdAt" yaml:"created_at"`
}

type User struct {
	ID       string `json:"id" yaml:"id"`
	Email    string `json:"email" yaml:"email"`
	Role     Role   `json:"role" yaml:"role"`
	IsActive bool   `json:"isActive" yaml:"is_active"`
}

func (e Exchange) clone() Exchange {
	e.ParticipantIDs = slices.Clone(e.ParticipantIDs)
	return e
}

func (t Task) clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}
