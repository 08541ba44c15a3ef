package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
)

// object is a decoded JSON object whose members are decoded lazily. Every
// payload must be an object; the backend may wrap it in {"data": {...}}.
type object map[string]json.RawMessage

func decodeObject(body []byte) (object, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: response body is not a JSON object", domain.ErrShape)
	}

	var obj object
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrShape, err)
	}

	return obj.unwrap(), nil
}

// unwrap returns the "data" member when it is an object, else obj itself.
func (obj object) unwrap() object {
	raw, ok := obj["data"]
	if !ok || !isObject(raw) {
		return obj
	}

	var inner object
	if err := json.Unmarshal(raw, &inner); err != nil {
		return obj
	}
	return inner
}

func (obj object) has(field string) bool {
	raw, ok := obj[field]
	return ok && !isNull(raw)
}

// requireObject decodes field into dst and fails with ErrShape unless the
// member is present and is an object.
func (obj object) requireObject(field string, dst any) error {
	raw, ok := obj[field]
	if !ok || !isObject(raw) {
		return fmt.Errorf("%w: field %q must be an object", domain.ErrShape, field)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: decode %q: %w", domain.ErrShape, field, err)
	}
	return nil
}

// optional decodes field into dst when present. A member of the wrong type
// is a shape error; a missing or null member leaves dst untouched.
func (obj object) optional(field string, dst any) error {
	if !obj.has(field) {
		return nil
	}
	if err := json.Unmarshal(obj[field], dst); err != nil {
		return fmt.Errorf("%w: decode %q: %w", domain.ErrShape, field, err)
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeList accepts a bare array, or an object carrying the array under
// field or "data".
func decodeList[T any](body []byte, field string) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: decode %s list: %w", domain.ErrShape, field, err)
		}
		return items, nil
	}

	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: %s response is neither an array nor an object", domain.ErrShape, field)
	}

	var obj object
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %w", domain.ErrShape, field, err)
	}
	for _, candidate := range []object{obj, obj.unwrap()} {
		if raw, ok := candidate[field]; ok {
			var items []T
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("%w: decode %q: %w", domain.ErrShape, field, err)
			}
			return items, nil
		}
	}
	if raw, ok := obj["data"]; ok && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: decode %s data: %w", domain.ErrShape, field, err)
		}
		return items, nil
	}

	return nil, fmt.Errorf("%w: %s response has no %q array", domain.ErrShape, field, field)
}

// wireTime accepts RFC 3339 timestamps, plain dates, empty strings and null.
type wireTime struct {
	time.Time
	set bool
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			t.set = true
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", raw)
}

func (t wireTime) ptr() *time.Time {
	if !t.set {
		return nil
	}
	value := t.Time
	return &value
}

type exchangeWire struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Status         string   `json:"status"`
	CoordinatorID  string   `json:"coordinatorId"`
	ClientID       string   `json:"clientId"`
	ParticipantIDs []string `json:"participantIds"`
	ExternalID     string   `json:"externalId"`
	CreatedAt      wireTime `json:"createdAt"`
	UpdatedAt      wireTime `json:"updatedAt"`
}

func (w exchangeWire) toDomain() domain.Exchange {
	return domain.Exchange{
		ID:             w.ID,
		Name:           w.Name,
		Status:         domain.ExchangeStatus(w.Status),
		CoordinatorID:  w.CoordinatorID,
		ClientID:       w.ClientID,
		ParticipantIDs: w.ParticipantIDs,
		ExternalID:     w.ExternalID,
		CreatedAt:      w.CreatedAt.Time,
		UpdatedAt:      w.UpdatedAt.Time,
	}
}

type taskWire struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Status     string   `json:"status"`
	Priority   string   `json:"priority"`
	DueDate    wireTime `json:"dueDate"`
	AssignedTo string   `json:"assignedTo"`
	CreatedBy  string   `json:"createdBy"`
	ExchangeID string   `json:"exchangeId"`
	ExternalID string   `json:"externalId"`
}

func (w taskWire) toDomain() domain.Task {
	return domain.Task{
		ID:         w.ID,
		Title:      w.Title,
		Status:     domain.TaskStatus(w.Status),
		Priority:   domain.TaskPriority(w.Priority),
		DueDate:    w.DueDate.ptr(),
		AssignedTo: w.AssignedTo,
		CreatedBy:  w.CreatedBy,
		ExchangeID: w.ExchangeID,
		ExternalID: w.ExternalID,
	}
}

type documentWire struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ExchangeID string   `json:"exchangeId"`
	UploadedBy string   `json:"uploadedBy"`
	CreatedAt  wireTime `json:"createdAt"`
}

type messageWire struct {
	ID         string   `json:"id"`
	ExchangeID string   `json:"exchangeId"`
	SenderID   string   `json:"senderId"`
	Content    string   `json:"content"`
	Read       bool     `json:"read"`
	CreatedAt  wireTime `json:"createdAt"`
}

type userWire struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

type syncWire struct {
	JobID           string `json:"jobId"`
	Status          string `json:"status"`
	ExchangesSynced int    `json:"exchangesSynced"`
	TasksSynced     int    `json:"tasksSynced"`
}

func mapSlice[W any, D any](items []W, convert func(W) D) []D {
	if items == nil {
		return nil
	}
	out := make([]D, len(items))
	for i, item := range items {
		out[i] = convert(item)
	}
	return out
}

func decodeEnhanced(body []byte) (domain.EnhancedFragment, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return domain.EnhancedFragment{}, err
	}

	var fragment domain.EnhancedFragment
	if err := obj.requireObject("stats", &fragment.Stats); err != nil {
		return domain.EnhancedFragment{}, err
	}

	var (
		exchanges []exchangeWire
		documents []documentWire
		messages  []messageWire
		users     []userWire
	)
	for field, dst := range map[string]any{
		"recentExchanges": &exchanges,
		"documents":       &documents,
		"messages":        &messages,
		"users":           &users,
	} {
		if err := obj.optional(field, dst); err != nil {
			return domain.EnhancedFragment{}, err
		}
	}

	fragment.RecentExchanges = mapSlice(exchanges, exchangeWire.toDomain)
	fragment.Documents = mapSlice(documents, func(w documentWire) domain.Document {
		return domain.Document{ID: w.ID, Name: w.Name, ExchangeID: w.ExchangeID, UploadedBy: w.UploadedBy, CreatedAt: w.CreatedAt.Time}
	})
	fragment.Messages = mapSlice(messages, func(w messageWire) domain.Message {
		return domain.Message{ID: w.ID, ExchangeID: w.ExchangeID, SenderID: w.SenderID, Content: w.Content, Read: w.Read, CreatedAt: w.CreatedAt.Time}
	})
	fragment.Users = mapSlice(users, func(w userWire) domain.User {
		return domain.User{ID: w.ID, Email: w.Email, Role: domain.Role(w.Role).Normalize(), IsActive: w.IsActive}
	})

	return fragment, nil
}

func decodeOverview(body []byte) (domain.OverviewFragment, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return domain.OverviewFragment{}, err
	}

	var stats domain.Stats
	if err := obj.requireObject("exchanges", &stats.Exchanges); err != nil {
		return domain.OverviewFragment{}, err
	}
	if err := obj.requireObject("tasks", &stats.Tasks); err != nil {
		return domain.OverviewFragment{}, err
	}
	for field, dst := range map[string]any{
		"documents": &stats.Documents,
		"messages":  &stats.Messages,
		"users":     &stats.Users,
		"system":    &stats.System,
	} {
		if err := obj.optional(field, dst); err != nil {
			return domain.OverviewFragment{}, err
		}
	}

	return domain.OverviewFragment{Stats: stats}, nil
}

func decodeSync(body []byte, idempotencyKey string) (domain.SyncReceipt, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return domain.SyncReceipt{}, err
	}

	var payload syncWire
	for field, dst := range map[string]any{
		"jobId":           &payload.JobID,
		"status":          &payload.Status,
		"exchangesSynced": &payload.ExchangesSynced,
		"tasksSynced":     &payload.TasksSynced,
	} {
		if err := obj.optional(field, dst); err != nil {
			return domain.SyncReceipt{}, err
		}
	}

	return domain.SyncReceipt{
		JobID:           payload.JobID,
		Status:          payload.Status,
		ExchangesSynced: payload.ExchangesSynced,
		TasksSynced:     payload.TasksSynced,
		IdempotencyKey:  idempotencyKey,
	}, nil
}
