package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScopeKeyIncludesRoleAndRefreshConfig(t *testing.T) {
	t.Parallel()

	base := Scope{Viewer: Viewer{Role: RoleClient, UserID: "u-1"}, AutoRefresh: true, RefreshInterval: 5 * time.Minute}

	assert.Equal(t, base.Key(), Scope{Viewer: Viewer{Role: " Client ", UserID: "u-1"}, AutoRefresh: true, RefreshInterval: 5 * time.Minute}.Key())

	variants := []Scope{
		{Viewer: Viewer{Role: RoleAdmin, UserID: "u-1"}, AutoRefresh: true, RefreshInterval: 5 * time.Minute},
		{Viewer: Viewer{Role: RoleClient, UserID: "u-2"}, AutoRefresh: true, RefreshInterval: 5 * time.Minute},
		{Viewer: Viewer{Role: RoleClient, UserID: "u-1"}, AutoRefresh: false, RefreshInterval: 5 * time.Minute},
		{Viewer: Viewer{Role: RoleClient, UserID: "u-1"}, AutoRefresh: true, RefreshInterval: time.Minute},
	}
	for _, variant := range variants {
		assert.NotEqual(t, base.Key(), variant.Key())
	}
}

func TestScopeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		scope   Scope
		wantErr string
	}{
		{name: "valid", scope: Scope{Viewer: Viewer{Role: RoleAdmin}}},
		{name: "missing role", scope: Scope{}, wantErr: "role is required"},
		{
			name:    "auto refresh without interval",
			scope:   Scope{Viewer: Viewer{Role: RoleAdmin}, AutoRefresh: true},
			wantErr: "refresh interval must be positive",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.scope.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidScope)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestExchangeStatusCategory(t *testing.T) {
	t.Parallel()

	tests := map[ExchangeStatus]ExchangeCategory{
		"PENDING":     ExchangeCategoryPending,
		"draft":       ExchangeCategoryPending,
		"ACTIVE":      ExchangeCategoryActive,
		"45D":         ExchangeCategoryActive,
		"180d":        ExchangeCategoryActive,
		"COMPLETED":   ExchangeCategoryCompleted,
		"CLOSED":      ExchangeCategoryCompleted,
		"CANCELLED":   ExchangeCategoryOther,
		"":            ExchangeCategoryOther,
		"IN_PROGRESS": ExchangeCategoryActive,
	}

	for status, want := range tests {
		assert.Equal(t, want, status.Category(), "status %q", status)
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	original := Snapshot{
		Stats:     Stats{Documents: &DocumentStats{Total: 2}},
		Exchanges: []Exchange{{ID: "ex-1", ParticipantIDs: []string{"a"}}},
		Tasks:     []Task{{ID: "t-1", DueDate: &due}},
	}

	clone := original.Clone()
	clone.Stats.Documents.Total = 9
	clone.Exchanges[0].ParticipantIDs[0] = "b"
	*clone.Tasks[0].DueDate = due.Add(time.Hour)

	assert.Equal(t, 2, original.Stats.Documents.Total)
	assert.Equal(t, "a", original.Exchanges[0].ParticipantIDs[0])
	assert.Equal(t, due, *original.Tasks[0].DueDate)
}
