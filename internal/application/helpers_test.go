package application

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/bnema/exchange-dash/internal/ports"
	"github.com/stretchr/testify/mock"
)

type ownerVisibility struct{}

func (ownerVisibility) Elevated(role domain.Role) bool {
	return role == domain.RoleAdmin
}

func (ownerVisibility) ExchangeVisible(viewer domain.Viewer, exchange domain.Exchange) (bool, error) {
	return exchange.ClientID == viewer.UserID || slices.Contains(exchange.ParticipantIDs, viewer.UserID), nil
}

func (ownerVisibility) TaskVisible(viewer domain.Viewer, task domain.Task) (bool, error) {
	return task.AssignedTo == viewer.UserID || task.CreatedBy == viewer.UserID, nil
}

type countingRecorder struct {
	attempts    atomic.Int64
	hits        atomic.Int64
	misses      atomic.Int64
	resolutions atomic.Int64
	skipped     atomic.Int64
}

var _ ports.Recorder = (*countingRecorder)(nil)

func (r *countingRecorder) TierAttempt(domain.Tier, ports.TierOutcome) {
	r.attempts.Add(1)
}

func (r *countingRecorder) CacheLookup(hit bool) {
	if hit {
		r.hits.Add(1)
		return
	}
	r.misses.Add(1)
}

func (r *countingRecorder) Resolution(time.Duration, error) {
	r.resolutions.Add(1)
}

func (r *countingRecorder) TickSkipped() {
	r.skipped.Add(1)
}

var (
	adminScope  = domain.Scope{Viewer: domain.Viewer{Role: domain.RoleAdmin, UserID: "admin-1"}}
	clientScope = domain.Scope{Viewer: domain.Viewer{Role: domain.RoleClient, UserID: "client-1"}}
)

func enhancedFragment(total int) domain.EnhancedFragment {
	return domain.EnhancedFragment{
		Stats: domain.Stats{
			Exchanges: domain.ExchangeStats{Total: total, Active: total},
			Tasks:     domain.TaskStats{Total: total * 2},
		},
		RecentExchanges: []domain.Exchange{{ID: "ex-1", Status: domain.ExchangeStatusActive}},
	}
}

func mockAnyContext() interface{} {
	return mock.Anything
}
