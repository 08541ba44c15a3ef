package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/bnema/exchange-dash/internal/ports/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *mocks.MockDashboardAPI, *clockwork.FakeClock, *countingRecorder) {
	t.Helper()

	api := mocks.NewMockDashboardAPI(t)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	recorder := &countingRecorder{}
	svc := NewService(api, ownerVisibility{},
		WithClock(clock),
		WithRecorder(recorder),
		WithCacheTTL(5*time.Minute),
	)
	t.Cleanup(svc.Close)

	return svc, api, clock, recorder
}

func TestServiceSnapshotServesCacheWithinTTL(t *testing.T) {
	t.Parallel()

	svc, api, clock, recorder := newTestService(t)
	api.EXPECT().EnhancedStats(mockAnyContext(), adminScope.Viewer).Return(enhancedFragment(3), nil).Once()

	first, err := svc.Snapshot(context.Background(), adminScope)
	require.NoError(t, err)
	require.True(t, first.HasData())

	clock.Advance(4 * time.Minute)
	second, err := svc.Snapshot(context.Background(), adminScope)
	require.NoError(t, err)
	assert.Equal(t, first.Snapshot.ID, second.Snapshot.ID)
	assert.Equal(t, PhaseCached, second.Phase)
	assert.Equal(t, int64(1), recorder.hits.Load())
	assert.Equal(t, int64(1), recorder.misses.Load())
}

func TestServiceSnapshotResolvesAgainAfterExpiry(t *testing.T) {
	t.Parallel()

	svc, api, clock, _ := newTestService(t)
	api.EXPECT().EnhancedStats(mockAnyContext(), adminScope.Viewer).Return(enhancedFragment(3), nil).Once()
	api.EXPECT().EnhancedStats(mockAnyContext(), adminScope.Viewer).Return(enhancedFragment(8), nil).Once()

	_, err := svc.Snapshot(context.Background(), adminScope)
	require.NoError(t, err)

	clock.Advance(5*time.Minute + time.Millisecond)
	state, err := svc.Snapshot(context.Background(), adminScope)
	require.NoError(t, err)
	assert.Equal(t, 8, state.Snapshot.Stats.Exchanges.Total)
}

func TestServiceConcurrentSnapshotsShareOneResolution(t *testing.T) {
	t.Parallel()

	svc, api, _, recorder := newTestService(t)

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	var calls atomic.Int32
	api.EXPECT().EnhancedStats(mockAnyContext(), adminScope.Viewer).
		RunAndReturn(func(context.Context, domain.Viewer) (domain.EnhancedFragment, error) {
			calls.Add(1)
			entered <- struct{}{}
			<-release
			return enhancedFragment(5), nil
		}).Once()

	const callers = 8
	var wg sync.WaitGroup
	states := make([]State, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			states[i], errs[i] = svc.Snapshot(context.Background(), adminScope)
		}()
	}

	<-entered
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int64(1), recorder.resolutions.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, states[0].Snapshot.ID, states[i].Snapshot.ID)
	}
}

func TestServiceTerminalFailureLeavesCacheServable(t *testing.T) {
	t.Parallel()

	api := mocks.NewMockDashboardAPI(t)
	clock := clockwork.NewFakeClock()
	resolverVisibility := &switchableVisibility{}
	svc := NewService(api, resolverVisibility, WithClock(clock))
	t.Cleanup(svc.Close)

	api.EXPECT().EnhancedStats(mockAnyContext(), clientScope.Viewer).Return(enhancedFragment(2), nil).Once()
	api.EXPECT().EnhancedStats(mockAnyContext(), clientScope.Viewer).Return(domain.EnhancedFragment{}, domain.ErrShape).Once()
	api.EXPECT().Overview(mockAnyContext(), clientScope.Viewer).Return(domain.OverviewFragment{}, domain.ErrShape).Once()
	api.EXPECT().ListExchanges(mockAnyContext()).Return([]domain.Exchange{{ID: "ex-1"}}, nil).Once()
	api.EXPECT().ListTasks(mockAnyContext()).Return(nil, nil).Once()

	first, err := svc.Snapshot(context.Background(), clientScope)
	require.NoError(t, err)

	resolverVisibility.fail.Store(true)
	state, err := svc.Refresh(context.Background(), clientScope)
	require.ErrorIs(t, err, domain.ErrAllTiersFailed)
	require.True(t, state.HasData())
	assert.Equal(t, first.Snapshot.ID, state.Snapshot.ID)
	assert.ErrorIs(t, state.Err, domain.ErrAllTiersFailed)

	current := svc.State(clientScope)
	assert.Equal(t, PhaseFailed, current.Phase)
	assert.True(t, current.HasData())
	assert.ErrorIs(t, current.Err, domain.ErrAllTiersFailed)

	cached, err := svc.Snapshot(context.Background(), clientScope)
	require.NoError(t, err)
	assert.Equal(t, first.Snapshot.ID, cached.Snapshot.ID)
}

type switchableVisibility struct {
	ownerVisibility
	fail atomic.Bool
}

func (v *switchableVisibility) ExchangeVisible(viewer domain.Viewer, exchange domain.Exchange) (bool, error) {
	if v.fail.Load() {
		return false, errors.New("visibility unavailable")
	}
	return v.ownerVisibility.ExchangeVisible(viewer, exchange)
}

func TestServiceRejectsInvalidScope(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)

	_, err := svc.Snapshot(context.Background(), domain.Scope{})
	require.ErrorIs(t, err, domain.ErrInvalidScope)

	_, err = svc.Subscribe(domain.Scope{Viewer: domain.Viewer{Role: domain.RoleAdmin}, AutoRefresh: true})
	require.ErrorIs(t, err, domain.ErrInvalidScope)
}

func TestServiceTriggerExternalSyncRequiresElevatedRole(t *testing.T) {
	t.Parallel()

	svc, api, _, _ := newTestService(t)

	_, err := svc.TriggerExternalSync(context.Background(), clientScope)
	require.ErrorIs(t, err, domain.ErrForbidden)
	api.AssertNotCalled(t, "TriggerSync", mock.Anything, mock.Anything)
}

func TestServiceTriggerExternalSyncFailureKeepsCache(t *testing.T) {
	t.Parallel()

	svc, api, _, _ := newTestService(t)
	api.EXPECT().EnhancedStats(mockAnyContext(), adminScope.Viewer).Return(enhancedFragment(3), nil).Once()
	api.EXPECT().TriggerSync(mockAnyContext(), mock.AnythingOfType("string")).
		Return(domain.SyncReceipt{}, fmt.Errorf("trigger sync: %w", domain.ErrTransport)).Once()

	before, err := svc.Snapshot(context.Background(), adminScope)
	require.NoError(t, err)

	_, err = svc.TriggerExternalSync(context.Background(), adminScope)
	require.ErrorIs(t, err, domain.ErrSyncFailed)
	assert.ErrorIs(t, err, domain.ErrTransport)

	after, err := svc.Snapshot(context.Background(), adminScope)
	require.NoError(t, err)
	assert.Equal(t, before.Snapshot.ID, after.Snapshot.ID)
}

func TestServiceTriggerExternalSyncInvalidatesEveryScope(t *testing.T) {
	t.Parallel()

	svc, api, _, _ := newTestService(t)
	otherAdmin := domain.Scope{Viewer: domain.Viewer{Role: domain.RoleAdmin, UserID: "admin-2"}}

	api.EXPECT().EnhancedStats(mockAnyContext(), adminScope.Viewer).Return(enhancedFragment(1), nil).Once()
	api.EXPECT().EnhancedStats(mockAnyContext(), otherAdmin.Viewer).Return(enhancedFragment(1), nil).Once()
	api.EXPECT().TriggerSync(mockAnyContext(), mock.AnythingOfType("string")).
		Return(domain.SyncReceipt{JobID: "job-1", Status: "completed"}, nil).Once()
	api.EXPECT().EnhancedStats(mockAnyContext(), adminScope.Viewer).Return(enhancedFragment(9), nil).Once()
	api.EXPECT().EnhancedStats(mockAnyContext(), otherAdmin.Viewer).Return(enhancedFragment(9), nil).Once()

	_, err := svc.Snapshot(context.Background(), adminScope)
	require.NoError(t, err)
	_, err = svc.Snapshot(context.Background(), otherAdmin)
	require.NoError(t, err)

	result, err := svc.TriggerExternalSync(context.Background(), adminScope)
	require.NoError(t, err)
	assert.Equal(t, "job-1", result.Receipt.JobID)
	assert.Equal(t, 9, result.State.Snapshot.Stats.Exchanges.Total)

	other, err := svc.Snapshot(context.Background(), otherAdmin)
	require.NoError(t, err)
	assert.Equal(t, 9, other.Snapshot.Stats.Exchanges.Total)
}

func TestServiceSchedulerSkipsTickWhileResolutionInFlight(t *testing.T) {
	t.Parallel()

	api := mocks.NewMockDashboardAPI(t)
	clock := clockwork.NewFakeClock()
	recorder := &countingRecorder{}
	svc := NewService(api, ownerVisibility{}, WithClock(clock), WithRecorder(recorder))

	scope := domain.Scope{Viewer: adminScope.Viewer, AutoRefresh: true, RefreshInterval: time.Minute}
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	api.EXPECT().EnhancedStats(mockAnyContext(), scope.Viewer).
		RunAndReturn(func(context.Context, domain.Viewer) (domain.EnhancedFragment, error) {
			entered <- struct{}{}
			<-release
			return enhancedFragment(2), nil
		}).Once()

	sub, err := svc.Subscribe(scope)
	require.NoError(t, err)
	t.Cleanup(func() {
		sub.Close()
		svc.Close()
	})

	clock.Advance(time.Minute)
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("scheduled refresh did not start")
	}
	assert.True(t, sub.State().Loading)

	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return recorder.skipped.Load() == 1 }, time.Second, time.Millisecond)

	close(release)
	select {
	case state := <-sub.Updates():
		require.True(t, state.HasData())
		assert.Equal(t, 2, state.Snapshot.Stats.Exchanges.Total)
		assert.False(t, state.Loading)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the refreshed state")
	}
	assert.Equal(t, int64(1), recorder.resolutions.Load())
}

func TestServiceSubscriptionsShareOneTimer(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	scope := domain.Scope{Viewer: adminScope.Viewer, AutoRefresh: true, RefreshInterval: time.Minute}

	first, err := svc.Subscribe(scope)
	require.NoError(t, err)
	second, err := svc.Subscribe(scope)
	require.NoError(t, err)

	assert.Equal(t, 2, svc.scheduler.Subscribers(scope.Key()))

	first.Close()
	first.Close()
	assert.True(t, svc.scheduler.Running(scope.Key()))

	second.Close()
	assert.False(t, svc.scheduler.Running(scope.Key()))

	_, open := <-second.Updates()
	assert.False(t, open)
}

func TestServiceLateResultFillsCacheAfterUnsubscribe(t *testing.T) {
	t.Parallel()

	svc, api, _, _ := newTestService(t)
	release := make(chan struct{})
	api.EXPECT().EnhancedStats(mockAnyContext(), adminScope.Viewer).
		RunAndReturn(func(context.Context, domain.Viewer) (domain.EnhancedFragment, error) {
			<-release
			return enhancedFragment(6), nil
		}).Once()

	sub, err := svc.Subscribe(adminScope)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = sub.Snapshot(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	sub.Close()
	close(release)

	require.Eventually(t, func() bool { return svc.State(adminScope).HasData() }, time.Second, time.Millisecond)
	state, err := svc.Snapshot(context.Background(), adminScope)
	require.NoError(t, err)
	assert.Equal(t, 6, state.Snapshot.Stats.Exchanges.Total)
}

func TestServiceSubscribeAfterCloseFails(t *testing.T) {
	t.Parallel()

	svc := NewService(mocks.NewMockDashboardAPI(t), ownerVisibility{})
	svc.Close()

	_, err := svc.Subscribe(adminScope)
	require.ErrorIs(t, err, ErrServiceClosed)
}
