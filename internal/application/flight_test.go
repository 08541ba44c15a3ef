package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from Phase
		to   Phase
		want bool
	}{
		{PhaseIdle, PhaseInFlight, true},
		{PhaseInFlight, PhaseCached, true},
		{PhaseInFlight, PhaseFailed, true},
		{PhaseCached, PhaseInFlight, true},
		{PhaseFailed, PhaseInFlight, true},
		{PhaseCached, PhaseIdle, true},
		{PhaseFailed, PhaseIdle, true},
		{PhaseInFlight, PhaseIdle, false},
		{PhaseInFlight, PhaseInFlight, false},
		{PhaseIdle, PhaseCached, false},
		{PhaseIdle, PhaseFailed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestFlightGuardSharesOneResolution(t *testing.T) {
	t.Parallel()

	guard := newFlightGuard(nil)
	key := adminScope.Key()

	const callers = 10
	var (
		works   atomic.Int32
		arrived atomic.Int32
		wg      sync.WaitGroup
	)
	release := make(chan struct{})
	results := make([]resolution, callers)
	errs := make([]error, callers)

	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			arrived.Add(1)
			results[i], errs[i] = guard.Do(context.Background(), key, func() (resolution, error) {
				works.Add(1)
				<-release
				return resolution{snapshot: domain.Snapshot{ID: "shared"}}, nil
			})
		}()
	}

	require.Eventually(t, func() bool { return arrived.Load() == callers }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return guard.InFlight(key) }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), works.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i].snapshot.ID)
	}
	assert.Equal(t, PhaseCached, guard.Phase(key))
}

func TestFlightGuardClearsInFlightOnFailure(t *testing.T) {
	t.Parallel()

	var settled []domain.ScopeKey
	guard := newFlightGuard(func(key domain.ScopeKey) { settled = append(settled, key) })
	key := adminScope.Key()
	workErr := errors.New("backend down")

	_, err := guard.Do(context.Background(), key, func() (resolution, error) {
		return resolution{}, workErr
	})
	require.ErrorIs(t, err, workErr)
	assert.False(t, guard.InFlight(key))

	phase, lastErr := guard.status(key)
	assert.Equal(t, PhaseFailed, phase)
	assert.ErrorIs(t, lastErr, workErr)
	assert.Equal(t, []domain.ScopeKey{key}, settled)

	_, err = guard.Do(context.Background(), key, func() (resolution, error) {
		return resolution{snapshot: domain.Snapshot{ID: "recovered"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, PhaseCached, guard.Phase(key))
}

func TestFlightGuardCallerCancellationDoesNotAbortWork(t *testing.T) {
	t.Parallel()

	guard := newFlightGuard(nil)
	key := adminScope.Key()
	release := make(chan struct{})
	finished := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := guard.Do(ctx, key, func() (resolution, error) {
		defer close(finished)
		<-release
		return resolution{snapshot: domain.Snapshot{ID: "late"}}, nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Eventually(t, func() bool { return guard.InFlight(key) }, time.Second, time.Millisecond)

	close(release)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("work did not finish after caller cancelled")
	}
	require.Eventually(t, func() bool { return guard.Phase(key) == PhaseCached }, time.Second, time.Millisecond)
}

func TestFlightGuardResetKeepsRunningKeys(t *testing.T) {
	t.Parallel()

	guard := newFlightGuard(nil)
	idleKey := adminScope.Key()
	busyKey := clientScope.Key()

	_, err := guard.Do(context.Background(), idleKey, func() (resolution, error) {
		return resolution{}, nil
	})
	require.NoError(t, err)

	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = guard.Do(context.Background(), busyKey, func() (resolution, error) {
			<-release
			return resolution{}, nil
		})
	}()
	require.Eventually(t, func() bool { return guard.InFlight(busyKey) }, time.Second, time.Millisecond)

	guard.Reset()
	assert.Equal(t, PhaseIdle, guard.Phase(idleKey))
	assert.Equal(t, PhaseInFlight, guard.Phase(busyKey))

	close(release)
	<-done
}
