package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/exchange-dash/internal/domain"
	"golang.org/x/sync/singleflight"
)

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseInFlight Phase = "in_flight"
	PhaseCached   Phase = "cached"
	PhaseFailed   Phase = "failed"
)

var phaseTransitions = map[Phase][]Phase{
	PhaseIdle:     {PhaseIdle, PhaseInFlight},
	PhaseInFlight: {PhaseCached, PhaseFailed},
	PhaseCached:   {PhaseIdle, PhaseInFlight},
	PhaseFailed:   {PhaseIdle, PhaseInFlight},
}

func (p Phase) CanTransition(to Phase) bool {
	for _, allowed := range phaseTransitions[p] {
		if allowed == to {
			return true
		}
	}
	return false
}

var errResolutionAborted = errors.New("resolution aborted")

type resolution struct {
	snapshot   domain.Snapshot
	generation uint64
}

type scopeState struct {
	phase Phase
	err   error
}

// flightGuard runs at most one resolution per scope key. Concurrent callers
// for the same key share the result of the running resolution.
type flightGuard struct {
	group singleflight.Group

	mu     sync.Mutex
	states map[domain.ScopeKey]*scopeState

	onSettle func(key domain.ScopeKey)
}

func newFlightGuard(onSettle func(key domain.ScopeKey)) *flightGuard {
	return &flightGuard{
		states:   map[domain.ScopeKey]*scopeState{},
		onSettle: onSettle,
	}
}

// Do joins the running resolution for key or starts work. The caller stops
// waiting when ctx is done, but work keeps running so its result can still
// land in the cache.
func (g *flightGuard) Do(ctx context.Context, key domain.ScopeKey, work func() (resolution, error)) (resolution, error) {
	ch := g.group.DoChan(string(key), func() (result any, err error) {
		g.begin(key)
		completed := false
		defer func() {
			if !completed && err == nil {
				err = errResolutionAborted
			}
			g.settle(key, err)
		}()

		result, err = work()
		completed = true
		return result, err
	})

	select {
	case <-ctx.Done():
		return resolution{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return resolution{}, res.Err
		}

		resolved, ok := res.Val.(resolution)
		if !ok {
			return resolution{}, fmt.Errorf("unexpected type from resolution flight: got %T", res.Val)
		}
		resolved.snapshot = resolved.snapshot.Clone()

		return resolved, nil
	}
}

func (g *flightGuard) InFlight(key domain.ScopeKey) bool {
	return g.Phase(key) == PhaseInFlight
}

func (g *flightGuard) Phase(key domain.ScopeKey) Phase {
	phase, _ := g.status(key)
	return phase
}

func (g *flightGuard) status(key domain.ScopeKey) (Phase, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, ok := g.states[key]
	if !ok {
		return PhaseIdle, nil
	}

	return state.phase, state.err
}

// Reset moves every settled key back to idle. Keys with a running
// resolution keep their phase.
func (g *flightGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, state := range g.states {
		if state.phase.CanTransition(PhaseIdle) {
			state.phase = PhaseIdle
			state.err = nil
		}
	}
}

func (g *flightGuard) begin(key domain.ScopeKey) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, ok := g.states[key]
	if !ok {
		state = &scopeState{phase: PhaseIdle}
		g.states[key] = state
	}
	if state.phase.CanTransition(PhaseInFlight) {
		state.phase = PhaseInFlight
	}
}

func (g *flightGuard) settle(key domain.ScopeKey, err error) {
	g.mu.Lock()
	state := g.states[key]
	if state != nil {
		if err != nil {
			state.phase = PhaseFailed
			state.err = err
		} else {
			state.phase = PhaseCached
			state.err = nil
		}
	}
	g.mu.Unlock()

	if g.onSettle != nil {
		g.onSettle(key)
	}
}
