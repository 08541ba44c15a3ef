package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/bnema/exchange-dash/internal/ports"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var ErrServiceClosed = errors.New("dashboard service closed")

type Option func(*Service)

func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithRecorder(recorder ports.Recorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.cacheTTL = ttl
	}
}

// Service is the dashboard data context shared by every view of one
// process. Create it at startup and Close it at teardown.
type Service struct {
	api        ports.DashboardAPI
	visibility domain.Visibility
	clock      clockwork.Clock
	logger     *slog.Logger
	recorder   ports.Recorder
	cacheTTL   time.Duration

	resolver  *Resolver
	cache     *SnapshotCache
	flights   *flightGuard
	scheduler *Scheduler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	subsMu sync.Mutex
	subs   map[domain.ScopeKey]map[*Subscription]struct{}
	closed bool
}

func NewService(api ports.DashboardAPI, visibility domain.Visibility, opts ...Option) *Service {
	s := &Service{
		api:        api,
		visibility: visibility,
		clock:      clockwork.NewRealClock(),
		logger:     slog.New(slog.DiscardHandler),
		recorder:   ports.NopRecorder{},
		cacheTTL:   DefaultCacheTTL,
		subs:       map[domain.ScopeKey]map[*Subscription]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.resolver = NewResolver(api, visibility, s.clock, s.logger, s.recorder)
	s.cache = NewSnapshotCache(s.cacheTTL, s.clock)
	s.flights = newFlightGuard(s.publish)
	s.scheduler = NewScheduler(s.clock, s.logger)

	return s
}

// Snapshot returns the cached snapshot for scope, joining a running
// resolution or starting one when nothing valid is cached.
func (s *Service) Snapshot(ctx context.Context, scope domain.Scope) (State, error) {
	if err := scope.Validate(); err != nil {
		return State{}, err
	}

	key := scope.Key()
	if !s.flights.InFlight(key) {
		if snapshot, ok := s.cache.Get(key); ok {
			s.recorder.CacheLookup(true)
			return State{Scope: key, Snapshot: &snapshot, Phase: PhaseCached}, nil
		}
		s.recorder.CacheLookup(false)
	}

	return s.resolve(ctx, scope)
}

// Refresh resolves scope again without consulting the cache. A resolution
// already running for the same scope is joined, not restarted.
func (s *Service) Refresh(ctx context.Context, scope domain.Scope) (State, error) {
	if err := scope.Validate(); err != nil {
		return State{}, err
	}

	return s.resolve(ctx, scope)
}

// TriggerExternalSync asks the backend to pull from the external system.
// Only elevated roles may call it. On success the whole cache is dropped
// and scope is resolved again.
func (s *Service) TriggerExternalSync(ctx context.Context, scope domain.Scope) (SyncResult, error) {
	if err := scope.Validate(); err != nil {
		return SyncResult{}, err
	}

	role := scope.Viewer.Role.Normalize()
	if !s.elevated(role) {
		return SyncResult{}, fmt.Errorf("trigger external sync as %q: %w", role, domain.ErrForbidden)
	}

	receipt, err := s.api.TriggerSync(ctx, uuid.NewString())
	if err != nil {
		s.logger.Error("external sync failed", slog.String("role", string(role)), slog.String("error", err.Error()))
		return SyncResult{}, fmt.Errorf("%w: %w", domain.ErrSyncFailed, err)
	}

	generation := s.cache.InvalidateAll()
	s.flights.Reset()
	s.logger.Info("external sync completed, cache invalidated",
		slog.String("job", receipt.JobID),
		slog.Int("exchanges", receipt.ExchangesSynced),
		slog.Int("tasks", receipt.TasksSynced),
	)

	state, err := s.resolveSince(ctx, scope, generation)
	return SyncResult{Receipt: receipt, State: state}, err
}

// State reports what a view of scope should currently render, without
// triggering any network access.
func (s *Service) State(scope domain.Scope) State {
	return s.stateFor(scope.Key())
}

// Close stops every refresh timer and cancels running resolutions.
func (s *Service) Close() {
	s.subsMu.Lock()
	s.closed = true
	for key, subs := range s.subs {
		for sub := range subs {
			sub.closeLocked()
		}
		delete(s.subs, key)
	}
	s.subsMu.Unlock()

	s.scheduler.Close()
	s.cancel()
	s.wg.Wait()
}

func (s *Service) resolve(ctx context.Context, scope domain.Scope) (State, error) {
	key := scope.Key()

	resolved, err := s.flights.Do(ctx, key, s.resolution(scope))
	if err != nil {
		state := s.stateFor(key)
		state.Err = err
		return state, err
	}

	return State{Scope: key, Snapshot: &resolved.snapshot, Phase: PhaseCached}, nil
}

// resolveSince resolves scope until the result was produced after the cache
// reached generation. A resolution that started before an invalidation is
// joined once and then replaced.
func (s *Service) resolveSince(ctx context.Context, scope domain.Scope, generation uint64) (State, error) {
	key := scope.Key()
	for {
		resolved, err := s.flights.Do(ctx, key, s.resolution(scope))
		if err != nil {
			state := s.stateFor(key)
			state.Err = err
			return state, err
		}
		if resolved.generation >= generation {
			return State{Scope: key, Snapshot: &resolved.snapshot, Phase: PhaseCached}, nil
		}
	}
}

func (s *Service) resolution(scope domain.Scope) func() (resolution, error) {
	key := scope.Key()

	return func() (resolution, error) {
		started := s.clock.Now()
		generation := s.cache.Generation()

		snapshot, err := s.resolver.Resolve(s.ctx, scope)
		s.recorder.Resolution(s.clock.Since(started), err)
		if err != nil {
			s.logger.Warn("dashboard resolution failed", slog.String("scope", string(key)), slog.String("error", err.Error()))
			return resolution{}, err
		}

		if !s.cache.Put(key, snapshot, generation) {
			s.logger.Debug("discarding snapshot resolved before invalidation", slog.String("scope", string(key)))
		}
		return resolution{snapshot: snapshot, generation: generation}, nil
	}
}

func (s *Service) stateFor(key domain.ScopeKey) State {
	phase, err := s.flights.status(key)
	state := State{Scope: key, Phase: phase, Loading: phase == PhaseInFlight}

	if snapshot, ok := s.cache.Get(key); ok {
		state.Snapshot = &snapshot
	} else if phase == PhaseCached {
		state.Phase = PhaseIdle
	}
	if phase == PhaseFailed {
		state.Err = err
	}

	return state
}

func (s *Service) elevated(role domain.Role) bool {
	if s.visibility == nil {
		return role == domain.RoleAdmin
	}
	return s.visibility.Elevated(role)
}

// tick runs on the scheduler goroutine. It never waits for a resolution, so
// a slow backend cannot make ticks pile up.
func (s *Service) tick(scope domain.Scope) {
	key := scope.Key()
	if s.flights.InFlight(key) {
		s.recorder.TickSkipped()
		s.logger.Debug("refresh tick skipped, resolution in flight", slog.String("scope", string(key)))
		return
	}

	s.subsMu.Lock()
	if s.closed {
		s.subsMu.Unlock()
		return
	}
	s.wg.Add(1)
	s.subsMu.Unlock()

	go func() {
		defer s.wg.Done()
		if _, err := s.resolve(s.ctx, scope); err != nil {
			s.logger.Warn("scheduled refresh failed", slog.String("scope", string(key)), slog.String("error", err.Error()))
		}
	}()
}

func (s *Service) publish(key domain.ScopeKey) {
	state := s.stateFor(key)

	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for sub := range s.subs[key] {
		sub.deliverLocked(state)
	}
}
