package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/bnema/exchange-dash/internal/ports"
	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

type tierFetch func(ctx context.Context, viewer domain.Viewer, now time.Time) (domain.Snapshot, error)

type tier struct {
	name  domain.Tier
	fetch tierFetch
}

// Resolver tries each data source in priority order and returns the first
// usable snapshot. Results from different sources are never merged.
type Resolver struct {
	api        ports.DashboardAPI
	visibility domain.Visibility
	clock      clockwork.Clock
	logger     *slog.Logger
	recorder   ports.Recorder
	tiers      []tier
}

func NewResolver(api ports.DashboardAPI, visibility domain.Visibility, clock clockwork.Clock, logger *slog.Logger, recorder ports.Recorder) *Resolver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if recorder == nil {
		recorder = ports.NopRecorder{}
	}

	r := &Resolver{
		api:        api,
		visibility: visibility,
		clock:      clock,
		logger:     logger,
		recorder:   recorder,
	}
	r.tiers = []tier{
		{name: domain.TierEnhanced, fetch: r.fetchEnhanced},
		{name: domain.TierOverview, fetch: r.fetchOverview},
		{name: domain.TierRaw, fetch: r.fetchRaw},
	}

	return r
}

func (r *Resolver) Resolve(ctx context.Context, scope domain.Scope) (domain.Snapshot, error) {
	now := r.clock.Now()
	id := ulid.Make().String()
	logger := r.logger.With(slog.String("resolution", id), slog.String("scope", string(scope.Key())))

	failures := make([]error, 0, len(r.tiers))
	for _, t := range r.tiers {
		snapshot, err := t.fetch(ctx, scope.Viewer, now)
		if err == nil {
			r.recorder.TierAttempt(t.name, ports.TierOutcomeSuccess)
			logger.Debug("dashboard tier resolved", slog.String("tier", string(t.name)))

			snapshot.ID = id
			snapshot.Tier = t.name
			snapshot.ResolvedAt = now
			return snapshot, nil
		}

		r.recorder.TierAttempt(t.name, classifyTierError(err))
		logger.Warn("dashboard tier failed",
			slog.String("tier", string(t.name)),
			slog.String("error", err.Error()),
		)
		failures = append(failures, fmt.Errorf("tier %s: %w", t.name, err))

		if ctxErr := ctx.Err(); ctxErr != nil {
			failures = append(failures, ctxErr)
			break
		}
	}

	return domain.Snapshot{}, fmt.Errorf("%w: %w", domain.ErrAllTiersFailed, errors.Join(failures...))
}

func (r *Resolver) fetchEnhanced(ctx context.Context, viewer domain.Viewer, _ time.Time) (domain.Snapshot, error) {
	fragment, err := r.api.EnhancedStats(ctx, viewer)
	if err != nil {
		return domain.Snapshot{}, err
	}

	return domain.Snapshot{
		Stats:     fragment.Stats,
		Exchanges: fragment.RecentExchanges,
		Documents: fragment.Documents,
		Messages:  fragment.Messages,
		Users:     fragment.Users,
	}, nil
}

func (r *Resolver) fetchOverview(ctx context.Context, viewer domain.Viewer, _ time.Time) (domain.Snapshot, error) {
	fragment, err := r.api.Overview(ctx, viewer)
	if err != nil {
		return domain.Snapshot{}, err
	}

	return domain.Snapshot{Stats: fragment.Stats}, nil
}

// fetchRaw lists exchanges and tasks concurrently. A failed list is replaced
// by an empty one; the tier itself only fails when filtering fails or ctx is
// done.
func (r *Resolver) fetchRaw(ctx context.Context, viewer domain.Viewer, now time.Time) (domain.Snapshot, error) {
	var (
		g         errgroup.Group
		exchanges []domain.Exchange
		tasks     []domain.Task
	)

	g.Go(func() error {
		list, err := r.api.ListExchanges(ctx)
		if err != nil {
			r.logger.Warn("list exchanges failed, using empty list", slog.String("error", err.Error()))
			list = []domain.Exchange{}
		}
		exchanges = list
		return nil
	})
	g.Go(func() error {
		list, err := r.api.ListTasks(ctx)
		if err != nil {
			r.logger.Warn("list tasks failed, using empty list", slog.String("error", err.Error()))
			list = []domain.Task{}
		}
		tasks = list
		return nil
	})
	// Both goroutines swallow their errors, so Wait only joins them.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	derived, err := domain.Derive(exchanges, tasks, viewer, r.visibility, now)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("derive stats: %w", err)
	}

	return domain.Snapshot{
		Stats:     derived.Stats,
		Exchanges: derived.Exchanges,
		Tasks:     derived.Tasks,
		Documents: []domain.Document{},
		Messages:  []domain.Message{},
		Users:     []domain.User{},
	}, nil
}

func classifyTierError(err error) ports.TierOutcome {
	switch {
	case errors.Is(err, domain.ErrShape):
		return ports.TierOutcomeShape
	case errors.Is(err, domain.ErrTransport):
		return ports.TierOutcomeTransport
	default:
		return ports.TierOutcomeError
	}
}
