package application

import (
	"context"

	"github.com/bnema/exchange-dash/internal/domain"
)

// Subscription is one mounted view of a scope. It receives a State after
// every settled resolution and keeps the refresh timer alive while open.
type Subscription struct {
	service *Service
	scope   domain.Scope
	key     domain.ScopeKey
	updates chan State
	closed  bool
}

// Subscribe mounts a view of scope. When scope.AutoRefresh is set the scope
// is refreshed every scope.RefreshInterval until the last view closes.
func (s *Service) Subscribe(scope domain.Scope) (*Subscription, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	key := scope.Key()
	sub := &Subscription{
		service: s,
		scope:   scope,
		key:     key,
		updates: make(chan State, 1),
	}

	s.subsMu.Lock()
	if s.closed {
		s.subsMu.Unlock()
		return nil, ErrServiceClosed
	}
	if s.subs[key] == nil {
		s.subs[key] = map[*Subscription]struct{}{}
	}
	s.subs[key][sub] = struct{}{}
	s.subsMu.Unlock()

	if scope.AutoRefresh {
		s.scheduler.Start(key, scope.RefreshInterval, func() { s.tick(scope) })
	}

	return sub, nil
}

func (sub *Subscription) Scope() domain.Scope {
	return sub.scope
}

// Updates delivers the latest State after each resolution. Only the newest
// undelivered state is kept. The channel is closed by Close.
func (sub *Subscription) Updates() <-chan State {
	return sub.updates
}

func (sub *Subscription) State() State {
	return sub.service.stateFor(sub.key)
}

func (sub *Subscription) Snapshot(ctx context.Context) (State, error) {
	return sub.service.Snapshot(ctx, sub.scope)
}

func (sub *Subscription) Refresh(ctx context.Context) (State, error) {
	return sub.service.Refresh(ctx, sub.scope)
}

func (sub *Subscription) TriggerExternalSync(ctx context.Context) (SyncResult, error) {
	return sub.service.TriggerExternalSync(ctx, sub.scope)
}

// Close unmounts the view. It is safe to call more than once. A resolution
// already running keeps going and still fills the cache.
func (sub *Subscription) Close() {
	s := sub.service

	s.subsMu.Lock()
	if sub.closed {
		s.subsMu.Unlock()
		return
	}
	if subs := s.subs[sub.key]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(s.subs, sub.key)
		}
	}
	sub.closeLocked()
	s.subsMu.Unlock()

	if sub.scope.AutoRefresh {
		s.scheduler.Stop(sub.key)
	}
}

func (sub *Subscription) closeLocked() {
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.updates)
}

func (sub *Subscription) deliverLocked(state State) {
	if sub.closed {
		return
	}

	select {
	case <-sub.updates:
	default:
	}
	sub.updates <- state
}
