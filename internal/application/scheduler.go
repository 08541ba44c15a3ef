package application

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/jonboulle/clockwork"
)

type refreshTimer struct {
	interval    time.Duration
	subscribers int
	stop        chan struct{}
}

// Scheduler owns one ticker per scope key. Start and Stop are reference
// counted so several views on the same key share a single timer.
type Scheduler struct {
	clock  clockwork.Clock
	logger *slog.Logger

	mu     sync.Mutex
	timers map[domain.ScopeKey]*refreshTimer
	closed bool
	wg     sync.WaitGroup
}

func NewScheduler(clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Scheduler{
		clock:  clock,
		logger: logger,
		timers: map[domain.ScopeKey]*refreshTimer{},
	}
}

// Start registers a subscriber for key. The first subscriber starts a ticker
// that calls tick every interval; later subscribers reuse it.
func (s *Scheduler) Start(key domain.ScopeKey, interval time.Duration, tick func()) {
	if interval <= 0 || tick == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if timer, ok := s.timers[key]; ok {
		timer.subscribers++
		return
	}

	timer := &refreshTimer{
		interval:    interval,
		subscribers: 1,
		stop:        make(chan struct{}),
	}
	s.timers[key] = timer

	ticker := s.clock.NewTicker(interval)
	s.wg.Add(1)
	go s.run(key, ticker, timer.stop, tick)

	s.logger.Debug("refresh timer started", slog.String("scope", string(key)), slog.Duration("interval", interval))
}

// Stop releases one subscriber. The timer is cancelled when the last one
// leaves. Stopping an unknown key is a no-op.
func (s *Scheduler) Stop(key domain.ScopeKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[key]
	if !ok {
		return
	}

	timer.subscribers--
	if timer.subscribers > 0 {
		return
	}

	close(timer.stop)
	delete(s.timers, key)

	s.logger.Debug("refresh timer stopped", slog.String("scope", string(key)))
}

func (s *Scheduler) Running(key domain.ScopeKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.timers[key]
	return ok
}

func (s *Scheduler) Subscribers(key domain.ScopeKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[key]; ok {
		return timer.subscribers
	}
	return 0
}

// Close cancels every timer and waits for the tick loops to exit.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for key, timer := range s.timers {
		close(timer.stop)
		delete(s.timers, key)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) run(key domain.ScopeKey, ticker clockwork.Ticker, stop <-chan struct{}, tick func()) {
	defer s.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			select {
			case <-stop:
				return
			default:
			}
			s.logger.Debug("refresh tick", slog.String("scope", string(key)))
			tick()
		}
	}
}
