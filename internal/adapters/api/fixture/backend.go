// Package fixture serves dashboard data from a local TOML file. It stands in
// for the HTTP backend in demos and tests and can be told to fail any
// endpoint on purpose.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/bnema/exchange-dash/internal/ports"
	"github.com/jonboulle/clockwork"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	fileMode        = 0o600
	dirMode         = 0o700
	tempFilePattern = ".fixture-*.toml.tmp"
)

type Backend struct {
	path       string
	clock      clockwork.Clock
	visibility domain.Visibility
	mu         sync.RWMutex
}

var _ ports.DashboardAPI = (*Backend)(nil)

type Option func(*Backend)

// WithVisibility makes the enhanced and overview endpoints answer for the
// requesting viewer. Restricted viewers get counters derived from the
// records they own instead of the global sections of the file.
func WithVisibility(visibility domain.Visibility) Option {
	return func(b *Backend) {
		b.visibility = visibility
	}
}

func NewBackend(path string, clock clockwork.Clock, opts ...Option) (*Backend, error) {
	if path == "" {
		return nil, errors.New("fixture path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve fixture path: %w", err)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	b := &Backend{path: filepath.Clean(abs), clock: clock}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

func (b *Backend) Path() string {
	return b.path
}

func (b *Backend) EnhancedStats(ctx context.Context, viewer domain.Viewer) (domain.EnhancedFragment, error) {
	file, err := b.load(ctx, func(f failureSchema) string { return f.Enhanced })
	if err != nil {
		return domain.EnhancedFragment{}, err
	}
	if file.Enhanced == nil {
		return domain.EnhancedFragment{}, fmt.Errorf("%w: fixture has no [enhanced] section", domain.ErrShape)
	}

	byID := make(map[string]exchangeSchema, len(file.Exchanges))
	for _, exchange := range file.Exchanges {
		byID[exchange.ID] = exchange
	}

	fragment := domain.EnhancedFragment{
		Stats:           file.Enhanced.Stats.toDomain(parseTime(file.Sync.LastRun)),
		RecentExchanges: make([]domain.Exchange, 0, len(file.Enhanced.RecentExchanges)),
		Users:           make([]domain.User, 0, len(file.Enhanced.Users)),
	}
	for _, id := range file.Enhanced.RecentExchanges {
		exchange, ok := byID[id]
		if !ok {
			return domain.EnhancedFragment{}, fmt.Errorf("%w: recent exchange %q is not defined", domain.ErrShape, id)
		}
		fragment.RecentExchanges = append(fragment.RecentExchanges, exchange.toDomain())
	}
	for _, user := range file.Enhanced.Users {
		fragment.Users = append(fragment.Users, domain.User{
			ID:       user.ID,
			Email:    user.Email,
			Role:     domain.Role(user.Role).Normalize(),
			IsActive: user.Active,
		})
	}

	if !b.restricted(viewer) {
		return fragment, nil
	}

	stats, err := b.viewerStats(file, viewer)
	if err != nil {
		return domain.EnhancedFragment{}, err
	}
	recent, err := domain.FilterExchanges(fragment.RecentExchanges, viewer, b.visibility)
	if err != nil {
		return domain.EnhancedFragment{}, fmt.Errorf("scope recent exchanges: %w", err)
	}
	own := make([]domain.User, 0, 1)
	for _, user := range fragment.Users {
		if user.ID != "" && user.ID == viewer.UserID {
			own = append(own, user)
		}
	}

	return domain.EnhancedFragment{Stats: stats, RecentExchanges: recent, Users: own}, nil
}

func (b *Backend) Overview(ctx context.Context, viewer domain.Viewer) (domain.OverviewFragment, error) {
	file, err := b.load(ctx, func(f failureSchema) string { return f.Overview })
	if err != nil {
		return domain.OverviewFragment{}, err
	}
	if file.Overview == nil {
		return domain.OverviewFragment{}, fmt.Errorf("%w: fixture has no [overview] section", domain.ErrShape)
	}

	if !b.restricted(viewer) {
		return domain.OverviewFragment{Stats: file.Overview.toDomain(parseTime(file.Sync.LastRun))}, nil
	}

	stats, err := b.viewerStats(file, viewer)
	if err != nil {
		return domain.OverviewFragment{}, err
	}
	return domain.OverviewFragment{Stats: stats}, nil
}

func (b *Backend) restricted(viewer domain.Viewer) bool {
	return b.visibility != nil && !b.visibility.Elevated(viewer.Role.Normalize())
}

// viewerStats counts only the exchanges and tasks the viewer owns. The
// document, message and user sections are office-wide and are left out.
func (b *Backend) viewerStats(file fileSchema, viewer domain.Viewer) (domain.Stats, error) {
	exchanges := make([]domain.Exchange, 0, len(file.Exchanges))
	for _, exchange := range file.Exchanges {
		exchanges = append(exchanges, exchange.toDomain())
	}
	tasks := make([]domain.Task, 0, len(file.Tasks))
	for _, task := range file.Tasks {
		tasks = append(tasks, task.toDomain())
	}

	derived, err := domain.Derive(exchanges, tasks, viewer, b.visibility, b.clock.Now())
	if err != nil {
		return domain.Stats{}, fmt.Errorf("scope fixture stats to viewer: %w", err)
	}
	if lastSync := parseTime(file.Sync.LastRun); !lastSync.IsZero() {
		derived.Stats.System = &domain.SystemHealth{Status: "fixture", LastSync: lastSync}
	}
	return derived.Stats, nil
}

func (b *Backend) ListExchanges(ctx context.Context) ([]domain.Exchange, error) {
	file, err := b.load(ctx, func(f failureSchema) string { return f.Exchanges })
	if err != nil {
		return nil, err
	}

	exchanges := make([]domain.Exchange, 0, len(file.Exchanges))
	for _, exchange := range file.Exchanges {
		exchanges = append(exchanges, exchange.toDomain())
	}
	return exchanges, nil
}

func (b *Backend) ListTasks(ctx context.Context) ([]domain.Task, error) {
	file, err := b.load(ctx, func(f failureSchema) string { return f.Tasks })
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(file.Tasks))
	for _, task := range file.Tasks {
		tasks = append(tasks, task.toDomain())
	}
	return tasks, nil
}

// TriggerSync records the run in the fixture file. Replaying the last
// idempotency key returns the same receipt without counting a new run.
func (b *Backend) TriggerSync(ctx context.Context, idempotencyKey string) (domain.SyncReceipt, error) {
	if _, err := b.load(ctx, func(f failureSchema) string { return f.Sync }); err != nil {
		return domain.SyncReceipt{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	file, err := b.readSchema()
	if err != nil {
		return domain.SyncReceipt{}, err
	}

	if idempotencyKey == "" || idempotencyKey != file.Sync.LastKey {
		file.Sync.Runs++
		file.Sync.LastKey = idempotencyKey
		file.Sync.LastRun = formatTime(b.clock.Now())
		if err := b.writeSchema(file); err != nil {
			return domain.SyncReceipt{}, err
		}
	}

	return domain.SyncReceipt{
		JobID:           fmt.Sprintf("fixture-%d", file.Sync.Runs),
		Status:          "completed",
		ExchangesSynced: len(file.Exchanges),
		TasksSynced:     len(file.Tasks),
		IdempotencyKey:  idempotencyKey,
	}, nil
}

// load reads the fixture, waits out the configured latency and applies the
// failure mode picked by failure.
func (b *Backend) load(ctx context.Context, failure func(failureSchema) string) (fileSchema, error) {
	if err := ctx.Err(); err != nil {
		return fileSchema{}, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}

	b.mu.RLock()
	file, err := b.readSchema()
	b.mu.RUnlock()
	if err != nil {
		return fileSchema{}, err
	}

	if latency := file.latency(); latency > 0 {
		select {
		case <-ctx.Done():
			return fileSchema{}, fmt.Errorf("%w: %w", domain.ErrTransport, ctx.Err())
		case <-b.clock.After(latency):
		}
	}

	switch failure(file.Failures) {
	case failTransport:
		return fileSchema{}, fmt.Errorf("%w: fixture failure injected", domain.ErrTransport)
	case failShape:
		return fileSchema{}, fmt.Errorf("%w: fixture failure injected", domain.ErrShape)
	}

	return file, nil
}

func (b *Backend) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return fileSchema{}, fmt.Errorf("%w: read fixture file: %w", domain.ErrTransport, err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("%w: decode fixture file: %w", domain.ErrShape, err)
	}
	if err := file.validate(); err != nil {
		return fileSchema{}, fmt.Errorf("%w: %w", domain.ErrShape, err)
	}
	file.applyDefaults()

	return file, nil
}

func (b *Backend) writeSchema(file fileSchema) error {
	file.applyDefaults()

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode fixture file: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create fixture directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp fixture file: %w", err)
	}
	tmpName := tmp.Name()
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp fixture file: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp fixture file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp fixture file: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("replace fixture file: %w", err)
	}
	keep = true

	return nil
}

// WriteSample writes a small fixture to path for first runs and tests.
func WriteSample(path string, now time.Time) error {
	b, err := NewBackend(path, nil)
	if err != nil {
		return err
	}
	return b.writeSchema(sampleSchema(now))
}
