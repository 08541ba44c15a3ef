package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/exchange-dash/internal/adapters/visibility"
	"github.com/bnema/exchange-dash/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newSampleBackend(t *testing.T) (*Backend, *clockwork.FakeClock) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.toml")
	require.NoError(t, WriteSample(path, fixtureNow))

	clock := clockwork.NewFakeClockAt(fixtureNow)
	backend, err := NewBackend(path, clock)
	require.NoError(t, err)
	return backend, clock
}

func writeFixture(t *testing.T, body string) *Backend {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	backend, err := NewBackend(path, clockwork.NewFakeClockAt(fixtureNow))
	require.NoError(t, err)
	return backend
}

func TestSampleFixtureServesEveryEndpoint(t *testing.T) {
	t.Parallel()

	backend, _ := newSampleBackend(t)
	ctx := context.Background()
	viewer := domain.Viewer{Role: domain.RoleAdmin}

	enhanced, err := backend.EnhancedStats(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, 3, enhanced.Stats.Exchanges.Total)
	require.NotNil(t, enhanced.Stats.Messages)
	assert.Equal(t, 3, enhanced.Stats.Messages.Unread)
	assert.Nil(t, enhanced.Stats.System)
	require.Len(t, enhanced.RecentExchanges, 2)
	assert.Equal(t, "client-1", enhanced.RecentExchanges[0].ClientID)
	assert.Len(t, enhanced.Users, 2)

	overview, err := backend.Overview(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, 5, overview.Stats.Tasks.Total)

	exchanges, err := backend.ListExchanges(ctx)
	require.NoError(t, err)
	assert.Len(t, exchanges, 3)

	tasks, err := backend.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 5)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, fixtureNow.Add(-48*time.Hour), *tasks[0].DueDate)
}

func newScopedSampleBackend(t *testing.T) *Backend {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.toml")
	require.NoError(t, WriteSample(path, fixtureNow))

	policy, err := visibility.New(visibility.Config{})
	require.NoError(t, err)

	backend, err := NewBackend(path, clockwork.NewFakeClockAt(fixtureNow), WithVisibility(policy))
	require.NoError(t, err)
	return backend
}

func TestScopedFixtureAnswersForTheViewer(t *testing.T) {
	t.Parallel()

	backend := newScopedSampleBackend(t)
	ctx := context.Background()
	client := domain.Viewer{Role: domain.RoleClient, UserID: "client-1"}

	enhanced, err := backend.EnhancedStats(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, domain.ExchangeStats{Total: 2, Pending: 1, Active: 1}, enhanced.Stats.Exchanges)
	assert.Equal(t, domain.TaskStats{Total: 3, Pending: 2, InProgress: 1, Overdue: 2, Urgent: 1, DueThisWeek: 1}, enhanced.Stats.Tasks)
	assert.Nil(t, enhanced.Stats.Documents)
	assert.Nil(t, enhanced.Stats.Messages)
	require.Len(t, enhanced.RecentExchanges, 2)
	require.Len(t, enhanced.Users, 1)
	assert.Equal(t, "client-1", enhanced.Users[0].ID)

	overview, err := backend.Overview(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, enhanced.Stats.Exchanges, overview.Stats.Exchanges)
	assert.Equal(t, 3, overview.Stats.Tasks.Total)
}

func TestScopedFixtureHidesOtherClients(t *testing.T) {
	t.Parallel()

	backend := newScopedSampleBackend(t)
	ctx := context.Background()
	other := domain.Viewer{Role: domain.RoleClient, UserID: "client-2"}

	enhanced, err := backend.EnhancedStats(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, domain.ExchangeStats{Total: 1, Completed: 1}, enhanced.Stats.Exchanges)
	assert.Equal(t, domain.TaskStats{}, enhanced.Stats.Tasks)
	assert.Empty(t, enhanced.RecentExchanges)
	assert.Empty(t, enhanced.Users)

	overview, err := backend.Overview(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, overview.Stats.Exchanges.Total)
	assert.Zero(t, overview.Stats.Tasks.Total)

	admin, err := backend.EnhancedStats(ctx, domain.Viewer{Role: domain.RoleAdmin, UserID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, 3, admin.Stats.Exchanges.Total)
	assert.Len(t, admin.Users, 2)
}

func TestSampleFixtureMatchesClientScenario(t *testing.T) {
	t.Parallel()

	backend, _ := newSampleBackend(t)
	exchanges, err := backend.ListExchanges(context.Background())
	require.NoError(t, err)
	tasks, err := backend.ListTasks(context.Background())
	require.NoError(t, err)

	stats := domain.ComputeStats(exchanges, tasks, fixtureNow)
	assert.Equal(t, 2, stats.Tasks.Overdue)
	assert.Equal(t, 1, stats.Tasks.Urgent)
	assert.Equal(t, 1, stats.Tasks.DueThisWeek)
}

func TestInjectedFailures(t *testing.T) {
	t.Parallel()

	backend := writeFixture(t, `
version = 1

[failures]
enhanced = "shape"
overview = "transport"
tasks = "transport"

[overview.exchanges]
total = 1

[[exchanges]]
id = "ex-1"
status = "ACTIVE"
`)
	ctx := context.Background()

	_, err := backend.EnhancedStats(ctx, domain.Viewer{Role: domain.RoleAdmin})
	require.ErrorIs(t, err, domain.ErrShape)

	_, err = backend.Overview(ctx, domain.Viewer{Role: domain.RoleAdmin})
	require.ErrorIs(t, err, domain.ErrTransport)

	_, err = backend.ListTasks(ctx)
	require.ErrorIs(t, err, domain.ErrTransport)

	exchanges, err := backend.ListExchanges(ctx)
	require.NoError(t, err)
	assert.Len(t, exchanges, 1)
}

func TestMissingSectionsAreShapeErrors(t *testing.T) {
	t.Parallel()

	backend := writeFixture(t, "version = 1\n")

	_, err := backend.EnhancedStats(context.Background(), domain.Viewer{Role: domain.RoleAdmin})
	require.ErrorIs(t, err, domain.ErrShape)
	_, err = backend.Overview(context.Background(), domain.Viewer{Role: domain.RoleAdmin})
	require.ErrorIs(t, err, domain.ErrShape)
}

func TestInvalidFixtureIsRejected(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"future version": "version = 9\n",
		"bad failure":    "[failures]\nenhanced = \"sometimes\"\n",
		"bad latency":    "latency = \"soon\"\n",
		"broken toml":    "version = \n",
	} {
		t.Run(name, func(t *testing.T) {
			backend := writeFixture(t, body)
			_, err := backend.ListExchanges(context.Background())
			require.ErrorIs(t, err, domain.ErrShape)
		})
	}
}

func TestMissingFileIsTransportFailure(t *testing.T) {
	t.Parallel()

	backend, err := NewBackend(filepath.Join(t.TempDir(), "absent.toml"), nil)
	require.NoError(t, err)

	_, err = backend.ListTasks(context.Background())
	require.ErrorIs(t, err, domain.ErrTransport)
}

func TestLatencyRespectsContext(t *testing.T) {
	t.Parallel()

	backend := writeFixture(t, "latency = \"1h\"\n")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := backend.ListExchanges(ctx)
	require.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTriggerSyncRecordsRunOncePerKey(t *testing.T) {
	t.Parallel()

	backend, clock := newSampleBackend(t)
	ctx := context.Background()
	clock.Advance(time.Hour)

	first, err := backend.TriggerSync(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "fixture-1", first.JobID)
	assert.Equal(t, 3, first.ExchangesSynced)
	assert.Equal(t, 5, first.TasksSynced)

	replay, err := backend.TriggerSync(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, first, replay)

	second, err := backend.TriggerSync(ctx, "key-2")
	require.NoError(t, err)
	assert.Equal(t, "fixture-2", second.JobID)

	overview, err := backend.Overview(ctx, domain.Viewer{Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.NotNil(t, overview.Stats.System)
	assert.Equal(t, fixtureNow.Add(time.Hour), overview.Stats.System.LastSync)
}

func TestTriggerSyncFailureLeavesFileUntouched(t *testing.T) {
	t.Parallel()

	backend := writeFixture(t, "[failures]\nsync = \"transport\"\n")
	before, err := os.ReadFile(backend.Path())
	require.NoError(t, err)

	_, err = backend.TriggerSync(context.Background(), "key-1")
	require.ErrorIs(t, err, domain.ErrTransport)

	after, err := os.ReadFile(backend.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
