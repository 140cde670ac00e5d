package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/auditlens/internal/backend"
	"github.com/openaudit/auditlens/internal/snapshot"
)

type fakeFeed struct {
	mu        sync.Mutex
	alerts    []backend.Alert
	stats     *backend.Stats
	health    backend.HealthStatus
	lastLimit int
}

func (f *fakeFeed) Alerts(ctx context.Context, limit int, minScore float64) []backend.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	return f.alerts
}

func (f *fakeFeed) limitSeen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLimit
}

func (f *fakeFeed) Stats(ctx context.Context) *backend.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *fakeFeed) Health(ctx context.Context) backend.HealthStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.health
}

func (f *fakeFeed) set(alerts []backend.Alert, stats *backend.Stats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = alerts
	f.stats = stats
}

type fakeNotifier struct {
	mu           sync.Mutex
	snapshots    []snapshot.Snapshot
	connectivity []bool
}

func (n *fakeNotifier) NotifyAlerts(snap snapshot.Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots = append(n.snapshots, snap)
}

func (n *fakeNotifier) NotifyConnectivity(online bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.connectivity = append(n.connectivity, online)
}

func (n *fakeNotifier) snapshotCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.snapshots)
}

func newPoller(feed *fakeFeed) (*Poller, *snapshot.Store, *fakeNotifier) {
	store := snapshot.NewStore()
	notifier := &fakeNotifier{}
	p := New(feed, store, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{
		PollInterval:   time.Hour, // loops driven manually in tests
		HealthInterval: time.Hour,
		AlertLimit:     100,
	})
	return p, store, notifier
}

func TestTick_CommitsSnapshot(t *testing.T) {
	feed := &fakeFeed{health: backend.HealthStatus{Status: "healthy"}}
	feed.set([]backend.Alert{{TransactionID: "T1", RiskScore: 0.9}}, &backend.Stats{TotalAlerts: 1})
	p, store, notifier := newPoller(feed)

	p.probeHealth(context.Background())
	p.Refresh(context.Background())

	snap := store.Current()
	assert.Equal(t, uint64(1), snap.Generation)
	require.Len(t, snap.Alerts, 1)
	assert.Equal(t, 1, notifier.snapshotCount())
}

func TestTick_SkipsWhileOffline(t *testing.T) {
	feed := &fakeFeed{health: backend.HealthStatus{Status: "offline"}}
	feed.set([]backend.Alert{{TransactionID: "T1"}}, nil)
	p, store, _ := newPoller(feed)

	p.probeHealth(context.Background())
	p.Refresh(context.Background())

	assert.Equal(t, uint64(0), store.Generation(), "no commit while backend is offline")
}

func TestTick_UnchangedFeedSkipsBroadcast(t *testing.T) {
	feed := &fakeFeed{health: backend.HealthStatus{Status: "healthy"}}
	feed.set([]backend.Alert{{TransactionID: "T1"}}, &backend.Stats{TotalAlerts: 1})
	p, store, notifier := newPoller(feed)
	p.probeHealth(context.Background())

	p.Refresh(context.Background())
	p.Refresh(context.Background())
	p.Refresh(context.Background())

	assert.Equal(t, uint64(1), store.Generation(), "identical feed should not produce new generations")
	assert.Equal(t, 1, notifier.snapshotCount())
}

func TestTick_TopChangeCommits(t *testing.T) {
	feed := &fakeFeed{health: backend.HealthStatus{Status: "healthy"}}
	feed.set([]backend.Alert{{TransactionID: "T1"}}, nil)
	p, store, _ := newPoller(feed)
	p.probeHealth(context.Background())

	p.Refresh(context.Background())
	feed.set([]backend.Alert{{TransactionID: "T2"}}, nil)
	p.Refresh(context.Background())

	snap := store.Current()
	assert.Equal(t, uint64(2), snap.Generation)
	assert.Equal(t, "T2", snap.Alerts[0].TransactionID)
}

func TestCommit_StaleTickDiscarded(t *testing.T) {
	feed := &fakeFeed{health: backend.HealthStatus{Status: "healthy"}}
	p, store, _ := newPoller(feed)
	store.SetOnline(true)

	p.commit(2, []backend.Alert{{TransactionID: "NEW"}}, nil)
	p.commit(1, []backend.Alert{{TransactionID: "OLD"}}, nil)

	snap := store.Current()
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, "NEW", snap.Alerts[0].TransactionID, "slow old tick must not overwrite a newer commit")
}

func TestCommit_BothFetchesFailedKeepsSnapshot(t *testing.T) {
	feed := &fakeFeed{health: backend.HealthStatus{Status: "healthy"}}
	feed.set([]backend.Alert{{TransactionID: "T1"}}, &backend.Stats{TotalAlerts: 1})
	p, store, _ := newPoller(feed)
	p.probeHealth(context.Background())
	p.Refresh(context.Background())

	feed.set(nil, nil)
	p.Refresh(context.Background())

	snap := store.Current()
	assert.Equal(t, uint64(1), snap.Generation)
	require.Len(t, snap.Alerts, 1, "failed tick must not blank the feed")
}

func TestProbeHealth_NotifiesTransitionsOnly(t *testing.T) {
	feed := &fakeFeed{health: backend.HealthStatus{Status: "healthy"}}
	p, store, notifier := newPoller(feed)

	p.probeHealth(context.Background())
	p.probeHealth(context.Background())
	assert.True(t, store.Online())
	assert.Equal(t, []bool{true}, notifier.connectivity, "repeat probes with no transition should not notify")

	feed.mu.Lock()
	feed.health = backend.HealthStatus{Status: "offline"}
	feed.mu.Unlock()
	p.probeHealth(context.Background())
	assert.Equal(t, []bool{true, false}, notifier.connectivity)
}

type fakeTuner struct {
	mu       sync.Mutex
	interval time.Duration
	limit    int
}

func (f *fakeTuner) FeedTuning() (time.Duration, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interval, f.limit
}

func (f *fakeTuner) set(interval time.Duration, limit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interval = interval
	f.limit = limit
}

func TestTick_UsesTunedLimit(t *testing.T) {
	feed := &fakeFeed{health: backend.HealthStatus{Status: "healthy"}}
	feed.set([]backend.Alert{{TransactionID: "T1"}}, nil)
	tuner := &fakeTuner{interval: time.Hour, limit: 25}
	p := New(feed, snapshot.NewStore(), &fakeNotifier{}, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{
		PollInterval:   time.Hour,
		HealthInterval: time.Hour,
		AlertLimit:     100,
		Tuner:          tuner,
	})
	p.probeHealth(context.Background())

	p.Refresh(context.Background())
	assert.Equal(t, 25, feed.limitSeen(), "tuned limit overrides the static config")

	// A saved settings change is picked up by the very next tick.
	tuner.set(time.Hour, 500)
	feed.set([]backend.Alert{{TransactionID: "T2"}}, nil)
	p.Refresh(context.Background())
	assert.Equal(t, 500, feed.limitSeen())
}

func TestTuner_ZeroValuesFallBackToConfig(t *testing.T) {
	feed := &fakeFeed{health: backend.HealthStatus{Status: "healthy"}}
	p := New(feed, snapshot.NewStore(), &fakeNotifier{}, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{
		PollInterval:   time.Minute,
		HealthInterval: time.Hour,
		AlertLimit:     100,
		Tuner:          &fakeTuner{},
	})

	assert.Equal(t, time.Minute, p.interval())
	assert.Equal(t, 100, p.alertLimit())
}

func TestInterval_TunedValueWins(t *testing.T) {
	feed := &fakeFeed{health: backend.HealthStatus{Status: "healthy"}}
	tuner := &fakeTuner{interval: 5 * time.Second, limit: 50}
	p := New(feed, snapshot.NewStore(), &fakeNotifier{}, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{
		PollInterval:   time.Minute,
		HealthInterval: time.Hour,
		AlertLimit:     100,
		Tuner:          tuner,
	})

	assert.Equal(t, 5*time.Second, p.interval())

	tuner.set(12*time.Second, 50)
	assert.Equal(t, 12*time.Second, p.interval(), "retuned interval applies to the next cycle")
}

func TestStartStop(t *testing.T) {
	feed := &fakeFeed{health: backend.HealthStatus{Status: "healthy"}}
	feed.set([]backend.Alert{{TransactionID: "T1"}}, nil)
	store := snapshot.NewStore()
	p := New(feed, store, &fakeNotifier{}, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{
		PollInterval:   10 * time.Millisecond,
		HealthInterval: 10 * time.Millisecond,
		AlertLimit:     10,
	})

	p.Start(context.Background())
	p.Start(context.Background()) // second Start is a no-op

	assert.Eventually(t, func() bool {
		return store.Generation() >= 1
	}, time.Second, 5*time.Millisecond)

	p.Stop()
	p.Stop() // second Stop is a no-op
}
