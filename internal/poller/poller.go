// Package poller drives the live feed. A timer fires on the configured
// interval; each tick fetches alerts and stats in parallel, then commits
// them as a new snapshot generation. Interval and fetch limit are re-read
// from the Tuner each cycle, so saved settings apply without a restart.
//
// Ticks carry sequence numbers and commit last-tick-wins: starting tick N+1
// cancels tick N's context, and a slow tick that finishes after a newer one
// has committed is discarded. Stale data can never overwrite fresh data.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/openaudit/auditlens/internal/backend"
	"github.com/openaudit/auditlens/internal/metrics"
	"github.com/openaudit/auditlens/internal/snapshot"
	"github.com/openaudit/auditlens/internal/traces"
)

// Feed is the slice of the backend client the poller needs.
type Feed interface {
	Alerts(ctx context.Context, limit int, minScore float64) []backend.Alert
	Stats(ctx context.Context) *backend.Stats
	Health(ctx context.Context) backend.HealthStatus
}

// Notifier receives committed snapshots and connectivity transitions.
// The realtime hub implements this.
type Notifier interface {
	NotifyAlerts(snap snapshot.Snapshot)
	NotifyConnectivity(online bool)
}

// Tuner supplies live feed knobs. The settings store implements this, so
// an operator's saved poll interval and fetch limit apply to the running
// loop without a restart.
type Tuner interface {
	FeedTuning() (pollInterval time.Duration, alertLimit int)
}

// Config holds poller timing and fetch parameters. PollInterval and
// AlertLimit are the static fallbacks; when Tuner is set its values win.
type Config struct {
	PollInterval   time.Duration
	HealthInterval time.Duration
	AlertLimit     int
	MinScore       float64
	Tuner          Tuner
}

// Poller runs the poll and health loops.
type Poller struct {
	feed     Feed
	store    *snapshot.Store
	notifier Notifier
	logger   *slog.Logger
	cfg      Config

	mu         sync.Mutex
	seq        uint64
	committed  uint64
	cancelPrev context.CancelFunc
	lastTopID  string
	lastCount  int

	running atomic.Bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// New creates a poller. Call Start to begin polling.
func New(feed Feed, store *snapshot.Store, notifier Notifier, logger *slog.Logger, cfg Config) *Poller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = 10 * time.Second
	}
	if cfg.AlertLimit <= 0 {
		cfg.AlertLimit = 1000
	}
	return &Poller{
		feed:     feed,
		store:    store,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		stop:     make(chan struct{}),
	}
}

// Start launches the poll and health loops. Calling Start twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		return
	}

	// Probe once synchronously so the first tick knows whether the backend
	// is reachable.
	p.probeHealth(ctx)

	p.wg.Add(2)
	go p.pollLoop(ctx)
	go p.healthLoop(ctx)

	p.logger.Info("poller started",
		"poll_interval", p.interval(),
		"health_interval", p.cfg.HealthInterval,
		"alert_limit", p.alertLimit())
}

// Stop halts both loops and waits for in-flight ticks to finish.
func (p *Poller) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.stop)
	p.wg.Wait()

	p.mu.Lock()
	if p.cancelPrev != nil {
		p.cancelPrev()
	}
	p.mu.Unlock()

	p.logger.Info("poller stopped")
}

// Refresh forces an immediate tick outside the ticker schedule. Used after
// a status mutation so the feed reflects the change without waiting.
func (p *Poller) Refresh(ctx context.Context) {
	p.tick(ctx)
}

// interval returns the poll interval in effect, tuned or static.
func (p *Poller) interval() time.Duration {
	if p.cfg.Tuner != nil {
		if d, _ := p.cfg.Tuner.FeedTuning(); d > 0 {
			return d
		}
	}
	return p.cfg.PollInterval
}

// alertLimit returns the per-tick fetch limit in effect, tuned or static.
func (p *Poller) alertLimit() int {
	if p.cfg.Tuner != nil {
		if _, n := p.cfg.Tuner.FeedTuning(); n > 0 {
			return n
		}
	}
	return p.cfg.AlertLimit
}

func (p *Poller) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	// A timer instead of a ticker: re-arming after each tick picks up a
	// retuned interval by the next cycle.
	p.tick(ctx)
	timer := time.NewTimer(p.interval())
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			p.tick(ctx)
			timer.Reset(p.interval())
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) healthLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.probeHealth(ctx)
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// probeHealth checks backend reachability and publishes transitions.
func (p *Poller) probeHealth(ctx context.Context) {
	h := p.feed.Health(ctx)
	up := h.Up()

	was := p.store.Online()
	p.store.SetOnline(up)

	if was != up {
		if up {
			p.logger.Info("backend reachable")
		} else {
			p.logger.Warn("backend offline", "status", h.Status)
		}
		if p.notifier != nil {
			p.notifier.NotifyConnectivity(up)
		}
	}
}

// tick runs one fetch-and-commit cycle.
func (p *Poller) tick(ctx context.Context) {
	if !p.store.Online() {
		metrics.PollTicksTotal.WithLabelValues("offline").Inc()
		return
	}

	seq, tickCtx := p.beginTick(ctx)
	timer := prometheus.NewTimer(metrics.PollTickDuration)
	defer timer.ObserveDuration()

	tickCtx, span := traces.StartSpan(tickCtx, "poller.tick", traces.TickSeq(seq))
	defer span.End()

	var (
		alerts []backend.Alert
		stats  *backend.Stats
	)
	g, gctx := errgroup.WithContext(tickCtx)
	g.Go(func() error {
		alerts = p.feed.Alerts(gctx, p.alertLimit(), p.cfg.MinScore)
		return nil
	})
	g.Go(func() error {
		stats = p.feed.Stats(gctx)
		return nil
	})
	g.Wait()

	p.commit(seq, alerts, stats)
}

// beginTick assigns the next sequence number and cancels the previous
// tick's context.
func (p *Poller) beginTick(ctx context.Context) (uint64, context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancelPrev != nil {
		p.cancelPrev()
	}
	tickCtx, cancel := context.WithCancel(ctx)
	p.cancelPrev = cancel

	p.seq++
	return p.seq, tickCtx
}

// commit installs the tick's results, unless a newer tick already did.
func (p *Poller) commit(seq uint64, alerts []backend.Alert, stats *backend.Stats) {
	p.mu.Lock()

	if seq <= p.committed {
		p.mu.Unlock()
		metrics.PollTicksTotal.WithLabelValues("stale").Inc()
		p.logger.Debug("stale tick discarded", "seq", seq, "committed", p.committed)
		return
	}
	p.committed = seq

	// Both fetches failed. Keep the previous snapshot on screen rather than
	// flashing an empty feed.
	if alerts == nil && stats == nil {
		p.mu.Unlock()
		metrics.PollTicksTotal.WithLabelValues("offline").Inc()
		return
	}

	// Top-of-queue diff: same top alert and same count means nothing the
	// operator can see has changed, so skip the broadcast.
	topID := ""
	if len(alerts) > 0 {
		topID = alerts[0].TransactionID
	}
	unchanged := topID == p.lastTopID && len(alerts) == p.lastCount && p.store.Generation() > 0
	p.lastTopID = topID
	p.lastCount = len(alerts)
	p.mu.Unlock()

	if unchanged {
		metrics.PollTicksTotal.WithLabelValues("unchanged").Inc()
		return
	}

	gen := p.store.Replace(alerts, stats, time.Now())
	metrics.PollTicksTotal.WithLabelValues("committed").Inc()
	p.logger.Debug("snapshot committed", "seq", seq, "generation", gen, "alerts", len(alerts))

	if p.notifier != nil {
		p.notifier.NotifyAlerts(p.store.Current())
	}
}
