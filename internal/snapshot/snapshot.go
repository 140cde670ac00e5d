// Package snapshot holds the most recent complete view of the alert feed.
// The poller replaces the snapshot wholesale on each committed tick; readers
// always see one coherent generation, never a half-applied merge.
package snapshot

import (
	"sync"
	"time"

	"github.com/openaudit/auditlens/internal/backend"
	"github.com/openaudit/auditlens/internal/metrics"
)

// Snapshot is one committed generation of feed data.
type Snapshot struct {
	Generation uint64
	Alerts     []backend.Alert
	Stats      *backend.Stats
	FetchedAt  time.Time
}

// Store is the mutex-guarded holder of the current snapshot.
type Store struct {
	mu      sync.RWMutex
	current Snapshot
	online  bool
}

// NewStore creates an empty store. Generation starts at zero; the first
// committed tick produces generation one.
func NewStore() *Store {
	return &Store{}
}

// Replace installs a new snapshot wholesale and returns its generation.
func (s *Store) Replace(alerts []backend.Alert, stats *backend.Stats, fetchedAt time.Time) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Snapshot{
		Generation: s.current.Generation + 1,
		Alerts:     alerts,
		Stats:      stats,
		FetchedAt:  fetchedAt,
	}
	metrics.SnapshotAlerts.Set(float64(len(alerts)))
	return s.current.Generation
}

// Current returns the current snapshot. The alert slice is copied so callers
// can sort or trim without racing the next Replace.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.current
	if s.current.Alerts != nil {
		out.Alerts = make([]backend.Alert, len(s.current.Alerts))
		copy(out.Alerts, s.current.Alerts)
	}
	return out
}

// Generation returns the current generation without copying alert data.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Generation
}

// SetOnline records backend connectivity as seen by the health probe.
func (s *Store) SetOnline(online bool) {
	s.mu.Lock()
	s.online = online
	s.mu.Unlock()

	if online {
		metrics.ConnectivityUp.Set(1)
	} else {
		metrics.ConnectivityUp.Set(0)
	}
}

// Online reports whether the backend was reachable at the last health probe.
func (s *Store) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}
