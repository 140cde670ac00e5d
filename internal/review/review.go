// Package review owns the alert triage workflow. Status changes apply
// optimistically: the local override is visible immediately, the backend
// commit happens with retries, and a rejected commit rolls the override
// back with a visible failure marker.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openaudit/auditlens/internal/backend"
	"github.com/openaudit/auditlens/internal/metrics"
	"github.com/openaudit/auditlens/internal/retry"
	"github.com/openaudit/auditlens/internal/traces"
)

// Alert statuses, in workflow order. The wire value for escalation is
// "escalate", matching what the backend's PATCH endpoint accepts.
const (
	StatusPending   = "pending"
	StatusReview    = "review"
	StatusEscalated = "escalate"
	StatusCleared   = "cleared"
)

// Sync states for an optimistic override.
const (
	SyncPending = "pending" // applied locally, backend commit in flight
	SyncSynced  = "synced"  // backend confirmed
	SyncFailed  = "failed"  // backend rejected, status rolled back
)

// ErrInvalidTransition is returned for a status change the workflow does
// not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions is the triage state machine. The main track moves forward
// only; escalation is a side branch reachable from every other status, so
// an operator can flag an alert for supervisor review at any point, even
// after clearing it.
var transitions = map[string][]string{
	StatusPending:   {StatusReview, StatusEscalated},
	StatusReview:    {StatusCleared, StatusEscalated},
	StatusEscalated: {StatusCleared},
	StatusCleared:   {StatusEscalated},
}

// CanTransition reports whether the workflow allows moving from one status
// to another.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known alert status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusReview, StatusEscalated, StatusCleared:
		return true
	}
	return false
}

// Override is one local status override layered on top of the feed.
type Override struct {
	TransactionID string
	Status        string
	PrevStatus    string
	SyncState     string
	UpdatedAt     time.Time
}

// OverrideStore holds local overrides keyed by transaction ID.
type OverrideStore struct {
	mu        sync.RWMutex
	overrides map[string]Override
}

// NewOverrideStore creates an empty override store.
func NewOverrideStore() *OverrideStore {
	return &OverrideStore{overrides: make(map[string]Override)}
}

// Get returns the override for a transaction, if any.
func (s *OverrideStore) Get(transactionID string) (Override, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.overrides[transactionID]
	return o, ok
}

func (s *OverrideStore) set(o Override) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[o.TransactionID] = o
}

// Drop removes an override, letting the feed's own status show through.
func (s *OverrideStore) Drop(transactionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, transactionID)
}

// Reconcile drops synced overrides the feed has caught up with. Called
// after each committed snapshot so overrides do not accumulate forever.
func (s *OverrideStore) Reconcile(alerts []backend.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range alerts {
		o, ok := s.overrides[a.TransactionID]
		if ok && o.SyncState == SyncSynced && o.Status == a.Status {
			delete(s.overrides, a.TransactionID)
		}
	}
}

// Merge returns a copy of alerts with local overrides applied. Failed
// overrides keep the rolled-back status; the failure shows via SyncState.
func (s *OverrideStore) Merge(alerts []backend.Alert) []backend.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.overrides) == 0 {
		return alerts
	}
	out := make([]backend.Alert, len(alerts))
	copy(out, alerts)
	for i := range out {
		if o, ok := s.overrides[out[i].TransactionID]; ok {
			out[i].Status = o.Status
		}
	}
	return out
}

// StatusEvent describes an override change for the live feed.
type StatusEvent struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	SyncState     string `json:"sync_state"`
}

// Notifier publishes status events to connected clients.
type Notifier interface {
	NotifyStatus(ev StatusEvent)
}

// Updater is the slice of the backend client the service needs.
type Updater interface {
	UpdateAlertStatus(ctx context.Context, transactionID, status string) error
}

// Service coordinates optimistic status changes.
type Service struct {
	api      Updater
	store    *OverrideStore
	notifier Notifier
	logger   *slog.Logger

	maxAttempts int
	baseDelay   time.Duration
}

// NewService creates the triage service. Commits retry up to three times
// with backoff before rolling back.
func NewService(api Updater, store *OverrideStore, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		api:         api,
		store:       store,
		notifier:    notifier,
		logger:      logger,
		maxAttempts: 3,
		baseDelay:   200 * time.Millisecond,
	}
}

// Apply moves an alert to a new status. The override becomes visible before
// the backend confirms; a rejected commit rolls it back and surfaces the
// failure. The returned error reflects the final backend outcome.
func (s *Service) Apply(ctx context.Context, transactionID, from, to string) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	ctx, span := traces.StartSpan(ctx, "review.apply", traces.TransactionID(transactionID))
	defer span.End()

	// Optimistic: visible immediately, marked as unconfirmed.
	s.store.set(Override{
		TransactionID: transactionID,
		Status:        to,
		PrevStatus:    from,
		SyncState:     SyncPending,
		UpdatedAt:     time.Now(),
	})
	s.notify(StatusEvent{TransactionID: transactionID, Status: to, SyncState: SyncPending})

	err := retry.Do(ctx, s.maxAttempts, s.baseDelay, func() error {
		err := s.api.UpdateAlertStatus(ctx, transactionID, to)
		if errors.Is(err, backend.ErrUnauthorized) || errors.Is(err, backend.ErrNotFound) {
			return retry.Permanent(err)
		}
		return err
	})

	if err != nil {
		// Roll back to the prior status and flag the failure.
		s.store.set(Override{
			TransactionID: transactionID,
			Status:        from,
			PrevStatus:    from,
			SyncState:     SyncFailed,
			UpdatedAt:     time.Now(),
		})
		s.notify(StatusEvent{TransactionID: transactionID, Status: from, SyncState: SyncFailed})
		metrics.StatusCommitsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("status commit rejected, rolled back",
			"transaction_id", transactionID, "from", from, "to", to, "error", err)
		return err
	}

	s.store.set(Override{
		TransactionID: transactionID,
		Status:        to,
		PrevStatus:    from,
		SyncState:     SyncSynced,
		UpdatedAt:     time.Now(),
	})
	s.notify(StatusEvent{TransactionID: transactionID, Status: to, SyncState: SyncSynced})
	metrics.StatusCommitsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("status committed", "transaction_id", transactionID, "status", to)
	return nil
}

// Dismiss clears a failed override's marker once the operator has seen it.
func (s *Service) Dismiss(transactionID string) {
	if o, ok := s.store.Get(transactionID); ok && o.SyncState == SyncFailed {
		s.store.Drop(transactionID)
	}
}

func (s *Service) notify(ev StatusEvent) {
	if s.notifier != nil {
		s.notifier.NotifyStatus(ev)
	}
}
