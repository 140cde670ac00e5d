package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/auditlens/internal/backend"
)

type fakeUpdater struct {
	mu    sync.Mutex
	err   error
	calls int
	// failFirst rejects the first n calls, then succeeds
	failFirst int
}

func (f *fakeUpdater) UpdateAlertStatus(ctx context.Context, transactionID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failFirst > 0 {
		f.failFirst--
		return errors.New("request failed: 502")
	}
	return f.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []StatusEvent
}

func (n *recordingNotifier) NotifyStatus(ev StatusEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func newService(api *fakeUpdater) (*Service, *OverrideStore, *recordingNotifier) {
	store := NewOverrideStore()
	notifier := &recordingNotifier{}
	s := NewService(api, store, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.baseDelay = time.Millisecond
	return s, store, notifier
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusReview, true},
		{StatusReview, StatusCleared, true},
		{StatusReview, StatusEscalated, true},
		{StatusEscalated, StatusCleared, true},
		// Escalation is reachable from every other status, including
		// straight from the queue and after clearing.
		{StatusPending, StatusEscalated, true},
		{StatusCleared, StatusEscalated, true},
		{StatusPending, StatusCleared, false},
		{StatusCleared, StatusPending, false},
		{StatusCleared, StatusReview, false},
		{StatusEscalated, StatusReview, false},
		{"bogus", StatusReview, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestApply_Success(t *testing.T) {
	api := &fakeUpdater{}
	s, store, notifier := newService(api)

	err := s.Apply(context.Background(), "TXN-1", StatusPending, StatusReview)
	require.NoError(t, err)

	o, ok := store.Get("TXN-1")
	require.True(t, ok)
	assert.Equal(t, StatusReview, o.Status)
	assert.Equal(t, SyncSynced, o.SyncState)

	// Optimistic event precedes the confirmation.
	require.Len(t, notifier.events, 2)
	assert.Equal(t, SyncPending, notifier.events[0].SyncState)
	assert.Equal(t, SyncSynced, notifier.events[1].SyncState)
}

func TestApply_InvalidTransition(t *testing.T) {
	api := &fakeUpdater{}
	s, store, _ := newService(api)

	err := s.Apply(context.Background(), "TXN-1", StatusPending, StatusCleared)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, api.calls, "invalid transitions never reach the backend")
	_, ok := store.Get("TXN-1")
	assert.False(t, ok)
}

func TestApply_RetriesTransientFailure(t *testing.T) {
	api := &fakeUpdater{failFirst: 2}
	s, store, _ := newService(api)

	err := s.Apply(context.Background(), "TXN-1", StatusPending, StatusReview)
	require.NoError(t, err)
	assert.Equal(t, 3, api.calls)

	o, _ := store.Get("TXN-1")
	assert.Equal(t, SyncSynced, o.SyncState)
}

func TestApply_RollsBackOnExhaustion(t *testing.T) {
	api := &fakeUpdater{err: errors.New("request failed: 502")}
	s, store, notifier := newService(api)

	err := s.Apply(context.Background(), "TXN-1", StatusReview, StatusCleared)
	require.Error(t, err)
	assert.Equal(t, 3, api.calls)

	o, ok := store.Get("TXN-1")
	require.True(t, ok)
	assert.Equal(t, StatusReview, o.Status, "status rolled back to prior value")
	assert.Equal(t, SyncFailed, o.SyncState)

	last := notifier.events[len(notifier.events)-1]
	assert.Equal(t, StatusReview, last.Status)
	assert.Equal(t, SyncFailed, last.SyncState)
}

func TestApply_UnauthorizedIsPermanent(t *testing.T) {
	api := &fakeUpdater{err: fmt.Errorf("%w: token expired", backend.ErrUnauthorized)}
	s, store, _ := newService(api)

	err := s.Apply(context.Background(), "TXN-1", StatusPending, StatusReview)
	require.Error(t, err)
	assert.Equal(t, 1, api.calls, "auth failures should not be retried")

	o, _ := store.Get("TXN-1")
	assert.Equal(t, SyncFailed, o.SyncState)
}

func TestApply_NotFoundIsPermanent(t *testing.T) {
	api := &fakeUpdater{err: fmt.Errorf("%w: no such alert", backend.ErrNotFound)}
	s, _, _ := newService(api)

	s.Apply(context.Background(), "TXN-gone", StatusPending, StatusReview)
	assert.Equal(t, 1, api.calls)
}

func TestDismiss_ClearsFailedOnly(t *testing.T) {
	api := &fakeUpdater{err: errors.New("down")}
	s, store, _ := newService(api)
	s.Apply(context.Background(), "TXN-1", StatusPending, StatusReview)

	s.Dismiss("TXN-1")
	_, ok := store.Get("TXN-1")
	assert.False(t, ok)

	// A synced override is untouched by Dismiss.
	api.err = nil
	s.Apply(context.Background(), "TXN-2", StatusPending, StatusReview)
	s.Dismiss("TXN-2")
	_, ok = store.Get("TXN-2")
	assert.True(t, ok)
}

func TestMerge_AppliesOverrides(t *testing.T) {
	store := NewOverrideStore()
	store.set(Override{TransactionID: "T2", Status: StatusReview, SyncState: SyncPending})

	alerts := []backend.Alert{
		{TransactionID: "T1", Status: StatusPending},
		{TransactionID: "T2", Status: StatusPending},
	}
	merged := store.Merge(alerts)

	assert.Equal(t, StatusPending, merged[0].Status)
	assert.Equal(t, StatusReview, merged[1].Status)
	assert.Equal(t, StatusPending, alerts[1].Status, "input untouched")
}

func TestMerge_NoOverridesReturnsInput(t *testing.T) {
	store := NewOverrideStore()
	alerts := []backend.Alert{{TransactionID: "T1"}}
	assert.Equal(t, alerts, store.Merge(alerts))
}

func TestReconcile_DropsCaughtUpOverrides(t *testing.T) {
	store := NewOverrideStore()
	store.set(Override{TransactionID: "T1", Status: StatusReview, SyncState: SyncSynced})
	store.set(Override{TransactionID: "T2", Status: StatusReview, SyncState: SyncPending})

	store.Reconcile([]backend.Alert{
		{TransactionID: "T1", Status: StatusReview}, // feed caught up
		{TransactionID: "T2", Status: StatusPending},
	})

	_, ok := store.Get("T1")
	assert.False(t, ok, "synced override whose status the feed now carries is dropped")
	_, ok = store.Get("T2")
	assert.True(t, ok, "in-flight override survives reconcile")
}
