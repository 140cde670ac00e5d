package snapshot

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openaudit/auditlens/internal/backend"
)

func TestReplace_IncrementsGeneration(t *testing.T) {
	s := NewStore()
	assert.Equal(t, uint64(0), s.Generation())

	g1 := s.Replace([]backend.Alert{{TransactionID: "T1"}}, nil, time.Now())
	g2 := s.Replace([]backend.Alert{{TransactionID: "T2"}}, nil, time.Now())

	assert.Equal(t, uint64(1), g1)
	assert.Equal(t, uint64(2), g2)
	assert.Equal(t, "T2", s.Current().Alerts[0].TransactionID)
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Replace([]backend.Alert{{TransactionID: "T1", Status: "pending"}}, nil, time.Now())

	snap := s.Current()
	snap.Alerts[0].Status = "cleared"

	assert.Equal(t, "pending", s.Current().Alerts[0].Status, "mutating a reader copy must not leak into the store")
}

func TestCurrent_Empty(t *testing.T) {
	s := NewStore()
	snap := s.Current()
	assert.Nil(t, snap.Alerts)
	assert.Nil(t, snap.Stats)
	assert.Equal(t, uint64(0), snap.Generation)
}

func TestOnline_Toggle(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Online())
	s.SetOnline(true)
	assert.True(t, s.Online())
	s.SetOnline(false)
	assert.False(t, s.Online())
}

func TestReplace_ConcurrentReaders(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Replace([]backend.Alert{{TransactionID: "T"}}, nil, time.Now())
				snap := s.Current()
				if len(snap.Alerts) != 1 {
					t.Error("Reader saw torn snapshot")
					return
				}
			}
		}()
	}
	wg.Wait()
}
