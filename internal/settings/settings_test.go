package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_AreValid(t *testing.T) {
	assert.NoError(t, Defaults().Validate())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"threshold above one", func(s *Settings) { s.CriticalMin = 1.5 }, true},
		{"threshold negative", func(s *Settings) { s.MediumMin = -0.1 }, true},
		{"unordered thresholds", func(s *Settings) { s.HighMin = 0.9 }, true},
		{"equal thresholds", func(s *Settings) { s.HighMin = s.CriticalMin }, true},
		{"poll too fast", func(s *Settings) { s.PollInterval = 100 * time.Millisecond }, true},
		{"zero feed limit", func(s *Settings) { s.FeedLimit = 0 }, true},
		{"huge feed limit", func(s *Settings) { s.FeedLimit = 50000 }, true},
		{"custom valid", func(s *Settings) { s.MediumMin, s.HighMin, s.CriticalMin = 0.3, 0.5, 0.7 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Defaults()
			tc.mutate(&s)
			err := s.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTier_UsesConfiguredThresholds(t *testing.T) {
	s := Settings{MediumMin: 0.3, HighMin: 0.5, CriticalMin: 0.7}
	assert.Equal(t, "LOW", s.Tier(0.2))
	assert.Equal(t, "MEDIUM", s.Tier(0.3))
	assert.Equal(t, "HIGH", s.Tier(0.5))
	assert.Equal(t, "CRITICAL", s.Tier(0.7))
}

func TestStore_MissingFileUsesDefaults(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "settings.json"), Defaults())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s.Current())
}

func TestStore_SeededDefaults(t *testing.T) {
	seeded := Defaults()
	seeded.PollInterval = 7 * time.Second
	seeded.FeedLimit = 250

	s, err := NewStore("", seeded)
	require.NoError(t, err)
	assert.Equal(t, seeded, s.Current())

	interval, limit := s.FeedTuning()
	assert.Equal(t, 7*time.Second, interval)
	assert.Equal(t, 250, limit)

	// Reset restores the seeded values, not the package defaults.
	next := seeded
	next.FeedLimit = 42
	require.NoError(t, s.Save(next))
	require.NoError(t, s.Reset())
	assert.Equal(t, seeded, s.Current())
}

func TestStore_RejectsInvalidDefaults(t *testing.T) {
	bad := Defaults()
	bad.FeedLimit = 0
	_, err := NewStore("", bad)
	assert.Error(t, err)
}

func TestStore_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "settings.json")
	s, err := NewStore(path, Defaults())
	require.NoError(t, err)

	next := Defaults()
	next.CriticalMin = 0.9
	next.FeedLimit = 500
	require.NoError(t, s.Save(next))
	assert.Equal(t, next, s.Current())

	s2, err := NewStore(path, Defaults())
	require.NoError(t, err)
	assert.Equal(t, next, s2.Current())
}

func TestStore_SaveTakesEffectInFeedTuning(t *testing.T) {
	s, err := NewStore("", Defaults())
	require.NoError(t, err)

	next := Defaults()
	next.PollInterval = 10 * time.Second
	next.FeedLimit = 500
	require.NoError(t, s.Save(next))

	interval, limit := s.FeedTuning()
	assert.Equal(t, 10*time.Second, interval)
	assert.Equal(t, 500, limit)
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	s, err := NewStore("", Defaults())
	require.NoError(t, err)

	bad := Defaults()
	bad.FeedLimit = -1
	assert.Error(t, s.Save(bad))
	assert.Equal(t, Defaults(), s.Current(), "failed save must not change active settings")
}

func TestStore_CorruptFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewStore(path, Defaults())
	assert.Error(t, err)
}

func TestStore_Reset(t *testing.T) {
	s, err := NewStore("", Defaults())
	require.NoError(t, err)

	next := Defaults()
	next.FeedLimit = 42
	require.NoError(t, s.Save(next))
	require.NoError(t, s.Reset())
	assert.Equal(t, Defaults(), s.Current())
}
