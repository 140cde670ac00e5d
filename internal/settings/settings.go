// Package settings holds operator-tunable console preferences, persisted
// as JSON so they survive restarts.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/openaudit/auditlens/internal/aggregate"
)

// Settings are the tunable thresholds and feed parameters. Tier minimums
// must be strictly ordered: MediumMin < HighMin < CriticalMin.
type Settings struct {
	CriticalMin  float64       `json:"critical_min"`
	HighMin      float64       `json:"high_min"`
	MediumMin    float64       `json:"medium_min"`
	PollInterval time.Duration `json:"poll_interval"`
	FeedLimit    int           `json:"feed_limit"`
}

// Defaults returns the out-of-the-box settings.
func Defaults() Settings {
	return Settings{
		CriticalMin:  0.8,
		HighMin:      0.6,
		MediumMin:    0.4,
		PollInterval: 3 * time.Second,
		FeedLimit:    1000,
	}
}

// Validate checks ordering and ranges.
func (s Settings) Validate() error {
	for name, v := range map[string]float64{
		"critical_min": s.CriticalMin,
		"high_min":     s.HighMin,
		"medium_min":   s.MediumMin,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
		}
	}
	if !(s.MediumMin < s.HighMin && s.HighMin < s.CriticalMin) {
		return errors.New("tier thresholds must satisfy medium_min < high_min < critical_min")
	}
	if s.PollInterval < time.Second {
		return errors.New("poll_interval must be at least 1s")
	}
	if s.FeedLimit <= 0 || s.FeedLimit > 10000 {
		return errors.New("feed_limit must be between 1 and 10000")
	}
	return nil
}

// Thresholds returns the configured tier boundaries in aggregate's form.
func (s Settings) Thresholds() aggregate.Thresholds {
	return aggregate.Thresholds{
		Critical: s.CriticalMin,
		High:     s.HighMin,
		Medium:   s.MediumMin,
	}
}

// Tier maps a score to a tier label using the configured thresholds.
func (s Settings) Tier(score float64) string {
	return s.Thresholds().Tier(score)
}

// Store persists settings to a JSON file. All access goes through the
// store so concurrent page saves cannot interleave.
type Store struct {
	mu       sync.RWMutex
	path     string
	defaults Settings
	current  Settings
}

// NewStore loads settings from path, falling back to the given defaults
// when the file is missing. The caller seeds defaults from its own config
// so environment knobs apply until the operator saves an override. A
// corrupt file is an error; silently resetting an operator's thresholds
// would be worse than failing startup.
func NewStore(path string, defaults Settings) (*Store, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default settings: %w", err)
	}
	s := &Store{path: path, defaults: defaults, current: defaults}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}

	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("settings file %s is corrupt: %w", path, err)
	}
	if err := loaded.Validate(); err != nil {
		return nil, fmt.Errorf("settings file %s is invalid: %w", path, err)
	}
	s.current = loaded
	return s, nil
}

// Current returns the active settings.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// FeedTuning returns the active poll interval and alert fetch limit. The
// poller reads these each cycle so saves take effect without a restart.
func (s *Store) FeedTuning() (time.Duration, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.PollInterval, s.current.FeedLimit
}

// Save validates and persists new settings.
func (s *Store) Save(next Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		data, err := json.MarshalIndent(next, "", "  ")
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
			return err
		}
		if err := os.WriteFile(s.path, data, 0o600); err != nil {
			return err
		}
	}
	s.current = next
	return nil
}

// Reset restores the store's defaults and persists them.
func (s *Store) Reset() error {
	s.mu.RLock()
	defaults := s.defaults
	s.mu.RUnlock()
	return s.Save(defaults)
}
