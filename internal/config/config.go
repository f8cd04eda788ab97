// Package config handles the persisted runtime settings of the decoder.
// The settings live in a small YAML file and can be replaced at runtime
// through the HTTP API; the decode loop reads them once per cycle.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/wind-sensor/internal/logic"
)

// Settings are the runtime-tunable decode parameters.
type Settings struct {
	// FilterGain is the direction smoothing strength, clamped to [0, 1].
	FilterGain float64 `yaml:"filter_gain"`
	// DirectionOffsetDeg corrects for the vane's mounting angle. May be
	// negative; the decoder normalizes the resulting angle.
	DirectionOffsetDeg int `yaml:"direction_offset_deg"`
	// DebugEnabled turns on the per-cycle diagnostic dump.
	DebugEnabled bool `yaml:"debug_enabled"`
}

// Default returns the factory settings.
func Default() Settings {
	return Settings{
		FilterGain:         0.25,
		DirectionOffsetDeg: 0,
		DebugEnabled:       false,
	}
}

// Normalize clamps out-of-range values instead of rejecting them, so a
// hand-edited file can never wedge the decoder.
func (s Settings) Normalize() Settings {
	if s.FilterGain < 0 {
		s.FilterGain = 0
	}
	if s.FilterGain > 1 {
		s.FilterGain = 1
	}
	return s
}

// Logic converts to the decode pipeline's view of the settings.
func (s Settings) Logic() logic.Settings {
	return logic.Settings{
		FilterGain:         s.FilterGain,
		DirectionOffsetDeg: s.DirectionOffsetDeg,
		DebugEnabled:       s.DebugEnabled,
	}
}

// Store holds the active settings behind a mutex and persists replacements
// to the YAML file.
type Store struct {
	mu   sync.RWMutex
	path string
	cur  Settings
}

// Load reads the settings file at path, falling back to defaults when the
// file does not exist yet. An empty path keeps everything in memory.
func Load(path string) (*Store, error) {
	s := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// First boot: defaults, file written on first Replace.
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	return &Store{path: path, cur: s.Normalize()}, nil
}

// Current returns the active settings.
func (st *Store) Current() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.cur
}

// Replace normalizes and activates new settings, then persists them.
// The returned Settings are the normalized values actually in effect.
func (st *Store) Replace(s Settings) (Settings, error) {
	s = s.Normalize()

	st.mu.Lock()
	st.cur = s
	st.mu.Unlock()

	if st.path == "" {
		return s, nil
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return s, fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(st.path, data, 0644); err != nil {
		return s, fmt.Errorf("write %s: %w", st.path, err)
	}
	return s, nil
}
