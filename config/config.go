// Package config manages the service's JSON settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Settings holds everything operators tune without rebuilding.
type Settings struct {
	ListenAddr string `json:"listenAddr"`
	LogFile    string `json:"logFile,omitempty"` // empty = stderr only

	// CacheTTLHours is how long one source's fetched listings stay fresh.
	CacheTTLHours int `json:"cacheTtlHours"`

	// SourceTimeoutSeconds bounds one source's whole fetch during a run.
	SourceTimeoutSeconds int `json:"sourceTimeoutSeconds"`

	// SourceRequestsPerSecond and SourceRequestBurst pace outbound requests
	// to venue sites. Zero rps disables pacing.
	SourceRequestsPerSecond float64 `json:"sourceRequestsPerSecond"`
	SourceRequestBurst      int     `json:"sourceRequestBurst"`

	// EnabledSources limits aggregation to the named adapters; empty means
	// every compiled-in adapter.
	EnabledSources []string `json:"enabledSources,omitempty"`
}

func defaults() Settings {
	return Settings{
		ListenAddr:              ":8620",
		CacheTTLHours:           3,
		SourceTimeoutSeconds:    60,
		SourceRequestsPerSecond: 4,
		SourceRequestBurst:      8,
	}
}

// Manager loads and persists settings, caching the last loaded copy.
type Manager struct {
	path string

	mu     sync.RWMutex
	cached *Settings
}

// NewManager creates a manager for the given settings path. The file does
// not need to exist yet; Load falls back to defaults.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load returns the settings, reading the file on first use. A missing file
// yields the defaults; a malformed file is an error, not a silent reset.
func (m *Manager) Load() (Settings, error) {
	m.mu.RLock()
	if m.cached != nil {
		s := *m.cached
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached != nil {
		return *m.cached, nil
	}

	s := defaults()
	data, err := os.ReadFile(m.path)
	switch {
	case os.IsNotExist(err):
		// First run: defaults.
	case err != nil:
		return Settings{}, fmt.Errorf("read settings: %w", err)
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse settings %s: %w", m.path, err)
		}
		applyFloors(&s)
	}
	m.cached = &s
	return s, nil
}

// Save persists the settings atomically and updates the cached copy.
func (m *Manager) Save(s Settings) error {
	applyFloors(&s)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write settings: %w", err)
	}

	m.mu.Lock()
	m.cached = &s
	m.mu.Unlock()
	return nil
}

// applyFloors backfills zero values a hand-edited file may have dropped.
func applyFloors(s *Settings) {
	d := defaults()
	if s.ListenAddr == "" {
		s.ListenAddr = d.ListenAddr
	}
	if s.CacheTTLHours <= 0 {
		s.CacheTTLHours = d.CacheTTLHours
	}
	if s.SourceTimeoutSeconds <= 0 {
		s.SourceTimeoutSeconds = d.SourceTimeoutSeconds
	}
	if s.SourceRequestBurst < 1 {
		s.SourceRequestBurst = d.SourceRequestBurst
	}
}
