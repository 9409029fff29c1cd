// Package store persists the canonical game-state snapshot.
//
// A single JSON file holds the latest snapshot; it is overwritten in full
// after every accepted update. Persistence is best-effort: write and read
// failures are logged and the in-memory snapshot stays authoritative for
// the running process.
package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/CodeforSusono/baseball-broadcast-board/internal/metrics"
	"github.com/CodeforSusono/baseball-broadcast-board/internal/scoreboard"
)

const stateFileName = "current_game.json"

// Store holds the in-memory snapshot and its durable file location.
// All access goes through the session actor, so no locking is needed.
type Store struct {
	path    string
	current *scoreboard.GameState
}

// New creates a store backed by <dataDir>/current_game.json and primes the
// in-memory snapshot from the file if one exists.
func New(dataDir string) *Store {
	s := &Store{path: filepath.Join(dataDir, stateFileName)}
	if state, ok := s.Load(); ok {
		s.current = state
	}
	return s
}

// Load reads the snapshot file. A missing or unparseable file is treated
// as absent, not fatal.
func (s *Store) Load() (*scoreboard.GameState, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Failed to read game state file", "path", s.path, "error", err)
			metrics.PersistenceErrors.Inc()
		}
		return nil, false
	}

	var state scoreboard.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		slog.Error("Corrupt game state file, treating as absent", "path", s.path, "error", err)
		metrics.PersistenceErrors.Inc()
		return nil, false
	}

	slog.Debug("Game state loaded from file", "path", s.path)
	return &state, true
}

// Save replaces the in-memory snapshot and synchronously overwrites the
// snapshot file. Persistence failures are logged, never returned: the
// in-memory state remains the source of truth for this session.
func (s *Store) Save(state *scoreboard.GameState) {
	s.current = state

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		slog.Error("Failed to create data directory", "path", s.path, "error", err)
		metrics.PersistenceErrors.Inc()
		return
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		slog.Error("Failed to encode game state", "error", err)
		metrics.PersistenceErrors.Inc()
		return
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		slog.Error("Failed to write game state file", "path", s.path, "error", err)
		metrics.PersistenceErrors.Inc()
		return
	}

	slog.Debug("Game state saved to file", "path", s.path)
}

// Current returns the in-memory snapshot, absent until the first update
// or successful load.
func (s *Store) Current() (*scoreboard.GameState, bool) {
	if s.current == nil {
		return nil, false
	}
	return s.current, true
}

// Replace swaps the in-memory snapshot without touching durable storage.
func (s *Store) Replace(state *scoreboard.GameState) {
	s.current = state
}
