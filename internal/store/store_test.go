package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeforSusono/baseball-broadcast-board/internal/scoreboard"
)

func testState() *scoreboard.GameState {
	return &scoreboard.GameState{
		GameTitle:   "Spring League",
		TeamTop:     "Tokyo",
		TeamBottom:  "Yokohama",
		GameInning:  4,
		Top:         true,
		FirstBase:   true,
		BallCount:   2,
		StrikeCount: 1,
		ScoreTop:    3,
		ScoreBottom: 1,
		LastInning:  9,
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	state := testState()
	s.Save(state)

	loaded, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, state, loaded)
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := New(t.TempDir())

	_, ok := s.Load()
	assert.False(t, ok)

	_, ok = s.Current()
	assert.False(t, ok)
}

func TestStore_CorruptFileTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, stateFileName), []byte("{not json"), 0o644))

	s := New(dir)
	_, ok := s.Load()
	assert.False(t, ok)
}

func TestStore_NewPrimesFromExistingFile(t *testing.T) {
	dir := t.TempDir()
	first := New(dir)
	first.Save(testState())

	second := New(dir)
	current, ok := second.Current()
	require.True(t, ok)
	assert.Equal(t, testState(), current)
}

func TestStore_SaveCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := New(dir)

	s.Save(testState())

	loaded, ok := s.Load()
	require.True(t, ok)
	assert.Equal(t, "Spring League", loaded.GameTitle)
}

func TestStore_ReplaceDoesNotPersist(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	s.Replace(testState())

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Spring League", current.GameTitle)

	_, err := os.Stat(filepath.Join(dir, stateFileName))
	assert.True(t, os.IsNotExist(err))
}
