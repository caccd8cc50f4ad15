package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-vacancy-swipe/internal/logging"
)

func TestScreenShotDebugger_SaveAndPrune(t *testing.T) {
	dir := t.TempDir()
	s := NewScreenShotDebugger(dir, logging.Nop())

	path, err := s.Save("zero-links", []byte("\x89PNG fake"), "no links")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	old := filepath.Join(dir, "old.png")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0644))
	past := time.Now().Add(-72 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	removed, err := s.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(path)
	assert.NoError(t, err, "fresh capture must survive")
	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
}

func TestScreenShotDebugger_SaveEmpty(t *testing.T) {
	s := NewScreenShotDebugger(t.TempDir(), logging.Nop())
	_, err := s.Save("x", nil, "nothing")
	assert.Error(t, err)
}
