package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-vacancy-swipe/internal/logging"
	"go-vacancy-swipe/internal/models"
	"go-vacancy-swipe/internal/session"
	"go-vacancy-swipe/utils"
)

type failingPruner struct{ calls int }

func (f *failingPruner) Prune(time.Duration) (int, error) {
	f.calls++
	return 0, errors.New("permission denied")
}

func TestJanitor_RunOnce(t *testing.T) {
	ctx := context.Background()

	store := session.NewMemoryStore()
	stale := session.NewReview(1, []models.Candidate{{URL: "a"}})
	stale.UpdatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Put(ctx, 1, stale))
	require.NoError(t, store.Put(ctx, 2, session.NewReview(2, nil)))

	dir := t.TempDir()
	shots := utils.NewScreenShotDebugger(dir, logging.Nop())
	old := filepath.Join(dir, "old.png")
	require.NoError(t, os.WriteFile(old, []byte("png"), 0644))
	past := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	j := New(store, shots, Options{SessionMaxIdle: 24 * time.Hour, ScreenshotMaxAge: 7 * 24 * time.Hour}, logging.Nop())
	j.RunOnce(ctx)

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, session.ErrNoSession)
	_, err = store.Get(ctx, 2)
	assert.NoError(t, err)
	assert.NoFileExists(t, old)
}

func TestJanitor_ToleratesFailures(t *testing.T) {
	p := &failingPruner{}
	j := New(nil, p, Options{ScreenshotMaxAge: time.Hour}, logging.Nop())

	assert.NotPanics(t, func() { j.RunOnce(context.Background()) })
	assert.Equal(t, 1, p.calls)
}

func TestJanitor_StartStop(t *testing.T) {
	j := New(nil, nil, Options{Spec: "@every 1h"}, logging.Nop())
	require.NoError(t, j.Start(context.Background()))
	j.Stop()

	bad := New(nil, nil, Options{Spec: "not a spec"}, logging.Nop())
	assert.Error(t, bad.Start(context.Background()))
}
