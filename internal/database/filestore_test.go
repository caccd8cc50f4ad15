package database

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-vacancy-swipe/internal/logging"
	"go-vacancy-swipe/internal/models"
	"go-vacancy-swipe/internal/session"
)

func newFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFileStore(dir, logging.Nop())
	require.NoError(t, err)
	return fs, dir
}

func vacancy(url string) models.SavedVacancy {
	return models.SavedVacancy{Title: "Go dev", URL: url, Summary: "remote"}
}

func TestFileStore_EnsureUser(t *testing.T) {
	ctx := context.Background()
	fs, _ := newFileStore(t)

	u, err := fs.EnsureUser(ctx, models.User{ID: 1, FirstName: "Olena"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSearches, u.SearchesLeft)
	assert.False(t, u.RegisteredAt.IsZero())
	assert.Empty(t, u.SavedVacancies)

	_, err = fs.ConsumeSearch(ctx, 1)
	require.NoError(t, err)

	again, err := fs.EnsureUser(ctx, models.User{ID: 1, FirstName: "Olena K"})
	require.NoError(t, err)
	assert.Equal(t, "Olena K", again.FirstName)
	assert.Equal(t, models.DefaultSearches-1, again.SearchesLeft, "existing users keep their quota")
}

func TestFileStore_AppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fs, _ := newFileStore(t)
	_, err := fs.EnsureUser(ctx, models.User{ID: 1})
	require.NoError(t, err)

	inserted, err := fs.Append(ctx, 1, vacancy("https://www.work.ua/jobs/1/"))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = fs.Append(ctx, 1, vacancy("https://www.work.ua/jobs/1/"))
	require.NoError(t, err)
	assert.False(t, inserted)

	list, err := fs.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFileStore_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	fs, _ := newFileStore(t)
	_, err := fs.EnsureUser(ctx, models.User{ID: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	insertedCount := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := fs.Append(ctx, 1, vacancy("https://robota.ua/vacancy1"))
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				insertedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, insertedCount)
	list, err := fs.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFileStore_ListOrderAndClear(t *testing.T) {
	ctx := context.Background()
	fs, _ := newFileStore(t)
	_, err := fs.EnsureUser(ctx, models.User{ID: 1})
	require.NoError(t, err)

	urls := []string{"https://a/vacancy1", "https://b/vacancy2", "https://c/vacancy3"}
	for _, u := range urls {
		_, err := fs.Append(ctx, 1, vacancy(u))
		require.NoError(t, err)
	}

	list, err := fs.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, v := range list {
		assert.Equal(t, urls[i], v.URL)
		assert.False(t, v.SavedAt.IsZero())
	}

	require.NoError(t, fs.Clear(ctx, 1))
	list, err = fs.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFileStore_Persistence(t *testing.T) {
	ctx := context.Background()
	fs, dir := newFileStore(t)
	_, err := fs.EnsureUser(ctx, models.User{ID: 5, FirstName: "Taras"})
	require.NoError(t, err)
	_, err = fs.Append(ctx, 5, vacancy("https://www.work.ua/jobs/5/"))
	require.NoError(t, err)

	reopened, err := NewFileStore(dir, logging.Nop())
	require.NoError(t, err)

	u, err := reopened.GetUser(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Taras", u.FirstName)
	require.Len(t, u.SavedVacancies, 1)
	assert.Equal(t, "https://www.work.ua/jobs/5/", u.SavedVacancies[0].URL)
}

func TestFileStore_ConsumeSearch(t *testing.T) {
	ctx := context.Background()
	fs, _ := newFileStore(t)

	_, err := fs.ConsumeSearch(ctx, 9)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = fs.EnsureUser(ctx, models.User{ID: 9, SearchesLeft: 1})
	require.NoError(t, err)

	left, err := fs.ConsumeSearch(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, left)

	_, err = fs.ConsumeSearch(ctx, 9)
	assert.ErrorIs(t, err, ErrNoSearchesLeft)
}

func TestFileStore_UnknownUser(t *testing.T) {
	ctx := context.Background()
	fs, _ := newFileStore(t)

	_, err := fs.GetUser(ctx, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = fs.Append(ctx, 404, vacancy("x"))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// Accepting the same listing from two review sessions stores it once.
func TestFileStore_AcceptAcrossSessions(t *testing.T) {
	ctx := context.Background()
	fs, _ := newFileStore(t)
	_, err := fs.EnsureUser(ctx, models.User{ID: 3})
	require.NoError(t, err)

	cand := []models.Candidate{{Title: "Go dev", URL: "https://www.work.ua/jobs/777/", Summary: "ok"}}

	first := session.NewReview(3, cand)
	inserted, err := first.Accept(ctx, fs, 3)
	require.NoError(t, err)
	assert.True(t, inserted)

	second := session.NewReview(3, cand)
	inserted, err = second.Accept(ctx, fs, 3)
	require.NoError(t, err)
	assert.False(t, inserted)

	list, err := fs.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
