package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/elearn/internal/repository"
	"github.com/at-ishikawa/elearn/internal/store"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func newManager(t *testing.T, origin *store.Origin) *Manager {
	t.Helper()
	m, err := New(context.Background(), Options{Origin: origin, Now: fixedClock})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestNew_InitializesStorage(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, "courses", []byte(`[{"courseId":"course_keep"}]`)))

	m := newManager(t, store.NewOrigin(backend))

	keys, err := backend.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"appSettings", "courses", "logs", "quizzes", "userSessions", "users"}, keys)

	courses, _, err := backend.Get(ctx, "courses")
	require.NoError(t, err)
	assert.Equal(t, `[{"courseId":"course_keep"}]`, string(courses))

	settings, err := m.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestManager_LoadsEmbeddedSeed(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)

	users, err := m.Users.Load(ctx, false)
	require.NoError(t, err)
	assert.Len(t, users, 4)

	courses, err := m.Courses.Load(ctx, false)
	require.NoError(t, err)
	assert.NotEmpty(t, courses)

	report, err := m.Stats.Aggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Users.Total)
	assert.Equal(t, 1, report.Users.Admins)
}

func TestManager_OtherContextWriteInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	origin := store.NewOrigin(store.NewMemoryBackend())
	tabA := newManager(t, origin)
	tabB := newManager(t, origin)

	_, err := tabA.Users.Load(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, tabA.CacheInfo().Count)
	assert.Equal(t, "users", tabA.CacheInfo().Entries[0].Key)

	created, err := tabB.Users.Create(ctx, repository.Record{"username": "from-b"})
	require.NoError(t, err)
	assert.Equal(t, 0, tabA.CacheInfo().Count)

	found, err := tabA.Users.Find(ctx, created["id"])
	require.NoError(t, err)
	assert.Equal(t, "from-b", found["username"])
}

func TestManager_ClearStorage(t *testing.T) {
	ctx := context.Background()
	origin := store.NewOrigin(store.NewMemoryBackend())
	m := newManager(t, origin)

	_, err := m.Users.Create(ctx, repository.Record{"username": "temp"})
	require.NoError(t, err)
	require.NoError(t, m.Store().Set(ctx, "backup_1", []byte(`{}`)))
	_, err = m.Courses.Load(ctx, false)
	require.NoError(t, err)

	require.NoError(t, m.ClearStorage(ctx))
	assert.Equal(t, 0, m.CacheInfo().Count)

	keys, err := m.Store().Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"appSettings", "courses", "logs", "quizzes", "userSessions", "users"}, keys)

	users, _, err := m.Store().Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(users))
}

func TestManager_RemoveFromStorage(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)

	_, err := m.Users.Load(ctx, false)
	require.NoError(t, err)
	require.NoError(t, m.RemoveFromStorage(ctx, "users"))

	_, ok, err := m.Store().Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, m.CacheInfo().Count)

	m.ClearCache()
	assert.Equal(t, 0, m.CacheInfo().Count)
}

func TestManager_Repository(t *testing.T) {
	m := newManager(t, nil)
	for _, kind := range repository.Kinds {
		repo, ok := m.Repository(kind.Name)
		require.True(t, ok, kind.Name)
		assert.Equal(t, kind, repo.Kind())
	}
	_, ok := m.Repository("sessions")
	assert.False(t, ok)
}
