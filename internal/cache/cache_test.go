package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/elearn/internal/store"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestCache_Get(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantHit bool
	}{
		{name: "fresh entry", advance: 0, wantHit: true},
		{name: "just before expiry", advance: DefaultTTL - time.Millisecond, wantHit: true},
		{name: "exactly at TTL is stale", advance: DefaultTTL, wantHit: false},
		{name: "long expired", advance: time.Hour, wantHit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
			c := NewWithClock(0, clock.Now)

			c.Set("users", []any{"a"})
			clock.Advance(tt.advance)

			got, ok := c.Get("users")
			assert.Equal(t, tt.wantHit, ok)
			if tt.wantHit {
				assert.Equal(t, []any{"a"}, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestCache_SetOverwritesAndRestamps(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewWithClock(time.Minute, clock.Now)

	c.Set("courses", 1)
	clock.Advance(50 * time.Second)
	c.Set("courses", 2)
	clock.Advance(50 * time.Second)

	got, ok := c.Get("courses")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestCache_InvalidateAndClear(t *testing.T) {
	c := New(time.Minute)
	c.Set("users", 1)
	c.Set("courses", 2)

	c.Invalidate("users")
	_, ok := c.Get("users")
	assert.False(t, ok)
	_, ok = c.Get("courses")
	assert.True(t, ok)

	c.Clear()
	_, ok = c.Get("courses")
	assert.False(t, ok)
}

func TestCache_Watch(t *testing.T) {
	ctx := context.Background()
	origin := store.NewOrigin(store.NewMemoryBackend())
	tabA := origin.Connect()
	tabB := origin.Connect()

	c := New(time.Minute)
	stop := c.Watch(tabA)
	c.Set("users", 1)
	c.Set("courses", 2)

	require.NoError(t, tabB.Set(ctx, "users", []byte(`[]`)))
	_, ok := c.Get("users")
	assert.False(t, ok, "a write from another client invalidates the key")
	_, ok = c.Get("courses")
	assert.True(t, ok, "other keys are untouched")

	require.NoError(t, tabA.Set(ctx, "courses", []byte(`[]`)))
	_, ok = c.Get("courses")
	assert.True(t, ok, "own writes are not delivered as change notifications")

	require.NoError(t, tabB.Clear(ctx))
	_, ok = c.Get("courses")
	assert.False(t, ok)

	stop()
	c.Set("quizzes", 3)
	require.NoError(t, tabB.Set(ctx, "quizzes", []byte(`[]`)))
	_, ok = c.Get("quizzes")
	assert.True(t, ok)
}

func TestCache_Info(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewWithClock(time.Minute, clock.Now)

	c.Set("users", []string{"a"})
	clock.Advance(10 * time.Second)
	c.Set("courses", map[string]int{"n": 1})

	info := c.Info()
	assert.Equal(t, 2, info.Count)
	assert.Equal(t, []EntryInfo{
		{Key: "courses", Size: len(`{"n":1}`), Age: 0},
		{Key: "users", Size: len(`["a"]`), Age: 10000},
	}, info.Entries)
	assert.Equal(t, len(`{"n":1}`)+len(`["a"]`), info.TotalSize)

	clock.Advance(1500 * time.Microsecond)
	b, err := json.Marshal(c.Info().Entries)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":"courses","size":7,"age":1},{"key":"users","size":5,"age":10001}]`, string(b))
}
