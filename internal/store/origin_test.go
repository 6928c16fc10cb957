package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrigin_ChangeNotifications(t *testing.T) {
	ctx := context.Background()
	origin := NewOrigin(NewMemoryBackend())
	tabA := origin.Connect()
	tabB := origin.Connect()
	require.NotEqual(t, tabA.ID(), tabB.ID())

	var seenByA, seenByB []Change
	tabA.OnChange(func(c Change) { seenByA = append(seenByA, c) })
	cancelB := tabB.OnChange(func(c Change) { seenByB = append(seenByB, c) })

	require.NoError(t, tabA.Set(ctx, "users", []byte(`[]`)))
	assert.Empty(t, seenByA, "a client does not hear its own writes")
	require.Len(t, seenByB, 1)
	assert.Equal(t, Change{Key: "users", Value: []byte(`[]`), Source: tabA.ID()}, seenByB[0])

	got, ok, err := tabB.Get(ctx, "users")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, tabB.Remove(ctx, "users"))
	require.Len(t, seenByA, 1)
	assert.Equal(t, Change{Key: "users", Source: tabB.ID()}, seenByA[0])

	require.NoError(t, tabB.Clear(ctx))
	require.Len(t, seenByA, 2)
	assert.Equal(t, "", seenByA[1].Key)

	cancelB()
	require.NoError(t, tabA.Set(ctx, "courses", []byte(`[]`)))
	assert.Len(t, seenByB, 1)

	tabB.Close()
	tabB.OnChange(func(c Change) { seenByB = append(seenByB, c) })
	require.NoError(t, tabA.Set(ctx, "quizzes", []byte(`[]`)))
	assert.Len(t, seenByB, 1, "closed clients receive nothing")
}

func TestOrigin_KeysSharedAcrossClients(t *testing.T) {
	ctx := context.Background()
	origin := NewOrigin(NewMemoryBackend())
	tabA := origin.Connect()
	tabB := origin.Connect()

	require.NoError(t, tabA.Set(ctx, "users", []byte(`[]`)))
	keys, err := tabB.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, keys)
}
