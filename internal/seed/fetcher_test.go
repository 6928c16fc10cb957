package seed

import (
	"context"
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/elearn/internal/apperr"
)

func TestDirFetcher_Fetch(t *testing.T) {
	fsys := fstest.MapFS{
		"mock-users.json": &fstest.MapFile{Data: []byte(`[{"id":1}]`)},
	}

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{
			name: "existing document",
			path: "mock-users.json",
			want: `[{"id":1}]`,
		},
		{
			name:    "missing document",
			path:    "mock-courses.json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDirFetcher(fsys).Fetch(context.Background(), tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrRetrieval)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDirFetcher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDirFetcher(Embedded()).Fetch(ctx, "mock-users.json")
	assert.ErrorIs(t, err, apperr.ErrRetrieval)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedded(t *testing.T) {
	fetcher := NewDirFetcher(Embedded())

	for _, path := range []string{"mock-users.json", "mock-courses.json", "mock-quizzes.json", "mock-logs.json"} {
		t.Run(path, func(t *testing.T) {
			raw, err := fetcher.Fetch(context.Background(), path)
			require.NoError(t, err)

			var records []map[string]any
			require.NoError(t, json.Unmarshal(raw, &records))
			assert.NotEmpty(t, records)
		})
	}
}
