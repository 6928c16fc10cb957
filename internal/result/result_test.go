package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/elearn/internal/apperr"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]any
		err      error
		wantJSON string
	}{
		{
			name:     "success carries data",
			data:     map[string]any{"id": 1},
			wantJSON: `{"success":true,"data":{"id":1}}`,
		},
		{
			name:     "typed error uses its message",
			err:      apperr.NotFound("User not found"),
			wantJSON: `{"success":false,"error":"User not found","kind":"NotFound"}`,
		},
		{
			name:     "wrapped typed error keeps its kind",
			err:      fmt.Errorf("Delete() > %w", apperr.NotFound("Quiz not found")),
			wantJSON: `{"success":false,"error":"Delete() > NotFound: Quiz not found","kind":"NotFound"}`,
		},
		{
			name:     "plain error",
			err:      errors.New("disk full"),
			wantJSON: `{"success":false,"error":"disk full"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.data, tt.err)
			b, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(b))
		})
	}
}
