package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same kind",
			err:    NotFound("User not found"),
			target: ErrNotFound,
			want:   true,
		},
		{
			name:   "wrapped with fmt.Errorf",
			err:    fmt.Errorf("Update() > %w", NotFound("Course not found")),
			target: ErrNotFound,
			want:   true,
		},
		{
			name:   "different kind",
			err:    InvalidFormat("Invalid backup file format"),
			target: ErrNotFound,
			want:   false,
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			target: ErrStore,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestKindOf(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := fmt.Errorf("saveToStorage(users) > %w", Store("write users", cause))

	assert.Equal(t, KindStore, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Kind(""), KindOf(cause))
	assert.Equal(t, "StoreError: write users: quota exceeded", errors.Unwrap(err).Error())
}
