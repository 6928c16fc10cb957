package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameID(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "int and json number", a: 1, b: json.Number("1"), want: true},
		{name: "int64 and float64", a: int64(3), b: float64(3), want: true},
		{name: "strings", a: "course_001", b: "course_001", want: true},
		{name: "numeric string is not a number", a: "1", b: 1, want: false},
		{name: "different numbers", a: 1, b: 2, want: false},
		{name: "nil never matches", a: nil, b: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameID(tt.a, tt.b))
		})
	}
}

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{name: "array of objects", raw: `[{"id": 1}, {"id": 2}]`, wantLen: 2},
		{name: "null", raw: `null`, wantLen: 0},
		{name: "object", raw: `{"id": 1}`, wantErr: true},
		{name: "array with a scalar", raw: `[1]`, wantErr: true},
		{name: "array with null", raw: `[null]`, wantErr: true},
		{name: "truncated", raw: `[{"id": 1}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRecords([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestFormatTime(t *testing.T) {
	at := time.Date(2025, 1, 2, 12, 30, 45, 123_000_000, time.FixedZone("JST", 9*60*60))
	assert.Equal(t, "2025-01-02T03:30:45.123Z", FormatTime(at))

	parsed, ok := ParseTime(FormatTime(at))
	require.True(t, ok)
	assert.True(t, parsed.Equal(at))

	_, ok = ParseTime("yesterday")
	assert.False(t, ok)
}

func TestKind_NextID(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	assert.Equal(t, int64(1), Users.nextID(nil, now))
	assert.Equal(t, int64(11), Users.nextID([]Record{
		{"id": json.Number("10")},
		{"id": json.Number("2")},
		{"id": "abc"},
	}, now))
	assert.Equal(t, "quiz_1700000000000", Quizzes.nextID(nil, now))
}

func TestKind_ParseID(t *testing.T) {
	assert.Equal(t, int64(3), Users.ParseID("3"))
	assert.Equal(t, "abc", Users.ParseID("abc"))
	assert.Equal(t, "course_001", Courses.ParseID("course_001"))
}
