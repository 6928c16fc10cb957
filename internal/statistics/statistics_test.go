package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/elearn/internal/repository"
)

type staticLoader struct {
	records []repository.Record
	err     error
}

func (l staticLoader) Load(context.Context, bool) ([]repository.Record, error) {
	return l.records, l.err
}

func TestCalculate(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	users := []repository.Record{
		{"id": 1, "role": "admin", "lastActivity": "2025-06-10T08:00:00.000Z"},
		{"id": 2, "role": "teacher", "lastActivity": "2025-05-01T08:00:00.000Z"},
		{"id": 3, "role": "student", "createdAt": "2025-06-05T08:00:00.000Z"},
		{"id": 4, "role": "student"},
		{"id": 5, "role": "guest"},
	}
	courses := []repository.Record{
		{"courseId": "course_001", "status": "published"},
		{"courseId": "course_002", "status": "published"},
		{"courseId": "course_003", "status": "draft"},
		{"courseId": "course_004", "status": "archived"},
	}
	quizzes := []repository.Record{
		{"id": "quiz_001", "deadline": "2030-12-31T23:59:59.000Z"},
		{"id": "quiz_002", "deadline": "2024-12-31T23:59:59.000Z"},
		{"id": "quiz_003"},
	}
	logs := []repository.Record{
		{"id": "log_1", "timestamp": "2025-06-10T00:00:00.000Z"},
		{"id": "log_2", "timestamp": "2025-06-10T23:59:59.999Z"},
		{"id": "log_3", "timestamp": "2025-06-09T23:59:59.999Z"},
		{"id": "log_4", "timestamp": "not a date"},
	}

	got := Calculate(users, courses, quizzes, logs, now)
	assert.Equal(t, Report{
		Users:      UserStatistics{Total: 5, Students: 2, Teachers: 1, Admins: 1, Active: 2},
		Courses:    CourseStatistics{Total: 4, Published: 2, Draft: 1},
		Quizzes:    QuizStatistics{Total: 3, Active: 1},
		Activities: ActivityStatistics{Total: 4, Today: 2},
	}, got)
}

func TestAggregator_Aggregate(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		users    staticLoader
		courses  staticLoader
		expected Report
	}{
		{
			name:    "all loads succeed",
			users:   staticLoader{records: []repository.Record{{"role": "student"}}},
			courses: staticLoader{records: []repository.Record{{"status": "draft"}}},
			expected: Report{
				Users:   UserStatistics{Total: 1, Students: 1},
				Courses: CourseStatistics{Total: 1, Draft: 1},
			},
		},
		{
			name:    "a failed load degrades only its own slice",
			users:   staticLoader{records: []repository.Record{}, err: errors.New("offline")},
			courses: staticLoader{records: []repository.Record{{"status": "published"}}},
			expected: Report{
				Courses: CourseStatistics{Total: 1, Published: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAggregator(tt.users, tt.courses, staticLoader{}, staticLoader{}, func() time.Time { return now })
			got, err := a.Aggregate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAggregator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAggregator(staticLoader{}, staticLoader{}, staticLoader{}, staticLoader{}, nil)
	_, err := a.Aggregate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderMarkdown(t *testing.T) {
	report := Report{
		Users:      UserStatistics{Total: 4, Students: 2, Teachers: 1, Admins: 1, Active: 3},
		Courses:    CourseStatistics{Total: 3, Published: 2, Draft: 1},
		Quizzes:    QuizStatistics{Total: 2, Active: 1},
		Activities: ActivityStatistics{Total: 10, Today: 4},
	}

	content, err := RenderMarkdown(report, time.Date(2025, 6, 10, 15, 4, 0, 0, time.UTC), "")
	require.NoError(t, err)
	got := string(content)
	assert.Contains(t, got, "# E-learning Statistics Report\n\nGenerated at 2025-06-10 15:04\n")
	assert.Contains(t, got, "## Users\n\n| Metric | Count |\n|---|---|\n| Total | 4 |\n| Students | 2 |")
	assert.Contains(t, got, "| Active (7 days) | 3 |")
	assert.Contains(t, got, "## Quizzes\n\n| Metric | Count |\n|---|---|\n| Total | 2 |\n| Open | 1 |")
	assert.Contains(t, got, "| Today | 4 |")
}
