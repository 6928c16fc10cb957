// Package query filters repository snapshots by free text and exact-match or
// derived-field filters.
package query

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/at-ishikawa/elearn/internal/repository"
)

// ActiveWindow is how recent a user's last activity must be for the user to count as active.
const ActiveWindow = 7 * 24 * time.Hour

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Loader is the read side of a repository.
type Loader interface {
	Load(ctx context.Context, forceRefresh bool) ([]repository.Record, error)
}

// Filter reports whether a record passes one predicate.
type Filter func(repository.Record) bool

// FieldEquals matches records whose field is exactly value.
// An empty value matches every record.
func FieldEquals(field, value string) Filter {
	return func(rec repository.Record) bool {
		if value == "" {
			return true
		}
		v, ok := rec[field]
		return ok && fmtValue(v) == value
	}
}

func fmtValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case interface{ String() string }:
		return val.String()
	}
	return ""
}

// UserStatus derives "active" or "inactive" from lastActivity, or createdAt
// when a user has never been active. A missing or unparseable timestamp is inactive.
func UserStatus(user repository.Record, now time.Time) string {
	field := "lastActivity"
	if user.String(field) == "" {
		field = "createdAt"
	}
	t, ok := user.Time(field)
	if !ok || now.Sub(t) > ActiveWindow {
		return StatusInactive
	}
	return StatusActive
}

// StatusEquals matches users whose derived status is status.
func StatusEquals(status string, now time.Time) Filter {
	return func(rec repository.Record) bool {
		return status == "" || UserStatus(rec, now) == status
	}
}

// Search returns the records where text occurs, case-insensitively, in any of
// fields and every filter passes. An empty text matches every record.
func Search(records []repository.Record, text string, fields []string, filters ...Filter) []repository.Record {
	needle := strings.ToLower(text)
	matched := make([]repository.Record, 0, len(records))
	for _, rec := range records {
		if !matchesText(rec, needle, fields) {
			continue
		}
		if !matchesAll(rec, filters) {
			continue
		}
		matched = append(matched, rec)
	}
	return matched
}

func matchesText(rec repository.Record, needle string, fields []string) bool {
	if needle == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(rec.String(field)), needle) {
			return true
		}
	}
	return false
}

func matchesAll(rec repository.Record, filters []Filter) bool {
	for _, filter := range filters {
		if !filter(rec) {
			return false
		}
	}
	return true
}

var (
	UserFields   = []string{"fullName", "email", "username"}
	CourseFields = []string{"title", "description", "instructor"}
	QuizFields   = []string{"title", "description"}
	LogFields    = []string{"action", "description", "user"}
)

type UserFilters struct {
	Role   string
	Status string
}

type CourseFilters struct {
	Category string
	Level    string
}

// Searcher runs searches against the current repository snapshots.
type Searcher struct {
	users   Loader
	courses Loader
	quizzes Loader
	logs    Loader
	now     func() time.Time
	logger  *slog.Logger
}

func NewSearcher(users, courses, quizzes, logs Loader, now func() time.Time) *Searcher {
	if now == nil {
		now = time.Now
	}
	return &Searcher{
		users:   users,
		courses: courses,
		quizzes: quizzes,
		logs:    logs,
		now:     now,
		logger:  slog.Default(),
	}
}

func (s *Searcher) load(ctx context.Context, name string, loader Loader) []repository.Record {
	records, err := loader.Load(ctx, false)
	if err != nil {
		s.logger.Error("Error searching",
			slog.String("collection", name),
			slog.Any("error", err),
		)
		return []repository.Record{}
	}
	return records
}

func (s *Searcher) SearchUsers(ctx context.Context, text string, filters UserFilters) []repository.Record {
	users := s.load(ctx, "users", s.users)
	return Search(users, text, UserFields,
		FieldEquals("role", filters.Role),
		StatusEquals(filters.Status, s.now()),
	)
}

func (s *Searcher) SearchCourses(ctx context.Context, text string, filters CourseFilters) []repository.Record {
	courses := s.load(ctx, "courses", s.courses)
	return Search(courses, text, CourseFields,
		FieldEquals("category", filters.Category),
		FieldEquals("level", filters.Level),
	)
}

func (s *Searcher) SearchQuizzes(ctx context.Context, text string, filters ...Filter) []repository.Record {
	return Search(s.load(ctx, "quizzes", s.quizzes), text, QuizFields, filters...)
}

func (s *Searcher) SearchLogs(ctx context.Context, text string, filters ...Filter) []repository.Record {
	return Search(s.load(ctx, "logs", s.logs), text, LogFields, filters...)
}
