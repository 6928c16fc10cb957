package repository

import (
	"fmt"
	"strconv"
	"time"
)

// IDPolicy selects how Create assigns identifiers.
type IDPolicy int

const (
	// NumericID assigns max(existing IDs ∪ {0}) + 1.
	NumericID IDPolicy = iota
	// PrefixedID assigns "<prefix>_<epoch millis>".
	PrefixedID
)

// Kind describes one entity kind and where its data lives.
type Kind struct {
	Name     string
	Label    string
	StoreKey string
	SeedPath string
	IDField  string
	IDPolicy IDPolicy
	IDPrefix string
}

var (
	Users = Kind{
		Name:     "users",
		Label:    "User",
		StoreKey: "users",
		SeedPath: "mock-users.json",
		IDField:  "id",
		IDPolicy: NumericID,
	}
	Courses = Kind{
		Name:     "courses",
		Label:    "Course",
		StoreKey: "courses",
		SeedPath: "mock-courses.json",
		IDField:  "courseId",
		IDPolicy: PrefixedID,
		IDPrefix: "course",
	}
	Quizzes = Kind{
		Name:     "quizzes",
		Label:    "Quiz",
		StoreKey: "quizzes",
		SeedPath: "mock-quizzes.json",
		IDField:  "id",
		IDPolicy: PrefixedID,
		IDPrefix: "quiz",
	}
	Logs = Kind{
		Name:     "logs",
		Label:    "Log",
		StoreKey: "logs",
		SeedPath: "mock-logs.json",
		IDField:  "id",
		IDPolicy: PrefixedID,
		IDPrefix: "log",
	}
)

// Kinds lists every entity kind in a stable order.
var Kinds = []Kind{Users, Courses, Quizzes, Logs}

// KindByName looks up a kind by its name, e.g. "courses".
func KindByName(name string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Name == name {
			return k, true
		}
	}
	return Kind{}, false
}

// ParseID converts an identifier typed by a person into the type stored for this kind.
func (k Kind) ParseID(s string) any {
	if k.IDPolicy == NumericID {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	return s
}

func (k Kind) nextID(records []Record, now time.Time) any {
	if k.IDPolicy == PrefixedID {
		return fmt.Sprintf("%s_%d", k.IDPrefix, now.UnixMilli())
	}

	var maxID int64
	for _, rec := range records {
		if n, ok := asInt64(rec[k.IDField]); ok && n > maxID {
			maxID = n
		}
	}
	return maxID + 1
}
