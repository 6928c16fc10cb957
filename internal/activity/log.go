// Package activity records activity log entries into the two bounded logs:
// the repository log under "logs" (most recent first) and the session log
// under "activityLogs" (oldest first).
package activity

// DefaultCapacity is the maximum number of entries a log keeps.
const DefaultCapacity = 1000

// End names one end of a log sequence.
type End int

const (
	Front End = iota
	Back
)

// BoundedLog inserts at InsertAt and, once the log exceeds Capacity, drops
// entries from TrimAt. Both logs in this package trim the end opposite the
// insertion, so the retained entries are always the most recent ones.
type BoundedLog[T any] struct {
	Capacity int
	InsertAt End
	TrimAt   End
}

// Insert returns entries with entry added, truncated to Capacity.
// entries is never modified.
func (l BoundedLog[T]) Insert(entries []T, entry T) []T {
	capacity := l.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	out := make([]T, 0, len(entries)+1)
	if l.InsertAt == Front {
		out = append(out, entry)
		out = append(out, entries...)
	} else {
		out = append(out, entries...)
		out = append(out, entry)
	}

	if len(out) <= capacity {
		return out
	}
	if l.TrimAt == Front {
		return out[len(out)-capacity:]
	}
	return out[:capacity]
}
