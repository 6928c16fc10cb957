package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"
	"time"
)

// TimeFormat is the ISO-8601 layout used for createdAt, updatedAt and log timestamps.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FormatTime formats t in UTC with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses an ISO-8601 timestamp as written by FormatTime or by the seed documents.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Record is one entity instance: a user, course, quiz or log entry.
type Record map[string]any

// String returns the field as a string, or "" if it is absent or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Time parses the field as a timestamp.
func (r Record) Time(field string) (time.Time, bool) {
	return ParseTime(r.String(field))
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	return maps.Clone(r)
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}

// DecodeRecords parses a JSON array of objects. Numbers are kept as json.Number
// so that integer identifiers survive a round trip unchanged.
func DecodeRecords(raw []byte) ([]Record, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var records []Record
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("json.Decode > %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("element %d is not an object", i)
		}
	}
	return records, nil
}

// asInt64 reports whether v is a whole number and returns it.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil && f == math.Trunc(f) {
			return int64(f), true
		}
	}
	return 0, false
}

// idKey normalizes an identifier so that 1, int64(1), 1.0 and json.Number("1")
// compare equal while the string "1" does not.
func idKey(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return "s:" + id, true
	case nil:
		return "", false
	}
	if n, ok := asInt64(v); ok {
		return "n:" + strconv.FormatInt(n, 10), true
	}
	switch n := v.(type) {
	case float64:
		return "n:" + strconv.FormatFloat(n, 'g', -1, 64), true
	case json.Number:
		return "n:" + n.String(), true
	}
	return "", false
}

// SameID reports whether two identifiers are equal.
func SameID(a, b any) bool {
	ka, ok := idKey(a)
	if !ok {
		return false
	}
	kb, ok := idKey(b)
	return ok && ka == kb
}
