// Package datasync exports the persisted collections into a single backup
// document and imports such documents back, keeping a safety snapshot of
// the replaced data.
package datasync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/elearn/internal/apperr"
	"github.com/at-ishikawa/elearn/internal/repository"
	"github.com/at-ishikawa/elearn/internal/store"
)

const (
	// FormatVersion is written to every exported document.
	FormatVersion = "1.0.0"

	SettingsKey  = "appSettings"
	BackupPrefix = "backup_"
)

// Document is the backup file layout.
type Document struct {
	Users      []repository.Record `json:"users" yaml:"users"`
	Courses    []repository.Record `json:"courses" yaml:"courses"`
	Quizzes    []repository.Record `json:"quizzes" yaml:"quizzes"`
	Logs       []repository.Record `json:"logs" yaml:"logs"`
	Settings   any                 `json:"settings" yaml:"settings"`
	ExportDate string              `json:"exportDate" yaml:"exportDate"`
	Version    string              `json:"version" yaml:"version"`
}

// WriteJSON writes the document as indented JSON.
func (d *Document) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("json.Encode() > %w", err)
	}
	return nil
}

// WriteYAML writes the document as YAML.
func (d *Document) WriteYAML(w io.Writer) error {
	out := Document{
		Users:      yamlRecords(d.Users),
		Courses:    yamlRecords(d.Courses),
		Quizzes:    yamlRecords(d.Quizzes),
		Logs:       yamlRecords(d.Logs),
		Settings:   yamlValue(d.Settings),
		ExportDate: d.ExportDate,
		Version:    d.Version,
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("yaml.Encode() > %w", err)
	}
	return encoder.Close()
}

func yamlRecords(records []repository.Record) []repository.Record {
	if records == nil {
		return nil
	}
	out := make([]repository.Record, len(records))
	for i, rec := range records {
		out[i] = yamlValue(map[string]any(rec)).(map[string]any)
	}
	return out
}

// yamlValue replaces json.Number, which yaml.v3 would emit as a quoted string.
func yamlValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = yamlValue(item)
		}
		return out
	case repository.Record:
		return yamlValue(map[string]any(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = yamlValue(item)
		}
		return out
	}
	return v
}

// FileName suggests a file name for a backup taken at t, e.g.
// elearning-backup-2025-06-01.json.
func FileName(t time.Time, ext string) string {
	return fmt.Sprintf("elearning-backup-%s.%s", t.UTC().Format("2006-01-02"), ext)
}

// Exporter reads the persisted collections.
type Exporter struct {
	store store.Store
	now   func() time.Time
}

func NewExporter(st store.Store, now func() time.Time) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{store: st, now: now}
}

// Export assembles the current store content. Absent keys are exported as null.
func (e *Exporter) Export(ctx context.Context) (*Document, error) {
	doc := Document{
		ExportDate: repository.FormatTime(e.now()),
		Version:    FormatVersion,
	}
	sections := []struct {
		key string
		dst any
	}{
		{repository.Users.StoreKey, &doc.Users},
		{repository.Courses.StoreKey, &doc.Courses},
		{repository.Quizzes.StoreKey, &doc.Quizzes},
		{repository.Logs.StoreKey, &doc.Logs},
		{SettingsKey, &doc.Settings},
	}
	for _, s := range sections {
		if _, err := store.GetJSON(ctx, e.store, s.key, s.dst); err != nil {
			return nil, fmt.Errorf("store.GetJSON(%s) > %w", s.key, err)
		}
	}
	return &doc, nil
}

// Invalidator drops cached values for a store key.
type Invalidator interface {
	Invalidate(key string)
}

// ImportResult tracks what an import wrote.
type ImportResult struct {
	BackupKey       string
	Users           int
	Courses         int
	Quizzes         int
	Logs            int
	LogsApplied     bool
	SettingsApplied bool
}

// Importer replaces the persisted collections with the content of a backup document.
type Importer struct {
	store  store.Store
	cache  Invalidator
	now    func() time.Time
	writer io.Writer
}

func NewImporter(st store.Store, cache Invalidator, now func() time.Time, writer io.Writer) *Importer {
	if now == nil {
		now = time.Now
	}
	if writer == nil {
		writer = io.Discard
	}
	return &Importer{store: st, cache: cache, now: now, writer: writer}
}

type section struct {
	key      string
	raw      json.RawMessage
	count    int
	required bool
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func parseDocument(raw []byte) ([]section, json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, apperr.Wrap(apperr.KindInvalidFormat, "Invalid backup file format", err)
	}

	var sections []section
	for _, kind := range repository.Kinds {
		sec := section{
			key:      kind.StoreKey,
			raw:      doc[kind.Name],
			required: kind.Name != repository.Logs.Name,
		}
		if !present(sec.raw) {
			if sec.required {
				return nil, nil, apperr.InvalidFormat("Invalid backup file format")
			}
			continue
		}
		records, err := repository.DecodeRecords(sec.raw)
		if err != nil {
			return nil, nil, apperr.Wrap(apperr.KindInvalidFormat, fmt.Sprintf("Invalid %s section", kind.Name), err)
		}
		sec.count = len(records)
		sections = append(sections, sec)
	}

	settings := doc["settings"]
	if !present(settings) {
		settings = nil
	}
	return sections, settings, nil
}

// Import validates raw and, only if it is valid, snapshots the current
// collections under a new backup key before overwriting them.
// users, courses and quizzes are mandatory; logs and settings are applied when present.
func (imp *Importer) Import(ctx context.Context, raw []byte) (*ImportResult, error) {
	sections, settings, err := parseDocument(raw)
	if err != nil {
		return nil, err
	}

	backupKey, err := imp.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot() > %w", err)
	}
	fmt.Fprintf(imp.writer, "  [BACKUP]  %s\n", backupKey)

	result := ImportResult{BackupKey: backupKey}
	for _, sec := range sections {
		if err := imp.write(ctx, sec.key, sec.raw); err != nil {
			return nil, err
		}
		fmt.Fprintf(imp.writer, "  [IMPORT]  %s (%d)\n", sec.key, sec.count)
		switch sec.key {
		case repository.Users.StoreKey:
			result.Users = sec.count
		case repository.Courses.StoreKey:
			result.Courses = sec.count
		case repository.Quizzes.StoreKey:
			result.Quizzes = sec.count
		case repository.Logs.StoreKey:
			result.Logs = sec.count
			result.LogsApplied = true
		}
	}
	if settings != nil {
		if err := imp.write(ctx, SettingsKey, settings); err != nil {
			return nil, err
		}
		fmt.Fprintf(imp.writer, "  [IMPORT]  %s\n", SettingsKey)
		result.SettingsApplied = true
	}
	return &result, nil
}

func (imp *Importer) write(ctx context.Context, key string, raw json.RawMessage) error {
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return apperr.Wrap(apperr.KindInvalidFormat, fmt.Sprintf("Invalid %s section", key), err)
	}
	if err := imp.store.Set(ctx, key, compact.Bytes()); err != nil {
		return fmt.Errorf("store.Set(%s) > %w", key, err)
	}
	if imp.cache != nil {
		imp.cache.Invalidate(key)
	}
	return nil
}

// snapshot stores the current collections under backup_<epoch millis>.
// An existing key is never overwritten; the timestamp is bumped instead.
func (imp *Importer) snapshot(ctx context.Context) (string, error) {
	current := make(map[string]json.RawMessage, len(repository.Kinds))
	for _, kind := range repository.Kinds {
		raw, ok, err := imp.store.Get(ctx, kind.StoreKey)
		if err != nil {
			return "", fmt.Errorf("store.Get(%s) > %w", kind.StoreKey, err)
		}
		if !ok || !json.Valid(raw) {
			current[kind.Name] = json.RawMessage("null")
			continue
		}
		current[kind.Name] = raw
	}
	value, err := json.Marshal(current)
	if err != nil {
		return "", fmt.Errorf("json.Marshal() > %w", err)
	}

	millis := imp.now().UnixMilli()
	for {
		key := BackupPrefix + strconv.FormatInt(millis, 10)
		_, exists, err := imp.store.Get(ctx, key)
		if err != nil {
			return "", fmt.Errorf("store.Get(%s) > %w", key, err)
		}
		if !exists {
			if err := imp.store.Set(ctx, key, value); err != nil {
				return "", fmt.Errorf("store.Set(%s) > %w", key, err)
			}
			return key, nil
		}
		millis++
	}
}

// Backups lists the safety snapshot keys, oldest first.
func (imp *Importer) Backups(ctx context.Context) ([]string, error) {
	keys, err := imp.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.Keys() > %w", err)
	}

	type backup struct {
		key    string
		millis int64
	}
	var backups []backup
	for _, key := range keys {
		suffix, ok := strings.CutPrefix(key, BackupPrefix)
		if !ok {
			continue
		}
		millis, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil {
			continue
		}
		backups = append(backups, backup{key: key, millis: millis})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].millis < backups[j].millis
	})

	result := make([]string, 0, len(backups))
	for _, b := range backups {
		result = append(result, b.key)
	}
	return result, nil
}

// Restore writes the collections held by a safety snapshot back to their keys.
// Collections that were absent when the snapshot was taken are left as they are.
func (imp *Importer) Restore(ctx context.Context, key string) error {
	if !strings.HasPrefix(key, BackupPrefix) {
		return apperr.Validation(fmt.Sprintf("not a backup key: %s", key))
	}
	var snapshot map[string]json.RawMessage
	ok, err := store.GetJSON(ctx, imp.store, key, &snapshot)
	if err != nil {
		return fmt.Errorf("store.GetJSON(%s) > %w", key, err)
	}
	if !ok {
		return apperr.NotFound(fmt.Sprintf("Backup not found: %s", key))
	}

	for _, kind := range repository.Kinds {
		raw := snapshot[kind.Name]
		if !present(raw) {
			continue
		}
		if err := imp.write(ctx, kind.StoreKey, raw); err != nil {
			return err
		}
		fmt.Fprintf(imp.writer, "  [RESTORE]  %s\n", kind.StoreKey)
	}
	return nil
}
