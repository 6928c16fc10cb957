// Package app wires the data layer of one context: a store client, the
// freshness cache subscribed to it, the four repositories and the services
// built on top of them.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/at-ishikawa/elearn/internal/activity"
	"github.com/at-ishikawa/elearn/internal/cache"
	"github.com/at-ishikawa/elearn/internal/datasync"
	"github.com/at-ishikawa/elearn/internal/query"
	"github.com/at-ishikawa/elearn/internal/repository"
	"github.com/at-ishikawa/elearn/internal/seed"
	"github.com/at-ishikawa/elearn/internal/statistics"
	"github.com/at-ishikawa/elearn/internal/store"
)

const (
	CurrentUserKey  = "currentUser"
	UserSessionsKey = "userSessions"
)

// Settings are the application preferences stored under appSettings.
type Settings struct {
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
	AutoSave      bool   `json:"autoSave"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:         "light",
		Language:      "vi",
		Notifications: true,
		AutoSave:      true,
	}
}

type Options struct {
	// Origin is the shared store. A memory-backed origin is used when nil.
	Origin   *store.Origin
	Fetcher  seed.Fetcher
	CacheTTL time.Duration
	Activity activity.Config
	Now      func() time.Time
	Logger   *slog.Logger
	// Output receives import and restore progress lines.
	Output io.Writer
}

// Manager is the process-wide data context. Create one with New and Close it when done.
type Manager struct {
	client  *store.Client
	cache   *cache.Cache
	logger  *slog.Logger
	unwatch func()

	Users    *repository.Repository
	Courses  *repository.Repository
	Quizzes  *repository.Repository
	Logs     *repository.Repository
	Activity *activity.Writer
	Sessions *activity.SessionLog
	Search   *query.Searcher
	Stats    *statistics.Aggregator
	Exporter *datasync.Exporter
	Importer *datasync.Importer
}

// New connects to the origin and initializes any missing store keys.
func New(ctx context.Context, opts Options) (*Manager, error) {
	if opts.Origin == nil {
		opts.Origin = store.NewOrigin(store.NewMemoryBackend())
	}
	if opts.Fetcher == nil {
		opts.Fetcher = seed.NewDirFetcher(seed.Embedded())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	client := opts.Origin.Connect()
	c := cache.NewWithClock(opts.CacheTTL, opts.Now)
	m := &Manager{
		client:  client,
		cache:   c,
		logger:  opts.Logger,
		unwatch: c.Watch(client),
	}

	newRepository := func(kind repository.Kind) *repository.Repository {
		return repository.New(kind, client, c, opts.Fetcher,
			repository.WithClock(opts.Now),
			repository.WithLogger(opts.Logger),
		)
	}
	m.Users = newRepository(repository.Users)
	m.Courses = newRepository(repository.Courses)
	m.Quizzes = newRepository(repository.Quizzes)
	m.Logs = newRepository(repository.Logs)

	m.Activity = activity.NewWriter(m.Logs, opts.Activity, opts.Now)
	m.Sessions = activity.NewSessionLog(client, opts.Activity.Capacity, opts.Now)
	m.Search = query.NewSearcher(m.Users, m.Courses, m.Quizzes, m.Logs, opts.Now)
	m.Stats = statistics.NewAggregator(m.Users, m.Courses, m.Quizzes, m.Logs, opts.Now)
	m.Exporter = datasync.NewExporter(client, opts.Now)
	m.Importer = datasync.NewImporter(client, c, opts.Now, opts.Output)

	if err := m.initializeStorage(ctx); err != nil {
		m.Close()
		return nil, fmt.Errorf("initializeStorage() > %w", err)
	}
	return m, nil
}

// initializeStorage writes defaults for the keys that are absent.
func (m *Manager) initializeStorage(ctx context.Context) error {
	defaults := []struct {
		key   string
		value any
	}{
		{repository.Users.StoreKey, []any{}},
		{repository.Courses.StoreKey, []any{}},
		{repository.Quizzes.StoreKey, []any{}},
		{repository.Logs.StoreKey, []any{}},
		{UserSessionsKey, []any{}},
		{datasync.SettingsKey, DefaultSettings()},
	}
	for _, d := range defaults {
		_, ok, err := m.client.Get(ctx, d.key)
		if err != nil {
			return fmt.Errorf("client.Get(%s) > %w", d.key, err)
		}
		if ok {
			continue
		}
		if err := store.SetJSON(ctx, m.client, d.key, d.value); err != nil {
			return fmt.Errorf("store.SetJSON(%s) > %w", d.key, err)
		}
	}
	return nil
}

// Repository returns the repository for the named kind.
func (m *Manager) Repository(name string) (*repository.Repository, bool) {
	switch name {
	case repository.Users.Name:
		return m.Users, true
	case repository.Courses.Name:
		return m.Courses, true
	case repository.Quizzes.Name:
		return m.Quizzes, true
	case repository.Logs.Name:
		return m.Logs, true
	}
	return nil, false
}

// Store exposes this context's store client.
func (m *Manager) Store() *store.Client {
	return m.client
}

// Settings reads appSettings, falling back to the defaults.
func (m *Manager) Settings(ctx context.Context) (Settings, error) {
	settings := DefaultSettings()
	if _, err := store.GetJSON(ctx, m.client, datasync.SettingsKey, &settings); err != nil {
		return DefaultSettings(), err
	}
	return settings, nil
}

// ClearStorage removes every key, empties the cache and writes the defaults again.
func (m *Manager) ClearStorage(ctx context.Context) error {
	if err := m.client.Clear(ctx); err != nil {
		m.logger.Error("Error clearing storage", slog.Any("error", err))
		return fmt.Errorf("client.Clear() > %w", err)
	}
	m.cache.Clear()
	return m.initializeStorage(ctx)
}

// RemoveFromStorage deletes one key and its cache entry.
func (m *Manager) RemoveFromStorage(ctx context.Context, key string) error {
	if err := m.client.Remove(ctx, key); err != nil {
		m.logger.Error("Error removing from storage",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return fmt.Errorf("client.Remove(%s) > %w", key, err)
	}
	m.cache.Invalidate(key)
	return nil
}

func (m *Manager) CacheInfo() cache.Info {
	return m.cache.Info()
}

func (m *Manager) ClearCache() {
	m.cache.Clear()
}

// Close stops the change subscription and detaches from the origin.
func (m *Manager) Close() {
	if m.unwatch != nil {
		m.unwatch()
	}
	m.client.Close()
}
