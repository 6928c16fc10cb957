package activity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/at-ishikawa/elearn/internal/repository"
	"github.com/at-ishikawa/elearn/internal/store"
)

const (
	SystemActor  = "system"
	UnknownActor = "Unknown"

	DefaultIPAddress = "192.168.1.100"
	DefaultUserAgent = "elearn-cli"

	SessionLogKey = "activityLogs"
)

type Config struct {
	Capacity  int
	IPAddress string
	UserAgent string
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.IPAddress == "" {
		c.IPAddress = DefaultIPAddress
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// Writer appends entries to the repository log, newest first.
type Writer struct {
	logs   *repository.Repository
	config Config
	log    BoundedLog[repository.Record]
	now    func() time.Time
}

func NewWriter(logs *repository.Repository, config Config, now func() time.Time) *Writer {
	config = config.withDefaults()
	if now == nil {
		now = time.Now
	}
	return &Writer{
		logs:   logs,
		config: config,
		log:    BoundedLog[repository.Record]{Capacity: config.Capacity, InsertAt: Front, TrimAt: Back},
		now:    now,
	}
}

// Record writes one entry. An empty actorID is recorded as the system actor.
func (w *Writer) Record(ctx context.Context, action, description, actorID string) (repository.Record, error) {
	if actorID == "" {
		actorID = SystemActor
	}
	now := w.now()
	entry := repository.Record{
		"id":          fmt.Sprintf("log_%d", now.UnixMilli()),
		"user":        actorID,
		"action":      action,
		"description": description,
		"timestamp":   repository.FormatTime(now),
		"ipAddress":   w.config.IPAddress,
		"userAgent":   w.config.UserAgent,
	}

	err := w.logs.Mutate(ctx, func(records []repository.Record) ([]repository.Record, error) {
		return w.log.Insert(records, entry), nil
	})
	if err != nil {
		return nil, fmt.Errorf("activity.Writer.Record() > %w", err)
	}
	return entry, nil
}

// SessionLog is the authentication log, oldest first. It has no seed document.
type SessionLog struct {
	store  store.Store
	log    BoundedLog[repository.Record]
	now    func() time.Time
	logger *slog.Logger

	mu sync.Mutex
}

func NewSessionLog(st store.Store, capacity int, now func() time.Time) *SessionLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &SessionLog{
		store:  st,
		log:    BoundedLog[repository.Record]{Capacity: capacity, InsertAt: Back, TrimAt: Front},
		now:    now,
		logger: slog.Default(),
	}
}

// Record appends one entry. An empty actor is recorded as UnknownActor.
// Nothing is written when the stored log cannot be read.
func (l *SessionLog) Record(ctx context.Context, actor, action, description string) (repository.Record, error) {
	if actor == "" {
		actor = UnknownActor
	}
	entry := repository.Record{
		"user":        actor,
		"action":      action,
		"description": description,
		"timestamp":   repository.FormatTime(l.now()),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.entries(ctx)
	if err != nil {
		l.logger.Error("Error logging activity", slog.Any("error", err))
		return nil, fmt.Errorf("activity.SessionLog.Record() > %w", err)
	}
	if err := store.SetJSON(ctx, l.store, SessionLogKey, l.log.Insert(entries, entry)); err != nil {
		return nil, fmt.Errorf("activity.SessionLog.Record() > %w", err)
	}
	return entry, nil
}

// Entries returns the session log, oldest first.
func (l *SessionLog) Entries(ctx context.Context) ([]repository.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries(ctx)
}

func (l *SessionLog) entries(ctx context.Context) ([]repository.Record, error) {
	var entries []repository.Record
	if _, err := store.GetJSON(ctx, l.store, SessionLogKey, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []repository.Record{}
	}
	return entries, nil
}
