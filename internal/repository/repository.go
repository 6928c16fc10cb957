// Package repository provides one repository per entity kind, composing seed
// retrieval, the persistent store and the freshness cache.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/at-ishikawa/elearn/internal/apperr"
	"github.com/at-ishikawa/elearn/internal/cache"
	"github.com/at-ishikawa/elearn/internal/seed"
	"github.com/at-ishikawa/elearn/internal/store"
)

// Repository manages the snapshot of one entity kind.
//
// Mutations run load → mutate → persist → invalidate under a mutex, so two
// operations on the same Repository never interleave. Repositories in other
// processes sharing the store are not coordinated with: the last writer wins,
// and two concurrent creates may assign the same numeric ID.
type Repository struct {
	kind     Kind
	store    store.Store
	cache    *cache.Cache
	fetcher  seed.Fetcher
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time

	mu sync.Mutex
}

type Option func(*Repository)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// New creates a Repository for kind.
func New(kind Kind, st store.Store, c *cache.Cache, fetcher seed.Fetcher, opts ...Option) *Repository {
	r := &Repository{
		kind:     kind,
		store:    st,
		cache:    c,
		fetcher:  fetcher,
		validate: validator.New(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("repository", kind.Name))
	return r
}

func (r *Repository) Kind() Kind {
	return r.kind
}

// Load returns the current snapshot, seeding it first when the store holds
// nothing for this kind or forceRefresh is set.
//
// A corrupt persisted document is reseeded. Any other storage failure is
// returned as is, without fetching or writing anything.
// When seed retrieval fails, the persisted snapshot is served instead if it is
// non-empty. Otherwise Load returns an empty, non-nil slice and the error.
func (r *Repository) Load(ctx context.Context, forceRefresh bool) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx, forceRefresh)
}

func (r *Repository) load(ctx context.Context, forceRefresh bool) ([]Record, error) {
	records, err := r.readSnapshot(ctx)
	if err != nil {
		r.logger.Error("Error reading from storage",
			slog.String("key", r.kind.StoreKey),
			slog.Any("error", err),
		)
		if !store.IsCorrupt(err) {
			return []Record{}, &readError{err: fmt.Errorf("load %s > %w", r.kind.Name, err)}
		}
		records = []Record{}
	}
	if len(records) > 0 && !forceRefresh {
		return records, nil
	}

	fetched, err := r.retrieve(ctx, !forceRefresh)
	if err != nil {
		r.logger.Error("Error loading seed data",
			slog.String("path", r.kind.SeedPath),
			slog.Any("error", err),
		)
		if len(records) > 0 {
			r.logger.Warn("Using fallback data", slog.String("path", r.kind.SeedPath))
			return records, nil
		}
		return []Record{}, fmt.Errorf("load %s > %w", r.kind.Name, err)
	}

	if err := r.writeSnapshot(ctx, fetched); err != nil {
		r.logger.Error("Error saving to storage",
			slog.String("key", r.kind.StoreKey),
			slog.Any("error", err),
		)
	}
	return fetched, nil
}

// retrieve fetches the seed document, reading and filling the cache when useCache is set.
func (r *Repository) retrieve(ctx context.Context, useCache bool) ([]Record, error) {
	key := r.kind.StoreKey
	if useCache {
		if v, ok := r.cache.Get(key); ok {
			if records, ok := v.([]Record); ok {
				return cloneRecords(records), nil
			}
		}
	}

	raw, err := r.fetcher.Fetch(ctx, r.kind.SeedPath)
	if err != nil {
		return nil, err
	}
	records, err := DecodeRecords(raw)
	if err != nil {
		return nil, apperr.Retrieval(fmt.Sprintf("malformed seed document %s", r.kind.SeedPath), err)
	}

	if useCache {
		r.cache.Set(key, cloneRecords(records))
	}
	return records, nil
}

func (r *Repository) readSnapshot(ctx context.Context) ([]Record, error) {
	var records []Record
	if _, err := store.GetJSON(ctx, r.store, r.kind.StoreKey, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// readError marks a load that failed before seed retrieval was attempted.
type readError struct {
	err error
}

func (e *readError) Error() string {
	return e.err.Error()
}

func (e *readError) Unwrap() error {
	return e.err
}

func (r *Repository) writeSnapshot(ctx context.Context, records []Record) error {
	return store.SetJSON(ctx, r.store, r.kind.StoreKey, records)
}

// Mutate loads the snapshot, replaces it with fn's result, persists it and
// invalidates the cache entry for this kind. Nothing is written when fn fails.
func (r *Repository) Mutate(ctx context.Context, fn func(records []Record) ([]Record, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A seed retrieval failure leaves an empty snapshot to build on.
	// A failed storage read leaves nothing safe to overwrite.
	records, err := r.load(ctx, false)
	var readErr *readError
	if errors.As(err, &readErr) {
		return readErr.err
	}

	next, err := fn(records)
	if err != nil {
		return err
	}
	if err := r.writeSnapshot(ctx, next); err != nil {
		return fmt.Errorf("save %s > %w", r.kind.Name, err)
	}
	r.cache.Invalidate(r.kind.StoreKey)
	return nil
}

func (r *Repository) validatePayload(data Record) error {
	if data == nil {
		return apperr.Validation(fmt.Sprintf("%s data is required", r.kind.Label))
	}
	if email, ok := data["email"]; ok {
		s, isString := email.(string)
		if !isString || r.validate.Var(s, "required,email") != nil {
			return apperr.Validation(fmt.Sprintf("invalid email: %v", email))
		}
	}
	return nil
}

// Create appends a new record built from data and returns it.
// The identifier and both timestamps are assigned here and override any
// values supplied in data.
func (r *Repository) Create(ctx context.Context, data Record) (Record, error) {
	if err := r.validatePayload(data); err != nil {
		return nil, err
	}

	var created Record
	err := r.Mutate(ctx, func(records []Record) ([]Record, error) {
		now := r.now()
		created = data.Clone()
		created[r.kind.IDField] = r.kind.nextID(records, now)
		created["createdAt"] = FormatTime(now)
		created["updatedAt"] = FormatTime(now)
		return append(records, created), nil
	})
	if err != nil {
		return nil, err
	}
	return created.Clone(), nil
}

// Update shallow-merges partial over the first record whose identifier equals id.
func (r *Repository) Update(ctx context.Context, id any, partial Record) (Record, error) {
	if err := r.validatePayload(partial); err != nil {
		return nil, err
	}

	var updated Record
	err := r.Mutate(ctx, func(records []Record) ([]Record, error) {
		for i, rec := range records {
			if !SameID(rec[r.kind.IDField], id) {
				continue
			}
			merged := rec.Clone()
			for k, v := range partial {
				merged[k] = v
			}
			merged["updatedAt"] = FormatTime(r.now())
			records[i] = merged
			updated = merged
			return records, nil
		}
		return nil, apperr.NotFound(fmt.Sprintf("%s not found", r.kind.Label))
	})
	if err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// Delete removes every record whose identifier equals id.
func (r *Repository) Delete(ctx context.Context, id any) error {
	return r.Mutate(ctx, func(records []Record) ([]Record, error) {
		kept := make([]Record, 0, len(records))
		for _, rec := range records {
			if !SameID(rec[r.kind.IDField], id) {
				kept = append(kept, rec)
			}
		}
		if len(kept) == len(records) {
			return nil, apperr.NotFound(fmt.Sprintf("%s not found", r.kind.Label))
		}
		return kept, nil
	})
}

// Find returns the first record whose identifier equals id.
func (r *Repository) Find(ctx context.Context, id any) (Record, error) {
	records, err := r.Load(ctx, false)
	if err != nil && len(records) == 0 {
		return nil, err
	}
	for _, rec := range records {
		if SameID(rec[r.kind.IDField], id) {
			return rec, nil
		}
	}
	return nil, apperr.NotFound(fmt.Sprintf("%s not found", r.kind.Label))
}
