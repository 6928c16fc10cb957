package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/elearn/internal/apperr"
	"github.com/at-ishikawa/elearn/schemas"
)

// SQLBackend stores documents in a single documents table.
// It understands the sqlite and mysql drivers.
type SQLBackend struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLBackend creates a new SQLBackend over db.
func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db, now: time.Now}
}

const (
	upsertSQLiteDocument = `INSERT INTO documents (doc_key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(doc_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	upsertMySQLDocument = `INSERT INTO documents (doc_key, value, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`
)

func (b *SQLBackend) isMySQL() bool {
	return b.db.DriverName() == "mysql"
}

// Migrate creates the documents table when it does not exist yet.
func (b *SQLBackend) Migrate(ctx context.Context) error {
	query, err := schemas.Documents(b.db.DriverName())
	if err != nil {
		return apperr.Store("create documents table", err)
	}
	if _, err := b.db.ExecContext(ctx, query); err != nil {
		return apperr.Store("create documents table", fmt.Errorf("db.ExecContext(create documents) > %w", err))
	}
	return nil
}

func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := b.db.GetContext(ctx, &value, "SELECT value FROM documents WHERE doc_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.Store(fmt.Sprintf("read %q", key), fmt.Errorf("db.GetContext(document) > %w", err))
	}
	return []byte(value), true, nil
}

func (b *SQLBackend) Set(ctx context.Context, key string, value []byte) error {
	query := upsertSQLiteDocument
	if b.isMySQL() {
		query = upsertMySQLDocument
	}
	if _, err := b.db.ExecContext(ctx, query, key, string(value), b.now().UTC()); err != nil {
		return apperr.Store(fmt.Sprintf("write %q", key), fmt.Errorf("db.ExecContext(upsert document) > %w", err))
	}
	return nil
}

func (b *SQLBackend) Remove(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, "DELETE FROM documents WHERE doc_key = ?", key); err != nil {
		return apperr.Store(fmt.Sprintf("remove %q", key), fmt.Errorf("db.ExecContext(delete document) > %w", err))
	}
	return nil
}

func (b *SQLBackend) Clear(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return apperr.Store("clear documents", fmt.Errorf("db.ExecContext(delete documents) > %w", err))
	}
	return nil
}

func (b *SQLBackend) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := b.db.SelectContext(ctx, &keys, "SELECT doc_key FROM documents ORDER BY doc_key"); err != nil {
		return nil, apperr.Store("list keys", fmt.Errorf("db.SelectContext(documents) > %w", err))
	}
	return keys, nil
}
