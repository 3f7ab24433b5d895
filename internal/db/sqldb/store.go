// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package sqldb stores snapshots in a single SQLite table.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"

	"github.com/quixsi/wedding/internal/db"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Open opens the SQLite file at path, ":memory:" included.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single connection keeps ":memory:" databases alive and writes ordered
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s, err := NewStore(context.Background(), sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// NewStore creates the kv_store table on sqlDB if needed.
func NewStore(ctx context.Context, sqlDB *sql.DB) (*Store, error) {
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create kv_store table: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Get", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	var value []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		err = fmt.Errorf("select %q: %w", key, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Put", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UnixMilli(),
	)
	if err != nil {
		err = fmt.Errorf("upsert %q: %w", key, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Keys")
	defer span.End()

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT key FROM kv_store ORDER BY key`)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		res = append(res, k)
	}
	return res, rows.Err()
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
