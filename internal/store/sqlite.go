package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	bucket TEXT NOT NULL,
	key    TEXT NOT NULL,
	value  BLOB NOT NULL,
	PRIMARY KEY (bucket, key)
)`

// SQLiteBackend implements Backend on a single SQLite table.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database at path (":memory:" for a private
// in-memory database).
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) View(ctx context.Context, fn func(Tx) error) error {
	return s.run(ctx, fn)
}

func (s *SQLiteBackend) Update(ctx context.Context, fn func(Tx) error) error {
	return s.run(ctx, fn)
}

func (s *SQLiteBackend) run(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(sqliteTx{ctx: ctx, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close closes the SQLite handle.
func (s *SQLiteBackend) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type sqliteTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t sqliteTx) Get(bucket, key string) ([]byte, error) {
	var value []byte
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT value FROM kv WHERE bucket = ? AND key = ?`, bucket, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	return value, nil
}

func (t sqliteTx) Put(bucket, key string, value []byte) error {
	_, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO kv (bucket, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(bucket, key) DO UPDATE SET value = excluded.value`,
		bucket, key, value)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (t sqliteTx) Delete(bucket, key string) error {
	_, err := t.tx.ExecContext(t.ctx, `DELETE FROM kv WHERE bucket = ? AND key = ?`, bucket, key)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (t sqliteTx) DeletePrefix(bucket, prefix string) error {
	_, err := t.tx.ExecContext(t.ctx,
		`DELETE FROM kv WHERE bucket = ? AND substr(key, 1, length(?)) = ?`,
		bucket, prefix, prefix)
	if err != nil {
		return fmt.Errorf("delete prefix %s/%s: %w", bucket, prefix, err)
	}
	return nil
}

func (t sqliteTx) ForEach(bucket, prefix string, fn func(key string, value []byte) error) error {
	rows, err := t.tx.QueryContext(t.ctx,
		`SELECT key, value FROM kv WHERE bucket = ? AND substr(key, 1, length(?)) = ? ORDER BY key`,
		bucket, prefix, prefix)
	if err != nil {
		return fmt.Errorf("scan %s/%s: %w", bucket, prefix, err)
	}

	// Drain before calling fn: the single connection is busy until rows close
	type row struct {
		key   string
		value []byte
	}
	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.key, &r.value); err != nil {
			rows.Close()
			return err
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, r := range all {
		if err := fn(r.key, r.value); err != nil {
			return err
		}
	}
	return nil
}
