// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/planboard/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps the pragmas below
	// applied to every statement.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetDocument retrieves the document stored under path.
func (s *SQLiteStore) GetDocument(ctx context.Context, path string) (*storage.Document, error) {
	doc := &storage.Document{Path: path}
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data, revision, writer, updated_at FROM documents WHERE path = ?",
		path,
	).Scan(&data, &doc.Revision, &doc.Writer, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc.Data = []byte(data)
	return doc, nil
}

// PutDocument overwrites the document and records the write in its history.
func (s *SQLiteStore) PutDocument(ctx context.Context, path string, data []byte, writer string) (int64, error) {
	now := time.Now().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var revision int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO documents (path, data, revision, writer, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (path) DO UPDATE SET
			data = excluded.data,
			revision = documents.revision + 1,
			writer = excluded.writer,
			updated_at = excluded.updated_at
		RETURNING revision`,
		path, string(data), writer, now,
	).Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert document: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO document_revisions (id, path, revision, writer, size, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.New().String(), path, revision, writer, len(data), now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return revision, nil
}

// ListRevisions returns recent writes to path, newest first.
func (s *SQLiteStore) ListRevisions(ctx context.Context, path string, limit int) ([]storage.Revision, error) {
	if limit <= 0 {
		limit = storage.DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT revision, writer, size, created_at FROM document_revisions WHERE path = ? ORDER BY revision DESC LIMIT ?",
		path, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	defer rows.Close()

	var revisions []storage.Revision
	for rows.Next() {
		var r storage.Revision
		if err := rows.Scan(&r.Revision, &r.Writer, &r.Size, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revisions = append(revisions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate revisions: %w", err)
	}

	return revisions, nil
}
