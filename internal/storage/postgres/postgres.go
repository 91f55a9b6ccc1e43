// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface, for deployments that already run a database.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mmynk/planboard/internal/storage"
)

var _ storage.Store = (*PostgresStore)(nil)

// PostgresStore implements storage.Store on PostgreSQL through pgx.
type PostgresStore struct {
	db *sql.DB
}

// New connects to the database at connStr and runs migrations.
func New(ctx context.Context, connStr string) (*PostgresStore, error) {
	if connStr == "" {
		return nil, fmt.Errorf("missing database connection string")
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// GetDocument retrieves the document stored under path.
func (s *PostgresStore) GetDocument(ctx context.Context, path string) (*storage.Document, error) {
	doc := &storage.Document{Path: path}
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data, revision, writer, updated_at FROM documents WHERE path = $1",
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

// PutDocument overwrites the document. The upsert takes a row lock, so
// concurrent writers to one path are serialized.
func (s *PostgresStore) PutDocument(ctx context.Context, path string, data []byte, writer string) (int64, error) {
	now := time.Now().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var revision int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO documents (path, data, revision, writer, updated_at)
		VALUES ($1, $2, 1, $3, $4)
		ON CONFLICT (path) DO UPDATE SET
			data = EXCLUDED.data,
			revision = documents.revision + 1,
			writer = EXCLUDED.writer,
			updated_at = EXCLUDED.updated_at
		RETURNING revision`,
		path, string(data), writer, now,
	).Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert document: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO document_revisions (id, path, revision, writer, size, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		uuid.New(), path, revision, writer, len(data), now,
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
func (s *PostgresStore) ListRevisions(ctx context.Context, path string, limit int) ([]storage.Revision, error) {
	if limit <= 0 {
		limit = storage.DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT revision, writer, size, created_at FROM document_revisions WHERE path = $1 ORDER BY revision DESC LIMIT $2",
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
