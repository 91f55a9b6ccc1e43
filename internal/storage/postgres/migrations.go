package postgres

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    path TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    revision BIGINT NOT NULL,
    writer TEXT NOT NULL DEFAULT '',
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS document_revisions (
    id UUID PRIMARY KEY,
    path TEXT NOT NULL REFERENCES documents(path) ON DELETE CASCADE,
    revision BIGINT NOT NULL,
    writer TEXT NOT NULL DEFAULT '',
    size INTEGER NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (path, revision)
);

CREATE INDEX IF NOT EXISTS idx_document_revisions_path ON document_revisions(path, revision DESC);
`

func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
