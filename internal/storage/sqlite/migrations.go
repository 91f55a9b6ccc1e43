package sqlite

import "database/sql"

// schema sets up the database. It runs on startup to ensure tables exist.
// documents must be created before document_revisions due to the foreign key.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    path TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    revision INTEGER NOT NULL,
    writer TEXT NOT NULL DEFAULT '',
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS document_revisions (
    id TEXT PRIMARY KEY,
    path TEXT NOT NULL,
    revision INTEGER NOT NULL,
    writer TEXT NOT NULL DEFAULT '',
    size INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (path, revision),
    FOREIGN KEY (path) REFERENCES documents(path) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_document_revisions_path ON document_revisions(path, revision DESC);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
