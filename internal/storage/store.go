// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no document is stored under a path.
var ErrNotFound = errors.New("document not found")

// Document is the stored form of a Planning Document: an opaque JSON blob
// plus the bookkeeping the realtime hub needs.
type Document struct {
	Path string
	Data []byte

	// Revision starts at 1 and is incremented by every write to Path.
	Revision int64

	// Writer is the write token supplied with the last write.
	Writer string

	// UpdatedAt is a Unix timestamp in milliseconds.
	UpdatedAt int64
}

// Revision describes one past write.
type Revision struct {
	Revision  int64
	Writer    string
	Size      int
	CreatedAt int64
}

// Store defines the interface for document storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// GetDocument returns the document stored under path.
	// Returns ErrNotFound if nothing was written yet.
	GetDocument(ctx context.Context, path string) (*Document, error)

	// PutDocument overwrites the document under path and returns the new
	// revision. The increment is atomic: concurrent writers never share a
	// revision.
	PutDocument(ctx context.Context, path string, data []byte, writer string) (int64, error)

	// ListRevisions returns the most recent writes to path, newest first.
	ListRevisions(ctx context.Context, path string, limit int) ([]Revision, error)

	// Close releases any resources held by the store.
	Close() error
}

// DefaultHistoryLimit is used when ListRevisions gets a non-positive limit.
const DefaultHistoryLimit = 20
