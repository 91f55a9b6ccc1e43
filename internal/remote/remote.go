// Package remote connects a client to the shared Planning Document.
//
// A Remote delivers snapshots of one document path and a connectivity stream,
// and accepts whole-document overwrites tagged with a write token.
package remote

import (
	"context"
	"errors"

	"github.com/mmynk/planboard/internal/models"
)

// ErrDisconnected is returned by Set when the link is down.
var ErrDisconnected = errors.New("remote is disconnected")

// Remote is the document as seen from one client.
type Remote interface {
	// Snapshots delivers every value of the document, starting with the
	// current one. Each snapshot carries the server revision and the write
	// token of the write that produced it.
	Snapshots() <-chan models.Snapshot

	// Connectivity reports link state changes.
	Connectivity() <-chan bool

	// Set overwrites the whole document and returns the new revision.
	Set(ctx context.Context, doc models.Document, writer string) (int64, error)
}
