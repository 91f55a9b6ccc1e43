// Package mirror keeps a JSON file on disk in step with the local state
// store, in both directions. It lets `planner sync` users edit the planning
// document with any editor while the sync bridge pushes the result.
package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mmynk/planboard/internal/export"
	"github.com/mmynk/planboard/internal/state"
)

// DefaultSettle is how long the file must stay quiet before it is read.
const DefaultSettle = 100 * time.Millisecond

// Mirror writes every store change to a file and merges file edits back.
type Mirror struct {
	store  *state.Store
	path   string
	settle time.Duration
	logger *slog.Logger

	mu sync.Mutex
	// last is the content most recently written or read, so our own writes
	// are not read back as edits.
	last []byte
}

// New creates a Mirror of store at path. settle <= 0 uses DefaultSettle.
func New(store *state.Store, path string, settle time.Duration) *Mirror {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Mirror{
		store:  store,
		path:   path,
		settle: settle,
		logger: slog.Default().With("component", "mirror", "file", path),
	}
}

// Run writes the current document, then mirrors until ctx is cancelled.
// The store is authoritative at start: an existing file is overwritten.
func (m *Mirror) Run(ctx context.Context) error {
	path, err := filepath.Abs(m.path)
	if err != nil {
		return fmt.Errorf("failed to resolve mirror path: %w", err)
	}
	m.path = path

	changes, unsubscribe := m.store.Subscribe()
	defer unsubscribe()

	if err := m.writeFile(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and our own atomic writes replace the file.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	m.logger.Info("Mirroring document")

	var settle *time.Timer
	var settleC <-chan time.Time
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := m.writeFile(); err != nil {
				m.logger.Error("Failed to write mirror", "error", err)
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if settle != nil {
				settle.Stop()
			}
			settle = time.NewTimer(m.settle)
			settleC = settle.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("Watcher error", "error", err)

		case <-settleC:
			settleC = nil
			if err := m.readFile(); err != nil {
				m.logger.Warn("Ignoring mirror edit", "error", err)
			}
		}
	}
}

// writeFile replaces the file atomically with the current document.
func (m *Mirror) writeFile() error {
	data, err := export.ExportJSON(m.store.Document())
	if err != nil {
		return err
	}
	data = append(data, '\n')

	m.mu.Lock()
	defer m.mu.Unlock()
	if bytes.Equal(data, m.last) {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), "."+filepath.Base(m.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("failed to replace mirror: %w", err)
	}

	m.last = data
	m.logger.Debug("Mirror written", "bytes", len(data))
	return nil
}

// readFile merges an edited file into the store as a local change.
func (m *Mirror) readFile() error {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read mirror: %w", err)
	}

	m.mu.Lock()
	same := bytes.Equal(data, m.last)
	m.mu.Unlock()
	if same {
		return nil
	}

	snap, err := export.ImportSnapshot(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if err := snap.ApplyTo(m.store.Document()).Validate(); err != nil {
		return fmt.Errorf("%w: %w", export.ErrMalformedImport, err)
	}

	m.mu.Lock()
	m.last = data
	m.mu.Unlock()

	m.logger.Info("Mirror edit applied", "fields", snap.Fields())
	m.store.Merge(snap)
	return nil
}
