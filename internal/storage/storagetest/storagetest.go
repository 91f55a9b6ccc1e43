// Package storagetest holds behavior tests shared by every storage.Store
// implementation.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mmynk/planboard/internal/storage"
)

// Run exercises store. Each subtest uses its own document path, so the store
// may be shared with other tests.
func Run(t *testing.T, store storage.Store) {
	ctx := context.Background()

	t.Run("GetDocument on missing path", func(t *testing.T) {
		_, err := store.GetDocument(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("PutDocument increments revision", func(t *testing.T) {
		path := "revisions"

		rev, err := store.PutDocument(ctx, path, []byte(`{"vendors":[]}`), "w1")
		if err != nil {
			t.Fatalf("PutDocument failed: %v", err)
		}
		if rev != 1 {
			t.Errorf("first revision = %d, want 1", rev)
		}

		rev, err = store.PutDocument(ctx, path, []byte(`{"vendors":[],"guests":[]}`), "w2")
		if err != nil {
			t.Fatalf("PutDocument failed: %v", err)
		}
		if rev != 2 {
			t.Errorf("second revision = %d, want 2", rev)
		}

		doc, err := store.GetDocument(ctx, path)
		if err != nil {
			t.Fatalf("GetDocument failed: %v", err)
		}
		if string(doc.Data) != `{"vendors":[],"guests":[]}` {
			t.Errorf("unexpected data %s", doc.Data)
		}
		if doc.Revision != 2 || doc.Writer != "w2" {
			t.Errorf("got revision %d writer %q, want 2 %q", doc.Revision, doc.Writer, "w2")
		}
		if doc.UpdatedAt == 0 {
			t.Error("expected UpdatedAt to be set")
		}
	})

	t.Run("ListRevisions newest first", func(t *testing.T) {
		path := "history"
		for i := 1; i <= 3; i++ {
			if _, err := store.PutDocument(ctx, path, []byte(fmt.Sprintf(`{"n":%d}`, i)), fmt.Sprintf("w%d", i)); err != nil {
				t.Fatalf("PutDocument failed: %v", err)
			}
		}

		revs, err := store.ListRevisions(ctx, path, 2)
		if err != nil {
			t.Fatalf("ListRevisions failed: %v", err)
		}
		if len(revs) != 2 {
			t.Fatalf("expected 2 revisions, got %d", len(revs))
		}
		if revs[0].Revision != 3 || revs[0].Writer != "w3" {
			t.Errorf("newest revision = %+v", revs[0])
		}
		if revs[1].Revision != 2 {
			t.Errorf("second revision = %+v", revs[1])
		}
		if revs[0].Size != len(`{"n":3}`) {
			t.Errorf("size = %d", revs[0].Size)
		}

		none, err := store.ListRevisions(ctx, "never-written", 0)
		if err != nil {
			t.Fatalf("ListRevisions failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("expected no revisions, got %d", len(none))
		}
	})

	t.Run("concurrent writers get distinct revisions", func(t *testing.T) {
		path := "concurrent"
		const writers = 8

		var wg sync.WaitGroup
		revs := make(chan int64, writers)
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rev, err := store.PutDocument(ctx, path, []byte(`{}`), fmt.Sprintf("w%d", i))
				if err != nil {
					errs <- err
					return
				}
				revs <- rev
			}(i)
		}
		wg.Wait()
		close(revs)
		close(errs)

		for err := range errs {
			t.Fatalf("PutDocument failed: %v", err)
		}
		seen := make(map[int64]bool)
		for rev := range revs {
			if seen[rev] {
				t.Errorf("revision %d handed out twice", rev)
			}
			seen[rev] = true
		}
		doc, err := store.GetDocument(ctx, path)
		if err != nil {
			t.Fatalf("GetDocument failed: %v", err)
		}
		if doc.Revision != writers {
			t.Errorf("final revision = %d, want %d", doc.Revision, writers)
		}
	})
}
