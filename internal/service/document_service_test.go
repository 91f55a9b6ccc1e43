package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/planboard/internal/models"
	"github.com/mmynk/planboard/internal/rpc"
	"github.com/mmynk/planboard/internal/storage"
	"github.com/mmynk/planboard/internal/storage/sqlite"
)

type recordingPublisher struct {
	mu   sync.Mutex
	docs []*storage.Document
}

func (p *recordingPublisher) Publish(doc *storage.Document) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs = append(p.docs, doc)
}

func (p *recordingPublisher) published() []*storage.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*storage.Document(nil), p.docs...)
}

// setupDocumentTestServer creates a test server backed by a temporary SQLite database.
func setupDocumentTestServer(t *testing.T) (*rpc.DocumentClient, *recordingPublisher, func()) {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	pub := &recordingPublisher{}
	path, handler := rpc.NewDocumentServiceHandler(NewDocumentService(store, pub))

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	client := rpc.NewDocumentClient(http.DefaultClient, server.URL)

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return client, pub, cleanup
}

func TestGetMissingDocument(t *testing.T) {
	client, _, cleanup := setupDocumentTestServer(t)
	defer cleanup()

	resp, err := client.Get.CallUnary(context.Background(), connect.NewRequest(&rpc.GetDocumentRequest{}))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if resp.Msg.Found {
		t.Error("expected Found=false for a fresh database")
	}
}

func TestSetAndGet(t *testing.T) {
	client, pub, cleanup := setupDocumentTestServer(t)
	defer cleanup()

	doc := models.DefaultDocument()
	doc.Guests = []models.Guest{{ID: "g1", FirstName: "Ada", Side: models.SideBride}}

	setResp, err := client.Set.CallUnary(context.Background(), connect.NewRequest(&rpc.SetDocumentRequest{
		Document: doc,
		Writer:   "token-1",
	}))
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if setResp.Msg.Revision != 1 {
		t.Errorf("revision: expected 1, got %d", setResp.Msg.Revision)
	}

	getResp, err := client.Get.CallUnary(context.Background(), connect.NewRequest(&rpc.GetDocumentRequest{
		Path: models.DefaultDocumentPath,
	}))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !getResp.Msg.Found {
		t.Fatal("expected document to be found")
	}
	if getResp.Msg.Writer != "token-1" {
		t.Errorf("writer: expected 'token-1', got '%s'", getResp.Msg.Writer)
	}
	if len(getResp.Msg.Document.Guests) != 1 || getResp.Msg.Document.Guests[0].FirstName != "Ada" {
		t.Errorf("unexpected guests %+v", getResp.Msg.Document.Guests)
	}
	if len(getResp.Msg.Document.Categories) != len(doc.Categories) {
		t.Errorf("categories: expected %d, got %d", len(doc.Categories), len(getResp.Msg.Document.Categories))
	}

	published := pub.published()
	if len(published) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(published))
	}
	if published[0].Revision != 1 || published[0].Writer != "token-1" || published[0].Path != models.DefaultDocumentPath {
		t.Errorf("unexpected broadcast %+v", published[0])
	}
}

func TestSetRejectsInvalidDocument(t *testing.T) {
	client, pub, cleanup := setupDocumentTestServer(t)
	defer cleanup()

	doc := models.DefaultDocument()
	doc.Categories = append(doc.Categories, doc.Categories[0])

	_, err := client.Set.CallUnary(context.Background(), connect.NewRequest(&rpc.SetDocumentRequest{Document: doc}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if len(pub.published()) != 0 {
		t.Error("rejected write must not be broadcast")
	}
}

func TestSetRejectsEmptyDocument(t *testing.T) {
	client, pub, cleanup := setupDocumentTestServer(t)
	defer cleanup()

	ctx := context.Background()
	_, err := client.Set.CallUnary(ctx, connect.NewRequest(&rpc.SetDocumentRequest{Document: models.Document{}}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if len(pub.published()) != 0 {
		t.Error("rejected write must not be broadcast")
	}

	// Present but empty collections are real data and must survive a backup.
	doc := models.Document{
		Vendors:    []models.Vendor{},
		Budget:     []models.BudgetLineItem{},
		Notes:      []models.InspirationNote{},
		Guests:     []models.Guest{},
		Categories: []string{},
	}
	if _, err := client.Set.CallUnary(ctx, connect.NewRequest(&rpc.SetDocumentRequest{Document: doc})); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	exported, err := client.Export.CallUnary(ctx, connect.NewRequest(&rpc.ExportDocumentRequest{}))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if _, err := client.Import.CallUnary(ctx, connect.NewRequest(&rpc.ImportDocumentRequest{Data: exported.Msg.Data})); err != nil {
		t.Fatalf("Import of own export failed: %v", err)
	}
}

func TestImport(t *testing.T) {
	client, pub, cleanup := setupDocumentTestServer(t)
	defer cleanup()

	t.Run("malformed", func(t *testing.T) {
		for _, data := range []string{"Error!", "{}", `{"guests":"everyone"}`} {
			_, err := client.Import.CallUnary(context.Background(), connect.NewRequest(&rpc.ImportDocumentRequest{Data: data}))
			if connect.CodeOf(err) != connect.CodeInvalidArgument {
				t.Errorf("Import(%q): expected InvalidArgument, got %v", data, err)
			}
		}
		if len(pub.published()) != 0 {
			t.Error("rejected import must not be broadcast")
		}
	})

	t.Run("valid", func(t *testing.T) {
		resp, err := client.Import.CallUnary(context.Background(), connect.NewRequest(&rpc.ImportDocumentRequest{
			Data: `{"categories":["Venue","Music"],"guests":[]}`,
		}))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if resp.Msg.Revision != 1 {
			t.Errorf("revision: expected 1, got %d", resp.Msg.Revision)
		}

		published := pub.published()
		if len(published) != 1 {
			t.Fatalf("expected 1 broadcast, got %d", len(published))
		}
		frame := rpc.Frame{Type: rpc.FrameSnapshot, Data: published[0].Data}
		snap, err := frame.Snapshot()
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		if snap.Vendors != nil {
			t.Error("collections missing from the backup must stay absent")
		}
		if snap.Categories == nil || len(*snap.Categories) != 2 {
			t.Errorf("unexpected categories %v", snap.Categories)
		}
	})
}

func TestExport(t *testing.T) {
	client, _, cleanup := setupDocumentTestServer(t)
	defer cleanup()

	_, err := client.Export.CallUnary(context.Background(), connect.NewRequest(&rpc.ExportDocumentRequest{}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("expected NotFound before any write, got %v", err)
	}

	if _, err := client.Set.CallUnary(context.Background(), connect.NewRequest(&rpc.SetDocumentRequest{
		Document: models.DefaultDocument(),
	})); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	resp, err := client.Export.CallUnary(context.Background(), connect.NewRequest(&rpc.ExportDocumentRequest{}))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.HasPrefix(resp.Msg.Data, "{\n  \"vendors\": [") {
		t.Errorf("expected indented JSON, got %.40q", resp.Msg.Data)
	}

	// The backup can be imported again.
	if _, err := client.Import.CallUnary(context.Background(), connect.NewRequest(&rpc.ImportDocumentRequest{
		Data: resp.Msg.Data,
	})); err != nil {
		t.Errorf("re-importing export failed: %v", err)
	}
}

func TestHistory(t *testing.T) {
	client, _, cleanup := setupDocumentTestServer(t)
	defer cleanup()

	for _, writer := range []string{"a", "b", "c"} {
		if _, err := client.Set.CallUnary(context.Background(), connect.NewRequest(&rpc.SetDocumentRequest{
			Document: models.DefaultDocument(),
			Writer:   writer,
		})); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	resp, err := client.History.CallUnary(context.Background(), connect.NewRequest(&rpc.HistoryRequest{Limit: 2}))
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	revs := resp.Msg.Revisions
	if len(revs) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revs))
	}
	if revs[0].Revision != 3 || revs[0].Writer != "c" || revs[1].Revision != 2 {
		t.Errorf("expected newest first, got %+v", revs)
	}
	if revs[0].Size == 0 || revs[0].CreatedAt == 0 {
		t.Errorf("expected size and timestamp, got %+v", revs[0])
	}
}

func TestStorageErrorsAreInternal(t *testing.T) {
	svc := NewDocumentService(failingStore{}, nil)
	_, err := svc.Get(context.Background(), connect.NewRequest(&rpc.GetDocumentRequest{}))
	if connect.CodeOf(err) != connect.CodeInternal {
		t.Errorf("expected Internal, got %v", err)
	}
}

type failingStore struct{}

var errDiskFull = errors.New("disk full")

func (failingStore) GetDocument(ctx context.Context, path string) (*storage.Document, error) {
	return nil, errDiskFull
}

func (failingStore) PutDocument(ctx context.Context, path string, data []byte, writer string) (int64, error) {
	return 0, errDiskFull
}

func (failingStore) ListRevisions(ctx context.Context, path string, limit int) ([]storage.Revision, error) {
	return nil, errDiskFull
}

func (failingStore) Close() error { return nil }
