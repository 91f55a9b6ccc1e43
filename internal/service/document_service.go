package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/planboard/internal/export"
	"github.com/mmynk/planboard/internal/metrics"
	"github.com/mmynk/planboard/internal/models"
	"github.com/mmynk/planboard/internal/rpc"
	"github.com/mmynk/planboard/internal/storage"
)

var errNoPlanningData = errors.New("document has no planning data")

// Publisher is notified after every successful write. *hub.Hub implements it.
type Publisher interface {
	Publish(doc *storage.Document)
}

// DocumentService implements the Connect DocumentService.
type DocumentService struct {
	store     storage.Store
	publisher Publisher

	// writeMu keeps broadcasts in revision order.
	writeMu sync.Mutex
}

// NewDocumentService creates a new DocumentService. publisher may be nil.
func NewDocumentService(store storage.Store, publisher Publisher) *DocumentService {
	return &DocumentService{store: store, publisher: publisher}
}

// Get returns the current document at a path.
func (s *DocumentService) Get(ctx context.Context, req *connect.Request[rpc.GetDocumentRequest]) (*connect.Response[rpc.GetDocumentResponse], error) {
	path := req.Msg.DocumentPath()
	slog.Info("Get request received", "path", path)

	stored, doc, err := s.load(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewResponse(&rpc.GetDocumentResponse{Found: false}), nil
	}
	if err != nil {
		slog.Error("Get failed", "path", path, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&rpc.GetDocumentResponse{
		Found:    true,
		Revision: stored.Revision,
		Writer:   stored.Writer,
		Document: doc,
	}), nil
}

// Set overwrites the whole document and broadcasts it.
func (s *DocumentService) Set(ctx context.Context, req *connect.Request[rpc.SetDocumentRequest]) (*connect.Response[rpc.SetDocumentResponse], error) {
	path := req.Msg.DocumentPath()
	slog.Info("Set request received",
		"path", path,
		"vendors", len(req.Msg.Document.Vendors),
		"guests", len(req.Msg.Document.Guests),
	)

	if req.Msg.Document.Empty() {
		slog.Warn("Set rejected", "path", path, "error", errNoPlanningData)
		return nil, connect.NewError(connect.CodeInvalidArgument, errNoPlanningData)
	}
	if err := req.Msg.Document.Validate(); err != nil {
		slog.Warn("Set rejected", "path", path, "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	rev, err := s.write(ctx, "set", path, req.Msg.Document, req.Msg.Writer)
	if err != nil {
		slog.Error("Set failed", "path", path, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&rpc.SetDocumentResponse{Revision: rev}), nil
}

// Import validates a backup file and overwrites the document with it.
func (s *DocumentService) Import(ctx context.Context, req *connect.Request[rpc.ImportDocumentRequest]) (*connect.Response[rpc.SetDocumentResponse], error) {
	path := req.Msg.DocumentPath()
	slog.Info("Import request received", "path", path, "bytes", len(req.Msg.Data))

	doc, err := export.ImportJSON(strings.NewReader(req.Msg.Data))
	if err != nil {
		slog.Warn("Import rejected", "path", path, "error", err)
		if errors.Is(err, export.ErrMalformedImport) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	rev, err := s.write(ctx, "import", path, doc, req.Msg.Writer)
	if err != nil {
		slog.Error("Import failed", "path", path, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Import successful", "path", path, "revision", rev)
	return connect.NewResponse(&rpc.SetDocumentResponse{Revision: rev}), nil
}

// Export returns the document as an indented JSON backup.
func (s *DocumentService) Export(ctx context.Context, req *connect.Request[rpc.ExportDocumentRequest]) (*connect.Response[rpc.ExportDocumentResponse], error) {
	path := req.Msg.DocumentPath()
	slog.Info("Export request received", "path", path)

	_, doc, err := s.load(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		slog.Error("Export failed", "path", path, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	data, err := export.ExportJSON(doc)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&rpc.ExportDocumentResponse{Data: string(data)}), nil
}

// History lists the most recent writes to a path, newest first.
func (s *DocumentService) History(ctx context.Context, req *connect.Request[rpc.HistoryRequest]) (*connect.Response[rpc.HistoryResponse], error) {
	path := req.Msg.DocumentPath()
	limit := req.Msg.Limit
	if limit <= 0 {
		limit = storage.DefaultHistoryLimit
	}

	revs, err := s.store.ListRevisions(ctx, path, limit)
	if err != nil {
		slog.Error("History failed", "path", path, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]rpc.Revision, len(revs))
	for i, r := range revs {
		out[i] = rpc.Revision{
			Revision:  r.Revision,
			Writer:    r.Writer,
			CreatedAt: r.CreatedAt,
			Size:      r.Size,
		}
	}

	slog.Info("History successful", "path", path, "count", len(out))
	return connect.NewResponse(&rpc.HistoryResponse{Revisions: out}), nil
}

func (s *DocumentService) write(ctx context.Context, method, path string, doc models.Document, writer string) (int64, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal document: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	rev, err := s.store.PutDocument(ctx, path, data, writer)
	if err != nil {
		return 0, err
	}

	metrics.DocumentWrites.WithLabelValues(method).Inc()
	metrics.DocumentRevision.WithLabelValues(path).Set(float64(rev))
	slog.Info("Document written", "path", path, "revision", rev, "writer", writer, "bytes", len(data))

	if s.publisher != nil {
		s.publisher.Publish(&storage.Document{
			Path:     path,
			Data:     data,
			Revision: rev,
			Writer:   writer,
		})
	}
	return rev, nil
}

func (s *DocumentService) load(ctx context.Context, path string) (*storage.Document, models.Document, error) {
	stored, err := s.store.GetDocument(ctx, path)
	if err != nil {
		return nil, models.Document{}, err
	}
	var doc models.Document
	if err := json.Unmarshal(stored.Data, &doc); err != nil {
		return nil, models.Document{}, fmt.Errorf("failed to decode stored document: %w", err)
	}
	return stored, doc, nil
}

