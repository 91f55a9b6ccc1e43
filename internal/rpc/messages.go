package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/mmynk/planboard/internal/models"
)

// Document service

type GetDocumentRequest struct {
	Path string `json:"path"`
}

type GetDocumentResponse struct {
	Found    bool            `json:"found"`
	Revision int64           `json:"revision"`
	Writer   string          `json:"writer,omitempty"`
	Document models.Document `json:"document"`
}

type SetDocumentRequest struct {
	Path     string          `json:"path"`
	Document models.Document `json:"document"`
	// Writer is the write token echoed back in the resulting snapshot.
	Writer string `json:"writer,omitempty"`
}

type SetDocumentResponse struct {
	Revision int64 `json:"revision"`
}

// ImportDocumentRequest carries the raw content of a backup file. It is
// validated on the server before it overwrites the document.
type ImportDocumentRequest struct {
	Path   string `json:"path"`
	Data   string `json:"data"`
	Writer string `json:"writer,omitempty"`
}

type ExportDocumentRequest struct {
	Path string `json:"path"`
}

type ExportDocumentResponse struct {
	// Data is the indented JSON backup.
	Data string `json:"data"`
}

type HistoryRequest struct {
	Path  string `json:"path"`
	Limit int    `json:"limit"`
}

type Revision struct {
	Revision  int64  `json:"revision"`
	Writer    string `json:"writer,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	Size      int    `json:"size"`
}

type HistoryResponse struct {
	Revisions []Revision `json:"revisions"`
}

// Auth service

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Advisor service

type AdviceRequest struct {
	Query   string `json:"query"`
	Context string `json:"context,omitempty"`
}

type AnalyzeIdeaRequest struct {
	Idea string `json:"idea"`
}

type AdviceResponse struct {
	Text string `json:"text"`
}

// Websocket frames

const (
	FrameHello    = "hello"
	FrameSnapshot = "snapshot"
)

// Frame is one websocket message from the hub.
type Frame struct {
	Type     string          `json:"type"`
	Path     string          `json:"path"`
	Revision int64           `json:"revision,omitempty"`
	Writer   string          `json:"writer,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// Snapshot decodes the frame payload. A missing or null payload yields an
// empty snapshot.
func (f Frame) Snapshot() (models.Snapshot, error) {
	var snap models.Snapshot
	if len(f.Data) > 0 {
		if err := json.Unmarshal(f.Data, &snap); err != nil {
			return models.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
		}
	}
	snap.Revision = f.Revision
	snap.Writer = f.Writer
	return snap, nil
}

// DocumentRequest is implemented by requests addressed to one document path.
type DocumentRequest interface {
	DocumentPath() string
}

// WriteRequest is implemented by requests that overwrite a document.
type WriteRequest interface {
	DocumentRequest
	WriteToken() string
}

func (r *GetDocumentRequest) DocumentPath() string    { return pathOrDefault(r.Path) }
func (r *SetDocumentRequest) DocumentPath() string    { return pathOrDefault(r.Path) }
func (r *ImportDocumentRequest) DocumentPath() string { return pathOrDefault(r.Path) }
func (r *ExportDocumentRequest) DocumentPath() string { return pathOrDefault(r.Path) }
func (r *HistoryRequest) DocumentPath() string        { return pathOrDefault(r.Path) }

func (r *SetDocumentRequest) WriteToken() string    { return r.Writer }
func (r *ImportDocumentRequest) WriteToken() string { return r.Writer }

func pathOrDefault(path string) string {
	if path == "" {
		return models.DefaultDocumentPath
	}
	return path
}
