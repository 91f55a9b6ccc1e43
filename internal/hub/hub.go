// Package hub provides the realtime side of the document server: a websocket
// endpoint that streams snapshots of a document path to every subscriber.
//
// On connect a subscriber receives a hello frame followed by the current
// snapshot. After every successful write the new snapshot is pushed to all
// subscribers of that path. Subscribers that cannot keep up are dropped and
// are expected to reconnect.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/mmynk/planboard/internal/metrics"
	"github.com/mmynk/planboard/internal/models"
	"github.com/mmynk/planboard/internal/rpc"
	"github.com/mmynk/planboard/internal/storage"
)

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// Config holds hub configuration.
type Config struct {
	// OriginPatterns are the accepted browser origins (default: all).
	OriginPatterns []string
}

type subscriber struct {
	path string
	send chan []byte
}

// Hub fans out document snapshots to websocket subscribers.
type Hub struct {
	store  storage.Store
	cfg    Config
	logger *slog.Logger

	// mu orders initial snapshots against broadcasts.
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Hub reading current documents from store.
func New(store storage.Store, cfg Config) *Hub {
	if len(cfg.OriginPatterns) == 0 {
		cfg.OriginPatterns = []string{"*"}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		store:  store,
		cfg:    cfg,
		logger: slog.Default().With("component", "hub"),
		subs:   make(map[string]map[*subscriber]struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Close disconnects every subscriber and waits for their handlers to return.
// Connections arriving afterwards are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	h.cancel()
	h.wg.Wait()
}

// ServeHTTP upgrades the request and streams snapshots of ?path= until the
// client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "hub closed", http.StatusServiceUnavailable)
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()
	defer h.wg.Done()

	path := r.URL.Query().Get("path")
	if path == "" {
		path = models.DefaultDocumentPath
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.cfg.OriginPatterns,
	})
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// Clients never send anything; CloseRead notices when they leave.
	ctx := conn.CloseRead(h.ctx)

	if err := h.write(ctx, conn, rpc.Frame{Type: rpc.FrameHello, Path: path}); err != nil {
		h.logger.Debug("Failed to send hello", "error", err)
		return
	}

	sub := &subscriber{path: path, send: make(chan []byte, sendBuffer)}
	if err := h.subscribe(ctx, sub); err != nil {
		h.logger.Error("Failed to subscribe", "path", path, "error", err)
		conn.Close(websocket.StatusInternalError, "failed to load document")
		return
	}
	defer h.unsubscribe(sub)

	h.logger.Info("Client connected", "path", path, "clients", h.ClientCount())

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "")
			return
		case msg, ok := <-sub.send:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "subscriber too slow")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				h.logger.Debug("Failed to send to client", "path", path, "error", err)
				return
			}
		}
	}
}

// Publish sends doc to every subscriber of its path.
func (h *Hub) Publish(doc *storage.Document) {
	msg, err := json.Marshal(snapshotFrame(doc.Path, doc))
	if err != nil {
		h.logger.Error("Failed to marshal snapshot", "path", doc.Path, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[doc.Path] {
		select {
		case sub.send <- msg:
			metrics.HubBroadcasts.WithLabelValues("sent").Inc()
		default:
			metrics.HubBroadcasts.WithLabelValues("dropped").Inc()
			h.logger.Warn("Dropping slow subscriber", "path", doc.Path)
			h.removeLocked(sub)
		}
	}
}

// ClientCount returns the number of subscribers across all paths.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, subs := range h.subs {
		n += len(subs)
	}
	return n
}

// HandleHealth reports hub status.
func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": h.ClientCount(),
	})
}

// subscribe registers sub and queues the current snapshot as its first message.
func (h *Hub) subscribe(ctx context.Context, sub *subscriber) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, err := h.store.GetDocument(ctx, sub.path)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to get document: %w", err)
	}

	// A missing document is announced as a snapshot without data.
	msg, err := json.Marshal(snapshotFrame(sub.path, doc))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	sub.send <- msg

	if h.subs[sub.path] == nil {
		h.subs[sub.path] = make(map[*subscriber]struct{})
	}
	h.subs[sub.path][sub] = struct{}{}
	metrics.HubClients.Inc()
	return nil
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *subscriber) {
	subs := h.subs[sub.path]
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subs, sub.path)
	}
	close(sub.send)
	metrics.HubClients.Dec()
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, frame rpc.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

func snapshotFrame(path string, doc *storage.Document) rpc.Frame {
	frame := rpc.Frame{Type: rpc.FrameSnapshot, Path: path}
	if doc != nil {
		frame.Revision = doc.Revision
		frame.Writer = doc.Writer
		frame.Data = json.RawMessage(doc.Data)
	}
	return frame
}
