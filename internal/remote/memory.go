package remote

import (
	"context"
	"sync"

	"github.com/mmynk/planboard/internal/models"
)

// MemoryServer is an in-process document holder with the same write and
// broadcast semantics as the document server. Clients get their own
// connectivity stream so tests can cut one link at a time.
type MemoryServer struct {
	mu       sync.Mutex
	doc      *models.Document
	revision int64
	writer   string
	clients  map[*MemoryClient]struct{}
	writes   int
}

// NewMemoryServer creates a server holding no document.
func NewMemoryServer() *MemoryServer {
	return &MemoryServer{clients: make(map[*MemoryClient]struct{})}
}

// Seed stores doc without counting it as a client write.
func (s *MemoryServer) Seed(doc models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := doc.Clone()
	s.doc = &d
	s.revision++
	s.writer = ""
}

// Document returns the stored document and its revision.
func (s *MemoryServer) Document() (models.Document, int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return models.Document{}, 0, false
	}
	return s.doc.Clone(), s.revision, true
}

// Writes returns how many client writes were accepted.
func (s *MemoryServer) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Connect attaches a new connected client. It receives the current document
// right away, like a fresh subscription.
func (s *MemoryServer) Connect() *MemoryClient {
	c := &MemoryClient{
		server:       s,
		snapshots:    make(chan models.Snapshot, 64),
		connectivity: make(chan bool, 1),
		connected:    true,
	}
	c.connectivity <- true

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
	if s.doc != nil {
		c.deliver(s.snapshotLocked())
	}
	return c
}

func (s *MemoryServer) set(doc models.Document, writer string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := doc.Clone()
	s.doc = &d
	s.revision++
	s.writer = writer
	s.writes++

	snap := s.snapshotLocked()
	for c := range s.clients {
		if c.isConnected() {
			c.deliver(snap)
		}
	}
	return s.revision
}

func (s *MemoryServer) snapshotLocked() models.Snapshot {
	snap := models.SnapshotOf(*s.doc)
	snap.Revision = s.revision
	snap.Writer = s.writer
	return snap
}

// MemoryClient is one client's view of a MemoryServer.
type MemoryClient struct {
	server       *MemoryServer
	snapshots    chan models.Snapshot
	connectivity chan bool

	mu        sync.Mutex
	connected bool
	failWith  error
	closed    bool
}

var _ Remote = (*MemoryClient)(nil)

func (c *MemoryClient) Snapshots() <-chan models.Snapshot { return c.snapshots }

func (c *MemoryClient) Connectivity() <-chan bool { return c.connectivity }

// Set overwrites the server document.
func (c *MemoryClient) Set(ctx context.Context, doc models.Document, writer string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	connected, failWith := c.connected, c.failWith
	c.mu.Unlock()

	if !connected {
		return 0, ErrDisconnected
	}
	if failWith != nil {
		return 0, failWith
	}
	return c.server.set(doc, writer), nil
}

// FailWrites makes every Set return err until called again with nil.
func (c *MemoryClient) FailWrites(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWith = err
}

// SetConnected simulates the link going down or coming back. Reconnecting
// delivers the current document, as a new subscription would.
func (c *MemoryClient) SetConnected(up bool) {
	c.mu.Lock()
	if c.closed || c.connected == up {
		c.mu.Unlock()
		return
	}
	c.connected = up
	select {
	case <-c.connectivity:
	default:
	}
	c.connectivity <- up
	c.mu.Unlock()

	if up {
		c.server.mu.Lock()
		if c.server.doc != nil {
			c.deliver(c.server.snapshotLocked())
		}
		c.server.mu.Unlock()
	}
}

// Close detaches the client and closes its channels.
func (c *MemoryClient) Close() {
	c.server.mu.Lock()
	delete(c.server.clients, c)
	c.server.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.connected = false
	close(c.snapshots)
	close(c.connectivity)
}

func (c *MemoryClient) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// deliver queues snap, dropping the oldest queued snapshot when full.
// Callers hold server.mu.
func (c *MemoryClient) deliver(snap models.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for {
		select {
		case c.snapshots <- snap:
			return
		default:
		}
		select {
		case <-c.snapshots:
		default:
		}
	}
}
