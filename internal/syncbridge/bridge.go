// Package syncbridge keeps the Local State Store and the remote document
// eventually consistent.
//
// # Inbound
//
// Every snapshot from the remote replaces the collections it carries. Our own
// writes come back as snapshots too; they are recognized by write token and
// revision and dropped. Snapshots that arrive while local edits are pending or
// a write is in flight are parked and reconsidered once the write finishes, so
// a remote value never clobbers an edit that has not been sent yet.
//
// # Outbound
//
// Local changes (re)start a debounce timer. When it fires, the whole document
// is written in one overwrite. Writes are last-write-wins; nothing is merged.
// While the link is down, changes are not queued: the next change after
// reconnecting triggers the write.
//
// The bridge state lives in a single goroutine (Run); everything else talks to
// it through channels.
package syncbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/planboard/internal/connmon"
	"github.com/mmynk/planboard/internal/metrics"
	"github.com/mmynk/planboard/internal/models"
	"github.com/mmynk/planboard/internal/remote"
	"github.com/mmynk/planboard/internal/state"
)

// ErrStopped is returned by Flush when the bridge shuts down first.
var ErrStopped = errors.New("sync bridge stopped")

// EchoStrategy selects how the bridge recognizes its own writes.
type EchoStrategy string

const (
	// EchoToken compares write tokens and server revisions.
	EchoToken EchoStrategy = "token"

	// EchoWindow ignores snapshots and local changes for a fixed window after
	// applying a snapshot. A slow round-trip can still let a stale echo
	// through, or swallow an edit made inside the window.
	EchoWindow EchoStrategy = "window"
)

// ParseEchoStrategy parses a config value. Empty means EchoToken.
func ParseEchoStrategy(s string) (EchoStrategy, error) {
	switch EchoStrategy(s) {
	case "", EchoToken:
		return EchoToken, nil
	case EchoWindow:
		return EchoWindow, nil
	}
	return "", fmt.Errorf("unknown echo strategy %q", s)
}

// Config holds bridge timing.
type Config struct {
	// Debounce is the quiet period after the last local change before a write.
	Debounce time.Duration

	// EchoWindow is the suppression window used by EchoWindow.
	EchoWindow time.Duration

	// ToastDuration is how long Status.Synchronized stays set after a write.
	ToastDuration time.Duration

	// WriteTimeout bounds one remote write.
	WriteTimeout time.Duration

	EchoStrategy EchoStrategy
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		Debounce:      1500 * time.Millisecond,
		EchoWindow:    500 * time.Millisecond,
		ToastDuration: 2 * time.Second,
		WriteTimeout:  10 * time.Second,
		EchoStrategy:  EchoToken,
	}
}

// Status is a point-in-time view of the bridge.
type Status struct {
	Connected bool
	// Pending is set while a local change waits for its debounce.
	Pending bool
	// Syncing is set while a write is in flight.
	Syncing bool
	// Synchronized is set for ToastDuration after a successful write.
	Synchronized     bool
	LastSyncedAt     time.Time
	LastError        string
	Revision         int64
	Writes           int
	SnapshotsApplied int
	SnapshotsIgnored int
}

// EventType identifies an Event.
type EventType int

const (
	EventSnapshotApplied EventType = iota
	EventSyncStarted
	EventSynchronized
	EventSyncFailed
	EventConnectivity
)

func (t EventType) String() string {
	switch t {
	case EventSnapshotApplied:
		return "snapshot_applied"
	case EventSyncStarted:
		return "sync_started"
	case EventSynchronized:
		return "synchronized"
	case EventSyncFailed:
		return "sync_failed"
	case EventConnectivity:
		return "connectivity"
	}
	return "unknown"
}

// Event is emitted on every notable transition.
type Event struct {
	Type      EventType
	Revision  int64
	Connected bool
	Err       error
	At        time.Time
}

// Bridge synchronizes one Store with one Remote.
type Bridge struct {
	cfg     Config
	store   *state.Store
	remote  remote.Remote
	monitor *connmon.Monitor
	logger  *slog.Logger

	newToken func() string

	mu     sync.RWMutex
	status Status

	events chan Event
	flushC chan chan error
}

// New creates a Bridge. Zero durations in cfg fall back to DefaultConfig.
func New(store *state.Store, r remote.Remote, monitor *connmon.Monitor, cfg Config) *Bridge {
	def := DefaultConfig()
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.EchoWindow <= 0 {
		cfg.EchoWindow = def.EchoWindow
	}
	if cfg.ToastDuration <= 0 {
		cfg.ToastDuration = def.ToastDuration
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.EchoStrategy == "" {
		cfg.EchoStrategy = def.EchoStrategy
	}
	if monitor == nil {
		monitor = connmon.New()
	}

	return &Bridge{
		cfg:      cfg,
		store:    store,
		remote:   r,
		monitor:  monitor,
		logger:   slog.Default().With("component", "syncbridge"),
		newToken: uuid.NewString,
		events:   make(chan Event, 64),
		flushC:   make(chan chan error),
	}
}

// Status returns the current status.
func (b *Bridge) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// Events delivers bridge events. Events are dropped when nobody reads.
func (b *Bridge) Events() <-chan Event {
	return b.events
}

// Flush cancels the pending debounce and writes the current document now.
// It returns once that write has finished.
func (b *Bridge) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case b.flushC <- reply:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the bridge until ctx is done. An in-flight write is allowed to
// finish before Run returns.
func (b *Bridge) Run(ctx context.Context) error {
	changes, unsubscribe := b.store.Subscribe()
	defer unsubscribe()
	connC, unsubscribeConn := b.monitor.Subscribe()
	defer unsubscribeConn()

	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.monitor.Run(ctx, b.remote.Connectivity())
	}()

	l := &loop{
		Bridge:    b,
		ctx:       ctx,
		writeDone: make(chan writeResult, 1),
	}
	l.setConnected(b.monitor.Connected())
	return l.run(changes, connC)
}

type writeResult struct {
	token    string
	revision int64
	err      error
}

// loop is the state owned by the Run goroutine.
type loop struct {
	*Bridge
	ctx context.Context

	connected bool
	// dirty is set when a local change has not been written yet.
	dirty bool

	debounce  *time.Timer
	debounceC <-chan time.Time
	toast     *time.Timer
	toastC    <-chan time.Time

	inFlight  bool
	rewrite   bool
	writeDone chan writeResult
	waiters   []chan error

	parked       *models.Snapshot
	lastRevision int64
	tokens       []string

	suppressUntil time.Time
}

// ownTokens bounds the memory of our recent write tokens.
const ownTokens = 16

func (l *loop) run(changes <-chan state.Change, connC <-chan bool) error {
	snapshots := l.remote.Snapshots()
	defer l.shutdown()

	for {
		select {
		case <-l.ctx.Done():
			return nil

		case snap, ok := <-snapshots:
			if !ok {
				snapshots = nil
				continue
			}
			l.handleSnapshot(snap)

		case up, ok := <-connC:
			if !ok {
				connC = nil
				continue
			}
			l.handleConnectivity(up)

		case c, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			l.handleChange(c)

		case <-l.debounceC:
			l.debounceC = nil
			l.startWrite()

		case res := <-l.writeDone:
			l.handleWriteDone(res)

		case <-l.toastC:
			l.toastC = nil
			l.updateStatus(func(s *Status) { s.Synchronized = false })

		case reply := <-l.flushC:
			l.handleFlush(reply)
		}
	}
}

func (l *loop) shutdown() {
	l.stopDebounce()
	if l.toast != nil {
		l.toast.Stop()
	}
	if l.inFlight {
		l.handleWriteDone(<-l.writeDone)
	}
	for _, w := range l.waiters {
		w <- ErrStopped
	}
	l.waiters = nil
}

func (l *loop) handleSnapshot(snap models.Snapshot) {
	if snap.Empty() {
		l.ignore(snap, "empty")
		return
	}

	if l.cfg.EchoStrategy == EchoWindow {
		if l.inFlight || time.Now().Before(l.suppressUntil) {
			l.ignore(snap, "echo window")
			return
		}
		l.apply(snap)
		l.suppressUntil = time.Now().Add(l.cfg.EchoWindow)
		return
	}

	if snap.Writer != "" && slices.Contains(l.tokens, snap.Writer) {
		if snap.Revision > l.lastRevision {
			l.lastRevision = snap.Revision
		}
		l.ignore(snap, "own write")
		return
	}
	if snap.Revision != 0 && snap.Revision <= l.lastRevision {
		l.ignore(snap, "stale")
		return
	}
	if l.inFlight || l.dirty {
		l.parked = &snap
		metrics.BridgeSnapshots.WithLabelValues("parked").Inc()
		l.logger.Debug("Snapshot parked", "revision", snap.Revision, "in_flight", l.inFlight, "dirty", l.dirty)
		return
	}
	l.apply(snap)
}

func (l *loop) apply(snap models.Snapshot) {
	l.store.ApplySnapshot(snap)
	if snap.Revision > l.lastRevision {
		l.lastRevision = snap.Revision
	}
	metrics.BridgeSnapshots.WithLabelValues("applied").Inc()
	l.logger.Debug("Snapshot applied", "revision", snap.Revision, "fields", snap.Fields())

	rev := l.lastRevision
	l.updateStatus(func(s *Status) {
		s.SnapshotsApplied++
		s.Revision = rev
	})
	l.emit(Event{Type: EventSnapshotApplied, Revision: snap.Revision})
}

func (l *loop) ignore(snap models.Snapshot, reason string) {
	metrics.BridgeSnapshots.WithLabelValues("ignored").Inc()
	l.logger.Debug("Snapshot ignored", "revision", snap.Revision, "reason", reason)
	l.updateStatus(func(s *Status) { s.SnapshotsIgnored++ })
}

// applyParked applies a parked snapshot once nothing local is pending.
func (l *loop) applyParked() {
	if l.parked == nil || l.inFlight || l.dirty {
		return
	}
	snap := *l.parked
	l.parked = nil
	l.handleSnapshot(snap)
}

func (l *loop) handleChange(c state.Change) {
	if c.Origin != state.OriginLocal {
		return
	}
	if l.cfg.EchoStrategy == EchoWindow && time.Now().Before(l.suppressUntil) {
		l.logger.Debug("Change inside echo window not scheduled", "revision", c.Revision)
		return
	}
	if !l.connected {
		l.logger.Debug("Offline, change not scheduled", "revision", c.Revision)
		return
	}

	l.setDirty(true)
	l.stopDebounce()
	l.debounce = time.NewTimer(l.cfg.Debounce)
	l.debounceC = l.debounce.C
}

func (l *loop) handleConnectivity(up bool) {
	if up == l.connected {
		return
	}
	l.setConnected(up)
	l.emit(Event{Type: EventConnectivity, Connected: up})

	if !up {
		// Nothing is queued while offline.
		l.stopDebounce()
		l.setDirty(false)
		l.applyParked()
	}
}

func (l *loop) setConnected(up bool) {
	l.connected = up
	l.updateStatus(func(s *Status) { s.Connected = up })
}

func (l *loop) setDirty(v bool) {
	l.dirty = v
	l.updateStatus(func(s *Status) { s.Pending = v })
}

func (l *loop) handleFlush(reply chan error) {
	if !l.connected {
		reply <- remote.ErrDisconnected
		return
	}
	l.stopDebounce()
	l.waiters = append(l.waiters, reply)
	l.startWrite()
}

func (l *loop) startWrite() {
	if !l.connected {
		l.setDirty(false)
		l.finishWaiters(remote.ErrDisconnected)
		return
	}
	if l.inFlight {
		l.rewrite = true
		return
	}

	doc := l.store.Document()
	token := l.newToken()
	l.tokens = append(l.tokens, token)
	if len(l.tokens) > ownTokens {
		l.tokens = l.tokens[len(l.tokens)-ownTokens:]
	}
	l.inFlight = true
	l.setDirty(false)

	l.updateStatus(func(s *Status) { s.Syncing = true })
	l.emit(Event{Type: EventSyncStarted})
	l.logger.Debug("Writing document", "token", token)

	// The write is not tied to ctx cancellation; shutdown waits for it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(l.ctx), l.cfg.WriteTimeout)
	go func() {
		defer cancel()
		rev, err := l.remote.Set(ctx, doc, token)
		l.writeDone <- writeResult{token: token, revision: rev, err: err}
	}()
}

func (l *loop) handleWriteDone(res writeResult) {
	l.inFlight = false

	if res.err != nil {
		metrics.BridgeWrites.WithLabelValues("error").Inc()
		l.logger.Error("Sync failed", "error", res.err)
		l.updateStatus(func(s *Status) {
			s.Syncing = false
			s.LastError = res.err.Error()
		})
		l.emit(Event{Type: EventSyncFailed, Err: res.err})
	} else {
		if res.revision > l.lastRevision {
			l.lastRevision = res.revision
		}
		metrics.BridgeWrites.WithLabelValues("ok").Inc()
		l.logger.Info("Synchronized", "revision", res.revision)

		now := time.Now()
		rev := l.lastRevision
		l.updateStatus(func(s *Status) {
			s.Syncing = false
			s.Synchronized = true
			s.LastSyncedAt = now
			s.LastError = ""
			s.Revision = rev
			s.Writes++
		})
		if l.toast != nil {
			l.toast.Stop()
		}
		l.toast = time.NewTimer(l.cfg.ToastDuration)
		l.toastC = l.toast.C
		l.emit(Event{Type: EventSynchronized, Revision: res.revision, At: now})
	}

	if l.rewrite && l.ctx.Err() == nil {
		l.rewrite = false
		l.startWrite()
		return
	}
	l.rewrite = false
	l.finishWaiters(res.err)
	l.applyParked()
}

func (l *loop) finishWaiters(err error) {
	for _, w := range l.waiters {
		w <- err
	}
	l.waiters = nil
}

func (l *loop) stopDebounce() {
	if l.debounce != nil {
		l.debounce.Stop()
	}
	l.debounceC = nil
}

func (b *Bridge) updateStatus(fn func(s *Status)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.status)
}

func (b *Bridge) emit(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	select {
	case b.events <- e:
	default:
	}
}
