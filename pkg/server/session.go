package server

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/hyper/pkg/app"
	"github.com/vango-dev/hyper/pkg/dom"
	"github.com/vango-dev/hyper/pkg/middleware"
	"github.com/vango-dev/hyper/pkg/protocol"
	"github.com/vango-dev/hyper/pkg/vdom"
)

// AppFactory builds the app for a new session. The returned Config's Node
// is replaced by the session's mount element.
type AppFactory func(sessionID string) app.Config

// Session is one WebSocket connection running one app against its own
// document. Patches applied to the document are streamed to the client;
// events from the client are dispatched through the document.
type Session struct {
	// Identity
	ID        string
	IP        string
	CreatedAt time.Time

	conn    *websocket.Conn
	config  *SessionConfig
	logger  *slog.Logger
	metrics *middleware.Metrics

	doc *dom.Document

	// Write side. mu serializes every write to conn and guards the fields
	// below.
	mu        sync.Mutex
	app       *app.App
	mounted   bool
	sendSeq   uint64
	listeners map[listenerKey]struct{}

	lastActive atomic.Int64
	recvSeq    atomic.Uint64
	closed     atomic.Bool
	events     chan *protocol.Event
	done       chan struct{}
	loops      sync.WaitGroup
	onClose    func(*Session)

	// Metrics
	eventCount atomic.Uint64
	patchCount atomic.Uint64
	bytesSent  atomic.Uint64
	bytesRecv  atomic.Uint64
}

// listenerKey names an event the client reports for a node.
type listenerKey struct {
	hid   string
	event string
}

// SessionStats is a point-in-time view of a session's counters.
type SessionStats struct {
	ID            string
	IP            string
	CreatedAt     time.Time
	LastActive    time.Time
	Events        uint64
	Patches       uint64
	BytesSent     uint64
	BytesReceived uint64
	Subscriptions int
}

func newSession(conn *websocket.Conn, ip string, config *SessionConfig, logger *slog.Logger) *Session {
	now := time.Now()
	id := uuid.NewString()

	s := &Session{
		ID:        id,
		IP:        ip,
		CreatedAt: now,
		conn:      conn,
		config:    config,
		logger:    logger.With("session_id", id),
		listeners: make(map[listenerKey]struct{}),
		events:    make(chan *protocol.Event, config.MaxEventQueue),
		done:      make(chan struct{}),
	}
	s.lastActive.Store(now.UnixNano())
	return s
}

// Mount sends the Hello frame and mounts the app built by factory on a
// fresh document. The first render is sent as a single InsertNode of the
// whole mount root into the client's body.
func (s *Session) Mount(factory AppFactory, opts ...app.Option) (err error) {
	doc := dom.NewDocument()
	node := doc.CreateElement("div")
	node.SetAttribute("id", "app")
	doc.Body().AppendChild(node)
	s.doc = doc

	if err := s.sendHello(); err != nil {
		return &SessionError{SessionID: s.ID, Op: "hello", Err: err}
	}

	cfg := factory(s.ID)
	cfg.Node = node

	all := make([]app.Option, 0, len(opts)+2)
	all = append(all, app.WithLogger(s.logger))
	all = append(all, opts...)
	all = append(all, app.WithObserver(app.Observer{OnRender: s.onRender}))

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("mount panic", "panic", r, "stack", string(debug.Stack()))
			err = &SessionError{SessionID: s.ID, Op: "mount", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	a, err := app.Mount(cfg, all...)
	if err != nil {
		return &SessionError{SessionID: s.ID, Op: "mount", Err: err}
	}

	s.mu.Lock()
	s.app = a
	s.mu.Unlock()

	s.logger.Info("session mounted", "root", node.HID)
	return nil
}

// onRender streams the patches of one render. It runs on whichever
// goroutine is draining the app's queue.
func (s *Session) onRender(a *app.App, patches []vdom.Patch) {
	err := s.streamRender(a, patches)
	if err != nil {
		s.logger.Error("send patches failed", "error", err)
		s.recordError("write")
		s.Close()
	}
}

func (s *Session) streamRender(a *app.App, patches []vdom.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil
	}

	var wire []protocol.Patch
	if !s.mounted {
		s.mounted = true
		root := protocol.VNodeToWire(s.doc.Snapshot(a.Node()))
		s.trackListeners(root)
		wire = []protocol.Patch{{
			Op:       protocol.PatchInsertNode,
			ParentID: s.doc.Body().HID,
			Index:    0,
			Node:     root,
		}}
	} else {
		wire = s.translate(patches)
	}
	if len(wire) == 0 {
		return nil
	}
	return s.sendPatchesLocked(wire)
}

// translate converts patches for the wire. A SetListener for an event the
// client already reports is dropped: handlers change identity on every
// render but the client only needs the event name.
func (s *Session) translate(patches []vdom.Patch) []protocol.Patch {
	out := make([]protocol.Patch, 0, len(patches))
	for _, p := range patches {
		w := protocol.FromVDOM(p)
		switch w.Op {
		case protocol.PatchSetListener:
			key := listenerKey{w.HID, w.Key}
			if _, ok := s.listeners[key]; ok {
				continue
			}
			s.listeners[key] = struct{}{}
		case protocol.PatchRemoveListener:
			delete(s.listeners, listenerKey{w.HID, w.Key})
		case protocol.PatchInsertNode, protocol.PatchReplaceNode:
			s.trackListeners(w.Node)
		}
		out = append(out, w)
	}
	return out
}

func (s *Session) trackListeners(n *protocol.VNodeWire) {
	if n == nil {
		return
	}
	for _, ev := range n.Listeners {
		s.listeners[listenerKey{n.HID, ev}] = struct{}{}
	}
	for _, c := range n.Children {
		s.trackListeners(c)
	}
}

// sendPatchesLocked sends patches in one frame, splitting the batch in
// order when it does not fit. The caller must hold mu.
func (s *Session) sendPatchesLocked(patches []protocol.Patch) error {
	seq := s.sendSeq + 1
	payload := protocol.EncodePatches(&protocol.PatchesFrame{Seq: seq, Patches: patches})
	if len(payload) > protocol.MaxPayloadSize && len(patches) > 1 {
		mid := len(patches) / 2
		if err := s.sendPatchesLocked(patches[:mid]); err != nil {
			return err
		}
		return s.sendPatchesLocked(patches[mid:])
	}

	if err := s.writeFrameLocked(protocol.FramePatches, payload); err != nil {
		return err
	}
	s.sendSeq = seq
	s.patchCount.Add(uint64(len(patches)))

	s.logger.Debug("sent patches",
		"seq", seq,
		"count", len(patches),
		"bytes", len(payload))
	return nil
}

// writeFrameLocked encodes and writes one frame. The caller must hold mu.
func (s *Session) writeFrameLocked(ft protocol.FrameType, payload []byte) error {
	data, err := protocol.NewFrame(ft, payload).Encode()
	if err != nil {
		return fmt.Errorf("%s frame: %w", ft, err)
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return err
	}
	s.bytesSent.Add(uint64(len(data)))
	return nil
}

// writeFrame writes one frame unless the session is closed.
func (s *Session) writeFrame(ft protocol.FrameType, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	return s.writeFrameLocked(ft, payload)
}

func (s *Session) sendHello() error {
	return s.writeFrame(protocol.FrameHello, protocol.EncodeHello(&protocol.Hello{
		Version:   protocol.CurrentVersion,
		SessionID: s.ID,
		Body:      s.doc.Body().HID,
	}))
}

// sendErrorMessage sends an error frame to the client.
func (s *Session) sendErrorMessage(em *protocol.ErrorMessage) {
	if err := s.writeFrame(protocol.FrameError, protocol.EncodeErrorMessage(em)); err != nil && err != ErrSessionClosed {
		s.logger.Error("error frame failed", "code", em.Code, "error", err)
	}
}

// handleEvent dispatches a client event through the document. Panics from
// the app are reported to the client and the session keeps running.
func (s *Session) handleEvent(ev *protocol.Event) {
	s.eventCount.Add(1)

	target := s.doc.ByHID(ev.HID)
	if target == nil || !s.doc.Contains(target) {
		s.logger.Warn("event for unknown node", "hid", ev.HID, "event", ev.Name)
		s.sendErrorMessage(protocol.NewError(protocol.ErrHandlerNotFound, "unknown node "+ev.HID))
		return
	}

	s.safeExecute(ev, func() {
		if ev.Name == "input" {
			target.Input(ev.Value)
			return
		}
		s.doc.DispatchEvent(target, &dom.Event{Type: ev.Name, Value: ev.Value})
	})
}

func (s *Session) safeExecute(ev *protocol.Event, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic",
				"hid", ev.HID,
				"event", ev.Name,
				"panic", r,
				"stack", string(debug.Stack()))
			s.sendErrorMessage(protocol.NewError(protocol.ErrHandlerPanic, fmt.Sprint(r)))
		}
	}()
	fn()
}

// QueueEvent queues an event for the event loop.
func (s *Session) QueueEvent(ev *protocol.Event) error {
	select {
	case s.events <- ev:
		return nil
	default:
		s.logger.Warn("event queue full, dropping event", "hid", ev.HID)
		return ErrEventQueueFull
	}
}

// Start starts the read, heartbeat and event loops. It does nothing on a
// closed session.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return
	}

	s.loops.Add(3)
	go func() {
		defer s.loops.Done()
		s.ReadLoop()
	}()
	go func() {
		defer s.loops.Done()
		s.WriteLoop()
	}()
	go func() {
		defer s.loops.Done()
		s.EventLoop()
	}()
}

// Wait blocks until every session loop has exited.
func (s *Session) Wait() {
	s.loops.Wait()
}

// Close unmounts the app and closes the connection. It is idempotent.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)

	s.mu.Lock()
	a := s.app
	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.conn.Close()
	s.mu.Unlock()

	a.Unmount()

	if s.onClose != nil {
		s.onClose(s)
	}

	s.logger.Info("session closed",
		"events", s.eventCount.Load(),
		"patches", s.patchCount.Load(),
		"bytes_sent", s.bytesSent.Load(),
		"bytes_recv", s.bytesRecv.Load())
}

// SendClose sends a Close control message. The connection stays open
// until Close.
func (s *Session) SendClose(reason protocol.CloseReason, message string) {
	if err := s.writeFrame(protocol.FrameControl, protocol.EncodeControl(protocol.NewClose(reason, message))); err != nil && err != ErrSessionClosed {
		s.logger.Debug("close frame failed", "error", err)
	}
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel that's closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// App returns the mounted app, or nil before Mount.
func (s *Session) App() *app.App {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.app
}

// Document returns the session's document.
func (s *Session) Document() *dom.Document {
	return s.doc
}

// LastActive returns the time of the last message from the client.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// UpdateLastActive marks the session as active now.
func (s *Session) UpdateLastActive() {
	s.lastActive.Store(time.Now().UnixNano())
}

// Stats returns the session's counters.
func (s *Session) Stats() SessionStats {
	st := SessionStats{
		ID:            s.ID,
		IP:            s.IP,
		CreatedAt:     s.CreatedAt,
		LastActive:    s.LastActive(),
		Events:        s.eventCount.Load(),
		Patches:       s.patchCount.Load(),
		BytesSent:     s.bytesSent.Load(),
		BytesReceived: s.bytesRecv.Load(),
	}
	if a := s.App(); a != nil {
		st.Subscriptions = a.ActiveSubscriptions()
	}
	return st
}

func (s *Session) recordError(kind string) {
	if s.metrics != nil {
		s.metrics.WebSocketError(kind)
	}
}
