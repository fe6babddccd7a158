package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/hyper/pkg/dom"
	"github.com/vango-dev/hyper/pkg/protocol"
	"github.com/vango-dev/hyper/pkg/vdom"
)

var (
	// ErrClosed is returned once the connection has ended.
	ErrClosed = errors.New("client: connection closed")

	// ErrNodeNotFound is returned when a HID is not in the mirror.
	ErrNodeNotFound = errors.New("client: node not found")

	// ErrBadHello is returned by Dial when the server's first frame is not
	// a usable Hello.
	ErrBadHello = errors.New("client: bad hello")
)

// Client is a connection to a hyper server session. It keeps a mirror
// document up to date with the server's patches and reports events raised
// on the mirror back to the server.
type Client struct {
	conn   *websocket.Conn
	doc    *dom.Document
	hello  *protocol.Hello
	logger *slog.Logger

	writeMu sync.Mutex
	seq     atomic.Uint64
	frames  atomic.Uint64

	// changed is closed and replaced after every applied frame.
	mu      sync.Mutex
	changed chan struct{}
	errs    []*protocol.ErrorMessage
	err     error

	done chan struct{}
}

// Option configures Dial.
type Option func(*options)

type options struct {
	dialer *websocket.Dialer
	header http.Header
	logger *slog.Logger
}

// WithDialer sets the WebSocket dialer. The default is
// websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithHeader sets request headers for the upgrade.
func WithHeader(h http.Header) Option {
	return func(o *options) { o.header = h }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Dial connects to a session endpoint such as "ws://localhost:8080/ws" and
// waits for the server's Hello.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	o := options{dialer: websocket.DefaultDialer, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	conn, _, err := o.dialer.DialContext(ctx, url, o.header)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", url, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}
	hello, err := readHello(conn)
	conn.SetReadDeadline(time.Time{})
	if err != nil {
		conn.Close()
		return nil, err
	}

	c := &Client{
		conn:    conn,
		doc:     dom.NewDocument(),
		hello:   hello,
		logger:  o.logger.With("component", "client", "session_id", hello.SessionID),
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
	if hello.Body != c.doc.Body().HID {
		conn.Close()
		return nil, fmt.Errorf("%w: body %q", ErrBadHello, hello.Body)
	}

	go c.readLoop()
	return c, nil
}

func readHello(conn *websocket.Conn) (*protocol.Hello, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("client: read hello: %w", err)
	}
	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHello, err)
	}

	switch frame.Type {
	case protocol.FrameHello:
	case protocol.FrameError:
		if em, err := protocol.DecodeErrorMessage(frame.Payload); err == nil {
			return nil, fmt.Errorf("client: rejected: %w", em)
		}
		fallthrough
	default:
		return nil, fmt.Errorf("%w: got %s frame", ErrBadHello, frame.Type)
	}

	hello, err := protocol.DecodeHello(frame.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHello, err)
	}
	if hello.Version.Major != protocol.CurrentVersion.Major {
		return nil, fmt.Errorf("%w: protocol %s", ErrBadHello, hello.Version)
	}
	return hello, nil
}

func (c *Client) readLoop() {
	defer close(c.done)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.finish(err)
			return
		}
		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			c.logger.Warn("frame decode error", "error", err)
			continue
		}

		switch frame.Type {
		case protocol.FramePatches:
			if err := c.applyPatches(frame.Payload); err != nil {
				c.logger.Error("apply patches failed", "error", err)
				c.conn.Close()
				c.finish(err)
				return
			}

		case protocol.FrameError:
			em, err := protocol.DecodeErrorMessage(frame.Payload)
			if err != nil {
				c.logger.Warn("error decode error", "error", err)
				continue
			}
			c.logger.Warn("server error", "code", em.Code, "message", em.Message)
			c.mu.Lock()
			c.errs = append(c.errs, em)
			c.mu.Unlock()
			c.notify()

		case protocol.FrameControl:
			ctrl, err := protocol.DecodeControl(frame.Payload)
			if err != nil {
				continue
			}
			switch ctrl.Type {
			case protocol.ControlPing:
				c.write(protocol.FrameControl, protocol.EncodeControl(protocol.NewPong(ctrl.Timestamp)))
			case protocol.ControlClose:
				c.logger.Info("server closing", "reason", ctrl.Reason, "message", ctrl.Message)
			}
		}
	}
}

func (c *Client) applyPatches(payload []byte) error {
	pf, err := protocol.DecodePatches(payload)
	if err != nil {
		return err
	}
	patches := make([]vdom.Patch, len(pf.Patches))
	for i, p := range pf.Patches {
		patches[i] = p.ToVDOM()
	}
	if err := c.doc.Apply(patches, c.bind); err != nil {
		return fmt.Errorf("client: frame %d: %w", pf.Seq, err)
	}
	c.frames.Add(1)
	c.notify()
	return nil
}

// bind turns an event name from the wire into a listener that reports the
// event to the server. The server bubbles events itself, so propagation
// stops at the first mirror listener.
func (c *Client) bind(handler any) dom.Listener {
	name, ok := handler.(string)
	if !ok {
		return nil
	}
	return func(ev *dom.Event) {
		ev.StopPropagation()
		if err := c.Send(ev.Target.HID, name, ev.Value); err != nil {
			c.logger.Debug("event not sent", "hid", ev.Target.HID, "event", name, "error", err)
		}
	}
}

func (c *Client) finish(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Client) notify() {
	c.mu.Lock()
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()
}

func (c *Client) write(ft protocol.FrameType, payload []byte) error {
	data, err := protocol.NewFrame(ft, payload).Encode()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Send reports an event for hid to the server without touching the
// mirror.
func (c *Client) Send(hid, event, value string) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	return c.write(protocol.FrameEvent, protocol.EncodeEvent(&protocol.Event{
		Seq:   c.seq.Add(1),
		HID:   hid,
		Name:  event,
		Value: value,
	}))
}

// Click clicks the mirror node with the given HID. The click is reported
// by the nearest node listening for it.
func (c *Client) Click(hid string) error {
	n := c.doc.ByHID(hid)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, hid)
	}
	n.Click()
	return nil
}

// Input sets the value of the mirror node with the given HID and raises an
// input event.
func (c *Client) Input(hid, value string) error {
	n := c.doc.ByHID(hid)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, hid)
	}
	n.Input(value)
	return nil
}

// Wait blocks until pred holds for the mirror, ctx ends, or the connection
// ends. pred is checked once immediately and again after every applied
// frame.
func (c *Client) Wait(ctx context.Context, pred func(doc *dom.Document) bool) error {
	for {
		c.mu.Lock()
		changed, err := c.changed, c.err
		c.mu.Unlock()

		if pred(c.doc) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrClosed, err)
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Changed returns a channel closed after the next applied frame or error.
func (c *Client) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// Document returns the mirror document.
func (c *Client) Document() *dom.Document { return c.doc }

// HTML returns the mirror body's inner HTML.
func (c *Client) HTML() string { return c.doc.Body().InnerHTML() }

// SessionID returns the server's session ID.
func (c *Client) SessionID() string { return c.hello.SessionID }

// Frames returns the number of patch frames applied.
func (c *Client) Frames() uint64 { return c.frames.Load() }

// Errors returns the error frames received so far.
func (c *Client) Errors() []*protocol.ErrorMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*protocol.ErrorMessage(nil), c.errs...)
}

// Done is closed when the connection has ended.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close sends a Close control message, closes the connection and waits
// for the read loop to exit. It is safe to call more than once.
func (c *Client) Close() error {
	select {
	case <-c.done:
		return nil
	default:
	}
	c.write(protocol.FrameControl, protocol.EncodeControl(protocol.NewClose(protocol.CloseNormal, "")))

	c.writeMu.Lock()
	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}
