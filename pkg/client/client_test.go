package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/goleak"

	"github.com/vango-dev/hyper/pkg/dom"
	"github.com/vango-dev/hyper/pkg/protocol"
	"github.com/vango-dev/hyper/pkg/vdom"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeServer runs handle on every upgraded connection and returns the
// ws:// URL.
func fakeServer(t *testing.T, handle func(conn *websocket.Conn)) string {
	t.Helper()
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade() error = %v", err)
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func send(t *testing.T, conn *websocket.Conn, ft protocol.FrameType, payload []byte) {
	t.Helper()
	data, err := protocol.NewFrame(ft, payload).Encode()
	if err != nil {
		t.Errorf("Encode() error = %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Errorf("WriteMessage() error = %v", err)
	}
}

func sendHello(t *testing.T, conn *websocket.Conn) {
	send(t, conn, protocol.FrameHello, protocol.EncodeHello(&protocol.Hello{
		Version:   protocol.CurrentVersion,
		SessionID: "s1",
		Body:      "h1",
	}))
}

func sendPatches(t *testing.T, conn *websocket.Conn, seq uint64, patches ...protocol.Patch) {
	send(t, conn, protocol.FramePatches, protocol.EncodePatches(&protocol.PatchesFrame{Seq: seq, Patches: patches}))
}

// counterTree is <div><button>+</button><span>0</span></div> with server
// HIDs h2..h6.
func counterTree() *protocol.VNodeWire {
	text := func(hid, s string) *protocol.VNodeWire {
		return &protocol.VNodeWire{Kind: vdom.KindText, HID: hid, Text: s}
	}
	return &protocol.VNodeWire{
		Kind: vdom.KindElement, Tag: "div", HID: "h2", Attrs: map[string]string{"id": "app"},
		Children: []*protocol.VNodeWire{
			{Kind: vdom.KindElement, Tag: "button", HID: "h3", Listeners: []string{"click"},
				Children: []*protocol.VNodeWire{text("h4", "+")}},
			{Kind: vdom.KindElement, Tag: "span", HID: "h5",
				Children: []*protocol.VNodeWire{text("h6", "0")}},
		},
	}
}

// drain reads until the connection ends and returns the decoded events.
func drain(conn *websocket.Conn, events chan<- *protocol.Event) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frame, err := protocol.DecodeFrame(msg)
		if err != nil || frame.Type != protocol.FrameEvent {
			continue
		}
		if ev, err := protocol.DecodeEvent(frame.Payload); err == nil {
			events <- ev
		}
	}
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func textIs(want string) func(*dom.Document) bool {
	return func(doc *dom.Document) bool { return doc.Body().TextContent() == want }
}

func TestMirrorAndEvents(t *testing.T) {
	events := make(chan *protocol.Event, 4)
	url := fakeServer(t, func(conn *websocket.Conn) {
		sendHello(t, conn)
		sendPatches(t, conn, 1, protocol.Patch{Op: protocol.PatchInsertNode, ParentID: "h1", Index: 0, Node: counterTree()})

		got := make(chan *protocol.Event, 4)
		go func() {
			drain(conn, got)
			close(got)
		}()
		ev, ok := <-got
		if !ok {
			return
		}
		events <- ev
		sendPatches(t, conn, 2, protocol.Patch{Op: protocol.PatchSetText, HID: "h6", Value: "1"})
		for ev := range got {
			events <- ev
		}
	})

	c, err := Dial(ctx(t), url)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	if c.SessionID() != "s1" {
		t.Errorf("SessionID() = %q, want s1", c.SessionID())
	}
	if err := c.Wait(ctx(t), textIs("+0")); err != nil {
		t.Fatalf("Wait(+0) error = %v; html = %s", err, c.HTML())
	}
	if got, want := c.HTML(), `<div id="app"><button>+</button><span>0</span></div>`; got != want {
		t.Errorf("HTML() = %s, want %s", got, want)
	}

	// Clicking the text inside the button is reported once, with the
	// deepest target.
	if err := c.Click("h4"); err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	select {
	case ev := <-events:
		if ev.HID != "h4" || ev.Name != "click" || ev.Seq != 1 {
			t.Errorf("event = %+v, want h4 click seq 1", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}

	if err := c.Wait(ctx(t), textIs("+1")); err != nil {
		t.Fatalf("Wait(+1) error = %v", err)
	}
	if c.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", c.Frames())
	}

	if err := c.Click("h99"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Click(h99) error = %v, want ErrNodeNotFound", err)
	}
}

func TestInputSendsValue(t *testing.T) {
	events := make(chan *protocol.Event, 1)
	url := fakeServer(t, func(conn *websocket.Conn) {
		sendHello(t, conn)
		sendPatches(t, conn, 1, protocol.Patch{Op: protocol.PatchInsertNode, ParentID: "h1", Node: &protocol.VNodeWire{
			Kind: vdom.KindElement, Tag: "input", HID: "h2", Listeners: []string{"input"},
		}})
		got := make(chan *protocol.Event, 1)
		go func() {
			drain(conn, got)
			close(got)
		}()
		for ev := range got {
			events <- ev
		}
	})

	c, err := Dial(ctx(t), url)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	if err := c.Wait(ctx(t), func(doc *dom.Document) bool { return doc.ByHID("h2") != nil }); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if err := c.Input("h2", "milk"); err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	select {
	case ev := <-events:
		if ev.Name != "input" || ev.Value != "milk" {
			t.Errorf("event = %+v, want input milk", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}
}

func TestDialErrors(t *testing.T) {
	tests := []struct {
		name   string
		handle func(t *testing.T, conn *websocket.Conn)
		want   string
	}{
		{
			name: "patches before hello",
			handle: func(t *testing.T, conn *websocket.Conn) {
				sendPatches(t, conn, 1)
			},
			want: "bad hello",
		},
		{
			name: "rejected",
			handle: func(t *testing.T, conn *websocket.Conn) {
				send(t, conn, protocol.FrameError, protocol.EncodeErrorMessage(
					protocol.NewFatalError(protocol.ErrServerError, "server: max sessions reached")))
			},
			want: "max sessions reached",
		},
		{
			name: "wrong major version",
			handle: func(t *testing.T, conn *websocket.Conn) {
				send(t, conn, protocol.FrameHello, protocol.EncodeHello(&protocol.Hello{
					Version: protocol.ProtocolVersion{Major: 9}, SessionID: "s1", Body: "h1",
				}))
			},
			want: "protocol 9.0",
		},
		{
			name: "foreign body",
			handle: func(t *testing.T, conn *websocket.Conn) {
				send(t, conn, protocol.FrameHello, protocol.EncodeHello(&protocol.Hello{
					Version: protocol.CurrentVersion, SessionID: "s1", Body: "h7",
				}))
			},
			want: `body "h7"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := fakeServer(t, func(conn *websocket.Conn) {
				tt.handle(t, conn)
				conn.ReadMessage()
			})
			c, err := Dial(ctx(t), url)
			if err == nil {
				c.Close()
				t.Fatal("Dial() error = nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Dial() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestWaitEnds(t *testing.T) {
	url := fakeServer(t, func(conn *websocket.Conn) {
		sendHello(t, conn)
		send(t, conn, protocol.FrameError, protocol.EncodeErrorMessage(protocol.NewError(protocol.ErrHandlerPanic, "boom")))
		conn.ReadMessage()
	})

	c, err := Dial(ctx(t), url)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	if err := c.Wait(ctx(t), func(*dom.Document) bool { return len(c.Errors()) == 1 }); err != nil {
		t.Fatalf("Wait(errors) error = %v", err)
	}
	if em := c.Errors()[0]; em.Code != protocol.ErrHandlerPanic || em.Message != "boom" {
		t.Errorf("Errors()[0] = %+v, want HandlerPanic boom", em)
	}

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.Wait(short, textIs("never")); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := c.Wait(ctx(t), textIs("never")); !errors.Is(err, ErrClosed) {
		t.Errorf("Wait() after Close error = %v, want ErrClosed", err)
	}
	if err := c.Send("h1", "click", ""); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() after Close error = %v, want ErrClosed", err)
	}
}

func TestPingIsAnswered(t *testing.T) {
	pong := make(chan uint64, 1)
	url := fakeServer(t, func(conn *websocket.Conn) {
		sendHello(t, conn)
		send(t, conn, protocol.FrameControl, protocol.EncodeControl(protocol.NewPing(42)))
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frame, err := protocol.DecodeFrame(msg)
			if err != nil || frame.Type != protocol.FrameControl {
				continue
			}
			if c, err := protocol.DecodeControl(frame.Payload); err == nil && c.Type == protocol.ControlPong {
				pong <- c.Timestamp
			}
		}
	})

	c, err := Dial(ctx(t), url)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	select {
	case ts := <-pong:
		if ts != 42 {
			t.Errorf("pong timestamp = %d, want 42", ts)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no pong")
	}
}
