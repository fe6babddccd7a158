package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/goleak"

	"github.com/vango-dev/hyper/pkg/app"
	"github.com/vango-dev/hyper/pkg/client"
	"github.com/vango-dev/hyper/pkg/dom"
	"github.com/vango-dev/hyper/pkg/fx"
	"github.com/vango-dev/hyper/pkg/middleware"
	"github.com/vango-dev/hyper/pkg/protocol"
	"github.com/vango-dev/hyper/pkg/server"
	"github.com/vango-dev/hyper/pkg/vdom"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	h       = vdom.H
	discard = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var (
	inc  = app.Func(func(s, _ any) any { return s.(int) + 1 })
	boom = app.Func(func(_, _ any) any { panic("boom") })
)

func counter(string) app.Config {
	return app.Config{
		Init: 0,
		View: func(s any) *vdom.VNode {
			return h("div", nil,
				h("span", vdom.Props{"id": "count"}, s),
				h("button", vdom.Props{"id": "inc", "onClick": inc}, "+"),
				// A fresh closure every render.
				h("button", vdom.Props{"id": "inline", "onClick": func(s, _ any) any { return s.(int) + 10 }}, "+10"),
				h("button", vdom.Props{"id": "boom", "onClick": boom}, "!"),
			)
		},
	}
}

type harness struct {
	srv  *server.Server
	ws   string
	http string
}

func start(t *testing.T, factory server.AppFactory, mutate func(*server.Config), opts ...server.Option) *harness {
	t.Helper()
	cfg := server.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	srv, err := server.New(cfg, factory, append([]server.Option{server.WithLogger(discard), server.WithAppOptions(app.WithLogger(discard))}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		ts.Close()
	})
	return &harness{
		srv:  srv,
		ws:   "ws" + strings.TrimPrefix(ts.URL, "http") + srv.Config().WebSocketPath,
		http: ts.URL,
	}
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func dial(t *testing.T, url string) *client.Client {
	t.Helper()
	c, err := client.Dial(ctx(t), url, client.WithLogger(discard))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func byID(c *client.Client, id string) *dom.Node {
	return c.Document().GetElementByID(id)
}

func waitText(t *testing.T, c *client.Client, id, want string) {
	t.Helper()
	err := c.Wait(ctx(t), func(doc *dom.Document) bool {
		n := doc.GetElementByID(id)
		return n != nil && n.TextContent() == want
	})
	if err != nil {
		t.Fatalf("waiting for #%s = %q: %v; html = %s", id, want, err, c.HTML())
	}
}

func click(t *testing.T, c *client.Client, id string) {
	t.Helper()
	n := byID(c, id)
	if n == nil {
		t.Fatalf("no #%s in mirror: %s", id, c.HTML())
	}
	if err := c.Click(n.HID); err != nil {
		t.Fatalf("Click(#%s) error = %v", id, err)
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSessionMirrorsApp(t *testing.T) {
	hs := start(t, counter, nil)
	c := dial(t, hs.ws)

	waitText(t, c, "count", "0")
	if got := c.Document().Body().Children()[0].ID(); got != "app" {
		t.Errorf("mirror root id = %q, want app", got)
	}
	if n := hs.srv.Sessions().Count(); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}

	click(t, c, "inc")
	waitText(t, c, "count", "1")
	click(t, c, "inline")
	waitText(t, c, "count", "11")

	// Clicking the button's text bubbles to the button on the server.
	text := byID(c, "inc").ChildNodes()[0]
	if err := c.Click(text.HID); err != nil {
		t.Fatalf("Click(text) error = %v", err)
	}
	waitText(t, c, "count", "12")

	// The mirror shares the server's HIDs.
	var serverHTML string
	hs.srv.Sessions().ForEach(func(s *server.Session) bool {
		serverHTML = s.Document().Body().InnerHTML()
		if got, want := s.App().State(), 12; got != want {
			t.Errorf("server state = %v, want %d", got, want)
		}
		return false
	})
	if serverHTML != c.HTML() {
		t.Errorf("server html = %s\nmirror html = %s", serverHTML, c.HTML())
	}

	c.Close()
	eventually(t, "session removed", func() bool { return hs.srv.Sessions().Count() == 0 })
}

func TestTwoSessionsAreIndependent(t *testing.T) {
	hs := start(t, counter, nil)
	a, b := dial(t, hs.ws), dial(t, hs.ws)
	waitText(t, a, "count", "0")
	waitText(t, b, "count", "0")

	click(t, a, "inc")
	click(t, a, "inc")
	waitText(t, a, "count", "2")

	click(t, b, "inc")
	waitText(t, b, "count", "1")
	if a.SessionID() == b.SessionID() {
		t.Error("sessions share an ID")
	}
}

func TestEventErrors(t *testing.T) {
	hs := start(t, counter, nil)
	c := dial(t, hs.ws)
	waitText(t, c, "count", "0")

	hasError := func(code protocol.ErrorCode) func(*dom.Document) bool {
		return func(*dom.Document) bool {
			for _, em := range c.Errors() {
				if em.Code == code {
					return true
				}
			}
			return false
		}
	}

	if err := c.Send("h999", "click", ""); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := c.Wait(ctx(t), hasError(protocol.ErrHandlerNotFound)); err != nil {
		t.Fatalf("no HandlerNotFound error: %v", err)
	}

	click(t, c, "boom")
	if err := c.Wait(ctx(t), hasError(protocol.ErrHandlerPanic)); err != nil {
		t.Fatalf("no HandlerPanic error: %v", err)
	}

	// The session survives the panic.
	click(t, c, "inc")
	waitText(t, c, "count", "1")
}

func TestInputEvent(t *testing.T) {
	hs := start(t, func(string) app.Config {
		return app.Config{
			Init: "",
			View: func(s any) *vdom.VNode {
				return h("div", nil,
					h("input", vdom.Props{"id": "name", "value": s, "onInput": app.Func(func(_, p any) any {
						return p.(*dom.Event).Value
					})}),
					h("p", vdom.Props{"id": "echo"}, "hello "+s.(string)),
				)
			},
		}
	}, nil)
	c := dial(t, hs.ws)
	waitText(t, c, "echo", "hello ")

	if err := c.Input(byID(c, "name").HID, "ada"); err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	waitText(t, c, "echo", "hello ada")
	if got := byID(c, "name").Value(); got != "ada" {
		t.Errorf("mirror value = %q, want ada", got)
	}
}

type clock struct {
	Running bool
	Ticks   int
}

func TestSubscriptionStopsWhenClientLeaves(t *testing.T) {
	tick := app.Func(func(s, _ any) any {
		c := s.(clock)
		c.Ticks++
		return c
	})
	hs := start(t, func(string) app.Config {
		return app.Config{
			Init: clock{Running: true},
			View: func(s any) *vdom.VNode {
				return h("div", nil, h("span", vdom.Props{"id": "ticks"}, s.(clock).Ticks))
			},
			Subscriptions: func(s any) []app.EffectCall {
				return []app.EffectCall{app.When(s.(clock).Running, fx.Every(5*time.Millisecond, tick))}
			},
		}
	}, nil)
	c := dial(t, hs.ws)

	// The predicate also runs before the first render reaches the client.
	err := c.Wait(ctx(t), func(doc *dom.Document) bool {
		el := doc.GetElementByID("ticks")
		if el == nil {
			return false
		}
		n, _ := strconv.Atoi(el.TextContent())
		return n >= 2
	})
	if err != nil {
		t.Fatalf("ticks never reached 2: %v", err)
	}

	var a *app.App
	hs.srv.Sessions().ForEach(func(s *server.Session) bool {
		a = s.App()
		return false
	})
	if a.ActiveSubscriptions() != 1 {
		t.Errorf("ActiveSubscriptions() = %d, want 1", a.ActiveSubscriptions())
	}

	c.Close()
	select {
	case <-a.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("app not unmounted after client left")
	}
	if a.ActiveSubscriptions() != 0 {
		t.Errorf("ActiveSubscriptions() after close = %d, want 0", a.ActiveSubscriptions())
	}
}

func TestMaxSessions(t *testing.T) {
	hs := start(t, counter, func(c *server.Config) { c.MaxSessions = 1 })
	dial(t, hs.ws)

	_, err := client.Dial(ctx(t), hs.ws, client.WithLogger(discard))
	if err == nil || !strings.Contains(err.Error(), "max sessions") {
		t.Errorf("second Dial() error = %v, want max sessions", err)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	hs := start(t, counter, nil)
	c := dial(t, hs.ws)
	waitText(t, c, "count", "0")

	if err := hs.srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("client still connected after Shutdown")
	}
	if n := hs.srv.Sessions().Count(); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}

	_, err := client.Dial(ctx(t), hs.ws, client.WithLogger(discard))
	if err == nil || !strings.Contains(err.Error(), "shutting down") {
		t.Errorf("Dial() after Shutdown error = %v, want shutting down", err)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := middleware.Prometheus(middleware.WithRegistry(reg))
	hs := start(t, counter, nil, server.WithMetrics(m, reg))

	c := dial(t, hs.ws)
	waitText(t, c, "count", "0")
	click(t, c, "inc")
	waitText(t, c, "count", "1")

	resp, err := http.Get(hs.http + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	var health struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	err = json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" || health.Sessions != 1 {
		t.Errorf("health = %+v, want ok with 1 session", health)
	}

	resp, err = http.Get(hs.http + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	for _, want := range []string{
		"hyper_active_sessions 1",
		`hyper_dispatches_total{kind="func",status="ok"} 1`,
		"hyper_patches_total",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestNewRequiresFactory(t *testing.T) {
	if _, err := server.New(nil, nil); !errors.Is(err, server.ErrNoAppFactory) {
		t.Errorf("New(nil, nil) error = %v, want ErrNoAppFactory", err)
	}
}

func TestMountFailureIsReported(t *testing.T) {
	hs := start(t, func(string) app.Config {
		return app.Config{Init: 0, View: func(any) *vdom.VNode { panic("bad view") }}
	}, nil)

	c := dial(t, hs.ws)
	err := c.Wait(ctx(t), func(*dom.Document) bool { return false })
	if !errors.Is(err, client.ErrClosed) {
		t.Errorf("Wait() error = %v, want ErrClosed", err)
	}
	errs := c.Errors()
	if len(errs) != 1 || errs[0].Code != protocol.ErrServerError || !errs[0].Fatal {
		t.Errorf("Errors() = %+v, want one fatal ServerError", errs)
	}
	eventually(t, "session removed", func() bool { return hs.srv.Sessions().Count() == 0 })
}
