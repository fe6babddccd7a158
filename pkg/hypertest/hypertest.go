package hypertest

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/hyper/pkg/app"
	"github.com/vango-dev/hyper/pkg/dom"
)

// DefaultTimeout bounds Eventually and the Expect helpers that wait.
const DefaultTimeout = 2 * time.Second

// Harness mounts apps into a fresh document the way a browser page would:
// each app gets its own <div id="..."> under <body>.
type Harness struct {
	t    testing.TB
	Doc  *dom.Document
	opts []app.Option
	apps map[string]*app.App
}

// New creates a harness. Unless options say otherwise, app logs are
// discarded. Apps still mounted when the test ends are unmounted.
//
// Example:
//
//	h := hypertest.New(t)
//	h.Mount("app", app.Config{Init: 0, View: view})
//	h.Click("+1")
//	h.ExpectText(h.Root("app"), "1")
func New(t testing.TB, opts ...app.Option) *Harness {
	t.Helper()
	h := &Harness{
		t:    t,
		Doc:  dom.NewDocument(),
		opts: append([]app.Option{app.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...),
		apps: make(map[string]*app.App),
	}
	t.Cleanup(func() {
		for _, a := range h.apps {
			a.Unmount()
		}
	})
	return h
}

// Mount replaces any element with the given id by a new <div id=id> and
// mounts cfg into it. cfg.Node is ignored.
func (h *Harness) Mount(id string, cfg app.Config, opts ...app.Option) *app.App {
	h.t.Helper()
	if prev := h.apps[id]; prev != nil {
		prev.Unmount()
		delete(h.apps, id)
	}
	if old := h.Doc.GetElementByID(id); old != nil {
		old.Remove()
	}

	node := h.Doc.CreateElement("div")
	node.SetAttribute("id", id)
	h.Doc.Body().AppendChild(node)

	cfg.Node = node
	a, err := app.Mount(cfg, append(append([]app.Option(nil), h.opts...), opts...)...)
	if err != nil {
		h.t.Fatalf("mount %q: %v", id, err)
	}
	h.apps[id] = a
	return a
}

// Unmount unmounts the app mounted under id. Without one it just removes
// the element.
func (h *Harness) Unmount(id string) {
	if a := h.apps[id]; a != nil {
		a.Unmount()
		delete(h.apps, id)
		return
	}
	if n := h.Doc.GetElementByID(id); n != nil {
		n.Remove()
	}
}

// Root returns the element with the given id, or nil.
func (h *Harness) Root(id string) *dom.Node {
	return h.Doc.GetElementByID(id)
}

// Contains returns the deepest element whose text contains text, the first
// in document order when several match. It returns nil when none does.
func (h *Harness) Contains(text string) *dom.Node {
	matches := h.Doc.Find(func(n *dom.Node) bool {
		return n.Type == dom.ElementNode && strings.Contains(n.TextContent(), text)
	})
	for _, n := range matches {
		deepest := true
		for _, c := range n.Children() {
			if strings.Contains(c.TextContent(), text) {
				deepest = false
				break
			}
		}
		if deepest {
			return n
		}
	}
	return nil
}

// Click clicks the element found by Contains(text). The test fails when
// there is none.
func (h *Harness) Click(text string) {
	h.t.Helper()
	n := h.Contains(text)
	if n == nil {
		h.t.Fatalf("no element contains %q in:\n%s", text, truncate(h.Doc.Body().OuterHTML(), 500))
	}
	n.Click()
}

// Query returns the descendants of root with the given tag, in document
// order.
func Query(root *dom.Node, tag string) []*dom.Node {
	var out []*dom.Node
	for _, c := range root.Children() {
		if c.Tag == tag {
			out = append(out, c)
		}
		out = append(out, Query(c, tag)...)
	}
	return out
}

// Text returns the text of the element's own text nodes, each trimmed and
// joined by a space. Text of child elements is not included.
func Text(n *dom.Node) string {
	var parts []string
	for _, c := range n.ChildNodes() {
		if c.Type == dom.TextNode {
			parts = append(parts, strings.TrimSpace(c.Data()))
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// ExpectText asserts that the element's own text equals want.
func (h *Harness) ExpectText(n *dom.Node, want string) {
	h.t.Helper()
	if n == nil {
		h.t.Fatalf("expected text %q on a missing element", want)
	}
	if got := Text(n); got != want {
		h.t.Errorf("text = %q, want %q in:\n%s", got, want, truncate(n.OuterHTML(), 500))
	}
}

// Eventually polls cond until it holds or timeout elapses.
func Eventually(t testing.TB, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// EventuallyText waits up to DefaultTimeout for the element's own text to
// equal want.
func (h *Harness) EventuallyText(n *dom.Node, want string) {
	h.t.Helper()
	if !Eventually(h.t, DefaultTimeout, func() bool { return Text(n) == want }) {
		h.t.Errorf("text = %q, want %q after %v", Text(n), want, DefaultTimeout)
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
