package hypertest

import (
	"testing"

	"github.com/vango-dev/hyper/pkg/app"
	"github.com/vango-dev/hyper/pkg/vdom"
)

func staticView(node *vdom.VNode) func(any) *vdom.VNode {
	return func(any) *vdom.VNode { return node }
}

func TestText(t *testing.T) {
	h := New(t)
	h.Mount("app", app.Config{View: staticView(
		vdom.H("div", nil, "  a ", vdom.H("b", nil, "inner"), "b  "),
	)})

	if got := Text(h.Root("app")); got != "a b" {
		t.Errorf("Text() = %q, want %q", got, "a b")
	}
}

func TestContainsDeepest(t *testing.T) {
	h := New(t)
	h.Mount("app", app.Config{View: staticView(
		vdom.H("div", nil, vdom.H("section", nil, vdom.H("p", vdom.Props{"class": "hit"}, "para 1"))),
	)})

	n := h.Contains("para 1")
	if n == nil {
		t.Fatal("Contains() = nil")
	}
	if n.Tag != "p" || !n.HasClass("hit") {
		t.Errorf("Contains() = <%s class=%q>, want <p class=hit>", n.Tag, n.GetAttribute("class"))
	}
	if h.Contains("missing") != nil {
		t.Error("Contains(missing) != nil")
	}
}

func TestMountReplacesElement(t *testing.T) {
	h := New(t)
	first := h.Mount("app", app.Config{View: staticView(vdom.H("div", nil, "one"))})
	h.Mount("app", app.Config{View: staticView(vdom.H("div", nil, "two"))})

	select {
	case <-first.Done():
	default:
		t.Error("first app not torn down")
	}
	if got := len(Query(h.Doc.Body(), "div")); got != 1 {
		t.Errorf("divs under body = %d, want 1", got)
	}
	h.ExpectText(h.Root("app"), "two")
}

func TestUnmountWithoutApp(t *testing.T) {
	h := New(t)
	n := h.Doc.CreateElement("div")
	n.SetAttribute("id", "plain")
	h.Doc.Body().AppendChild(n)

	h.Unmount("plain")
	if h.Root("plain") != nil {
		t.Error("element not removed")
	}
	h.Unmount("plain")
}
