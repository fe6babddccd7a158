package hyper_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/hyper"
	"github.com/vango-dev/hyper/pkg/hypertest"
)

func quiet() hyper.Option {
	return hyper.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func counter(rt *hyper.Runtime, id string) hyper.Config {
	h := rt.H
	return hyper.Config{
		Init: 0,
		Node: rt.Element(id),
		View: func(s any) *hyper.VNode {
			return h("div", hyper.Props{"id": id},
				h("span", nil, s),
				h("button", hyper.Props{"onClick": func(s, _ any) any { return s.(int) + 1 }}, "+"),
			)
		},
	}
}

func TestInlineHandler(t *testing.T) {
	rt := hyper.New(nil, quiet())
	a, err := rt.App(counter(rt, "app"))
	if err != nil {
		t.Fatalf("App() error = %v", err)
	}
	defer a.Unmount()

	root := rt.Document().GetElementByID("app")
	span := hypertest.Query(root, "span")[0]
	if got := hypertest.Text(span); got != "0" {
		t.Errorf("text = %q, want 0", got)
	}
	hypertest.Query(root, "button")[0].Click()
	if got := hypertest.Text(span); got != "1" {
		t.Errorf("text after click = %q, want 1", got)
	}
}

func TestEffectRunsAfterState(t *testing.T) {
	rt := hyper.New(nil, quiet())
	h := rt.H

	var recorded []any
	var seen any
	a, err := rt.App(hyper.Config{
		Init: "old state",
		Node: rt.Element("app"),
		View: func(s any) *hyper.VNode { return h("p", nil, s) },
	}, quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Unmount()

	record := hyper.EffectFunc(func(d hyper.Dispatcher, payload any) hyper.Cleanup {
		recorded = append(recorded, payload)
		seen = a.State()
		return nil
	})
	a.Dispatch(hyper.Func(func(_, _ any) any {
		return hyper.Set("new state", hyper.Fx(record, "arg"))
	}), nil)

	if got := hypertest.Text(a.Node()); got != "new state" {
		t.Errorf("text = %q, want new state", got)
	}
	if len(recorded) != 1 || recorded[0] != "arg" {
		t.Errorf("recorded = %v, want [arg]", recorded)
	}
	if seen != "new state" {
		t.Errorf("effect saw state %v, want new state", seen)
	}
}

func TestIndependentInstances(t *testing.T) {
	rt := hyper.New(nil, quiet())
	a1, err := rt.App(counter(rt, "app1"))
	if err != nil {
		t.Fatal(err)
	}
	a2, err := rt.App(counter(rt, "app2"))
	if err != nil {
		t.Fatal(err)
	}
	defer a2.Unmount()

	doc := rt.Document()
	click := func(id string) { hypertest.Query(doc.GetElementByID(id), "button")[0].Click() }

	click("app1")
	click("app1")
	click("app2")
	if a1.State() != 2 || a2.State() != 1 {
		t.Errorf("states = %v, %v, want 2, 1", a1.State(), a2.State())
	}

	a1.Unmount()
	a1.Unmount()
	if doc.GetElementByID("app1") != nil {
		t.Error("app1 still in the document after Unmount")
	}
	click("app2")
	if got := hypertest.Text(hypertest.Query(doc.GetElementByID("app2"), "span")[0]); got != "2" {
		t.Errorf("app2 text = %q, want 2", got)
	}
}

func TestElementReusesExisting(t *testing.T) {
	rt := hyper.New(nil)
	first := rt.Element("root")
	if rt.Element("root") != first {
		t.Error("Element() created a second node for the same id")
	}
	if first.Parent() != rt.Document().Body() {
		t.Error("Element() did not append to body")
	}
}

func TestAppErrors(t *testing.T) {
	rt := hyper.New(nil)
	if _, err := rt.App(hyper.Config{Node: rt.Element("x")}); !errors.Is(err, hyper.ErrNoView) {
		t.Errorf("App(no view) error = %v, want ErrNoView", err)
	}
	if _, err := rt.App(hyper.Config{View: func(any) *hyper.VNode { return nil }}); !errors.Is(err, hyper.ErrNoNode) {
		t.Errorf("App(no node) error = %v, want ErrNoNode", err)
	}
}
