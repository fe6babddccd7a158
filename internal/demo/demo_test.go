package demo

import (
	"strconv"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/hyper/pkg/dom"
	"github.com/vango-dev/hyper/pkg/hypertest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRegistry(t *testing.T) {
	if diff := cmp.Diff([]string{"counter", "ticker", "todo"}, Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	for _, name := range Names() {
		d, ok := Lookup(name)
		if !ok || d.Name != name || d.Description == "" {
			t.Errorf("Lookup(%q) = %+v, %v", name, d, ok)
		}
		if cfg := d.Factory("session"); cfg.View == nil {
			t.Errorf("%s: Factory() has no view", name)
		}
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) should fail")
	}
}

func byID(h *hypertest.Harness, id string) *dom.Node {
	return h.Doc.GetElementByID(id)
}

func TestCounter(t *testing.T) {
	h := hypertest.New(t)
	h.Mount("app", Counter())

	count := byID(h, "count")
	h.ExpectText(count, "0")
	if _, ok := byID(h, "reset").LookupAttribute("disabled"); !ok {
		t.Error("reset should be disabled at zero")
	}

	byID(h, "inc").Click()
	byID(h, "inc").Click()
	h.ExpectText(count, "2")
	if _, ok := byID(h, "reset").LookupAttribute("disabled"); ok {
		t.Error("reset should be enabled at 2")
	}

	for range 3 {
		byID(h, "dec").Click()
	}
	h.ExpectText(count, "-1")
	if !count.HasClass("negative") {
		t.Errorf("class = %v, want negative", count.ClassList())
	}

	byID(h, "reset").Click()
	h.ExpectText(count, "0")
	if count.HasClass("negative") {
		t.Error("negative class kept after reset")
	}
}

func TestTicker(t *testing.T) {
	h := hypertest.New(t)
	a := h.Mount("app", Ticker(5*time.Millisecond))

	ticks := func() int {
		n, _ := strconv.Atoi(hypertest.Text(byID(h, "ticks")))
		return n
	}
	if !hypertest.Eventually(t, hypertest.DefaultTimeout, func() bool { return ticks() >= 2 }) {
		t.Fatalf("ticks = %d, want >= 2", ticks())
	}
	if a.ActiveSubscriptions() != 1 {
		t.Errorf("ActiveSubscriptions() = %d, want 1", a.ActiveSubscriptions())
	}

	// A tick may be draining when the click lands, so the pause can take
	// effect on the ticker goroutine.
	h.Click("pause")
	if !hypertest.Eventually(t, hypertest.DefaultTimeout, func() bool { return a.ActiveSubscriptions() == 0 }) {
		t.Errorf("ActiveSubscriptions() after pause = %d, want 0", a.ActiveSubscriptions())
	}
	h.EventuallyText(byID(h, "toggle"), "resume")
	if !byID(h, "last").HasClass("stale") {
		t.Error("last tick should be marked stale while paused")
	}

	paused := a.State().(Clock).Ticks
	time.Sleep(30 * time.Millisecond)
	if got := a.State().(Clock).Ticks; got != paused {
		t.Errorf("ticks moved while paused: %d -> %d", paused, got)
	}

	h.Click("resume")
	if !hypertest.Eventually(t, hypertest.DefaultTimeout, func() bool { return ticks() > paused }) {
		t.Errorf("ticks did not resume past %d", paused)
	}
}

func TestTodo(t *testing.T) {
	h := hypertest.New(t)
	a := h.Mount("app", Todo())

	add := func(text string) {
		t.Helper()
		byID(h, "draft").Input(text)
		byID(h, "add").Click()
	}
	texts := func() []string {
		var out []string
		for _, li := range hypertest.Query(byID(h, "items"), "li") {
			out = append(out, hypertest.Text(li.Children()[0]))
		}
		return out
	}

	add("milk")
	add("  ")
	add("eggs")
	add("bread")
	if diff := cmp.Diff([]string{"milk", "eggs", "bread"}, texts()); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if got := byID(h, "draft").Value(); got != "" {
		t.Errorf("draft = %q after add, want empty", got)
	}
	h.ExpectText(byID(h, "remaining"), "3 items")

	eggs := byID(h, "item-2")
	h.Click("reverse")
	if diff := cmp.Diff([]string{"bread", "eggs", "milk"}, texts()); diff != "" {
		t.Errorf("reversed mismatch (-want +got):\n%s", diff)
	}
	if byID(h, "item-2") != eggs {
		t.Error("keyed element was recreated instead of moved")
	}

	eggs.Children()[1].Click()
	if diff := cmp.Diff([]string{"bread", "milk"}, texts()); diff != "" {
		t.Errorf("after remove mismatch (-want +got):\n%s", diff)
	}
	if h.Doc.Contains(eggs) {
		t.Error("removed element still in the document")
	}
	if got := a.State().(Todos).NextID; got != 3 {
		t.Errorf("NextID = %d, want 3", got)
	}
}
