package app

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/hyper/pkg/dom"
)

func TestResolve(t *testing.T) {
	add := Func(func(state, n any) any { return state.(int) + n.(int) })
	double := Transform(func(p any) any { return p.(int) * 2 })
	noop := EffectFunc(func(Dispatcher, any) Cleanup { return nil })

	tests := []struct {
		name        string
		action      Action
		payload     any
		wantState   any
		wantEffects int
		wantOK      bool
	}{
		{"nil action", nil, nil, nil, 0, false},
		{"nil func", Func(nil), nil, nil, 0, false},
		{"func", add, 2, 3, 0, true},
		{"bound literal", With(add, 10), 99, 11, 0, true},
		{"bound transform", With(add, double), 4, 9, 0, true},
		{"literal", Set("s"), nil, "s", 0, true},
		{"literal with effects", Set(5, Fx(noop, 1), Fx(noop, 2)), nil, 5, 2, true},
		{"func returns bound", Func(func(_, _ any) any { return With(add, 30) }), nil, 31, 0, true},
		{"func returns literal", Func(func(_, _ any) any { return Set(7, Fx(noop, nil)) }), nil, 7, 1, true},
		{"func returns func", Func(func(_, p any) any {
			return Func(func(s, p2 any) any { return []any{s, p2} })
		}), "dropped", []any{1, nil}, 0, true},
		{"nested bound", With(With(add, 1), 50), nil, 2, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, effects, ok := resolve(tt.action, tt.payload, func() any { return 1 })
			if ok != tt.wantOK {
				t.Fatalf("resolve() ok = %v, want %v", ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.wantState, state); diff != "" {
				t.Errorf("resolve() state mismatch (-want +got):\n%s", diff)
			}
			if len(effects) != tt.wantEffects {
				t.Errorf("resolve() effects = %d, want %d", len(effects), tt.wantEffects)
			}
		})
	}
}

func TestResolveReadsCurrentStateEachStep(t *testing.T) {
	calls := 0
	current := func() any {
		calls++
		return calls
	}
	chain := Func(func(_, _ any) any { return Func(func(s, _ any) any { return s }) })

	state, _, _ := resolve(chain, nil, current)
	if state != 2 {
		t.Errorf("state = %v, want 2", state)
	}
}

func TestResolveUnsupportedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("resolve() did not panic on a foreign Action")
		}
	}()
	resolve(foreign{}, nil, func() any { return nil })
}

type foreign struct{}

func (foreign) isAction() {}

func TestFromEvent(t *testing.T) {
	tr := FromEvent(func(ev *dom.Event) any {
		if ev == nil {
			return "none"
		}
		return ev.Type
	})

	if got := tr(&dom.Event{Type: "input"}); got != "input" {
		t.Errorf("FromEvent(event) = %v, want input", got)
	}
	if got := tr(42); got != "none" {
		t.Errorf("FromEvent(42) = %v, want none", got)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{nil, "nil"},
		{Func(nil), "func"},
		{With(nil, 1), "bound"},
		{Set(1), "next"},
		{foreign{}, "app.foreign"},
	}
	for _, tt := range tests {
		if got := Kind(tt.action); got != tt.want {
			t.Errorf("Kind(%T) = %q, want %q", tt.action, got, tt.want)
		}
	}
}

type valueEffect struct{ name string }

func (valueEffect) Start(Dispatcher, any) Cleanup { return nil }

type sliceEffect []string

func (sliceEffect) Start(Dispatcher, any) Cleanup { return nil }

func tickEffect(Dispatcher, any) Cleanup { return nil }

//go:noinline
func makeClosure(n int) EffectFunc {
	return func(Dispatcher, any) Cleanup {
		_ = n
		return nil
	}
}

func TestSameEffect(t *testing.T) {
	ptr := &valueEffect{"p"}
	closures := make([]EffectFunc, 2)
	for i := range closures {
		closures[i] = func(Dispatcher, any) Cleanup {
			_ = i
			return nil
		}
	}

	tests := []struct {
		name string
		a, b Effect
		want bool
	}{
		{"both nil", nil, nil, true},
		{"one nil", nil, EffectFunc(tickEffect), false},
		{"same func", EffectFunc(tickEffect), EffectFunc(tickEffect), true},
		{"closures from one call site", closures[0], closures[1], true},
		{"same constructor", makeClosure(1), makeClosure(2), true},
		{"different funcs", EffectFunc(tickEffect), makeClosure(1), false},
		{"equal values", valueEffect{"a"}, valueEffect{"a"}, true},
		{"different values", valueEffect{"a"}, valueEffect{"b"}, false},
		{"same pointer", ptr, ptr, true},
		{"distinct pointers", ptr, &valueEffect{"p"}, false},
		{"different types", valueEffect{"p"}, ptr, false},
		{"non-comparable", sliceEffect{"a"}, sliceEffect{"a"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameEffect(tt.a, tt.b); got != tt.want {
				t.Errorf("SameEffect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActivationStopsOnce(t *testing.T) {
	n := 0
	act := &activation{cleanup: CleanupFunc(func() { n++ })}

	act.stop()
	act.stop()
	if n != 1 {
		t.Errorf("cleanup ran %d times, want 1", n)
	}

	// A cancelled activation drops dispatches without touching its app.
	act.Dispatch(Set(1), nil)
}

func TestWhenAndActive(t *testing.T) {
	call := Fx(EffectFunc(tickEffect), 1)
	if !When(true, call).Active() {
		t.Error("When(true) inactive")
	}
	if When(false, call).Active() {
		t.Error("When(false) active")
	}
	var nilCleanup CleanupFunc
	nilCleanup.Cancel()
}
