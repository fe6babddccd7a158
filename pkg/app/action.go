package app

import (
	"fmt"

	"github.com/vango-dev/hyper/pkg/dom"
)

// Action describes a state transition. It is one of:
//
//   - Func: computes the next result from the current state and a payload
//   - Bound: an action paired with its payload, literal or a Transform
//   - Next: a literal next state, optionally with effects
type Action interface {
	isAction()
}

// Func computes the next result from the current state and the dispatch
// payload. A returned Action is resolved in turn; any other value is the
// next state.
type Func func(state, payload any) any

// Bound pairs an action with the payload it is dispatched with. When Arg is
// a Transform it is called with the triggering payload (the *dom.Event for
// DOM events) and its result is used instead.
type Bound struct {
	Fn  Action
	Arg any
}

// Transform derives a payload from the triggering payload.
type Transform func(payload any) any

// Next is a literal next state and the effects to run once it is current.
type Next struct {
	State   any
	Effects []EffectCall
}

func (Func) isAction()  {}
func (Bound) isAction() {}
func (Next) isAction()  {}

// Set returns a literal next state with optional effects.
func Set(state any, effects ...EffectCall) Next {
	return Next{State: state, Effects: effects}
}

// With binds a payload to fn. With(fn, Transform(t)) derives the payload
// from the triggering event.
func With(fn Action, arg any) Bound {
	return Bound{Fn: fn, Arg: arg}
}

// FromEvent adapts an event mapping function into a Transform. Payloads
// that are not DOM events are passed as a nil event.
func FromEvent(fn func(ev *dom.Event) any) Transform {
	return func(payload any) any {
		ev, _ := payload.(*dom.Event)
		return fn(ev)
	}
}

// Kind names the variant of an action for logs and metrics.
func Kind(action Action) string {
	switch action.(type) {
	case nil:
		return "nil"
	case Func:
		return "func"
	case Bound:
		return "bound"
	case Next:
		return "next"
	default:
		return fmt.Sprintf("%T", action)
	}
}

// resolve reduces action and payload to the next state and its effects.
// ok is false when there is nothing to apply.
func resolve(action Action, payload any, current func() any) (state any, effects []EffectCall, ok bool) {
	for {
		switch act := action.(type) {
		case nil:
			return nil, nil, false
		case Func:
			if act == nil {
				return nil, nil, false
			}
			res := act(current(), payload)
			if next, isAction := res.(Action); isAction {
				action, payload = next, nil
				continue
			}
			return res, nil, true
		case Bound:
			arg := act.Arg
			if t, isTransform := arg.(Transform); isTransform {
				arg = t(payload)
			}
			action, payload = act.Fn, arg
		case Next:
			return act.State, act.Effects, true
		default:
			panic(fmt.Sprintf("app: unsupported action %T", action))
		}
	}
}
