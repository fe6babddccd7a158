package app

import (
	"reflect"
	"sync/atomic"
)

// Dispatcher accepts actions. The dispatcher handed to an effect stays
// valid for the lifetime of the app; after unmount it drops everything.
type Dispatcher interface {
	Dispatch(action Action, payload any)
}

// Effect is a side effect started with a dispatcher and a payload. The
// returned Cleanup, if any, stops it; only subscriptions are ever stopped.
type Effect interface {
	Start(d Dispatcher, payload any) Cleanup
}

// EffectFunc adapts a function to Effect.
type EffectFunc func(d Dispatcher, payload any) Cleanup

// Start implements Effect.
func (f EffectFunc) Start(d Dispatcher, payload any) Cleanup { return f(d, payload) }

// Cleanup tears down a running effect.
type Cleanup interface {
	Cancel()
}

// CleanupFunc adapts a function to Cleanup.
type CleanupFunc func()

// Cancel implements Cleanup.
func (f CleanupFunc) Cancel() {
	if f != nil {
		f()
	}
}

// EffectCall is an effect with the payload it is started with. The zero
// value is inactive: it is skipped in action results and leaves its
// subscription slot empty.
type EffectCall struct {
	Effect  Effect
	Payload any
}

// Fx pairs an effect with its payload.
func Fx(effect Effect, payload any) EffectCall {
	return EffectCall{Effect: effect, Payload: payload}
}

// When returns call if cond holds and the inactive EffectCall otherwise.
func When(cond bool, call EffectCall) EffectCall {
	if cond {
		return call
	}
	return EffectCall{}
}

// Active reports whether the call names an effect.
func (c EffectCall) Active() bool {
	return c.Effect != nil
}

// SameEffect reports whether two effects have the same identity.
//
// Function effects are equal when they share a code pointer. Closures made
// at one call site share it, but the compiler may give an inlined
// constructor a copy per call site, so closures from different call sites
// can differ. Package-level EffectFunc values are the stable form.
// Other effects are equal when they have the same dynamic type and compare
// equal with ==; values of non-comparable types are never equal.
func SameEffect(a, b Effect) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Kind() == reflect.Func {
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}

// activation is one start of a subscription effect. Once cancelled, its
// dispatcher drops every action, including ones already queued.
type activation struct {
	app       *App
	cancelled atomic.Bool
	cleanup   Cleanup
}

// Dispatch implements Dispatcher.
func (s *activation) Dispatch(action Action, payload any) {
	if s.cancelled.Load() {
		return
	}
	s.app.enqueue(item{action: action, payload: payload, from: s})
}

// stop cancels the activation and runs its cleanup at most once.
func (s *activation) stop() {
	if !s.cancelled.CompareAndSwap(false, true) {
		return
	}
	if s.cleanup != nil {
		s.cleanup.Cancel()
	}
}

// runEffect starts an effect produced by an action. Any cleanup it returns
// is ignored.
func runEffect(call EffectCall, d Dispatcher) {
	if !call.Active() {
		return
	}
	call.Effect.Start(d, call.Payload)
}
