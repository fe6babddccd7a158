// Package app binds a state, a view and subscriptions to a mount node.
//
// An app holds exactly one state value. Actions produce the next state:
//
//	inc := app.Func(func(state, _ any) any { return state.(int) + 1 })
//	add := app.Func(func(state, n any) any { return state.(int) + n.(int) })
//
//	vdom.H("button", vdom.Props{"onClick": inc}, "+1")
//	vdom.H("button", vdom.Props{"onClick": app.With(add, 10)}, "+10")
//	vdom.H("button", vdom.Props{"onClick": app.Set(0)}, "reset")
//
// A Func may return another Action, which is resolved in turn, or a Next
// carrying effects. After each state swap the view is rendered and patched
// into the document, the subscriptions are refreshed, and the effects run
// in order.
//
// # Subscriptions
//
// The subscriptions function maps each new state to a list of EffectCall.
// Each position is a slot; a slot's effect is started when it becomes
// active and cancelled when it becomes inactive or its effect identity
// changes. A payload change alone does not restart it. See SameEffect for
// the identity rule.
//
// # Concurrency
//
// Dispatch is safe from any goroutine. Actions run one at a time; an
// effect's synchronous Dispatch is processed after the remaining effects of
// the current action.
package app
