// Package hyper is a single-atom reactive view runtime.
//
// An app is a state, a view function from state to a virtual DOM tree, and
// actions that compute the next state. Every dispatch re-renders the view
// and patches the document with the difference. Effects run after a state
// is current; subscriptions are effects that the runtime starts and stops
// as the state changes.
//
//	rt := hyper.New(nil)
//	h := rt.H
//
//	inc := hyper.Func(func(s, _ any) any { return s.(int) + 1 })
//
//	a, err := rt.App(hyper.Config{
//	    Init: 0,
//	    Node: rt.Element("app"),
//	    View: func(s any) *hyper.VNode {
//	        return h("div", nil,
//	            h("span", nil, s),
//	            h("button", hyper.Props{"onClick": inc}, "+"),
//	        )
//	    },
//	})
//
// The document is in memory (package dom). Package server streams a
// session's patches to remote clients over WebSocket; package client keeps
// a mirror of such a session.
package hyper
