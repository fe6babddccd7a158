// Package vdom provides the virtual DOM used by hyper views.
//
// A view builds a fresh VNode tree on every render with H. Diff compares the
// previous tree against the new one and returns a slice of Patch operations
// addressed by hydration ID (HID); package dom applies them to a document.
//
// # Building
//
//	vdom.H("div", vdom.Props{"class": map[string]bool{"on": true, "off": false}},
//	    "count: ", count,
//	    vdom.H("button", vdom.Props{"onClick": inc}, "+"),
//	)
//
// # Diffing
//
// Same-tag nodes are reconciled in place. Children are matched by position
// unless every child in both lists carries a unique key, in which case they
// are matched by key and moved rather than recreated.
//
// Handler props are never compared: every render emits SetListener for each
// handler so the document always holds the binding of the latest render.
package vdom
