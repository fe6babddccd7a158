// Package hypertest provides testing helpers for hyper apps.
//
// A Harness owns an in-memory document and mounts apps into <div> elements
// under its body, replacing any previous element with the same id.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := hypertest.New(t)
//	    h.Mount("app", app.Config{
//	        Init: 0,
//	        View: func(s any) *vdom.VNode {
//	            return vdom.H("div", nil, s, vdom.H("button", vdom.Props{"onClick": inc}, "+"))
//	        },
//	    })
//	    h.Click("+")
//	    h.ExpectText(h.Root("app"), "1")
//	}
//
// # Text Assertions
//
// Text returns only the element's own text nodes, trimmed and joined by a
// space, so a counter rendered next to its buttons reads as "1" rather than
// "1+".
//
// # Asynchronous Updates
//
// Subscriptions dispatch from their own goroutines. Use EventuallyText or
// Eventually to wait for the document to catch up.
package hypertest
