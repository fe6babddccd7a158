// Package el provides element constructors over vdom.H.
//
// Arguments mix props and children: every vdom.Props argument is merged
// into the element's props (later keys win), everything else is a child.
//
//	import . "github.com/vango-dev/hyper/el"
//
//	Div(Class("card"),
//	    Span(ID("count"), count),
//	    Button(OnClick(inc), "+"),
//	)
package el
