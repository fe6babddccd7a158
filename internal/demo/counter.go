package demo

import (
	"github.com/vango-dev/hyper/pkg/app"
	"github.com/vango-dev/hyper/pkg/vdom"
)

var h = vdom.H

var add = app.Func(func(s, by any) any { return s.(int) + by.(int) })

// Counter is the classic counter. State is an int.
func Counter() app.Config {
	return app.Config{
		Init: 0,
		View: func(s any) *vdom.VNode {
			n := s.(int)
			return h("main", nil,
				h("h1", nil, "Counter"),
				h("p", vdom.Props{"id": "count", "class": map[string]bool{"negative": n < 0}}, n),
				h("button", vdom.Props{"id": "dec", "onclick": app.With(add, -1)}, "-"),
				h("button", vdom.Props{"id": "inc", "onclick": app.With(add, 1)}, "+"),
				h("button", vdom.Props{"id": "reset", "disabled": n == 0, "onclick": app.Set(0)}, "reset"),
			)
		},
	}
}
