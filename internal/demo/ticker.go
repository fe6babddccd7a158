package demo

import (
	"time"

	"github.com/vango-dev/hyper/pkg/app"
	"github.com/vango-dev/hyper/pkg/fx"
	"github.com/vango-dev/hyper/pkg/vdom"
)

// DefaultTickInterval is the clock period of the registered ticker demo.
const DefaultTickInterval = time.Second

// Clock is the ticker demo's state.
type Clock struct {
	Running bool
	Ticks   int
	Last    time.Time
}

var (
	tick = app.Func(func(s, now any) any {
		c := s.(Clock)
		c.Ticks++
		c.Last, _ = now.(time.Time)
		return c
	})

	toggle = app.Func(func(s, _ any) any {
		c := s.(Clock)
		c.Running = !c.Running
		return c
	})
)

// Ticker counts clock ticks, one per interval, while running. The tick
// subscription starts and stops with Running.
func Ticker(interval time.Duration) app.Config {
	return app.Config{
		Init: Clock{Running: true},
		View: func(s any) *vdom.VNode {
			c := s.(Clock)
			label := "pause"
			if !c.Running {
				label = "resume"
			}
			last := "-"
			if !c.Last.IsZero() {
				last = c.Last.Format(time.TimeOnly)
			}
			return h("main", nil,
				h("h1", nil, "Ticker"),
				h("p", vdom.Props{"id": "ticks"}, c.Ticks),
				h("p", vdom.Props{"id": "last", "class": map[string]bool{"stale": !c.Running}}, last),
				h("button", vdom.Props{"id": "toggle", "onclick": toggle}, label),
			)
		},
		Subscriptions: func(s any) []app.EffectCall {
			return []app.EffectCall{
				app.When(s.(Clock).Running, fx.Every(interval, tick)),
			}
		},
	}
}
