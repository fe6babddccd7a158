package app

import (
	"log/slog"

	"github.com/vango-dev/hyper/pkg/vdom"
)

// DispatchFunc processes one dispatched action.
type DispatchFunc func(action Action, payload any)

// Middleware wraps the dispatch of every queued action.
type Middleware func(next DispatchFunc) DispatchFunc

// chain wraps base so that mw[0] runs first.
func chain(base DispatchFunc, mw []Middleware) DispatchFunc {
	d := base
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] != nil {
			d = mw[i](d)
		}
	}
	return d
}

// Observer receives notifications from the goroutine processing the
// queue. Either field may be nil.
type Observer struct {
	// OnRender is called after each render with the patches applied.
	OnRender func(a *App, patches []vdom.Patch)

	// OnSubscriptions is called after the subscription slots change with the
	// number of running subscriptions.
	OnSubscriptions func(a *App, active int)
}

// Option configures Mount.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	middleware []Middleware
	observers  []Observer
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMiddleware adds dispatch middleware ahead of Config.Middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(o *options) {
		o.middleware = append(o.middleware, mw...)
	}
}

// WithObserver adds an observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observers = append(o.observers, obs)
	}
}
