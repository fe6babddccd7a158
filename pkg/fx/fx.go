// Package fx provides ready-made effects.
//
// Each effect is a single package-level value; the parameters of a call
// travel in its payload. Two calls of the same helper therefore have the same
// identity, and a subscription such as
//
//	func subs(s any) []app.EffectCall {
//	    return []app.EffectCall{app.When(s.(State).Running, fx.Every(time.Second, tick))}
//	}
//
// keeps running across renders until the condition turns false.
package fx

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/hyper/pkg/app"
)

type everyArgs struct {
	interval  time.Duration
	action    app.Action
	immediate bool
}

// EveryOption configures Every.
type EveryOption func(*everyArgs)

// Immediate dispatches the first tick as soon as the subscription starts
// instead of after one interval.
func Immediate() EveryOption {
	return func(a *everyArgs) { a.immediate = true }
}

var every = app.EffectFunc(startEvery)

// Every dispatches action with the current time.Time every interval while
// the subscription is active.
//
// The running ticker keeps the interval and action it was started with; a
// changed interval in a later render does not restart it.
func Every(interval time.Duration, action app.Action, opts ...EveryOption) app.EffectCall {
	args := everyArgs{interval: interval, action: action}
	for _, opt := range opts {
		opt(&args)
	}
	return app.Fx(every, args)
}

func startEvery(d app.Dispatcher, payload any) app.Cleanup {
	args := payload.(everyArgs)
	if args.interval <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		if args.immediate {
			select {
			case <-done:
				return
			default:
				d.Dispatch(args.action, time.Now())
			}
		}

		ticker := time.NewTicker(args.interval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				d.Dispatch(args.action, now)
			case <-done:
				return
			}
		}
	}()

	// The cleanup may run on the ticker goroutine itself, from inside its
	// own Dispatch, so it must not wait for the goroutine to exit.
	var once sync.Once
	return app.CleanupFunc(func() {
		once.Do(func() { close(done) })
	})
}

type delayArgs struct {
	delay   time.Duration
	action  app.Action
	payload any
}

var delay = app.EffectFunc(func(d app.Dispatcher, payload any) app.Cleanup {
	args := payload.(delayArgs)
	time.AfterFunc(args.delay, func() {
		d.Dispatch(args.action, args.payload)
	})
	return nil
})

// Delay dispatches action with payload once, after d. The dispatch is
// dropped if the app has been unmounted by then.
func Delay(d time.Duration, action app.Action, payload any) app.EffectCall {
	return app.Fx(delay, delayArgs{delay: d, action: action, payload: payload})
}

type dispatchArgs struct {
	action  app.Action
	payload any
}

var dispatch = app.EffectFunc(func(d app.Dispatcher, payload any) app.Cleanup {
	args := payload.(dispatchArgs)
	d.Dispatch(args.action, args.payload)
	return nil
})

// Dispatch dispatches action with payload right after the current action
// and its remaining effects.
func Dispatch(action app.Action, payload any) app.EffectCall {
	return app.Fx(dispatch, dispatchArgs{action: action, payload: payload})
}

type logArgs struct {
	logger *slog.Logger
	msg    string
	args   []any
}

var logEffect = app.EffectFunc(func(_ app.Dispatcher, payload any) app.Cleanup {
	args := payload.(logArgs)
	logger := args.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info(args.msg, args.args...)
	return nil
})

// Log logs msg at info level with args. A nil logger uses slog.Default().
func Log(logger *slog.Logger, msg string, args ...any) app.EffectCall {
	return app.Fx(logEffect, logArgs{logger: logger, msg: msg, args: args})
}
