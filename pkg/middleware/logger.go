package middleware

import (
	"log/slog"
	"time"

	"github.com/vango-dev/hyper/pkg/app"
)

// Logger returns dispatch middleware that logs every action at debug level
// with its kind and duration. A panicking action is logged at error level
// and the panic continues. A nil logger uses slog.Default().
func Logger(logger *slog.Logger) app.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next app.DispatchFunc) app.DispatchFunc {
		return func(action app.Action, payload any) {
			start := time.Now()
			ok := false
			defer func() {
				kind := app.Kind(action)
				if !ok {
					r := recover()
					logger.Error("action panicked", "action", kind, "panic", r)
					panic(r)
				}
				logger.Debug("action", "action", kind, "duration", time.Since(start))
			}()
			next(action, payload)
			ok = true
		}
	}
}
