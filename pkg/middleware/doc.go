// Package middleware provides observability for hyper apps.
//
// This package includes:
//   - OpenTelemetry tracing of dispatched actions
//   - Prometheus metrics for dispatches, renders, subscriptions and sessions
//   - Structured logging of dispatched actions
//
// # OpenTelemetry
//
// OpenTelemetry wraps every action in a span. The tracer comes from the
// global provider unless WithTracer is given.
//
//	a, err := app.Mount(cfg, app.WithMiddleware(
//	    middleware.OpenTelemetry(middleware.WithTracerName("my-app")),
//	))
//
// # Prometheus
//
// Prometheus returns a Metrics value shared per registry. Install it on an
// app with Options and expose the registry with promhttp:
//
//	m := middleware.Prometheus()
//	a, err := app.Mount(cfg, m.Options()...)
//	http.Handle("/metrics", promhttp.Handler())
//
// # Ordering
//
// Middleware passed to app.WithMiddleware run in order, outermost first:
//
//	app.WithMiddleware(
//	    middleware.Logger(logger),    // 1. Log
//	    middleware.OpenTelemetry(),   // 2. Trace
//	    m.Middleware(),               // 3. Measure
//	)
package middleware
