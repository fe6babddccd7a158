package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/hyper/pkg/app"
)

// Default tracer name for hyper applications.
const defaultTracerName = "hyper"

// Span attribute keys.
const (
	AttrActionKind = attribute.Key("hyper.action_kind")
	AttrPayload    = attribute.Key("hyper.payload_type")
)

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "hyper").
	TracerName string

	// Tracer overrides the tracer from the global provider.
	Tracer trace.Tracer

	// Filter determines which actions to trace.
	// Return true to trace the action, false to skip.
	// If nil, all actions are traced.
	Filter func(action app.Action, payload any) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(action app.Action, payload any) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer used for spans.
func WithTracer(t trace.Tracer) OTelOption {
	return func(c *OTelConfig) {
		c.Tracer = t
	}
}

// WithActionFilter sets a filter function for actions.
func WithActionFilter(filter func(action app.Action, payload any) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(action app.Action, payload any) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry returns dispatch middleware that wraps each action in a
// span named "hyper.dispatch". A panicking action marks the span as an
// error before the panic continues.
//
// Example:
//
//	a, err := app.Mount(cfg, app.WithMiddleware(
//	    middleware.OpenTelemetry(middleware.WithTracerName("my-app")),
//	))
func OpenTelemetry(opts ...OTelOption) app.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(config.TracerName)
	}

	return func(next app.DispatchFunc) app.DispatchFunc {
		return func(action app.Action, payload any) {
			if config.Filter != nil && !config.Filter(action, payload) {
				next(action, payload)
				return
			}

			attrs := []attribute.KeyValue{
				AttrActionKind.String(app.Kind(action)),
			}
			if payload != nil {
				attrs = append(attrs, AttrPayload.String(fmt.Sprintf("%T", payload)))
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(action, payload)...)
			}

			_, span := tracer.Start(context.Background(), "hyper.dispatch",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...),
			)
			ok := false
			defer func() {
				if !ok {
					r := recover()
					err := fmt.Errorf("panic: %v", r)
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
					span.End()
					panic(r)
				}
				span.SetStatus(codes.Ok, "")
				span.End()
			}()

			next(action, payload)
			ok = true
		}
	}
}
