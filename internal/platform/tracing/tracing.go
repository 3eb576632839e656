package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global provider so the store layer works unchanged whether
// or not an exporter is configured.
var tracer = otel.Tracer("userhub/store")

// Start opens a span around a store operation. The returned func records the
// outcome and ends the span:
//
//	ctx, end := tracing.Start(ctx, "store.FindByEmail")
//	defer func() { end(err) }()
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
