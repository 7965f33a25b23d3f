package ports

import "context"

// Tracer starts spans around lifecycle operations.
//
//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Tracer interface {
	// Start creates a span that is a child of any span already in ctx.
	Start(ctx context.Context, name string) (context.Context, Span)
}

// Span is one traced operation.
type Span interface {
	// End completes the span.
	End()
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
	// RecordError marks the span as failed with err.
	RecordError(err error)
}
