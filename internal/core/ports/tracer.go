package ports

import "context"

// Span is an in-flight trace span.
//
//go:generate mockgen -source=tracer.go -destination=mocks/mock_tracer.go -package=mocks
type Span interface {
	// End completes the span.
	End()
	// RecordError records an error on the span.
	RecordError(err error)
	// SetAttribute attaches a key/value attribute to the span.
	SetAttribute(key string, value any)
}

// Tracer creates spans around the phases of a planning run.
type Tracer interface {
	// Start begins a new span and returns the derived context.
	Start(ctx context.Context, name string) (context.Context, Span)
	// Shutdown flushes any pending spans.
	Shutdown(ctx context.Context) error
}
