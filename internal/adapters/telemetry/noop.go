package telemetry

import (
	"context"

	"github.com/carve-build/carve/internal/core/ports"
)

var _ ports.Tracer = (*NoopTracer)(nil)

// NoopTracer is a ports.Tracer that records nothing.
type NoopTracer struct{}

// NewNoopTracer creates a new NoopTracer.
func NewNoopTracer() *NoopTracer {
	return &NoopTracer{}
}

// Start returns the context unchanged and a span that does nothing.
func (t *NoopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}

// Shutdown does nothing.
func (t *NoopTracer) Shutdown(_ context.Context) error { return nil }

type noopSpan struct{}

func (noopSpan) End()                     {}
func (noopSpan) RecordError(error)        {}
func (noopSpan) SetAttribute(string, any) {}
