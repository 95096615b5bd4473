package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/carve-build/carve/internal/core/ports"
)

// TraceEnvVar enables span logging when set to a non-empty value.
const TraceEnvVar = "CARVE_TRACE"

// Bridge implements sdktrace.SpanProcessor, forwarding ended spans to the
// logger. It only speaks up when tracing is enabled, so normal runs stay
// quiet.
type Bridge struct {
	logger  ports.Logger
	enabled bool
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{
		logger:  logger,
		enabled: os.Getenv(TraceEnvVar) != "",
	}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if !b.enabled || b.logger == nil {
		return
	}

	elapsed := s.EndTime().Sub(s.StartTime())
	b.logger.Info(fmt.Sprintf("trace: %s (%s)", s.Name(), elapsed.Round(time.Microsecond)))
}

// Shutdown is called when the provider shuts down.
func (b *Bridge) Shutdown(_ context.Context) error { return nil }

// ForceFlush exports any buffered spans; the bridge buffers nothing.
func (b *Bridge) ForceFlush(_ context.Context) error { return nil }
