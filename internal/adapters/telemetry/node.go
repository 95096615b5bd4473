package telemetry

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/carve-build/carve/internal/adapters/logger"
	"github.com/carve-build/carve/internal/core/ports"
)

// NodeID is the unique identifier for the tracer Graft node.
const NodeID graft.ID = "adapter.telemetry"

// InstrumentationName identifies this module's spans.
const InstrumentationName = "github.com/carve-build/carve"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewOTelTracer(InstrumentationName, NewBridge(log)), nil
		},
	})
}
