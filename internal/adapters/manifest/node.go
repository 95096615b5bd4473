package manifest

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/carve-build/carve/internal/core/ports"
)

// FactoryNodeID is the unique identifier for the emitter factory Graft node.
const FactoryNodeID graft.ID = "adapter.manifest.factory"

// Factory creates emitters bound to an output directory. The directory is
// only known once the configuration is loaded, so the factory is the
// injectable unit rather than the emitter itself.
type Factory struct{}

// NewFactory creates a new Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// ForDir returns an emitter writing into the given directory.
func (f *Factory) ForDir(outputDir string) ports.Emitter {
	return NewEmitter(outputDir)
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        FactoryNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Factory, error) {
			return NewFactory(), nil
		},
	})
}
