package fs

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/carve-build/carve/internal/core/ports"
)

// ResolverFactoryNodeID is the unique identifier for the resolver factory
// Graft node.
const ResolverFactoryNodeID graft.ID = "adapter.fs.resolver_factory"

// ResolverFactory creates resolvers bound to a project root. The root is
// only known once the configuration is loaded, so the factory is the
// injectable unit rather than the resolver itself.
type ResolverFactory struct{}

// NewResolverFactory creates a new ResolverFactory.
func NewResolverFactory() *ResolverFactory {
	return &ResolverFactory{}
}

// ForRoot returns a resolver rooted at the given project directory.
func (f *ResolverFactory) ForRoot(root string) ports.Resolver {
	return NewResolver(root)
}

func init() {
	graft.Register(graft.Node[*ResolverFactory]{
		ID:        ResolverFactoryNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*ResolverFactory, error) {
			return NewResolverFactory(), nil
		},
	})
}
