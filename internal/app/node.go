package app

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/carve-build/carve/internal/adapters/config"
	"github.com/carve-build/carve/internal/adapters/fs"
	"github.com/carve-build/carve/internal/adapters/logger"
	"github.com/carve-build/carve/internal/adapters/manifest"
	"github.com/carve-build/carve/internal/adapters/telemetry"
	"github.com/carve-build/carve/internal/adapters/watcher"
	"github.com/carve-build/carve/internal/core/ports"
)

// NodeID is the unique identifier for the application components Graft node.
const NodeID graft.ID = "app.components"

// Components bundles the fully wired application for the CLI.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.ResolverFactoryNodeID,
			manifest.FactoryNodeID,
			watcher.NodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			resolvers, err := graft.Dep[*fs.ResolverFactory](ctx)
			if err != nil {
				return nil, err
			}
			emitters, err := graft.Dep[*manifest.Factory](ctx)
			if err != nil {
				return nil, err
			}
			w, err := graft.Dep[ports.Watcher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{
				App:    New(loader, resolvers, emitters, w, log, tracer),
				Logger: log,
			}, nil
		},
	})
}
