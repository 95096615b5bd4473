// Package graphbuild constructs a closed module dependency graph from a set
// of entry points and a resolver.
package graphbuild

import (
	"context"
	"fmt"

	"go.trai.ch/zerr"

	"github.com/carve-build/carve/internal/core/domain"
	"github.com/carve-build/carve/internal/core/ports"
)

// Builder builds module graphs. Resolution is assumed already cheap and
// side-effect free; the builder performs no I/O of its own.
type Builder struct {
	resolver ports.Resolver
	logger   ports.Logger
	tracer   ports.Tracer
}

// NewBuilder creates a new Builder with the given dependencies.
func NewBuilder(resolver ports.Resolver, logger ports.Logger, tracer ports.Tracer) *Builder {
	return &Builder{
		resolver: resolver,
		logger:   logger,
		tracer:   tracer,
	}
}

// pending is one module awaiting resolution, with the module that referenced
// it (empty for entries) for error reporting.
type pending struct {
	id       domain.InternedString
	importer string
}

// Build resolves the dependency closure reachable from the entries.
//
// Dynamic-import sites are recorded as async edges and their targets are
// resolved like any other module, but never inlined into the importer's
// synchronous closure. Cycles among synchronous edges are returned as
// non-fatal warnings; the graph is still built, and runtime
// partial-initialization ordering is expected to break the cycle.
func (b *Builder) Build(ctx context.Context, entries []domain.InternedString) (*domain.ModuleGraph, []error, error) {
	if len(entries) == 0 {
		return nil, nil, domain.ErrNoEntries
	}

	_, span := b.tracer.Start(ctx, "Building module graph")
	defer span.End()

	graph := domain.NewModuleGraph(entries)

	queue := make([]pending, 0, len(entries))
	for _, e := range entries {
		queue = append(queue, pending{id: e})
	}

	visited := make(map[domain.InternedString]bool)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		if visited[next.id] {
			continue
		}
		visited[next.id] = true

		info, err := b.resolver.Resolve(next.id)
		if err != nil {
			unresolved := zerr.With(zerr.Wrap(err, domain.ErrUnresolvedModule.Error()), "module", next.id.String())
			unresolved = zerr.With(unresolved, "imported_by", importerLabel(next.importer))
			span.RecordError(unresolved)
			return nil, nil, unresolved
		}

		module := &domain.Module{ID: next.id, Size: info.Size, Deps: info.Deps}
		if err := graph.AddModule(module); err != nil {
			span.RecordError(err)
			return nil, nil, err
		}

		for _, dep := range info.Deps {
			if !visited[dep.ID] {
				queue = append(queue, pending{id: dep.ID, importer: next.id.String()})
			}
		}
	}

	warnings := graph.DetectSyncCycles()
	for _, w := range warnings {
		b.logger.Warn(fmt.Sprintf("%v", w))
	}

	span.SetAttribute("carve.modules", graph.ModuleCount())
	span.SetAttribute("carve.cycles", len(warnings))

	return graph, warnings, nil
}

func importerLabel(importer string) string {
	if importer == "" {
		return "(entry)"
	}
	return importer
}
