// Package domain contains the core domain models for the module graph and
// the chunk partition plan.
package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// ModuleGraph is a closed dependency graph of modules reachable from a set
// of entry points. Modules are kept in insertion order so that repeated
// builds over an unchanged input walk the graph identically.
type ModuleGraph struct {
	modules map[InternedString]Module
	order   []InternedString
	entries []InternedString
}

// NewModuleGraph creates a new empty ModuleGraph with the given entry modules.
func NewModuleGraph(entries []InternedString) *ModuleGraph {
	return &ModuleGraph{
		modules: make(map[InternedString]Module),
		entries: entries,
	}
}

// AddModule adds a resolved module to the graph.
// It returns an error if a module with the same identifier already exists.
func (g *ModuleGraph) AddModule(m *Module) error {
	if _, exists := g.modules[m.ID]; exists {
		return zerr.With(ErrModuleAlreadyExists, "module", m.ID.String())
	}
	g.modules[m.ID] = *m
	g.order = append(g.order, m.ID)
	return nil
}

// GetModule returns the module with the given identifier.
func (g *ModuleGraph) GetModule(id InternedString) (Module, bool) {
	m, ok := g.modules[id]
	return m, ok
}

// Entries returns the entry module identifiers in declaration order.
func (g *ModuleGraph) Entries() []InternedString {
	return g.entries
}

// ModuleCount returns the number of modules in the graph.
func (g *ModuleGraph) ModuleCount() int {
	return len(g.modules)
}

// Walk returns an iterator that yields modules in insertion order.
func (g *ModuleGraph) Walk() iter.Seq[Module] {
	return func(yield func(Module) bool) {
		for _, id := range g.order {
			if !yield(g.modules[id]) {
				return
			}
		}
	}
}

// AsyncTargets returns the targets of async edges in first-seen order,
// deduplicated. These are the async split points of the graph.
func (g *ModuleGraph) AsyncTargets() []InternedString {
	seen := make(map[InternedString]bool)
	var targets []InternedString
	for _, id := range g.order {
		for _, dep := range g.modules[id].Deps {
			if dep.Kind != EdgeAsync || seen[dep.ID] {
				continue
			}
			seen[dep.ID] = true
			targets = append(targets, dep.ID)
		}
	}
	return targets
}

// DetectSyncCycles finds cycles among synchronous edges using a tri-color DFS.
// Cycles are permitted: modules may be mutually dependent and are broken at
// runtime by partial-initialization ordering. Each detected back edge yields
// one ErrCyclicImport carrying the cycle path; the graph itself is untouched.
func (g *ModuleGraph) DetectSyncCycles() []error {
	var warnings []error
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString)
	visit = func(u InternedString) {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range g.modules[u].SyncDeps() {
			if _, exists := g.modules[dep]; !exists {
				continue
			}
			switch visited[dep] {
			case 1:
				warnings = append(warnings, g.buildCycleWarning(path, dep))
			case 0:
				visit(dep)
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
	}

	for _, id := range g.order {
		if visited[id] == 0 {
			visit(id)
		}
	}

	return warnings
}

// buildCycleWarning constructs a warning with cycle path metadata.
func (g *ModuleGraph) buildCycleWarning(path []InternedString, dep InternedString) error {
	cyclePath := ""
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i].String() + " -> "
	}
	cyclePath += dep.String()
	return zerr.With(ErrCyclicImport, "cycle", cyclePath)
}
