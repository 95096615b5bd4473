// Package ports defines the core interfaces for the application.
package ports

import "github.com/carve-build/carve/internal/core/domain"

// ModuleInfo is the resolver's view of a single module: its byte size and
// its dependency references, already resolved to module identifiers.
type ModuleInfo struct {
	Size int64
	Deps []domain.Dep
}

// Resolver resolves a module identifier to its content metadata and raw
// import list. Resolution is assumed cheap and repeatable; the graph builder
// calls it exactly once per module.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type Resolver interface {
	// Resolve returns the module info for the given identifier.
	// It fails when the identifier or one of its import specifiers cannot
	// be resolved to an existing module.
	Resolve(id domain.InternedString) (ModuleInfo, error)
}
