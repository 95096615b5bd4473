package domain

// EdgeKind classifies a dependency edge.
type EdgeKind uint8

const (
	// EdgeSync is a static import, resolved at initial load.
	EdgeSync EdgeKind = iota
	// EdgeAsync is a dynamic import, realized on demand at runtime.
	// Async edges mark candidate chunk-split points.
	EdgeAsync
)

// String returns the wire name of the edge kind.
func (k EdgeKind) String() string {
	if k == EdgeAsync {
		return "async"
	}
	return "sync"
}

// Dep is an outgoing dependency reference of a module.
type Dep struct {
	ID   InternedString
	Kind EdgeKind
}

// Module is a resolved source module. Immutable once added to a graph.
type Module struct {
	ID   InternedString
	Size int64
	Deps []Dep
}

// SyncDeps yields the identifiers of the module's synchronous dependencies.
func (m Module) SyncDeps() []InternedString {
	var out []InternedString
	for _, d := range m.Deps {
		if d.Kind == EdgeSync {
			out = append(out, d.ID)
		}
	}
	return out
}

// AsyncDeps yields the identifiers of the module's dynamic-import targets.
func (m Module) AsyncDeps() []InternedString {
	var out []InternedString
	for _, d := range m.Deps {
		if d.Kind == EdgeAsync {
			out = append(out, d.ID)
		}
	}
	return out
}
