package domain

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// ChunkKind classifies how a chunk is loaded.
type ChunkKind uint8

const (
	// ChunkInitial is loaded eagerly by an entry point.
	ChunkInitial ChunkKind = iota
	// ChunkAsync is loaded on demand at an async split point.
	ChunkAsync
)

// String returns the wire name of the chunk kind.
func (k ChunkKind) String() string {
	if k == ChunkAsync {
		return "async"
	}
	return "initial"
}

// Chunk is an output unit containing one or more modules, emitted as a
// single loadable artifact.
type Chunk struct {
	// ID is the deterministic chunk identifier, derived from Name and the
	// sorted member fingerprint. See Fingerprint.
	ID string
	// Name is the human-readable chunk name (group name or root name).
	Name string
	// Kind records whether the chunk is loaded eagerly or on demand.
	Kind ChunkKind
	// Modules are the member module identifiers in insertion order.
	// Insertion order affects output determinism and is preserved.
	Modules []InternedString
	// Size is the total byte size of the member modules.
	Size int64
	// Roots are the entry or async split points that load this chunk.
	Roots []InternedString
}

// Fingerprint computes a content fingerprint over the sorted member module
// identifiers. Allocation order plays no part, so repeated runs over an
// unchanged graph yield byte-identical chunk keys. This is what makes chunk
// identifiers stable enough for long-term caching across builds.
func Fingerprint(modules []InternedString) string {
	sorted := make([]InternedString, len(modules))
	copy(sorted, modules)
	slices.SortFunc(sorted, InternedString.Compare)

	digest := xxhash.New()
	for _, id := range sorted {
		_, _ = digest.WriteString(id.String())
		_, _ = digest.Write([]byte{0}) // Separator
	}
	return fmt.Sprintf("%016x", digest.Sum64())
}

// FingerprintID derives the chunk identifier from its name and members.
func (c *Chunk) FingerprintID() string {
	return c.Name + "-" + Fingerprint(c.Modules)
}

// Contains reports whether the chunk holds the given module.
func (c *Chunk) Contains(id InternedString) bool {
	return slices.Contains(c.Modules, id)
}
