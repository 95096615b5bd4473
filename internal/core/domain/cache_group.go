package domain

import (
	"regexp"

	"go.trai.ch/zerr"
)

// ChunkScope restricts which kinds of chunks a cache group may contribute to.
type ChunkScope string

const (
	// ScopeAll matches modules regardless of how they are reached.
	ScopeAll ChunkScope = "all"
	// ScopeAsync matches only modules reached through async split points.
	ScopeAsync ChunkScope = "async"
	// ScopeInitial matches only modules reached from initial entry points.
	ScopeInitial ChunkScope = "initial"
)

// ParseChunkScope converts a config string into a ChunkScope.
func ParseChunkScope(s string) (ChunkScope, error) {
	switch ChunkScope(s) {
	case ScopeAll, ScopeAsync, ScopeInitial:
		return ChunkScope(s), nil
	case "":
		return ScopeAll, nil
	default:
		return "", zerr.With(ErrInvalidChunkScope, "scope", s)
	}
}

// CommonGroupName is the name of the implicit default group that collects
// modules shared by enough roots but matched by no explicit cache group.
const CommonGroupName = "common"

// CacheGroup is a named rule controlling which modules are eligible to be
// grouped into a particular kind of chunk and at what priority.
// Cache group values are read-only inputs shared across planning passes.
type CacheGroup struct {
	// Name identifies the group and prefixes the chunk identifiers it produces.
	Name string
	// Pattern is the membership predicate over module identifiers.
	Pattern *regexp.Regexp
	// Priority orders competing groups; higher wins, ties break by Index.
	Priority int
	// Index is the declaration position, the documented tie-break.
	Index int
	// MinChunks is the minimum number of roots that must share a module
	// before the group may claim it. Zero means one.
	MinChunks int
	// Scope restricts the group to initial, async, or all chunks.
	Scope ChunkScope
	// ReuseExistingChunk collapses chunks with identical member sets into one.
	ReuseExistingChunk bool
}

// Matches reports whether the group's membership predicate matches the module.
func (cg CacheGroup) Matches(id InternedString) bool {
	return cg.Pattern != nil && cg.Pattern.MatchString(id.String())
}

// EffectiveMinChunks returns the group's minimum sharing count, at least one.
func (cg CacheGroup) EffectiveMinChunks() int {
	if cg.MinChunks < 1 {
		return 1
	}
	return cg.MinChunks
}
