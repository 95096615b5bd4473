// Package planner implements the chunk assignment engine: it partitions a
// module graph into chunks according to cache-group rules and global
// thresholds, producing a deterministic partition plan.
//
// Planning is a pure batch computation over an immutable snapshot. The same
// graph, groups and thresholds always produce a byte-identical plan; chunk
// identifiers are content fingerprints over sorted member sets, never
// allocation order.
package planner

import (
	"slices"
	"strconv"

	"github.com/carve-build/carve/internal/core/domain"
)

// root is one load site: an entry point (initial) or an async split point.
type root struct {
	id    domain.InternedString
	kind  domain.ChunkKind
	index int
}

// candidate is a chunk being formed from a cache group (or the implicit
// common group) for one specific combination of consuming roots.
type candidate struct {
	name      string
	rootSet   []int // sorted root indices
	modules   []domain.InternedString
	size      int64
	priority  int
	declIndex int
	reuse     bool
	enforced  bool
}

func (c *candidate) kind(roots []root) domain.ChunkKind {
	for _, r := range c.rootSet {
		if roots[r].kind == domain.ChunkInitial {
			return domain.ChunkInitial
		}
	}
	return domain.ChunkAsync
}

// pass holds the state of a single planning run.
type pass struct {
	graph  *domain.ModuleGraph
	groups []domain.CacheGroup
	limits domain.Thresholds

	roots      []root
	reach      map[domain.InternedString][]int // module -> sorted owning root indices
	rootOrder  [][]domain.InternedString       // per root: sync BFS discovery order
	rootChunks [][]domain.InternedString       // per root: modules kept inline
	candidates []*candidate
	candByKey  map[string]*candidate
}

// Plan partitions the graph into chunks.
//
// It returns ErrUnsatisfiableConstraint when the size and request-count
// thresholds conflict and no legal merge remains; it never returns a
// partial plan.
func Plan(graph *domain.ModuleGraph, groups []domain.CacheGroup, limits domain.Thresholds) (*domain.PartitionPlan, error) {
	p := &pass{
		graph:     graph,
		groups:    groups,
		limits:    limits,
		reach:     make(map[domain.InternedString][]int),
		candByKey: make(map[string]*candidate),
	}

	p.collectRoots()
	p.computeReachability()
	p.assignModules()
	p.filterBySize()
	if err := p.capRequests(); err != nil {
		return nil, err
	}
	p.reuseIdenticalChunks()

	return p.finalize(), nil
}

// collectRoots gathers load sites: entries in declaration order, then async
// split points in first-seen order. An async target that is also an entry is
// an initial root only; its eager copy makes the lazy request a no-op.
func (p *pass) collectRoots() {
	entrySet := make(map[domain.InternedString]bool)
	for _, e := range p.graph.Entries() {
		entrySet[e] = true
		p.roots = append(p.roots, root{id: e, kind: domain.ChunkInitial, index: len(p.roots)})
	}
	for _, t := range p.graph.AsyncTargets() {
		if entrySet[t] {
			continue
		}
		p.roots = append(p.roots, root{id: t, kind: domain.ChunkAsync, index: len(p.roots)})
	}
	p.rootOrder = make([][]domain.InternedString, len(p.roots))
	p.rootChunks = make([][]domain.InternedString, len(p.roots))
}

// computeReachability walks synchronous edges from every root and records,
// per module, the set of roots that reach it. Synchronous reachability from
// an initial root dominates: such modules are dropped from async roots so a
// lazy import never re-fetches what the initial load already shipped.
func (p *pass) computeReachability() {
	owned := make(map[domain.InternedString][]int)

	for _, r := range p.roots {
		visited := make(map[domain.InternedString]bool)
		queue := []domain.InternedString{r.id}

		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			if visited[id] {
				continue
			}
			visited[id] = true

			m, ok := p.graph.GetModule(id)
			if !ok {
				continue
			}
			p.rootOrder[r.index] = append(p.rootOrder[r.index], id)
			owned[id] = append(owned[id], r.index)

			queue = append(queue, m.SyncDeps()...)
		}
	}

	for id, rootIdxs := range owned {
		p.reach[id] = p.applyInitialDominance(rootIdxs)
	}
}

// applyInitialDominance drops async roots from a module's owning set when an
// initial root also reaches it.
func (p *pass) applyInitialDominance(rootIdxs []int) []int {
	hasInitial := false
	for _, i := range rootIdxs {
		if p.roots[i].kind == domain.ChunkInitial {
			hasInitial = true
			break
		}
	}
	if !hasInitial {
		return rootIdxs
	}

	filtered := rootIdxs[:0]
	for _, i := range rootIdxs {
		if p.roots[i].kind == domain.ChunkInitial {
			filtered = append(filtered, i)
		}
	}
	return filtered
}

// assignModules decides, per module, the winning cache group and target
// chunk. Modules claimed by no group and shared by too few roots stay
// inlined in each owning root chunk.
func (p *pass) assignModules() {
	for m := range p.graph.Walk() {
		rootIdxs := p.reach[m.ID]
		if len(rootIdxs) == 0 {
			// Unreachable from any root (async-only module that an initial
			// chunk absorbed, or orphan); nothing to place.
			continue
		}

		group, scopeRoots := p.selectGroup(m.ID, rootIdxs)
		switch {
		case group != nil:
			p.addToCandidate(group, scopeRoots, m)
			// Roots outside the group's scope still need the module inline.
			for _, r := range rootIdxs {
				if !slices.Contains(scopeRoots, r) {
					p.rootChunks[r] = append(p.rootChunks[r], m.ID)
				}
			}
		case p.limits.MinChunks > 0 && len(rootIdxs) >= p.limits.MinChunks:
			p.addToCommon(rootIdxs, m)
		default:
			for _, r := range rootIdxs {
				p.rootChunks[r] = append(p.rootChunks[r], m.ID)
			}
		}
	}
}

// selectGroup returns the highest-priority matching cache group and the
// owning roots that fall inside its scope. Ties break by declaration order.
func (p *pass) selectGroup(id domain.InternedString, rootIdxs []int) (*domain.CacheGroup, []int) {
	var winner *domain.CacheGroup
	var winnerRoots []int

	for i := range p.groups {
		cg := &p.groups[i]
		if !cg.Matches(id) {
			continue
		}

		scopeRoots := p.filterScope(rootIdxs, cg.Scope)
		if len(scopeRoots) < cg.EffectiveMinChunks() || len(scopeRoots) == 0 {
			continue
		}

		if winner == nil || cg.Priority > winner.Priority {
			winner = cg
			winnerRoots = scopeRoots
		}
	}

	return winner, winnerRoots
}

// filterScope keeps only the roots a chunk scope applies to.
func (p *pass) filterScope(rootIdxs []int, scope domain.ChunkScope) []int {
	if scope == domain.ScopeAll || scope == "" {
		return rootIdxs
	}

	want := domain.ChunkAsync
	if scope == domain.ScopeInitial {
		want = domain.ChunkInitial
	}

	var out []int
	for _, r := range rootIdxs {
		if p.roots[r].kind == want {
			out = append(out, r)
		}
	}
	return out
}

// addToCandidate merges the module into the chunk keyed by group name plus
// the exact root combination reaching it.
func (p *pass) addToCandidate(cg *domain.CacheGroup, scopeRoots []int, m domain.Module) {
	key := cg.Name + rootSetKey(scopeRoots)
	c, ok := p.candByKey[key]
	if !ok {
		c = &candidate{
			name:      cg.Name,
			rootSet:   slices.Clone(scopeRoots),
			priority:  cg.Priority,
			declIndex: cg.Index,
			reuse:     cg.ReuseExistingChunk,
		}
		p.candByKey[key] = c
		p.candidates = append(p.candidates, c)
	}
	c.modules = append(c.modules, m.ID)
	c.size += m.Size
}

// addToCommon places the module into the implicit default group's chunk for
// its root combination.
func (p *pass) addToCommon(rootIdxs []int, m domain.Module) {
	key := domain.CommonGroupName + rootSetKey(rootIdxs)
	c, ok := p.candByKey[key]
	if !ok {
		c = &candidate{
			name:      domain.CommonGroupName,
			rootSet:   slices.Clone(rootIdxs),
			declIndex: len(p.groups),
		}
		p.candByKey[key] = c
		p.candidates = append(p.candidates, c)
	}
	c.modules = append(c.modules, m.ID)
	c.size += m.Size
}

func rootSetKey(rootIdxs []int) string {
	key := ""
	for _, r := range rootIdxs {
		key += "\x00" + strconv.Itoa(r)
	}
	return key
}

// rootSize sums the byte sizes of the modules currently inlined in a root
// chunk.
func (p *pass) rootSize(rootIdx int) int64 {
	var total int64
	for _, id := range p.rootChunks[rootIdx] {
		if m, ok := p.graph.GetModule(id); ok {
			total += m.Size
		}
	}
	return total
}

// dissolve merges a candidate back into every consuming root chunk and
// removes it from the pass.
func (p *pass) dissolve(c *candidate) {
	for _, r := range c.rootSet {
		p.rootChunks[r] = append(p.rootChunks[r], c.modules...)
	}
	p.candidates = slices.DeleteFunc(p.candidates, func(other *candidate) bool {
		return other == c
	})
}
