package planner

import (
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/zerr"

	"github.com/carve-build/carve/internal/core/domain"
)

// filterBySize drops candidate chunks below MinSize, dissolving them back
// into their consumers. A candidate at or above EnforceSizeThreshold is
// marked enforced: the split is forced and the chunk is immune to every
// later merge. A non-enforced split is also cancelled when it would leave
// any consuming root chunk below MinRemainingSize.
func (p *pass) filterBySize() {
	var dissolving []*candidate

	for _, c := range p.candidates {
		if p.limits.EnforceSizeThreshold > 0 && c.size >= p.limits.EnforceSizeThreshold {
			c.enforced = true
			continue
		}

		if c.size < p.limits.MinSize {
			dissolving = append(dissolving, c)
			continue
		}

		if p.limits.MinRemainingSize > 0 && p.leavesConsumerTooSmall(c) {
			dissolving = append(dissolving, c)
		}
	}

	for _, c := range dissolving {
		p.dissolve(c)
	}
}

func (p *pass) leavesConsumerTooSmall(c *candidate) bool {
	for _, r := range c.rootSet {
		if p.rootSize(r) < p.limits.MinRemainingSize {
			return true
		}
	}
	return false
}

// capRequests enforces MaxInitialRequests and MaxAsyncRequests per load
// site. Over the limit, the lowest-priority smallest non-enforced chunk is
// merged into its next-higher-priority sibling, or dissolved into its
// consumers when no sibling remains. Enforced chunks cannot be merged away;
// when only enforced chunks remain and the limit is still exceeded, the
// constraint set is unsatisfiable.
//
// Merging for one root never increases another root's request count, so a
// single pass in root order converges.
func (p *pass) capRequests() error {
	for _, r := range p.roots {
		limit := p.limits.MaxInitialRequests
		limitName := "maxInitialRequests"
		if r.kind == domain.ChunkAsync {
			limit = p.limits.MaxAsyncRequests
			limitName = "maxAsyncRequests"
		}
		if limit <= 0 {
			continue
		}

		if err := p.capRoot(r, limit, limitName); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) capRoot(r root, limit int, limitName string) error {
	for {
		attached := p.attachedTo(r.index)
		count := len(attached)
		if len(p.rootChunks[r.index]) > 0 {
			count++
		}
		if count <= limit {
			return nil
		}

		eligible := slices.Clone(attached)
		eligible = slices.DeleteFunc(eligible, func(c *candidate) bool { return c.enforced })
		sortForMerge(eligible)

		if len(eligible) == 0 {
			err := zerr.With(domain.ErrUnsatisfiableConstraint, "limit", limitName)
			err = zerr.With(err, "conflicts_with", "enforceSizeThreshold")
			err = zerr.With(err, "chunk", attached[0].name)
			return zerr.With(err, "site", r.id.String())
		}

		victim := eligible[0]
		if len(eligible) > 1 {
			p.merge(victim, eligible[1])
		} else {
			p.dissolve(victim)
		}
	}
}

// attachedTo returns the surviving candidates consumed by the given root,
// in creation order.
func (p *pass) attachedTo(rootIdx int) []*candidate {
	var out []*candidate
	for _, c := range p.candidates {
		if slices.Contains(c.rootSet, rootIdx) {
			out = append(out, c)
		}
	}
	return out
}

// sortForMerge orders merge victims first: lowest priority, then smallest,
// then by name and declaration order for determinism.
func sortForMerge(cands []*candidate) {
	slices.SortStableFunc(cands, func(a, b *candidate) int {
		if a.priority != b.priority {
			return a.priority - b.priority
		}
		if a.size != b.size {
			if a.size < b.size {
				return -1
			}
			return 1
		}
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
		return a.declIndex - b.declIndex
	})
}

// merge absorbs victim into target; target then serves the union of both
// root sets.
func (p *pass) merge(victim, target *candidate) {
	target.modules = append(target.modules, victim.modules...)
	target.size += victim.size
	target.rootSet = unionRootSets(target.rootSet, victim.rootSet)

	p.candidates = slices.DeleteFunc(p.candidates, func(c *candidate) bool {
		return c == victim
	})
}

func unionRootSets(a, b []int) []int {
	out := slices.Clone(a)
	for _, r := range b {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return out
}

// reuseIdenticalChunks collapses candidates with identical member sets into
// one chunk when the winning group opted into reuse, and lets a reusing
// candidate that emptied its sole consumer take over that chunk's identity
// instead of introducing a new one.
func (p *pass) reuseIdenticalChunks() {
	byFingerprint := make(map[string]*candidate)
	kept := p.candidates[:0]

	for _, c := range p.candidates {
		fp := domain.Fingerprint(c.modules)
		if prev, ok := byFingerprint[fp]; ok && (c.reuse || prev.reuse) {
			prev.rootSet = unionRootSets(prev.rootSet, c.rootSet)
			continue
		}
		byFingerprint[fp] = c
		kept = append(kept, c)
	}
	p.candidates = kept

	for _, c := range p.candidates {
		if c.reuse && len(c.rootSet) == 1 && len(p.rootChunks[c.rootSet[0]]) == 0 {
			c.name = takeoverName(p.roots[c.rootSet[0]].id)
		}
	}
}

// finalize materializes chunks with fingerprint identifiers and builds the
// site load lists: shared chunks first (highest priority first), the site's
// own chunk last.
func (p *pass) finalize() *domain.PartitionPlan {
	plan := &domain.PartitionPlan{Loads: make(map[domain.InternedString][]string)}

	rootChunkIDs := make([]string, len(p.roots))
	for _, r := range p.roots {
		members := p.rootChunks[r.index]
		if len(members) == 0 {
			continue
		}
		c := domain.Chunk{
			Name:    rootChunkName(r.id),
			Kind:    r.kind,
			Modules: slices.Clone(members),
			Size:    p.rootSize(r.index),
			Roots:   []domain.InternedString{r.id},
		}
		c.ID = c.FingerprintID()
		rootChunkIDs[r.index] = c.ID
		plan.Chunks = append(plan.Chunks, c)
	}

	candidateIDs := make(map[*candidate]string, len(p.candidates))
	for _, cand := range p.candidates {
		rootIDs := make([]domain.InternedString, len(cand.rootSet))
		for i, r := range cand.rootSet {
			rootIDs[i] = p.roots[r].id
		}
		c := domain.Chunk{
			Name:    cand.name,
			Kind:    cand.kind(p.roots),
			Modules: slices.Clone(cand.modules),
			Size:    cand.size,
			Roots:   rootIDs,
		}
		c.ID = c.FingerprintID()
		candidateIDs[cand] = c.ID
		plan.Chunks = append(plan.Chunks, c)
	}

	slices.SortStableFunc(plan.Chunks, func(a, b domain.Chunk) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		return strings.Compare(a.ID, b.ID)
	})

	for _, r := range p.roots {
		attached := p.attachedTo(r.index)
		sortForLoad(attached)

		var loads []string
		for _, cand := range attached {
			loads = append(loads, candidateIDs[cand])
		}
		if id := rootChunkIDs[r.index]; id != "" {
			loads = append(loads, id)
		}
		plan.Loads[r.id] = loads
	}

	return plan
}

// sortForLoad orders a site's shared chunks for loading: highest priority
// first, ties by declaration order then name.
func sortForLoad(cands []*candidate) {
	slices.SortStableFunc(cands, func(a, b *candidate) int {
		if a.priority != b.priority {
			return b.priority - a.priority
		}
		if a.declIndex != b.declIndex {
			return a.declIndex - b.declIndex
		}
		return strings.Compare(a.name, b.name)
	})
}

// rootChunkName derives a readable chunk name from a root module identifier:
// the base file name up to its first dot.
func rootChunkName(id domain.InternedString) string {
	base := filepath.Base(id.String())
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

// takeoverName names a candidate after the root whose chunk it absorbed.
// A generic index module falls back to its directory so the name cannot
// collide with an entry chunk named index.
func takeoverName(id domain.InternedString) string {
	name := rootChunkName(id)
	if name != "index" {
		return name
	}
	if dir := filepath.Base(filepath.Dir(id.String())); dir != "." && dir != "/" {
		return dir
	}
	return name
}
