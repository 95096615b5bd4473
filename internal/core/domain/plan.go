package domain

// PartitionPlan is the final mapping from chunks to member modules, plus the
// mapping from each entry or async-import site to the ordered chunks it loads.
type PartitionPlan struct {
	// Chunks are the materialized chunks in deterministic order
	// (initial before async, then by identifier).
	Chunks []Chunk
	// Loads maps each load site (entry module or async split point) to the
	// ordered chunk identifiers it must load, shared chunks first.
	Loads map[InternedString][]string
}

// ChunkByID returns the chunk with the given identifier.
func (p *PartitionPlan) ChunkByID(id string) (Chunk, bool) {
	for _, c := range p.Chunks {
		if c.ID == id {
			return c, true
		}
	}
	return Chunk{}, false
}

// ChunksFor returns the modules' owning chunks for a load site.
func (p *PartitionPlan) ChunksFor(site InternedString) []Chunk {
	ids := p.Loads[site]
	chunks := make([]Chunk, 0, len(ids))
	for _, id := range ids {
		if c, ok := p.ChunkByID(id); ok {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// Covers reports whether every module of the graph appears in at least one
// chunk of the plan.
func (p *PartitionPlan) Covers(g *ModuleGraph) bool {
	placed := make(map[InternedString]bool)
	for _, c := range p.Chunks {
		for _, id := range c.Modules {
			placed[id] = true
		}
	}
	for m := range g.Walk() {
		if !placed[m.ID] {
			return false
		}
	}
	return true
}
