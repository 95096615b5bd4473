package planner_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carve-build/carve/internal/core/domain"
	"github.com/carve-build/carve/internal/engine/planner"
)

// modSpec is a compact module description for building test graphs.
type modSpec struct {
	id    string
	size  int64
	sync  []string
	async []string
}

func buildGraph(t *testing.T, entries []string, mods []modSpec) *domain.ModuleGraph {
	t.Helper()
	g := domain.NewModuleGraph(domain.NewInternedStrings(entries))
	for _, m := range mods {
		var deps []domain.Dep
		for _, d := range m.sync {
			deps = append(deps, domain.Dep{ID: domain.NewInternedString(d), Kind: domain.EdgeSync})
		}
		for _, d := range m.async {
			deps = append(deps, domain.Dep{ID: domain.NewInternedString(d), Kind: domain.EdgeAsync})
		}
		require.NoError(t, g.AddModule(&domain.Module{
			ID:   domain.NewInternedString(m.id),
			Size: m.size,
			Deps: deps,
		}))
	}
	return g
}

func group(name, pattern string, priority, index int) domain.CacheGroup {
	return domain.CacheGroup{
		Name:     name,
		Pattern:  regexp.MustCompile(pattern),
		Priority: priority,
		Index:    index,
		Scope:    domain.ScopeAll,
	}
}

// unlimited disables every threshold so structural behavior can be tested
// in isolation.
func unlimited() domain.Thresholds {
	return domain.Thresholds{MinChunks: 2}
}

func chunkNamed(t *testing.T, plan *domain.PartitionPlan, name string) domain.Chunk {
	t.Helper()
	for _, c := range plan.Chunks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no chunk named %q in plan", name)
	return domain.Chunk{}
}

func moduleStrings(c domain.Chunk) []string {
	out := make([]string, len(c.Modules))
	for i, m := range c.Modules {
		out[i] = m.String()
	}
	return out
}

func TestPlan_SingleEntryInline(t *testing.T) {
	g := buildGraph(t, []string{"src/index.js"}, []modSpec{
		{id: "src/index.js", size: 100, sync: []string{"src/a.js", "src/b.js"}},
		{id: "src/a.js", size: 50},
		{id: "src/b.js", size: 30},
	})

	plan, err := planner.Plan(g, nil, unlimited())
	require.NoError(t, err)

	require.Len(t, plan.Chunks, 1)
	c := plan.Chunks[0]
	assert.Equal(t, "index", c.Name)
	assert.Equal(t, domain.ChunkInitial, c.Kind)
	assert.Equal(t, []string{"src/index.js", "src/a.js", "src/b.js"}, moduleStrings(c))
	assert.Equal(t, int64(180), c.Size)

	assert.Equal(t, []string{c.ID}, plan.Loads[domain.NewInternedString("src/index.js")])
	assert.True(t, plan.Covers(g))
}

func TestPlan_Determinism(t *testing.T) {
	mods := []modSpec{
		{id: "src/index.js", size: 100, sync: []string{"node_modules/react/index.js"}, async: []string{"src/lazy.js"}},
		{id: "node_modules/react/index.js", size: 40000},
		{id: "src/lazy.js", size: 2000, sync: []string{"node_modules/lodash/index.js"}},
		{id: "node_modules/lodash/index.js", size: 30000},
	}
	groups := []domain.CacheGroup{group("vendors", `node_modules/`, 10, 0)}

	first, err := planner.Plan(buildGraph(t, []string{"src/index.js"}, mods), groups, domain.DefaultThresholds())
	require.NoError(t, err)
	second, err := planner.Plan(buildGraph(t, []string{"src/index.js"}, mods), groups, domain.DefaultThresholds())
	require.NoError(t, err)

	require.Equal(t, first, second, "repeated runs over an unchanged graph must be byte-identical")
}

func TestPlan_PriorityResolution(t *testing.T) {
	g := buildGraph(t, []string{"src/index.js"}, []modSpec{
		{id: "src/index.js", size: 100, sync: []string{"node_modules/react/index.js"}},
		{id: "node_modules/react/index.js", size: 500},
	})
	groups := []domain.CacheGroup{
		group("winner", `node_modules/`, 10, 0),
		group("loser", `node_modules/`, -10, 1),
	}

	plan, err := planner.Plan(g, groups, unlimited())
	require.NoError(t, err)

	c := chunkNamed(t, plan, "winner")
	assert.Equal(t, []string{"node_modules/react/index.js"}, moduleStrings(c))
	for _, chunk := range plan.Chunks {
		assert.NotEqual(t, "loser", chunk.Name)
	}
}

func TestPlan_PriorityTieBreaksByDeclarationOrder(t *testing.T) {
	g := buildGraph(t, []string{"src/index.js"}, []modSpec{
		{id: "src/index.js", size: 100, sync: []string{"node_modules/react/index.js"}},
		{id: "node_modules/react/index.js", size: 500},
	})
	groups := []domain.CacheGroup{
		group("first", `node_modules/`, 5, 0),
		group("second", `node_modules/`, 5, 1),
	}

	plan, err := planner.Plan(g, groups, unlimited())
	require.NoError(t, err)
	chunkNamed(t, plan, "first")
}

func TestPlan_MinSizeMergesBackIntoConsumer(t *testing.T) {
	g := buildGraph(t, []string{"src/index.js"}, []modSpec{
		{id: "src/index.js", size: 100, sync: []string{"node_modules/tiny/index.js"}},
		{id: "node_modules/tiny/index.js", size: 500},
	})
	groups := []domain.CacheGroup{group("vendors", `node_modules/`, 10, 0)}
	limits := domain.Thresholds{MinSize: 20000, MinChunks: 2, MaxInitialRequests: 30, MaxAsyncRequests: 30}

	plan, err := planner.Plan(g, groups, limits)
	require.NoError(t, err)

	require.Len(t, plan.Chunks, 1, "500 byte candidate must not be emitted standalone")
	assert.Equal(t, []string{"src/index.js", "node_modules/tiny/index.js"}, moduleStrings(plan.Chunks[0]))
}

func TestPlan_EnforceSizeThresholdBypassesMinSize(t *testing.T) {
	g := buildGraph(t, []string{"src/index.js"}, []modSpec{
		{id: "src/index.js", size: 100, sync: []string{"node_modules/mid/index.js"}},
		{id: "node_modules/mid/index.js", size: 500},
	})
	groups := []domain.CacheGroup{group("vendors", `node_modules/`, 10, 0)}
	limits := domain.Thresholds{MinSize: 20000, EnforceSizeThreshold: 400, MinChunks: 2}

	plan, err := planner.Plan(g, groups, limits)
	require.NoError(t, err)

	c := chunkNamed(t, plan, "vendors")
	assert.Equal(t, []string{"node_modules/mid/index.js"}, moduleStrings(c))
}

func TestPlan_MinRemainingSize(t *testing.T) {
	mods := []modSpec{
		{id: "src/index.js", size: 100, sync: []string{"node_modules/lib/index.js"}},
		{id: "node_modules/lib/index.js", size: 5000},
	}
	groups := []domain.CacheGroup{group("vendors", `node_modules/`, 10, 0)}

	t.Run("split cancelled when the consumer would shrink below it", func(t *testing.T) {
		limits := domain.Thresholds{MinChunks: 2, MinRemainingSize: 500}

		plan, err := planner.Plan(buildGraph(t, []string{"src/index.js"}, mods), groups, limits)
		require.NoError(t, err)

		require.Len(t, plan.Chunks, 1, "splitting would leave the entry chunk at 100 bytes")
		assert.Equal(t, []string{"src/index.js", "node_modules/lib/index.js"}, moduleStrings(plan.Chunks[0]))
	})

	t.Run("split stands when the consumer stays above it", func(t *testing.T) {
		limits := domain.Thresholds{MinChunks: 2, MinRemainingSize: 50}

		plan, err := planner.Plan(buildGraph(t, []string{"src/index.js"}, mods), groups, limits)
		require.NoError(t, err)

		c := chunkNamed(t, plan, "vendors")
		assert.Equal(t, []string{"node_modules/lib/index.js"}, moduleStrings(c))
	})
}

func TestPlan_RequestCapping(t *testing.T) {
	g := buildGraph(t, []string{"src/index.js"}, []modSpec{
		{id: "src/index.js", size: 100, sync: []string{"lib/a.js", "lib/b.js", "lib/c.js"}},
		{id: "lib/a.js", size: 1000},
		{id: "lib/b.js", size: 2000},
		{id: "lib/c.js", size: 3000},
	})
	groups := []domain.CacheGroup{
		group("ga", `lib/a`, 3, 0),
		group("gb", `lib/b`, 2, 1),
		group("gc", `lib/c`, 1, 2),
	}
	limits := domain.Thresholds{MinChunks: 2, MaxInitialRequests: 2}

	plan, err := planner.Plan(g, groups, limits)
	require.NoError(t, err)

	entry := domain.NewInternedString("src/index.js")
	require.Len(t, plan.Loads[entry], 2, "entry must load exactly maxInitialRequests chunks")

	// The two lowest-priority chunks merged upward into the highest.
	c := chunkNamed(t, plan, "ga")
	assert.ElementsMatch(t, []string{"lib/a.js", "lib/b.js", "lib/c.js"}, moduleStrings(c))
	assert.True(t, plan.Covers(g))
}

func TestPlan_SyncReachabilityDominatesAsync(t *testing.T) {
	// Entry A sync-imports X; A async-imports Y; Y sync-imports X.
	// X belongs in the initial chunk with A, not in Y's async chunk.
	g := buildGraph(t, []string{"src/a.js"}, []modSpec{
		{id: "src/a.js", size: 100, sync: []string{"src/x.js"}, async: []string{"src/y.js"}},
		{id: "src/x.js", size: 50},
		{id: "src/y.js", size: 70, sync: []string{"src/x.js"}},
	})

	plan, err := planner.Plan(g, nil, unlimited())
	require.NoError(t, err)
	require.Len(t, plan.Chunks, 2)

	initial := chunkNamed(t, plan, "a")
	assert.Equal(t, domain.ChunkInitial, initial.Kind)
	assert.ElementsMatch(t, []string{"src/a.js", "src/x.js"}, moduleStrings(initial))

	async := chunkNamed(t, plan, "y")
	assert.Equal(t, domain.ChunkAsync, async.Kind)
	assert.Equal(t, []string{"src/y.js"}, moduleStrings(async), "x must not be duplicated into the async chunk")

	assert.Equal(t, []string{async.ID}, plan.Loads[domain.NewInternedString("src/y.js")])
}

func TestPlan_CommonChunkHoisting(t *testing.T) {
	// Two unrelated entries share Z outside any cache group; with
	// MinChunks = 2 it is hoisted into the implicit common chunk.
	g := buildGraph(t, []string{"src/a.js", "src/b.js"}, []modSpec{
		{id: "src/a.js", size: 100, sync: []string{"shared/z.js"}},
		{id: "src/b.js", size: 200, sync: []string{"shared/z.js"}},
		{id: "shared/z.js", size: 5000},
	})

	plan, err := planner.Plan(g, nil, unlimited())
	require.NoError(t, err)

	common := chunkNamed(t, plan, "common")
	assert.Equal(t, []string{"shared/z.js"}, moduleStrings(common))
	assert.ElementsMatch(t,
		[]string{"src/a.js", "src/b.js"},
		[]string{common.Roots[0].String(), common.Roots[1].String()},
	)

	for _, entry := range []string{"src/a.js", "src/b.js"} {
		loads := plan.Loads[domain.NewInternedString(entry)]
		require.Len(t, loads, 2)
		assert.Equal(t, common.ID, loads[0], "shared chunk loads before the entry chunk")
	}
}

func TestPlan_BelowMinChunksStaysDuplicated(t *testing.T) {
	g := buildGraph(t, []string{"src/a.js", "src/b.js"}, []modSpec{
		{id: "src/a.js", size: 100, sync: []string{"shared/z.js"}},
		{id: "src/b.js", size: 200, sync: []string{"shared/z.js"}},
		{id: "shared/z.js", size: 5000},
	})

	plan, err := planner.Plan(g, nil, domain.Thresholds{MinChunks: 3})
	require.NoError(t, err)

	require.Len(t, plan.Chunks, 2)
	for _, c := range plan.Chunks {
		assert.Contains(t, moduleStrings(c), "shared/z.js")
	}
}

func TestPlan_UnsatisfiableConstraints(t *testing.T) {
	g := buildGraph(t, []string{"src/index.js"}, []modSpec{
		{id: "src/index.js", size: 100, sync: []string{"lib/a.js", "lib/b.js"}},
		{id: "lib/a.js", size: 1000},
		{id: "lib/b.js", size: 2000},
	})
	groups := []domain.CacheGroup{
		group("ga", `lib/a`, 2, 0),
		group("gb", `lib/b`, 1, 1),
	}
	// Both candidates clear the enforce threshold, so neither may be merged
	// away, but the entry is only allowed one request.
	limits := domain.Thresholds{MinChunks: 2, EnforceSizeThreshold: 500, MaxInitialRequests: 1}

	_, err := planner.Plan(g, groups, limits)
	require.Error(t, err)
	// zerr metadata attachment copies the sentinel instead of wrapping it,
	// so assert on the message rather than the unwrap chain.
	require.ErrorContains(t, err, domain.ErrUnsatisfiableConstraint.Error())
}

func TestPlan_ScopeRestrictsRoots(t *testing.T) {
	g := buildGraph(t, []string{"src/index.js"}, []modSpec{
		{id: "src/index.js", size: 100, sync: []string{"node_modules/react/index.js"}, async: []string{"src/lazy.js"}},
		{id: "node_modules/react/index.js", size: 4000},
		{id: "src/lazy.js", size: 300, sync: []string{"node_modules/lodash/index.js"}},
		{id: "node_modules/lodash/index.js", size: 6000},
	})
	asyncOnly := domain.CacheGroup{
		Name:     "async-vendors",
		Pattern:  regexp.MustCompile(`node_modules/`),
		Priority: 10,
		Scope:    domain.ScopeAsync,
	}

	plan, err := planner.Plan(g, []domain.CacheGroup{asyncOnly}, unlimited())
	require.NoError(t, err)

	c := chunkNamed(t, plan, "async-vendors")
	assert.Equal(t, domain.ChunkAsync, c.Kind)
	assert.Equal(t, []string{"node_modules/lodash/index.js"}, moduleStrings(c))

	// The initially-reached vendor module stays inline in the entry chunk.
	entry := chunkNamed(t, plan, "index")
	assert.Contains(t, moduleStrings(entry), "node_modules/react/index.js")
}

func TestPlan_ReuseExistingChunkTakesRootIdentity(t *testing.T) {
	// Every module of the async split point is claimed by a reusing group,
	// so the candidate reuses the async chunk's identity instead of adding
	// a second chunk for the same member set.
	g := buildGraph(t, []string{"src/index.js"}, []modSpec{
		{id: "src/index.js", size: 100, async: []string{"node_modules/widget/index.js"}},
		{id: "node_modules/widget/index.js", size: 9000},
	})
	reusing := domain.CacheGroup{
		Name:               "vendors",
		Pattern:            regexp.MustCompile(`node_modules/`),
		Priority:           10,
		Scope:              domain.ScopeAsync,
		ReuseExistingChunk: true,
	}

	plan, err := planner.Plan(g, []domain.CacheGroup{reusing}, unlimited())
	require.NoError(t, err)

	require.Len(t, plan.Chunks, 2)
	reused := chunkNamed(t, plan, "widget")
	assert.Equal(t, domain.ChunkAsync, reused.Kind)
	assert.Equal(t, []string{"node_modules/widget/index.js"}, moduleStrings(reused))

	// The takeover name comes from the package directory, not the generic
	// index file name, so it cannot collide with the entry chunk.
	entry := chunkNamed(t, plan, "index")
	assert.NotEqual(t, entry.Name, reused.Name)
}

func TestPlan_Completeness(t *testing.T) {
	g := buildGraph(t, []string{"src/a.js", "src/b.js"}, []modSpec{
		{id: "src/a.js", size: 10, sync: []string{"src/c.js"}, async: []string{"src/lazy.js"}},
		{id: "src/b.js", size: 20, sync: []string{"src/c.js", "node_modules/x/index.js"}},
		{id: "src/c.js", size: 30},
		{id: "src/lazy.js", size: 40, sync: []string{"node_modules/x/index.js"}},
		{id: "node_modules/x/index.js", size: 50},
	})
	groups := []domain.CacheGroup{group("vendors", `node_modules/`, 10, 0)}

	plan, err := planner.Plan(g, groups, unlimited())
	require.NoError(t, err)
	assert.True(t, plan.Covers(g), "every module must appear in at least one chunk")
}
