package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carve-build/carve/internal/adapters/manifest"
	"github.com/carve-build/carve/internal/core/domain"
)

func testPlan() *domain.PartitionPlan {
	index := domain.Chunk{
		Name:    "index",
		Kind:    domain.ChunkInitial,
		Modules: domain.NewInternedStrings([]string{"src/index.js", "src/util.js"}),
		Size:    150,
		Roots:   domain.NewInternedStrings([]string{"src/index.js"}),
	}
	index.ID = index.FingerprintID()

	vendors := domain.Chunk{
		Name:    "vendors",
		Kind:    domain.ChunkInitial,
		Modules: domain.NewInternedStrings([]string{"node_modules/react/index.js"}),
		Size:    42000,
		Roots:   domain.NewInternedStrings([]string{"src/index.js"}),
	}
	vendors.ID = vendors.FingerprintID()

	lazy := domain.Chunk{
		Name:    "lazy",
		Kind:    domain.ChunkAsync,
		Modules: domain.NewInternedStrings([]string{"src/lazy.js"}),
		Size:    900,
		Roots:   domain.NewInternedStrings([]string{"src/lazy.js"}),
	}
	lazy.ID = lazy.FingerprintID()

	return &domain.PartitionPlan{
		Chunks: []domain.Chunk{index, vendors, lazy},
		Loads: map[domain.InternedString][]string{
			domain.NewInternedString("src/index.js"): {vendors.ID, index.ID},
			domain.NewInternedString("src/lazy.js"):  {lazy.ID},
		},
	}
}

func TestEmitter_WritesManifest(t *testing.T) {
	dir := t.TempDir()
	e := manifest.NewEmitter(dir)

	require.NoError(t, e.Emit(context.Background(), "web", testPlan()))

	data, err := os.ReadFile(filepath.Join(dir, "web.manifest.json"))
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "web_manifest", data)
}

func TestEmitter_ByteStableAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	e := manifest.NewEmitter(dir)

	require.NoError(t, e.Emit(context.Background(), "web", testPlan()))
	first, err := os.ReadFile(filepath.Join(dir, "web.manifest.json"))
	require.NoError(t, err)

	require.NoError(t, e.Emit(context.Background(), "web", testPlan()))
	second, err := os.ReadFile(filepath.Join(dir, "web.manifest.json"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEmitter_CreatesOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dist", "nested")
	e := manifest.NewEmitter(dir)

	require.NoError(t, e.Emit(context.Background(), "web", testPlan()))

	_, err := os.Stat(filepath.Join(dir, "web.manifest.json"))
	assert.NoError(t, err)
}

func TestEmitter_WriteFailure(t *testing.T) {
	// A file standing in for the output directory forces the write to fail.
	blocker := filepath.Join(t.TempDir(), "dist")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o644))

	e := manifest.NewEmitter(blocker)
	err := e.Emit(context.Background(), "web", testPlan())
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrManifestWriteFailed.Error())
}
