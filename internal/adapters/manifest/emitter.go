// Package manifest writes partition plans as JSON manifest files.
package manifest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/zerr"

	"github.com/carve-build/carve/internal/core/domain"
	"github.com/carve-build/carve/internal/core/ports"
)

var _ ports.Emitter = (*Emitter)(nil)

// Emitter implements ports.Emitter by writing one JSON manifest per profile
// into the output directory.
type Emitter struct {
	outputDir string
}

// NewEmitter creates an Emitter writing into the given directory.
func NewEmitter(outputDir string) *Emitter {
	return &Emitter{outputDir: outputDir}
}

// chunkRecord is the serialized form of one chunk. Module identifiers
// marshal through InternedString's text representation.
type chunkRecord struct {
	ID      string                  `json:"id"`
	Name    string                  `json:"name"`
	Kind    string                  `json:"kind"`
	Size    int64                   `json:"size"`
	Modules []domain.InternedString `json:"modules"`
}

// manifestDoc is the serialized form of a partition plan. Chunks appear in
// plan order; load-site keys are text-marshaled and sorted by encoding/json,
// so output is byte-stable.
type manifestDoc struct {
	Profile string                             `json:"profile"`
	Chunks  []chunkRecord                      `json:"chunks"`
	Loads   map[domain.InternedString][]string `json:"loads"`
}

// Emit writes `<output>/<profile>.manifest.json` for the plan.
func (e *Emitter) Emit(_ context.Context, profile string, plan *domain.PartitionPlan) error {
	doc := manifestDoc{
		Profile: profile,
		Chunks:  make([]chunkRecord, 0, len(plan.Chunks)),
		Loads:   make(map[domain.InternedString][]string, len(plan.Loads)),
	}

	for _, c := range plan.Chunks {
		doc.Chunks = append(doc.Chunks, chunkRecord{
			ID:      c.ID,
			Name:    c.Name,
			Kind:    c.Kind.String(),
			Size:    c.Size,
			Modules: slices.Clone(c.Modules),
		})
	}

	for site, chunkIDs := range plan.Loads {
		doc.Loads[site] = slices.Clone(chunkIDs)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrManifestMarshalFailed.Error())
	}
	data = append(data, '\n')

	if err := os.MkdirAll(e.outputDir, 0o750); err != nil {
		return zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}

	path := filepath.Join(e.outputDir, profile+".manifest.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrManifestWriteFailed.Error()), "path", path)
	}

	return nil
}
