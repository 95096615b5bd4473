// Package fs resolves module identifiers against the project tree and
// extracts import references from source files.
package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"github.com/carve-build/carve/internal/core/domain"
	"github.com/carve-build/carve/internal/core/ports"
)

// Extensions are probed, in order, when a specifier names no existing file.
var Extensions = []string{"js", "jsx", "ts", "tsx", "mjs", "cjs"}

var _ ports.Resolver = (*Resolver)(nil)

// Resolver implements ports.Resolver with node-style resolution rooted at
// the project directory. Module identifiers are root-relative paths.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver for the given project root.
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Resolve reads the module's source, extracts its import references and
// resolves each one to a root-relative module identifier.
func (r *Resolver) Resolve(id domain.InternedString) (ports.ModuleInfo, error) {
	path := filepath.Join(r.root, id.String())

	info, err := os.Stat(path)
	if err != nil {
		return ports.ModuleInfo{}, zerr.With(zerr.Wrap(err, domain.ErrModuleNotFound.Error()), "path", path)
	}

	// #nosec G304 -- path is derived from the project root
	src, err := os.ReadFile(path)
	if err != nil {
		return ports.ModuleInfo{}, zerr.With(zerr.Wrap(err, "failed to read module"), "path", path)
	}

	refs := ScanImports(src)
	deps := make([]domain.Dep, 0, len(refs))
	for _, ref := range refs {
		target, err := r.resolveSpecifier(id.String(), ref.Specifier)
		if err != nil {
			return ports.ModuleInfo{}, zerr.With(err, "imported_from", id.String())
		}
		deps = append(deps, domain.Dep{ID: domain.NewInternedString(target), Kind: ref.Kind})
	}

	return ports.ModuleInfo{Size: info.Size(), Deps: deps}, nil
}

// resolveSpecifier maps an import specifier to a root-relative module
// identifier. Relative specifiers resolve against the importer's directory,
// bare specifiers against node_modules; both probe extensions and package
// directories.
func (r *Resolver) resolveSpecifier(importer, specifier string) (string, error) {
	var candidate string
	switch {
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		candidate = filepath.Join(filepath.Dir(importer), specifier)
	case strings.HasPrefix(specifier, "/"):
		candidate = strings.TrimPrefix(specifier, "/")
	default:
		candidate = filepath.Join("node_modules", specifier)
	}

	resolved, err := r.probe(candidate)
	if err != nil {
		return "", zerr.With(err, "specifier", specifier)
	}
	return filepath.ToSlash(resolved), nil
}

// probe locates the file a root-relative candidate path refers to: the path
// itself, the path with a probed extension, or the package entry for a
// directory.
func (r *Resolver) probe(candidate string) (string, error) {
	abs := filepath.Join(r.root, candidate)

	st, err := os.Stat(abs)
	if err != nil {
		for _, ext := range Extensions {
			if st, err = os.Stat(abs + "." + ext); err == nil {
				return candidate + "." + ext, nil
			}
		}
		return "", zerr.With(zerr.New("could not resolve"), "candidate", candidate)
	}

	if st.IsDir() {
		main, err := r.packageMain(abs)
		if err != nil {
			return "", err
		}
		return filepath.Join(candidate, main), nil
	}

	return candidate, nil
}

// packageMain returns the entry file of a package directory: the "main"
// field of its package.json, or index.js.
func (r *Resolver) packageMain(dir string) (string, error) {
	manifestPath := filepath.Join(dir, "package.json")

	// #nosec G304 -- path is derived from the project root
	data, err := os.ReadFile(manifestPath)
	if os.IsNotExist(err) {
		return "index.js", nil
	}
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to read package manifest"), "path", manifestPath)
	}

	m := struct {
		Main string `json:"main"`
	}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to parse package manifest"), "path", manifestPath)
	}

	if m.Main == "" {
		return "index.js", nil
	}
	return m.Main, nil
}
