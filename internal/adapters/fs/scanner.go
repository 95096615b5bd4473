package fs

import (
	"regexp"
	"sort"

	"github.com/carve-build/carve/internal/core/domain"
)

// ImportRef is one import reference found in a source file.
type ImportRef struct {
	Specifier string
	Kind      domain.EdgeKind
}

var (
	// import(...) is scanned before static forms; the static pattern
	// requires whitespace after the keyword so the two cannot overlap.
	dynamicImportRe = regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	staticImportRe  = regexp.MustCompile(`import\s+(?:[\w$*{},\s]+from\s+)?['"]([^'"]+)['"]`)
	exportFromRe    = regexp.MustCompile(`export\s+(?:\*|\{[^}]*\})\s+from\s+['"]([^'"]+)['"]`)
	requireRe       = regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
)

type scannedRef struct {
	offset int
	ref    ImportRef
}

// ScanImports extracts the import references of a JS module in source order:
// static imports, export-from re-exports and require calls as synchronous
// edges, dynamic import() calls as asynchronous edges. Duplicate references
// of the same kind are dropped, keeping the first occurrence.
func ScanImports(src []byte) []ImportRef {
	var found []scannedRef
	found = collect(found, src, dynamicImportRe, domain.EdgeAsync)
	found = collect(found, src, staticImportRe, domain.EdgeSync)
	found = collect(found, src, exportFromRe, domain.EdgeSync)
	found = collect(found, src, requireRe, domain.EdgeSync)

	sort.Slice(found, func(i, j int) bool { return found[i].offset < found[j].offset })

	seen := make(map[ImportRef]bool, len(found))
	refs := make([]ImportRef, 0, len(found))
	for _, f := range found {
		if seen[f.ref] {
			continue
		}
		seen[f.ref] = true
		refs = append(refs, f.ref)
	}
	return refs
}

func collect(found []scannedRef, src []byte, re *regexp.Regexp, kind domain.EdgeKind) []scannedRef {
	for _, m := range re.FindAllSubmatchIndex(src, -1) {
		found = append(found, scannedRef{
			offset: m[0],
			ref:    ImportRef{Specifier: string(src[m[2]:m[3]]), Kind: kind},
		})
	}
	return found
}
