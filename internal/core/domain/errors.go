package domain

import "go.trai.ch/zerr"

var (
	// ErrUnresolvedModule is returned when an import target cannot be resolved.
	ErrUnresolvedModule = zerr.New("unresolved module")

	// ErrModuleAlreadyExists is returned when a module with the same identifier is added twice.
	ErrModuleAlreadyExists = zerr.New("module already exists")

	// ErrModuleNotFound is returned when a module identifier names no file on disk.
	ErrModuleNotFound = zerr.New("module file not found")

	// ErrCyclicImport is reported when a cycle is detected among synchronous edges.
	// It is a warning: the graph is still built and the cycle is broken at runtime
	// by partial-initialization ordering, not at build time.
	ErrCyclicImport = zerr.New("cyclic import")

	// ErrNoEntries is returned when a planning pass is requested without entry modules.
	ErrNoEntries = zerr.New("no entry modules specified")

	// ErrUnsatisfiableConstraint is returned when size and request-count thresholds
	// conflict and no legal merge remains.
	ErrUnsatisfiableConstraint = zerr.New("unsatisfiable constraints")

	// ErrInvalidChunkScope is returned when a cache group declares an unknown chunk scope.
	ErrInvalidChunkScope = zerr.New("invalid chunk scope, expected 'all', 'async' or 'initial'")

	// ErrInvalidPattern is returned when a cache group pattern does not compile.
	ErrInvalidPattern = zerr.New("invalid cache group pattern")

	// ErrDuplicateCacheGroup is returned when two cache groups share a name.
	ErrDuplicateCacheGroup = zerr.New("duplicate cache group")

	// ErrReservedGroupName is returned when a cache group uses the implicit group name.
	ErrReservedGroupName = zerr.New("cache group name 'common' is reserved")

	// ErrProfileNotFound is returned when a requested profile is not defined in the config.
	ErrProfileNotFound = zerr.New("profile not found")

	// ErrDuplicateEntry is returned when a profile lists the same entry twice.
	ErrDuplicateEntry = zerr.New("duplicate entry module")

	// ErrConfigNotFound is returned when no carve.yaml can be found.
	ErrConfigNotFound = zerr.New("could not find carvefile")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrPlanningFailed is returned when a planning run fails.
	ErrPlanningFailed = zerr.New("planning failed")

	// ErrManifestMarshalFailed is returned when the manifest cannot be marshaled.
	ErrManifestMarshalFailed = zerr.New("failed to marshal manifest")

	// ErrManifestWriteFailed is returned when the manifest cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write manifest")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to watch project root")
)
