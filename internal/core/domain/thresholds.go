package domain

// Thresholds holds the global limits a partition plan must satisfy.
// It is passed explicitly into every planning call as an immutable value;
// concurrent passes each receive their own copy.
type Thresholds struct {
	// MinSize is the minimum byte size a split-out chunk must reach, or it
	// is merged back into its consumers.
	MinSize int64
	// MinRemainingSize is the minimum byte size a consuming chunk must keep
	// after a split, or the split is cancelled.
	MinRemainingSize int64
	// EnforceSizeThreshold forces a split regardless of MinSize,
	// MinRemainingSize and request-count limits once a candidate reaches it.
	EnforceSizeThreshold int64
	// MinChunks is the sharing count required before an unmatched module is
	// hoisted into the implicit common chunk.
	MinChunks int
	// MaxAsyncRequests caps the chunks an async split point loads on demand.
	MaxAsyncRequests int
	// MaxInitialRequests caps the chunks an entry point loads eagerly.
	MaxInitialRequests int
}

// DefaultThresholds mirror the reference bundler's production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSize:              20000,
		MinRemainingSize:     0,
		EnforceSizeThreshold: 50000,
		MinChunks:            2,
		MaxAsyncRequests:     30,
		MaxInitialRequests:   30,
	}
}
