package config

// Carvefile represents the structure of the carve.yaml configuration file.
type Carvefile struct {
	Version     string                 `yaml:"version"`
	Output      string                 `yaml:"output"`
	Profiles    map[string]*ProfileDTO `yaml:"profiles"`
	CacheGroups []*CacheGroupDTO       `yaml:"cacheGroups"`
	Thresholds  *ThresholdsDTO         `yaml:"thresholds"`
}

// ProfileDTO represents one build target in the configuration.
type ProfileDTO struct {
	Entries []string `yaml:"entries"`
}

// CacheGroupDTO represents a chunk splitting rule in the configuration.
// Declaration order is significant: it is the documented priority tie-break.
type CacheGroupDTO struct {
	Name               string `yaml:"name"`
	Pattern            string `yaml:"pattern"`
	Priority           int    `yaml:"priority"`
	MinChunks          int    `yaml:"minChunks"`
	Chunks             string `yaml:"chunks"`
	ReuseExistingChunk bool   `yaml:"reuseExistingChunk"`
}

// ThresholdsDTO represents the global size and request limits. Pointer
// fields distinguish "absent, use the default" from an explicit zero.
type ThresholdsDTO struct {
	MinSize              *int64 `yaml:"minSize"`
	MinRemainingSize     *int64 `yaml:"minRemainingSize"`
	MinChunks            *int   `yaml:"minChunks"`
	MaxAsyncRequests     *int   `yaml:"maxAsyncRequests"`
	MaxInitialRequests   *int   `yaml:"maxInitialRequests"`
	EnforceSizeThreshold *int64 `yaml:"enforceSizeThreshold"`
}
