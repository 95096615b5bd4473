package domain

// Profile is one named build target: an ordered list of entry modules.
type Profile struct {
	Name    string
	Entries []InternedString
}

// BuildConfig is the fully validated configuration for a planning run.
type BuildConfig struct {
	// Root is the project root directory the config was discovered in.
	Root string
	// Output is the directory manifests are written to, relative to Root.
	Output string
	// Profiles are the build targets in declaration order.
	Profiles []Profile
	// CacheGroups are the splitting rules in declaration order.
	CacheGroups []CacheGroup
	// Thresholds are the global limits applied to every profile.
	Thresholds Thresholds
}

// Profile returns the profile with the given name.
func (c *BuildConfig) Profile(name string) (Profile, bool) {
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// ProfileNames returns all profile names in declaration order.
func (c *BuildConfig) ProfileNames() []string {
	names := make([]string, len(c.Profiles))
	for i, p := range c.Profiles {
		names[i] = p.Name
	}
	return names
}

// CarveFileName is the configuration file discovered at or above the
// working directory.
const CarveFileName = "carve.yaml"
