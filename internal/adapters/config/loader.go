// Package config provides the configuration loader for carve.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/carve-build/carve/internal/core/domain"
	"github.com/carve-build/carve/internal/core/ports"
)

// DefaultOutputDir is used when the carvefile does not set an output directory.
const DefaultOutputDir = "dist"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the carvefile discovered at or above cwd and returns the
// validated build config.
func (l *Loader) Load(cwd string) (*domain.BuildConfig, error) {
	root, err := l.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(root, domain.CarveFileName)
	var carvefile Carvefile
	if err := readAndUnmarshalYAML(configPath, &carvefile); err != nil {
		return nil, err
	}

	return l.build(root, &carvefile)
}

// DiscoverRoot walks up from cwd to the first directory containing a
// carvefile. cwd is made absolute first; a relative "." has no parent to
// walk to.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve working directory")
	}
	for {
		candidate := filepath.Join(currentDir, domain.CarveFileName)
		if _, err := os.Stat(candidate); err == nil {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func (l *Loader) build(root string, carvefile *Carvefile) (*domain.BuildConfig, error) {
	profiles, err := buildProfiles(carvefile.Profiles)
	if err != nil {
		return nil, err
	}

	groups, err := buildCacheGroups(carvefile.CacheGroups)
	if err != nil {
		return nil, err
	}

	output := carvefile.Output
	if output == "" {
		output = DefaultOutputDir
		l.Logger.Info(fmt.Sprintf("no output directory configured, using %q", output))
	}

	return &domain.BuildConfig{
		Root:        root,
		Output:      output,
		Profiles:    profiles,
		CacheGroups: groups,
		Thresholds:  buildThresholds(carvefile.Thresholds),
	}, nil
}

// buildProfiles maps the profile DTOs to domain profiles. YAML maps have no
// order, so profiles are sorted by name for determinism.
func buildProfiles(dtos map[string]*ProfileDTO) ([]domain.Profile, error) {
	if len(dtos) == 0 {
		return nil, zerr.With(domain.ErrNoEntries, "reason", "no profiles defined")
	}

	names := make([]string, 0, len(dtos))
	for name := range dtos {
		names = append(names, name)
	}
	slices.Sort(names)

	profiles := make([]domain.Profile, 0, len(names))
	for _, name := range names {
		dto := dtos[name]
		if dto == nil || len(dto.Entries) == 0 {
			return nil, zerr.With(domain.ErrNoEntries, "profile", name)
		}

		seen := make(map[string]bool, len(dto.Entries))
		for _, e := range dto.Entries {
			if seen[e] {
				err := zerr.With(domain.ErrDuplicateEntry, "profile", name)
				return nil, zerr.With(err, "entry", e)
			}
			seen[e] = true
		}

		profiles = append(profiles, domain.Profile{
			Name:    name,
			Entries: domain.NewInternedStrings(dto.Entries),
		})
	}

	return profiles, nil
}

// buildCacheGroups validates and compiles the cache group DTOs, preserving
// declaration order as the priority tie-break.
func buildCacheGroups(dtos []*CacheGroupDTO) ([]domain.CacheGroup, error) {
	groups := make([]domain.CacheGroup, 0, len(dtos))
	names := make(map[string]bool, len(dtos))

	for i, dto := range dtos {
		if dto.Name == domain.CommonGroupName {
			return nil, zerr.With(domain.ErrReservedGroupName, "position", i)
		}
		if names[dto.Name] {
			return nil, zerr.With(domain.ErrDuplicateCacheGroup, "name", dto.Name)
		}
		names[dto.Name] = true

		pattern, err := regexp.Compile(dto.Pattern)
		if err != nil {
			wrapped := zerr.Wrap(err, domain.ErrInvalidPattern.Error())
			return nil, zerr.With(wrapped, "name", dto.Name)
		}

		scope, err := domain.ParseChunkScope(dto.Chunks)
		if err != nil {
			return nil, zerr.With(err, "name", dto.Name)
		}

		groups = append(groups, domain.CacheGroup{
			Name:               dto.Name,
			Pattern:            pattern,
			Priority:           dto.Priority,
			Index:              i,
			MinChunks:          dto.MinChunks,
			Scope:              scope,
			ReuseExistingChunk: dto.ReuseExistingChunk,
		})
	}

	return groups, nil
}

// buildThresholds applies defaults for absent fields; explicit zeros disable
// the corresponding limit.
func buildThresholds(dto *ThresholdsDTO) domain.Thresholds {
	t := domain.DefaultThresholds()
	if dto == nil {
		return t
	}

	if dto.MinSize != nil {
		t.MinSize = *dto.MinSize
	}
	if dto.MinRemainingSize != nil {
		t.MinRemainingSize = *dto.MinRemainingSize
	}
	if dto.MinChunks != nil {
		t.MinChunks = *dto.MinChunks
	}
	if dto.MaxAsyncRequests != nil {
		t.MaxAsyncRequests = *dto.MaxAsyncRequests
	}
	if dto.MaxInitialRequests != nil {
		t.MaxInitialRequests = *dto.MaxInitialRequests
	}
	if dto.EnforceSizeThreshold != nil {
		t.EnforceSizeThreshold = *dto.EnforceSizeThreshold
	}
	return t
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
