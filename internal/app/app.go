// Package app implements the application layer for carve.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"github.com/carve-build/carve/internal/adapters/watcher"
	"github.com/carve-build/carve/internal/core/domain"
	"github.com/carve-build/carve/internal/core/ports"
	"github.com/carve-build/carve/internal/engine/graphbuild"
	"github.com/carve-build/carve/internal/engine/planner"
)

// ResolverFactory creates resolvers bound to a project root.
type ResolverFactory interface {
	ForRoot(root string) ports.Resolver
}

// EmitterFactory creates emitters bound to an output directory.
type EmitterFactory interface {
	ForDir(outputDir string) ports.Emitter
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	resolvers    ResolverFactory
	emitters     EmitterFactory
	watcher      ports.Watcher
	logger       ports.Logger
	tracer       ports.Tracer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	resolvers ResolverFactory,
	emitters EmitterFactory,
	w ports.Watcher,
	log ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader: loader,
		resolvers:    resolvers,
		emitters:     emitters,
		watcher:      w,
		logger:       log,
		tracer:       tracer,
	}
}

// Plan loads the configuration and plans the named profiles concurrently.
// An empty profile list plans every configured profile.
func (a *App) Plan(ctx context.Context, profileNames []string) error {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	return a.planWithConfig(ctx, cfg, profileNames)
}

// planWithConfig plans the selected profiles against an already loaded
// config. Independent profiles run in parallel; each pass gets its own
// thresholds copy while cache groups are shared read-only.
func (a *App) planWithConfig(ctx context.Context, cfg *domain.BuildConfig, profileNames []string) error {
	profiles, err := selectProfiles(cfg, profileNames)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, profile := range profiles {
		g.Go(func() error {
			if err := a.planProfile(ctx, cfg, profile); err != nil {
				wrapped := zerr.Wrap(err, domain.ErrPlanningFailed.Error())
				return zerr.With(wrapped, "profile", profile.Name)
			}
			return nil
		})
	}

	return g.Wait()
}

// planProfile runs one build-plan-emit pass for a single profile.
func (a *App) planProfile(ctx context.Context, cfg *domain.BuildConfig, profile domain.Profile) error {
	ctx, span := a.tracer.Start(ctx, "Planning profile")
	defer span.End()
	span.SetAttribute("carve.profile", profile.Name)

	resolver := a.resolvers.ForRoot(cfg.Root)
	builder := graphbuild.NewBuilder(resolver, a.logger, a.tracer)

	graph, warnings, err := builder.Build(ctx, profile.Entries)
	if err != nil {
		span.RecordError(err)
		return err
	}

	limits := cfg.Thresholds
	plan, err := planner.Plan(graph, cfg.CacheGroups, limits)
	if err != nil {
		span.RecordError(err)
		return err
	}

	emitter := a.emitters.ForDir(filepath.Join(cfg.Root, cfg.Output))
	if err := emitter.Emit(ctx, profile.Name, plan); err != nil {
		span.RecordError(err)
		return err
	}

	a.logger.Info(planSummary(profile.Name, graph, plan, len(warnings)))
	span.SetAttribute("carve.chunks", len(plan.Chunks))
	return nil
}

// Watch runs an initial plan, then re-plans whenever files under the config
// root change. Changes to the carvefile reload the configuration first.
// Re-plan failures are logged and watching continues; only watcher setup
// errors are fatal.
func (a *App) Watch(ctx context.Context, profileNames []string) error {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if err := a.planWithConfig(ctx, cfg, profileNames); err != nil {
		a.logger.Error(err)
	}

	events, err := a.watcher.Watch(ctx, cfg.Root)
	if err != nil {
		return zerr.Wrap(err, domain.ErrWatchFailed.Error())
	}
	a.logger.Info(fmt.Sprintf("watching %s for changes", cfg.Root))

	replans := make(chan []string)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		select {
		case replans <- paths:
		case <-ctx.Done():
		}
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			debouncer.Add(ev.Path)
		case paths := <-replans:
			a.replan(ctx, &cfg, profileNames, paths)
		}
	}
}

// replan re-runs planning after a batch of file changes, reloading the
// config when the carvefile itself changed.
func (a *App) replan(ctx context.Context, cfg **domain.BuildConfig, profileNames, paths []string) {
	a.logger.Info(fmt.Sprintf("%d file(s) changed, re-planning", len(paths)))

	for _, p := range paths {
		if filepath.Base(p) == domain.CarveFileName {
			fresh, err := a.configLoader.Load(".")
			if err != nil {
				a.logger.Error(zerr.Wrap(err, "failed to reload configuration"))
				return
			}
			*cfg = fresh
			break
		}
	}

	if err := a.planWithConfig(ctx, *cfg, profileNames); err != nil {
		a.logger.Error(err)
	}
}

// selectProfiles maps requested profile names to config profiles; an empty
// request selects all of them.
func selectProfiles(cfg *domain.BuildConfig, names []string) ([]domain.Profile, error) {
	if len(names) == 0 {
		return cfg.Profiles, nil
	}

	profiles := make([]domain.Profile, 0, len(names))
	for _, name := range names {
		p, ok := cfg.Profile(name)
		if !ok {
			return nil, zerr.With(domain.ErrProfileNotFound, "profile", name)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// planSummary renders the one-line result logged per profile.
func planSummary(profile string, graph *domain.ModuleGraph, plan *domain.PartitionPlan, warnings int) string {
	initial, async := 0, 0
	for _, c := range plan.Chunks {
		if c.Kind == domain.ChunkInitial {
			initial++
		} else {
			async++
		}
	}

	msg := fmt.Sprintf("profile %s: %d modules into %d chunks (%d initial, %d async)",
		profile, graph.ModuleCount(), len(plan.Chunks), initial, async)
	if warnings > 0 {
		msg += fmt.Sprintf(", %d cycle warning(s)", warnings)
	}
	return msg
}
