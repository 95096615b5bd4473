package ports

import (
	"context"

	"github.com/carve-build/carve/internal/core/domain"
)

// Emitter serializes a partition plan into output artifacts.
// Persistence of the plan is entirely the emitter's concern; the planner
// never touches the filesystem.
//
//go:generate mockgen -source=emitter.go -destination=mocks/mock_emitter.go -package=mocks
type Emitter interface {
	// Emit writes the plan for the named profile.
	Emit(ctx context.Context, profile string, plan *domain.PartitionPlan) error
}
