package ports

import (
	"context"

	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
)

// Port: boundary for the optimization run audit trail. Runs are created
// once, finalized once, and never mutated afterward.
type RunRepository interface {
	CreateRun(ctx context.Context, run *domain.OptimizationRun) error
	// FinalizeRun writes the terminal status, counts and proposal
	// snapshot. Implementations must reject a second finalize with
	// domain.ErrRunFinalized.
	FinalizeRun(ctx context.Context, run *domain.OptimizationRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*domain.OptimizationRun, error)
	ListRuns(ctx context.Context, limit int) ([]*domain.OptimizationRun, error)
}
