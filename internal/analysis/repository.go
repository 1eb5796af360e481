package analysis

import (
	"context"

	"github.com/couchcryptid/ev-demand-service/internal/domain"
)

// Repository stores at most one DemandAnalysis per area. Save replaces any
// existing analysis for the same area; the last write wins.
type Repository interface {
	Save(ctx context.Context, d *domain.DemandAnalysis) error
	// FindByID returns domain.ErrNotFound when no analysis is stored.
	FindByID(ctx context.Context, id domain.AreaID) (*domain.DemandAnalysis, error)
	FindAll(ctx context.Context) ([]*domain.DemandAnalysis, error)
	// Delete reports whether an analysis was removed.
	Delete(ctx context.Context, id domain.AreaID) (bool, error)
	Exists(ctx context.Context, id domain.AreaID) (bool, error)
	Count(ctx context.Context) (int, error)
	FindByPriorityLevel(ctx context.Context, level domain.PriorityLevel) ([]*domain.DemandAnalysis, error)
}

type readinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Publisher delivers drained domain events to subscribers.
type Publisher interface {
	PublishAll(ctx context.Context, events []domain.Event)
}
