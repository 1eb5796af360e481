// Package analysis orchestrates demand-analysis use cases: it validates
// input, classifies areas, persists them and publishes the resulting events.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/couchcryptid/ev-demand-service/internal/domain"
	"github.com/couchcryptid/ev-demand-service/internal/observability"
)

// Operation labels for the analyses metric.
const (
	opAnalyze          = "analyze"
	opBatch            = "batch"
	opRefresh          = "refresh"
	opUpdatePopulation = "update_population"
	opUpdateStations   = "update_stations"
)

// ErrLookupUnavailable is returned by AnalyzeFromSources when no population
// or station source is configured.
var ErrLookupUnavailable = errors.New("population and station lookups are not configured")

// Service implements the demand-analysis use cases. It never hands out
// aggregates; every result is a snapshot.
type Service struct {
	repo       Repository
	publisher  Publisher
	population domain.PopulationLookup
	stations   domain.StationLookup
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Option configures optional collaborators of a Service.
type Option func(*Service)

// WithLookups enables AnalyzeFromSources.
func WithLookups(population domain.PopulationLookup, stations domain.StationLookup) Option {
	return func(s *Service) {
		s.population = population
		s.stations = stations
	}
}

// NewService wires a Service around a repository and an event publisher.
func NewService(repo Repository, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckReadiness returns nil once the repository answers queries. A
// repository with its own readiness check (Redis PING) is asked directly.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if rc, ok := s.repo.(readinessChecker); ok {
		if err := rc.CheckReadiness(ctx); err != nil {
			return fmt.Errorf("repository not ready: %w", err)
		}
		return nil
	}
	if _, err := s.repo.Count(ctx); err != nil {
		return fmt.Errorf("repository not ready: %w", err)
	}
	return nil
}

// AnalyzeArea classifies one area, stores it (replacing any previous
// analysis) and publishes the resulting events.
func (s *Service) AnalyzeArea(ctx context.Context, in AreaInput) (AreaSnapshot, error) {
	snap, err := s.analyze(ctx, in)
	if err != nil {
		s.recordFailure(err)
		return AreaSnapshot{}, err
	}
	s.metrics.Analyses.WithLabelValues(opAnalyze).Inc()
	return snap, nil
}

func (s *Service) analyze(ctx context.Context, in AreaInput) (AreaSnapshot, error) {
	id, err := domain.ParseAreaID(in.AreaID)
	if err != nil {
		return AreaSnapshot{}, err
	}
	d, err := domain.NewDemandAnalysis(id, in.Population, in.StationCount)
	if err != nil {
		return AreaSnapshot{}, fmt.Errorf("area %s: %w", id, err)
	}
	d.CalculateDemandPriority()
	if err := s.commit(ctx, d); err != nil {
		return AreaSnapshot{}, err
	}
	return newAreaSnapshot(d), nil
}

// AnalyzeMultipleAreas analyzes each input in order. Invalid items are
// logged and reported in Skipped; they never abort the batch. A repository
// failure does abort it and is returned together with the results so far.
func (s *Service) AnalyzeMultipleAreas(ctx context.Context, inputs []AreaInput) (BatchResult, error) {
	items := make([]BatchItem, len(inputs))
	for i, in := range inputs {
		items[i] = BatchItem{Input: in}
	}
	return s.AnalyzeBatch(ctx, items)
}

// AnalyzeBatch is AnalyzeMultipleAreas for items that may have failed to
// decode. An item carrying Err is skipped like an invalid area.
func (s *Service) AnalyzeBatch(ctx context.Context, items []BatchItem) (BatchResult, error) {
	result := BatchResult{
		Results: make([]AreaSnapshot, 0, len(items)),
		Skipped: []SkippedArea{},
	}

	for _, item := range items {
		in := item.Input
		err := item.Err
		var snap AreaSnapshot
		if err == nil {
			snap, err = s.analyze(ctx, in)
		}
		if err != nil {
			if item.Err == nil && !domain.IsValidation(err) {
				s.recordFailure(err)
				return result, fmt.Errorf("batch analysis: %w", err)
			}
			s.logger.Error("skipping invalid area in batch",
				"area_id", in.AreaID,
				"population", in.Population,
				"station_count", in.StationCount,
				"error", err,
			)
			s.metrics.BatchSkipped.Inc()
			result.Skipped = append(result.Skipped, SkippedArea{Input: in, Error: err.Error()})
			continue
		}
		result.Results = append(result.Results, snap)
	}

	s.metrics.Analyses.WithLabelValues(opBatch).Add(float64(len(result.Results)))
	s.logger.Info("batch analysis complete",
		"processed", len(result.Results),
		"skipped", result.SkippedCount(),
	)
	return result, nil
}

// AnalyzeFromSources resolves population and stations for an area through
// the configured lookups and analyzes it.
func (s *Service) AnalyzeFromSources(ctx context.Context, areaID string) (AreaSnapshot, error) {
	if s.population == nil || s.stations == nil {
		return AreaSnapshot{}, ErrLookupUnavailable
	}
	id, err := domain.ParseAreaID(areaID)
	if err != nil {
		s.recordFailure(err)
		return AreaSnapshot{}, err
	}

	residents, err := s.population.ResidentsCount(ctx, id)
	if err != nil {
		s.recordFailure(err)
		return AreaSnapshot{}, fmt.Errorf("lookup residents for %s: %w", id, err)
	}
	stations, err := s.stations.FindStationsByArea(ctx, id)
	if err != nil {
		s.recordFailure(err)
		return AreaSnapshot{}, fmt.Errorf("lookup stations for %s: %w", id, err)
	}

	snap, err := s.analyze(ctx, AreaInput{AreaID: id.String(), Population: residents, StationCount: len(stations)})
	if err != nil {
		s.recordFailure(err)
		return AreaSnapshot{}, err
	}
	s.metrics.Analyses.WithLabelValues(opRefresh).Inc()
	return snap, nil
}

// GetAnalysis returns the stored analysis for an area.
func (s *Service) GetAnalysis(ctx context.Context, areaID string) (AreaSnapshot, error) {
	d, err := s.find(ctx, areaID)
	if err != nil {
		return AreaSnapshot{}, err
	}
	return newAreaSnapshot(d), nil
}

// GetHighPriorityAreas returns all HIGH areas, most urgent first. Areas with
// equal urgency are ordered by identifier.
func (s *Service) GetHighPriorityAreas(ctx context.Context) ([]AreaSnapshot, error) {
	areas, err := s.repo.FindByPriorityLevel(ctx, domain.PriorityHigh)
	if err != nil {
		return nil, fmt.Errorf("find high priority areas: %w", err)
	}

	out := make([]AreaSnapshot, 0, len(areas))
	for _, d := range areas {
		out = append(out, newAreaSnapshot(d))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UrgencyScore != out[j].UrgencyScore {
			return out[i].UrgencyScore > out[j].UrgencyScore
		}
		return out[i].AreaID < out[j].AreaID
	})
	return out, nil
}

// GetRecommendations computes how many stations an analyzed area needs to
// reach targetRatio residents per station.
func (s *Service) GetRecommendations(ctx context.Context, areaID string, targetRatio float64) (RecommendationSnapshot, error) {
	d, err := s.find(ctx, areaID)
	if err != nil {
		return RecommendationSnapshot{}, err
	}
	additional, err := d.RecommendedStations(targetRatio)
	if err != nil {
		return RecommendationSnapshot{}, err
	}
	return RecommendationSnapshot{
		AreaID:                d.ID().String(),
		CurrentStations:       int(d.StationCount()),
		RecommendedAdditional: additional,
		RecommendedTotal:      int(d.StationCount()) + additional,
		CurrentRatio:          d.ResidentsPerStation(),
		TargetRatio:           targetRatio,
		Coverage:              string(d.CoverageAssessment()),
	}, nil
}

// UpdatePopulation changes a stored area's population and reclassifies it.
func (s *Service) UpdatePopulation(ctx context.Context, areaID string, population int) (AreaSnapshot, error) {
	return s.update(ctx, areaID, opUpdatePopulation, func(d *domain.DemandAnalysis) error {
		return d.UpdatePopulation(population)
	})
}

// UpdateStationCount changes a stored area's station count and reclassifies it.
func (s *Service) UpdateStationCount(ctx context.Context, areaID string, stations int) (AreaSnapshot, error) {
	return s.update(ctx, areaID, opUpdateStations, func(d *domain.DemandAnalysis) error {
		return d.UpdateStationCount(stations)
	})
}

func (s *Service) update(ctx context.Context, areaID, op string, mutate func(*domain.DemandAnalysis) error) (AreaSnapshot, error) {
	d, err := s.find(ctx, areaID)
	if err != nil {
		s.recordFailure(err)
		return AreaSnapshot{}, err
	}
	if err := mutate(d); err != nil {
		s.recordFailure(err)
		return AreaSnapshot{}, fmt.Errorf("area %s: %w", d.ID(), err)
	}
	if err := s.commit(ctx, d); err != nil {
		s.recordFailure(err)
		return AreaSnapshot{}, err
	}
	s.metrics.Analyses.WithLabelValues(op).Inc()
	return newAreaSnapshot(d), nil
}

// DeleteAnalysis removes a stored analysis.
func (s *Service) DeleteAnalysis(ctx context.Context, areaID string) error {
	id, err := domain.ParseAreaID(areaID)
	if err != nil {
		return err
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if !removed {
		return fmt.Errorf("area %s: %w", id, domain.ErrNotFound)
	}
	s.refreshStoredGauge(ctx)
	return nil
}

// RegionalSummary rolls up every stored area. It fails with
// domain.ErrEmptyRegion when nothing has been analyzed.
func (s *Service) RegionalSummary(ctx context.Context) (RegionalSnapshot, error) {
	areas, err := s.repo.FindAll(ctx)
	if err != nil {
		return RegionalSnapshot{}, fmt.Errorf("find areas: %w", err)
	}
	summary, err := domain.CalculateRegionalDemand(areas)
	if err != nil {
		return RegionalSnapshot{}, err
	}
	return newRegionalSnapshot(summary), nil
}

// PriorityClusters groups stored area identifiers by priority level.
func (s *Service) PriorityClusters(ctx context.Context) (map[string][]string, error) {
	areas, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find areas: %w", err)
	}
	clusters := domain.IdentifyPriorityClusters(areas)
	out := make(map[string][]string, len(clusters))
	for level, ids := range clusters {
		out[string(level)] = domain.AreaIDs(ids)
	}
	return out, nil
}

// CompareAreas contrasts two stored areas by urgency.
func (s *Service) CompareAreas(ctx context.Context, first, second string) (ComparisonSnapshot, error) {
	a, err := s.find(ctx, first)
	if err != nil {
		return ComparisonSnapshot{}, err
	}
	b, err := s.find(ctx, second)
	if err != nil {
		return ComparisonSnapshot{}, err
	}
	return newComparisonSnapshot(domain.CompareAreas(a, b)), nil
}

func (s *Service) find(ctx context.Context, areaID string) (*domain.DemandAnalysis, error) {
	id, err := domain.ParseAreaID(areaID)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("area %s: %w", id, err)
	}
	return d, nil
}

// commit persists d, then publishes and clears its pending events.
func (s *Service) commit(ctx context.Context, d *domain.DemandAnalysis) error {
	if err := s.repo.Save(ctx, d); err != nil {
		return fmt.Errorf("save %s: %w", d.ID(), err)
	}
	s.publisher.PublishAll(ctx, d.DomainEvents())
	d.ClearDomainEvents()
	s.refreshStoredGauge(ctx)
	return nil
}

func (s *Service) refreshStoredGauge(ctx context.Context) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Warn("count stored areas failed", "error", err)
		return
	}
	s.metrics.AreasStored.Set(float64(n))
}

func (s *Service) recordFailure(err error) {
	reason := "internal"
	switch {
	case domain.IsValidation(err):
		reason = "validation"
	case errors.Is(err, domain.ErrNotFound):
		reason = "not_found"
	}
	s.metrics.AnalysisFailures.WithLabelValues(reason).Inc()
}
