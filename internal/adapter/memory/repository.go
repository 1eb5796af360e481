// Package memory provides an in-process Repository for demand analyses.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/couchcryptid/ev-demand-service/internal/domain"
)

// record is the stored form of an analysis. Aggregates are rebuilt on every
// read so callers never share one instance.
type record struct {
	population int
	stations   int
	level      domain.PriorityLevel
}

// Repository keeps analyses in a map keyed by area. It is safe for
// concurrent use; the last Save for an area wins.
type Repository struct {
	mu    sync.RWMutex
	areas map[domain.AreaID]record
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{areas: make(map[domain.AreaID]record)}
}

func (r *Repository) Save(_ context.Context, d *domain.DemandAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.areas[d.ID()] = record{
		population: int(d.Population()),
		stations:   int(d.StationCount()),
		level:      d.Priority().Level,
	}
	return nil
}

func (r *Repository) FindByID(_ context.Context, id domain.AreaID) (*domain.DemandAnalysis, error) {
	r.mu.RLock()
	rec, ok := r.areas[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return domain.NewDemandAnalysis(id, rec.population, rec.stations)
}

// FindAll returns every analysis ordered by area identifier.
func (r *Repository) FindAll(_ context.Context) ([]*domain.DemandAnalysis, error) {
	return r.collect(func(record) bool { return true })
}

func (r *Repository) Delete(_ context.Context, id domain.AreaID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.areas[id]; !ok {
		return false, nil
	}
	delete(r.areas, id)
	return true, nil
}

func (r *Repository) Exists(_ context.Context, id domain.AreaID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.areas[id]
	return ok, nil
}

func (r *Repository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.areas), nil
}

func (r *Repository) FindByPriorityLevel(_ context.Context, level domain.PriorityLevel) ([]*domain.DemandAnalysis, error) {
	return r.collect(func(rec record) bool { return rec.level == level })
}

func (r *Repository) collect(keep func(record) bool) ([]*domain.DemandAnalysis, error) {
	r.mu.RLock()
	ids := make([]domain.AreaID, 0, len(r.areas))
	recs := make(map[domain.AreaID]record, len(r.areas))
	for id, rec := range r.areas {
		if keep(rec) {
			ids = append(ids, id)
			recs[id] = rec
		}
	}
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	out := make([]*domain.DemandAnalysis, 0, len(ids))
	for _, id := range ids {
		d, err := domain.NewDemandAnalysis(id, recs[id].population, recs[id].stations)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
