package domain

import (
	"fmt"
	"math"
)

// DemandAnalysis is the aggregate owning one area's population and station
// state. Its priority is recalculated on every mutation, so it always matches
// the current counts.
type DemandAnalysis struct {
	id         AreaID
	population PopulationCount
	stations   StationCount
	priority   DemandPriority
	events     []Event
}

// NewDemandAnalysis builds an analysis and computes its initial priority.
// Construction emits no events; call CalculateDemandPriority for that.
func NewDemandAnalysis(id AreaID, population, stations int) (*DemandAnalysis, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: area identifier is required", ErrInvalidArea)
	}
	p, err := NewPopulationCount(population)
	if err != nil {
		return nil, err
	}
	s, err := NewStationCount(stations)
	if err != nil {
		return nil, err
	}
	return &DemandAnalysis{
		id:         id,
		population: p,
		stations:   s,
		priority:   CalculatePriority(p, s),
	}, nil
}

func (d *DemandAnalysis) ID() AreaID                  { return d.id }
func (d *DemandAnalysis) Population() PopulationCount { return d.population }
func (d *DemandAnalysis) StationCount() StationCount  { return d.stations }
func (d *DemandAnalysis) Priority() DemandPriority    { return d.priority }

// CalculateDemandPriority recomputes the priority from the current counts,
// stores it and records DemandCalculated, plus HighDemandIdentified when the
// result is HIGH.
func (d *DemandAnalysis) CalculateDemandPriority() DemandPriority {
	d.priority = CalculatePriority(d.population, d.stations)

	d.events = append(d.events, DemandCalculated{
		EventMetadata: newEventMetadata(),
		AreaID:        d.id,
		Population:    int(d.population),
		StationCount:  int(d.stations),
		Priority:      d.priority,
	})
	if d.priority.IsHighPriority() {
		d.events = append(d.events, HighDemandIdentified{
			EventMetadata: newEventMetadata(),
			AreaID:        d.id,
			Population:    int(d.population),
			StationCount:  int(d.stations),
			UrgencyScore:  d.priority.UrgencyScore(),
		})
	}
	return d.priority
}

// UpdatePopulation replaces the population and recalculates priority.
func (d *DemandAnalysis) UpdatePopulation(n int) error {
	p, err := NewPopulationCount(n)
	if err != nil {
		return err
	}
	d.population = p
	d.CalculateDemandPriority()
	return nil
}

// UpdateStationCount replaces the station count and recalculates priority.
func (d *DemandAnalysis) UpdateStationCount(n int) error {
	s, err := NewStationCount(n)
	if err != nil {
		return err
	}
	d.stations = s
	d.CalculateDemandPriority()
	return nil
}

// ResidentsPerStation returns population per station, or the population
// itself when the area has no stations.
func (d *DemandAnalysis) ResidentsPerStation() float64 {
	return residentsPerStation(d.population, d.stations)
}

func (d *DemandAnalysis) IsHighPriority() bool {
	return d.priority.IsHighPriority()
}

// NeedsInfrastructureExpansion reports a ratio above ExpansionThreshold,
// regardless of priority level.
func (d *DemandAnalysis) NeedsInfrastructureExpansion() bool {
	return d.priority.ResidentsPerStation > ExpansionThreshold
}

func (d *DemandAnalysis) CoverageAssessment() Coverage {
	return AssessCoverage(d.ResidentsPerStation())
}

// RecommendedStations returns how many stations must be added to reach
// targetRatio residents per station. It never returns a negative number.
func (d *DemandAnalysis) RecommendedStations(targetRatio float64) (int, error) {
	if !(targetRatio > 0) || math.IsInf(targetRatio, 0) {
		return 0, fmt.Errorf("%w, got %v", ErrInvalidTargetRatio, targetRatio)
	}
	total := math.Floor(float64(d.population) / targetRatio)
	additional := int(total) - int(d.stations)
	if additional < 0 {
		return 0, nil
	}
	return additional, nil
}

// DomainEvents returns the events recorded since the last ClearDomainEvents.
func (d *DemandAnalysis) DomainEvents() []Event {
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

// ClearDomainEvents drops recorded events once they have been published.
func (d *DemandAnalysis) ClearDomainEvents() {
	d.events = nil
}
