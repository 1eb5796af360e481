package analysis

import (
	"encoding/json"
	"math"

	"github.com/couchcryptid/ev-demand-service/internal/domain"
)

// AreaInput is the raw input for analyzing one area.
type AreaInput struct {
	AreaID       string `json:"area_id"`
	Population   int    `json:"population"`
	StationCount int    `json:"station_count"`
}

// AreaSnapshot is the read-only view of one analyzed area.
type AreaSnapshot struct {
	AreaID              string  `json:"area_id"`
	Population          int     `json:"population"`
	StationCount        int     `json:"station_count"`
	Priority            string  `json:"priority"`
	ResidentsPerStation float64 `json:"residents_per_station"`
	UrgencyScore        float64 `json:"urgency_score"`
	IsHighPriority      bool    `json:"is_high_priority"`
	NeedsExpansion      bool    `json:"needs_expansion"`
	Coverage            string  `json:"coverage"`
	Density             string  `json:"density"`
}

func newAreaSnapshot(d *domain.DemandAnalysis) AreaSnapshot {
	p := d.Priority()
	return AreaSnapshot{
		AreaID:              d.ID().String(),
		Population:          int(d.Population()),
		StationCount:        int(d.StationCount()),
		Priority:            string(p.Level),
		ResidentsPerStation: p.ResidentsPerStation,
		UrgencyScore:        p.UrgencyScore(),
		IsHighPriority:      d.IsHighPriority(),
		NeedsExpansion:      d.NeedsInfrastructureExpansion(),
		Coverage:            string(d.CoverageAssessment()),
		Density:             string(domain.DensityCategory(d.Population())),
	}
}

// RegionalSnapshot is the read-only view of a regional summary.
type RegionalSnapshot struct {
	TotalPopulation     int `json:"total_population"`
	TotalStations       int `json:"total_stations"`
	HighPriorityCount   int `json:"high_priority_count"`
	MediumPriorityCount int `json:"medium_priority_count"`
	LowPriorityCount    int `json:"low_priority_count"`
	// AverageResidentsPerStation is +Inf when no area has stations; it is
	// encoded as null in JSON.
	AverageResidentsPerStation float64  `json:"average_residents_per_station"`
	CriticalAreas              []string `json:"critical_areas"`
}

func newRegionalSnapshot(s domain.RegionalSummary) RegionalSnapshot {
	return RegionalSnapshot{
		TotalPopulation:            s.TotalPopulation,
		TotalStations:              s.TotalStations,
		HighPriorityCount:          s.HighPriorityCount,
		MediumPriorityCount:        s.MediumPriorityCount,
		LowPriorityCount:           s.LowPriorityCount,
		AverageResidentsPerStation: s.AverageResidentsPerStation,
		CriticalAreas:              domain.AreaIDs(s.CriticalAreas),
	}
}

// MarshalJSON encodes a non-finite average as null.
func (r RegionalSnapshot) MarshalJSON() ([]byte, error) {
	type plain RegionalSnapshot
	out := struct {
		plain
		AverageResidentsPerStation *float64 `json:"average_residents_per_station"`
	}{plain: plain(r)}
	if avg := r.AverageResidentsPerStation; !math.IsInf(avg, 0) && !math.IsNaN(avg) {
		out.AverageResidentsPerStation = &avg
	}
	return json.Marshal(out)
}

// RecommendationSnapshot describes how many stations an area needs to reach
// a target ratio.
type RecommendationSnapshot struct {
	AreaID                string  `json:"area_id"`
	CurrentStations       int     `json:"current_stations"`
	RecommendedAdditional int     `json:"recommended_additional_stations"`
	RecommendedTotal      int     `json:"recommended_total_stations"`
	CurrentRatio          float64 `json:"current_ratio"`
	TargetRatio           float64 `json:"target_ratio"`
	Coverage              string  `json:"coverage"`
}

// AreaDemandSnapshot is one side of a comparison.
type AreaDemandSnapshot struct {
	AreaID              string  `json:"area_id"`
	Priority            string  `json:"priority"`
	ResidentsPerStation float64 `json:"residents_per_station"`
	UrgencyScore        float64 `json:"urgency_score"`
}

// ComparisonSnapshot contrasts two areas.
type ComparisonSnapshot struct {
	First              AreaDemandSnapshot `json:"area1"`
	Second             AreaDemandSnapshot `json:"area2"`
	MoreUrgent         string             `json:"more_urgent"`
	PriorityDifference float64            `json:"priority_difference"`
}

func newComparisonSnapshot(c domain.AreaComparison) ComparisonSnapshot {
	side := func(a domain.AreaDemand) AreaDemandSnapshot {
		return AreaDemandSnapshot{
			AreaID:              a.AreaID.String(),
			Priority:            string(a.Priority),
			ResidentsPerStation: a.ResidentsPerStation,
			UrgencyScore:        a.UrgencyScore,
		}
	}
	return ComparisonSnapshot{
		First:              side(c.First),
		Second:             side(c.Second),
		MoreUrgent:         c.MoreUrgent.String(),
		PriorityDifference: c.PriorityDifference,
	}
}

// BatchItem is one batch entry as received. Err is set when the entry could
// not be decoded into Input.
type BatchItem struct {
	Input AreaInput
	Err   error
}

// SkippedArea records why one batch item was not analyzed.
type SkippedArea struct {
	Input AreaInput `json:"input"`
	Error string    `json:"error"`
}

// BatchResult holds the areas analyzed by a batch and the ones skipped.
type BatchResult struct {
	Results []AreaSnapshot `json:"results"`
	Skipped []SkippedArea  `json:"skipped"`
}

// SkippedCount is the number of items left out of Results.
func (b BatchResult) SkippedCount() int { return len(b.Skipped) }
