package domain

import "math"

// criticalUrgencyCutoff is the urgency score a HIGH area must exceed to be
// listed as critical in a regional summary.
const criticalUrgencyCutoff = 80.0

// RegionalSummary rolls many areas up into region-wide totals.
type RegionalSummary struct {
	TotalPopulation     int
	TotalStations       int
	HighPriorityCount   int
	MediumPriorityCount int
	LowPriorityCount    int
	// AverageResidentsPerStation is +Inf when the region has no stations.
	AverageResidentsPerStation float64
	CriticalAreas              []AreaID
}

// CalculateRegionalDemand sums population and stations across areas, counts
// them per priority level and lists HIGH areas whose urgency exceeds 80.
func CalculateRegionalDemand(areas []*DemandAnalysis) (RegionalSummary, error) {
	if len(areas) == 0 {
		return RegionalSummary{}, ErrEmptyRegion
	}

	summary := RegionalSummary{CriticalAreas: []AreaID{}}
	for _, a := range areas {
		summary.TotalPopulation += int(a.population)
		summary.TotalStations += int(a.stations)

		switch a.priority.Level {
		case PriorityHigh:
			summary.HighPriorityCount++
			if a.priority.UrgencyScore() > criticalUrgencyCutoff {
				summary.CriticalAreas = append(summary.CriticalAreas, a.id)
			}
		case PriorityMedium:
			summary.MediumPriorityCount++
		case PriorityLow:
			summary.LowPriorityCount++
		}
	}

	if summary.TotalStations == 0 {
		summary.AverageResidentsPerStation = math.Inf(1)
	} else {
		summary.AverageResidentsPerStation = float64(summary.TotalPopulation) / float64(summary.TotalStations)
	}
	return summary, nil
}

// AreaDemand is one side of an AreaComparison.
type AreaDemand struct {
	AreaID              AreaID
	Priority            PriorityLevel
	ResidentsPerStation float64
	UrgencyScore        float64
}

// AreaComparison contrasts two areas by urgency.
type AreaComparison struct {
	First  AreaDemand
	Second AreaDemand
	// MoreUrgent is First only when its urgency is strictly greater.
	MoreUrgent         AreaID
	PriorityDifference float64
}

// CompareAreas reports which of a and b is more urgent and by how much.
func CompareAreas(a, b *DemandAnalysis) AreaComparison {
	first, second := areaDemand(a), areaDemand(b)
	more := second.AreaID
	if first.UrgencyScore > second.UrgencyScore {
		more = first.AreaID
	}
	return AreaComparison{
		First:              first,
		Second:             second,
		MoreUrgent:         more,
		PriorityDifference: math.Abs(first.UrgencyScore - second.UrgencyScore),
	}
}

func areaDemand(d *DemandAnalysis) AreaDemand {
	return AreaDemand{
		AreaID:              d.id,
		Priority:            d.priority.Level,
		ResidentsPerStation: d.priority.ResidentsPerStation,
		UrgencyScore:        d.priority.UrgencyScore(),
	}
}

// IdentifyPriorityClusters groups area identifiers by priority level. All
// three levels are present in the result, possibly with empty slices.
func IdentifyPriorityClusters(areas []*DemandAnalysis) map[PriorityLevel][]AreaID {
	clusters := make(map[PriorityLevel][]AreaID, len(PriorityLevels))
	for _, l := range PriorityLevels {
		clusters[l] = []AreaID{}
	}
	for _, a := range areas {
		clusters[a.priority.Level] = append(clusters[a.priority.Level], a.id)
	}
	return clusters
}
