package domain

import (
	"fmt"
	"math"
)

// Priority thresholds in residents per station. A ratio equal to a threshold
// falls into the less urgent bucket.
const (
	HighPriorityThreshold   = 5000.0
	MediumPriorityThreshold = 2000.0
)

// Urgency thresholds in residents per station. A ratio equal to a threshold
// earns the higher score.
const (
	criticalUrgencyRatio = 10000.0
	highUrgencyRatio     = 5000.0
	mediumUrgencyRatio   = 2000.0
)

// PriorityLevel classifies how urgently an area needs charging infrastructure.
type PriorityLevel string

const (
	PriorityHigh   PriorityLevel = "HIGH"
	PriorityMedium PriorityLevel = "MEDIUM"
	PriorityLow    PriorityLevel = "LOW"
)

// PriorityLevels lists every level from most to least urgent.
var PriorityLevels = []PriorityLevel{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether l is one of the enumerated levels.
func (l PriorityLevel) Valid() bool {
	switch l {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// ParsePriorityLevel accepts HIGH, MEDIUM or LOW.
func ParsePriorityLevel(s string) (PriorityLevel, error) {
	l := PriorityLevel(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: unknown priority level %q", ErrInvalidPriority, s)
	}
	return l, nil
}

// DemandPriority pairs a priority level with the ratio it was derived from.
type DemandPriority struct {
	Level               PriorityLevel `json:"level"`
	ResidentsPerStation float64       `json:"residents_per_station"`
}

// NewDemandPriority validates a level/ratio pair. Normal flow obtains
// priorities from CalculatePriority; this exists for decoding stored values.
func NewDemandPriority(level PriorityLevel, ratio float64) (DemandPriority, error) {
	if !level.Valid() {
		return DemandPriority{}, fmt.Errorf("%w: unknown priority level %q", ErrInvalidPriority, level)
	}
	if ratio < 0 || math.IsNaN(ratio) {
		return DemandPriority{}, fmt.Errorf("%w: residents per station cannot be negative, got %v", ErrInvalidPriority, ratio)
	}
	return DemandPriority{Level: level, ResidentsPerStation: ratio}, nil
}

// CalculatePriority classifies an area from its population and station count.
// An area without stations is always HIGH.
func CalculatePriority(population PopulationCount, stations StationCount) DemandPriority {
	ratio := residentsPerStation(population, stations)
	if stations.IsZero() {
		return DemandPriority{Level: PriorityHigh, ResidentsPerStation: ratio}
	}

	level := PriorityLow
	switch {
	case ratio > HighPriorityThreshold:
		level = PriorityHigh
	case ratio > MediumPriorityThreshold:
		level = PriorityMedium
	}
	return DemandPriority{Level: level, ResidentsPerStation: ratio}
}

// UrgencyScore maps the ratio onto a coarse 25/50/75/100 scale used to rank
// areas against each other.
func (p DemandPriority) UrgencyScore() float64 {
	switch r := p.ResidentsPerStation; {
	case r >= criticalUrgencyRatio:
		return 100
	case r >= highUrgencyRatio:
		return 75
	case r >= mediumUrgencyRatio:
		return 50
	default:
		return 25
	}
}

// IsHighPriority reports whether the level is HIGH.
func (p DemandPriority) IsHighPriority() bool {
	return p.Level == PriorityHigh
}

func (p DemandPriority) String() string {
	return fmt.Sprintf("%s (%.0f residents/station)", p.Level, p.ResidentsPerStation)
}
