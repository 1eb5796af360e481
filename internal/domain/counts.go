package domain

import "fmt"

// PopulationCount is a non-negative number of residents.
type PopulationCount int

// NewPopulationCount rejects negative values.
func NewPopulationCount(n int) (PopulationCount, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: population cannot be negative, got %d", ErrInvalidCount, n)
	}
	return PopulationCount(n), nil
}

// StationCount is a non-negative number of charging stations.
type StationCount int

// NewStationCount rejects negative values.
func NewStationCount(n int) (StationCount, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: station count cannot be negative, got %d", ErrInvalidCount, n)
	}
	return StationCount(n), nil
}

// IsZero reports whether the area has no stations at all.
func (s StationCount) IsZero() bool { return s == 0 }

// residentsPerStation is the shared ratio rule: population itself when there
// are no stations.
func residentsPerStation(population PopulationCount, stations StationCount) float64 {
	if stations.IsZero() {
		return float64(population)
	}
	return float64(population) / float64(stations)
}
