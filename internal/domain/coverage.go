package domain

// ExpansionThreshold is the ratio above which an area needs more stations,
// independent of its priority level.
const ExpansionThreshold = 3000.0

// DefaultTargetRatio is the residents-per-station target used for recommendations.
const DefaultTargetRatio = 2000.0

// Coverage describes infrastructure adequacy for presentation.
type Coverage string

const (
	CoverageCritical Coverage = "CRITICAL"
	CoveragePoor     Coverage = "POOR"
	CoverageAdequate Coverage = "ADEQUATE"
	CoverageGood     Coverage = "GOOD"
)

// AssessCoverage buckets a residents-per-station ratio.
func AssessCoverage(ratio float64) Coverage {
	switch {
	case ratio > 10000:
		return CoverageCritical
	case ratio > 5000:
		return CoveragePoor
	case ratio > 2000:
		return CoverageAdequate
	default:
		return CoverageGood
	}
}

// Density categorizes an area by head count.
type Density string

const (
	DensityHigh   Density = "HIGH"
	DensityMedium Density = "MEDIUM"
	DensityLow    Density = "LOW"
)

// DensityCategory returns HIGH above 20000 residents, MEDIUM above 10000.
func DensityCategory(population PopulationCount) Density {
	switch {
	case population > 20000:
		return DensityHigh
	case population > 10000:
		return DensityMedium
	default:
		return DensityLow
	}
}
