package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analysisFor(t *testing.T, code string, population, stations int) *DemandAnalysis {
	t.Helper()
	d, err := NewDemandAnalysis(MustParseAreaID(code), population, stations)
	require.NoError(t, err)
	return d
}

func TestCalculateRegionalDemand(t *testing.T) {
	t.Run("two areas", func(t *testing.T) {
		areas := []*DemandAnalysis{
			analysisFor(t, "10115", 15000, 2),
			analysisFor(t, "10117", 10000, 3),
		}

		summary, err := CalculateRegionalDemand(areas)
		require.NoError(t, err)
		assert.Equal(t, 25000, summary.TotalPopulation)
		assert.Equal(t, 5, summary.TotalStations)
		assert.Equal(t, 5000.0, summary.AverageResidentsPerStation)
		assert.Equal(t, 1, summary.HighPriorityCount)
		assert.Equal(t, 1, summary.MediumPriorityCount)
		assert.Equal(t, 0, summary.LowPriorityCount)
		assert.Empty(t, summary.CriticalAreas)
	})

	t.Run("critical areas need urgency above cutoff", func(t *testing.T) {
		areas := []*DemandAnalysis{
			analysisFor(t, "10115", 60000, 5),  // 12000, urgency 100
			analysisFor(t, "10117", 30000, 5),  // 6000, urgency 75
			analysisFor(t, "12049", 500, 0),    // HIGH by zero stations, urgency 25
			analysisFor(t, "13189", 10000, 10), // LOW
		}

		summary, err := CalculateRegionalDemand(areas)
		require.NoError(t, err)
		assert.Equal(t, []AreaID{MustParseAreaID("10115")}, summary.CriticalAreas)
		assert.Equal(t, 3, summary.HighPriorityCount)
		assert.Equal(t, 1, summary.LowPriorityCount)
	})

	t.Run("no stations anywhere", func(t *testing.T) {
		summary, err := CalculateRegionalDemand([]*DemandAnalysis{analysisFor(t, "10115", 100, 0)})
		require.NoError(t, err)
		assert.True(t, math.IsInf(summary.AverageResidentsPerStation, 1))
	})

	t.Run("empty region", func(t *testing.T) {
		_, err := CalculateRegionalDemand(nil)
		assert.ErrorIs(t, err, ErrEmptyRegion)
		assert.True(t, IsValidation(err))
	})
}

func TestCompareAreas(t *testing.T) {
	t.Run("first more urgent", func(t *testing.T) {
		a := analysisFor(t, "10115", 60000, 5)
		b := analysisFor(t, "10117", 10000, 10)

		cmp := CompareAreas(a, b)
		assert.Equal(t, a.ID(), cmp.MoreUrgent)
		assert.Equal(t, 75.0, cmp.PriorityDifference)
		assert.Equal(t, PriorityHigh, cmp.First.Priority)
		assert.Equal(t, 12000.0, cmp.First.ResidentsPerStation)
		assert.Equal(t, 25.0, cmp.Second.UrgencyScore)
	})

	t.Run("second more urgent", func(t *testing.T) {
		a := analysisFor(t, "10115", 10000, 10)
		b := analysisFor(t, "10117", 30000, 5)

		cmp := CompareAreas(a, b)
		assert.Equal(t, b.ID(), cmp.MoreUrgent)
		assert.Equal(t, 50.0, cmp.PriorityDifference)
	})

	t.Run("self comparison", func(t *testing.T) {
		a := analysisFor(t, "10115", 30000, 5)
		cmp := CompareAreas(a, a)
		assert.Equal(t, 0.0, cmp.PriorityDifference)
		assert.Equal(t, a.ID(), cmp.MoreUrgent)
	})
}

func TestIdentifyPriorityClusters(t *testing.T) {
	t.Run("groups by level", func(t *testing.T) {
		areas := []*DemandAnalysis{
			analysisFor(t, "10115", 30000, 5),
			analysisFor(t, "10117", 10000, 10),
			analysisFor(t, "12049", 40000, 1),
		}

		clusters := IdentifyPriorityClusters(areas)
		assert.Equal(t, []string{"10115", "12049"}, AreaIDs(clusters[PriorityHigh]))
		assert.Empty(t, clusters[PriorityMedium])
		assert.Equal(t, []string{"10117"}, AreaIDs(clusters[PriorityLow]))
	})

	t.Run("keeps all keys", func(t *testing.T) {
		clusters := IdentifyPriorityClusters(nil)
		assert.Len(t, clusters, 3)
		for _, l := range PriorityLevels {
			v, ok := clusters[l]
			assert.True(t, ok)
			assert.NotNil(t, v)
		}
	})
}
