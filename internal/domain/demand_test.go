package domain

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArea = "10115"

func newAnalysis(t *testing.T, population, stations int) *DemandAnalysis {
	t.Helper()
	d, err := NewDemandAnalysis(MustParseAreaID(testArea), population, stations)
	require.NoError(t, err)
	return d
}

func TestNewDemandAnalysis(t *testing.T) {
	t.Run("computes priority without events", func(t *testing.T) {
		d := newAnalysis(t, 30000, 5)

		assert.Equal(t, testArea, d.ID().String())
		assert.Equal(t, PopulationCount(30000), d.Population())
		assert.Equal(t, StationCount(5), d.StationCount())
		assert.Equal(t, PriorityHigh, d.Priority().Level)
		assert.Empty(t, d.DomainEvents())
	})

	t.Run("rejects negative counts", func(t *testing.T) {
		_, err := NewDemandAnalysis(MustParseAreaID(testArea), -1, 5)
		assert.ErrorIs(t, err, ErrInvalidCount)

		_, err = NewDemandAnalysis(MustParseAreaID(testArea), 10, -5)
		assert.ErrorIs(t, err, ErrInvalidCount)
	})

	t.Run("rejects zero identifier", func(t *testing.T) {
		_, err := NewDemandAnalysis(AreaID{}, 10, 1)
		assert.ErrorIs(t, err, ErrInvalidArea)
	})
}

func TestDemandAnalysis_Scenarios(t *testing.T) {
	t.Run("high demand area", func(t *testing.T) {
		d := newAnalysis(t, 30000, 5)
		assert.Equal(t, 6000.0, d.ResidentsPerStation())
		assert.Equal(t, PriorityHigh, d.Priority().Level)
		assert.Equal(t, 75.0, d.Priority().UrgencyScore())
		assert.True(t, d.NeedsInfrastructureExpansion())
		assert.Equal(t, CoveragePoor, d.CoverageAssessment())
	})

	t.Run("empty area", func(t *testing.T) {
		d := newAnalysis(t, 0, 0)
		assert.Equal(t, 0.0, d.ResidentsPerStation())
		assert.Equal(t, PriorityHigh, d.Priority().Level)
		assert.Equal(t, 25.0, d.Priority().UrgencyScore())
		assert.False(t, d.NeedsInfrastructureExpansion())
	})

	t.Run("well served area", func(t *testing.T) {
		d := newAnalysis(t, 10000, 10)
		assert.Equal(t, 1000.0, d.ResidentsPerStation())
		assert.Equal(t, PriorityLow, d.Priority().Level)
		assert.Equal(t, CoverageGood, d.CoverageAssessment())
		assert.False(t, d.NeedsInfrastructureExpansion())
	})

	t.Run("medium priority still needs expansion", func(t *testing.T) {
		d := newAnalysis(t, 16000, 4)
		assert.Equal(t, PriorityMedium, d.Priority().Level)
		assert.True(t, d.NeedsInfrastructureExpansion())
		assert.False(t, d.IsHighPriority())
	})
}

func TestDemandAnalysis_CalculateDemandPriority(t *testing.T) {
	fixed := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	t.Run("high priority emits both events", func(t *testing.T) {
		d := newAnalysis(t, 30000, 5)
		p := d.CalculateDemandPriority()
		assert.Equal(t, PriorityHigh, p.Level)

		events := d.DomainEvents()
		require.Len(t, events, 2)

		calc, ok := events[0].(DemandCalculated)
		require.True(t, ok)
		assert.Equal(t, EventDemandCalculated, calc.Name())
		assert.Equal(t, testArea, calc.Area().String())
		assert.Equal(t, 30000, calc.Population)
		assert.Equal(t, 5, calc.StationCount)
		assert.Equal(t, p, calc.Priority)
		assert.Equal(t, fixed, calc.Metadata().OccurredAt)
		assert.NotEmpty(t, calc.Metadata().ID)

		high, ok := events[1].(HighDemandIdentified)
		require.True(t, ok)
		assert.Equal(t, EventHighDemandIdentified, high.Name())
		assert.Equal(t, 75.0, high.UrgencyScore)
		assert.NotEqual(t, calc.ID, high.ID)
	})

	t.Run("low priority emits one event", func(t *testing.T) {
		d := newAnalysis(t, 10000, 10)
		d.CalculateDemandPriority()

		events := d.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventDemandCalculated, events[0].Name())
	})

	t.Run("idempotent without state change", func(t *testing.T) {
		d := newAnalysis(t, 15000, 4)
		first := d.CalculateDemandPriority()
		second := d.CalculateDemandPriority()
		assert.Equal(t, first, second)
		assert.Len(t, d.DomainEvents(), 2)
	})
}

func TestDemandAnalysis_Updates(t *testing.T) {
	t.Run("population update recalculates", func(t *testing.T) {
		d := newAnalysis(t, 10000, 10)
		require.NoError(t, d.UpdatePopulation(60000))

		assert.Equal(t, PopulationCount(60000), d.Population())
		assert.Equal(t, 6000.0, d.ResidentsPerStation())
		assert.Equal(t, d.ResidentsPerStation(), d.Priority().ResidentsPerStation)
		assert.Equal(t, PriorityHigh, d.Priority().Level)
		assert.Len(t, d.DomainEvents(), 2)
	})

	t.Run("station update recalculates", func(t *testing.T) {
		d := newAnalysis(t, 30000, 5)
		require.NoError(t, d.UpdateStationCount(20))

		assert.Equal(t, 1500.0, d.ResidentsPerStation())
		assert.Equal(t, d.ResidentsPerStation(), d.Priority().ResidentsPerStation)
		assert.Equal(t, PriorityLow, d.Priority().Level)
		assert.Len(t, d.DomainEvents(), 1)
	})

	t.Run("station update to zero", func(t *testing.T) {
		d := newAnalysis(t, 1200, 2)
		require.NoError(t, d.UpdateStationCount(0))
		assert.Equal(t, 1200.0, d.ResidentsPerStation())
		assert.Equal(t, PriorityHigh, d.Priority().Level)
	})

	t.Run("negative values leave state untouched", func(t *testing.T) {
		d := newAnalysis(t, 30000, 5)
		before := d.Priority()

		assert.ErrorIs(t, d.UpdatePopulation(-1), ErrInvalidCount)
		assert.ErrorIs(t, d.UpdateStationCount(-1), ErrInvalidCount)
		assert.Equal(t, PopulationCount(30000), d.Population())
		assert.Equal(t, before, d.Priority())
		assert.Empty(t, d.DomainEvents())
	})
}

func TestDemandAnalysis_RecommendedStations(t *testing.T) {
	t.Run("shortfall", func(t *testing.T) {
		d := newAnalysis(t, 20000, 5)
		n, err := d.RecommendedStations(DefaultTargetRatio)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})

	t.Run("floors partial stations", func(t *testing.T) {
		d := newAnalysis(t, 21999, 0)
		n, err := d.RecommendedStations(2000)
		require.NoError(t, err)
		assert.Equal(t, 10, n)
	})

	t.Run("already sufficient", func(t *testing.T) {
		d := newAnalysis(t, 10000, 10)
		n, err := d.RecommendedStations(2000)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("non-positive or non-finite target", func(t *testing.T) {
		d := newAnalysis(t, 10000, 10)
		for _, target := range []float64{0, -100, math.Inf(1), math.Inf(-1), math.NaN()} {
			_, err := d.RecommendedStations(target)
			assert.ErrorIs(t, err, ErrInvalidTargetRatio)
			assert.True(t, IsValidation(err))
		}
	})
}

func TestDemandAnalysis_ClearDomainEvents(t *testing.T) {
	d := newAnalysis(t, 30000, 5)
	d.CalculateDemandPriority()

	events := d.DomainEvents()
	require.Len(t, events, 2)

	d.ClearDomainEvents()
	assert.Empty(t, d.DomainEvents())
	assert.Len(t, events, 2, "previously returned slice is unaffected")
}
