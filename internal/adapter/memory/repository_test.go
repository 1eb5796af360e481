package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/couchcryptid/ev-demand-service/internal/domain"
)

type RepositorySuite struct {
	suite.Suite
	repo *Repository
	ctx  context.Context
}

func (s *RepositorySuite) SetupTest() {
	s.repo = NewRepository()
	s.ctx = context.Background()
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) newAnalysis(code string, population, stations int) *domain.DemandAnalysis {
	d, err := domain.NewDemandAnalysis(domain.MustParseAreaID(code), population, stations)
	s.Require().NoError(err)
	return d
}

// TestSaveAndFind verifies the round trip and upsert semantics.
func (s *RepositorySuite) TestSaveAndFind() {
	s.Run("round trip", func() {
		d := s.newAnalysis("10115", 30000, 5)
		s.Require().NoError(s.repo.Save(s.ctx, d))

		found, err := s.repo.FindByID(s.ctx, d.ID())
		s.Require().NoError(err)
		s.Equal(d.ID(), found.ID())
		s.Equal(d.Population(), found.Population())
		s.Equal(d.StationCount(), found.StationCount())
		s.Equal(d.Priority(), found.Priority())
	})

	s.Run("save twice keeps one entry", func() {
		before, err := s.repo.Count(s.ctx)
		s.Require().NoError(err)

		s.Require().NoError(s.repo.Save(s.ctx, s.newAnalysis("10115", 1000, 5)))
		after, err := s.repo.Count(s.ctx)
		s.Require().NoError(err)
		s.Equal(before, after)

		found, err := s.repo.FindByID(s.ctx, domain.MustParseAreaID("10115"))
		s.Require().NoError(err)
		s.Equal(domain.PopulationCount(1000), found.Population())
	})

	s.Run("unknown area", func() {
		_, err := s.repo.FindByID(s.ctx, domain.MustParseAreaID("14199"))
		s.Require().ErrorIs(err, domain.ErrNotFound)
	})
}

// TestDeleteAndExists verifies removal reporting.
func (s *RepositorySuite) TestDeleteAndExists() {
	d := s.newAnalysis("12049", 8000, 2)
	s.Require().NoError(s.repo.Save(s.ctx, d))

	ok, err := s.repo.Exists(s.ctx, d.ID())
	s.Require().NoError(err)
	s.True(ok)

	removed, err := s.repo.Delete(s.ctx, d.ID())
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.repo.Delete(s.ctx, d.ID())
	s.Require().NoError(err)
	s.False(removed)

	ok, err = s.repo.Exists(s.ctx, d.ID())
	s.Require().NoError(err)
	s.False(ok)
}

// TestQueries verifies ordering and priority filtering.
func (s *RepositorySuite) TestQueries() {
	s.Require().NoError(s.repo.Save(s.ctx, s.newAnalysis("13189", 30000, 5))) // HIGH
	s.Require().NoError(s.repo.Save(s.ctx, s.newAnalysis("10115", 10000, 10))) // LOW
	s.Require().NoError(s.repo.Save(s.ctx, s.newAnalysis("12049", 500, 0)))    // HIGH

	all, err := s.repo.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("10115", all[0].ID().String())
	s.Equal("13189", all[2].ID().String())

	high, err := s.repo.FindByPriorityLevel(s.ctx, domain.PriorityHigh)
	s.Require().NoError(err)
	s.Require().Len(high, 2)
	s.Equal("12049", high[0].ID().String())

	medium, err := s.repo.FindByPriorityLevel(s.ctx, domain.PriorityMedium)
	s.Require().NoError(err)
	s.Empty(medium)

	n, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, n)
}

// TestFindReturnsIndependentCopies verifies that mutating a loaded aggregate
// does not change stored state until it is saved again.
func (s *RepositorySuite) TestFindReturnsIndependentCopies() {
	d := s.newAnalysis("10115", 30000, 5)
	s.Require().NoError(s.repo.Save(s.ctx, d))

	loaded, err := s.repo.FindByID(s.ctx, d.ID())
	s.Require().NoError(err)
	s.Require().NoError(loaded.UpdateStationCount(50))

	again, err := s.repo.FindByID(s.ctx, d.ID())
	s.Require().NoError(err)
	s.Equal(domain.StationCount(5), again.StationCount())
	s.Empty(again.DomainEvents())
}
