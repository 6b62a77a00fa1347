package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/release-planner/internal/models"
)

type PublicationServiceTestSuite struct {
	serviceSuite
	pubs     *PublicationService
	launches *LaunchService
}

func (s *PublicationServiceTestSuite) SetupTest() {
	s.serviceSuite.SetupTest()
	s.pubs = NewPublicationService(s.ws, nil, s.effects)
	s.launches = NewLaunchService(s.ws, nil, s.effects)
}

func (s *PublicationServiceTestSuite) TestCreatePublication_Defaults() {
	pub, err := s.pubs.CreatePublication(s.ctx, PublicationInput{
		Title:    "Cover reveal",
		Date:     "2026-11-10",
		Time:     "18:30",
		Platform: "Instagram",
		Hashtags: []string{"#coverreveal", "coverreveal", " comingsoon "},
	})

	s.Require().NoError(err)
	s.Equal(models.PublicationStatusPlanned, pub.Status)
	s.Equal([]string{"coverreveal", "comingsoon"}, []string(pub.Hashtags))
}

func (s *PublicationServiceTestSuite) TestCreatePublication_Validation() {
	cases := []PublicationInput{
		{Title: ""},
		{Title: "Post", Time: "25:00"},
		{Title: "Post", Date: "tomorrow"},
		{Title: "Post", Phase: "encore"},
		{Title: "Post", Status: "archived"},
	}
	for _, in := range cases {
		_, err := s.pubs.CreatePublication(s.ctx, in)
		s.ErrorIs(err, ErrInvalidInput, "%+v", in)
	}

	_, err := s.pubs.CreatePublication(s.ctx, PublicationInput{Title: "Post", LaunchID: "missing"})
	s.ErrorIs(err, ErrLaunchNotFound)
}

func (s *PublicationServiceTestSuite) TestListPublications_Filters() {
	for _, in := range []PublicationInput{
		{Title: "A", Date: "2026-11-01", Platform: "Instagram", Phase: models.PhasePreRelease},
		{Title: "B", Date: "2026-11-15", Platform: "TikTok", Phase: models.PhasePreRelease},
		{Title: "C", Date: "2026-12-01", Platform: "instagram", Phase: models.PhaseRelease},
	} {
		_, err := s.pubs.CreatePublication(s.ctx, in)
		s.Require().NoError(err)
	}

	s.Len(s.pubs.ListPublications(ListPublicationsInput{}), 3)
	s.Len(s.pubs.ListPublications(ListPublicationsInput{Platform: "Instagram"}), 2)
	s.Len(s.pubs.ListPublications(ListPublicationsInput{Phase: models.PhasePreRelease}), 2)
	s.Len(s.pubs.ListPublications(ListPublicationsInput{From: "2026-11-01", To: "2026-11-15"}), 2)
	s.Len(s.pubs.ListPublications(ListPublicationsInput{From: "2026-11-02"}), 2)
}

func (s *PublicationServiceTestSuite) TestPlanContent() {
	launch, err := s.launches.CreateLaunch(s.ctx, LaunchInput{
		SongName:     "Neon Rain",
		LaunchDate:   "2026-12-01",
		Participants: []string{"ana"},
	})
	s.Require().NoError(err)

	planned, err := s.pubs.PlanContent(s.ctx, launch.ID, models.PhaseRelease)
	s.Require().NoError(err)
	s.Require().Len(planned, 2)
	for _, p := range planned {
		s.Equal(models.Date("2026-12-01"), p.Date)
		s.Equal(launch.ID, p.LaunchID)
		s.Equal(models.PublicationStatusPlanned, p.Status)
		s.Equal([]string{"ana"}, []string(p.Responsible))
	}
	s.Equal("Out now", planned[0].Title)

	again, err := s.pubs.PlanContent(s.ctx, launch.ID, models.PhaseRelease)
	s.Require().NoError(err)
	s.Empty(again)
	s.Len(s.pubs.ListPublications(ListPublicationsInput{LaunchID: launch.ID}), 2)
}

func (s *PublicationServiceTestSuite) TestUpdateKeepsOrphanedLaunch() {
	launch, err := s.launches.CreateLaunch(s.ctx, LaunchInput{SongName: "Neon Rain", LaunchDate: "2026-12-01"})
	s.Require().NoError(err)
	pub, err := s.pubs.CreatePublication(s.ctx, PublicationInput{Title: "Teaser", LaunchID: launch.ID})
	s.Require().NoError(err)
	s.Require().NoError(s.launches.DeleteLaunch(s.ctx, launch.ID))

	updated, err := s.pubs.UpdatePublication(s.ctx, pub.ID, UpdatePublicationInput{Status: ptr(models.PublicationStatusPublished)})

	s.Require().NoError(err)
	s.Equal(launch.ID, updated.LaunchID)
	s.Equal(models.PublicationStatusPublished, updated.Status)

	_, err = s.pubs.UpdatePublication(s.ctx, pub.ID, UpdatePublicationInput{LaunchID: ptr("other")})
	s.ErrorIs(err, ErrLaunchNotFound)
}

func (s *PublicationServiceTestSuite) TestDeletePublication() {
	pub, err := s.pubs.CreatePublication(s.ctx, PublicationInput{Title: "Teaser"})
	s.Require().NoError(err)

	s.Require().NoError(s.pubs.DeletePublication(s.ctx, pub.ID))
	_, err = s.pubs.GetPublication(pub.ID)
	s.ErrorIs(err, ErrPublicationNotFound)
}

func TestPublicationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PublicationServiceTestSuite))
}
