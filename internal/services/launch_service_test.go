package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/notify"
)

type LaunchServiceTestSuite struct {
	serviceSuite
	launches *LaunchService
}

func (s *LaunchServiceTestSuite) SetupTest() {
	s.serviceSuite.SetupTest()
	s.launches = NewLaunchService(s.ws, nil, s.effects)
}

func (s *LaunchServiceTestSuite) createLaunch(date models.Date) *models.Launch {
	launch, err := s.launches.CreateLaunch(s.ctx, LaunchInput{SongName: "Neon Rain", Artist: "Lumen", LaunchDate: date})
	s.Require().NoError(err)
	return launch
}

func (s *LaunchServiceTestSuite) TestCreateLaunch_Validation() {
	_, err := s.launches.CreateLaunch(s.ctx, LaunchInput{SongName: "", LaunchDate: "2026-12-01"})
	s.ErrorIs(err, ErrInvalidInput)

	_, err = s.launches.CreateLaunch(s.ctx, LaunchInput{SongName: "Song", LaunchDate: "01/12/2026"})
	s.ErrorIs(err, ErrInvalidInput)

	s.Empty(s.launches.ListLaunches())
}

func (s *LaunchServiceTestSuite) TestUpdateLaunch() {
	launch := s.createLaunch("2026-12-01")

	updated, err := s.launches.UpdateLaunch(s.ctx, launch.ID, UpdateLaunchInput{
		Artist:       ptr("Lumen & Co"),
		Participants: ptr([]string{"ana", "ana", " "}),
	})

	s.Require().NoError(err)
	s.Equal("Lumen & Co", updated.Artist)
	s.Equal([]string{"ana"}, []string(updated.Participants))
	s.Equal("Neon Rain", updated.SongName)
}

func (s *LaunchServiceTestSuite) TestApplyTemplates_SchedulesAndIsIdempotent() {
	launch := s.createLaunch("2026-12-01")

	added, err := s.launches.ApplyTemplates(s.ctx, launch.ID, models.PhasePreRelease)
	s.Require().NoError(err)
	s.Require().Len(added, 4)
	s.Equal("Upload to distributor", added[0].Title)
	s.Equal(models.Date("2026-11-01"), added[0].StartDate)
	s.Equal(models.Date("2026-11-04"), added[0].EndDate)
	s.Equal(models.PriorityHigh, added[0].Priority)
	s.Equal(models.ActionStatusPending, added[0].Status)

	again, err := s.launches.ApplyTemplates(s.ctx, launch.ID, models.PhasePreRelease)
	s.Require().NoError(err)
	s.Empty(again)

	stored, err := s.launches.GetLaunch(launch.ID)
	s.Require().NoError(err)
	s.Len(stored.Actions, 4)
}

func (s *LaunchServiceTestSuite) TestApplyTemplates_ClampsToToday() {
	launch := s.createLaunch("2026-10-20")

	added, err := s.launches.ApplyTemplates(s.ctx, launch.ID, models.PhasePreRelease)
	s.Require().NoError(err)

	for _, a := range added {
		s.False(a.StartDate.Before("2026-10-15"), a.Title)
	}
	s.Equal(models.Date("2026-10-15"), added[0].StartDate)
	s.Equal(models.Date("2026-10-18"), added[0].EndDate)
}

func (s *LaunchServiceTestSuite) TestApplyTemplates_Errors() {
	_, err := s.launches.ApplyTemplates(s.ctx, "missing", models.PhaseRelease)
	s.ErrorIs(err, ErrLaunchNotFound)

	launch := s.createLaunch("2026-12-01")
	_, err = s.launches.ApplyTemplates(s.ctx, launch.ID, models.Phase("encore"))
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *LaunchServiceTestSuite) TestPreviewSchedule_DoesNotSave() {
	launch := s.createLaunch("2026-12-01")

	preview, err := s.launches.PreviewSchedule(launch.ID, "")
	s.Require().NoError(err)
	s.Len(preview, 15)

	stored, err := s.launches.GetLaunch(launch.ID)
	s.Require().NoError(err)
	s.Empty(stored.Actions)
}

func (s *LaunchServiceTestSuite) TestActionSubtasksDriveStatus() {
	s.addParticipant("ana", "Ana", "ana@example.com")
	launch := s.createLaunch("2026-12-01")

	action, err := s.launches.AddAction(s.ctx, launch.ID, ActionInput{
		Title:  "Press kit",
		Phase:  models.PhasePreRelease,
		Owner:  "ana",
		Status: models.ActionStatusInProgress,
		Subtasks: []SubtaskInput{
			{ID: "bio", Name: "Bio"},
			{ID: "photos", Name: "Photos"},
		},
	})
	s.Require().NoError(err)

	action, err = s.launches.SetActionSubtask(s.ctx, launch.ID, action.ID, "bio", ptr(true))
	s.Require().NoError(err)
	s.Equal(models.ActionStatusInProgress, action.Status)

	action, err = s.launches.SetActionSubtask(s.ctx, launch.ID, action.ID, "photos", nil)
	s.Require().NoError(err)
	s.Equal(models.ActionStatusCompleted, action.Status)

	action, err = s.launches.SetActionSubtask(s.ctx, launch.ID, action.ID, "bio", ptr(false))
	s.Require().NoError(err)
	s.Equal(models.ActionStatusInProgress, action.Status)

	s.Equal([]notify.Kind{notify.KindAssignment, notify.KindCompletion, notify.KindStatusChange}, s.notifier.kinds())
	s.Equal("launch action", s.notifier.events[1].Item)
	s.Equal("Neon Rain - Lumen", s.notifier.events[1].Context)

	_, err = s.launches.SetActionSubtask(s.ctx, launch.ID, action.ID, "nope", nil)
	s.ErrorIs(err, ErrSubtaskNotFound)
}

func (s *LaunchServiceTestSuite) TestAddAction_FromTemplate() {
	launch := s.createLaunch("2026-12-01")

	action, err := s.launches.AddAction(s.ctx, launch.ID, ActionInput{
		Phase:    models.PhaseRelease,
		Template: "premiere video",
	})

	s.Require().NoError(err)
	s.Equal("Premiere video", action.Title)
	s.Equal(models.PriorityMedium, action.Priority)
	s.Equal(models.ActionStatusPending, action.Status)

	_, err = s.launches.AddAction(s.ctx, launch.ID, ActionInput{Phase: models.PhaseRelease, Template: "nope"})
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *LaunchServiceTestSuite) TestUpdateAndDeleteAction() {
	launch := s.createLaunch("2026-12-01")
	action, err := s.launches.AddAction(s.ctx, launch.ID, ActionInput{Title: "Mix", Phase: models.PhaseProduction})
	s.Require().NoError(err)

	updated, err := s.launches.UpdateAction(s.ctx, launch.ID, action.ID, UpdateActionInput{
		Status:    ptr(models.ActionStatusDelayed),
		StartDate: ptr(models.Date("2026-10-20")),
		EndDate:   ptr(models.Date("2026-10-25")),
	})
	s.Require().NoError(err)
	s.Equal(models.ActionStatusDelayed, updated.Status)

	_, err = s.launches.UpdateAction(s.ctx, launch.ID, action.ID, UpdateActionInput{EndDate: ptr(models.Date("2026-10-01"))})
	s.ErrorIs(err, ErrInvalidInput)

	s.ErrorIs(s.launches.DeleteAction(s.ctx, launch.ID, "missing"), ErrActionNotFound)
	s.Require().NoError(s.launches.DeleteAction(s.ctx, launch.ID, action.ID))

	stored, err := s.launches.GetLaunch(launch.ID)
	s.Require().NoError(err)
	s.Empty(stored.Actions)
}

func (s *LaunchServiceTestSuite) TestDeleteLaunch() {
	launch := s.createLaunch("2026-12-01")

	s.Require().NoError(s.launches.DeleteLaunch(s.ctx, launch.ID))
	s.ErrorIs(s.launches.DeleteLaunch(s.ctx, launch.ID), ErrLaunchNotFound)
}

func TestLaunchServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LaunchServiceTestSuite))
}
