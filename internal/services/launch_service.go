package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/notify"
	"github.com/yukikurage/release-planner/internal/progress"
	"github.com/yukikurage/release-planner/internal/templates"
	"github.com/yukikurage/release-planner/internal/utils"
)

// LaunchService handles launches and their timeline actions
type LaunchService struct {
	ws      *Workspace
	catalog *templates.Catalog
	effects *Effects
}

// NewLaunchService creates a new LaunchService
func NewLaunchService(ws *Workspace, catalog *templates.Catalog, effects *Effects) *LaunchService {
	if catalog == nil {
		catalog = templates.Default()
	}
	return &LaunchService{ws: ws, catalog: catalog, effects: effects.withDefaults()}
}

// LaunchInput carries the client-editable fields of a launch
type LaunchInput struct {
	ID           string
	SongName     string
	Artist       string
	LaunchDate   models.Date
	Description  string
	Participants []string
}

// UpdateLaunchInput represents a partial update
type UpdateLaunchInput struct {
	SongName     *string
	Artist       *string
	LaunchDate   *models.Date
	Description  *string
	Participants *[]string
}

// ActionInput carries the client-editable fields of an action
type ActionInput struct {
	ID           string
	Title        string
	Description  string
	Phase        models.Phase
	Owner        string
	Participants []string
	StartDate    models.Date
	EndDate      models.Date
	Status       models.ActionStatus
	Priority     models.Priority
	Subtasks     []SubtaskInput
	// Template names an action template of Phase whose fields are applied
	// over the input.
	Template string
}

// UpdateActionInput represents a partial update of an action
type UpdateActionInput struct {
	Title        *string
	Description  *string
	Phase        *models.Phase
	Owner        *string
	Participants *[]string
	StartDate    *models.Date
	EndDate      *models.Date
	Status       *models.ActionStatus
	Priority     *models.Priority
	Subtasks     *[]SubtaskInput
}

func (s *LaunchService) ListLaunches() []models.Launch {
	return s.ws.launches.coll.All()
}

func (s *LaunchService) GetLaunch(id string) (*models.Launch, error) {
	launch, ok := s.ws.launches.coll.Get(id)
	if !ok {
		return nil, ErrLaunchNotFound
	}
	return &launch, nil
}

func (s *LaunchService) CreateLaunch(ctx context.Context, input LaunchInput) (*models.Launch, error) {
	now := s.effects.Now().UTC()
	launch := models.Launch{
		ID:           utils.EnsureID(input.ID),
		SongName:     strings.TrimSpace(input.SongName),
		Artist:       strings.TrimSpace(input.Artist),
		LaunchDate:   input.LaunchDate,
		Description:  input.Description,
		Participants: cleanList(input.Participants),
		Actions:      []models.Action{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := validateLaunch(launch); err != nil {
		return nil, err
	}
	err := s.ws.launches.save(ctx, launch)
	return &launch, err
}

func (s *LaunchService) UpdateLaunch(ctx context.Context, id string, input UpdateLaunchInput) (*models.Launch, error) {
	launch, ok := s.ws.launches.coll.Get(id)
	if !ok {
		return nil, ErrLaunchNotFound
	}
	launch = cloneLaunch(launch)
	if input.SongName != nil {
		launch.SongName = strings.TrimSpace(*input.SongName)
	}
	if input.Artist != nil {
		launch.Artist = strings.TrimSpace(*input.Artist)
	}
	if input.LaunchDate != nil {
		launch.LaunchDate = *input.LaunchDate
	}
	if input.Description != nil {
		launch.Description = *input.Description
	}
	if input.Participants != nil {
		launch.Participants = cleanList(*input.Participants)
	}
	if err := validateLaunch(launch); err != nil {
		return nil, err
	}
	launch.UpdatedAt = s.effects.Now().UTC()
	err := s.ws.launches.save(ctx, launch)
	return &launch, err
}

// DeleteLaunch removes a launch. Publications keep their launch reference.
func (s *LaunchService) DeleteLaunch(ctx context.Context, id string) error {
	if _, ok := s.ws.launches.coll.Get(id); !ok {
		return ErrLaunchNotFound
	}
	return s.ws.launches.remove(ctx, id)
}

// AddAction appends an action to a launch timeline
func (s *LaunchService) AddAction(ctx context.Context, launchID string, input ActionInput) (*models.Action, error) {
	launch, ok := s.ws.launches.coll.Get(launchID)
	if !ok {
		return nil, ErrLaunchNotFound
	}
	subtasks, err := buildSubtasks(input.Subtasks)
	if err != nil {
		return nil, err
	}
	action := models.Action{
		ID:           utils.EnsureID(input.ID),
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Phase:        input.Phase,
		Owner:        input.Owner,
		Participants: cleanList(input.Participants),
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Status:       input.Status,
		Priority:     input.Priority,
		Subtasks:     subtasks,
	}
	if input.Template != "" {
		tmpl, ok := s.findActionTemplate(input.Phase, input.Template)
		if !ok {
			return nil, invalid("unknown %s template %q", input.Phase, input.Template)
		}
		templates.ApplyAction(tmpl, &action)
	}
	if action.Status == "" {
		action.Status = models.ActionStatusPending
	}
	if action.Priority == "" {
		action.Priority = models.PriorityMedium
	}
	if err := validateAction(action); err != nil {
		return nil, err
	}
	if launch.FindAction(action.ID) >= 0 {
		return nil, invalid("action %s already exists", action.ID)
	}
	progress.SyncActionStatus(&action)

	launch = cloneLaunch(launch)
	launch.Actions = append(launch.Actions, action)
	err = s.saveLaunch(ctx, launch)

	s.effects.send(notify.Event{
		Kind:    notify.KindAssignment,
		Item:    "launch action",
		Title:   action.Title,
		DueDate: action.EndDate,
		Context: launchLabel(launch),
	}, append([]string{action.Owner}, action.Participants...), s.ws.Participants())

	return &action, err
}

// UpdateAction applies a partial update to one action
func (s *LaunchService) UpdateAction(ctx context.Context, launchID, actionID string, input UpdateActionInput) (*models.Action, error) {
	return s.mutateAction(ctx, launchID, actionID, func(a *models.Action) error {
		if input.Title != nil {
			a.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			a.Description = *input.Description
		}
		if input.Phase != nil {
			a.Phase = *input.Phase
		}
		if input.Owner != nil {
			a.Owner = *input.Owner
		}
		if input.Participants != nil {
			a.Participants = cleanList(*input.Participants)
		}
		if input.StartDate != nil {
			a.StartDate = *input.StartDate
		}
		if input.EndDate != nil {
			a.EndDate = *input.EndDate
		}
		if input.Status != nil {
			a.Status = *input.Status
		}
		if input.Priority != nil {
			a.Priority = *input.Priority
		}
		if input.Subtasks != nil {
			subtasks, err := buildSubtasks(*input.Subtasks)
			if err != nil {
				return err
			}
			a.Subtasks = subtasks
		}
		if err := validateAction(*a); err != nil {
			return err
		}
		progress.SyncActionStatus(a)
		return nil
	})
}

// SetActionSubtask marks one subtask done or not done and keeps the
// action status in step. A nil completed flips the subtask.
func (s *LaunchService) SetActionSubtask(ctx context.Context, launchID, actionID, subtaskID string, completed *bool) (*models.Action, error) {
	return s.mutateAction(ctx, launchID, actionID, func(a *models.Action) error {
		if completed == nil {
			return progress.ToggleActionSubtask(a, subtaskID)
		}
		return progress.SetActionSubtask(a, subtaskID, *completed)
	})
}

// DeleteAction removes one action from a launch
func (s *LaunchService) DeleteAction(ctx context.Context, launchID, actionID string) error {
	launch, ok := s.ws.launches.coll.Get(launchID)
	if !ok {
		return ErrLaunchNotFound
	}
	i := launch.FindAction(actionID)
	if i < 0 {
		return ErrActionNotFound
	}
	launch = cloneLaunch(launch)
	launch.Actions = append(launch.Actions[:i], launch.Actions[i+1:]...)
	return s.saveLaunch(ctx, launch)
}

// PreviewSchedule computes template slots for a launch without saving.
// An empty phase covers every phase.
func (s *LaunchService) PreviewSchedule(launchID string, phase models.Phase) ([]templates.ScheduledAction, error) {
	launch, ok := s.ws.launches.coll.Get(launchID)
	if !ok {
		return nil, ErrLaunchNotFound
	}
	release, ok := launch.LaunchDate.Time()
	if !ok {
		return nil, invalid("launch has no launch date")
	}
	if phase != "" && !phase.Valid() {
		return nil, invalid("unknown phase %q", phase)
	}
	return templates.AutoSchedule(release, s.effects.Now(), s.catalog.ActionsFor(phase)), nil
}

// ApplyTemplates adds the scheduled template actions of a phase to the
// launch. Templates whose title is already on the timeline in that phase
// are skipped, so applying twice adds nothing.
func (s *LaunchService) ApplyTemplates(ctx context.Context, launchID string, phase models.Phase) ([]models.Action, error) {
	scheduled, err := s.PreviewSchedule(launchID, phase)
	if err != nil {
		return nil, err
	}
	launch, _ := s.ws.launches.coll.Get(launchID)
	launch = cloneLaunch(launch)

	existing := map[string]bool{}
	for _, a := range launch.Actions {
		existing[actionKey(a.Phase, a.Title)] = true
	}

	added := []models.Action{}
	for _, sa := range scheduled {
		if existing[actionKey(sa.Template.Phase, sa.Template.Title)] {
			continue
		}
		action := models.Action{
			ID:           utils.NewID(),
			Participants: []string{},
			StartDate:    sa.Slot.Start,
			EndDate:      sa.Slot.End,
			Status:       models.ActionStatusPending,
			Subtasks:     []models.Subtask{},
		}
		templates.ApplyAction(sa.Template, &action)
		if action.Priority == "" {
			action.Priority = models.PriorityMedium
		}
		added = append(added, action)
	}
	if len(added) == 0 {
		return added, nil
	}

	launch.Actions = append(launch.Actions, added...)
	return added, s.saveLaunch(ctx, launch)
}

func (s *LaunchService) mutateAction(ctx context.Context, launchID, actionID string, mutate func(*models.Action) error) (*models.Action, error) {
	launch, ok := s.ws.launches.coll.Get(launchID)
	if !ok {
		return nil, ErrLaunchNotFound
	}
	i := launch.FindAction(actionID)
	if i < 0 {
		return nil, ErrActionNotFound
	}
	launch = cloneLaunch(launch)
	prev := launch.Actions[i]
	action := cloneAction(prev)
	if err := mutate(&action); err != nil {
		return nil, err
	}
	launch.Actions[i] = action

	err := s.saveLaunch(ctx, launch)
	s.notifyActionChanges(launch, prev, action)
	return &action, err
}

func (s *LaunchService) saveLaunch(ctx context.Context, launch models.Launch) error {
	launch.UpdatedAt = s.effects.Now().UTC()
	return s.ws.launches.save(ctx, launch)
}

func (s *LaunchService) notifyActionChanges(launch models.Launch, prev, action models.Action) {
	people := s.ws.Participants()
	base := notify.Event{
		Item:       "launch action",
		Title:      action.Title,
		Status:     string(action.Status),
		PrevStatus: string(prev.Status),
		DueDate:    action.EndDate,
		Context:    launchLabel(launch),
	}

	added := newAssignees(append([]string{prev.Owner}, prev.Participants...), append([]string{action.Owner}, action.Participants...))
	if len(added) > 0 {
		ev := base
		ev.Kind = notify.KindAssignment
		s.effects.send(ev, added, people)
	}
	if prev.Status == action.Status {
		return
	}
	ev := base
	ev.Kind = notify.KindStatusChange
	if action.Status == models.ActionStatusCompleted {
		ev.Kind = notify.KindCompletion
	}
	s.effects.send(ev, append([]string{action.Owner}, action.Participants...), people)
}

func (s *LaunchService) findActionTemplate(phase models.Phase, title string) (templates.ActionTemplate, bool) {
	for _, t := range s.catalog.ActionsFor(phase) {
		if strings.EqualFold(t.Title, title) {
			return t, true
		}
	}
	return templates.ActionTemplate{}, false
}

func validateLaunch(l models.Launch) error {
	if err := required("song name", l.SongName); err != nil {
		return err
	}
	if !l.LaunchDate.Valid() {
		return invalid("launch date %q is not YYYY-MM-DD", l.LaunchDate)
	}
	return nil
}

func validateAction(a models.Action) error {
	if err := required("title", a.Title); err != nil {
		return err
	}
	if !a.Phase.Valid() {
		return invalid("unknown phase %q", a.Phase)
	}
	if !a.Status.Valid() {
		return invalid("unknown status %q", a.Status)
	}
	if !a.Priority.Valid() {
		return invalid("unknown priority %q", a.Priority)
	}
	return validDates(a.StartDate, a.EndDate)
}

func actionKey(phase models.Phase, title string) string {
	return string(phase) + "|" + strings.ToLower(strings.TrimSpace(title))
}

func launchLabel(l models.Launch) string {
	if l.Artist == "" {
		return l.SongName
	}
	return fmt.Sprintf("%s - %s", l.SongName, l.Artist)
}

// cloneLaunch copies the slices so edits never alias the stored launch.
func cloneLaunch(l models.Launch) models.Launch {
	l.Participants = append([]string(nil), l.Participants...)
	actions := make([]models.Action, len(l.Actions))
	for i, a := range l.Actions {
		actions[i] = cloneAction(a)
	}
	l.Actions = actions
	return l
}

func cloneAction(a models.Action) models.Action {
	a.Participants = append([]string(nil), a.Participants...)
	a.Subtasks = append([]models.Subtask(nil), a.Subtasks...)
	return a
}
