package services

import (
	"context"
	"strings"
	"time"

	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/notify"
	"github.com/yukikurage/release-planner/internal/progress"
	"github.com/yukikurage/release-planner/internal/utils"
)

// TaskService handles task business logic
type TaskService struct {
	ws      *Workspace
	kpis    *KPIService
	effects *Effects
}

// NewTaskService creates a new TaskService. kpis may be nil; when set,
// auto-calculated KPIs follow every task change.
func NewTaskService(ws *Workspace, kpis *KPIService, effects *Effects) *TaskService {
	return &TaskService{ws: ws, kpis: kpis, effects: effects.withDefaults()}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Perspective string
	Status      *models.TaskStatus
	Owner       string
	Participant string
}

// TaskInput carries the client-editable fields of a task
type TaskInput struct {
	ID           string
	Perspective  string
	Activity     string
	Description  string
	Owner        string
	Participants []string
	StartDate    models.Date
	EndDate      models.Date
	Status       models.TaskStatus
	Priority     models.Priority
	Subtasks     []SubtaskInput
}

// UpdateTaskInput represents a partial update; nil fields are left alone
type UpdateTaskInput struct {
	Perspective  *string
	Activity     *string
	Description  *string
	Owner        *string
	Participants *[]string
	StartDate    *models.Date
	EndDate      *models.Date
	Status       *models.TaskStatus
	Priority     *models.Priority
	Subtasks     *[]SubtaskInput
}

// ListTasks returns tasks in start-date order, filtered
func (s *TaskService) ListTasks(input ListTasksInput) []models.Task {
	return s.ws.tasks.coll.Filter(func(t models.Task) bool {
		if input.Perspective != "" && !progress.MatchPerspective(t.Perspective, input.Perspective) {
			return false
		}
		if input.Status != nil && t.Status != *input.Status {
			return false
		}
		if input.Owner != "" && t.Owner != input.Owner {
			return false
		}
		if input.Participant != "" && t.Owner != input.Participant && !contains(t.Participants, input.Participant) {
			return false
		}
		return true
	})
}

// GetTask returns a task by id
func (s *TaskService) GetTask(id string) (*models.Task, error) {
	task, ok := s.ws.tasks.coll.Get(id)
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &task, nil
}

// CreateTask validates and stores a new task
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*models.Task, error) {
	subtasks, err := buildSubtasks(input.Subtasks)
	if err != nil {
		return nil, err
	}
	now := s.effects.Now().UTC()
	task := models.Task{
		ID:           utils.EnsureID(input.ID),
		Perspective:  strings.TrimSpace(input.Perspective),
		Activity:     strings.TrimSpace(input.Activity),
		Description:  input.Description,
		Owner:        input.Owner,
		Participants: cleanList(input.Participants),
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Status:       input.Status,
		Priority:     input.Priority,
		Subtasks:     subtasks,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	if _, exists := s.ws.tasks.coll.Get(task.ID); exists {
		return nil, invalid("task %s already exists", task.ID)
	}
	progress.DeriveTaskStatus(&task)

	people := s.ws.Participants()
	s.effects.syncTaskEvent(ctx, &task, people)

	err = s.ws.tasks.save(ctx, task)
	s.afterWrite(ctx)

	s.effects.send(notify.Event{
		Kind:    notify.KindAssignment,
		Item:    "task",
		Title:   task.Activity,
		DueDate: task.EndDate,
		Context: task.Perspective,
	}, append([]string{task.Owner}, task.Participants...), people)

	return &task, err
}

// UpdateTask applies a partial update
func (s *TaskService) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*models.Task, error) {
	prev, ok := s.ws.tasks.coll.Get(id)
	if !ok {
		return nil, ErrTaskNotFound
	}
	task := prev
	task.Participants = append([]string(nil), prev.Participants...)
	task.Subtasks = append([]models.Subtask(nil), prev.Subtasks...)

	if input.Perspective != nil {
		task.Perspective = strings.TrimSpace(*input.Perspective)
	}
	if input.Activity != nil {
		task.Activity = strings.TrimSpace(*input.Activity)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Owner != nil {
		task.Owner = *input.Owner
	}
	if input.Participants != nil {
		task.Participants = cleanList(*input.Participants)
	}
	if input.StartDate != nil {
		task.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		task.EndDate = *input.EndDate
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Subtasks != nil {
		subtasks, err := buildSubtasks(*input.Subtasks)
		if err != nil {
			return nil, err
		}
		task.Subtasks = subtasks
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	progress.DeriveTaskStatus(&task)

	return s.store(ctx, prev, task)
}

// ToggleSubtask flips a subtask and re-derives the task status
func (s *TaskService) ToggleSubtask(ctx context.Context, id, subtaskID string) (*models.Task, error) {
	prev, ok := s.ws.tasks.coll.Get(id)
	if !ok {
		return nil, ErrTaskNotFound
	}
	task := prev
	task.Subtasks = append([]models.Subtask(nil), prev.Subtasks...)
	if err := progress.ToggleTaskSubtask(&task, subtaskID); err != nil {
		return nil, err
	}
	return s.store(ctx, prev, task)
}

// DeleteTask removes a task and its calendar event
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	task, ok := s.ws.tasks.coll.Get(id)
	if !ok {
		return ErrTaskNotFound
	}
	s.effects.deleteTaskEvent(ctx, task)
	err := s.ws.tasks.remove(ctx, id)
	s.afterWrite(ctx)
	return err
}

func (s *TaskService) store(ctx context.Context, prev, task models.Task) (*models.Task, error) {
	task.UpdatedAt = s.effects.Now().UTC()

	people := s.ws.Participants()
	if datesChanged(prev, task) || task.CalendarEventID == "" {
		s.effects.syncTaskEvent(ctx, &task, people)
	}

	err := s.ws.tasks.save(ctx, task)
	s.afterWrite(ctx)
	s.notifyChanges(prev, task, people)
	return &task, err
}

func (s *TaskService) notifyChanges(prev, task models.Task, people map[string]models.Participant) {
	base := notify.Event{
		Item:       "task",
		Title:      task.Activity,
		Status:     string(task.Status),
		PrevStatus: string(prev.Status),
		DueDate:    task.EndDate,
		Context:    task.Perspective,
	}

	added := newAssignees(append([]string{prev.Owner}, prev.Participants...), append([]string{task.Owner}, task.Participants...))
	if len(added) > 0 {
		ev := base
		ev.Kind = notify.KindAssignment
		s.effects.send(ev, added, people)
	}

	if prev.Status == task.Status {
		return
	}
	ev := base
	ev.Kind = notify.KindStatusChange
	if task.Status == models.TaskStatusCompleted {
		ev.Kind = notify.KindCompletion
	}
	s.effects.send(ev, append([]string{task.Owner}, task.Participants...), people)
}

func (s *TaskService) afterWrite(ctx context.Context) {
	if s.kpis == nil {
		return
	}
	if _, err := s.kpis.Recalculate(ctx); err != nil {
		s.effects.Logger.Warn("kpi recalculation incomplete", "error", err)
	}
}

func validateTask(t models.Task) error {
	if err := required("activity", t.Activity); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return invalid("unknown status %q", t.Status)
	}
	if !t.Priority.Valid() {
		return invalid("unknown priority %q", t.Priority)
	}
	return validDates(t.StartDate, t.EndDate)
}

func datesChanged(a, b models.Task) bool {
	return a.StartDate != b.StartDate || a.EndDate != b.EndDate || a.Activity != b.Activity
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Overdue lists unfinished tasks whose end date has passed
func (s *TaskService) Overdue(now time.Time) []models.Task {
	today := models.DateOf(now)
	return s.ws.tasks.coll.Filter(func(t models.Task) bool {
		return t.EndDate != "" && t.EndDate.Before(today) && t.Status != models.TaskStatusCompleted
	})
}
