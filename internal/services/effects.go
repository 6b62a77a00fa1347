package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/yukikurage/release-planner/internal/calendar"
	"github.com/yukikurage/release-planner/internal/metrics"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/notify"
)

// Notifier queues notifications for background delivery.
type Notifier interface {
	Enqueue(ev notify.Event) bool
}

// Effects are the secondary side effects of a write. None of them can
// fail the write itself.
type Effects struct {
	Calendar calendar.Provider
	Notifier Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

func (e *Effects) withDefaults() *Effects {
	out := Effects{}
	if e != nil {
		out = *e
	}
	if out.Calendar == nil {
		out.Calendar = calendar.Noop{}
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	return &out
}

func (e *Effects) today() models.Date {
	return models.DateOf(e.Now())
}

// send queues ev for the given participant ids.
func (e *Effects) send(ev notify.Event, ids []string, people map[string]models.Participant) {
	if e.Notifier == nil {
		return
	}
	ev.Recipients = notify.Recipients(ids, people)
	if len(ev.Recipients) == 0 {
		return
	}
	e.Notifier.Enqueue(ev)
}

// syncTaskEvent creates or updates the calendar event of a dated task and
// records the event id on it. Failures are logged and leave the task as is.
func (e *Effects) syncTaskEvent(ctx context.Context, task *models.Task, people map[string]models.Participant) {
	if task.StartDate == "" {
		if task.CalendarEventID != "" {
			e.deleteTaskEvent(ctx, *task)
			task.CalendarEventID = ""
		}
		return
	}
	var attendees []string
	for _, id := range append([]string{task.Owner}, task.Participants...) {
		if p, ok := people[id]; ok && p.Email != "" {
			attendees = append(attendees, p.Email)
		}
	}
	ev := calendar.Event{
		Summary:     task.Activity,
		Description: task.Description,
		Start:       task.StartDate,
		End:         task.EndDate,
		Attendees:   attendees,
	}

	if task.CalendarEventID != "" {
		if err := e.Calendar.Update(ctx, task.CalendarEventID, ev); err != nil {
			metrics.SideEffects.WithLabelValues("calendar", metrics.ResultError).Inc()
			e.Logger.Warn("calendar update failed", "task", task.ID, "event", task.CalendarEventID, "error", err)
			return
		}
		metrics.SideEffects.WithLabelValues("calendar", metrics.ResultOK).Inc()
		return
	}

	id, err := e.Calendar.Create(ctx, ev)
	if err != nil {
		metrics.SideEffects.WithLabelValues("calendar", metrics.ResultError).Inc()
		e.Logger.Warn("calendar create failed", "task", task.ID, "error", err)
		return
	}
	metrics.SideEffects.WithLabelValues("calendar", metrics.ResultOK).Inc()
	task.CalendarEventID = id
}

func (e *Effects) deleteTaskEvent(ctx context.Context, task models.Task) {
	if task.CalendarEventID == "" {
		return
	}
	if err := e.Calendar.Delete(ctx, task.CalendarEventID); err != nil {
		metrics.SideEffects.WithLabelValues("calendar", metrics.ResultError).Inc()
		e.Logger.Warn("calendar delete failed", "task", task.ID, "event", task.CalendarEventID, "error", err)
		return
	}
	metrics.SideEffects.WithLabelValues("calendar", metrics.ResultOK).Inc()
}

// newAssignees returns ids in next that were not in prev.
func newAssignees(prev, next []string) []string {
	had := make(map[string]bool, len(prev))
	for _, id := range prev {
		had[id] = true
	}
	var out []string
	for _, id := range next {
		if !had[id] {
			out = append(out, id)
		}
	}
	return out
}
