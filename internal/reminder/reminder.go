// Package reminder queues "due tomorrow" notifications on a cron schedule.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/notify"
)

// Source exposes the current collections.
type Source interface {
	Tasks() []models.Task
	Launches() []models.Launch
	Participants() map[string]models.Participant
}

type Enqueuer interface {
	Enqueue(ev notify.Event) bool
}

type Scheduler struct {
	cron   *cron.Cron
	source Source
	queue  Enqueuer
	logger *slog.Logger
	now    func() time.Time
}

// New parses a standard five-field cron spec such as "0 8 * * *".
func New(spec string, source Source, queue Enqueuer, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		cron:   cron.New(),
		source: source,
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce queues reminders for everything due tomorrow and returns how
// many events were queued.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	tomorrow := models.DateOf(s.now()).AddDays(1)
	events := Due(s.source.Tasks(), s.source.Launches(), s.source.Participants(), tomorrow)

	queued := 0
	for _, ev := range events {
		if ctx.Err() != nil {
			break
		}
		if s.queue.Enqueue(ev) {
			queued++
		}
	}
	s.logger.Info("reminder scan finished", "due", string(tomorrow), "events", len(events), "queued", queued)
	return queued
}

// Due builds a reminder for every unfinished task or launch action that
// ends on day, addressed to its owner and participants.
func Due(tasks []models.Task, launches []models.Launch, participants map[string]models.Participant, day models.Date) []notify.Event {
	var events []notify.Event
	for _, t := range tasks {
		if t.EndDate != day || t.Status == models.TaskStatusCompleted {
			continue
		}
		events = append(events, notify.Event{
			Kind:       notify.KindReminder,
			Item:       "task",
			Title:      t.Activity,
			Status:     string(t.Status),
			DueDate:    t.EndDate,
			Context:    t.Perspective,
			Recipients: notify.Recipients(append([]string{t.Owner}, t.Participants...), participants),
		})
	}
	for _, l := range launches {
		for _, a := range l.Actions {
			if a.EndDate != day || a.Status == models.ActionStatusCompleted {
				continue
			}
			events = append(events, notify.Event{
				Kind:       notify.KindReminder,
				Item:       "launch action",
				Title:      a.Title,
				Status:     string(a.Status),
				DueDate:    a.EndDate,
				Context:    fmt.Sprintf("%s - %s", l.SongName, l.Artist),
				Recipients: notify.Recipients(append([]string{a.Owner}, a.Participants...), participants),
			})
		}
	}
	return events
}
