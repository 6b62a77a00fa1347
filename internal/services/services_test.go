package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/release-planner/internal/cache"
	"github.com/yukikurage/release-planner/internal/calendar"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/notify"
)

var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (f *fakeNotifier) Enqueue(ev notify.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return true
}

func (f *fakeNotifier) kinds() []notify.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notify.Kind, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Kind
	}
	return out
}

type fakeCalendar struct {
	mu      sync.Mutex
	created []calendar.Event
	updated []string
	deleted []string
	err     error
}

func (f *fakeCalendar) Create(_ context.Context, ev calendar.Event) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, ev)
	return fmt.Sprintf("evt-%d", len(f.created)), nil
}

func (f *fakeCalendar) Update(_ context.Context, id string, _ calendar.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.updated = append(f.updated, id)
	return nil
}

func (f *fakeCalendar) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// serviceSuite runs every service over a local-only workspace backed by an
// in-memory cache.
type serviceSuite struct {
	suite.Suite
	ctx      context.Context
	ws       *Workspace
	notifier *fakeNotifier
	calendar *fakeCalendar
	effects  *Effects
}

func (s *serviceSuite) SetupTest() {
	s.ctx = context.Background()

	snaps, err := cache.Open(":memory:")
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.ws = NewWorkspace(WorkspaceConfig{Cache: snaps, Logger: logger})
	s.Require().NoError(s.ws.Start(s.ctx))

	s.notifier = &fakeNotifier{}
	s.calendar = &fakeCalendar{}
	s.effects = &Effects{
		Calendar: s.calendar,
		Notifier: s.notifier,
		Logger:   logger,
		Now:      func() time.Time { return testNow },
	}
}

func (s *serviceSuite) TearDownTest() {
	s.ws.Stop()
}

func (s *serviceSuite) addParticipant(id, name, email string) models.Participant {
	p, err := NewParticipantService(s.ws, s.effects).CreateParticipant(s.ctx, ParticipantInput{ID: id, Name: name, Email: email})
	s.Require().NoError(err)
	return *p
}

func ptr[T any](v T) *T { return &v }
