// Package notify emails participants about assignments, status changes,
// completions and upcoming deadlines. Delivery is best effort: a failed
// send is logged and counted, never returned to the code that triggered it.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/yukikurage/release-planner/internal/metrics"
	"github.com/yukikurage/release-planner/internal/models"
)

type Kind string

const (
	KindAssignment   Kind = "assignment"
	KindStatusChange Kind = "status-change"
	KindCompletion   Kind = "completion"
	KindReminder     Kind = "reminder"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var subjects = map[Kind]string{
	KindAssignment:   "You were assigned: %s",
	KindStatusChange: "Status update: %s",
	KindCompletion:   "Completed: %s",
	KindReminder:     "Due tomorrow: %s",
}

// Event is one notification to fan out to its recipients.
type Event struct {
	Kind Kind
	// Item is what the message is about, e.g. "task" or "launch action".
	Item       string
	Title      string
	Status     string
	PrevStatus string
	DueDate    models.Date
	Context    string
	Recipients []models.Participant
}

// Email is a rendered message for one recipient.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends one email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// Report summarizes one delivery.
type Report struct {
	Sent    int
	Skipped int
	Failed  int
}

type Dispatcher struct {
	mailer Mailer
	logger *slog.Logger
}

func NewDispatcher(mailer Mailer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{mailer: mailer, logger: logger}
}

// Render builds the message for one recipient.
func Render(ev Event, recipient models.Participant) (Email, error) {
	format, ok := subjects[ev.Kind]
	if !ok {
		return Email{}, fmt.Errorf("unknown notification kind %q", ev.Kind)
	}
	name := recipient.Name
	if name == "" {
		name = recipient.Email
	}
	data := struct {
		Event
		Recipient string
	}{ev, name}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(ev.Kind)+".html", data); err != nil {
		return Email{}, fmt.Errorf("failed to render %s: %w", ev.Kind, err)
	}
	return Email{
		To:      recipient.Email,
		Subject: fmt.Sprintf(format, ev.Title),
		HTML:    buf.String(),
	}, nil
}

// Deliver sends one message per recipient, sequentially. Recipients
// without an email are skipped.
func (d *Dispatcher) Deliver(ctx context.Context, ev Event) Report {
	var report Report
	kind := string(ev.Kind)
	for _, r := range ev.Recipients {
		if strings.TrimSpace(r.Email) == "" {
			report.Skipped++
			metrics.Notifications.WithLabelValues(kind, metrics.ResultSkipped).Inc()
			continue
		}
		email, err := Render(ev, r)
		if err == nil {
			err = d.mailer.Send(ctx, email)
		}
		if err != nil {
			report.Failed++
			metrics.Notifications.WithLabelValues(kind, metrics.ResultError).Inc()
			d.logger.Warn("notification failed", "kind", kind, "to", r.Email, "title", ev.Title, "error", err)
			continue
		}
		report.Sent++
		metrics.Notifications.WithLabelValues(kind, metrics.ResultOK).Inc()
	}
	d.logger.Debug("notifications delivered", "kind", kind, "title", ev.Title,
		"sent", report.Sent, "skipped", report.Skipped, "failed", report.Failed)
	return report
}

// Recipients resolves participant ids, dropping unknown ids and duplicates.
func Recipients(ids []string, participants map[string]models.Participant) []models.Participant {
	seen := map[string]bool{}
	out := []models.Participant{}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := participants[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
