// Package templates holds the suggested launch actions and publication
// content for each release phase and schedules them around a release date.
package templates

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yukikurage/release-planner/internal/constants"
	"github.com/yukikurage/release-planner/internal/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ActionTemplate is a suggested launch action.
type ActionTemplate struct {
	Title       string          `yaml:"title" json:"title"`
	Description string          `yaml:"description" json:"description"`
	Phase       models.Phase    `yaml:"-" json:"phase"`
	OffsetDays  int             `yaml:"offset_days" json:"offset_days"`
	Priority    models.Priority `yaml:"priority" json:"priority"`
	Tags        []string        `yaml:"tags" json:"tags"`
}

// ContentTemplate is a suggested publication.
type ContentTemplate struct {
	Title       string       `yaml:"title" json:"title"`
	Description string       `yaml:"description" json:"description"`
	Phase       models.Phase `yaml:"-" json:"phase"`
	Platform    string       `yaml:"platform" json:"platform"`
	ContentType string       `yaml:"content_type" json:"content_type"`
	Objectives  string       `yaml:"objectives" json:"objectives"`
	Hashtags    []string     `yaml:"hashtags" json:"hashtags"`
	OffsetDays  int          `yaml:"offset_days" json:"offset_days"`
}

// Catalog is the full set of templates, keyed by phase.
type Catalog struct {
	Actions map[models.Phase][]ActionTemplate  `yaml:"actions"`
	Content map[models.Phase][]ContentTemplate `yaml:"content"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("templates: embedded catalog is invalid: %v", err))
	}
	return c
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid template catalog: %w", err)
	}
	for phase, items := range c.Actions {
		if !phase.Valid() {
			return nil, fmt.Errorf("unknown phase %q in action templates", phase)
		}
		for i := range items {
			items[i].Phase = phase
		}
	}
	for phase, items := range c.Content {
		if !phase.Valid() {
			return nil, fmt.Errorf("unknown phase %q in content templates", phase)
		}
		for i := range items {
			items[i].Phase = phase
		}
	}
	return &c, nil
}

// ActionsFor returns the action templates for a phase, or every phase in
// lifecycle order when phase is empty.
func (c *Catalog) ActionsFor(phase models.Phase) []ActionTemplate {
	if phase != "" {
		return append([]ActionTemplate(nil), c.Actions[phase]...)
	}
	var all []ActionTemplate
	for _, p := range models.Phases {
		all = append(all, c.Actions[p]...)
	}
	return all
}

// ContentFor returns the content templates for a phase, or every phase in
// lifecycle order when phase is empty.
func (c *Catalog) ContentFor(phase models.Phase) []ContentTemplate {
	if phase != "" {
		return append([]ContentTemplate(nil), c.Content[phase]...)
	}
	var all []ContentTemplate
	for _, p := range models.Phases {
		all = append(all, c.Content[p]...)
	}
	return all
}

// ApplyAction overwrites the draft's template-owned fields.
func ApplyAction(t ActionTemplate, draft *models.Action) {
	draft.Title = t.Title
	draft.Description = t.Description
	draft.Phase = t.Phase
	draft.Priority = t.Priority
}

// ApplyContent overwrites the draft's template-owned fields.
func ApplyContent(t ContentTemplate, draft *models.Publication) {
	draft.Title = t.Title
	draft.Description = t.Description
	draft.Phase = t.Phase
	draft.Platform = t.Platform
	draft.ContentType = t.ContentType
	draft.Objectives = t.Objectives
	draft.Hashtags = append([]string(nil), t.Hashtags...)
}

// Slot is a computed start/end window.
type Slot struct {
	Start models.Date `json:"start_date"`
	End   models.Date `json:"end_date"`
}

// ScheduleAt places an offset relative to release, never earlier than today,
// and gives it the fixed scheduled duration.
func ScheduleAt(release, today time.Time, offsetDays int) Slot {
	start := truncateDay(release).AddDate(0, 0, offsetDays)
	if t := truncateDay(today); start.Before(t) {
		start = t
	}
	return Slot{
		Start: models.DateOf(start),
		End:   models.DateOf(start.AddDate(0, 0, constants.ScheduledActionDays)),
	}
}

// ScheduledAction is a template with its computed slot.
type ScheduledAction struct {
	Template ActionTemplate `json:"template"`
	Slot     Slot           `json:"slot"`
}

// AutoSchedule computes a slot for every template. It is a pure function of
// its arguments.
func AutoSchedule(release, today time.Time, tmpls []ActionTemplate) []ScheduledAction {
	out := make([]ScheduledAction, len(tmpls))
	for i, t := range tmpls {
		out[i] = ScheduledAction{Template: t, Slot: ScheduleAt(release, today, t.OffsetDays)}
	}
	return out
}

// ScheduledContent is a content template with its computed publication date.
type ScheduledContent struct {
	Template ContentTemplate `json:"template"`
	Date     models.Date     `json:"date"`
}

// ScheduleContent computes a publication date for every content template.
func ScheduleContent(release, today time.Time, tmpls []ContentTemplate) []ScheduledContent {
	out := make([]ScheduledContent, len(tmpls))
	for i, t := range tmpls {
		out[i] = ScheduledContent{Template: t, Date: ScheduleAt(release, today, t.OffsetDays).Start}
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
