// Package normalize turns loosely shaped historical records into typed
// entities. Older data used camelCase keys, Spanish field names, or put an
// email where a name belonged; every alias is resolved here so the rest of
// the code only ever sees models.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yukikurage/release-planner/internal/models"
)

// Record is one decoded JSON object.
type Record map[string]any

// Records decodes a JSON array of objects.
func Records(data []byte) ([]Record, error) {
	var out []Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return out, nil
}

// String returns the first non-empty value among keys.
func (r Record) String(keys ...string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// Float returns the first numeric value among keys. Numeric strings count.
func (r Record) Float(keys ...string) float64 {
	for _, k := range keys {
		switch v := r[k].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// Int is Float truncated.
func (r Record) Int(keys ...string) int {
	return int(r.Float(keys...))
}

func (r Record) Bool(keys ...string) bool {
	for _, k := range keys {
		switch v := r[k].(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
	}
	return false
}

// Strings accepts a list of strings, a list of objects with an id, or a
// comma separated string.
func (r Record) Strings(keys ...string) []string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case []any:
			out := []string{}
			for _, el := range v {
				switch e := el.(type) {
				case string:
					if e != "" {
						out = append(out, e)
					}
				case map[string]any:
					if id := Record(e).String("id", "email", "name"); id != "" {
						out = append(out, id)
					}
				}
			}
			return out
		case string:
			out := []string{}
			for _, part := range strings.Split(v, ",") {
				if p := strings.TrimSpace(part); p != "" {
					out = append(out, p)
				}
			}
			return out
		}
	}
	return []string{}
}

// Object returns a nested object.
func (r Record) Object(keys ...string) Record {
	for _, k := range keys {
		if m, ok := r[k].(map[string]any); ok {
			return Record(m)
		}
	}
	return nil
}

// List returns a nested list of objects.
func (r Record) List(keys ...string) []Record {
	for _, k := range keys {
		if list, ok := r[k].([]any); ok {
			out := []Record{}
			for _, el := range list {
				if m, ok := el.(map[string]any); ok {
					out = append(out, Record(m))
				}
			}
			return out
		}
	}
	return []Record{}
}

func (r Record) date(keys ...string) models.Date {
	s := r.String(keys...)
	if len(s) > len(models.DateLayout) {
		s = s[:len(models.DateLayout)]
	}
	d := models.Date(s)
	if !d.Valid() {
		return ""
	}
	return d
}

// Participant resolves the display name from name, nombre, or the email.
func Participant(r Record) models.Participant {
	email := r.String("email", "correo", "mail")
	return models.Participant{
		ID:    r.String("id"),
		Name:  r.String("name", "nombre", "email"),
		Email: email,
		Role:  r.String("role", "rol", "cargo"),
	}
}

func Subtasks(list []Record) []models.Subtask {
	out := []models.Subtask{}
	for i, r := range list {
		id := r.String("id")
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		out = append(out, models.Subtask{
			ID:        id,
			Name:      r.String("name", "nombre", "title", "text"),
			Completed: r.Bool("completed", "done", "completada"),
		})
	}
	return out
}

func Task(r Record) models.Task {
	status := models.TaskStatus(strings.ToLower(r.String("status", "estado")))
	if !status.Valid() {
		status = models.TaskStatusPending
	}
	priority := models.Priority(strings.ToLower(r.String("priority", "prioridad")))
	if !priority.Valid() {
		priority = models.PriorityMedium
	}
	return models.Task{
		ID:              r.String("id"),
		Perspective:     r.String("perspective", "perspectiva", "category"),
		Activity:        r.String("activity", "actividad", "title", "name"),
		Description:     r.String("description", "descripcion"),
		Owner:           r.String("owner", "responsible", "responsable"),
		Participants:    r.Strings("participants", "participantes"),
		StartDate:       r.date("start_date", "startDate", "fechaInicio"),
		EndDate:         r.date("end_date", "endDate", "fechaFin"),
		Status:          status,
		Priority:        priority,
		Subtasks:        Subtasks(r.List("subtasks", "subtareas")),
		CalendarEventID: r.String("calendar_event_id", "calendarEventId", "googleEventId"),
	}
}

func KPI(r Record) models.KPI {
	return models.KPI{
		ID:            r.String("id"),
		Perspective:   r.String("perspective", "perspectiva"),
		Objective:     r.String("objective", "objetivo"),
		Indicator:     r.String("indicator", "indicador", "kpi", "name"),
		CurrentValue:  r.Float("current_value", "currentValue", "current", "actual", "valor"),
		TargetValue:   r.Float("target_value", "targetValue", "target", "meta", "goal"),
		Unit:          r.String("unit", "unidad"),
		AutoCalculate: r.Bool("auto_calculate", "autoCalculate", "auto"),
	}
}

func Action(r Record) models.Action {
	status := models.ActionStatus(strings.ToLower(r.String("status", "estado")))
	if !status.Valid() {
		status = models.ActionStatusPending
	}
	priority := models.Priority(strings.ToLower(r.String("priority", "prioridad")))
	if !priority.Valid() {
		priority = models.PriorityMedium
	}
	return models.Action{
		ID:           r.String("id"),
		Title:        r.String("title", "titulo", "name"),
		Description:  r.String("description", "descripcion"),
		Phase:        models.Phase(r.String("phase", "fase")),
		Owner:        r.String("owner", "responsible", "responsable"),
		Participants: r.Strings("participants", "participantes"),
		StartDate:    r.date("start_date", "startDate", "fechaInicio"),
		EndDate:      r.date("end_date", "endDate", "fechaFin"),
		Status:       status,
		Priority:     priority,
		Subtasks:     Subtasks(r.List("subtasks", "subtareas")),
	}
}

func Launch(r Record) models.Launch {
	actions := []models.Action{}
	for _, a := range r.List("actions", "acciones") {
		actions = append(actions, Action(a))
	}
	return models.Launch{
		ID:           r.String("id"),
		SongName:     r.String("song_name", "songName", "cancion", "title"),
		Artist:       r.String("artist", "artista"),
		LaunchDate:   r.date("launch_date", "launchDate", "fechaLanzamiento"),
		Description:  r.String("description", "descripcion"),
		Participants: r.Strings("participants", "participantes"),
		Actions:      actions,
	}
}

func Publication(r Record) models.Publication {
	status := models.PublicationStatus(strings.ToLower(r.String("status", "estado")))
	if !status.Valid() {
		status = models.PublicationStatusPlanned
	}
	return models.Publication{
		ID:          r.String("id"),
		Title:       r.String("title", "titulo"),
		Description: r.String("description", "descripcion"),
		Date:        r.date("date", "fecha"),
		Time:        r.String("time", "hora"),
		Phase:       models.Phase(r.String("phase", "fase")),
		Platform:    r.String("platform", "plataforma"),
		ContentType: r.String("content_type", "contentType", "tipo"),
		Responsible: r.Strings("responsible", "responsables"),
		Status:      status,
		LaunchID:    r.String("launch_id", "launchId"),
		Objectives:  r.String("objectives", "objetivos"),
		Audience:    r.String("audience", "audiencia"),
		Hashtags:    r.Strings("hashtags"),
		Notes:       r.String("notes", "notas"),
	}
}

func Idea(r Record) models.Idea {
	idea := models.Idea{
		ID:          r.String("id"),
		Title:       r.String("title", "titulo"),
		Category:    r.String("category", "categoria"),
		Description: r.String("description", "descripcion"),
		Proposer:    r.String("proposer", "proposedBy", "autor"),
		Attachments: []models.Attachment{},
	}
	for _, a := range r.List("attachments", "adjuntos") {
		idea.Attachments = append(idea.Attachments, models.Attachment{
			Name:        a.String("name", "nombre"),
			URL:         a.String("url", "data"),
			ContentType: a.String("content_type", "contentType", "type"),
			Size:        int64(a.Float("size")),
			Inline:      strings.HasPrefix(a.String("url", "data"), "data:"),
		})
	}
	if ev := r.Object("evaluation", "evaluacion"); ev != nil {
		idea.Evaluation = &models.Evaluation{
			Impact:      ev.Int("impact", "impacto"),
			Feasibility: ev.Int("feasibility", "factibilidad", "viabilidad"),
			Alignment:   ev.Int("alignment", "alineacion"),
			Urgency:     ev.Int("urgency", "urgencia"),
		}
	}
	return idea
}

// Perspective accepts either a bare name or an object.
func Perspective(v any) models.Perspective {
	switch p := v.(type) {
	case string:
		return models.Perspective{Name: strings.TrimSpace(p)}
	case map[string]any:
		r := Record(p)
		return models.Perspective{ID: r.String("id"), Name: r.String("name", "nombre")}
	}
	return models.Perspective{}
}
