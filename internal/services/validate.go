package services

import (
	"fmt"
	"strings"

	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/utils"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid("%s is required", field)
	}
	return nil
}

func validDates(start, end models.Date) error {
	if !start.Valid() {
		return invalid("start date %q is not YYYY-MM-DD", start)
	}
	if !end.Valid() {
		return invalid("end date %q is not YYYY-MM-DD", end)
	}
	if start != "" && end != "" && end.Before(start) {
		return invalid("end date is before start date")
	}
	return nil
}

// SubtaskInput is a subtask as sent by clients; the id is optional.
type SubtaskInput struct {
	ID        string
	Name      string
	Completed bool
}

func buildSubtasks(in []SubtaskInput) ([]models.Subtask, error) {
	out := make([]models.Subtask, 0, len(in))
	seen := map[string]bool{}
	for _, st := range in {
		if strings.TrimSpace(st.Name) == "" {
			return nil, invalid("subtask name is required")
		}
		id := utils.EnsureID(st.ID)
		if seen[id] {
			return nil, invalid("duplicate subtask id %q", id)
		}
		seen[id] = true
		out = append(out, models.Subtask{ID: id, Name: strings.TrimSpace(st.Name), Completed: st.Completed})
	}
	return out, nil
}

func cleanList(ids []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
