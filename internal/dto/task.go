package dto

import (
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/services"
)

// SubtaskRequest is a subtask in a request body; the id is optional
type SubtaskRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

func toSubtaskInputs(in []SubtaskRequest) []services.SubtaskInput {
	out := make([]services.SubtaskInput, len(in))
	for i, st := range in {
		out[i] = services.SubtaskInput{ID: st.ID, Name: st.Name, Completed: st.Completed}
	}
	return out
}

func toSubtaskInputsPtr(in *[]SubtaskRequest) *[]services.SubtaskInput {
	if in == nil {
		return nil
	}
	out := toSubtaskInputs(*in)
	return &out
}

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	ID           string            `json:"id"`
	Perspective  string            `json:"perspective"`
	Activity     string            `json:"activity" binding:"required"`
	Description  string            `json:"description"`
	Owner        string            `json:"owner"`
	Participants []string          `json:"participants"`
	StartDate    models.Date       `json:"start_date"`
	EndDate      models.Date       `json:"end_date"`
	Status       models.TaskStatus `json:"status"`
	Priority     models.Priority   `json:"priority"`
	Subtasks     []SubtaskRequest  `json:"subtasks"`
}

func (r CreateTaskRequest) ToInput() services.TaskInput {
	return services.TaskInput{
		ID:           r.ID,
		Perspective:  r.Perspective,
		Activity:     r.Activity,
		Description:  r.Description,
		Owner:        r.Owner,
		Participants: r.Participants,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Status:       r.Status,
		Priority:     r.Priority,
		Subtasks:     toSubtaskInputs(r.Subtasks),
	}
}

// UpdateTaskRequest is the body of PATCH /api/tasks/:id; omitted fields
// are left unchanged
type UpdateTaskRequest struct {
	Perspective  *string            `json:"perspective"`
	Activity     *string            `json:"activity"`
	Description  *string            `json:"description"`
	Owner        *string            `json:"owner"`
	Participants *[]string          `json:"participants"`
	StartDate    *models.Date       `json:"start_date"`
	EndDate      *models.Date       `json:"end_date"`
	Status       *models.TaskStatus `json:"status"`
	Priority     *models.Priority   `json:"priority"`
	Subtasks     *[]SubtaskRequest  `json:"subtasks"`
}

func (r UpdateTaskRequest) ToInput() services.UpdateTaskInput {
	return services.UpdateTaskInput{
		Perspective:  r.Perspective,
		Activity:     r.Activity,
		Description:  r.Description,
		Owner:        r.Owner,
		Participants: r.Participants,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Status:       r.Status,
		Priority:     r.Priority,
		Subtasks:     toSubtaskInputsPtr(r.Subtasks),
	}
}

// TaskDTO is a task with its derived progress
type TaskDTO struct {
	models.Task
	Progress float64 `json:"progress"`
}

// CreateKPIRequest is the body of POST /api/kpis
type CreateKPIRequest struct {
	ID            string  `json:"id"`
	Perspective   string  `json:"perspective"`
	Objective     string  `json:"objective"`
	Indicator     string  `json:"indicator" binding:"required"`
	CurrentValue  float64 `json:"current_value"`
	TargetValue   float64 `json:"target_value"`
	Unit          string  `json:"unit"`
	AutoCalculate bool    `json:"auto_calculate"`
}

func (r CreateKPIRequest) ToInput() services.KPIInput {
	return services.KPIInput{
		ID:            r.ID,
		Perspective:   r.Perspective,
		Objective:     r.Objective,
		Indicator:     r.Indicator,
		CurrentValue:  r.CurrentValue,
		TargetValue:   r.TargetValue,
		Unit:          r.Unit,
		AutoCalculate: r.AutoCalculate,
	}
}

// UpdateKPIRequest is the body of PATCH /api/kpis/:id
type UpdateKPIRequest struct {
	Perspective   *string  `json:"perspective"`
	Objective     *string  `json:"objective"`
	Indicator     *string  `json:"indicator"`
	CurrentValue  *float64 `json:"current_value"`
	TargetValue   *float64 `json:"target_value"`
	Unit          *string  `json:"unit"`
	AutoCalculate *bool    `json:"auto_calculate"`
}

func (r UpdateKPIRequest) ToInput() services.UpdateKPIInput {
	return services.UpdateKPIInput{
		Perspective:   r.Perspective,
		Objective:     r.Objective,
		Indicator:     r.Indicator,
		CurrentValue:  r.CurrentValue,
		TargetValue:   r.TargetValue,
		Unit:          r.Unit,
		AutoCalculate: r.AutoCalculate,
	}
}
