package dto

import (
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/services"
)

// CreateLaunchRequest is the body of POST /api/launches
type CreateLaunchRequest struct {
	ID           string      `json:"id"`
	SongName     string      `json:"song_name" binding:"required"`
	Artist       string      `json:"artist"`
	LaunchDate   models.Date `json:"launch_date" binding:"required"`
	Description  string      `json:"description"`
	Participants []string    `json:"participants"`
}

func (r CreateLaunchRequest) ToInput() services.LaunchInput {
	return services.LaunchInput{
		ID:           r.ID,
		SongName:     r.SongName,
		Artist:       r.Artist,
		LaunchDate:   r.LaunchDate,
		Description:  r.Description,
		Participants: r.Participants,
	}
}

// UpdateLaunchRequest is the body of PATCH /api/launches/:id
type UpdateLaunchRequest struct {
	SongName     *string      `json:"song_name"`
	Artist       *string      `json:"artist"`
	LaunchDate   *models.Date `json:"launch_date"`
	Description  *string      `json:"description"`
	Participants *[]string    `json:"participants"`
}

func (r UpdateLaunchRequest) ToInput() services.UpdateLaunchInput {
	return services.UpdateLaunchInput{
		SongName:     r.SongName,
		Artist:       r.Artist,
		LaunchDate:   r.LaunchDate,
		Description:  r.Description,
		Participants: r.Participants,
	}
}

// CreateActionRequest is the body of POST /api/launches/:id/actions.
// Template names an action template of the phase to start from.
type CreateActionRequest struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Phase        models.Phase        `json:"phase" binding:"required"`
	Owner        string              `json:"owner"`
	Participants []string            `json:"participants"`
	StartDate    models.Date         `json:"start_date"`
	EndDate      models.Date         `json:"end_date"`
	Status       models.ActionStatus `json:"status"`
	Priority     models.Priority     `json:"priority"`
	Subtasks     []SubtaskRequest    `json:"subtasks"`
	Template     string              `json:"template"`
}

func (r CreateActionRequest) ToInput() services.ActionInput {
	return services.ActionInput{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Phase:        r.Phase,
		Owner:        r.Owner,
		Participants: r.Participants,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Status:       r.Status,
		Priority:     r.Priority,
		Subtasks:     toSubtaskInputs(r.Subtasks),
		Template:     r.Template,
	}
}

// UpdateActionRequest is the body of PATCH /api/launches/:id/actions/:action_id
type UpdateActionRequest struct {
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	Phase        *models.Phase        `json:"phase"`
	Owner        *string              `json:"owner"`
	Participants *[]string            `json:"participants"`
	StartDate    *models.Date         `json:"start_date"`
	EndDate      *models.Date         `json:"end_date"`
	Status       *models.ActionStatus `json:"status"`
	Priority     *models.Priority     `json:"priority"`
	Subtasks     *[]SubtaskRequest    `json:"subtasks"`
}

func (r UpdateActionRequest) ToInput() services.UpdateActionInput {
	return services.UpdateActionInput{
		Title:        r.Title,
		Description:  r.Description,
		Phase:        r.Phase,
		Owner:        r.Owner,
		Participants: r.Participants,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Status:       r.Status,
		Priority:     r.Priority,
		Subtasks:     toSubtaskInputsPtr(r.Subtasks),
	}
}

// SubtaskStateRequest sets a subtask's completion; without a value the
// subtask is flipped
type SubtaskStateRequest struct {
	Completed *bool `json:"completed"`
}

// PhaseRequest selects a release phase; empty means every phase
type PhaseRequest struct {
	Phase models.Phase `json:"phase"`
}

// CreatePublicationRequest is the body of POST /api/publications
type CreatePublicationRequest struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title" binding:"required"`
	Description string                   `json:"description"`
	Date        models.Date              `json:"date"`
	Time        string                   `json:"time"`
	Phase       models.Phase             `json:"phase"`
	Platform    string                   `json:"platform"`
	ContentType string                   `json:"content_type"`
	Responsible []string                 `json:"responsible"`
	Status      models.PublicationStatus `json:"status"`
	LaunchID    string                   `json:"launch_id"`
	Objectives  string                   `json:"objectives"`
	Audience    string                   `json:"audience"`
	Hashtags    []string                 `json:"hashtags"`
	Notes       string                   `json:"notes"`
}

func (r CreatePublicationRequest) ToInput() services.PublicationInput {
	return services.PublicationInput{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		Phase:       r.Phase,
		Platform:    r.Platform,
		ContentType: r.ContentType,
		Responsible: r.Responsible,
		Status:      r.Status,
		LaunchID:    r.LaunchID,
		Objectives:  r.Objectives,
		Audience:    r.Audience,
		Hashtags:    r.Hashtags,
		Notes:       r.Notes,
	}
}

// UpdatePublicationRequest is the body of PATCH /api/publications/:id
type UpdatePublicationRequest struct {
	Title       *string                   `json:"title"`
	Description *string                   `json:"description"`
	Date        *models.Date              `json:"date"`
	Time        *string                   `json:"time"`
	Phase       *models.Phase             `json:"phase"`
	Platform    *string                   `json:"platform"`
	ContentType *string                   `json:"content_type"`
	Responsible *[]string                 `json:"responsible"`
	Status      *models.PublicationStatus `json:"status"`
	LaunchID    *string                   `json:"launch_id"`
	Objectives  *string                   `json:"objectives"`
	Audience    *string                   `json:"audience"`
	Hashtags    *[]string                 `json:"hashtags"`
	Notes       *string                   `json:"notes"`
}

func (r UpdatePublicationRequest) ToInput() services.UpdatePublicationInput {
	return services.UpdatePublicationInput{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		Phase:       r.Phase,
		Platform:    r.Platform,
		ContentType: r.ContentType,
		Responsible: r.Responsible,
		Status:      r.Status,
		LaunchID:    r.LaunchID,
		Objectives:  r.Objectives,
		Audience:    r.Audience,
		Hashtags:    r.Hashtags,
		Notes:       r.Notes,
	}
}

// DraftRequest is the body of POST /api/assistant/publications
type DraftRequest struct {
	LaunchID string       `json:"launch_id" binding:"required"`
	Phase    models.Phase `json:"phase"`
	Count    int          `json:"count"`
}
