package dto

import (
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/services"
)

// CreateIdeaRequest is the body of POST /api/ideas
type CreateIdeaRequest struct {
	ID          string             `json:"id"`
	Title       string             `json:"title" binding:"required"`
	Category    string             `json:"category" binding:"required"`
	Description string             `json:"description"`
	Proposer    string             `json:"proposer"`
	Evaluation  *models.Evaluation `json:"evaluation"`
}

func (r CreateIdeaRequest) ToInput() services.IdeaInput {
	return services.IdeaInput{
		ID:          r.ID,
		Title:       r.Title,
		Category:    r.Category,
		Description: r.Description,
		Proposer:    r.Proposer,
		Evaluation:  r.Evaluation,
	}
}

// UpdateIdeaRequest is the body of PATCH /api/ideas/:id
type UpdateIdeaRequest struct {
	Title       *string `json:"title"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Proposer    *string `json:"proposer"`
}

func (r UpdateIdeaRequest) ToInput() services.UpdateIdeaInput {
	return services.UpdateIdeaInput{
		Title:       r.Title,
		Category:    r.Category,
		Description: r.Description,
		Proposer:    r.Proposer,
	}
}

// EvaluationRequest carries the four ratings, each expected in [1,10]
type EvaluationRequest struct {
	Impact      int `json:"impact" binding:"required"`
	Feasibility int `json:"feasibility" binding:"required"`
	Alignment   int `json:"alignment" binding:"required"`
	Urgency     int `json:"urgency" binding:"required"`
}

func (r EvaluationRequest) ToModel() models.Evaluation {
	return models.Evaluation{
		Impact:      r.Impact,
		Feasibility: r.Feasibility,
		Alignment:   r.Alignment,
		Urgency:     r.Urgency,
	}
}

// LinkRequest attaches an external URL to an idea
type LinkRequest struct {
	Name string `json:"name"`
	URL  string `json:"url" binding:"required"`
}

// CreateParticipantRequest is the body of POST /api/participants
type CreateParticipantRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (r CreateParticipantRequest) ToInput() services.ParticipantInput {
	return services.ParticipantInput{ID: r.ID, Name: r.Name, Email: r.Email, Role: r.Role}
}

// UpdateParticipantRequest is the body of PATCH /api/participants/:id
type UpdateParticipantRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

func (r UpdateParticipantRequest) ToInput() services.UpdateParticipantInput {
	return services.UpdateParticipantInput{Name: r.Name, Email: r.Email, Role: r.Role}
}

// CreatePerspectiveRequest is the body of POST /api/perspectives
type CreatePerspectiveRequest struct {
	Name string `json:"name" binding:"required"`
}
