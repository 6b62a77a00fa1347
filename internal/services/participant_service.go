package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/utils"
)

// ParticipantService manages the people tasks, actions and publications
// are assigned to
type ParticipantService struct {
	ws      *Workspace
	effects *Effects
}

func NewParticipantService(ws *Workspace, effects *Effects) *ParticipantService {
	return &ParticipantService{ws: ws, effects: effects.withDefaults()}
}

type ParticipantInput struct {
	ID    string
	Name  string
	Email string
	Role  string
}

type UpdateParticipantInput struct {
	Name  *string
	Email *string
	Role  *string
}

func (s *ParticipantService) ListParticipants() []models.Participant {
	return s.ws.ParticipantList()
}

func (s *ParticipantService) GetParticipant(id string) (*models.Participant, error) {
	p, ok := s.ws.participants.coll.Get(id)
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return &p, nil
}

func (s *ParticipantService) CreateParticipant(ctx context.Context, input ParticipantInput) (*models.Participant, error) {
	now := s.effects.Now().UTC()
	p := models.Participant{
		ID:        utils.EnsureID(input.ID),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Role:      strings.TrimSpace(input.Role),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateParticipant(p); err != nil {
		return nil, err
	}
	if _, exists := s.ws.participants.coll.Get(p.ID); exists {
		return nil, invalid("participant %s already exists", p.ID)
	}
	err := s.ws.participants.save(ctx, p)
	return &p, err
}

func (s *ParticipantService) UpdateParticipant(ctx context.Context, id string, input UpdateParticipantInput) (*models.Participant, error) {
	p, ok := s.ws.participants.coll.Get(id)
	if !ok {
		return nil, ErrParticipantNotFound
	}
	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		p.Email = strings.TrimSpace(*input.Email)
	}
	if input.Role != nil {
		p.Role = strings.TrimSpace(*input.Role)
	}
	if err := validateParticipant(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.effects.Now().UTC()
	err := s.ws.participants.save(ctx, p)
	return &p, err
}

// DeleteParticipant removes a participant. Assignments that reference the
// id are kept and simply stop resolving.
func (s *ParticipantService) DeleteParticipant(ctx context.Context, id string) error {
	if _, ok := s.ws.participants.coll.Get(id); !ok {
		return ErrParticipantNotFound
	}
	return s.ws.participants.remove(ctx, id)
}

func validateParticipant(p models.Participant) error {
	if err := required("name", p.Name); err != nil {
		return err
	}
	if p.Email == "" {
		return nil
	}
	addr, err := mail.ParseAddress(p.Email)
	if err != nil || addr.Address != p.Email {
		return invalid("email %q is not valid", p.Email)
	}
	return nil
}
