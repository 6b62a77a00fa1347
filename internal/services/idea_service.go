package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yukikurage/release-planner/internal/blob"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/scoring"
	"github.com/yukikurage/release-planner/internal/utils"
)

// IdeaService handles the ideas backlog
type IdeaService struct {
	ws       *Workspace
	attacher *blob.Attacher
	effects  *Effects
}

// NewIdeaService creates a new IdeaService. attacher may be nil, in which
// case file attachments are rejected and only links can be added.
func NewIdeaService(ws *Workspace, attacher *blob.Attacher, effects *Effects) *IdeaService {
	return &IdeaService{ws: ws, attacher: attacher, effects: effects.withDefaults()}
}

// ListIdeasInput represents filters for listing ideas
type ListIdeasInput struct {
	Category string
	Tier     scoring.Tier
	// Ranked orders by score, best first. Unevaluated ideas come last.
	Ranked bool
}

type IdeaInput struct {
	ID          string
	Title       string
	Category    string
	Description string
	Proposer    string
	Evaluation  *models.Evaluation
}

type UpdateIdeaInput struct {
	Title       *string
	Category    *string
	Description *string
	Proposer    *string
}

func (s *IdeaService) ListIdeas(input ListIdeasInput) []models.Idea {
	ideas := s.ws.ideas.coll.Filter(func(i models.Idea) bool {
		if input.Category != "" && !strings.EqualFold(i.Category, input.Category) {
			return false
		}
		if input.Tier != "" && i.Tier != string(input.Tier) {
			return false
		}
		return true
	})
	if input.Ranked {
		sort.SliceStable(ideas, func(a, b int) bool {
			ea, eb := ideas[a].Evaluation != nil, ideas[b].Evaluation != nil
			if ea != eb {
				return ea
			}
			return ideas[a].Score > ideas[b].Score
		})
	}
	return ideas
}

func (s *IdeaService) GetIdea(id string) (*models.Idea, error) {
	idea, ok := s.ws.ideas.coll.Get(id)
	if !ok {
		return nil, ErrIdeaNotFound
	}
	return &idea, nil
}

func (s *IdeaService) CreateIdea(ctx context.Context, input IdeaInput) (*models.Idea, error) {
	now := s.effects.Now().UTC()
	idea := models.Idea{
		ID:          utils.EnsureID(input.ID),
		Title:       strings.TrimSpace(input.Title),
		Category:    strings.TrimSpace(input.Category),
		Description: input.Description,
		Proposer:    input.Proposer,
		Attachments: []models.Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateIdea(idea); err != nil {
		return nil, err
	}
	if _, exists := s.ws.ideas.coll.Get(idea.ID); exists {
		return nil, invalid("idea %s already exists", idea.ID)
	}
	if input.Evaluation != nil {
		applyEvaluation(&idea, *input.Evaluation)
	}
	err := s.ws.ideas.save(ctx, idea)
	return &idea, err
}

func (s *IdeaService) UpdateIdea(ctx context.Context, id string, input UpdateIdeaInput) (*models.Idea, error) {
	return s.mutate(ctx, id, func(idea *models.Idea) error {
		if input.Title != nil {
			idea.Title = strings.TrimSpace(*input.Title)
		}
		if input.Category != nil {
			idea.Category = strings.TrimSpace(*input.Category)
		}
		if input.Description != nil {
			idea.Description = *input.Description
		}
		if input.Proposer != nil {
			idea.Proposer = *input.Proposer
		}
		return validateIdea(*idea)
	})
}

func (s *IdeaService) DeleteIdea(ctx context.Context, id string) error {
	if _, ok := s.ws.ideas.coll.Get(id); !ok {
		return ErrIdeaNotFound
	}
	return s.ws.ideas.remove(ctx, id)
}

// Evaluate rates an idea. Ratings outside [1,10] are clamped; the stored
// score is exact and the tier is derived from it.
func (s *IdeaService) Evaluate(ctx context.Context, id string, e models.Evaluation) (*models.Idea, scoring.Result, error) {
	var result scoring.Result
	idea, err := s.mutate(ctx, id, func(idea *models.Idea) error {
		result = applyEvaluation(idea, e)
		return nil
	})
	return idea, result, err
}

// ClearEvaluation removes the rating of an idea.
func (s *IdeaService) ClearEvaluation(ctx context.Context, id string) (*models.Idea, error) {
	return s.mutate(ctx, id, func(idea *models.Idea) error {
		idea.Evaluation = nil
		idea.Score = 0
		idea.Tier = ""
		return nil
	})
}

// AddAttachment uploads a file and records it on the idea.
func (s *IdeaService) AddAttachment(ctx context.Context, id, name string, data []byte) (*models.Attachment, error) {
	if _, ok := s.ws.ideas.coll.Get(id); !ok {
		return nil, ErrIdeaNotFound
	}
	if s.attacher == nil {
		return nil, invalid("file attachments are not enabled")
	}
	if err := required("file name", name); err != nil {
		return nil, err
	}
	att, err := s.attacher.Attach(ctx, "ideas/"+id, name, data)
	if errors.Is(err, blob.ErrTooLarge) || errors.Is(err, blob.ErrEmptyFile) {
		return nil, invalid("%v", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}
	_, err = s.mutate(ctx, id, func(idea *models.Idea) error {
		idea.Attachments = upsertAttachment(idea.Attachments, att)
		return nil
	})
	return &att, err
}

// AddLink records an external URL as an attachment.
func (s *IdeaService) AddLink(ctx context.Context, id, name, url string) (*models.Attachment, error) {
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, invalid("link %q must be an http(s) URL", url)
	}
	if strings.TrimSpace(name) == "" {
		name = url
	}
	att := models.Attachment{Name: strings.TrimSpace(name), URL: url}
	_, err := s.mutate(ctx, id, func(idea *models.Idea) error {
		idea.Attachments = upsertAttachment(idea.Attachments, att)
		return nil
	})
	if errors.Is(err, ErrIdeaNotFound) {
		return nil, err
	}
	return &att, err
}

// RemoveAttachment drops the attachment with the given name. Uploaded
// objects stay in the blob store.
func (s *IdeaService) RemoveAttachment(ctx context.Context, id, name string) (*models.Idea, error) {
	return s.mutate(ctx, id, func(idea *models.Idea) error {
		for i, a := range idea.Attachments {
			if a.Name == name {
				idea.Attachments = append(idea.Attachments[:i], idea.Attachments[i+1:]...)
				return nil
			}
		}
		return ErrAttachmentNotFound
	})
}

func (s *IdeaService) mutate(ctx context.Context, id string, fn func(*models.Idea) error) (*models.Idea, error) {
	idea, ok := s.ws.ideas.coll.Get(id)
	if !ok {
		return nil, ErrIdeaNotFound
	}
	idea.Attachments = append([]models.Attachment(nil), idea.Attachments...)
	if err := fn(&idea); err != nil {
		return nil, err
	}
	idea.UpdatedAt = s.effects.Now().UTC()
	err := s.ws.ideas.save(ctx, idea)
	return &idea, err
}

func applyEvaluation(idea *models.Idea, e models.Evaluation) scoring.Result {
	clamped := scoring.Clamp(e)
	result := scoring.Evaluate(clamped)
	idea.Evaluation = &clamped
	idea.Score = result.Score
	idea.Tier = string(result.Tier)
	return result
}

// upsertAttachment replaces an attachment of the same name or appends.
func upsertAttachment(list []models.Attachment, att models.Attachment) []models.Attachment {
	for i, a := range list {
		if a.Name == att.Name {
			list[i] = att
			return list
		}
	}
	return append(list, att)
}

func validateIdea(i models.Idea) error {
	if err := required("title", i.Title); err != nil {
		return err
	}
	return required("category", i.Category)
}
