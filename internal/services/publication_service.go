package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/templates"
	"github.com/yukikurage/release-planner/internal/utils"
)

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// PublicationService handles the publication calendar
type PublicationService struct {
	ws      *Workspace
	catalog *templates.Catalog
	effects *Effects
}

// NewPublicationService creates a new PublicationService
func NewPublicationService(ws *Workspace, catalog *templates.Catalog, effects *Effects) *PublicationService {
	if catalog == nil {
		catalog = templates.Default()
	}
	return &PublicationService{ws: ws, catalog: catalog, effects: effects.withDefaults()}
}

// ListPublicationsInput represents filters for listing publications.
// From and To bound the date inclusively.
type ListPublicationsInput struct {
	LaunchID string
	Phase    models.Phase
	Platform string
	Status   *models.PublicationStatus
	From     models.Date
	To       models.Date
}

// PublicationInput carries the client-editable fields of a publication
type PublicationInput struct {
	ID          string
	Title       string
	Description string
	Date        models.Date
	Time        string
	Phase       models.Phase
	Platform    string
	ContentType string
	Responsible []string
	Status      models.PublicationStatus
	LaunchID    string
	Objectives  string
	Audience    string
	Hashtags    []string
	Notes       string
}

// UpdatePublicationInput represents a partial update
type UpdatePublicationInput struct {
	Title       *string
	Description *string
	Date        *models.Date
	Time        *string
	Phase       *models.Phase
	Platform    *string
	ContentType *string
	Responsible *[]string
	Status      *models.PublicationStatus
	LaunchID    *string
	Objectives  *string
	Audience    *string
	Hashtags    *[]string
	Notes       *string
}

func (s *PublicationService) ListPublications(input ListPublicationsInput) []models.Publication {
	return s.ws.publications.coll.Filter(func(p models.Publication) bool {
		if input.LaunchID != "" && p.LaunchID != input.LaunchID {
			return false
		}
		if input.Phase != "" && p.Phase != input.Phase {
			return false
		}
		if input.Platform != "" && !strings.EqualFold(p.Platform, input.Platform) {
			return false
		}
		if input.Status != nil && p.Status != *input.Status {
			return false
		}
		if input.From != "" && p.Date.Before(input.From) {
			return false
		}
		if input.To != "" && input.To.Before(p.Date) {
			return false
		}
		return true
	})
}

func (s *PublicationService) GetPublication(id string) (*models.Publication, error) {
	pub, ok := s.ws.publications.coll.Get(id)
	if !ok {
		return nil, ErrPublicationNotFound
	}
	return &pub, nil
}

func (s *PublicationService) CreatePublication(ctx context.Context, input PublicationInput) (*models.Publication, error) {
	now := s.effects.Now().UTC()
	pub := models.Publication{
		ID:          utils.EnsureID(input.ID),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Date:        input.Date,
		Time:        strings.TrimSpace(input.Time),
		Phase:       input.Phase,
		Platform:    strings.TrimSpace(input.Platform),
		ContentType: strings.TrimSpace(input.ContentType),
		Responsible: cleanList(input.Responsible),
		Status:      input.Status,
		LaunchID:    input.LaunchID,
		Objectives:  input.Objectives,
		Audience:    input.Audience,
		Hashtags:    cleanHashtags(input.Hashtags),
		Notes:       input.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if pub.Status == "" {
		pub.Status = models.PublicationStatusPlanned
	}
	if err := s.validate(pub); err != nil {
		return nil, err
	}
	if err := s.checkLaunch(pub.LaunchID); err != nil {
		return nil, err
	}
	if _, exists := s.ws.publications.coll.Get(pub.ID); exists {
		return nil, invalid("publication %s already exists", pub.ID)
	}
	err := s.ws.publications.save(ctx, pub)
	return &pub, err
}

func (s *PublicationService) UpdatePublication(ctx context.Context, id string, input UpdatePublicationInput) (*models.Publication, error) {
	pub, ok := s.ws.publications.coll.Get(id)
	if !ok {
		return nil, ErrPublicationNotFound
	}
	pub.Responsible = append([]string(nil), pub.Responsible...)
	pub.Hashtags = append([]string(nil), pub.Hashtags...)

	if input.Title != nil {
		pub.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		pub.Description = *input.Description
	}
	if input.Date != nil {
		pub.Date = *input.Date
	}
	if input.Time != nil {
		pub.Time = strings.TrimSpace(*input.Time)
	}
	if input.Phase != nil {
		pub.Phase = *input.Phase
	}
	if input.Platform != nil {
		pub.Platform = strings.TrimSpace(*input.Platform)
	}
	if input.ContentType != nil {
		pub.ContentType = strings.TrimSpace(*input.ContentType)
	}
	if input.Responsible != nil {
		pub.Responsible = cleanList(*input.Responsible)
	}
	if input.Status != nil {
		pub.Status = *input.Status
	}
	if input.LaunchID != nil && *input.LaunchID != pub.LaunchID {
		if err := s.checkLaunch(*input.LaunchID); err != nil {
			return nil, err
		}
		pub.LaunchID = *input.LaunchID
	}
	if input.Objectives != nil {
		pub.Objectives = *input.Objectives
	}
	if input.Audience != nil {
		pub.Audience = *input.Audience
	}
	if input.Hashtags != nil {
		pub.Hashtags = cleanHashtags(*input.Hashtags)
	}
	if input.Notes != nil {
		pub.Notes = *input.Notes
	}
	if err := s.validate(pub); err != nil {
		return nil, err
	}
	pub.UpdatedAt = s.effects.Now().UTC()
	err := s.ws.publications.save(ctx, pub)
	return &pub, err
}

func (s *PublicationService) DeletePublication(ctx context.Context, id string) error {
	if _, ok := s.ws.publications.coll.Get(id); !ok {
		return ErrPublicationNotFound
	}
	return s.ws.publications.remove(ctx, id)
}

// PlanContent creates planned publications for a launch from the content
// templates of a phase (every phase when empty). Dates follow the launch
// date and never fall before today. Templates already planned for the
// launch under the same title and phase are skipped.
func (s *PublicationService) PlanContent(ctx context.Context, launchID string, phase models.Phase) ([]models.Publication, error) {
	launch, ok := s.ws.launches.coll.Get(launchID)
	if !ok {
		return nil, ErrLaunchNotFound
	}
	release, ok := launch.LaunchDate.Time()
	if !ok {
		return nil, invalid("launch has no launch date")
	}
	if phase != "" && !phase.Valid() {
		return nil, invalid("unknown phase %q", phase)
	}

	existing := map[string]bool{}
	for _, p := range s.ListPublications(ListPublicationsInput{LaunchID: launchID}) {
		existing[actionKey(p.Phase, p.Title)] = true
	}

	now := s.effects.Now().UTC()
	var created []models.Publication
	var saveErr error
	for _, sc := range templates.ScheduleContent(release, s.effects.Now(), s.catalog.ContentFor(phase)) {
		if existing[actionKey(sc.Template.Phase, sc.Template.Title)] {
			continue
		}
		pub := models.Publication{
			ID:          utils.NewID(),
			Date:        sc.Date,
			Responsible: append([]string(nil), launch.Participants...),
			Status:      models.PublicationStatusPlanned,
			LaunchID:    launch.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		templates.ApplyContent(sc.Template, &pub)
		if err := s.ws.publications.save(ctx, pub); err != nil && saveErr == nil {
			saveErr = err
		}
		created = append(created, pub)
	}
	if created == nil {
		created = []models.Publication{}
	}
	return created, saveErr
}

func (s *PublicationService) validate(p models.Publication) error {
	if err := required("title", p.Title); err != nil {
		return err
	}
	if !p.Date.Valid() {
		return invalid("date %q is not YYYY-MM-DD", p.Date)
	}
	if p.Time != "" && !timePattern.MatchString(p.Time) {
		return invalid("time %q is not HH:MM", p.Time)
	}
	if p.Phase != "" && !p.Phase.Valid() {
		return invalid("unknown phase %q", p.Phase)
	}
	if !p.Status.Valid() {
		return invalid("unknown status %q", p.Status)
	}
	return nil
}

// checkLaunch rejects references to unknown launches. Existing references
// are left alone, so deleting a launch does not block later edits.
func (s *PublicationService) checkLaunch(id string) error {
	if id == "" {
		return nil
	}
	if _, ok := s.ws.launches.coll.Get(id); !ok {
		return ErrLaunchNotFound
	}
	return nil
}

// cleanHashtags drops leading '#' and duplicates.
func cleanHashtags(tags []string) []string {
	trimmed := make([]string, 0, len(tags))
	for _, t := range tags {
		trimmed = append(trimmed, strings.TrimLeft(strings.TrimSpace(t), "#"))
	}
	return cleanList(trimmed)
}
