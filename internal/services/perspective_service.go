package services

import (
	"context"
	"strings"

	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/progress"
	"github.com/yukikurage/release-planner/internal/utils"
)

// PerspectiveService manages task and KPI categories
type PerspectiveService struct {
	ws      *Workspace
	effects *Effects
}

func NewPerspectiveService(ws *Workspace, effects *Effects) *PerspectiveService {
	return &PerspectiveService{ws: ws, effects: effects.withDefaults()}
}

// PerspectiveView is a perspective name as offered to clients. Default
// perspectives have no id and cannot be deleted.
type PerspectiveView struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// ListPerspectives returns the defaults followed by the custom perspectives.
// Names are unique ignoring case.
func (s *PerspectiveService) ListPerspectives() []PerspectiveView {
	seen := map[string]bool{}
	out := make([]PerspectiveView, 0, len(models.DefaultPerspectives))
	for _, name := range models.DefaultPerspectives {
		seen[strings.ToLower(name)] = true
		out = append(out, PerspectiveView{Name: name, Default: true})
	}
	for _, p := range s.ws.perspectives.coll.All() {
		key := strings.ToLower(p.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, PerspectiveView{ID: p.ID, Name: p.Name})
	}
	return out
}

// Names returns every perspective name in list order.
func (s *PerspectiveService) Names() []string {
	views := s.ListPerspectives()
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = v.Name
	}
	return names
}

func (s *PerspectiveService) CreatePerspective(ctx context.Context, name string) (*models.Perspective, error) {
	name = strings.TrimSpace(name)
	if err := required("name", name); err != nil {
		return nil, err
	}
	for _, v := range s.ListPerspectives() {
		if strings.EqualFold(v.Name, name) {
			return nil, ErrPerspectiveExists
		}
	}
	p := models.Perspective{
		ID:        utils.NewID(),
		Name:      name,
		CreatedAt: s.effects.Now().UTC(),
	}
	err := s.ws.perspectives.save(ctx, p)
	return &p, err
}

// DeletePerspective removes a custom perspective. Tasks and KPIs that use
// the name keep it.
func (s *PerspectiveService) DeletePerspective(ctx context.Context, id string) error {
	if _, ok := s.ws.perspectives.coll.Get(id); !ok {
		return ErrPerspectiveNotFound
	}
	return s.ws.perspectives.remove(ctx, id)
}

// Usage counts the tasks and KPIs filed under a perspective name.
func (s *PerspectiveService) Usage(name string) (tasks, kpis int) {
	for _, t := range s.ws.Tasks() {
		if progress.MatchPerspective(t.Perspective, name) {
			tasks++
		}
	}
	for _, k := range s.ws.KPIs() {
		if progress.MatchPerspective(k.Perspective, name) {
			kpis++
		}
	}
	return tasks, kpis
}
