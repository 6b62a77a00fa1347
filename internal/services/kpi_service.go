package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yukikurage/release-planner/internal/export"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/progress"
	"github.com/yukikurage/release-planner/internal/utils"
)

// KPIService handles KPI business logic
type KPIService struct {
	ws      *Workspace
	effects *Effects
}

// NewKPIService creates a new KPIService
func NewKPIService(ws *Workspace, effects *Effects) *KPIService {
	return &KPIService{ws: ws, effects: effects.withDefaults()}
}

// KPIInput carries the client-editable fields of a KPI
type KPIInput struct {
	ID            string
	Perspective   string
	Objective     string
	Indicator     string
	CurrentValue  float64
	TargetValue   float64
	Unit          string
	AutoCalculate bool
}

// UpdateKPIInput represents a partial update
type UpdateKPIInput struct {
	Perspective   *string
	Objective     *string
	Indicator     *string
	CurrentValue  *float64
	TargetValue   *float64
	Unit          *string
	AutoCalculate *bool
}

// KPIView is a KPI with its derived figures
type KPIView struct {
	models.KPI
	Percent     float64 `json:"percent"`
	LinkedTasks int     `json:"linked_tasks"`
}

// ListKPIs returns KPIs, optionally for one perspective
func (s *KPIService) ListKPIs(perspective string) []KPIView {
	tasks := s.ws.tasks.coll.All()
	kpis := s.ws.kpis.coll.Filter(func(k models.KPI) bool {
		return perspective == "" || progress.MatchPerspective(k.Perspective, perspective)
	})
	out := make([]KPIView, 0, len(kpis))
	for _, k := range kpis {
		out = append(out, KPIView{
			KPI:         k,
			Percent:     progress.KPIPercent(k),
			LinkedTasks: len(progress.LinkedTasks(k, tasks)),
		})
	}
	return out
}

// GetKPI returns a KPI by id
func (s *KPIService) GetKPI(id string) (*models.KPI, error) {
	kpi, ok := s.ws.kpis.coll.Get(id)
	if !ok {
		return nil, ErrKPINotFound
	}
	return &kpi, nil
}

// CreateKPI validates and stores a KPI. Auto-calculated KPIs get their
// current value from the linked tasks right away.
func (s *KPIService) CreateKPI(ctx context.Context, input KPIInput) (*models.KPI, error) {
	now := s.effects.Now().UTC()
	kpi := models.KPI{
		ID:            utils.EnsureID(input.ID),
		Perspective:   strings.TrimSpace(input.Perspective),
		Objective:     input.Objective,
		Indicator:     strings.TrimSpace(input.Indicator),
		CurrentValue:  input.CurrentValue,
		TargetValue:   input.TargetValue,
		Unit:          input.Unit,
		AutoCalculate: input.AutoCalculate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := validateKPI(kpi); err != nil {
		return nil, err
	}
	s.applyAuto(&kpi)
	err := s.ws.kpis.save(ctx, kpi)
	return &kpi, err
}

// UpdateKPI applies a partial update
func (s *KPIService) UpdateKPI(ctx context.Context, id string, input UpdateKPIInput) (*models.KPI, error) {
	kpi, ok := s.ws.kpis.coll.Get(id)
	if !ok {
		return nil, ErrKPINotFound
	}
	if input.Perspective != nil {
		kpi.Perspective = strings.TrimSpace(*input.Perspective)
	}
	if input.Objective != nil {
		kpi.Objective = *input.Objective
	}
	if input.Indicator != nil {
		kpi.Indicator = strings.TrimSpace(*input.Indicator)
	}
	if input.CurrentValue != nil {
		kpi.CurrentValue = *input.CurrentValue
	}
	if input.TargetValue != nil {
		kpi.TargetValue = *input.TargetValue
	}
	if input.Unit != nil {
		kpi.Unit = *input.Unit
	}
	if input.AutoCalculate != nil {
		kpi.AutoCalculate = *input.AutoCalculate
	}
	if err := validateKPI(kpi); err != nil {
		return nil, err
	}
	s.applyAuto(&kpi)
	kpi.UpdatedAt = s.effects.Now().UTC()
	err := s.ws.kpis.save(ctx, kpi)
	return &kpi, err
}

// DeleteKPI removes a KPI
func (s *KPIService) DeleteKPI(ctx context.Context, id string) error {
	if _, ok := s.ws.kpis.coll.Get(id); !ok {
		return ErrKPINotFound
	}
	return s.ws.kpis.remove(ctx, id)
}

// Recalculate refreshes every auto-calculated KPI from the current tasks
// and saves the ones whose value changed.
func (s *KPIService) Recalculate(ctx context.Context) ([]models.KPI, error) {
	kpis := s.ws.kpis.coll.All()
	changed := progress.Recalculate(kpis, s.ws.tasks.coll.All())

	out := make([]models.KPI, 0, len(changed))
	var errs []error
	for _, i := range changed {
		kpis[i].UpdatedAt = s.effects.Now().UTC()
		if err := s.ws.kpis.save(ctx, kpis[i]); err != nil {
			errs = append(errs, err)
		}
		out = append(out, kpis[i])
	}
	return out, errors.Join(errs...)
}

// ImportKPIs reads a spreadsheet and stores every KPI found in it
func (s *KPIService) ImportKPIs(ctx context.Context, r io.Reader, filename string) ([]models.KPI, error) {
	parsed, err := export.ImportKPIs(r, filename)
	if err != nil {
		if errors.Is(err, export.ErrNoRecords) || errors.Is(err, export.ErrNoIndicatorColumn) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	now := s.effects.Now().UTC()
	var errs []error
	for i := range parsed {
		parsed[i].ID = utils.NewID()
		parsed[i].CreatedAt = now
		parsed[i].UpdatedAt = now
		if err := s.ws.kpis.save(ctx, parsed[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return parsed, errors.Join(errs...)
}

func (s *KPIService) applyAuto(kpi *models.KPI) {
	if !kpi.AutoCalculate {
		return
	}
	if v, ok := progress.KPIValue(*kpi, s.ws.tasks.coll.All()); ok {
		kpi.CurrentValue = v
	}
}

func validateKPI(k models.KPI) error {
	if err := required("indicator", k.Indicator); err != nil {
		return err
	}
	if k.TargetValue < 0 {
		return invalid("target value cannot be negative")
	}
	return nil
}
