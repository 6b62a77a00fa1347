package export

import (
	"io"
	"strings"

	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/progress"
	"github.com/yukikurage/release-planner/internal/scoring"
)

func NewLookup(participants []models.Participant, launches []models.Launch) Lookup {
	lk := Lookup{
		Participants: make(map[string]string, len(participants)),
		Launches:     make(map[string]string, len(launches)),
	}
	for _, p := range participants {
		lk.Participants[p.ID] = p.Name
	}
	for _, l := range launches {
		lk.Launches[l.ID] = l.SongName
	}
	return lk
}

func phaseOrder() []string {
	out := make([]string, len(models.Phases))
	for i, p := range models.Phases {
		out[i] = string(p)
	}
	return out
}

var publicationStatuses = []models.PublicationStatus{
	models.PublicationStatusPlanned,
	models.PublicationStatusInProgress,
	models.PublicationStatusPublished,
	models.PublicationStatusCancelled,
}

// Publications writes the content calendar: the full list plus By Phase,
// By Platform and By Week summaries.
func Publications(w io.Writer, pubs []models.Publication, lk Lookup) error {
	if len(pubs) == 0 {
		return ErrNoRecords
	}
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	defer wb.close()

	rows := make([][]any, 0, len(pubs))
	for _, p := range pubs {
		t, ok := p.Date.Time()
		rows = append(rows, []any{
			string(p.Date), p.Time, isoWeek(t, ok), p.Title, string(p.Phase), p.Platform,
			p.ContentType, string(p.Status), lk.launch(p.LaunchID), lk.participants(p.Responsible),
			p.Objectives, p.Audience, strings.Join(p.Hashtags, " "), p.Notes,
		})
	}
	if err := wb.sheet("Publications", []string{
		"Date", "Time", "Week", "Title", "Phase", "Platform", "Content Type", "Status",
		"Launch", "Responsible", "Objectives", "Audience", "Hashtags", "Notes",
	}, rows); err != nil {
		return err
	}

	status := func(p models.Publication) string { return string(p.Status) }
	statusHeader := []string{"Total"}
	for _, s := range publicationStatuses {
		statusHeader = append(statusHeader, string(s))
	}
	summary := func(name, label string, groups []*group) error {
		rows := make([][]any, 0, len(groups))
		for _, g := range groups {
			row := []any{g.key, g.total}
			for _, s := range publicationStatuses {
				row = append(row, g.counts[string(s)])
			}
			rows = append(rows, row)
		}
		return wb.sheet(name, append([]string{label}, statusHeader...), rows)
	}

	if err := summary("By Phase", "Phase",
		groupBy(pubs, func(p models.Publication) string { return string(p.Phase) }, status, nil, phaseOrder())); err != nil {
		return err
	}
	if err := summary("By Platform", "Platform",
		groupBy(pubs, func(p models.Publication) string { return p.Platform }, status, nil, nil)); err != nil {
		return err
	}
	if err := summary("By Week", "Week",
		groupBy(pubs, func(p models.Publication) string {
			t, ok := p.Date.Time()
			return isoWeek(t, ok)
		}, status, nil, nil)); err != nil {
		return err
	}

	return wb.write(w)
}

// Tasks writes the task list plus By Perspective and By Status summaries.
func Tasks(w io.Writer, tasks []models.Task, lk Lookup) error {
	if len(tasks) == 0 {
		return ErrNoRecords
	}
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	defer wb.close()

	rows := make([][]any, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []any{
			t.Perspective, t.Activity, t.Description, lk.participant(t.Owner), lk.participants(t.Participants),
			string(t.StartDate), string(t.EndDate), string(t.Status), string(t.Priority),
			len(t.Subtasks), models.CompletedCount(t.Subtasks), percent(progress.TaskPercent(t)),
		})
	}
	if err := wb.sheet("Tasks", []string{
		"Perspective", "Activity", "Description", "Owner", "Participants", "Start", "End",
		"Status", "Priority", "Subtasks", "Subtasks Done", "Progress %",
	}, rows); err != nil {
		return err
	}

	byPerspective := groupBy(tasks,
		func(t models.Task) string { return t.Perspective },
		func(t models.Task) string { return string(t.Status) },
		progress.TaskPercent,
		models.DefaultPerspectives)
	rows = rows[:0]
	for _, g := range byPerspective {
		rows = append(rows, []any{
			g.key, g.total,
			g.counts[string(models.TaskStatusPending)],
			g.counts[string(models.TaskStatusInProgress)],
			g.counts[string(models.TaskStatusCompleted)],
			percent(g.sum / float64(g.total)),
		})
	}
	if err := wb.sheet("By Perspective", []string{"Perspective", "Total", "pending", "in-progress", "completed", "Average Progress %"}, rows); err != nil {
		return err
	}

	byStatus := groupBy(tasks, func(t models.Task) string { return string(t.Status) }, nil, nil,
		[]string{string(models.TaskStatusPending), string(models.TaskStatusInProgress), string(models.TaskStatusCompleted)})
	rows = rows[:0]
	for _, g := range byStatus {
		rows = append(rows, []any{g.key, g.total})
	}
	if err := wb.sheet("By Status", []string{"Status", "Count"}, rows); err != nil {
		return err
	}

	return wb.write(w)
}

type launchAction struct {
	launch models.Launch
	action models.Action
}

func actionPercent(a models.Action) float64 {
	if len(a.Subtasks) > 0 {
		return 100 * float64(models.CompletedCount(a.Subtasks)) / float64(len(a.Subtasks))
	}
	if a.Status == models.ActionStatusCompleted {
		return 100
	}
	return 0
}

// Launches writes every action of every launch plus By Phase and By Status
// summaries.
func Launches(w io.Writer, launches []models.Launch, lk Lookup) error {
	var all []launchAction
	for _, l := range launches {
		for _, a := range l.Actions {
			all = append(all, launchAction{launch: l, action: a})
		}
	}
	if len(all) == 0 {
		return ErrNoRecords
	}
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	defer wb.close()

	rows := make([][]any, 0, len(all))
	for _, la := range all {
		a := la.action
		rows = append(rows, []any{
			la.launch.SongName, la.launch.Artist, string(la.launch.LaunchDate), a.Title, string(a.Phase),
			lk.participant(a.Owner), lk.participants(a.Participants), string(a.StartDate), string(a.EndDate),
			string(a.Status), string(a.Priority), percent(actionPercent(a)),
		})
	}
	if err := wb.sheet("Actions", []string{
		"Song", "Artist", "Launch Date", "Action", "Phase", "Owner", "Participants",
		"Start", "End", "Status", "Priority", "Progress %",
	}, rows); err != nil {
		return err
	}

	statusOf := func(la launchAction) string { return string(la.action.Status) }
	statuses := []models.ActionStatus{
		models.ActionStatusPending, models.ActionStatusInProgress, models.ActionStatusCompleted, models.ActionStatusDelayed,
	}
	rows = rows[:0]
	for _, g := range groupBy(all, func(la launchAction) string { return string(la.action.Phase) }, statusOf, nil, phaseOrder()) {
		row := []any{g.key, g.total}
		for _, s := range statuses {
			row = append(row, g.counts[string(s)])
		}
		rows = append(rows, row)
	}
	if err := wb.sheet("By Phase", []string{"Phase", "Total", "pending", "in-progress", "completed", "delayed"}, rows); err != nil {
		return err
	}

	order := make([]string, len(statuses))
	for i, s := range statuses {
		order[i] = string(s)
	}
	rows = rows[:0]
	for _, g := range groupBy(all, statusOf, nil, nil, order) {
		rows = append(rows, []any{g.key, g.total})
	}
	if err := wb.sheet("By Status", []string{"Status", "Count"}, rows); err != nil {
		return err
	}

	return wb.write(w)
}

// KPIs writes the KPI list with progress toward target.
func KPIs(w io.Writer, kpis []models.KPI) error {
	if len(kpis) == 0 {
		return ErrNoRecords
	}
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	defer wb.close()

	rows := make([][]any, 0, len(kpis))
	for _, k := range kpis {
		auto := "no"
		if k.AutoCalculate {
			auto = "yes"
		}
		rows = append(rows, []any{
			k.Perspective, k.Objective, k.Indicator, k.CurrentValue, k.TargetValue, k.Unit,
			progress.KPIPercent(k), auto,
		})
	}
	if err := wb.sheet("KPIs", []string{
		"Perspective", "Objective", "Indicator", "Current", "Target", "Unit", "Progress %", "Auto",
	}, rows); err != nil {
		return err
	}
	return wb.write(w)
}

// Ideas writes the backlog plus a By Tier summary.
func Ideas(w io.Writer, ideas []models.Idea) error {
	if len(ideas) == 0 {
		return ErrNoRecords
	}
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	defer wb.close()

	rows := make([][]any, 0, len(ideas))
	for _, i := range ideas {
		var impact, feasibility, alignment, urgency any
		if e := i.Evaluation; e != nil {
			impact, feasibility, alignment, urgency = e.Impact, e.Feasibility, e.Alignment, e.Urgency
		}
		rows = append(rows, []any{
			i.Title, i.Category, i.Proposer, i.Description, impact, feasibility, alignment, urgency,
			scoring.Round(i.Score), i.Tier, len(i.Attachments),
		})
	}
	if err := wb.sheet("Ideas", []string{
		"Title", "Category", "Proposer", "Description", "Impact", "Feasibility", "Alignment",
		"Urgency", "Score", "Tier", "Attachments",
	}, rows); err != nil {
		return err
	}

	tierOrder := []string{
		string(scoring.TierHigh), string(scoring.TierMedium), string(scoring.TierLow), string(scoring.TierDiscard),
	}
	rows = rows[:0]
	for _, g := range groupBy(ideas, func(i models.Idea) string { return i.Tier }, nil,
		func(i models.Idea) float64 { return i.Score }, tierOrder) {
		rows = append(rows, []any{g.key, g.total, scoring.Round(g.sum / float64(g.total))})
	}
	if err := wb.sheet("By Tier", []string{"Tier", "Count", "Average Score"}, rows); err != nil {
		return err
	}
	return wb.write(w)
}
