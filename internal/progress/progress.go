// Package progress derives statuses and KPI values from subtask completion.
package progress

import (
	"errors"
	"math"

	"github.com/yukikurage/release-planner/internal/models"
)

var ErrSubtaskNotFound = errors.New("subtask not found")

// TaskPercent returns task progress in [0,100]. With subtasks it is the
// completion ratio; without, it follows the status.
func TaskPercent(t models.Task) float64 {
	if len(t.Subtasks) > 0 {
		return 100 * float64(models.CompletedCount(t.Subtasks)) / float64(len(t.Subtasks))
	}
	switch t.Status {
	case models.TaskStatusCompleted:
		return 100
	case models.TaskStatusInProgress:
		return 50
	default:
		return 0
	}
}

// DeriveTaskStatus sets the task status from its subtasks, if it has any.
func DeriveTaskStatus(t *models.Task) {
	if len(t.Subtasks) == 0 {
		return
	}
	done := models.CompletedCount(t.Subtasks)
	switch {
	case done == len(t.Subtasks):
		t.Status = models.TaskStatusCompleted
	case done > 0:
		t.Status = models.TaskStatusInProgress
	default:
		t.Status = models.TaskStatusPending
	}
}

// ToggleTaskSubtask flips one subtask and re-derives the task status.
func ToggleTaskSubtask(t *models.Task, subtaskID string) error {
	i := indexOf(t.Subtasks, subtaskID)
	if i < 0 {
		return ErrSubtaskNotFound
	}
	t.Subtasks[i].Completed = !t.Subtasks[i].Completed
	DeriveTaskStatus(t)
	return nil
}

// SyncActionStatus promotes an action to completed when every subtask is
// done, and demotes a completed action to in-progress when one is not.
func SyncActionStatus(a *models.Action) {
	if len(a.Subtasks) == 0 {
		return
	}
	allDone := models.CompletedCount(a.Subtasks) == len(a.Subtasks)
	switch {
	case allDone:
		a.Status = models.ActionStatusCompleted
	case a.Status == models.ActionStatusCompleted:
		a.Status = models.ActionStatusInProgress
	}
}

// SetActionSubtask sets one subtask's completion and syncs the action status.
func SetActionSubtask(a *models.Action, subtaskID string, completed bool) error {
	i := indexOf(a.Subtasks, subtaskID)
	if i < 0 {
		return ErrSubtaskNotFound
	}
	a.Subtasks[i].Completed = completed
	SyncActionStatus(a)
	return nil
}

// ToggleActionSubtask flips one subtask and syncs the action status.
func ToggleActionSubtask(a *models.Action, subtaskID string) error {
	i := indexOf(a.Subtasks, subtaskID)
	if i < 0 {
		return ErrSubtaskNotFound
	}
	return SetActionSubtask(a, subtaskID, !a.Subtasks[i].Completed)
}

// LinkedTasks returns the tasks whose perspective matches the KPI's.
func LinkedTasks(kpi models.KPI, tasks []models.Task) []models.Task {
	var linked []models.Task
	for _, t := range tasks {
		if MatchPerspective(kpi.Perspective, t.Perspective) {
			linked = append(linked, t)
		}
	}
	return linked
}

// KPIValue computes the auto-calculated current value of a KPI as the mean
// progress of its linked tasks applied to the target. ok is false when no
// task is linked, in which case the current value should be left alone.
func KPIValue(kpi models.KPI, tasks []models.Task) (value float64, ok bool) {
	linked := LinkedTasks(kpi, tasks)
	if len(linked) == 0 {
		return 0, false
	}
	var sum float64
	for _, t := range linked {
		sum += TaskPercent(t)
	}
	mean := sum / float64(len(linked))
	return math.Round(mean / 100 * kpi.TargetValue), true
}

// Recalculate updates every auto-calculate KPI in place and returns the
// indexes that changed.
func Recalculate(kpis []models.KPI, tasks []models.Task) []int {
	var changed []int
	for i := range kpis {
		if !kpis[i].AutoCalculate {
			continue
		}
		v, ok := KPIValue(kpis[i], tasks)
		if !ok || v == kpis[i].CurrentValue {
			continue
		}
		kpis[i].CurrentValue = v
		changed = append(changed, i)
	}
	return changed
}

// KPIPercent is current/target as a percentage, 0 when no target is set.
func KPIPercent(kpi models.KPI) float64 {
	if kpi.TargetValue == 0 {
		return 0
	}
	return math.Round(100 * kpi.CurrentValue / kpi.TargetValue)
}

func indexOf(subtasks []models.Subtask, id string) int {
	for i, st := range subtasks {
		if st.ID == id {
			return i
		}
	}
	return -1
}
