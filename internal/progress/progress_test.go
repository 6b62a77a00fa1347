package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/release-planner/internal/models"
)

func TestSyncActionStatus_AutoCompleteAndDemote(t *testing.T) {
	action := models.Action{
		ID:     "a1",
		Status: models.ActionStatusInProgress,
		Subtasks: []models.Subtask{
			{ID: "s1", Name: "Brief"},
			{ID: "s2", Name: "Review"},
		},
	}

	require.NoError(t, SetActionSubtask(&action, "s1", true))
	assert.Equal(t, models.ActionStatusInProgress, action.Status)

	require.NoError(t, SetActionSubtask(&action, "s2", true))
	assert.Equal(t, models.ActionStatusCompleted, action.Status)

	require.NoError(t, ToggleActionSubtask(&action, "s1"))
	assert.Equal(t, models.ActionStatusInProgress, action.Status)
}

func TestSyncActionStatus_DelayedStaysDelayed(t *testing.T) {
	action := models.Action{
		Status:   models.ActionStatusDelayed,
		Subtasks: []models.Subtask{{ID: "s1"}, {ID: "s2", Completed: true}},
	}

	SyncActionStatus(&action)

	assert.Equal(t, models.ActionStatusDelayed, action.Status)
}

func TestSetActionSubtask_Unknown(t *testing.T) {
	action := models.Action{Subtasks: []models.Subtask{{ID: "s1"}}}

	assert.ErrorIs(t, SetActionSubtask(&action, "nope", true), ErrSubtaskNotFound)
}

func TestDeriveTaskStatus(t *testing.T) {
	task := models.Task{
		Status:   models.TaskStatusCompleted,
		Subtasks: []models.Subtask{{ID: "1"}, {ID: "2"}},
	}
	DeriveTaskStatus(&task)
	assert.Equal(t, models.TaskStatusPending, task.Status)

	require.NoError(t, ToggleTaskSubtask(&task, "1"))
	assert.Equal(t, models.TaskStatusInProgress, task.Status)

	require.NoError(t, ToggleTaskSubtask(&task, "2"))
	assert.Equal(t, models.TaskStatusCompleted, task.Status)
	assert.Equal(t, 100.0, TaskPercent(task))
}

func TestKPIValue_CompletedTask(t *testing.T) {
	kpi := models.KPI{Perspective: "Customer", TargetValue: 100, AutoCalculate: true}
	tasks := []models.Task{{Perspective: "Customer", Status: models.TaskStatusCompleted}}

	v, ok := KPIValue(kpi, tasks)

	assert.True(t, ok)
	assert.Equal(t, 100.0, v)
}

func TestKPIValue_HalfDoneSubtasks(t *testing.T) {
	kpi := models.KPI{Perspective: "Customer", TargetValue: 30, AutoCalculate: true}
	tasks := []models.Task{{
		Perspective: "customer",
		Status:      models.TaskStatusInProgress,
		Subtasks: []models.Subtask{
			{ID: "1", Completed: true},
			{ID: "2", Completed: true},
			{ID: "3"},
			{ID: "4"},
		},
	}}

	v, ok := KPIValue(kpi, tasks)

	assert.True(t, ok)
	assert.Equal(t, 15.0, v)
}

func TestKPIValue_NoLinkedTasks(t *testing.T) {
	kpi := models.KPI{Perspective: "Financial", TargetValue: 100, CurrentValue: 42, AutoCalculate: true}

	_, ok := KPIValue(kpi, []models.Task{{Perspective: "Customer"}})
	assert.False(t, ok)

	kpis := []models.KPI{kpi}
	assert.Empty(t, Recalculate(kpis, nil))
	assert.Equal(t, 42.0, kpis[0].CurrentValue)
}

func TestRecalculate_SkipsManualKPIs(t *testing.T) {
	kpis := []models.KPI{
		{Perspective: "Customer", TargetValue: 100, CurrentValue: 7},
		{Perspective: "Customer", TargetValue: 100, AutoCalculate: true},
	}
	tasks := []models.Task{{Perspective: "Customer", Status: models.TaskStatusCompleted}}

	changed := Recalculate(kpis, tasks)

	assert.Equal(t, []int{1}, changed)
	assert.Equal(t, 7.0, kpis[0].CurrentValue)
	assert.Equal(t, 100.0, kpis[1].CurrentValue)
}

func TestMatchPerspective(t *testing.T) {
	assert.True(t, MatchPerspective("Procesos Internos", "procesos internos"))
	assert.True(t, MatchPerspective("Financiera", "  FINANCIERA "))
	assert.True(t, MatchPerspective("Aprendizaje y Crecimiento", "Aprendizaje"))
	assert.True(t, MatchPerspective("Innovación", "innovacion"))
	assert.False(t, MatchPerspective("Customer", "Financial"))
	assert.False(t, MatchPerspective("", "Financial"))
}
