package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/release-planner/internal/models"
)

func TestParticipantAliases(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   models.Participant
	}{
		{
			name:   "english keys",
			record: Record{"id": "1", "name": "Ana", "email": "ana@example.com", "role": "Manager"},
			want:   models.Participant{ID: "1", Name: "Ana", Email: "ana@example.com", Role: "Manager"},
		},
		{
			name:   "spanish keys",
			record: Record{"id": "2", "nombre": "Bruno", "rol": "Artista"},
			want:   models.Participant{ID: "2", Name: "Bruno", Role: "Artista"},
		},
		{
			name:   "email stands in for the name",
			record: Record{"id": "3", "email": "cata@example.com"},
			want:   models.Participant{ID: "3", Name: "cata@example.com", Email: "cata@example.com"},
		},
		{
			name:   "blank name falls through",
			record: Record{"id": "4", "name": "  ", "nombre": "Dani"},
			want:   models.Participant{ID: "4", Name: "Dani"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Participant(tt.record))
		})
	}
}

func TestTaskFromLegacyRecord(t *testing.T) {
	records, err := Records([]byte(`[{
		"id": "t1",
		"perspectiva": "Clientes",
		"actividad": "Grabar video",
		"startDate": "2026-03-01T00:00:00.000Z",
		"endDate": "not a date",
		"estado": "In-Progress",
		"participants": [{"id": "p1"}, "p2"],
		"subtareas": [{"nombre": "Guion", "completada": true}, {"name": "Rodaje"}]
	}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)

	task := Task(records[0])
	assert.Equal(t, "Clientes", task.Perspective)
	assert.Equal(t, "Grabar video", task.Activity)
	assert.Equal(t, models.Date("2026-03-01"), task.StartDate)
	assert.Equal(t, models.Date(""), task.EndDate)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, []string{"p1", "p2"}, []string(task.Participants))
	require.Len(t, task.Subtasks, 2)
	assert.Equal(t, models.Subtask{ID: "1", Name: "Guion", Completed: true}, task.Subtasks[0])
}

func TestKPINumericStrings(t *testing.T) {
	kpi := KPI(Record{"indicador": "Streams", "actual": "1200", "meta": 5000.0, "autoCalculate": true})
	assert.Equal(t, "Streams", kpi.Indicator)
	assert.Equal(t, 1200.0, kpi.CurrentValue)
	assert.Equal(t, 5000.0, kpi.TargetValue)
	assert.True(t, kpi.AutoCalculate)
}

func TestIdeaWithEvaluationAndInlineAttachment(t *testing.T) {
	idea := Idea(Record{
		"titulo":     "Lyric video",
		"evaluacion": map[string]any{"impacto": 9.0, "factibilidad": 8.0, "alineacion": 7.0, "urgencia": 5.0},
		"adjuntos":   []any{map[string]any{"nombre": "moodboard.png", "data": "data:image/png;base64,AAAA", "size": 3.0}},
	})
	require.NotNil(t, idea.Evaluation)
	assert.Equal(t, models.Evaluation{Impact: 9, Feasibility: 8, Alignment: 7, Urgency: 5}, *idea.Evaluation)
	require.Len(t, idea.Attachments, 1)
	assert.True(t, idea.Attachments[0].Inline)
	assert.Equal(t, int64(3), idea.Attachments[0].Size)
}

func TestLaunchActions(t *testing.T) {
	launch := Launch(Record{
		"songName":   "Aurora",
		"launchDate": "2026-11-20",
		"acciones":   []any{map[string]any{"titulo": "Teaser", "fase": "pre-release", "estado": "delayed"}},
	})
	assert.Equal(t, "Aurora", launch.SongName)
	require.Len(t, launch.Actions, 1)
	assert.Equal(t, models.PhasePreRelease, launch.Actions[0].Phase)
	assert.Equal(t, models.ActionStatusDelayed, launch.Actions[0].Status)
}

func TestStringsFromCommaList(t *testing.T) {
	assert.Equal(t, []string{"#new", "#music"}, Record{"hashtags": "#new, #music,"}.Strings("hashtags"))
	assert.Equal(t, []string{}, Record{}.Strings("hashtags"))
}

func TestPerspectiveShapes(t *testing.T) {
	assert.Equal(t, "Customer", Perspective(" Customer ").Name)
	assert.Equal(t, models.Perspective{ID: "x", Name: "Fans"}, Perspective(map[string]any{"id": "x", "nombre": "Fans"}))
}
