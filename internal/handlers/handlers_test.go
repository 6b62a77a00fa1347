package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/release-planner/internal/blob"
	"github.com/yukikurage/release-planner/internal/cache"
	"github.com/yukikurage/release-planner/internal/constants"
	"github.com/yukikurage/release-planner/internal/dto"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/repository"
	"github.com/yukikurage/release-planner/internal/services"
	"github.com/yukikurage/release-planner/internal/templates"
)

var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

// APITestSuite drives the full router over a local-only workspace.
type APITestSuite struct {
	suite.Suite
	ws       *services.Workspace
	handlers Handlers
	router   *gin.Engine
	cookies  []*http.Cookie
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	snaps, err := cache.Open(":memory:")
	s.Require().NoError(err)
	s.Require().NoError(snaps.DB().AutoMigrate(&models.Account{}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.ws = services.NewWorkspace(services.WorkspaceConfig{Cache: snaps, Logger: logger})
	s.Require().NoError(s.ws.Start(ctx))

	effects := &services.Effects{Logger: logger, Now: func() time.Time { return testNow }}
	catalog := templates.Default()
	kpis := services.NewKPIService(s.ws, effects)
	launches := services.NewLaunchService(s.ws, catalog, effects)
	publications := services.NewPublicationService(s.ws, catalog, effects)

	s.handlers = Handlers{
		Auth:         NewAuthHandler(services.NewAuthService(repository.NewAccountRepository(snaps.DB()))),
		Tasks:        NewTaskHandler(services.NewTaskService(s.ws, kpis, effects)),
		KPIs:         NewKPIHandler(kpis),
		Launches:     NewLaunchHandler(launches, publications),
		Publications: NewPublicationHandler(publications),
		Ideas:        NewIdeaHandler(services.NewIdeaService(s.ws, blob.NewAttacher(nil, 1024), effects)),
		Directory: NewDirectoryHandler(
			services.NewParticipantService(s.ws, effects),
			services.NewPerspectiveService(s.ws, effects),
		),
		Templates: NewTemplateHandler(catalog),
		Exports:   NewExportHandler(services.NewExportService(s.ws, effects)),
		Stream:    NewStreamHandler(s.ws.Hub),
		Assistant: NewAssistantHandler(services.NewContentAssistant("", s.ws)),
	}
	s.handlers.Tasks.now = func() time.Time { return testNow }
	s.handlers.Templates.now = func() time.Time { return testNow }

	s.router = gin.New()
	s.router.Use(sessions.Sessions(constants.SessionName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(s.router.Group("/api"), s.handlers)

	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "manager", "password": "supersecret",
	}).Code)
	w := s.do(http.MethodPost, "/api/auth/login", map[string]string{
		"username": "manager", "password": "supersecret",
	})
	s.Require().Equal(http.StatusOK, w.Code)
	s.cookies = w.Result().Cookies()
}

func (s *APITestSuite) TearDownTest() {
	s.ws.Stop()
}

func (s *APITestSuite) do(method, path string, payload any) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req)
}

func (s *APITestSuite) send(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APITestSuite) decode(w *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func (s *APITestSuite) TestRequiresSession() {
	s.cookies = nil
	w := s.do(http.MethodGet, "/api/tasks", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/auth/me", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestCurrentAccount() {
	w := s.do(http.MethodGet, "/api/auth/me", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var account dto.AccountDTO
	s.decode(w, &account)
	s.Equal("manager", account.Username)
}

func (s *APITestSuite) TestTaskLifecycle() {
	w := s.do(http.MethodPost, "/api/tasks", map[string]any{
		"perspective": "Marketing",
		"activity":    "Plan social calendar",
		"start_date":  "2026-10-01",
		"end_date":    "2026-10-10",
		"subtasks": []map[string]any{
			{"id": "a", "name": "Draft"},
			{"id": "b", "name": "Review"},
		},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var task dto.TaskDTO
	s.decode(w, &task)
	s.Equal(models.TaskStatusPending, task.Status)
	s.Equal(0.0, task.Progress)

	w = s.do(http.MethodPost, "/api/tasks/"+task.ID+"/subtasks/a/toggle", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &task)
	s.Equal(models.TaskStatusInProgress, task.Status)
	s.Equal(50.0, task.Progress)

	w = s.do(http.MethodGet, "/api/tasks/overdue", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var overdue struct {
		Tasks []dto.TaskDTO `json:"tasks"`
	}
	s.decode(w, &overdue)
	s.Require().Len(overdue.Tasks, 1)
	s.Equal(task.ID, overdue.Tasks[0].ID)

	w = s.do(http.MethodGet, "/api/tasks?status=in-progress&limit=10", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Tasks      []dto.TaskDTO `json:"tasks"`
		Pagination struct {
			Total int64 `json:"total"`
			Limit int   `json:"limit"`
		} `json:"pagination"`
	}
	s.decode(w, &list)
	s.Len(list.Tasks, 1)
	s.Equal(int64(1), list.Pagination.Total)
	s.Equal(10, list.Pagination.Limit)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/tasks/"+task.ID, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/tasks/"+task.ID, nil).Code)
}

func (s *APITestSuite) TestTaskValidation() {
	w := s.do(http.MethodGet, "/api/tasks?status=bogus", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/tasks", map[string]any{"activity": ""})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/tasks", map[string]any{
		"activity":   "Backwards",
		"start_date": "2026-10-10",
		"end_date":   "2026-10-01",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "INVALID_INPUT")

	w = s.do(http.MethodPost, "/api/tasks/missing/subtasks/a/toggle", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) createLaunch() models.Launch {
	w := s.do(http.MethodPost, "/api/launches", map[string]any{
		"song_name":   "Midnight Drive",
		"artist":      "Nova",
		"launch_date": "2026-12-01",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var launch models.Launch
	s.decode(w, &launch)
	return launch
}

func (s *APITestSuite) TestLaunchTemplates() {
	launch := s.createLaunch()

	w := s.do(http.MethodGet, "/api/launches/"+launch.ID+"/schedule?phase=pre-release", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var preview struct {
		Schedule []templates.ScheduledAction `json:"schedule"`
	}
	s.decode(w, &preview)
	s.Require().Len(preview.Schedule, 4)
	s.Equal(models.Date("2026-11-01"), preview.Schedule[0].Slot.Start)

	w = s.do(http.MethodPost, "/api/launches/"+launch.ID+"/schedule", map[string]string{"phase": "pre-release"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var applied struct {
		Actions []models.Action `json:"actions"`
	}
	s.decode(w, &applied)
	s.Require().Len(applied.Actions, 4)
	s.Equal("Upload to distributor", applied.Actions[0].Title)
	s.Equal(models.Date("2026-11-04"), applied.Actions[0].EndDate)

	w = s.do(http.MethodPost, "/api/launches/"+launch.ID+"/schedule", map[string]string{"phase": "pre-release"})
	s.Require().Equal(http.StatusCreated, w.Code)
	s.decode(w, &applied)
	s.Empty(applied.Actions)

	w = s.do(http.MethodGet, "/api/launches/"+launch.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var got models.Launch
	s.decode(w, &got)
	s.Len(got.Actions, 4)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/launches/"+launch.ID+"/schedule?phase=someday", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/launches/missing", nil).Code)
}

func (s *APITestSuite) TestActionSubtasks() {
	launch := s.createLaunch()

	w := s.do(http.MethodPost, "/api/launches/"+launch.ID+"/actions", map[string]any{
		"title":    "Shoot video",
		"phase":    "production",
		"subtasks": []map[string]any{{"id": "s1", "name": "Storyboard"}},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var action models.Action
	s.decode(w, &action)

	path := fmt.Sprintf("/api/launches/%s/actions/%s/subtasks/s1", launch.ID, action.ID)
	w = s.do(http.MethodPut, path, map[string]bool{"completed": true})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &action)
	s.Equal(models.ActionStatusCompleted, action.Status)

	// an empty body flips the subtask
	w = s.do(http.MethodPut, path, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &action)
	s.False(action.Subtasks[0].Completed)
	s.Equal(models.ActionStatusInProgress, action.Status)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/launches/%s/actions/%s/subtasks/nope", launch.ID, action.ID), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestPlanContentAndListPublications() {
	launch := s.createLaunch()

	w := s.do(http.MethodPost, "/api/launches/"+launch.ID+"/content", map[string]string{"phase": "release"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var planned struct {
		Publications []models.Publication `json:"publications"`
	}
	s.decode(w, &planned)
	s.Require().Len(planned.Publications, 2)

	w = s.do(http.MethodGet, "/api/publications?platform=email&from=2026-12-01&to=2026-12-01", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Publications []models.Publication `json:"publications"`
	}
	s.decode(w, &list)
	s.Require().Len(list.Publications, 1)
	s.Equal("Release newsletter", list.Publications[0].Title)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/publications?from=December", nil).Code)

	w = s.do(http.MethodPost, "/api/publications", map[string]any{
		"title": "Lyric video", "date": "2026-12-03", "time": "25:00",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestIdeaScoringAndAttachments() {
	w := s.do(http.MethodPost, "/api/ideas", map[string]any{
		"title": "Fan remix contest", "category": "Engagement",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var idea models.Idea
	s.decode(w, &idea)

	w = s.do(http.MethodPut, "/api/ideas/"+idea.ID+"/evaluation", map[string]int{
		"impact": 9, "feasibility": 8, "alignment": 7, "urgency": 5,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var evaluated struct {
		Idea   models.Idea `json:"idea"`
		Result struct {
			Score float64 `json:"score"`
			Tier  string  `json:"tier"`
		} `json:"result"`
	}
	s.decode(w, &evaluated)
	s.InDelta(7.8, evaluated.Result.Score, 1e-9)
	s.Equal("medium", evaluated.Result.Tier)
	s.Equal("medium", evaluated.Idea.Tier)

	w = s.do(http.MethodPost, "/api/score", map[string]int{
		"impact": 10, "feasibility": 10, "alignment": 10, "urgency": 10,
	})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"tier":"high"`)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	s.Require().NoError(err)
	_, err = fw.Write([]byte("remix stems on the shared drive"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ideas/"+idea.ID+"/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = s.send(req)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var att models.Attachment
	s.decode(w, &att)
	s.True(att.Inline)
	s.Contains(att.URL, "data:text/plain")

	w = s.do(http.MethodPost, "/api/ideas/"+idea.ID+"/links", map[string]string{"url": "ftp://example.com/x"})
	s.Equal(http.StatusBadRequest, w.Code)

	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/api/ideas/"+idea.ID+"/attachments/notes.txt", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/ideas/"+idea.ID+"/attachments/notes.txt", nil).Code)
}

func (s *APITestSuite) TestPerspectives() {
	w := s.do(http.MethodPost, "/api/perspectives", map[string]string{"name": "Touring"})
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/perspectives", map[string]string{"name": "  touring "})
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/perspectives/usage?name=Touring", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"name":"Touring","tasks":0,"kpis":0}`, w.Body.String())
}

func (s *APITestSuite) TestExport() {
	w := s.do(http.MethodGet, "/api/export/tasks", nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodGet, "/api/export/unknown", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/tasks", map[string]any{"activity": "Press release"}).Code)

	w = s.do(http.MethodGet, "/api/export/tasks", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(xlsxContentType, w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), "tasks-2026-10-15.xlsx")
	s.NotZero(w.Body.Len())
}

func (s *APITestSuite) TestTemplateSchedule() {
	w := s.do(http.MethodGet, "/api/templates/schedule?release_date=2026-12-01&phase=pre-release", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var out struct {
		Actions []templates.ScheduledAction `json:"actions"`
	}
	s.decode(w, &out)
	s.Require().Len(out.Actions, 4)
	s.Equal(models.Date("2026-11-01"), out.Actions[0].Slot.Start)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/templates/schedule", nil).Code)
}

func (s *APITestSuite) TestAssistantDisabled() {
	launch := s.createLaunch()
	w := s.do(http.MethodPost, "/api/assistant/publications", map[string]any{"launch_id": launch.ID})
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func TestRespondServiceError_RemoteUnavailableKeepsLocalState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	task := &models.Task{ID: "t1", Activity: "Mix"}
	respond(c, http.StatusOK, task, fmt.Errorf("%w: connection refused", services.ErrRemoteUnavailable))

	require.Equal(t, http.StatusBadGateway, w.Code)
	var body struct {
		Code    string      `json:"code"`
		Details models.Task `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "REMOTE_UNAVAILABLE", body.Code)
	assert.Equal(t, "t1", body.Details.ID)
}

func TestRespondServiceError_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: title is required", services.ErrInvalidInput), http.StatusBadRequest},
		{services.ErrLaunchNotFound, http.StatusNotFound},
		{services.ErrSubtaskNotFound, http.StatusNotFound},
		{services.ErrPerspectiveExists, http.StatusConflict},
		{services.ErrAssistantDisabled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondServiceError(c, tc.err, nil)
		assert.Equal(t, tc.want, w.Code, tc.err.Error())
	}
}
