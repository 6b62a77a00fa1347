package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/release-planner/internal/dto"
	apierrors "github.com/yukikurage/release-planner/internal/errors"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/progress"
	"github.com/yukikurage/release-planner/internal/services"
	"github.com/yukikurage/release-planner/internal/utils"
)

type TaskHandler struct {
	tasks *services.TaskService
	now   func() time.Time
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks, now: time.Now}
}

// ListTasks returns a page of tasks in start-date order.
// Filters: perspective, status, owner, participant.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	input := services.ListTasksInput{
		Perspective: c.Query("perspective"),
		Owner:       c.Query("owner"),
		Participant: c.Query("participant"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &status
	}

	page, pagination := utils.Paginate(h.tasks.ListTasks(input), utils.GetPaginationParams(c))
	c.JSON(http.StatusOK, gin.H{
		"tasks":      toTaskDTOs(page),
		"pagination": pagination,
	})
}

// ListOverdue returns unfinished tasks whose end date has passed.
func (h *TaskHandler) ListOverdue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": toTaskDTOs(h.tasks.Overdue(h.now()))})
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.tasks.GetTask(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, toTaskDTO(*task))
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.tasks.CreateTask(c.Request.Context(), req.ToInput())
	respondTask(c, http.StatusCreated, task, err)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.tasks.UpdateTask(c.Request.Context(), c.Param("id"), req.ToInput())
	respondTask(c, http.StatusOK, task, err)
}

// ToggleSubtask flips one subtask; the task status follows.
func (h *TaskHandler) ToggleSubtask(c *gin.Context) {
	task, err := h.tasks.ToggleSubtask(c.Request.Context(), c.Param("id"), c.Param("subtask_id"))
	respondTask(c, http.StatusOK, task, err)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	deleted(c, h.tasks.DeleteTask(c.Request.Context(), c.Param("id")))
}

func respondTask(c *gin.Context, status int, task *models.Task, err error) {
	if task == nil {
		respond(c, status, nil, err)
		return
	}
	respond(c, status, toTaskDTO(*task), err)
}

func toTaskDTO(t models.Task) dto.TaskDTO {
	return dto.TaskDTO{Task: t, Progress: progress.TaskPercent(t)}
}

func toTaskDTOs(tasks []models.Task) []dto.TaskDTO {
	out := make([]dto.TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskDTO(t)
	}
	return out
}
