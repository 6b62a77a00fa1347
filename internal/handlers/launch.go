package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/release-planner/internal/dto"
	apierrors "github.com/yukikurage/release-planner/internal/errors"
	"github.com/yukikurage/release-planner/internal/middleware"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/services"
)

// LaunchHandler serves launches, their actions and template scheduling.
type LaunchHandler struct {
	launches     *services.LaunchService
	publications *services.PublicationService
}

func NewLaunchHandler(launches *services.LaunchService, publications *services.PublicationService) *LaunchHandler {
	return &LaunchHandler{launches: launches, publications: publications}
}

// ListLaunches returns launches ordered by launch date.
func (h *LaunchHandler) ListLaunches(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"launches": h.launches.ListLaunches()})
}

// GetLaunch returns the launch loaded by RequireLaunch.
func (h *LaunchHandler) GetLaunch(c *gin.Context) {
	launch, ok := middleware.GetLaunch(c)
	if !ok {
		apierrors.NotFound(c, "Launch not found")
		return
	}
	c.JSON(http.StatusOK, launch)
}

func (h *LaunchHandler) CreateLaunch(c *gin.Context) {
	var req dto.CreateLaunchRequest
	if !bindJSON(c, &req) {
		return
	}
	launch, err := h.launches.CreateLaunch(c.Request.Context(), req.ToInput())
	respond(c, http.StatusCreated, launch, err)
}

func (h *LaunchHandler) UpdateLaunch(c *gin.Context) {
	var req dto.UpdateLaunchRequest
	if !bindJSON(c, &req) {
		return
	}
	launch, err := h.launches.UpdateLaunch(c.Request.Context(), c.Param("id"), req.ToInput())
	respond(c, http.StatusOK, launch, err)
}

func (h *LaunchHandler) DeleteLaunch(c *gin.Context) {
	deleted(c, h.launches.DeleteLaunch(c.Request.Context(), c.Param("id")))
}

func (h *LaunchHandler) AddAction(c *gin.Context) {
	var req dto.CreateActionRequest
	if !bindJSON(c, &req) {
		return
	}
	action, err := h.launches.AddAction(c.Request.Context(), c.Param("id"), req.ToInput())
	respond(c, http.StatusCreated, action, err)
}

func (h *LaunchHandler) UpdateAction(c *gin.Context) {
	var req dto.UpdateActionRequest
	if !bindJSON(c, &req) {
		return
	}
	action, err := h.launches.UpdateAction(c.Request.Context(), c.Param("id"), c.Param("action_id"), req.ToInput())
	respond(c, http.StatusOK, action, err)
}

func (h *LaunchHandler) DeleteAction(c *gin.Context) {
	deleted(c, h.launches.DeleteAction(c.Request.Context(), c.Param("id"), c.Param("action_id")))
}

// SetSubtask sets or, with an empty body, flips an action subtask.
func (h *LaunchHandler) SetSubtask(c *gin.Context) {
	var req dto.SubtaskStateRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	action, err := h.launches.SetActionSubtask(c.Request.Context(),
		c.Param("id"), c.Param("action_id"), c.Param("subtask_id"), req.Completed)
	respond(c, http.StatusOK, action, err)
}

// PreviewSchedule returns the templated actions with computed dates
// without saving anything.
func (h *LaunchHandler) PreviewSchedule(c *gin.Context) {
	phase, ok := phaseQuery(c)
	if !ok {
		return
	}
	schedule, err := h.launches.PreviewSchedule(c.Param("id"), phase)
	respond(c, http.StatusOK, gin.H{"schedule": schedule}, err)
}

// ApplyTemplates creates the templated actions the launch does not have yet.
func (h *LaunchHandler) ApplyTemplates(c *gin.Context) {
	var req dto.PhaseRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	created, err := h.launches.ApplyTemplates(c.Request.Context(), c.Param("id"), req.Phase)
	respond(c, http.StatusCreated, gin.H{"actions": created}, err)
}

// PlanContent creates the templated publications the launch does not have yet.
func (h *LaunchHandler) PlanContent(c *gin.Context) {
	var req dto.PhaseRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	created, err := h.publications.PlanContent(c.Request.Context(), c.Param("id"), req.Phase)
	respond(c, http.StatusCreated, gin.H{"publications": created}, err)
}

// bindOptionalJSON binds a body that may be absent.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return false
	}
	return true
}

func phaseQuery(c *gin.Context) (models.Phase, bool) {
	phase := models.Phase(c.Query("phase"))
	if phase != "" && !phase.Valid() {
		apierrors.BadRequest(c, "Invalid phase")
		return "", false
	}
	return phase, true
}
