package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/release-planner/internal/dto"
	apierrors "github.com/yukikurage/release-planner/internal/errors"
	"github.com/yukikurage/release-planner/internal/services"
)

// DirectoryHandler serves participants and perspectives.
type DirectoryHandler struct {
	participants *services.ParticipantService
	perspectives *services.PerspectiveService
}

func NewDirectoryHandler(participants *services.ParticipantService, perspectives *services.PerspectiveService) *DirectoryHandler {
	return &DirectoryHandler{participants: participants, perspectives: perspectives}
}

func (h *DirectoryHandler) ListParticipants(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"participants": h.participants.ListParticipants()})
}

func (h *DirectoryHandler) GetParticipant(c *gin.Context) {
	p, err := h.participants.GetParticipant(c.Param("id"))
	respond(c, http.StatusOK, p, err)
}

func (h *DirectoryHandler) CreateParticipant(c *gin.Context) {
	var req dto.CreateParticipantRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.participants.CreateParticipant(c.Request.Context(), req.ToInput())
	respond(c, http.StatusCreated, p, err)
}

func (h *DirectoryHandler) UpdateParticipant(c *gin.Context) {
	var req dto.UpdateParticipantRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.participants.UpdateParticipant(c.Request.Context(), c.Param("id"), req.ToInput())
	respond(c, http.StatusOK, p, err)
}

func (h *DirectoryHandler) DeleteParticipant(c *gin.Context) {
	deleted(c, h.participants.DeleteParticipant(c.Request.Context(), c.Param("id")))
}

// ListPerspectives returns the default perspectives followed by custom ones.
func (h *DirectoryHandler) ListPerspectives(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"perspectives": h.perspectives.ListPerspectives()})
}

func (h *DirectoryHandler) CreatePerspective(c *gin.Context) {
	var req dto.CreatePerspectiveRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.perspectives.CreatePerspective(c.Request.Context(), req.Name)
	respond(c, http.StatusCreated, p, err)
}

// DeletePerspective removes a custom perspective. Tasks and KPIs keep
// their perspective name.
func (h *DirectoryHandler) DeletePerspective(c *gin.Context) {
	deleted(c, h.perspectives.DeletePerspective(c.Request.Context(), c.Param("id")))
}

// PerspectiveUsage counts the tasks and KPIs filed under a perspective.
func (h *DirectoryHandler) PerspectiveUsage(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		apierrors.BadRequest(c, "name is required")
		return
	}
	tasks, kpis := h.perspectives.Usage(name)
	c.JSON(http.StatusOK, gin.H{"name": name, "tasks": tasks, "kpis": kpis})
}
