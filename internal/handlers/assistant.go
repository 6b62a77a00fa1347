package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/release-planner/internal/dto"
	"github.com/yukikurage/release-planner/internal/services"
)

type AssistantHandler struct {
	assistant *services.ContentAssistant
}

func NewAssistantHandler(assistant *services.ContentAssistant) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// DraftPublications asks the model for publication drafts for a launch.
// Drafts are returned for review and not saved.
func (h *AssistantHandler) DraftPublications(c *gin.Context) {
	var req dto.DraftRequest
	if !bindJSON(c, &req) {
		return
	}
	drafts, err := h.assistant.DraftPublications(c.Request.Context(), req.LaunchID, req.Phase, req.Count)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drafts": drafts})
}
