package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/release-planner/internal/dto"
	apierrors "github.com/yukikurage/release-planner/internal/errors"
	"github.com/yukikurage/release-planner/internal/scoring"
	"github.com/yukikurage/release-planner/internal/services"
)

const maxAttachmentBytes = 25 << 20

type IdeaHandler struct {
	ideas *services.IdeaService
}

func NewIdeaHandler(ideas *services.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideas: ideas}
}

// ListIdeas filters by category and tier. ranked=true orders by score.
func (h *IdeaHandler) ListIdeas(c *gin.Context) {
	input := services.ListIdeasInput{
		Category: c.Query("category"),
		Tier:     scoring.Tier(c.Query("tier")),
		Ranked:   c.Query("ranked") == "true",
	}
	c.JSON(http.StatusOK, gin.H{"ideas": h.ideas.ListIdeas(input)})
}

func (h *IdeaHandler) GetIdea(c *gin.Context) {
	idea, err := h.ideas.GetIdea(c.Param("id"))
	respond(c, http.StatusOK, idea, err)
}

func (h *IdeaHandler) CreateIdea(c *gin.Context) {
	var req dto.CreateIdeaRequest
	if !bindJSON(c, &req) {
		return
	}
	idea, err := h.ideas.CreateIdea(c.Request.Context(), req.ToInput())
	respond(c, http.StatusCreated, idea, err)
}

func (h *IdeaHandler) UpdateIdea(c *gin.Context) {
	var req dto.UpdateIdeaRequest
	if !bindJSON(c, &req) {
		return
	}
	idea, err := h.ideas.UpdateIdea(c.Request.Context(), c.Param("id"), req.ToInput())
	respond(c, http.StatusOK, idea, err)
}

func (h *IdeaHandler) DeleteIdea(c *gin.Context) {
	deleted(c, h.ideas.DeleteIdea(c.Request.Context(), c.Param("id")))
}

// Evaluate stores the ratings and the derived score and tier.
func (h *IdeaHandler) Evaluate(c *gin.Context) {
	var req dto.EvaluationRequest
	if !bindJSON(c, &req) {
		return
	}
	idea, result, err := h.ideas.Evaluate(c.Request.Context(), c.Param("id"), req.ToModel())
	respond(c, http.StatusOK, gin.H{"idea": idea, "result": result}, err)
}

func (h *IdeaHandler) ClearEvaluation(c *gin.Context) {
	idea, err := h.ideas.ClearEvaluation(c.Request.Context(), c.Param("id"))
	respond(c, http.StatusOK, idea, err)
}

// Score rates an evaluation without storing anything.
func (h *IdeaHandler) Score(c *gin.Context) {
	var req dto.EvaluationRequest
	if !bindJSON(c, &req) {
		return
	}
	e := req.ToModel()
	c.JSON(http.StatusOK, gin.H{
		"evaluation": scoring.Clamp(e),
		"result":     scoring.Evaluate(e),
	})
}

// AddAttachment stores an uploaded file on the idea.
func (h *IdeaHandler) AddAttachment(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "A file is required")
		return
	}
	if fh.Size > maxAttachmentBytes {
		apierrors.BadRequest(c, "File is too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		apierrors.BadRequest(c, "Failed to read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		apierrors.BadRequest(c, "Failed to read file")
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = fh.Filename
	}
	att, err := h.ideas.AddAttachment(c.Request.Context(), c.Param("id"), name, data)
	respond(c, http.StatusCreated, att, err)
}

func (h *IdeaHandler) AddLink(c *gin.Context) {
	var req dto.LinkRequest
	if !bindJSON(c, &req) {
		return
	}
	att, err := h.ideas.AddLink(c.Request.Context(), c.Param("id"), req.Name, req.URL)
	respond(c, http.StatusCreated, att, err)
}

func (h *IdeaHandler) RemoveAttachment(c *gin.Context) {
	idea, err := h.ideas.RemoveAttachment(c.Request.Context(), c.Param("id"), c.Param("name"))
	respond(c, http.StatusOK, idea, err)
}

