package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/release-planner/internal/dto"
	apierrors "github.com/yukikurage/release-planner/internal/errors"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/services"
	"github.com/yukikurage/release-planner/internal/utils"
)

type PublicationHandler struct {
	publications *services.PublicationService
}

func NewPublicationHandler(publications *services.PublicationService) *PublicationHandler {
	return &PublicationHandler{publications: publications}
}

// ListPublications returns a page of the content calendar.
// Filters: launch_id, phase, platform, status, from, to.
func (h *PublicationHandler) ListPublications(c *gin.Context) {
	phase, ok := phaseQuery(c)
	if !ok {
		return
	}
	input := services.ListPublicationsInput{
		LaunchID: c.Query("launch_id"),
		Phase:    phase,
		Platform: c.Query("platform"),
		From:     models.Date(c.Query("from")),
		To:       models.Date(c.Query("to")),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.PublicationStatus(raw)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &status
	}
	if (input.From != "" && !input.From.Valid()) || (input.To != "" && !input.To.Valid()) {
		apierrors.BadRequest(c, "Dates must be YYYY-MM-DD")
		return
	}

	page, pagination := utils.Paginate(h.publications.ListPublications(input), utils.GetPaginationParams(c))
	c.JSON(http.StatusOK, gin.H{
		"publications": page,
		"pagination":   pagination,
	})
}

func (h *PublicationHandler) GetPublication(c *gin.Context) {
	pub, err := h.publications.GetPublication(c.Param("id"))
	respond(c, http.StatusOK, pub, err)
}

func (h *PublicationHandler) CreatePublication(c *gin.Context) {
	var req dto.CreatePublicationRequest
	if !bindJSON(c, &req) {
		return
	}
	pub, err := h.publications.CreatePublication(c.Request.Context(), req.ToInput())
	respond(c, http.StatusCreated, pub, err)
}

func (h *PublicationHandler) UpdatePublication(c *gin.Context) {
	var req dto.UpdatePublicationRequest
	if !bindJSON(c, &req) {
		return
	}
	pub, err := h.publications.UpdatePublication(c.Request.Context(), c.Param("id"), req.ToInput())
	respond(c, http.StatusOK, pub, err)
}

func (h *PublicationHandler) DeletePublication(c *gin.Context) {
	deleted(c, h.publications.DeletePublication(c.Request.Context(), c.Param("id")))
}
