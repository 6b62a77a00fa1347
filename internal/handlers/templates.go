package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/release-planner/internal/errors"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/templates"
)

type TemplateHandler struct {
	catalog *templates.Catalog
	now     func() time.Time
}

func NewTemplateHandler(catalog *templates.Catalog) *TemplateHandler {
	if catalog == nil {
		catalog = templates.Default()
	}
	return &TemplateHandler{catalog: catalog, now: time.Now}
}

// ListTemplates returns the action and content templates, optionally for
// one phase.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	phase, ok := phaseQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"phases":  models.Phases,
		"actions": h.catalog.ActionsFor(phase),
		"content": h.catalog.ContentFor(phase),
	})
}

// Schedule computes template dates for a hypothetical release date.
func (h *TemplateHandler) Schedule(c *gin.Context) {
	phase, ok := phaseQuery(c)
	if !ok {
		return
	}
	release, ok := models.Date(c.Query("release_date")).Time()
	if !ok {
		apierrors.BadRequest(c, "release_date must be YYYY-MM-DD")
		return
	}
	now := h.now()
	c.JSON(http.StatusOK, gin.H{
		"actions": templates.AutoSchedule(release, now, h.catalog.ActionsFor(phase)),
		"content": templates.ScheduleContent(release, now, h.catalog.ContentFor(phase)),
	})
}
