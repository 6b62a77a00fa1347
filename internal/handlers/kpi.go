package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/release-planner/internal/dto"
	apierrors "github.com/yukikurage/release-planner/internal/errors"
	"github.com/yukikurage/release-planner/internal/services"
)

const maxImportBytes = 10 << 20

type KPIHandler struct {
	kpis *services.KPIService
}

func NewKPIHandler(kpis *services.KPIService) *KPIHandler {
	return &KPIHandler{kpis: kpis}
}

// ListKPIs returns KPIs with their percentage and linked task count,
// optionally for one perspective.
func (h *KPIHandler) ListKPIs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kpis": h.kpis.ListKPIs(c.Query("perspective"))})
}

func (h *KPIHandler) GetKPI(c *gin.Context) {
	kpi, err := h.kpis.GetKPI(c.Param("id"))
	respond(c, http.StatusOK, kpi, err)
}

func (h *KPIHandler) CreateKPI(c *gin.Context) {
	var req dto.CreateKPIRequest
	if !bindJSON(c, &req) {
		return
	}
	kpi, err := h.kpis.CreateKPI(c.Request.Context(), req.ToInput())
	respond(c, http.StatusCreated, kpi, err)
}

func (h *KPIHandler) UpdateKPI(c *gin.Context) {
	var req dto.UpdateKPIRequest
	if !bindJSON(c, &req) {
		return
	}
	kpi, err := h.kpis.UpdateKPI(c.Request.Context(), c.Param("id"), req.ToInput())
	respond(c, http.StatusOK, kpi, err)
}

func (h *KPIHandler) DeleteKPI(c *gin.Context) {
	deleted(c, h.kpis.DeleteKPI(c.Request.Context(), c.Param("id")))
}

// Recalculate refreshes every auto-calculated KPI and returns the changed ones.
func (h *KPIHandler) Recalculate(c *gin.Context) {
	changed, err := h.kpis.Recalculate(c.Request.Context())
	respond(c, http.StatusOK, gin.H{"kpis": changed}, err)
}

// ImportKPIs reads KPIs from an uploaded spreadsheet or CSV file.
func (h *KPIHandler) ImportKPIs(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "A file is required")
		return
	}
	if fh.Size > maxImportBytes {
		apierrors.BadRequest(c, "File is too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		apierrors.BadRequest(c, "Failed to read file")
		return
	}
	defer f.Close()

	kpis, err := h.kpis.ImportKPIs(c.Request.Context(), f, fh.Filename)
	respond(c, http.StatusCreated, gin.H{"kpis": kpis}, err)
}
