package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/release-planner/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	exports *services.ExportService
}

func NewExportHandler(exports *services.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Download streams a workbook for one collection. Nothing is written when
// the collection is empty.
func (h *ExportHandler) Download(c *gin.Context) {
	data, filename, err := h.exports.Workbook(c.Param("kind"))
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Kinds lists the exportable collections.
func (h *ExportHandler) Kinds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kinds": services.ExportKinds})
}
