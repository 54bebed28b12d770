package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanvivo/price-dashboard/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportRequest selects the download format
type ExportRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"`
}

// Export downloads the visible rows
// GET /api/export?format=csv|xlsx
func (h *Dashboard) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Format == "" {
		req.Format = "csv"
	}

	rows := h.runtime.Visible()
	filename := export.FileName(export.FilePrefix, h.now(), req.Format)

	var body []byte
	var contentType string
	switch req.Format {
	case "xlsx":
		data, err := export.PriceRowsXLSX(rows)
		if errors.Is(err, export.ErrNothingToExport) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no rows to export"})
			return
		}
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to build workbook")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build workbook"})
			return
		}
		body, contentType = data, xlsxContentType
	default:
		text, ok := export.PriceRowsCSV(rows)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no rows to export"})
			return
		}
		body, contentType = []byte(text), "text/csv; charset=utf-8"
	}

	h.logger.Info().Str("file", filename).Int("rows", len(rows)).Msg("Exported prices")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, body)
}
