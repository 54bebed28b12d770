package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanvivo/price-dashboard/internal/groups"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Groups  int    `json:"groups"`
}

// HealthCheck reports whether the group storage backend is reachable
// GET /health
func (h *Dashboard) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
		Groups: h.runtime.State().Groups.Len(),
	}

	if h.storage == nil {
		response.Storage = "not configured"
		c.JSON(http.StatusOK, response)
		return
	}

	saved, err := h.storage.Exists(c.Request.Context(), groups.StorageKey)
	switch {
	case err != nil:
		response.Status = "degraded"
		response.Storage = "unavailable"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	case saved:
		response.Storage = "saved"
	default:
		response.Storage = "empty"
	}

	c.JSON(http.StatusOK, response)
}
