package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanvivo/price-dashboard/internal/dashboard"
)

// FetchRequest holds query options for fetch endpoints
type FetchRequest struct {
	Wait bool `form:"wait"`
}

// FetchCurrent starts loading the latest snapshot
// POST /api/prices/current?wait=true
func (h *Dashboard) FetchCurrent(c *gin.Context) {
	h.startFetch(c, dashboard.FetchCurrent{})
}

// LoadHistorical starts loading a stored snapshot
// POST /api/prices/historical/:timestamp?wait=true
func (h *Dashboard) LoadHistorical(c *gin.Context) {
	ts := c.Param("timestamp")
	if ts == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp is required"})
		return
	}
	h.startFetch(c, dashboard.LoadHistorical{Timestamp: ts})
}

func (h *Dashboard) startFetch(c *gin.Context, action dashboard.Action) {
	var req FetchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, effects := h.runtime.Dispatch(action)
	token, started := dashboard.FetchToken(effects)
	if !started {
		c.JSON(http.StatusConflict, gin.H{"error": "a fetch is already in progress"})
		return
	}

	if !req.Wait {
		c.JSON(http.StatusAccepted, NewStateResponse(s))
		return
	}

	if err := h.runtime.Await(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	s = h.runtime.State()
	status := http.StatusOK
	if s.Error != "" {
		status = http.StatusBadGateway
	}
	c.JSON(status, NewStateResponse(s))
}

// TimestampsResponse lists the stored snapshots, newest first
type TimestampsResponse struct {
	Timestamps []string `json:"timestamps"`
}

// ListTimestamps returns the known snapshot index
// GET /api/timestamps
func (h *Dashboard) ListTimestamps(c *gin.Context) {
	c.JSON(http.StatusOK, TimestampsResponse{Timestamps: h.runtime.State().Timestamps})
}
