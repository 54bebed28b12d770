package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanvivo/price-dashboard/internal/dashboard"
	"github.com/sanvivo/price-dashboard/internal/viewmode"
)

// SetFilterRequest toggles one filter
type SetFilterRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// SetViewModeRequest switches the table view
type SetViewModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SelectGroupRequest selects a group, or "all"
type SelectGroupRequest struct {
	Group string `json:"group" binding:"required"`
}

// SetFilter toggles showOnlyChanges or hideDesignatedPharmacy
// PUT /api/filters/:name
func (h *Dashboard) SetFilter(c *gin.Context) {
	name := c.Param("name")
	if !dashboard.IsKnownFilter(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown filter: " + name})
		return
	}

	var req SetFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, effects := h.runtime.Dispatch(dashboard.SetFilter{Name: name, Value: *req.Value})
	h.respond(c, http.StatusOK, s, effects)
}

// SetViewMode switches between all rows and the selected group only
// PUT /api/view-mode
func (h *Dashboard) SetViewMode(c *gin.Context) {
	var req SetViewModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode, err := viewmode.Parse(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, effects := h.runtime.Dispatch(dashboard.SetViewMode{Mode: mode})
	h.respond(c, http.StatusOK, s, effects)
}

// SelectGroup changes the selected group
// PUT /api/selection
func (h *Dashboard) SelectGroup(c *gin.Context) {
	var req SelectGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, effects := h.runtime.Dispatch(dashboard.SelectGroup{Name: req.Group})
	h.respond(c, http.StatusOK, s, effects)
}
