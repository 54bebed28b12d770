package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanvivo/price-dashboard/internal/dashboard"
)

// CreateGroupRequest names a new group
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// GroupsResponse lists all groups in display order
type GroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// ListGroups returns every group with its members
// GET /api/groups
func (h *Dashboard) ListGroups(c *gin.Context) {
	c.JSON(http.StatusOK, GroupsResponse{Groups: groupResponses(h.runtime.State())})
}

// CreateGroup adds an empty group
// POST /api/groups
func (h *Dashboard) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mutate(c, dashboard.AddGroup{Name: req.Name}, http.StatusCreated, "group name is empty, reserved or already exists")
}

// DeleteGroup removes a group
// DELETE /api/groups/:name
func (h *Dashboard) DeleteGroup(c *gin.Context) {
	h.mutate(c, dashboard.DeleteGroup{Name: c.Param("name")}, http.StatusOK, "group cannot be deleted")
}

// AddProduct adds a product to a group
// PUT /api/groups/:name/products/:id
func (h *Dashboard) AddProduct(c *gin.Context) {
	action := dashboard.AddProduct{ID: c.Param("id"), Group: c.Param("name")}
	if !h.runtime.State().Groups.IsConcrete(action.Group) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown group: " + action.Group})
		return
	}
	h.idempotent(c, action)
}

// RemoveProduct removes a product from a group
// DELETE /api/groups/:name/products/:id
func (h *Dashboard) RemoveProduct(c *gin.Context) {
	action := dashboard.RemoveProduct{ID: c.Param("id"), Group: c.Param("name")}
	if !h.runtime.State().Groups.IsConcrete(action.Group) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown group: " + action.Group})
		return
	}
	h.idempotent(c, action)
}

// mutate answers 409 when the group action changed nothing
func (h *Dashboard) mutate(c *gin.Context, action dashboard.Action, status int, refusal string) {
	s, effects := h.runtime.Dispatch(action)
	if !dashboard.Changed(effects) {
		c.JSON(http.StatusConflict, gin.H{"error": refusal})
		return
	}
	c.JSON(status, GroupsResponse{Groups: groupResponses(s)})
}

// idempotent answers 200 whether or not membership changed
func (h *Dashboard) idempotent(c *gin.Context, action dashboard.Action) {
	s, _ := h.runtime.Dispatch(action)
	c.JSON(http.StatusOK, GroupsResponse{Groups: groupResponses(s)})
}
