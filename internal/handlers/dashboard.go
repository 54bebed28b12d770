// Package handlers exposes one dashboard state over a JSON API for a thin
// browser front end.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sanvivo/price-dashboard/internal/dashboard"
	"github.com/sanvivo/price-dashboard/internal/filter"
	"github.com/sanvivo/price-dashboard/internal/storage"
	"github.com/sanvivo/price-dashboard/internal/types"
	"github.com/sanvivo/price-dashboard/internal/viewmode"
)

// Dashboard serves the dashboard API on top of a runtime
type Dashboard struct {
	runtime *dashboard.Runtime
	storage storage.Storage
	logger  *zerolog.Logger
	now     func() time.Time
}

// NewDashboard creates the dashboard handlers
func NewDashboard(runtime *dashboard.Runtime, store storage.Storage, logger *zerolog.Logger) *Dashboard {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Dashboard{
		runtime: runtime,
		storage: store,
		logger:  logger,
		now:     time.Now,
	}
}

// Register mounts every route on r
func (h *Dashboard) Register(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	{
		api.GET("/state", h.GetState)

		prices := api.Group("/prices")
		{
			prices.POST("/current", h.FetchCurrent)
			prices.POST("/historical/:timestamp", h.LoadHistorical)
		}
		api.GET("/timestamps", h.ListTimestamps)

		api.PUT("/filters/:name", h.SetFilter)
		api.PUT("/view-mode", h.SetViewMode)
		api.PUT("/selection", h.SelectGroup)

		groupsAPI := api.Group("/groups")
		{
			groupsAPI.GET("", h.ListGroups)
			groupsAPI.POST("", h.CreateGroup)
			groupsAPI.DELETE("/:name", h.DeleteGroup)
			groupsAPI.PUT("/:name/products/:id", h.AddProduct)
			groupsAPI.DELETE("/:name/products/:id", h.RemoveProduct)
		}

		api.GET("/export", h.Export)
	}
}

// RowResponse is a visible row with its derived recommended price
type RowResponse struct {
	types.PriceRow
	RecommendedPrice decimal.Decimal `json:"recommendedPrice"`
	TrendKind        string          `json:"trendKind"`
}

// GroupResponse describes one product group
type GroupResponse struct {
	Name     string   `json:"name"`
	Products []string `json:"products"`
	Size     int      `json:"size"`
}

// StateResponse is the full render state of the dashboard
type StateResponse struct {
	Timestamp     string          `json:"timestamp"`
	Timestamps    []string        `json:"timestamps"`
	Rows          []RowResponse   `json:"rows"`
	TotalRows     int             `json:"totalRows"`
	Filters       filter.State    `json:"filters"`
	ViewMode      viewmode.Mode   `json:"viewMode"`
	SelectedGroup string          `json:"selectedGroup"`
	Groups        []GroupResponse `json:"groups"`
	Loading       bool            `json:"loading"`
	Error         string          `json:"error,omitempty"`
	Warning       string          `json:"warning,omitempty"`
}

// NewStateResponse renders s
func NewStateResponse(s dashboard.State) StateResponse {
	visible := s.Visible()
	rows := make([]RowResponse, len(visible))
	for i, row := range visible {
		rows[i] = RowResponse{
			PriceRow:         row,
			RecommendedPrice: row.RecommendedPrice(),
			TrendKind:        row.Trend.Kind().String(),
		}
	}

	return StateResponse{
		Timestamp:     s.SnapshotTimestamp,
		Timestamps:    s.Timestamps,
		Rows:          rows,
		TotalRows:     len(s.Rows),
		Filters:       s.Filters,
		ViewMode:      s.Mode,
		SelectedGroup: s.SelectedGroup,
		Groups:        groupResponses(s),
		Loading:       s.Loading,
		Error:         s.Error,
		Warning:       s.Warning,
	}
}

func groupResponses(s dashboard.State) []GroupResponse {
	names := s.Groups.Names()
	out := make([]GroupResponse, len(names))
	for i, name := range names {
		out[i] = GroupResponse{
			Name:     name,
			Products: s.Groups.Members(name),
			Size:     s.Groups.Size(name),
		}
	}
	return out
}

// GetState returns the render state
// GET /api/state
func (h *Dashboard) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, NewStateResponse(h.runtime.State()))
}

// respond writes the post-action state, or 409 when the action was refused
func (h *Dashboard) respond(c *gin.Context, status int, s dashboard.State, effects []dashboard.Effect) {
	if msg, rejected := dashboard.IsRejected(effects); rejected {
		c.JSON(http.StatusConflict, gin.H{"error": msg})
		return
	}
	c.JSON(status, NewStateResponse(s))
}
