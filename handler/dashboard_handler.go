package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alvarogf/pyg-dashboard/dto"
	"github.com/alvarogf/pyg-dashboard/service"
)

// DashboardHandler serves the section view models. All sections consume the
// extracted KPI set; none of them re-derives KPI values from raw rows.
type DashboardHandler struct {
	dashboard *service.Dashboard
}

func NewDashboardHandler(dashboard *service.Dashboard) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	section, err := h.dashboard.Summary(c.Query("year"), c.Query("compare"))
	respond(c, section, err)
}

func (h *DashboardHandler) Revenue(c *gin.Context) {
	section, err := h.dashboard.Revenue(c.Query("year"))
	respond(c, section, err)
}

func (h *DashboardHandler) Expenses(c *gin.Context) {
	section, err := h.dashboard.Expenses(c.Query("year"))
	respond(c, section, err)
}

func (h *DashboardHandler) Comparative(c *gin.Context) {
	section, err := h.dashboard.Comparative(c.Query("year"), c.Query("compare"))
	respond(c, section, err)
}

func (h *DashboardHandler) AdvancedKPIs(c *gin.Context) {
	section, err := h.dashboard.AdvancedKPIs()
	respond(c, section, err)
}

func (h *DashboardHandler) Balance(c *gin.Context) {
	section, err := h.dashboard.Balance()
	respond(c, section, err)
}

func (h *DashboardHandler) Ratios(c *gin.Context) {
	section, err := h.dashboard.Ratios()
	respond(c, section, err)
}

func respond(c *gin.Context, section interface{}, err error) {
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, dto.ErrNoStatement) || errors.Is(err, dto.ErrNoBalance) {
			status = http.StatusConflict
		}
		sendError(c, status, "SECTION_UNAVAILABLE", err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, section)
}
