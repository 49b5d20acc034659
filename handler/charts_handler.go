package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/components"
	log "github.com/sirupsen/logrus"

	"github.com/alvarogf/pyg-dashboard/charts"
	"github.com/alvarogf/pyg-dashboard/service"
)

// ChartsHandler renders the dashboard sections as standalone HTML chart
// pages.
type ChartsHandler struct {
	dashboard *service.Dashboard
}

func NewChartsHandler(dashboard *service.Dashboard) *ChartsHandler {
	return &ChartsHandler{dashboard: dashboard}
}

// Section handles GET /charts/:section.
func (h *ChartsHandler) Section(c *gin.Context) {
	year := c.Query("year")
	compare := c.Query("compare")

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)

	var err error
	switch c.Param("section") {
	case "summary":
		err = h.summaryCharts(page, year, compare)
	case "revenue":
		err = h.revenueCharts(page, year)
	case "expenses":
		err = h.expensesCharts(page, year)
	default:
		sendError(c, http.StatusNotFound, "SECTION_UNAVAILABLE", "Unknown chart section", nil)
		return
	}
	if err != nil {
		respond(c, nil, err)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(c.Writer); err != nil {
		log.WithError(err).Error("failed to render chart page")
	}
}

func (h *ChartsHandler) summaryCharts(page *components.Page, year, compare string) error {
	section, err := h.dashboard.Summary(year, compare)
	if err != nil {
		return err
	}
	page.AddCharts(
		charts.EvolutionLine("Evolución de Resultados", section.Evolution),
		charts.StructurePie(fmt.Sprintf("Estructura de Gastos %s", section.Year), section.ExpenseStructure),
		charts.GroupedBar("Márgenes por Año", section.Margins),
	)
	return nil
}

func (h *ChartsHandler) revenueCharts(page *components.Page, year string) error {
	section, err := h.dashboard.Revenue(year)
	if err != nil {
		return err
	}
	page.AddCharts(charts.EvolutionLine("Evolución de Ingresos", section.Evolution))
	return nil
}

func (h *ChartsHandler) expensesCharts(page *components.Page, year string) error {
	section, err := h.dashboard.Expenses(year)
	if err != nil {
		return err
	}
	page.AddCharts(
		charts.CategoryBar(fmt.Sprintf("Gastos %s", section.Year), section.Year, section.Categories),
	)
	return nil
}
