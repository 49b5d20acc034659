package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/alvarogf/pyg-dashboard/dto"
	"github.com/alvarogf/pyg-dashboard/service"
)

// ExportHandler serves the downloadable report endpoints.
type ExportHandler struct {
	dashboard *service.Dashboard
}

func NewExportHandler(dashboard *service.Dashboard) *ExportHandler {
	return &ExportHandler{dashboard: dashboard}
}

// Excel handles GET /export/excel: the KPI table and margin analysis as a
// workbook.
func (h *ExportHandler) Excel(c *gin.Context) {
	f, err := h.dashboard.ExportExcel()
	if err != nil {
		sendExportError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("dashboard_pyg_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		log.WithError(err).Error("failed to stream excel export")
	}
}

// PDF handles GET /export/pdf?year=: the printable executive summary.
func (h *ExportHandler) PDF(c *gin.Context) {
	data, err := h.dashboard.ExportPDF(c.Query("year"))
	if err != nil {
		sendExportError(c, err)
		return
	}

	filename := fmt.Sprintf("resumen_ejecutivo_%s.pdf", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

func sendExportError(c *gin.Context, err error) {
	if errors.Is(err, dto.ErrNoStatement) {
		sendError(c, http.StatusConflict, "EXPORT_FAILED", err.Error(), nil)
		return
	}
	var exportErr *dto.ExportError
	if errors.As(err, &exportErr) {
		sendError(c, http.StatusInternalServerError, "EXPORT_FAILED", exportErr.Error(), err)
		return
	}
	sendError(c, http.StatusBadRequest, "EXPORT_FAILED", err.Error(), nil)
}
