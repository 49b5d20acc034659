package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/alvarogf/pyg-dashboard/dto"
	"github.com/alvarogf/pyg-dashboard/service"
)

// StatementHandler serves the statement upload endpoints.
type StatementHandler struct {
	dashboard   *service.Dashboard
	maxFileSize int64
}

func NewStatementHandler(dashboard *service.Dashboard, maxFileSize int64) *StatementHandler {
	return &StatementHandler{dashboard: dashboard, maxFileSize: maxFileSize}
}

// UploadPyG handles POST /statements/pyg: a P&L workbook (.xlsx) or
// text-layer PDF export, multipart field "file".
func (h *StatementHandler) UploadPyG(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, "UPLOAD_FAILED", "No file provided", nil)
		return
	}
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		sendError(c, http.StatusBadRequest, "UPLOAD_FAILED", "File exceeds the maximum allowed size", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		sendError(c, http.StatusBadRequest, "UPLOAD_FAILED", err.Error(), nil)
		return
	}
	defer f.Close()

	log.WithFields(log.Fields{"file": fileHeader.Filename, "size": fileHeader.Size}).
		Info("processing P&L upload")

	var result *dto.UploadResponse
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".pdf":
		data, readErr := io.ReadAll(f)
		if readErr != nil {
			sendError(c, http.StatusBadRequest, "UPLOAD_FAILED", readErr.Error(), nil)
			return
		}
		result, err = h.dashboard.LoadStatementPDF(data, c.PostForm("password"))
	case ".xlsx", ".xls":
		result, err = h.dashboard.LoadStatement(f)
	default:
		sendError(c, http.StatusBadRequest, "UPLOAD_FAILED",
			"Unsupported file type, upload an .xlsx workbook or a .pdf export", nil)
		return
	}

	if err != nil {
		sendLoadError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UploadBalance handles POST /statements/balance: the optional balance
// sheet workbook.
func (h *StatementHandler) UploadBalance(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, "UPLOAD_FAILED", "No file provided", nil)
		return
	}
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		sendError(c, http.StatusBadRequest, "UPLOAD_FAILED", "File exceeds the maximum allowed size", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		sendError(c, http.StatusBadRequest, "UPLOAD_FAILED", err.Error(), nil)
		return
	}
	defer f.Close()

	result, err := h.dashboard.LoadBalance(f)
	if err != nil {
		sendLoadError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func sendLoadError(c *gin.Context, err error) {
	var malformed *dto.MalformedInputError
	if errors.As(err, &malformed) {
		log.WithField("missing", malformed.Missing).Warn("rejected malformed upload")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "MALFORMED_INPUT",
			Message: malformed.Error(),
			Code:    http.StatusBadRequest,
			Missing: malformed.Missing,
		})
		return
	}
	sendError(c, http.StatusInternalServerError, "UPLOAD_FAILED", err.Error(), err)
}

// sendError sends a structured error response.
func sendError(c *gin.Context, statusCode int, code, message string, err error) {
	if err != nil {
		log.WithError(err).Error(message)
	}
	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    statusCode,
	})
}
