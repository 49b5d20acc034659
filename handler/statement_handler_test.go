package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/alvarogf/pyg-dashboard/config"
	"github.com/alvarogf/pyg-dashboard/dto"
	"github.com/alvarogf/pyg-dashboard/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) (*gin.Engine, *service.Dashboard) {
	t.Helper()
	reg, err := config.LoadRegistry("")
	require.NoError(t, err)

	dashboard := service.NewDashboard(reg, "Transportes Ejemplo S.L.")
	statements := NewStatementHandler(dashboard, 32<<20)
	sections := NewDashboardHandler(dashboard)
	exports := NewExportHandler(dashboard)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/statements/pyg", statements.UploadPyG)
	api.POST("/statements/balance", statements.UploadBalance)
	api.GET("/dashboard/summary", sections.Summary)
	api.GET("/dashboard/comparative", sections.Comparative)
	api.GET("/dashboard/ratios", sections.Ratios)
	api.GET("/export/excel", exports.Excel)
	api.GET("/export/pdf", exports.PDF)
	return router, dashboard
}

func workbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func statementBytes(t *testing.T) []byte {
	return workbookBytes(t, [][]interface{}{
		{"Concepto", "2024", "2023"},
		{"1. Importe neto de la cifra de negocios", 2500000, 2300000},
		{"4. Aprovisionamientos", -800000, -750000},
		{"6. Gastos de personal", -520000, -500000},
		{"7. Otros gastos de explotación", -300000, -280000},
		{"8. Amortización del inmovilizado", -150000, -140000},
		{"A) Resultado de explotación", 730000, 630000},
		{"D) Resultado del ejercicio", 517500, 438750},
	})
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func doUpload(t *testing.T, router *gin.Engine, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadPyG(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doUpload(t, router, "/api/v1/statements/pyg", "pyg.xlsx", statementBytes(t))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"2024", "2023"}, resp.Years)
	assert.Equal(t, 7, resp.Rows)
	assert.NotZero(t, resp.KPIsFound)
}

func TestUploadPyGNoFile(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements/pyg", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UPLOAD_FAILED", resp.Error)
}

func TestUploadPyGUnsupportedType(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doUpload(t, router, "/api/v1/statements/pyg", "pyg.csv", []byte("a;b;c"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPyGMissingColumns(t *testing.T) {
	router, _ := setupRouter(t)

	content := workbookBytes(t, [][]interface{}{
		{"Concepto", "Importe"},
		{"1. Importe neto de la cifra de negocios", 1000000},
	})
	rec := doUpload(t, router, "/api/v1/statements/pyg", "pyg.xlsx", content)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MALFORMED_INPUT", resp.Error)
	assert.Contains(t, resp.Missing, "Concepto")
}

func TestSummaryBeforeUpload(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SECTION_UNAVAILABLE", resp.Error)
}

func TestSummaryAfterUpload(t *testing.T) {
	router, _ := setupRouter(t)
	doUpload(t, router, "/api/v1/statements/pyg", "pyg.xlsx", statementBytes(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?year=2023", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var section dto.SummarySection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &section))
	assert.Equal(t, "2023", section.Year)
	assert.Equal(t, "2024", section.CompareYear)
	assert.NotEmpty(t, section.Cards)
}

func TestSummaryUnknownYear(t *testing.T) {
	router, _ := setupRouter(t)
	doUpload(t, router, "/api/v1/statements/pyg", "pyg.xlsx", statementBytes(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?year=1999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRatiosNeedBothStatements(t *testing.T) {
	router, _ := setupRouter(t)
	doUpload(t, router, "/api/v1/statements/pyg", "pyg.xlsx", statementBytes(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/ratios", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)

	balance := workbookBytes(t, [][]interface{}{
		{"Concepto", "2024"},
		{"B) ACTIVO CORRIENTE", 400000},
		{"TOTAL ACTIVO (A+B)", 1000000},
		{"C) PASIVO CORRIENTE", 200000},
	})
	rec = doUpload(t, router, "/api/v1/statements/balance", "balance.xlsx", balance)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestExportExcelEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/excel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)

	doUpload(t, router, "/api/v1/statements/pyg", "pyg.xlsx", statementBytes(t))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Resumen Ejecutivo")
}

func TestExportPDFEndpoint(t *testing.T) {
	router, _ := setupRouter(t)
	doUpload(t, router, "/api/v1/statements/pyg", "pyg.xlsx", statementBytes(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/pdf", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF", rec.Body.String()[:4])
}
