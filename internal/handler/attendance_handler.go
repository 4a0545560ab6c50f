package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuserp/attendance-api/internal/service"
	appErrors "github.com/campuserp/attendance-api/pkg/errors"
	"github.com/campuserp/attendance-api/pkg/export"
	"github.com/campuserp/attendance-api/pkg/response"
)

// AttendanceHandler manages per-record attendance endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		service: svc,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
	}
}

// MarkBatch godoc
// @Summary Mark a session's attendance in one batch
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.MarkBatchRequest true "Records payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/records [post]
func (h *AttendanceHandler) MarkBatch(c *gin.Context) {
	var req service.MarkBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.MarkBatch(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Roster godoc
// @Summary List a session's attendance records with student info
// @Tags Attendance
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/records [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	rows, err := h.service.SessionRoster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// UpdateRecord godoc
// @Summary Correct a single attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body service.UpdateRecordRequest true "Correction payload"
// @Success 200 {object} response.Envelope
// @Router /records/{id} [patch]
func (h *AttendanceHandler) UpdateRecord(c *gin.Context) {
	var req service.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	updated, err := h.service.UpdateRecord(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Export godoc
// @Summary Export a session's attendance sheet
// @Tags Attendance
// @Produce octet-stream
// @Param id path string true "Session ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /sessions/{id}/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	dataset, title, err := h.service.SessionReportDataset(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	var (
		payload  []byte
		mimeType string
		ext      string
	)
	switch format {
	case "csv":
		payload, err = h.csv.Render(dataset)
		mimeType = "text/csv"
		ext = "csv"
	case "pdf":
		payload, err = h.pdf.Render(dataset, title)
		mimeType = "application/pdf"
		ext = "pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
		return
	}

	filename := fmt.Sprintf("%s.%s", strings.ReplaceAll(strings.ToLower(title), " ", "-"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, mimeType, payload)
}
