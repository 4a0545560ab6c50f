package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuserp/attendance-api/internal/service"
	"github.com/campuserp/attendance-api/pkg/response"
)

// StatsHandler serves attendance aggregation endpoints.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// SessionSummary godoc
// @Summary Aggregate one session's attendance
// @Tags Statistics
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/summary [get]
func (h *StatsHandler) SessionSummary(c *gin.Context) {
	summary, err := h.service.SessionSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// CourseSummary godoc
// @Summary Aggregate a student's attendance for one course
// @Tags Statistics
// @Produce json
// @Param studentId path string true "Student ID"
// @Param courseId path string true "Course ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/courses/{courseId}/summary [get]
func (h *StatsHandler) CourseSummary(c *gin.Context) {
	from, to, err := h.service.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.CourseSummary(c.Request.Context(), c.Param("studentId"), c.Param("courseId"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// StudentReport godoc
// @Summary Overall plus course-wise attendance for a student
// @Tags Statistics
// @Produce json
// @Param studentId path string true "Student ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/attendance-report [get]
func (h *StatsHandler) StudentReport(c *gin.Context) {
	from, to, err := h.service.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.service.StudentReport(c.Request.Context(), c.Param("studentId"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
