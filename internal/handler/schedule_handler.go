package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuserp/attendance-api/internal/service"
	appErrors "github.com/campuserp/attendance-api/pkg/errors"
	"github.com/campuserp/attendance-api/pkg/response"
)

// ScheduleHandler manages schedule lookup endpoints.
type ScheduleHandler struct {
	service  *service.ScheduleService
	sessions *service.SessionService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc *service.ScheduleService, sessions *service.SessionService) *ScheduleHandler {
	return &ScheduleHandler{service: svc, sessions: sessions}
}

// ListForSection godoc
// @Summary List a section's scheduled slots for a day
// @Tags Schedules
// @Produce json
// @Param sectionId path string true "Section ID"
// @Param day query string false "Day of week (e.g. MONDAY)"
// @Param date query string false "Date (YYYY-MM-DD); overrides day"
// @Param groupId query string false "Restrict group-scoped slots to this group"
// @Success 200 {object} response.Envelope
// @Router /sections/{sectionId}/schedules [get]
func (h *ScheduleHandler) ListForSection(c *gin.Context) {
	sectionID := c.Param("sectionId")
	var groupID *string
	if g := c.Query("groupId"); g != "" {
		groupID = &g
	}

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.ParseInLocation("2006-01-02", dateStr, h.sessions.Location())
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
			return
		}
		slots, err := h.service.FindForDate(c.Request.Context(), sectionID, date, groupID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, slots, nil)
		return
	}

	day := strings.ToUpper(c.Query("day"))
	slots, err := h.service.FindForDay(c.Request.Context(), sectionID, day, groupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Today godoc
// @Summary List the authenticated student's slots for today
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/schedules [get]
func (h *ScheduleHandler) Today(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if claims.SectionID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "no section associated with this account"))
		return
	}
	var groupID *string
	if claims.GroupID != "" {
		g := claims.GroupID
		groupID = &g
	}
	slots, err := h.service.FindForDate(c.Request.Context(), claims.SectionID, h.sessions.Today(), groupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// ListByComponent godoc
// @Summary List a component's weekly slots
// @Tags Schedules
// @Produce json
// @Param id path string true "Component ID"
// @Success 200 {object} response.Envelope
// @Router /components/{id}/schedules [get]
func (h *ScheduleHandler) ListByComponent(c *gin.Context) {
	slots, err := h.service.ListByComponent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}
