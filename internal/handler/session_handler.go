package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuserp/attendance-api/internal/models"
	"github.com/campuserp/attendance-api/internal/service"
	appErrors "github.com/campuserp/attendance-api/pkg/errors"
	"github.com/campuserp/attendance-api/pkg/response"
)

// SessionHandler manages attendance session endpoints.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// Create godoc
// @Summary Open an attendance session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param idempotent query bool false "Return the existing session instead of 409 on slot collision"
// @Param payload body service.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	idempotent := c.Query("idempotent") == "true"

	session, created, err := h.service.Create(c.Request.Context(), req, idempotent)
	if err != nil {
		var conflict *models.SessionConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, response.Envelope{
				Data:  conflict.Existing,
				Error: appErrors.FromError(err),
			})
			return
		}
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, session)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Get godoc
// @Summary Get a session by ID
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// ListByComponent godoc
// @Summary List a component's sessions on a date
// @Tags Sessions
// @Produce json
// @Param id path string true "Component ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /components/{id}/sessions [get]
func (h *SessionHandler) ListByComponent(c *gin.Context) {
	sessions, err := h.service.ListByComponentOnDate(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Today godoc
// @Summary List the authenticated teacher's sessions for today
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/sessions [get]
func (h *SessionHandler) Today(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	sessions, err := h.service.TodayForTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

type updateTopicRequest struct {
	Topic *string `json:"topic"`
}

// UpdateTopic godoc
// @Summary Set or clear a session's topic
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body updateTopicRequest true "Topic payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [patch]
func (h *SessionHandler) UpdateTopic(c *gin.Context) {
	var req updateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.service.UpdateTopic(c.Request.Context(), c.Param("id"), req.Topic)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
