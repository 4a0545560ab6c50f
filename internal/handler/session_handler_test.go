package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuserp/attendance-api/internal/models"
	"github.com/campuserp/attendance-api/internal/service"
)

type sessionRepoStub struct {
	existing map[string]*models.AttendanceSession
}

func stubKey(componentID string, date, start time.Time) string {
	return componentID + date.Format("2006-01-02") + start.Format("15:04")
}

func (s *sessionRepoStub) Create(ctx context.Context, session *models.AttendanceSession) (*models.AttendanceSession, error) {
	if _, ok := s.existing[stubKey(session.ComponentID, session.Date, session.StartTime)]; ok {
		return nil, sql.ErrNoRows
	}
	if s.existing == nil {
		s.existing = make(map[string]*models.AttendanceSession)
	}
	stored := *session
	stored.ID = "sess-new"
	s.existing[stubKey(session.ComponentID, session.Date, session.StartTime)] = &stored
	return &stored, nil
}

func (s *sessionRepoStub) FindByKey(ctx context.Context, componentID string, date, start time.Time) (*models.AttendanceSession, error) {
	if sess, ok := s.existing[stubKey(componentID, date, start)]; ok {
		return sess, nil
	}
	return nil, sql.ErrNoRows
}

func (s *sessionRepoStub) FindByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	return nil, sql.ErrNoRows
}

func (s *sessionRepoStub) ListByComponentOnDate(ctx context.Context, componentID string, date time.Time) ([]models.AttendanceSession, error) {
	return nil, nil
}

func (s *sessionRepoStub) ListForTeacherOnDate(ctx context.Context, teacherID string, date time.Time) ([]models.SessionDetail, error) {
	return nil, nil
}

func (s *sessionRepoStub) UpdateTopic(ctx context.Context, id string, topic *string) (*models.AttendanceSession, error) {
	return nil, sql.ErrNoRows
}

type componentReaderStub struct{}

func (componentReaderStub) FindComponent(ctx context.Context, id string) (*models.Component, error) {
	return &models.Component{ID: id, CourseID: "c1", SectionID: "sec-1", ComponentType: models.ComponentLecture}, nil
}

func newSessionHandlerForTest(repo *sessionRepoStub) *SessionHandler {
	svc := service.NewSessionService(repo, componentReaderStub{}, nil, nil, nil, "UTC")
	return NewSessionHandler(svc)
}

func postSession(t *testing.T, h *SessionHandler, query string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	payload, err := json.Marshal(map[string]string{
		"component_id": "comp-1",
		"date":         "2025-08-21",
		"start_time":   "09:00",
		"end_time":     "10:00",
	})
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, "/sessions"+query, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)
	return w
}

func TestSessionHandlerCreate(t *testing.T) {
	h := newSessionHandlerForTest(&sessionRepoStub{})
	w := postSession(t, h, "")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSessionHandlerConflictReturnsExisting(t *testing.T) {
	repo := &sessionRepoStub{}
	h := newSessionHandlerForTest(repo)

	require.Equal(t, http.StatusCreated, postSession(t, h, "").Code)

	w := postSession(t, h, "")
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope struct {
		Data  *models.AttendanceSession `json:"data"`
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
	assert.Equal(t, "sess-new", envelope.Data.ID)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "CONFLICT", envelope.Error.Code)
}

func TestSessionHandlerIdempotentQueryReturnsOK(t *testing.T) {
	repo := &sessionRepoStub{}
	h := newSessionHandlerForTest(repo)

	require.Equal(t, http.StatusCreated, postSession(t, h, "?idempotent=true").Code)
	assert.Equal(t, http.StatusOK, postSession(t, h, "?idempotent=true").Code)
}

func TestSessionHandlerRejectsBadPayload(t *testing.T) {
	h := newSessionHandlerForTest(&sessionRepoStub{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte("{not json")))
	c.Request = req

	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
