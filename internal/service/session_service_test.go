package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuserp/attendance-api/internal/models"
	appErrors "github.com/campuserp/attendance-api/pkg/errors"
)

type fakeSessionRepo struct {
	sessions map[string]*models.AttendanceSession
	nextID   int
}

func slotKey(componentID string, date, start time.Time) string {
	return componentID + "|" + date.Format("2006-01-02") + "|" + start.Format("15:04")
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *models.AttendanceSession) (*models.AttendanceSession, error) {
	if f.sessions == nil {
		f.sessions = make(map[string]*models.AttendanceSession)
	}
	key := slotKey(session.ComponentID, session.Date, session.StartTime)
	if _, ok := f.sessions[key]; ok {
		return nil, sql.ErrNoRows
	}
	f.nextID++
	stored := *session
	stored.ID = "sess-" + time.Now().Format("150405") + string(rune('a'+f.nextID))
	f.sessions[key] = &stored
	return &stored, nil
}

func (f *fakeSessionRepo) FindByKey(ctx context.Context, componentID string, date, startTime time.Time) (*models.AttendanceSession, error) {
	if s, ok := f.sessions[slotKey(componentID, date, startTime)]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSessionRepo) FindByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSessionRepo) ListByComponentOnDate(ctx context.Context, componentID string, date time.Time) ([]models.AttendanceSession, error) {
	var out []models.AttendanceSession
	for _, s := range f.sessions {
		if s.ComponentID == componentID && s.Date.Equal(date) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) ListForTeacherOnDate(ctx context.Context, teacherID string, date time.Time) ([]models.SessionDetail, error) {
	return nil, nil
}

func (f *fakeSessionRepo) UpdateTopic(ctx context.Context, id string, topic *string) (*models.AttendanceSession, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			s.Topic = topic
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeComponentReader struct {
	known map[string]*models.Component
}

func (f *fakeComponentReader) FindComponent(ctx context.Context, id string) (*models.Component, error) {
	if c, ok := f.known[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func newTestSessionService(repo *fakeSessionRepo) *SessionService {
	components := &fakeComponentReader{known: map[string]*models.Component{
		"comp-1": {ID: "comp-1", CourseID: "c1", SectionID: "sec-1", ComponentType: models.ComponentLecture},
	}}
	return NewSessionService(repo, components, nil, nil, nil, "Asia/Kolkata")
}

func TestCreateSessionNormalizesDate(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newTestSessionService(repo)

	session, created, err := svc.Create(context.Background(), CreateSessionRequest{
		ComponentID: "comp-1",
		Date:        "2025-08-21",
		StartTime:   "09:00",
		EndTime:     "10:00",
	}, false)
	require.NoError(t, err)
	assert.True(t, created)

	loc, _ := time.LoadLocation("Asia/Kolkata")
	assert.Equal(t, time.Date(2025, 8, 21, 0, 0, 0, 0, loc), session.Date)
	assert.Equal(t, 9, session.StartTime.In(loc).Hour())
}

func TestCreateSessionConflictCarriesExisting(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newTestSessionService(repo)

	req := CreateSessionRequest{ComponentID: "comp-1", Date: "2025-08-21", StartTime: "09:00", EndTime: "10:00"}
	first, _, err := svc.Create(context.Background(), req, false)
	require.NoError(t, err)

	_, _, err = svc.Create(context.Background(), req, false)
	require.Error(t, err)

	var conflict *models.SessionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, first.ID, conflict.Existing.ID)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
}

func TestCreateSessionIdempotentReturnsExisting(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newTestSessionService(repo)

	req := CreateSessionRequest{ComponentID: "comp-1", Date: "2025-08-21", StartTime: "09:00", EndTime: "10:00"}
	first, created, err := svc.Create(context.Background(), req, true)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Create(context.Background(), req, true)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateSessionUnknownComponent(t *testing.T) {
	svc := newTestSessionService(&fakeSessionRepo{})

	_, _, err := svc.Create(context.Background(), CreateSessionRequest{
		ComponentID: "nope", Date: "2025-08-21", StartTime: "09:00", EndTime: "10:00",
	}, false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestCreateSessionRejectsInvertedTimes(t *testing.T) {
	svc := newTestSessionService(&fakeSessionRepo{})

	_, _, err := svc.Create(context.Background(), CreateSessionRequest{
		ComponentID: "comp-1", Date: "2025-08-21", StartTime: "10:00", EndTime: "09:00",
	}, false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestSameStartDistinctConsecutiveSlots(t *testing.T) {
	repo := &fakeSessionRepo{}
	svc := newTestSessionService(repo)

	_, _, err := svc.Create(context.Background(), CreateSessionRequest{
		ComponentID: "comp-1", Date: "2025-08-21", StartTime: "09:00", EndTime: "10:00",
	}, false)
	require.NoError(t, err)

	// Same component, same day, different start time: a second meeting.
	_, created, err := svc.Create(context.Background(), CreateSessionRequest{
		ComponentID: "comp-1", Date: "2025-08-21", StartTime: "11:00", EndTime: "12:00",
	}, false)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestUpdateTopicNotFound(t *testing.T) {
	svc := newTestSessionService(&fakeSessionRepo{})

	topic := "Graphs"
	_, err := svc.UpdateTopic(context.Background(), "missing", &topic)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}
