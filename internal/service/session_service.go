package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuserp/attendance-api/internal/models"
	appErrors "github.com/campuserp/attendance-api/pkg/errors"
)

type sessionRepository interface {
	Create(ctx context.Context, session *models.AttendanceSession) (*models.AttendanceSession, error)
	FindByKey(ctx context.Context, componentID string, date, startTime time.Time) (*models.AttendanceSession, error)
	FindByID(ctx context.Context, id string) (*models.AttendanceSession, error)
	ListByComponentOnDate(ctx context.Context, componentID string, date time.Time) ([]models.AttendanceSession, error)
	ListForTeacherOnDate(ctx context.Context, teacherID string, date time.Time) ([]models.SessionDetail, error)
	UpdateTopic(ctx context.Context, id string, topic *string) (*models.AttendanceSession, error)
}

type componentReader interface {
	FindComponent(ctx context.Context, id string) (*models.Component, error)
}

// SessionService is the registry for attendance sessions. It normalizes
// dates into the reference timezone, short-circuits duplicate slots with a
// friendly conflict, and leaves the store's unique constraint as the final
// arbiter under concurrent identical requests.
type SessionService struct {
	repo       sessionRepository
	components componentReader
	validator  *validator.Validate
	metrics    *MetricsService
	logger     *zap.Logger
	loc        *time.Location
}

// NewSessionService constructs the session service. An unknown timezone
// falls back to UTC.
func NewSessionService(repo sessionRepository, components componentReader, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, timezone string) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("unknown attendance timezone, using UTC", zap.String("timezone", timezone))
		loc = time.UTC
	}
	return &SessionService{repo: repo, components: components, validator: validate, metrics: metrics, logger: logger, loc: loc}
}

// CreateSessionRequest is the payload for opening a class meeting.
type CreateSessionRequest struct {
	ComponentID string  `json:"component_id" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	StartTime   string  `json:"start_time" validate:"required"`
	EndTime     string  `json:"end_time" validate:"required"`
	Topic       *string `json:"topic"`
}

// Create opens a session for a (component, date, start time) slot. In
// idempotent mode an existing session is returned as-is (backfill path); in
// interactive mode the conflict is surfaced carrying the existing session so
// the UI can redirect to its marking view. The returned bool reports whether
// a new row was created.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest, idempotent bool) (*models.AttendanceSession, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	date, start, end, err := s.normalizeSlot(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, false, err
	}

	if _, err := s.components.FindComponent(ctx, req.ComponentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "component not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load component")
	}

	// Cheap pre-check; the unique constraint below settles races.
	if existing, err := s.repo.FindByKey(ctx, req.ComponentID, date, start); err == nil {
		return s.resolveExisting(existing, idempotent)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check session slot")
	}

	session := &models.AttendanceSession{
		ComponentID: req.ComponentID,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Topic:       req.Topic,
	}
	created, err := s.repo.Create(ctx, session)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost the race: another request claimed the slot between the
			// pre-check and the insert.
			existing, findErr := s.repo.FindByKey(ctx, req.ComponentID, date, start)
			if findErr != nil {
				return nil, false, appErrors.Wrap(findErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conflicting session")
			}
			return s.resolveExisting(existing, idempotent)
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	s.metrics.SessionCreated()
	s.logger.Info("attendance session created",
		zap.String("session_id", created.ID),
		zap.String("component_id", created.ComponentID),
		zap.Time("date", created.Date))
	return created, true, nil
}

func (s *SessionService) resolveExisting(existing *models.AttendanceSession, idempotent bool) (*models.AttendanceSession, bool, error) {
	if idempotent {
		return existing, false, nil
	}
	domainErr := &models.SessionConflictError{
		Message:  "a session already exists for this component, date and start time",
		Existing: existing,
	}
	return nil, false, appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)
}

// GetByID loads a session.
func (s *SessionService) GetByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// ListByComponentOnDate returns a component's sessions for a calendar day.
func (s *SessionService) ListByComponentOnDate(ctx context.Context, componentID, dateStr string) ([]models.AttendanceSession, error) {
	if componentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "component id required")
	}
	date := s.Today()
	if dateStr != "" {
		var err error
		date, err = s.parseDate(dateStr)
		if err != nil {
			return nil, err
		}
	}
	sessions, err := s.repo.ListByComponentOnDate(ctx, componentID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// TodayForTeacher returns the teacher's sessions for the current calendar
// day in the reference timezone.
func (s *SessionService) TodayForTeacher(ctx context.Context, teacherID string) ([]models.SessionDetail, error) {
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id required")
	}
	sessions, err := s.repo.ListForTeacherOnDate(ctx, teacherID, s.Today())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list today's sessions")
	}
	return sessions, nil
}

// UpdateTopic changes the session topic.
func (s *SessionService) UpdateTopic(ctx context.Context, id string, topic *string) (*models.AttendanceSession, error) {
	session, err := s.repo.UpdateTopic(ctx, id, topic)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session topic")
	}
	return session, nil
}

// Today returns the current calendar day truncated to midnight in the
// reference timezone.
func (s *SessionService) Today() time.Time {
	now := time.Now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

// Location exposes the reference timezone for callers that format dates.
func (s *SessionService) Location() *time.Location {
	return s.loc
}

func (s *SessionService) parseDate(raw string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", raw, s.loc)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	return date, nil
}

// normalizeSlot truncates the date to midnight and places the clock times on
// that calendar day, all in the reference timezone. The coarse date key plus
// fine time values keep the uniqueness check a plain three-field equality.
func (s *SessionService) normalizeSlot(dateStr, startStr, endStr string) (date, start, end time.Time, err error) {
	date, err = s.parseDate(dateStr)
	if err != nil {
		return
	}
	start, err = s.combineClock(date, startStr)
	if err != nil {
		err = appErrors.Clone(appErrors.ErrValidation, "invalid start time, expected HH:MM")
		return
	}
	end, err = s.combineClock(date, endStr)
	if err != nil {
		err = appErrors.Clone(appErrors.ErrValidation, "invalid end time, expected HH:MM")
		return
	}
	if !end.After(start) {
		err = appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	return
}

func (s *SessionService) combineClock(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, s.loc), nil
}
