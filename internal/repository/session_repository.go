package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuserp/attendance-api/internal/models"
)

// SessionRepository persists attendance sessions. The attendance_sessions
// table carries a unique constraint on (component_id, date, start_time);
// that constraint, not the application check, is the true enforcement point
// for the one-session-per-slot invariant.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, component_id, date, start_time, end_time, topic, created_at, updated_at`

const sessionDetailColumns = `s.id, s.component_id, s.date, s.start_time, s.end_time, s.topic, s.created_at, s.updated_at,
	co.id AS course_id, co.code AS course_code, co.name AS course_name, c.component_type, c.section_id, c.group_id`

// Create inserts a session. When the slot is already taken it returns
// sql.ErrNoRows via the DO NOTHING path; callers resolve the existing row
// with FindByKey.
func (r *SessionRepository) Create(ctx context.Context, session *models.AttendanceSession) (*models.AttendanceSession, error) {
	now := time.Now().UTC()
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO attendance_sessions (id, component_id, date, start_time, end_time, topic, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (component_id, date, start_time) DO NOTHING
RETURNING %s`, sessionColumns)

	var stored models.AttendanceSession
	if err := r.db.GetContext(ctx, &stored, query,
		session.ID, session.ComponentID, session.Date, session.StartTime, session.EndTime, session.Topic, session.CreatedAt, session.UpdatedAt); err != nil {
		return nil, err
	}
	return &stored, nil
}

// FindByKey loads the session for a (component, date, start time) slot.
// Returns sql.ErrNoRows when the slot has no session.
func (r *SessionRepository) FindByKey(ctx context.Context, componentID string, date, startTime time.Time) (*models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE component_id = $1 AND date = $2 AND start_time = $3`, sessionColumns)
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, componentID, date, startTime); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByID loads a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE id = $1`, sessionColumns)
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByComponentOnDate returns a component's sessions for a calendar day,
// ordered by start time.
func (r *SessionRepository) ListByComponentOnDate(ctx context.Context, componentID string, date time.Time) ([]models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE component_id = $1 AND date = $2 ORDER BY start_time ASC`, sessionColumns)
	var sessions []models.AttendanceSession
	if err := r.db.SelectContext(ctx, &sessions, query, componentID, date); err != nil {
		return nil, fmt.Errorf("list sessions by component: %w", err)
	}
	return sessions, nil
}

// ListForTeacherOnDate returns the sessions of every component taught by the
// teacher on a calendar day.
func (r *SessionRepository) ListForTeacherOnDate(ctx context.Context, teacherID string, date time.Time) ([]models.SessionDetail, error) {
	query := fmt.Sprintf(`SELECT %s
FROM attendance_sessions s
JOIN components c ON c.id = s.component_id
JOIN courses co ON co.id = c.course_id
WHERE c.teacher_id = $1 AND s.date = $2
ORDER BY s.start_time ASC`, sessionDetailColumns)
	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, teacherID, date); err != nil {
		return nil, fmt.Errorf("list sessions for teacher: %w", err)
	}
	return sessions, nil
}

// UpdateTopic sets the session topic, the only mutable field. Returns
// sql.ErrNoRows for an unknown id.
func (r *SessionRepository) UpdateTopic(ctx context.Context, id string, topic *string) (*models.AttendanceSession, error) {
	query := fmt.Sprintf(`UPDATE attendance_sessions SET topic = $2, updated_at = $3 WHERE id = $1 RETURNING %s`, sessionColumns)
	var session models.AttendanceSession
	if err := r.db.GetContext(ctx, &session, query, id, topic, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &session, nil
}
