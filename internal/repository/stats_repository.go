package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campuserp/attendance-api/internal/models"
)

// StatsRepository runs the grouped-count queries behind attendance
// aggregation. It only reads; all arithmetic on the counts lives in the
// stats service.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// SessionStatusCounts groups a single session's records by status.
func (r *StatsRepository) SessionStatusCounts(ctx context.Context, sessionID string) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS cnt
FROM attendance_records
WHERE attendance_session_id = $1
GROUP BY status`
	var rows []models.StatusCount
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("session status counts: %w", err)
	}
	return rows, nil
}

// CourseStatusCounts groups a student's records by status for one course,
// optionally bounded by a session date range.
func (r *StatsRepository) CourseStatusCounts(ctx context.Context, studentID, courseID string, from, to *time.Time) ([]models.StatusCount, error) {
	where := []string{"r.student_id = $1", "c.course_id = $2"}
	args := []interface{}{studentID, courseID}
	where, args = appendDateRange(where, args, from, to)
	query := fmt.Sprintf(`SELECT r.status, COUNT(*) AS cnt
FROM attendance_records r
JOIN attendance_sessions s ON s.id = r.attendance_session_id
JOIN components c ON c.id = s.component_id
WHERE %s
GROUP BY r.status`, strings.Join(where, " AND "))
	var rows []models.StatusCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("course status counts: %w", err)
	}
	return rows, nil
}

// OverallStatusCounts groups every record of a student by status, optionally
// bounded by a session date range.
func (r *StatsRepository) OverallStatusCounts(ctx context.Context, studentID string, from, to *time.Time) ([]models.StatusCount, error) {
	where := []string{"r.student_id = $1"}
	args := []interface{}{studentID}
	where, args = appendDateRange(where, args, from, to)
	query := fmt.Sprintf(`SELECT r.status, COUNT(*) AS cnt
FROM attendance_records r
JOIN attendance_sessions s ON s.id = r.attendance_session_id
WHERE %s
GROUP BY r.status`, strings.Join(where, " AND "))
	var rows []models.StatusCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("overall status counts: %w", err)
	}
	return rows, nil
}

// CourseWiseStatusCounts groups a student's records by course and status.
// Rows come back ordered by course code so the service can fold them into a
// stably ordered breakdown.
func (r *StatsRepository) CourseWiseStatusCounts(ctx context.Context, studentID string, from, to *time.Time) ([]models.CourseStatusCount, error) {
	where := []string{"r.student_id = $1"}
	args := []interface{}{studentID}
	where, args = appendDateRange(where, args, from, to)
	query := fmt.Sprintf(`SELECT co.id AS course_id, co.code AS course_code, co.name AS course_name, r.status, COUNT(*) AS cnt
FROM attendance_records r
JOIN attendance_sessions s ON s.id = r.attendance_session_id
JOIN components c ON c.id = s.component_id
JOIN courses co ON co.id = c.course_id
WHERE %s
GROUP BY co.id, co.code, co.name, r.status
ORDER BY co.code ASC`, strings.Join(where, " AND "))
	var rows []models.CourseStatusCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("course-wise status counts: %w", err)
	}
	return rows, nil
}

func appendDateRange(where []string, args []interface{}, from, to *time.Time) ([]string, []interface{}) {
	if from != nil {
		where = append(where, fmt.Sprintf("s.date >= $%d", len(args)+1))
		args = append(args, *from)
	}
	if to != nil {
		where = append(where, fmt.Sprintf("s.date <= $%d", len(args)+1))
		args = append(args, *to)
	}
	return where, args
}
