package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuserp/attendance-api/internal/models"
)

// RecordRepository persists per-student attendance records. The
// attendance_records table carries a unique constraint on
// (attendance_session_id, student_id); writes to an existing pair update in
// place.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository constructs the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const recordColumns = `id, attendance_session_id, student_id, status, remark, marked_at, created_at, updated_at`

// BulkUpsert writes a batch of records in a single transaction. Any failure
// rolls the whole batch back; a half-marked session is never left behind.
func (r *RecordRepository) BulkUpsert(ctx context.Context, records []models.AttendanceRecord) ([]models.AttendanceRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bulk attendance upsert: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	query := fmt.Sprintf(`INSERT INTO attendance_records (id, attendance_session_id, student_id, status, remark, marked_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (attendance_session_id, student_id)
DO UPDATE SET status = EXCLUDED.status, remark = EXCLUDED.remark, marked_at = EXCLUDED.marked_at, updated_at = EXCLUDED.updated_at
RETURNING %s`, recordColumns)

	now := time.Now().UTC()
	stored := make([]models.AttendanceRecord, len(records))
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.MarkedAt.IsZero() {
			rec.MarkedAt = now
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if err := tx.GetContext(ctx, &stored[i], query,
			rec.ID, rec.AttendanceSessionID, rec.StudentID, rec.Status, rec.Remark, rec.MarkedAt, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("bulk upsert attendance record for student %s: %w", rec.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk attendance upsert: %w", err)
	}
	commit = true
	return stored, nil
}

// Update corrects a single record's status and remark. Returns sql.ErrNoRows
// for an unknown record id.
func (r *RecordRepository) Update(ctx context.Context, recordID string, status models.AttendanceStatus, remark *string) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf(`UPDATE attendance_records
SET status = $2, remark = $3, marked_at = $4, updated_at = $4
WHERE id = $1
RETURNING %s`, recordColumns)
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, recordID, status, remark, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListBySession returns a session's roster with student metadata, ordered by
// roll number.
func (r *RecordRepository) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecordRow, error) {
	query := fmt.Sprintf(`SELECT r.%s, st.roll_no, st.full_name AS student_name
FROM attendance_records r
JOIN students st ON st.id = r.student_id
WHERE r.attendance_session_id = $1
ORDER BY st.roll_no ASC`, joinRecordColumns())
	var rows []models.AttendanceRecordRow
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("list attendance records by session: %w", err)
	}
	return rows, nil
}

func joinRecordColumns() string {
	return `id, r.attendance_session_id, r.student_id, r.status, r.remark, r.marked_at, r.created_at, r.updated_at`
}
