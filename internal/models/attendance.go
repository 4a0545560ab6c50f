package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusAbsent  AttendanceStatus = "ABSENT"
	StatusLate    AttendanceStatus = "LATE"
	StatusLeave   AttendanceStatus = "LEAVE"
	StatusExcused AttendanceStatus = "EXCUSED"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusLeave, StatusExcused:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one student's outcome for one session. The store
// enforces uniqueness on (attendance_session_id, student_id); a second write
// to the same pair updates in place.
type AttendanceRecord struct {
	ID                  string           `db:"id" json:"id"`
	AttendanceSessionID string           `db:"attendance_session_id" json:"attendance_session_id"`
	StudentID           string           `db:"student_id" json:"student_id"`
	Status              AttendanceStatus `db:"status" json:"status"`
	Remark              *string          `db:"remark" json:"remark,omitempty"`
	MarkedAt            time.Time        `db:"marked_at" json:"marked_at"`
	CreatedAt           time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceRecordRow extends a record with student metadata for rosters.
type AttendanceRecordRow struct {
	AttendanceRecord
	RollNo      string `db:"roll_no" json:"roll_no"`
	StudentName string `db:"student_name" json:"student_name"`
}

// AttendanceSummary aggregates record counts over a scope. Percentage treats
// LATE as attended, per product convention. It stays unrounded until the
// response payload is built.
type AttendanceSummary struct {
	TotalSessions int     `json:"total_sessions"`
	Present       int     `json:"present"`
	Absent        int     `json:"absent"`
	Late          int     `json:"late"`
	Leave         int     `json:"leave"`
	Excused       int     `json:"excused"`
	Percentage    float64 `json:"percentage"`
}

// CourseAttendanceSummary is the per-course breakdown of a student's
// attendance, ordered by course code for stable rendering.
type CourseAttendanceSummary struct {
	CourseID   string `db:"course_id" json:"course_id"`
	CourseCode string `db:"course_code" json:"course_code"`
	CourseName string `db:"course_name" json:"course_name"`
	AttendanceSummary
}

// StatusCount is a raw (status, count) aggregation row.
type StatusCount struct {
	Status AttendanceStatus `db:"status"`
	Count  int              `db:"cnt"`
}

// CourseStatusCount is a raw aggregation row grouped by course and status.
type CourseStatusCount struct {
	CourseID   string           `db:"course_id"`
	CourseCode string           `db:"course_code"`
	CourseName string           `db:"course_name"`
	Status     AttendanceStatus `db:"status"`
	Count      int              `db:"cnt"`
}
