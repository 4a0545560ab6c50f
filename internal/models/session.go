package models

import "time"

// AttendanceSession is one concrete class meeting of a component. The date
// column is truncated to midnight in the reference timezone and, together
// with component id and start time, forms the session's logical key. The
// store enforces uniqueness on (component_id, date, start_time).
type AttendanceSession struct {
	ID          string    `db:"id" json:"id"`
	ComponentID string    `db:"component_id" json:"component_id"`
	Date        time.Time `db:"date" json:"date"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	Topic       *string   `db:"topic" json:"topic,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SessionDetail extends a session with component and course metadata for
// listing views.
type SessionDetail struct {
	AttendanceSession
	CourseID      string        `db:"course_id" json:"course_id"`
	CourseCode    string        `db:"course_code" json:"course_code"`
	CourseName    string        `db:"course_name" json:"course_name"`
	ComponentType ComponentType `db:"component_type" json:"component_type"`
	SectionID     string        `db:"section_id" json:"section_id"`
	GroupID       *string       `db:"group_id" json:"group_id,omitempty"`
}

// SessionConflictError is returned when a session already exists for the
// same (component, date, start time) slot. It carries the existing session
// so callers can redirect to its marking view instead of erroring opaquely.
type SessionConflictError struct {
	Message  string             `json:"message"`
	Existing *AttendanceSession `json:"existing"`
}

// Error implements the error interface for conflict errors.
func (e *SessionConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
