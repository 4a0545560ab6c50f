package models

import "time"

// ComponentType classifies a teaching unit.
type ComponentType string

const (
	ComponentLecture    ComponentType = "LECTURE"
	ComponentTutorial   ComponentType = "TUTORIAL"
	ComponentLaboratory ComponentType = "LABORATORY"
	ComponentPractical  ComponentType = "PRACTICAL"
	ComponentSeminar    ComponentType = "SEMINAR"
	ComponentProject    ComponentType = "PROJECT"
)

// Valid returns true when the component type is a supported value.
func (t ComponentType) Valid() bool {
	switch t {
	case ComponentLecture, ComponentTutorial, ComponentLaboratory, ComponentPractical, ComponentSeminar, ComponentProject:
		return true
	default:
		return false
	}
}

// DayOfWeek names a weekday in schedule rows.
type DayOfWeek string

const (
	Sunday    DayOfWeek = "SUNDAY"
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
)

// Valid returns true when the day is a supported value.
func (d DayOfWeek) Valid() bool {
	switch d {
	case Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday:
		return true
	default:
		return false
	}
}

// DayOfWeekFromTime maps a timestamp to the schedule weekday enum.
func DayOfWeekFromTime(t time.Time) DayOfWeek {
	switch t.Weekday() {
	case time.Sunday:
		return Sunday
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	default:
		return Saturday
	}
}

// Component is a teaching unit: a course taught to one section, optionally
// scoped to a single group within the section. Components are authored by the
// course-setup tooling and are read-only for this service.
type Component struct {
	ID            string        `db:"id" json:"id"`
	CourseID      string        `db:"course_id" json:"course_id"`
	SectionID     string        `db:"section_id" json:"section_id"`
	GroupID       *string       `db:"group_id" json:"group_id,omitempty"`
	TeacherID     *string       `db:"teacher_id" json:"teacher_id,omitempty"`
	ComponentType ComponentType `db:"component_type" json:"component_type"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// ClassSchedule is one recurring weekly slot of a component. Start and end
// times are times of day in HH:MM.
type ClassSchedule struct {
	ID          string    `db:"id" json:"id"`
	ComponentID string    `db:"component_id" json:"component_id"`
	DayOfWeek   DayOfWeek `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	RoomNumber  *string   `db:"room_number" json:"room_number,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ComponentScheduleSlot is a joined (component, schedule) row used by the
// day lookup. A component with several slots on one day appears once per
// slot; callers disambiguate by start time, not by component id.
type ComponentScheduleSlot struct {
	ScheduleID    string        `db:"schedule_id" json:"schedule_id"`
	ComponentID   string        `db:"component_id" json:"component_id"`
	CourseID      string        `db:"course_id" json:"course_id"`
	CourseCode    string        `db:"course_code" json:"course_code"`
	CourseName    string        `db:"course_name" json:"course_name"`
	ComponentType ComponentType `db:"component_type" json:"component_type"`
	GroupID       *string       `db:"group_id" json:"group_id,omitempty"`
	TeacherID     *string       `db:"teacher_id" json:"teacher_id,omitempty"`
	DayOfWeek     DayOfWeek     `db:"day_of_week" json:"day_of_week"`
	StartTime     string        `db:"start_time" json:"start_time"`
	EndTime       string        `db:"end_time" json:"end_time"`
	RoomNumber    *string       `db:"room_number" json:"room_number,omitempty"`
}
