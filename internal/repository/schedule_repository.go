package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campuserp/attendance-api/internal/models"
)

// ScheduleRepository reads class schedules. Schedules are teacher-authored,
// static data; this service never writes them.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const slotColumns = `cs.id AS schedule_id, cs.component_id, co.id AS course_id, co.code AS course_code, co.name AS course_name,
	c.component_type, c.group_id, c.teacher_id, cs.day_of_week, cs.start_time, cs.end_time, cs.room_number`

// FindForDay returns the (component, schedule) slots for a section on the
// given weekday. When groupID is set, components scoped to a different group
// are excluded; components with a NULL group apply to every group. A nil
// groupID returns every slot of the section.
func (r *ScheduleRepository) FindForDay(ctx context.Context, sectionID string, day models.DayOfWeek, groupID *string) ([]models.ComponentScheduleSlot, error) {
	base := fmt.Sprintf(`SELECT %s
FROM class_schedules cs
JOIN components c ON c.id = cs.component_id
JOIN courses co ON co.id = c.course_id
WHERE c.section_id = $1 AND cs.day_of_week = $2`, slotColumns)

	args := []interface{}{sectionID, day}
	if groupID != nil {
		base += " AND (c.group_id IS NULL OR c.group_id = $3)"
		args = append(args, *groupID)
	}
	base += " ORDER BY cs.start_time ASC"

	var slots []models.ComponentScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, base, args...); err != nil {
		return nil, fmt.Errorf("find schedules for day: %w", err)
	}
	return slots, nil
}

// ListByComponent returns a component's weekly slots ordered by day and time.
func (r *ScheduleRepository) ListByComponent(ctx context.Context, componentID string) ([]models.ClassSchedule, error) {
	const query = `SELECT id, component_id, day_of_week, start_time, end_time, room_number, created_at
FROM class_schedules WHERE component_id = $1 ORDER BY day_of_week ASC, start_time ASC`
	var schedules []models.ClassSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, componentID); err != nil {
		return nil, fmt.Errorf("list schedules by component: %w", err)
	}
	return schedules, nil
}

// FindComponent loads a component by id.
func (r *ScheduleRepository) FindComponent(ctx context.Context, id string) (*models.Component, error) {
	const query = `SELECT id, course_id, section_id, group_id, teacher_id, component_type, created_at, updated_at
FROM components WHERE id = $1`
	var component models.Component
	if err := r.db.GetContext(ctx, &component, query, id); err != nil {
		return nil, err
	}
	return &component, nil
}

// ListSectionsWithSchedules returns the section ids that have at least one
// slot on the given weekday. Used by the backfill tool to bound its walk.
func (r *ScheduleRepository) ListSectionsWithSchedules(ctx context.Context, day models.DayOfWeek) ([]string, error) {
	const query = `SELECT DISTINCT c.section_id
FROM class_schedules cs
JOIN components c ON c.id = cs.component_id
WHERE cs.day_of_week = $1
ORDER BY c.section_id`
	var sections []string
	if err := r.db.SelectContext(ctx, &sections, query, day); err != nil {
		return nil, fmt.Errorf("list sections with schedules: %w", err)
	}
	return sections, nil
}
