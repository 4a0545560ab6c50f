package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuserp/attendance-api/internal/models"
)

func slotMockRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"schedule_id", "component_id", "course_id", "course_code", "course_name",
		"component_type", "group_id", "teacher_id", "day_of_week", "start_time", "end_time", "room_number",
	})
}

func TestFindForDayWithoutGroup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := slotMockRows().
		AddRow("sch-1", "comp-1", "c1", "CS101", "Programming", "LECTURE", nil, "t1", "MONDAY", "09:00", "10:00", "R201").
		AddRow("sch-2", "comp-2", "c1", "CS101", "Programming", "LABORATORY", "G1", "t2", "MONDAY", "14:00", "16:00", "L105")

	mock.ExpectQuery("WHERE c.section_id = ").
		WithArgs("sec-1", models.Monday).
		WillReturnRows(rows)

	slots, err := repo.FindForDay(context.Background(), "sec-1", models.Monday, nil)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, models.ComponentLaboratory, slots[1].ComponentType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindForDayFiltersGroup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	group := "G2"
	mock.ExpectQuery(regexp.QuoteMeta("(c.group_id IS NULL OR c.group_id = $3)")).
		WithArgs("sec-1", models.Monday, group).
		WillReturnRows(slotMockRows().
			AddRow("sch-1", "comp-1", "c1", "CS101", "Programming", "LECTURE", nil, "t1", "MONDAY", "09:00", "10:00", nil))

	slots, err := repo.FindForDay(context.Background(), "sec-1", models.Monday, &group)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Nil(t, slots[0].GroupID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSectionsWithSchedules(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery("SELECT DISTINCT c.section_id").
		WithArgs(models.Tuesday).
		WillReturnRows(sqlmock.NewRows([]string{"section_id"}).AddRow("sec-1").AddRow("sec-2"))

	sections, err := repo.ListSectionsWithSchedules(context.Background(), models.Tuesday)
	require.NoError(t, err)
	assert.Equal(t, []string{"sec-1", "sec-2"}, sections)
	assert.NoError(t, mock.ExpectationsWereMet())
}
