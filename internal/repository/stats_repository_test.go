package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuserp/attendance-api/internal/models"
)

func TestSessionStatusCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	rows := sqlmock.NewRows([]string{"status", "cnt"}).
		AddRow("PRESENT", 18).
		AddRow("ABSENT", 2)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS cnt")).
		WithArgs("sess-1").
		WillReturnRows(rows)

	counts, err := repo.SessionStatusCounts(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.StatusPresent, counts[0].Status)
	assert.Equal(t, 18, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseStatusCountsWithRange(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("s.date >= $3")).
		WithArgs("stu-1", "course-1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"status", "cnt"}).AddRow("PRESENT", 10))

	counts, err := repo.CourseStatusCounts(context.Background(), "stu-1", "course-1", &from, &to)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 10, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseWiseStatusCountsOrdering(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	rows := sqlmock.NewRows([]string{"course_id", "course_code", "course_name", "status", "cnt"}).
		AddRow("c1", "CS101", "Programming", "PRESENT", 12).
		AddRow("c1", "CS101", "Programming", "ABSENT", 3).
		AddRow("c2", "MA102", "Calculus", "PRESENT", 9)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY co.code ASC")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	counts, err := repo.CourseWiseStatusCounts(context.Background(), "stu-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, "CS101", counts[0].CourseCode)
	assert.Equal(t, "MA102", counts[2].CourseCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
