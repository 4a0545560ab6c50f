package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuserp/attendance-api/internal/models"
)

func recordRows(id, sessionID, studentID string, status models.AttendanceStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(recordColumnsList()).
		AddRow(id, sessionID, studentID, string(status), nil, now, now, now)
}

func recordColumnsList() []string {
	return []string{"id", "attendance_session_id", "student_id", "status", "remark", "marked_at", "created_at", "updated_at"}
}

func TestBulkUpsertCommitsOnce(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO attendance_records").
		WillReturnRows(recordRows("rec-1", "sess-1", "stu-1", models.StatusPresent))
	mock.ExpectQuery("INSERT INTO attendance_records").
		WillReturnRows(recordRows("rec-2", "sess-1", "stu-2", models.StatusAbsent))
	mock.ExpectCommit()

	stored, err := repo.BulkUpsert(context.Background(), []models.AttendanceRecord{
		{AttendanceSessionID: "sess-1", StudentID: "stu-1", Status: models.StatusPresent},
		{AttendanceSessionID: "sess-1", StudentID: "stu-2", Status: models.StatusAbsent},
	})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsertRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO attendance_records").
		WillReturnRows(recordRows("rec-1", "sess-1", "stu-1", models.StatusPresent))
	mock.ExpectQuery("INSERT INTO attendance_records").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := repo.BulkUpsert(context.Background(), []models.AttendanceRecord{
		{AttendanceSessionID: "sess-1", StudentID: "stu-1", Status: models.StatusPresent},
		{AttendanceSessionID: "sess-1", StudentID: "stu-2", Status: models.StatusAbsent},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stu-2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsertEmptyBatch(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	stored, err := repo.BulkUpsert(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestListBySessionOrdersByRollNo(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(append(recordColumnsList(), "roll_no", "student_name")).
		AddRow("rec-1", "sess-1", "stu-1", "PRESENT", nil, now, now, now, "21CS001", "Asha Verma").
		AddRow("rec-2", "sess-1", "stu-2", "LATE", "traffic", now, now, now, "21CS002", "Rohan Gupta")

	mock.ExpectQuery("ORDER BY st.roll_no ASC").
		WithArgs("sess-1").
		WillReturnRows(rows)

	roster, err := repo.ListBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "21CS001", roster[0].RollNo)
	assert.Equal(t, models.StatusLate, roster[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
