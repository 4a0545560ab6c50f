package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuserp/attendance-api/internal/models"
	appErrors "github.com/campuserp/attendance-api/pkg/errors"
)

type fakeStatsRepo struct {
	session    []models.StatusCount
	course     []models.StatusCount
	overall    []models.StatusCount
	courseWise []models.CourseStatusCount
	calls      int
}

func (f *fakeStatsRepo) SessionStatusCounts(ctx context.Context, sessionID string) ([]models.StatusCount, error) {
	f.calls++
	return f.session, nil
}

func (f *fakeStatsRepo) CourseStatusCounts(ctx context.Context, studentID, courseID string, from, to *time.Time) ([]models.StatusCount, error) {
	f.calls++
	return f.course, nil
}

func (f *fakeStatsRepo) OverallStatusCounts(ctx context.Context, studentID string, from, to *time.Time) ([]models.StatusCount, error) {
	f.calls++
	return f.overall, nil
}

func (f *fakeStatsRepo) CourseWiseStatusCounts(ctx context.Context, studentID string, from, to *time.Time) ([]models.CourseStatusCount, error) {
	f.calls++
	return f.courseWise, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	// Pattern granularity in tests is per student; wipe everything.
	m.entries = nil
	return nil
}

type statsSessionReader struct{ exists bool }

func (s *statsSessionReader) FindByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	if !s.exists {
		return nil, sql.ErrNoRows
	}
	return &models.AttendanceSession{ID: id}, nil
}

func newTestStatsService(repo *fakeStatsRepo, cache *CacheService) *StatsService {
	return NewStatsService(repo, &statsSessionReader{exists: true}, cache, time.Minute, nil, nil, "Asia/Kolkata")
}

func TestSessionSummaryPercentage(t *testing.T) {
	repo := &fakeStatsRepo{session: []models.StatusCount{
		{Status: models.StatusPresent, Count: 2},
		{Status: models.StatusLate, Count: 1},
		{Status: models.StatusAbsent, Count: 1},
	}}
	svc := newTestStatsService(repo, nil)

	summary, err := svc.SessionSummary(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalSessions)
	assert.Equal(t, 75.0, summary.Percentage)
}

func TestSessionSummaryUnknownSession(t *testing.T) {
	svc := NewStatsService(&fakeStatsRepo{}, &statsSessionReader{exists: false}, nil, time.Minute, nil, nil, "UTC")

	_, err := svc.SessionSummary(context.Background(), "sess-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestEmptyScopeYieldsZeroPercentage(t *testing.T) {
	svc := newTestStatsService(&fakeStatsRepo{}, nil)

	summary, err := svc.CourseSummary(context.Background(), "stu-1", "course-1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalSessions)
	assert.Equal(t, 0.0, summary.Percentage)
}

func TestPercentageRoundsToTwoDecimals(t *testing.T) {
	repo := &fakeStatsRepo{course: []models.StatusCount{
		{Status: models.StatusPresent, Count: 1},
		{Status: models.StatusAbsent, Count: 2},
	}}
	svc := newTestStatsService(repo, nil)

	summary, err := svc.CourseSummary(context.Background(), "stu-1", "course-1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 33.33, summary.Percentage)
}

func TestStudentReportCourseOrderPreserved(t *testing.T) {
	repo := &fakeStatsRepo{
		overall: []models.StatusCount{{Status: models.StatusPresent, Count: 21}},
		courseWise: []models.CourseStatusCount{
			{CourseID: "c1", CourseCode: "CS101", CourseName: "Programming", Status: models.StatusPresent, Count: 12},
			{CourseID: "c1", CourseCode: "CS101", CourseName: "Programming", Status: models.StatusAbsent, Count: 4},
			{CourseID: "c2", CourseCode: "MA102", CourseName: "Calculus", Status: models.StatusPresent, Count: 9},
		},
	}
	svc := newTestStatsService(repo, nil)

	report, err := svc.StudentReport(context.Background(), "stu-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, report.Courses, 2)
	assert.Equal(t, "CS101", report.Courses[0].CourseCode)
	assert.Equal(t, 16, report.Courses[0].TotalSessions)
	assert.Equal(t, 75.0, report.Courses[0].Percentage)
	assert.Equal(t, "MA102", report.Courses[1].CourseCode)
	assert.Equal(t, 100.0, report.Courses[1].Percentage)
}

func TestStudentReportServedFromCache(t *testing.T) {
	repo := &fakeStatsRepo{overall: []models.StatusCount{{Status: models.StatusPresent, Count: 5}}}
	cacheRepo := &memoryCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := newTestStatsService(repo, cacheSvc)

	_, err := svc.StudentReport(context.Background(), "stu-1", nil, nil)
	require.NoError(t, err)
	firstCalls := repo.calls

	report, err := svc.StudentReport(context.Background(), "stu-1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, firstCalls, repo.calls, "second read should not hit the repository")
	assert.Equal(t, 100.0, report.Overall.Percentage)
}

func TestDateRangeDistinguishesCacheKeys(t *testing.T) {
	repo := &fakeStatsRepo{overall: []models.StatusCount{{Status: models.StatusPresent, Count: 5}}}
	cacheRepo := &memoryCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := newTestStatsService(repo, cacheSvc)

	_, err := svc.StudentReport(context.Background(), "stu-1", nil, nil)
	require.NoError(t, err)
	firstCalls := repo.calls

	from, to, err := svc.ParseDateRange("2025-08-01", "2025-08-31")
	require.NoError(t, err)
	_, err = svc.StudentReport(context.Background(), "stu-1", from, to)
	require.NoError(t, err)
	assert.Greater(t, repo.calls, firstCalls, "bounded range must not reuse the unbounded entry")
}

func TestParseDateRangeRejectsInvertedBounds(t *testing.T) {
	svc := newTestStatsService(&fakeStatsRepo{}, nil)

	_, _, err := svc.ParseDateRange("2025-08-31", "2025-08-01")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}
