package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/campuserp/attendance-api/internal/models"
	appErrors "github.com/campuserp/attendance-api/pkg/errors"
)

type statsRepository interface {
	SessionStatusCounts(ctx context.Context, sessionID string) ([]models.StatusCount, error)
	CourseStatusCounts(ctx context.Context, studentID, courseID string, from, to *time.Time) ([]models.StatusCount, error)
	OverallStatusCounts(ctx context.Context, studentID string, from, to *time.Time) ([]models.StatusCount, error)
	CourseWiseStatusCounts(ctx context.Context, studentID string, from, to *time.Time) ([]models.CourseStatusCount, error)
}

// StatsService is the aggregation engine. It folds grouped status counts
// into summaries; percentage arithmetic happens on raw counts as float64 and
// gets rounded once, when the summary leaves this service.
type StatsService struct {
	repo     statsRepository
	sessions sessionReader
	cache    *CacheService
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
	loc      *time.Location
}

// NewStatsService constructs the stats service. An unknown timezone falls
// back to UTC.
func NewStatsService(repo statsRepository, sessions sessionReader, cache *CacheService, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger, timezone string) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &StatsService{repo: repo, sessions: sessions, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger, loc: loc}
}

// StudentAttendanceReport bundles a student's overall summary with the
// per-course breakdown, ordered by course code.
type StudentAttendanceReport struct {
	Overall models.AttendanceSummary         `json:"overall"`
	Courses []models.CourseAttendanceSummary `json:"courses"`
}

// SessionSummary aggregates one session's records.
func (s *StatsService) SessionSummary(ctx context.Context, sessionID string) (*models.AttendanceSummary, error) {
	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	start := time.Now()
	counts, err := s.repo.SessionStatusCounts(ctx, sessionID)
	s.metrics.ObserveDBQuery("session_status_counts", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate session")
	}
	summary := foldCounts(counts)
	return &summary, nil
}

// CourseSummary aggregates a student's records for one course across an
// optional date range.
func (s *StatsService) CourseSummary(ctx context.Context, studentID, courseID string, from, to *time.Time) (*models.AttendanceSummary, error) {
	if studentID == "" || courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id and course id required")
	}

	key := summaryCacheKey(studentID, "course:"+courseID, from, to)
	var cached models.AttendanceSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	start := time.Now()
	counts, err := s.repo.CourseStatusCounts(ctx, studentID, courseID, from, to)
	s.metrics.ObserveDBQuery("course_status_counts", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate course attendance")
	}
	summary := foldCounts(counts)

	if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache course summary", zap.String("key", key), zap.Error(err))
	}
	return &summary, nil
}

// StudentReport computes the overall scalar summary plus the course-wise
// breakdown for a student across an optional date range.
func (s *StatsService) StudentReport(ctx context.Context, studentID string, from, to *time.Time) (*StudentAttendanceReport, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id required")
	}

	key := summaryCacheKey(studentID, "report", from, to)
	var cached StudentAttendanceReport
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	start := time.Now()
	overall, err := s.repo.OverallStatusCounts(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate overall attendance")
	}
	courseRows, err := s.repo.CourseWiseStatusCounts(ctx, studentID, from, to)
	s.metrics.ObserveDBQuery("student_report_counts", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate course-wise attendance")
	}

	report := &StudentAttendanceReport{
		Overall: foldCounts(overall),
		Courses: foldCourseCounts(courseRows),
	}

	if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache student report", zap.String("key", key), zap.Error(err))
	}
	return report, nil
}

// ParseDateRange parses optional from/to query values in the reference
// timezone. Empty strings yield nil bounds.
func (s *StatsService) ParseDateRange(fromStr, toStr string) (from, to *time.Time, err error) {
	if fromStr != "" {
		parsed, parseErr := time.ParseInLocation("2006-01-02", fromStr, s.loc)
		if parseErr != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid from date, expected YYYY-MM-DD")
		}
		from = &parsed
	}
	if toStr != "" {
		parsed, parseErr := time.ParseInLocation("2006-01-02", toStr, s.loc)
		if parseErr != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid to date, expected YYYY-MM-DD")
		}
		to = &parsed
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to date precedes from date")
	}
	return from, to, nil
}

// foldCounts collapses grouped status counts into a summary. LATE counts as
// attended for the percentage, per product convention. An empty scope yields
// a zero percentage, never NaN.
func foldCounts(counts []models.StatusCount) models.AttendanceSummary {
	var summary models.AttendanceSummary
	for _, row := range counts {
		switch row.Status {
		case models.StatusPresent:
			summary.Present += row.Count
		case models.StatusAbsent:
			summary.Absent += row.Count
		case models.StatusLate:
			summary.Late += row.Count
		case models.StatusLeave:
			summary.Leave += row.Count
		case models.StatusExcused:
			summary.Excused += row.Count
		}
		summary.TotalSessions += row.Count
	}
	if summary.TotalSessions > 0 {
		raw := float64(summary.Present+summary.Late) / float64(summary.TotalSessions) * 100
		summary.Percentage = round2(raw)
	}
	return summary
}

func foldCourseCounts(rows []models.CourseStatusCount) []models.CourseAttendanceSummary {
	// Rows arrive ordered by course code; preserve that order while folding.
	var result []models.CourseAttendanceSummary
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.CourseID]
		if !ok {
			result = append(result, models.CourseAttendanceSummary{
				CourseID:   row.CourseID,
				CourseCode: row.CourseCode,
				CourseName: row.CourseName,
			})
			i = len(result) - 1
			index[row.CourseID] = i
		}
		entry := &result[i]
		switch row.Status {
		case models.StatusPresent:
			entry.Present += row.Count
		case models.StatusAbsent:
			entry.Absent += row.Count
		case models.StatusLate:
			entry.Late += row.Count
		case models.StatusLeave:
			entry.Leave += row.Count
		case models.StatusExcused:
			entry.Excused += row.Count
		}
		entry.TotalSessions += row.Count
	}
	for i := range result {
		if result[i].TotalSessions > 0 {
			raw := float64(result[i].Present+result[i].Late) / float64(result[i].TotalSessions) * 100
			result[i].Percentage = round2(raw)
		}
	}
	return result
}

// round2 rounds to two decimals at the presentation boundary only; counts
// stay integral so nested aggregations never compound rounding error.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func summaryCacheKey(studentID, scope string, from, to *time.Time) string {
	return fmt.Sprintf("attendance:summary:%s:%s:%s", studentID, scope, rangeKey(from, to))
}

func summaryCachePattern(studentID string) string {
	return fmt.Sprintf("attendance:summary:%s:*", studentID)
}

func rangeKey(from, to *time.Time) string {
	format := func(t *time.Time) string {
		if t == nil {
			return "any"
		}
		return t.Format("20060102")
	}
	return format(from) + "-" + format(to)
}
