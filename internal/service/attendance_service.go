package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuserp/attendance-api/internal/models"
	appErrors "github.com/campuserp/attendance-api/pkg/errors"
	"github.com/campuserp/attendance-api/pkg/export"
)

type recordRepository interface {
	BulkUpsert(ctx context.Context, records []models.AttendanceRecord) ([]models.AttendanceRecord, error)
	Update(ctx context.Context, recordID string, status models.AttendanceStatus, remark *string) (*models.AttendanceRecord, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecordRow, error)
}

type sessionReader interface {
	FindByID(ctx context.Context, id string) (*models.AttendanceSession, error)
}

type studentReader interface {
	MissingIDs(ctx context.Context, ids []string) ([]string, error)
}

// AttendanceService is the record ledger: it marks batches, corrects single
// records, and keeps the one-record-per-(session, student) invariant by
// upserting instead of inserting twice.
type AttendanceService struct {
	records   recordRepository
	sessions  sessionReader
	students  studentReader
	cache     *CacheService
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(records recordRepository, sessions sessionReader, students studentReader, cache *CacheService, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{records: records, sessions: sessions, students: students, cache: cache, validator: validate, metrics: metrics, logger: logger}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// MarkRecordItem is one student's entry in a marking batch.
type MarkRecordItem struct {
	StudentID string  `json:"student_id" validate:"required"`
	Status    string  `json:"status" validate:"required,attendance_status"`
	Remark    *string `json:"remark"`
}

// MarkBatchRequest carries the records for one session.
type MarkBatchRequest struct {
	Records []MarkRecordItem `json:"records" validate:"required,min=1,dive"`
}

// MarkBatchResult reports which records a successful batch applied.
type MarkBatchResult struct {
	SessionID string                    `json:"session_id"`
	Marked    int                       `json:"marked"`
	Records   []models.AttendanceRecord `json:"records"`
}

// MarkBatch upserts a session's records as one logical unit. The batch is
// validated up front (unknown students, bad statuses, duplicate entries) and
// rejected whole on any failure; it never half-applies.
func (s *AttendanceService) MarkBatch(ctx context.Context, sessionID string, req MarkBatchRequest) (*MarkBatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	seen := make(map[string]struct{}, len(req.Records))
	studentIDs := make([]string, 0, len(req.Records))
	for _, item := range req.Records {
		if _, ok := seen[item.StudentID]; ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate student in payload: "+item.StudentID)
		}
		seen[item.StudentID] = struct{}{}
		studentIDs = append(studentIDs, item.StudentID)
	}

	missing, err := s.students.MissingIDs(ctx, studentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve students")
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown student ids: "+strings.Join(missing, ", "))
	}

	records := make([]models.AttendanceRecord, len(req.Records))
	for i, item := range req.Records {
		records[i] = models.AttendanceRecord{
			AttendanceSessionID: sessionID,
			StudentID:           item.StudentID,
			Status:              models.AttendanceStatus(strings.ToUpper(item.Status)),
			Remark:              item.Remark,
		}
	}

	stored, err := s.records.BulkUpsert(ctx, records)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}

	s.metrics.RecordsMarked(len(stored))
	s.invalidateSummaries(ctx, studentIDs)
	s.logger.Info("attendance batch marked",
		zap.String("session_id", sessionID),
		zap.Int("records", len(stored)))

	return &MarkBatchResult{SessionID: sessionID, Marked: len(stored), Records: stored}, nil
}

// UpdateRecordRequest corrects one record.
type UpdateRecordRequest struct {
	Status string  `json:"status" validate:"required,attendance_status"`
	Remark *string `json:"remark"`
}

// UpdatedRecord pairs the corrected record with its owning session so the
// caller can invalidate anything keyed on the session.
type UpdatedRecord struct {
	Record  *models.AttendanceRecord  `json:"record"`
	Session *models.AttendanceSession `json:"session"`
}

// UpdateRecord applies a single-record status correction.
func (s *AttendanceService) UpdateRecord(ctx context.Context, recordID string, req UpdateRecordRequest) (*UpdatedRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance status")
	}

	record, err := s.records.Update(ctx, recordID, models.AttendanceStatus(strings.ToUpper(req.Status)), req.Remark)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance record")
	}

	session, err := s.sessions.FindByID(ctx, record.AttendanceSessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load owning session")
	}

	s.metrics.RecordsMarked(1)
	s.invalidateSummaries(ctx, []string{record.StudentID})

	return &UpdatedRecord{Record: record, Session: session}, nil
}

// SessionRoster returns a session's marked records with student metadata.
func (s *AttendanceService) SessionRoster(ctx context.Context, sessionID string) ([]models.AttendanceRecordRow, error) {
	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	rows, err := s.records.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session roster")
	}
	return rows, nil
}

// SessionReportDataset shapes a session's roster for CSV/PDF export.
func (s *AttendanceService) SessionReportDataset(ctx context.Context, sessionID string) (export.Dataset, string, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return export.Dataset{}, "", appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	rows, err := s.records.ListBySession(ctx, sessionID)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session roster")
	}

	dataset := export.Dataset{Headers: []string{"Roll No", "Student", "Status", "Remark", "Marked At"}}
	for _, row := range rows {
		remark := ""
		if row.Remark != nil {
			remark = *row.Remark
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Roll No":   row.RollNo,
			"Student":   row.StudentName,
			"Status":    string(row.Status),
			"Remark":    remark,
			"Marked At": row.MarkedAt.Format("2006-01-02 15:04"),
		})
	}
	title := "Attendance " + session.Date.Format("2006-01-02")
	return dataset, title, nil
}

func (s *AttendanceService) invalidateSummaries(ctx context.Context, studentIDs []string) {
	if !s.cache.Enabled() {
		return
	}
	for _, id := range studentIDs {
		if err := s.cache.Invalidate(ctx, summaryCachePattern(id)); err != nil {
			s.logger.Warn("failed to invalidate summary cache", zap.String("student_id", id), zap.Error(err))
		}
	}
}
