package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campuserp/attendance-api/internal/models"
	appErrors "github.com/campuserp/attendance-api/pkg/errors"
)

type scheduleRepository interface {
	FindForDay(ctx context.Context, sectionID string, day models.DayOfWeek, groupID *string) ([]models.ComponentScheduleSlot, error)
	ListByComponent(ctx context.Context, componentID string) ([]models.ClassSchedule, error)
}

// ScheduleService answers "which class meetings exist on this weekday" for a
// section, optionally narrowed to a group. Pure reads over teacher-authored
// data.
type ScheduleService struct {
	repo   scheduleRepository
	logger *zap.Logger
}

// NewScheduleService constructs the schedule service.
func NewScheduleService(repo scheduleRepository, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, logger: logger}
}

// FindForDay returns the candidate meeting slots for a section on a weekday.
// A component with several slots on the same day yields one entry per slot;
// downstream session creation disambiguates by start time. An empty result
// is a valid answer, not an error.
func (s *ScheduleService) FindForDay(ctx context.Context, sectionID, day string, groupID *string) ([]models.ComponentScheduleSlot, error) {
	if sectionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "section id required")
	}
	dow := models.DayOfWeek(strings.ToUpper(day))
	if !dow.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid day of week")
	}
	slots, err := s.repo.FindForDay(ctx, sectionID, dow, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
	}
	return slots, nil
}

// FindForDate resolves a calendar date to its weekday and delegates to
// FindForDay.
func (s *ScheduleService) FindForDate(ctx context.Context, sectionID string, date time.Time, groupID *string) ([]models.ComponentScheduleSlot, error) {
	return s.FindForDay(ctx, sectionID, string(models.DayOfWeekFromTime(date)), groupID)
}

// ListByComponent returns a component's weekly slots.
func (s *ScheduleService) ListByComponent(ctx context.Context, componentID string) ([]models.ClassSchedule, error) {
	if componentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "component id required")
	}
	schedules, err := s.repo.ListByComponent(ctx, componentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load component schedules")
	}
	return schedules, nil
}
