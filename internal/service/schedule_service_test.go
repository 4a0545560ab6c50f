package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuserp/attendance-api/internal/models"
	appErrors "github.com/campuserp/attendance-api/pkg/errors"
)

type fakeScheduleRepo struct {
	slots     map[models.DayOfWeek][]models.ComponentScheduleSlot
	lastGroup *string
}

func (f *fakeScheduleRepo) FindForDay(ctx context.Context, sectionID string, day models.DayOfWeek, groupID *string) ([]models.ComponentScheduleSlot, error) {
	f.lastGroup = groupID
	return f.slots[day], nil
}

func (f *fakeScheduleRepo) ListByComponent(ctx context.Context, componentID string) ([]models.ClassSchedule, error) {
	return nil, nil
}

func TestFindForDayValidatesDay(t *testing.T) {
	svc := NewScheduleService(&fakeScheduleRepo{}, nil)

	_, err := svc.FindForDay(context.Background(), "sec-1", "FUNDAY", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestFindForDayLowercaseAccepted(t *testing.T) {
	repo := &fakeScheduleRepo{slots: map[models.DayOfWeek][]models.ComponentScheduleSlot{
		models.Monday: {{ScheduleID: "sch-1", ComponentID: "comp-1"}},
	}}
	svc := NewScheduleService(repo, nil)

	slots, err := svc.FindForDay(context.Background(), "sec-1", "monday", nil)
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestFindForDayEmptyIsNotAnError(t *testing.T) {
	svc := NewScheduleService(&fakeScheduleRepo{}, nil)

	slots, err := svc.FindForDay(context.Background(), "sec-1", "SUNDAY", nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestFindForDatePassesGroupThrough(t *testing.T) {
	repo := &fakeScheduleRepo{}
	svc := NewScheduleService(repo, nil)

	group := "G2"
	// 2025-08-21 is a Thursday.
	_, err := svc.FindForDate(context.Background(), "sec-1", time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC), &group)
	require.NoError(t, err)
	require.NotNil(t, repo.lastGroup)
	assert.Equal(t, "G2", *repo.lastGroup)
}
