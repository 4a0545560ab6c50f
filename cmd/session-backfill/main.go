package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuserp/attendance-api/internal/models"
	"github.com/campuserp/attendance-api/internal/repository"
	"github.com/campuserp/attendance-api/internal/service"
	"github.com/campuserp/attendance-api/pkg/config"
	"github.com/campuserp/attendance-api/pkg/database"
	"github.com/campuserp/attendance-api/pkg/logger"
)

// session-backfill opens attendance sessions for every scheduled slot in a
// date range. Creation is idempotent, so re-running over an overlapping range
// only fills the gaps.
func main() {
	var (
		fromStr = flag.String("from", "", "start date (YYYY-MM-DD), inclusive")
		toStr   = flag.String("to", "", "end date (YYYY-MM-DD), inclusive; defaults to from")
		dryRun  = flag.Bool("dry-run", false, "report what would be created without writing")
	)
	flag.Parse()

	if *fromStr == "" {
		log.Fatal("-from is required")
	}
	if *toStr == "" {
		*toStr = *fromStr
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid timezone", "timezone", cfg.Attendance.Timezone, "error", err)
	}
	from, err := time.ParseInLocation("2006-01-02", *fromStr, loc)
	if err != nil {
		logr.Sugar().Fatalw("invalid -from date", "error", err)
	}
	to, err := time.ParseInLocation("2006-01-02", *toStr, loc)
	if err != nil {
		logr.Sugar().Fatalw("invalid -to date", "error", err)
	}
	if to.Before(from) {
		logr.Sugar().Fatalw("-to precedes -from", "from", *fromStr, "to", *toStr)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	scheduleRepo := repository.NewScheduleRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	sessionSvc := service.NewSessionService(sessionRepo, scheduleRepo, validator.New(), nil, logr, cfg.Attendance.Timezone)

	ctx := context.Background()
	var created, skipped int

	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		day := models.DayOfWeekFromTime(date)
		sections, err := scheduleRepo.ListSectionsWithSchedules(ctx, day)
		if err != nil {
			logr.Sugar().Fatalw("failed to list sections", "date", date.Format("2006-01-02"), "error", err)
		}
		for _, sectionID := range sections {
			slots, err := scheduleRepo.FindForDay(ctx, sectionID, day, nil)
			if err != nil {
				logr.Sugar().Fatalw("failed to load slots", "section_id", sectionID, "error", err)
			}
			for _, slot := range slots {
				if *dryRun {
					logr.Info("would create session",
						zap.String("component_id", slot.ComponentID),
						zap.String("date", date.Format("2006-01-02")),
						zap.String("start_time", slot.StartTime))
					created++
					continue
				}
				_, wasCreated, err := sessionSvc.Create(ctx, service.CreateSessionRequest{
					ComponentID: slot.ComponentID,
					Date:        date.Format("2006-01-02"),
					StartTime:   slot.StartTime,
					EndTime:     slot.EndTime,
				}, true)
				if err != nil {
					logr.Sugar().Fatalw("failed to create session",
						"component_id", slot.ComponentID,
						"date", date.Format("2006-01-02"),
						"error", err)
				}
				if wasCreated {
					created++
				} else {
					skipped++
				}
			}
		}
	}

	logr.Sugar().Infow("backfill complete",
		"from", *fromStr,
		"to", *toStr,
		"created", created,
		"already_existed", skipped,
		"dry_run", *dryRun)
}
