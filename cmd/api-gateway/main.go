package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campuserp/attendance-api/api/swagger"
	"github.com/campuserp/attendance-api/internal/handler"
	"github.com/campuserp/attendance-api/internal/middleware"
	"github.com/campuserp/attendance-api/internal/models"
	"github.com/campuserp/attendance-api/internal/repository"
	"github.com/campuserp/attendance-api/internal/service"
	"github.com/campuserp/attendance-api/pkg/cache"
	"github.com/campuserp/attendance-api/pkg/config"
	"github.com/campuserp/attendance-api/pkg/database"
	"github.com/campuserp/attendance-api/pkg/logger"
	corsmiddleware "github.com/campuserp/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuserp/attendance-api/pkg/middleware/requestid"
)

// @title Campus ERP Attendance API
// @version 1.0.0
// @description Session-based attendance tracking and statistics service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Cache is an optimization; the API stays up without it.
		logr.Sugar().Warnw("redis unavailable, summaries will not be cached", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Attendance.SummaryCacheTTL, logr, cfg.Attendance.CacheEnabled && redisClient != nil)

	scheduleRepo := repository.NewScheduleRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	authSvc := service.NewAuthService(cfg.JWT)
	scheduleSvc := service.NewScheduleService(scheduleRepo, logr)
	sessionSvc := service.NewSessionService(sessionRepo, scheduleRepo, validate, metricsSvc, logr, cfg.Attendance.Timezone)
	attendanceSvc := service.NewAttendanceService(recordRepo, sessionRepo, studentRepo, cacheSvc, validate, metricsSvc, logr)
	statsSvc := service.NewStatsService(statsRepo, sessionRepo, cacheSvc, cfg.Attendance.SummaryCacheTTL, metricsSvc, logr, cfg.Attendance.Timezone)

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, sessionSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	selfOrStaff := middleware.RBAC(string(models.RoleAdmin), string(models.RoleTeacher), "SELF")

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	{
		api.GET("/me/schedules", scheduleHandler.Today)
		api.GET("/me/sessions", staff, sessionHandler.Today)
		api.GET("/sections/:sectionId/schedules", scheduleHandler.ListForSection)
		api.GET("/components/:id/schedules", scheduleHandler.ListByComponent)
		api.GET("/components/:id/sessions", sessionHandler.ListByComponent)

		api.POST("/sessions", staff, sessionHandler.Create)
		api.GET("/sessions/:id", sessionHandler.Get)
		api.PATCH("/sessions/:id", staff, sessionHandler.UpdateTopic)
		api.POST("/sessions/:id/records", staff, attendanceHandler.MarkBatch)
		api.GET("/sessions/:id/records", staff, attendanceHandler.Roster)
		api.GET("/sessions/:id/summary", staff, statsHandler.SessionSummary)
		api.GET("/sessions/:id/export", staff, attendanceHandler.Export)
		api.PATCH("/records/:id", staff, attendanceHandler.UpdateRecord)

		api.GET("/students/:studentId/attendance-report", selfOrStaff, statsHandler.StudentReport)
		api.GET("/students/:studentId/courses/:courseId/summary", selfOrStaff, statsHandler.CourseSummary)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
