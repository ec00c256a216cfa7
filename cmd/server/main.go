package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/school-portal-api/internal/handler"
	"github.com/campushub/school-portal-api/internal/middleware"
	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/internal/repository"
	"github.com/campushub/school-portal-api/internal/service"
	"github.com/campushub/school-portal-api/pkg/cache"
	"github.com/campushub/school-portal-api/pkg/config"
	"github.com/campushub/school-portal-api/pkg/database"
	"github.com/campushub/school-portal-api/pkg/logger"
	corsmiddleware "github.com/campushub/school-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushub/school-portal-api/pkg/middleware/requestid"
	"github.com/campushub/school-portal-api/pkg/storage"
)

// @title School Portal API
// @version 1.0.0
// @description REST API for managing students, teachers, subjects, enrollments and coursework
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, stats cache disabled", zap.Error(err))
		redisClient = nil
	}

	store, err := storage.NewLocalStore(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare upload storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teachingRepo := repository.NewTeachingRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	courseworkRepo := repository.NewCourseworkRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      "school-portal-api",
	})
	userSvc := service.NewUserService(userRepo, enrollmentRepo, teachingRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	teachingSvc := service.NewTeachingService(userRepo, subjectRepo, teachingRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teachingRepo, enrollmentRepo, logr)
	studentSvc := service.NewStudentService(subjectRepo, enrollmentRepo, logr)
	metricsSvc := service.NewMetricsService()
	courseworkSvc := service.NewCourseworkService(courseworkRepo, teachingRepo, store, signer, service.CourseworkConfig{
		MaxFileSize: cfg.Uploads.MaxFileSizeBytes,
	}, metricsSvc, validate, logr)
	statsSvc := service.NewStatsService(userRepo, subjectRepo, enrollmentRepo, cacheRepo, cfg.Stats.CacheTTL, metricsSvc, logr)

	if cfg.Seed.Enabled {
		if err := seedAdmin(context.Background(), userRepo, cfg.Seed, logr); err != nil {
			logr.Warn("failed to seed admin account", zap.Error(err))
		}
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	teachingHandler := handler.NewTeachingHandler(teachingSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	courseworkHandler := handler.NewCourseworkHandler(courseworkSvc, cfg.Uploads.MaxFileSizeBytes)
	statsHandler := handler.NewStatsHandler(statsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)

	api.POST("/login", authHandler.Login)
	api.GET("/files/:token", courseworkHandler.Download)

	auth := api.Group("/auth", middleware.JWT(authSvc))
	auth.POST("/change-password", authHandler.ChangePassword)

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/stats", statsHandler.Overview)
	admin.POST("/create-student", userHandler.CreateStudent)
	admin.GET("/students", userHandler.ListStudents)
	admin.PUT("/students/:id", userHandler.UpdateStudent)
	admin.DELETE("/students/:id", userHandler.DeleteStudent)
	admin.POST("/create-teacher", userHandler.CreateTeacher)
	admin.GET("/teachers", userHandler.ListTeachers)
	admin.PUT("/teachers/:id", userHandler.UpdateTeacher)
	admin.DELETE("/teachers/:id", userHandler.DeleteTeacher)
	admin.GET("/teachers-with-subjects", teachingHandler.TeachersWithSubjects)
	admin.POST("/create-subject", subjectHandler.Create)
	admin.GET("/subjects", subjectHandler.List)
	admin.PUT("/subjects/:id", subjectHandler.Update)
	admin.DELETE("/subjects/:id", subjectHandler.Delete)
	admin.POST("/assign-subjects", teachingHandler.AssignSubjects)

	teacher := api.Group("/teacher", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTeacher))
	teacher.GET("/subjects", teacherHandler.MySubjects)
	teacher.GET("/students", teacherHandler.MyStudents)
	teacher.GET("/enrollments", teacherHandler.MyEnrollments)
	teacher.GET("/enrollments/export", teacherHandler.ExportRoster)
	teacher.POST("/assignments/upload", courseworkHandler.Upload)
	teacher.GET("/assignments", courseworkHandler.List)
	teacher.DELETE("/assignments/:id", courseworkHandler.Delete)

	student := api.Group("/student", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent))
	student.GET("/subjects", studentHandler.AvailableSubjects)
	student.GET("/enrolled-subjects", studentHandler.MyEnrollments)
	student.POST("/enroll", studentHandler.Enroll)
	student.DELETE("/unenroll/:subjectId", studentHandler.Unenroll)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	if err := cacheRepo.Close(); err != nil {
		logr.Warn("failed to close redis", zap.Error(err))
	}
}

// seedAdmin creates the bootstrap admin account when none exists yet.
func seedAdmin(ctx context.Context, users *repository.UserRepository, seed config.SeedConfig, logr *zap.Logger) error {
	if seed.AdminEmail == "" || seed.AdminPassword == "" {
		return fmt.Errorf("seed admin email and password are required")
	}

	if _, err := users.FindByEmail(ctx, seed.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:         seed.AdminName,
		Email:        seed.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return err
	}

	logr.Info("seeded admin account", zap.String("email", seed.AdminEmail))
	return nil
}
