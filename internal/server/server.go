package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"anoa.com/coursemarket/internal/agent"
	"anoa.com/coursemarket/internal/agent/agents"
	"anoa.com/coursemarket/internal/agent/providers"
	"anoa.com/coursemarket/internal/config"
	"anoa.com/coursemarket/internal/entity"
	"anoa.com/coursemarket/internal/middleware"
	"anoa.com/coursemarket/pkg/ratelimiter"
	"anoa.com/coursemarket/pkg/storage"
	"anoa.com/coursemarket/pkg/token"
	"anoa.com/coursemarket/pkg/validator"

	aiHttp "anoa.com/coursemarket/internal/modules/ai/delivery/http"
	aiService "anoa.com/coursemarket/internal/modules/ai/service"

	attachmentHttp "anoa.com/coursemarket/internal/modules/attachment/delivery/http"
	attachmentService "anoa.com/coursemarket/internal/modules/attachment/service"

	categoryHttp "anoa.com/coursemarket/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/coursemarket/internal/modules/category/repository"
	categoryService "anoa.com/coursemarket/internal/modules/category/service"

	courseHttp "anoa.com/coursemarket/internal/modules/course/delivery/http"
	courseRepo "anoa.com/coursemarket/internal/modules/course/repository"
	courseService "anoa.com/coursemarket/internal/modules/course/service"

	creatorHttp "anoa.com/coursemarket/internal/modules/creator/delivery/http"
	creatorRepo "anoa.com/coursemarket/internal/modules/creator/repository"
	creatorService "anoa.com/coursemarket/internal/modules/creator/service"

	enrollmentHttp "anoa.com/coursemarket/internal/modules/enrollment/delivery/http"
	enrollmentRepo "anoa.com/coursemarket/internal/modules/enrollment/repository"
	enrollmentService "anoa.com/coursemarket/internal/modules/enrollment/service"

	notiHttp "anoa.com/coursemarket/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/coursemarket/internal/modules/notification/repository"
	notifService "anoa.com/coursemarket/internal/modules/notification/service"

	searchService "anoa.com/coursemarket/internal/modules/search/service"

	statHttp "anoa.com/coursemarket/internal/modules/stat/delivery/http"
	statRepo "anoa.com/coursemarket/internal/modules/stat/repository"
	statService "anoa.com/coursemarket/internal/modules/stat/service"

	userHttp "anoa.com/coursemarket/internal/modules/user/delivery/http"
	userRepo "anoa.com/coursemarket/internal/modules/user/repository"
	userService "anoa.com/coursemarket/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dependencies are the external clients the server runs on. Only DB is required.
type Dependencies struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Search  meilisearch.ServiceManager
	Storage storage.ImageStorage
	LLM     providers.LLMProvider
	Logger  *slog.Logger
}

type Server struct {
	engine    *gin.Engine
	cfg       *config.Config
	db        *gorm.DB
	scheduler *agent.Scheduler
	logger    *slog.Logger
}

func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	validator.Setup()

	db := deps.DB
	redisClient := deps.Redis
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepo, tokens, userService.Options{
		AllowAdminSignup: cfg.AllowAdminSignup,
	}, logger)
	authHandler := userHttp.NewAuthHandler(authSvc, userHttp.CookieConfig{
		Name:   cfg.CookieName,
		Secure: cfg.IsProduction(),
		MaxAge: cfg.JWTTTL,
	})

	var courseIndex searchService.CourseIndex
	var searchIndex courseService.SearchIndex
	if deps.Search != nil {
		courseIndex = searchService.NewMeiliSearchService(deps.Search, logger)
		searchIndex = courseIndex
	}

	courseRepo := courseRepo.NewCourseRepository(db)
	creatorRepo := creatorRepo.NewCreatorRepository(db)

	courseSvc := courseService.NewCourseService(courseRepo, creatorRepo, searchIndex, deps.Storage, logger)
	courseHandler := courseHttp.NewCourseHandler(courseSvc)

	categoryHandler := categoryHttp.NewCategoryHandler(
		categoryService.NewCategoryService(categoryRepo.NewCategoryRepository(db)),
	)

	creatorSvc := creatorService.NewCreatorService(creatorRepo, courseRepo, logger)
	creatorHandler := creatorHttp.NewCreatorHandler(creatorSvc)

	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient, logger)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.AllowedOrigins, logger)

	enrollmentRepository := enrollmentRepo.NewEnrollmentRepository(db)
	enrollmentSvc := enrollmentService.NewEnrollmentService(enrollmentRepository, courseRepo, notificationSvc, logger)
	enrollmentHandler := enrollmentHttp.NewEnrollmentHandler(enrollmentSvc)

	statSvc := statService.NewStatService(statRepo.NewStatRepository(db))
	statHandler := statHttp.NewStatHandler(statSvc)

	attachmentSvc := attachmentService.NewAttachmentService(deps.Storage, logger)
	attachmentHandler := attachmentHttp.NewAttachmentHandler(attachmentSvc)

	var generator aiService.TextGenerator
	if deps.LLM != nil {
		generator = deps.LLM
	}
	aiSvc := aiService.NewAIService(generator, ratelimiter.New(redisClient), aiService.Options{
		Timeout:  cfg.AIRequestTimeout,
		Cooldown: cfg.AIDraftCooldown,
	}, logger)
	aiHandler := aiHttp.NewAIHandler(aiSvc)

	scheduler := agent.NewScheduler(30*time.Minute, logger)
	if courseIndex != nil && cfg.SearchReindexSchedule != "" {
		reindex := agents.NewSearchReindexAgent(courseRepo, courseIndex, redisClient, cfg.SearchReindexSchedule, logger)
		if err := scheduler.RegisterAgent(reindex); err != nil {
			return nil, err
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: accessLogFormatter,
		SkipPaths: []string{"/healthz"},
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepo, tokens, cfg.CookieName)
	requireAuth := authMiddleware.RequireAuth()
	optionalAuth := authMiddleware.OptionalAuth()
	staff := authMiddleware.RequireRoles(entity.RoleCreator, entity.RoleAdmin)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/sign-up", authHandler.SignUp)
		auth.POST("/sign-in", authHandler.SignIn)
		auth.POST("/sign-out", authHandler.SignOut)
		auth.GET("/me", requireAuth, authHandler.Me)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", optionalAuth, courseHandler.ListCourses)
		courses.GET("/search", optionalAuth, courseHandler.SearchCourses)
		courses.GET("/:id", optionalAuth, courseHandler.GetCourse)
		courses.POST("", requireAuth, staff, courseHandler.CreateCourse)
		courses.PUT("/:id", requireAuth, staff, courseHandler.UpdateCourse)
		courses.DELETE("/:id", requireAuth, staff, courseHandler.DeleteCourse)
	}

	api.GET("/categories", categoryHandler.GetAllCategories)
	api.POST("/uploads/course-image", requireAuth, staff, attachmentHandler.UploadCourseImage)

	creators := api.Group("/creators")
	{
		creators.GET("", optionalAuth, creatorHandler.GetCreators)
		creators.GET("/:id", optionalAuth, creatorHandler.GetCreator)
		creators.PUT("", requireAuth, staff, creatorHandler.UpsertProfile)
	}

	enrollments := api.Group("/enrollments", requireAuth)
	{
		enrollments.GET("", authMiddleware.RequireRoles(entity.RoleStudent, entity.RoleCreator, entity.RoleAdmin), enrollmentHandler.ListEnrollments)
		enrollments.POST("", authMiddleware.RequireRoles(entity.RoleStudent), enrollmentHandler.Enroll)
		enrollments.DELETE("/:courseId", authMiddleware.RequireRoles(entity.RoleStudent), enrollmentHandler.Unenroll)
	}

	api.GET("/stats", optionalAuth, statHandler.GetStats)

	ai := api.Group("/ai", requireAuth)
	{
		ai.POST("/course-draft", staff, aiHandler.GenerateCourseDraft)
		ai.POST("/summary", aiHandler.Summarize)
	}

	api.GET("/notifications/ws", authMiddleware.RequireAuthOrQueryToken(), notificationHandler.HandleWebSocket)
	notifications := api.Group("/notifications", requireAuth)
	{
		notifications.GET("", notificationHandler.GetNotifications)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
		notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
	}

	return &Server{
		engine:    router,
		cfg:       cfg,
		db:        db,
		scheduler: scheduler,
		logger:    logger,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.scheduler.Stop(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s.scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// accessLogFormatter is gin's default line with ?token= values masked.
func accessLogFormatter(param gin.LogFormatterParams) string {
	if param.Latency > time.Minute {
		param.Latency = param.Latency.Truncate(time.Second)
	}
	return fmt.Sprintf("[GIN] %v | %3d | %13v | %15s | %-7s %#v\n%s",
		param.TimeStamp.Format("2006/01/02 - 15:04:05"),
		param.StatusCode,
		param.Latency,
		param.ClientIP,
		param.Method,
		redactToken(param.Path),
		param.ErrorMessage,
	)
}

func redactToken(path string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	if !q.Has("token") {
		return path
	}
	q.Set("token", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}
