package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mri_screening_backend/internal/config"
	"mri_screening_backend/internal/controller"
	"mri_screening_backend/internal/repository"
	"mri_screening_backend/internal/service"
	"mri_screening_backend/internal/util"
	"mri_screening_backend/pkg/database"
	"mri_screening_backend/pkg/logger"
	"mri_screening_backend/pkg/monitoring"
	"mri_screening_backend/pkg/security"
	"mri_screening_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	category   *repository.CategoryRepository
	topic      *repository.TopicRepository
	question   *repository.QuestionRepository
	test       *repository.TestRepository
	attempt    *repository.AttemptRepository
	answer     *repository.AnswerRepository
	cohort     *repository.CohortRepository
	proctoring *repository.ProctoringRepository
	plagiarism *repository.PlagiarismRepository
}

type services struct {
	storage       *service.StorageService
	auth          *service.AuthService
	user          *service.UserService
	question      *service.QuestionService
	test          *service.TestService
	attempt       *service.AttemptService
	proctoring    *service.ProctoringService
	plagiarism    *service.PlagiarismService
	analytics     *service.AnalyticsService
	psychometrics *service.PsychometricsService
	export        *service.ExportService
	cohort        *service.CohortService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	test       *controller.TestController
	attempt    *controller.AttemptController
	proctoring *controller.ProctoringController
	analytics  *controller.AnalyticsController
	cohort     *controller.CohortController
	question   *controller.QuestionController
	plagiarism *controller.PlagiarismController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig pushes a freshly loaded config to every registered consumer.
// Wired to the config file watcher.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	a.services.proctoring.Reconfigure(cfg.Proctoring)
	a.services.plagiarism.Reconfigure(cfg.Plagiarism)
	a.services.analytics.Reconfigure(cfg.Analytics)
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		category:   repository.NewCategoryRepository(db),
		topic:      repository.NewTopicRepository(db),
		question:   repository.NewQuestionRepository(db),
		test:       repository.NewTestRepository(db),
		attempt:    repository.NewAttemptRepository(db),
		answer:     repository.NewAnswerRepository(db),
		cohort:     repository.NewCohortRepository(db),
		proctoring: repository.NewProctoringRepository(db),
		plagiarism: repository.NewPlagiarismRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, s.storage)
	s.question = service.NewQuestionService(repos.question, repos.topic, repos.category)
	s.test = service.NewTestService(repos.test, repos.topic, repos.question, repos.cohort, repos.attempt)
	s.attempt = service.NewAttemptService(repos.attempt, repos.answer, repos.question, repos.test, s.test)
	s.proctoring = service.NewProctoringService(repos.proctoring, repos.attempt, s.storage, rdb, logger.Log, cfg.Proctoring)
	s.plagiarism = service.NewPlagiarismService(repos.plagiarism, repos.attempt, repos.answer, logger.Log, cfg.Plagiarism)
	s.analytics = service.NewAnalyticsService(repos.attempt, repos.answer, repos.category, cfg.Analytics)
	s.psychometrics = service.NewPsychometricsService(repos.attempt, repos.answer, repos.test)
	s.export = service.NewExportService(repos.attempt)
	s.cohort = service.NewCohortService(repos.cohort, repos.category, repos.user, repos.test, repos.attempt, s.test, logger.Log)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		user:       controller.NewUserController(s.user),
		test:       controller.NewTestController(s.test),
		attempt:    controller.NewAttemptController(s.attempt),
		proctoring: controller.NewProctoringController(s.proctoring),
		analytics:  controller.NewAnalyticsController(s.analytics, s.psychometrics, s.export),
		cohort:     controller.NewCohortController(s.cohort),
		question:   controller.NewQuestionController(s.question),
		plagiarism: controller.NewPlagiarismController(s.plagiarism),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests == 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window == 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the plagiarism scanner and the attempt-expiry
// sweeper on tickers.
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	scanInterval := time.Duration(cfg.Plagiarism.ScanIntervalMinutes) * time.Minute
	if scanInterval <= 0 {
		scanInterval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(scanInterval)
		for range ticker.C {
			report, err := s.plagiarism.ScanAll()
			if err != nil {
				logger.Log.Error("plagiarism scan error", zap.Error(err))
				continue
			}
			if report.FlagsCreated > 0 {
				logger.Log.Info("plagiarism scan finished",
					zap.Int("pairs_compared", report.PairsCompared),
					zap.Int("flags_created", report.FlagsCreated))
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			expired, err := s.attempt.ExpireOverdue()
			if err != nil {
				logger.Log.Error("attempt expiry sweep error", zap.Error(err))
				continue
			}
			if expired > 0 {
				logger.Log.Info("expired overdue attempts", zap.Int64("count", expired))
			}
		}
	}()
}

// RunPlagiarismScan runs one full scan and exits, for the command line flag.
func (a *App) RunPlagiarismScan() error {
	report, err := a.services.plagiarism.ScanAll()
	if err != nil {
		return err
	}
	logger.Log.Info("plagiarism scan finished",
		zap.Int("attempts_scanned", report.AttemptsScanned),
		zap.Int("pairs_compared", report.PairsCompared),
		zap.Int("flags_created", report.FlagsCreated))
	return nil
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("logger initialized")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, falling back to database counters", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("mri-screening-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	if !cfg.MigrateOnly {
		app.startBackgroundTasks(services, cfg)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
