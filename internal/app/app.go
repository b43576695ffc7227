package app

import (
	"brainer_backend/internal/config"
	"brainer_backend/internal/controller"
	"brainer_backend/internal/middleware"
	"brainer_backend/internal/repository"
	"brainer_backend/internal/service"
	"brainer_backend/internal/util"
	"brainer_backend/pkg/cache"
	"brainer_backend/pkg/database"
	"brainer_backend/pkg/logger"
	"brainer_backend/pkg/monitoring"
	"brainer_backend/pkg/security"
	"brainer_backend/pkg/tracing"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Cache           cache.Store
	Origins         *security.OriginList
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	course      *repository.CourseRepository
	part        *repository.PartRepository
	chapter     *repository.ChapterRepository
	exercise    *repository.ExerciseRepository
	progress    *repository.ProgressRepository
	submission  *repository.ExerciseSubmissionRepository
	reviewSheet *repository.ReviewSheetRepository
	cascade     *repository.CascadeRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	image       *service.ImageService
	course      *service.CourseService
	chapter     *service.ChapterService
	exercise    *service.ExerciseService
	progress    *service.ProgressService
	reviewSheet *service.ReviewSheetService
	ai          *service.AIService
}

type controllers struct {
	health      *controller.HealthController
	auth        *controller.AuthController
	course      *controller.CourseController
	part        *controller.PartController
	chapter     *controller.ChapterController
	exercise    *controller.ExerciseController
	progress    *controller.ProgressController
	reviewSheet *controller.ReviewSheetController
	image       *controller.ImageController
}

// RegisterConfigCallback 注册配置热更新回调
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 把重新加载的配置分发给所有回调
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		course:      repository.NewCourseRepository(db),
		part:        repository.NewPartRepository(db),
		chapter:     repository.NewChapterRepository(db),
		exercise:    repository.NewExerciseRepository(db),
		progress:    repository.NewProgressRepository(db),
		submission:  repository.NewExerciseSubmissionRepository(db),
		reviewSheet: repository.NewReviewSheetRepository(db),
		cascade:     repository.NewCascadeRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.image = service.NewImageService(s.storage, cfg.Storage.MaxUploadMB)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.course = service.NewCourseService(db, repos.course, repos.part, repos.cascade, a.Cache)
	s.chapter = service.NewChapterService(db, repos.course, repos.part, repos.chapter, repos.cascade, a.Cache)
	s.exercise = service.NewExerciseService(db, repos.chapter, repos.exercise, repos.cascade)

	// 未配置 Judge0 时代码题保持待批改状态
	var evaluator service.CodeEvaluator
	if judge0 := service.NewJudge0Evaluator(cfg.Judge0); judge0 != nil {
		evaluator = judge0
	}
	s.progress = service.NewProgressService(db, repos.course, repos.chapter, repos.exercise, repos.progress, repos.submission, evaluator)

	s.ai = service.NewAIService(cfg.AI)
	s.reviewSheet = service.NewReviewSheetService(repos.course, repos.part, repos.chapter, repos.reviewSheet, s.ai)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		health:      controller.NewHealthController(a.DB, a.Redis),
		auth:        controller.NewAuthController(s.auth),
		course:      controller.NewCourseController(s.course),
		part:        controller.NewPartController(s.course),
		chapter:     controller.NewChapterController(s.chapter),
		exercise:    controller.NewExerciseController(s.exercise),
		progress:    controller.NewProgressController(s.progress),
		reviewSheet: controller.NewReviewSheetController(s.reviewSheet),
		image:       controller.NewImageController(s.image),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	router.Use(security.CORS(a.Origins))
	router.Use(security.Secure())

	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		if window <= 0 {
			window = time.Minute
		}
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(cfg.Tracing.ServiceName))
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New wires repositories, services and routes around an already opened database.
// rdb may be nil, in which case public reads are never cached.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	util.RegisterValidators()
	monitoring.Init()

	app := &App{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		Cache:   cache.NopStore{},
		Origins: security.NewOriginList(cfg.CORS.AllowedOrigins),
	}
	if rdb != nil {
		app.Cache = cache.NewRedisStore(rdb, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(newCfg.Log.Level)
		logger.Log.Info("Log level updated", zap.String("level", logger.Level().String()))
	})
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.Origins.Set(newCfg.CORS.AllowedOrigins)
		logger.Log.Info("CORS origins updated", zap.Strings("origins", newCfg.CORS.AllowedOrigins))
	})

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db)
	controllers := app.initControllers(services)

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, services)

	return app
}

// NewApp 按配置初始化日志、数据库、Redis 与追踪，然后组装应用
func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			// 缓存不可用时直接读库
			logger.Log.Warn("Redis unavailable, read cache disabled", zap.Error(err))
			rdb = nil
		}
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(context.Background(), cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracerProvider = tp
		}
	}

	return app, nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	a.Close(ctx)

	logger.Log.Info("Server exiting")
}

// Close releases the tracer, redis and database handles.
func (a *App) Close(ctx context.Context) {
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
