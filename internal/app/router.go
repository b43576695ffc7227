package app

import (
	"brainer_backend/docs"
	"brainer_backend/internal/middleware"
	"brainer_backend/internal/util"
	"brainer_backend/pkg/monitoring"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 本地存储时直接提供静态图片
	if a.Config.Storage.Type == "" || a.Config.Storage.Type == util.StorageLocal {
		prefix := a.Config.Storage.PublicPrefix
		if prefix == "" {
			prefix = "/static"
		}
		router.Static("/"+strings.Trim(prefix, "/"), a.Config.Storage.LocalPath)
	}

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(s.auth))
	{
		// 学习者接口
		a.registerLearnerRoutes(authGroup, c)

		// 内容编辑接口
		a.registerAuthorRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:slug", c.course.GetCourse)
		public.GET("/courses/:slug/parts", c.part.ListParts)
		public.GET("/courses/:slug/parts/:partId", c.part.GetPart)
		public.GET("/courses/:slug/chapters", c.chapter.ListChapters)
		public.GET("/courses/:slug/chapters/:chapterSlug", c.chapter.GetChapter)
		public.GET("/courses/:slug/review-sheets", c.reviewSheet.ListReviewSheets)

		public.GET("/chapters/:chapterId/exercises", c.exercise.ListExercises)
		public.GET("/chapters/:chapterId/exercises/:exerciseId", c.exercise.GetExercise)

		public.GET("/parts/:partId/review-sheet", c.reviewSheet.GetReviewSheet)
	}
}

func (a *App) registerLearnerRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/me", c.auth.Me)

	group.GET("/chapters/:chapterId/progress", c.progress.GetChapterProgress)
	group.PUT("/chapters/:chapterId/progress", c.progress.MarkChapterComplete)
	group.GET("/courses/:slug/progress", c.progress.GetCourseProgress)
	group.POST("/exercises/:exerciseId/submissions", c.progress.SubmitExercise)
}

func (a *App) registerAuthorRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/courses", c.course.CreateCourse)
	group.PUT("/courses/:slug", c.course.UpdateCourse)
	group.DELETE("/courses/:slug", c.course.DeleteCourse)

	group.POST("/courses/:slug/parts", c.part.CreatePart)
	group.PUT("/courses/:slug/parts/:partId", c.part.UpdatePart)
	group.DELETE("/courses/:slug/parts/:partId", c.part.DeletePart)

	group.POST("/courses/:slug/chapters", c.chapter.CreateChapter)
	group.PUT("/courses/:slug/chapters/:chapterSlug", c.chapter.UpdateChapter)
	group.DELETE("/courses/:slug/chapters/:chapterSlug", c.chapter.DeleteChapter)

	group.POST("/chapters/:chapterId/exercises", c.exercise.CreateExercise)
	group.PUT("/chapters/:chapterId/exercises/:exerciseId", c.exercise.UpdateExercise)
	group.DELETE("/chapters/:chapterId/exercises/:exerciseId", c.exercise.DeleteExercise)

	group.POST("/parts/:partId/review-sheet", c.reviewSheet.UpsertReviewSheet)
	group.DELETE("/parts/:partId/review-sheet", c.reviewSheet.DeleteReviewSheet)
	group.POST("/parts/:partId/review-sheet/generate", c.reviewSheet.GenerateReviewSheet)

	group.POST("/images/upload", c.image.Upload)
	group.DELETE("/images/:filename", c.image.Delete)
}
