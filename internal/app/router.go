package app

import (
	"mri_screening_backend/docs"
	"mri_screening_backend/internal/config"
	"mri_screening_backend/internal/middleware"
	"mri_screening_backend/internal/model"
	"mri_screening_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)
	a.registerCandidateRoutes(router, c, repos, cfg)
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.GET("/categories", c.question.ListCategories)
	}
}

func (a *App) registerCandidateRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	auth := router.Group("/api")
	auth.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		auth.GET("/auth/me", c.auth.Me)

		auth.GET("/profile", c.user.GetProfile)
		auth.PUT("/profile", c.user.UpdateProfile)
		auth.POST("/profile/cv", c.user.UploadCV)
		auth.GET("/profile/completion", c.user.ProfileCompletion)

		auth.GET("/tests", c.test.ListAvailable)
		auth.GET("/tests/:id", c.test.GetDetail)

		auth.POST("/attempts", c.attempt.Start)
		auth.GET("/attempts/:id/questions", c.attempt.Questions)
		auth.POST("/attempts/:id/answers", c.attempt.SubmitAnswer)
		auth.GET("/attempts/:id/time", c.attempt.TimeRemaining)
		auth.POST("/attempts/:id/submit", c.attempt.Submit)
		auth.GET("/attempts/:id/result", c.attempt.Result)

		auth.POST("/attempts/:id/proctoring/events", c.proctoring.RecordEvent)
		auth.POST("/attempts/:id/proctoring/snapshots", c.proctoring.UploadSnapshot)

		auth.GET("/analytics/dashboard", c.analytics.CandidateDashboard)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
		middleware.RoleMiddleware(model.Reviewer, model.Admin))
	{
		admin.GET("/tests", c.test.List)
		admin.POST("/tests", c.test.Create)
		admin.PUT("/tests/:id", c.test.Update)
		admin.DELETE("/tests/:id", c.test.Delete)

		admin.GET("/questions", c.question.List)
		admin.POST("/questions", c.question.Create)
		admin.GET("/questions/:id", c.question.Get)
		admin.PUT("/questions/:id", c.question.Update)
		admin.DELETE("/questions/:id", c.question.Delete)

		admin.GET("/topics", c.question.ListTopics)
		admin.POST("/topics", c.question.CreateTopic)
		admin.PUT("/topics/:id", c.question.UpdateTopic)
		admin.DELETE("/topics/:id", c.question.DeleteTopic)

		admin.POST("/categories", c.question.CreateCategory)
		admin.PUT("/categories/:id", c.question.UpdateCategory)

		admin.GET("/cohorts", c.cohort.List)
		admin.POST("/cohorts", c.cohort.Create)
		admin.GET("/cohorts/:id", c.cohort.Get)
		admin.PUT("/cohorts/:id", c.cohort.Update)
		admin.DELETE("/cohorts/:id", c.cohort.Delete)
		admin.GET("/cohorts/:id/members", c.cohort.ListMembers)
		admin.POST("/cohorts/:id/members", c.cohort.AddMember)
		admin.DELETE("/cohorts/:id/members/:userId", c.cohort.RemoveMember)
		admin.POST("/cohorts/:id/assign", c.cohort.BulkAssignTest)

		admin.GET("/attempts", c.attempt.List)
		admin.GET("/attempts/:id/proctoring/events", c.proctoring.ListEvents)

		admin.POST("/plagiarism/scan", c.plagiarism.Scan)
		admin.GET("/plagiarism/flags", c.plagiarism.ListFlags)
		admin.POST("/plagiarism/flags/:id/review", c.plagiarism.Review)

		admin.GET("/analytics/dashboard", c.analytics.AdminDashboard)
		admin.GET("/analytics/tests/:id/reliability", c.analytics.Reliability)
		admin.GET("/analytics/export", c.analytics.Export)
	}
}
