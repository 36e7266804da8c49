package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/coursemarket-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursemarket-backend/internal/http/middleware"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	RateLimiter    *httpMW.RateLimiter
	CORSOrigins    string
	TracingService string

	AuthHandler      *httpH.AuthHandler
	AuthMiddleware   *httpMW.AuthMiddleware
	CatalogHandler   *httpH.CatalogHandler
	LearnerHandler   *httpH.LearnerHandler
	MediaHandler     *httpH.MediaHandler
	QuizHandler      *httpH.QuizHandler
	CommerceHandler  *httpH.CommerceHandler
	CompanyHandler   *httpH.CompanyHandler
	ReviewHandler    *httpH.ReviewHandler
	DashboardHandler *httpH.DashboardHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Observe(cfg.Log, cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(cfg.RateLimiter.Handler())
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}

		// Catalog (public)
		if cfg.CatalogHandler != nil {
			api.GET("/courses", cfg.CatalogHandler.ListCourses)
			api.GET("/courses/:id", cfg.CatalogHandler.GetCourse)
			api.GET("/categories", cfg.CatalogHandler.ListCategories)
		}
		if cfg.LearnerHandler != nil {
			api.GET("/certificates/verify/:serial", cfg.LearnerHandler.VerifyCertificate)
		}
		if cfg.ReviewHandler != nil {
			api.GET("/courses/:id/reviews", cfg.ReviewHandler.ListForCourse)
		}

		// Payment provider callback, authenticated by shared secret.
		if cfg.CommerceHandler != nil {
			api.POST("/payments/webhook", cfg.CommerceHandler.PaymentWebhook)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		} else {
			protected.Use(func(c *gin.Context) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{"message": "authentication not configured", "code": "unauthorized"},
				})
			})
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Learner
		if cfg.LearnerHandler != nil {
			learner := protected.Group("/learner")
			learner.GET("/enrollments", cfg.LearnerHandler.ListEnrollments)
			learner.POST("/courses/:id/enroll", cfg.LearnerHandler.Enroll)
			learner.POST("/courses/:id/cancel", cfg.LearnerHandler.Cancel)
			learner.GET("/courses/:id/outline", cfg.LearnerHandler.Outline)
			learner.POST("/courses/:id/continue", cfg.LearnerHandler.Continue)
			learner.POST("/courses/:id/set-current", cfg.LearnerHandler.SetCurrent)
			learner.GET("/courses/:id/lessons/:lesson_id/state", cfg.LearnerHandler.LessonState)
			learner.POST("/courses/:id/lessons/:lesson_id/progress", cfg.LearnerHandler.UpdateProgress)
			learner.POST("/courses/:id/certificate", cfg.LearnerHandler.IssueCertificate)
			learner.GET("/courses/:id/certificate", cfg.LearnerHandler.GetCertificate)
			learner.GET("/courses/:id/certificate/download", cfg.LearnerHandler.DownloadCertificate)
		}
		if cfg.CommerceHandler != nil {
			protected.GET("/learner/payments", cfg.CommerceHandler.ListPayments)
			protected.POST("/checkout", cfg.CommerceHandler.Checkout)
			protected.POST("/admin/orders/:id/settle", cfg.CommerceHandler.SettleOrder)
		}

		// Reviews and dashboards
		if cfg.ReviewHandler != nil {
			protected.POST("/learner/courses/:id/review", cfg.ReviewHandler.Submit)
			protected.GET("/instructor/reviews", cfg.ReviewHandler.ListMine)
		}
		if cfg.DashboardHandler != nil {
			protected.GET("/learner/progress", cfg.DashboardHandler.LearnerProgress)
			protected.GET("/learner/kpis", cfg.DashboardHandler.LearnerKPIs)
			protected.GET("/instructor/kpis", cfg.DashboardHandler.InstructorKPIs)
		}

		// Quizzes
		if cfg.QuizHandler != nil {
			protected.POST("/quizzes/:id/attempts", cfg.QuizHandler.StartAttempt)
			protected.POST("/attempts/:id/submit", cfg.QuizHandler.SubmitAttempt)
			protected.POST("/instructor/courses/:id/quizzes", cfg.QuizHandler.CreateQuiz)
		}

		// Instructor authoring
		if cfg.CatalogHandler != nil {
			instructor := protected.Group("/instructor")
			instructor.GET("/courses", cfg.CatalogHandler.MyCourses)
			instructor.POST("/courses", cfg.CatalogHandler.CreateCourse)
			instructor.PATCH("/courses/:id", cfg.CatalogHandler.UpdateCourse)
			instructor.POST("/courses/:id/publish", cfg.CatalogHandler.PublishCourse)
			instructor.POST("/courses/:id/archive", cfg.CatalogHandler.ArchiveCourse)
			instructor.POST("/courses/:id/sections", cfg.CatalogHandler.CreateSection)
			instructor.PATCH("/courses/:id/sections/:section_id", cfg.CatalogHandler.UpdateSection)
			instructor.DELETE("/courses/:id/sections/:section_id", cfg.CatalogHandler.DeleteSection)
			instructor.POST("/courses/:id/sections/:section_id/lessons", cfg.CatalogHandler.CreateLesson)
			instructor.PATCH("/courses/:id/sections/:section_id/lessons/:lesson_id", cfg.CatalogHandler.UpdateLesson)
			instructor.DELETE("/courses/:id/sections/:section_id/lessons/:lesson_id", cfg.CatalogHandler.DeleteLesson)
			protected.POST("/admin/categories", cfg.CatalogHandler.CreateCategory)
		}

		// Media
		if cfg.MediaHandler != nil {
			protected.POST("/media/upload/init", cfg.MediaHandler.InitUpload)
			protected.POST("/media/upload/finalize", cfg.MediaHandler.FinalizeUpload)
			protected.GET("/media/:id/signed", cfg.MediaHandler.SignedDownload)
			protected.GET("/instructor/media", cfg.MediaHandler.ListMine)
		}

		// Company
		if cfg.CompanyHandler != nil {
			protected.POST("/company/assignments", cfg.CompanyHandler.AssignCourse)
			protected.GET("/company/members", cfg.CompanyHandler.ListMembers)
			protected.GET("/company/seats", cfg.CompanyHandler.SeatSummary)
			protected.POST("/company/invitations", cfg.CompanyHandler.Invite)
			protected.GET("/company/invitations", cfg.CompanyHandler.PendingInvitations)
			protected.POST("/invitations/:token/accept", cfg.CompanyHandler.AcceptInvitation)
		}
	}

	return r
}
