package app

import (
	httpapi "github.com/yungbote/coursemarket-backend/internal/http"
	httpH "github.com/yungbote/coursemarket-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursemarket-backend/internal/http/middleware"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/envutil"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type Middleware struct {
	Auth        *httpMW.AuthMiddleware
	RateLimiter *httpMW.RateLimiter
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	Catalog   *httpH.CatalogHandler
	Learner   *httpH.LearnerHandler
	Media     *httpH.MediaHandler
	Quiz      *httpH.QuizHandler
	Commerce  *httpH.CommerceHandler
	Company   *httpH.CompanyHandler
	Review    *httpH.ReviewHandler
	Dashboard *httpH.DashboardHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	if cfg.PaymentWebhookSecret == "" {
		log.Warn("PAYMENT_WEBHOOK_SECRET unset; payment webhooks will be rejected")
	}
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Auth:      httpH.NewAuthHandler(services.Auth),
		Catalog:   httpH.NewCatalogHandler(log, services.Catalog),
		Learner:   httpH.NewLearnerHandler(log, services.Enrollment, services.Progress, services.Certificate),
		Media:     httpH.NewMediaHandler(log, services.Media),
		Quiz:      httpH.NewQuizHandler(services.Quiz),
		Commerce:  httpH.NewCommerceHandler(log, services.Commerce, cfg.PaymentWebhookSecret),
		Company:   httpH.NewCompanyHandler(services.Company),
		Review:    httpH.NewReviewHandler(services.Review),
		Dashboard: httpH.NewDashboardHandler(services.Dashboard),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:        httpMW.NewAuthMiddleware(log, services.Auth),
		RateLimiter: httpMW.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *httpapi.Server {
	tracingService := ""
	if envutil.Bool("OTEL_ENABLED", false) {
		tracingService = envutil.String("OTEL_SERVICE_NAME", "coursemarket")
	}
	return httpapi.NewServer(httpapi.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		RateLimiter:    middleware.RateLimiter,
		CORSOrigins:    cfg.CORSOrigins,
		TracingService: tracingService,

		HealthHandler:    handlers.Health,
		AuthHandler:      handlers.Auth,
		AuthMiddleware:   middleware.Auth,
		CatalogHandler:   handlers.Catalog,
		LearnerHandler:   handlers.Learner,
		MediaHandler:     handlers.Media,
		QuizHandler:      handlers.Quiz,
		CommerceHandler:  handlers.Commerce,
		CompanyHandler:   handlers.Company,
		ReviewHandler:    handlers.Review,
		DashboardHandler: handlers.Dashboard,
	})
}
