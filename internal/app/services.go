package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Catalog     services.CatalogService
	Enrollment  services.EnrollmentService
	Progress    services.ProgressService
	Media       services.MediaService
	Certificate services.CertificationService
	Quiz        services.QuizService
	Commerce    services.CommerceService
	Company     services.CompanyService
	Review      services.ReviewService
	Dashboard   services.DashboardService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, aggs Aggregates, clients Clients) Services {
	log.Info("Wiring services...")

	auth := services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	catalog := services.NewCatalogService(
		db, log,
		r.Category, r.Course, r.Section, r.Lesson, r.Media,
		r.Quiz, r.Enrollment, r.Progress,
		clients.Storage, clients.Cache, cfg.CatalogCacheTTL,
	)
	certs := services.NewCertificationService(
		log, r.User, r.Course, r.CertificateTemplate, r.Certificate,
		aggs.Certificate, clients.Renderer, clients.Storage,
	)

	return Services{
		Auth:        auth,
		Catalog:     catalog,
		Enrollment:  services.NewEnrollmentService(log, r.Course, r.Enrollment, aggs.Enrollment),
		Progress:    services.NewProgressService(log, r.Enrollment, r.Progress, catalog, aggs.Progress, certs),
		Media:       services.NewMediaService(log, r.Media, r.Lesson, r.Enrollment, aggs.Media, clients.Storage, catalog, cfg.MediaKeyPrefix),
		Certificate: certs,
		Quiz: services.NewQuizService(
			db, log, r.Course, r.Lesson, r.Enrollment,
			r.Quiz, r.Question, r.Choice, r.Attempt, r.AttemptAnswer, certs,
		),
		Commerce: services.NewCommerceService(log, r.Course, r.Coupon, r.Payment, r.CompanyMember, aggs.Settlement),
		Company: services.NewCompanyService(
			log, r.User, r.CompanyMember, r.CompanyLicense, r.CompanyInvitation,
			aggs.Seats, aggs.Invitations,
		),
		Review: services.NewReviewService(log, r.Course, r.Enrollment, r.Review),
		Dashboard: services.NewDashboardService(
			log, r.Course, r.Enrollment, r.Progress, r.Certificate, r.OrderItem, r.Review, catalog,
		),
	}
}
