package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type Aggregates struct {
	Enrollment  domainagg.EnrollmentAggregate
	Progress    domainagg.ProgressAggregate
	Media       domainagg.MediaAggregate
	Certificate domainagg.CertificateAggregate
	Settlement  domainagg.SettlementAggregate
	Seats       domainagg.SeatAggregate
	Invitations domainagg.InvitationAggregate
}

func wireAggregates(db *gorm.DB, log *logger.Logger, r Repos, metrics *observability.Metrics) Aggregates {
	log.Info("Wiring aggregates...")
	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewObservabilityHooks(metrics)}
	return Aggregates{
		Enrollment: aggregates.NewEnrollmentAggregate(aggregates.EnrollmentAggregateDeps{
			Base: base, Courses: r.Course, Lessons: r.Lesson, Enrollments: r.Enrollment, Progress: r.Progress,
		}),
		Progress: aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
			Base: base, Lessons: r.Lesson, Enrollments: r.Enrollment, Progress: r.Progress,
		}),
		Media: aggregates.NewMediaAggregate(aggregates.MediaAggregateDeps{
			Base: base, Assets: r.Media, Courses: r.Course, Lessons: r.Lesson,
		}),
		Certificate: aggregates.NewCertificateAggregate(aggregates.CertificateAggregateDeps{
			Base: base, Enrollments: r.Enrollment, Quizzes: r.Quiz, Attempts: r.Attempt,
			Templates: r.CertificateTemplate, Certificates: r.Certificate,
		}),
		Settlement: aggregates.NewSettlementAggregate(aggregates.SettlementAggregateDeps{
			Base: base, Orders: r.Order, OrderItems: r.OrderItem, Payments: r.Payment, Coupons: r.Coupon,
			Enrollments: r.Enrollment, Licenses: r.CompanyLicense,
		}),
		Seats: aggregates.NewSeatAggregate(aggregates.SeatAggregateDeps{
			Base: base, Companies: r.Company, Members: r.CompanyMember, Licenses: r.CompanyLicense,
			Assignments: r.CompanyAssignment, Courses: r.Course, Enrollments: r.Enrollment,
		}),
		Invitations: aggregates.NewInvitationAggregate(aggregates.InvitationAggregateDeps{
			Base: base, Companies: r.Company, Members: r.CompanyMember, Invitations: r.CompanyInvitation, Users: r.User,
		}),
	}
}
