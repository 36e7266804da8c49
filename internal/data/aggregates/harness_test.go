package aggregates_test

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	aggtestutil "github.com/yungbote/coursemarket-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

type harness struct {
	ctx   context.Context
	db    *gorm.DB
	hooks *aggtestutil.HooksRecorder
	base  aggregates.BaseDeps

	courses      repos.CourseRepo
	lessons      repos.LessonRepo
	assets       repos.MediaAssetRepo
	enrollments  repos.EnrollmentRepo
	progress     repos.LessonProgressRepo
	quizzes      repos.QuizRepo
	attempts     repos.AttemptRepo
	templates    repos.CertificateTemplateRepo
	certificates repos.IssuedCertificateRepo
	coupons      repos.CouponRepo
	orders       repos.OrderRepo
	orderItems   repos.OrderItemRepo
	payments     repos.PaymentTransactionRepo
	companies    repos.CompanyRepo
	members      repos.CompanyMemberRepo
	licenses     repos.CompanyLicenseRepo
	assignments  repos.CompanyAssignmentRepo
	invitations  repos.CompanyInvitationRepo
	users        repos.UserRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	hooks := &aggtestutil.HooksRecorder{}
	return &harness{
		ctx:   context.Background(),
		db:    db,
		hooks: hooks,
		base:  aggregates.BaseDeps{DB: db, Log: log, Hooks: hooks},

		courses:      repos.NewCourseRepo(db, log),
		lessons:      repos.NewLessonRepo(db, log),
		assets:       repos.NewMediaAssetRepo(db, log),
		enrollments:  repos.NewEnrollmentRepo(db, log),
		progress:     repos.NewLessonProgressRepo(db, log),
		quizzes:      repos.NewQuizRepo(db, log),
		attempts:     repos.NewAttemptRepo(db, log),
		templates:    repos.NewCertificateTemplateRepo(db, log),
		certificates: repos.NewIssuedCertificateRepo(db, log),
		coupons:      repos.NewCouponRepo(db, log),
		orders:       repos.NewOrderRepo(db, log),
		orderItems:   repos.NewOrderItemRepo(db, log),
		payments:     repos.NewPaymentTransactionRepo(db, log),
		companies:    repos.NewCompanyRepo(db, log),
		members:      repos.NewCompanyMemberRepo(db, log),
		licenses:     repos.NewCompanyLicenseRepo(db, log),
		assignments:  repos.NewCompanyAssignmentRepo(db, log),
		invitations:  repos.NewCompanyInvitationRepo(db, log),
		users:        repos.NewUserRepo(db, log),
	}
}

func (h *harness) enrollmentAgg() domainagg.EnrollmentAggregate {
	return aggregates.NewEnrollmentAggregate(aggregates.EnrollmentAggregateDeps{
		Base:        h.base,
		Courses:     h.courses,
		Lessons:     h.lessons,
		Enrollments: h.enrollments,
		Progress:    h.progress,
	})
}

func (h *harness) progressAgg() domainagg.ProgressAggregate {
	return aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		Base:        h.base,
		Lessons:     h.lessons,
		Enrollments: h.enrollments,
		Progress:    h.progress,
	})
}

func (h *harness) mediaAgg() domainagg.MediaAggregate {
	return aggregates.NewMediaAggregate(aggregates.MediaAggregateDeps{
		Base:    h.base,
		Assets:  h.assets,
		Courses: h.courses,
		Lessons: h.lessons,
	})
}

func (h *harness) certificateAgg() domainagg.CertificateAggregate {
	return aggregates.NewCertificateAggregate(aggregates.CertificateAggregateDeps{
		Base:         h.base,
		Enrollments:  h.enrollments,
		Quizzes:      h.quizzes,
		Attempts:     h.attempts,
		Templates:    h.templates,
		Certificates: h.certificates,
	})
}

func (h *harness) settlementAgg() domainagg.SettlementAggregate {
	return aggregates.NewSettlementAggregate(aggregates.SettlementAggregateDeps{
		Base:        h.base,
		Orders:      h.orders,
		OrderItems:  h.orderItems,
		Payments:    h.payments,
		Coupons:     h.coupons,
		Enrollments: h.enrollments,
		Licenses:    h.licenses,
	})
}

func (h *harness) seatAgg() domainagg.SeatAggregate {
	return aggregates.NewSeatAggregate(aggregates.SeatAggregateDeps{
		Base:        h.base,
		Companies:   h.companies,
		Members:     h.members,
		Licenses:    h.licenses,
		Assignments: h.assignments,
		Courses:     h.courses,
		Enrollments: h.enrollments,
	})
}

func (h *harness) invitationAgg() domainagg.InvitationAggregate {
	return aggregates.NewInvitationAggregate(aggregates.InvitationAggregateDeps{
		Base:        h.base,
		Companies:   h.companies,
		Members:     h.members,
		Invitations: h.invitations,
		Users:       h.users,
	})
}

func (h *harness) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := h.db.Model(model).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func wantCode(t *testing.T, label string, err error, code domainagg.ErrorCode) {
	t.Helper()
	if !domainagg.IsCode(err, code) {
		t.Fatalf("%s: want code=%s got=%q err=%v", label, code, domainagg.CodeOf(err), err)
	}
}

func ptr[T any](v T) *T { return &v }

func dbcOf(h *harness) dbctx.Context { return dbctx.New(h.ctx) }
