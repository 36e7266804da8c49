package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo

	Category repos.CategoryRepo
	Course   repos.CourseRepo
	Section  repos.CourseSectionRepo
	Lesson   repos.LessonRepo
	Media    repos.MediaAssetRepo
	Review   repos.ReviewRepo

	Enrollment repos.EnrollmentRepo
	Progress   repos.LessonProgressRepo

	Quiz          repos.QuizRepo
	Question      repos.QuestionRepo
	Choice        repos.ChoiceRepo
	Attempt       repos.AttemptRepo
	AttemptAnswer repos.AttemptAnswerRepo

	CertificateTemplate repos.CertificateTemplateRepo
	Certificate         repos.IssuedCertificateRepo

	Coupon    repos.CouponRepo
	Order     repos.OrderRepo
	OrderItem repos.OrderItemRepo
	Payment   repos.PaymentTransactionRepo

	Company           repos.CompanyRepo
	CompanyMember     repos.CompanyMemberRepo
	CompanyLicense    repos.CompanyLicenseRepo
	CompanyAssignment repos.CompanyAssignmentRepo
	CompanyInvitation repos.CompanyInvitationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),

		Category: repos.NewCategoryRepo(db, log),
		Course:   repos.NewCourseRepo(db, log),
		Section:  repos.NewCourseSectionRepo(db, log),
		Lesson:   repos.NewLessonRepo(db, log),
		Media:    repos.NewMediaAssetRepo(db, log),
		Review:   repos.NewReviewRepo(db, log),

		Enrollment: repos.NewEnrollmentRepo(db, log),
		Progress:   repos.NewLessonProgressRepo(db, log),

		Quiz:          repos.NewQuizRepo(db, log),
		Question:      repos.NewQuestionRepo(db, log),
		Choice:        repos.NewChoiceRepo(db, log),
		Attempt:       repos.NewAttemptRepo(db, log),
		AttemptAnswer: repos.NewAttemptAnswerRepo(db, log),

		CertificateTemplate: repos.NewCertificateTemplateRepo(db, log),
		Certificate:         repos.NewIssuedCertificateRepo(db, log),

		Coupon:    repos.NewCouponRepo(db, log),
		Order:     repos.NewOrderRepo(db, log),
		OrderItem: repos.NewOrderItemRepo(db, log),
		Payment:   repos.NewPaymentTransactionRepo(db, log),

		Company:           repos.NewCompanyRepo(db, log),
		CompanyMember:     repos.NewCompanyMemberRepo(db, log),
		CompanyLicense:    repos.NewCompanyLicenseRepo(db, log),
		CompanyAssignment: repos.NewCompanyAssignmentRepo(db, log),
		CompanyInvitation: repos.NewCompanyInvitationRepo(db, log),
	}
}
