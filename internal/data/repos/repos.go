package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/assessment"
	"github.com/yungbote/coursemarket-backend/internal/data/repos/auth"
	"github.com/yungbote/coursemarket-backend/internal/data/repos/catalog"
	"github.com/yungbote/coursemarket-backend/internal/data/repos/certification"
	"github.com/yungbote/coursemarket-backend/internal/data/repos/commerce"
	"github.com/yungbote/coursemarket-backend/internal/data/repos/enrollment"
	"github.com/yungbote/coursemarket-backend/internal/data/repos/organization"
	"github.com/yungbote/coursemarket-backend/internal/data/repos/user"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type CategoryRepo = catalog.CategoryRepo
type CourseRepo = catalog.CourseRepo
type CourseFilter = catalog.CourseFilter
type CourseSectionRepo = catalog.CourseSectionRepo
type LessonRepo = catalog.LessonRepo
type MediaAssetRepo = catalog.MediaAssetRepo
type ReviewRepo = catalog.ReviewRepo

type EnrollmentRepo = enrollment.EnrollmentRepo
type LessonProgressRepo = enrollment.LessonProgressRepo
type EnrollmentCounts = enrollment.CourseCounts

type QuizRepo = assessment.QuizRepo
type QuestionRepo = assessment.QuestionRepo
type ChoiceRepo = assessment.ChoiceRepo
type AttemptRepo = assessment.AttemptRepo
type AttemptAnswerRepo = assessment.AttemptAnswerRepo

type CertificateTemplateRepo = certification.CertificateTemplateRepo
type IssuedCertificateRepo = certification.IssuedCertificateRepo

type CouponRepo = commerce.CouponRepo
type OrderRepo = commerce.OrderRepo
type OrderItemRepo = commerce.OrderItemRepo
type PaymentTransactionRepo = commerce.PaymentTransactionRepo

type CompanyRepo = organization.CompanyRepo
type CompanyMemberRepo = organization.CompanyMemberRepo
type CompanyLicenseRepo = organization.CompanyLicenseRepo
type CompanyAssignmentRepo = organization.CompanyAssignmentRepo
type CompanyInvitationRepo = organization.CompanyInvitationRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return catalog.NewCategoryRepo(db, baseLog)
}
func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return catalog.NewCourseRepo(db, baseLog)
}
func NewCourseSectionRepo(db *gorm.DB, baseLog *logger.Logger) CourseSectionRepo {
	return catalog.NewCourseSectionRepo(db, baseLog)
}
func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return catalog.NewLessonRepo(db, baseLog)
}
func NewMediaAssetRepo(db *gorm.DB, baseLog *logger.Logger) MediaAssetRepo {
	return catalog.NewMediaAssetRepo(db, baseLog)
}
func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return catalog.NewReviewRepo(db, baseLog)
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return enrollment.NewEnrollmentRepo(db, baseLog)
}
func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
	return enrollment.NewLessonProgressRepo(db, baseLog)
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return assessment.NewQuizRepo(db, baseLog)
}
func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return assessment.NewQuestionRepo(db, baseLog)
}
func NewChoiceRepo(db *gorm.DB, baseLog *logger.Logger) ChoiceRepo {
	return assessment.NewChoiceRepo(db, baseLog)
}
func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return assessment.NewAttemptRepo(db, baseLog)
}
func NewAttemptAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AttemptAnswerRepo {
	return assessment.NewAttemptAnswerRepo(db, baseLog)
}

func NewCertificateTemplateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateTemplateRepo {
	return certification.NewCertificateTemplateRepo(db, baseLog)
}
func NewIssuedCertificateRepo(db *gorm.DB, baseLog *logger.Logger) IssuedCertificateRepo {
	return certification.NewIssuedCertificateRepo(db, baseLog)
}

func NewCouponRepo(db *gorm.DB, baseLog *logger.Logger) CouponRepo {
	return commerce.NewCouponRepo(db, baseLog)
}
func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return commerce.NewOrderRepo(db, baseLog)
}
func NewOrderItemRepo(db *gorm.DB, baseLog *logger.Logger) OrderItemRepo {
	return commerce.NewOrderItemRepo(db, baseLog)
}
func NewPaymentTransactionRepo(db *gorm.DB, baseLog *logger.Logger) PaymentTransactionRepo {
	return commerce.NewPaymentTransactionRepo(db, baseLog)
}

func NewCompanyRepo(db *gorm.DB, baseLog *logger.Logger) CompanyRepo {
	return organization.NewCompanyRepo(db, baseLog)
}
func NewCompanyMemberRepo(db *gorm.DB, baseLog *logger.Logger) CompanyMemberRepo {
	return organization.NewCompanyMemberRepo(db, baseLog)
}
func NewCompanyLicenseRepo(db *gorm.DB, baseLog *logger.Logger) CompanyLicenseRepo {
	return organization.NewCompanyLicenseRepo(db, baseLog)
}
func NewCompanyAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) CompanyAssignmentRepo {
	return organization.NewCompanyAssignmentRepo(db, baseLog)
}
func NewCompanyInvitationRepo(db *gorm.DB, baseLog *logger.Logger) CompanyInvitationRepo {
	return organization.NewCompanyInvitationRepo(db, baseLog)
}
