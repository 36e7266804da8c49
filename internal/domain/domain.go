package domain

import (
	"github.com/yungbote/coursemarket-backend/internal/domain/assessment"
	"github.com/yungbote/coursemarket-backend/internal/domain/auth"
	"github.com/yungbote/coursemarket-backend/internal/domain/catalog"
	"github.com/yungbote/coursemarket-backend/internal/domain/certification"
	"github.com/yungbote/coursemarket-backend/internal/domain/commerce"
	"github.com/yungbote/coursemarket-backend/internal/domain/enrollment"
	"github.com/yungbote/coursemarket-backend/internal/domain/organization"
	"github.com/yungbote/coursemarket-backend/internal/domain/user"
)

type User = user.User
type UserRole = user.Role

const (
	RoleLearner      = user.RoleLearner
	RoleInstructor   = user.RoleInstructor
	RoleCompanyAdmin = user.RoleCompanyAdmin
	RoleSuperAdmin   = user.RoleSuperAdmin
)

type UserToken = auth.UserToken

type Category = catalog.Category
type Course = catalog.Course
type CourseSection = catalog.CourseSection
type Lesson = catalog.Lesson
type MediaAsset = catalog.MediaAsset
type Review = catalog.Review
type RatingSummary = catalog.RatingSummary
type CourseStatus = catalog.CourseStatus
type CourseType = catalog.CourseType
type PricingType = catalog.PricingType
type LessonType = catalog.LessonType
type MediaKind = catalog.MediaKind

const (
	CourseStatusDraft     = catalog.CourseStatusDraft
	CourseStatusReview    = catalog.CourseStatusReview
	CourseStatusPublished = catalog.CourseStatusPublished
	CourseStatusArchived  = catalog.CourseStatusArchived

	PricingFree   = catalog.PricingFree
	PricingPaid   = catalog.PricingPaid
	PricingHybrid = catalog.PricingHybrid

	LessonVideo = catalog.LessonVideo
	LessonText  = catalog.LessonText
	LessonFile  = catalog.LessonFile
	LessonQuiz  = catalog.LessonQuiz
	LessonLive  = catalog.LessonLive

	MediaVideo = catalog.MediaVideo
	MediaAudio = catalog.MediaAudio
	MediaDoc   = catalog.MediaDoc
)

type Enrollment = enrollment.Enrollment
type EnrollmentStatus = enrollment.Status
type EnrollmentSource = enrollment.Source
type LessonProgress = enrollment.LessonProgress
type ProgressSummary = enrollment.Summary

const (
	EnrollmentActive    = enrollment.StatusActive
	EnrollmentCompleted = enrollment.StatusCompleted
	EnrollmentCanceled  = enrollment.StatusCanceled

	SourceB2C     = enrollment.SourceB2C
	SourceCompany = enrollment.SourceCompany
)

type Quiz = assessment.Quiz
type Question = assessment.Question
type Choice = assessment.Choice
type Attempt = assessment.Attempt
type AttemptAnswer = assessment.AttemptAnswer

type CertificateTemplate = certification.CertificateTemplate
type IssuedCertificate = certification.IssuedCertificate

type Coupon = commerce.Coupon
type Order = commerce.Order
type OrderItem = commerce.OrderItem
type OrderStatus = commerce.OrderStatus
type ItemType = commerce.ItemType
type PaymentTransaction = commerce.PaymentTransaction
type PaymentStatus = commerce.PaymentStatus

const (
	OrderDraft    = commerce.OrderDraft
	OrderPending  = commerce.OrderPending
	OrderPaid     = commerce.OrderPaid
	OrderFailed   = commerce.OrderFailed
	OrderCanceled = commerce.OrderCanceled
	OrderRefunded = commerce.OrderRefunded

	ItemCourse       = commerce.ItemCourse
	ItemCompanySeats = commerce.ItemCompanySeats

	PaymentInitiated = commerce.PaymentInitiated
	PaymentPending   = commerce.PaymentPending
	PaymentSuccess   = commerce.PaymentSuccess
	PaymentFailed    = commerce.PaymentFailed
)

type Company = organization.Company
type CompanyMember = organization.CompanyMember
type CompanyInvitation = organization.CompanyInvitation
type CompanyLicense = organization.CompanyLicense
type CompanyAssignment = organization.CompanyAssignment
type CompanyAssignmentTarget = organization.CompanyAssignmentTarget
type MemberRole = organization.MemberRole

const (
	MemberEmployee = organization.MemberEmployee
	MemberAdmin    = organization.MemberAdmin
)

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&UserToken{},
		&Company{},
		&CompanyMember{},

		&Category{},
		&Course{},
		&CourseSection{},
		&Lesson{},
		&MediaAsset{},
		&Review{},

		&Enrollment{},
		&LessonProgress{},

		&Quiz{},
		&Question{},
		&Choice{},
		&Attempt{},
		&AttemptAnswer{},

		&CertificateTemplate{},
		&IssuedCertificate{},

		&Coupon{},
		&Order{},
		&OrderItem{},
		&PaymentTransaction{},
		&CompanyLicense{},
		&CompanyAssignment{},
		&CompanyAssignmentTarget{},
		&CompanyInvitation{},
	}
}
