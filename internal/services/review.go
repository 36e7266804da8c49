package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type CourseReviews struct {
	CourseID uuid.UUID           `json:"course_id"`
	Summary  types.RatingSummary `json:"summary"`
	Reviews  []*types.Review     `json:"reviews"`
}

type InstructorReviews struct {
	Summary types.RatingSummary `json:"summary"`
	Reviews []*types.Review     `json:"reviews"`
}

type ReviewService interface {
	// SubmitReview creates or replaces the caller's review of a course they
	// are enrolled in.
	SubmitReview(ctx context.Context, courseID uuid.UUID, in ReviewInput) (*types.Review, error)
	CourseReviews(ctx context.Context, courseID uuid.UUID, limit, offset int) (*CourseReviews, error)
	InstructorReviews(ctx context.Context, limit, offset int) (*InstructorReviews, error)
}

type reviewService struct {
	log         *logger.Logger
	courses     repos.CourseRepo
	enrollments repos.EnrollmentRepo
	reviews     repos.ReviewRepo
}

func NewReviewService(log *logger.Logger, courses repos.CourseRepo, enrollments repos.EnrollmentRepo, reviews repos.ReviewRepo) ReviewService {
	return &reviewService{
		log:         log.With("service", "ReviewService"),
		courses:     courses,
		enrollments: enrollments,
		reviews:     reviews,
	}
}

func (s *reviewService) SubmitReview(ctx context.Context, courseID uuid.UUID, in ReviewInput) (*types.Review, error) {
	const op = "Review.Submit"
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	course, err := s.courses.GetByID(dbc, courseID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if course == nil {
		return nil, domainagg.NotFound(op, "course not found")
	}
	if course.InstructorID == rd.UserID {
		return nil, domainagg.Forbidden(op, "instructors cannot review their own course")
	}
	if _, err := grantingEnrollment(ctx, s.enrollments, op, rd.UserID, course.ID); err != nil {
		return nil, err
	}
	review, err := s.reviews.Upsert(dbc, &types.Review{
		CourseID: course.ID,
		UserID:   rd.UserID,
		Rating:   in.Rating,
		Comment:  in.Comment,
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.log.Info("Review submitted", "course_id", course.ID, "user_id", rd.UserID, "rating", in.Rating)
	return review, nil
}

// CourseReviews is public for published courses.
func (s *reviewService) CourseReviews(ctx context.Context, courseID uuid.UUID, limit, offset int) (*CourseReviews, error) {
	const op = "Review.ListCourse"
	dbc := dbctx.New(ctx)
	course, err := s.courses.GetByID(dbc, courseID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if course == nil || course.Status != types.CourseStatusPublished {
		return nil, domainagg.NotFound(op, "course not found")
	}
	summary, err := s.reviews.SummaryByCourse(dbc, course.ID)
	if err != nil {
		return nil, fmt.Errorf("summarize reviews: %w", err)
	}
	rows, err := s.reviews.ListByCourse(dbc, course.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return &CourseReviews{CourseID: course.ID, Summary: summary, Reviews: rows}, nil
}

func (s *reviewService) InstructorReviews(ctx context.Context, limit, offset int) (*InstructorReviews, error) {
	const op = "Review.ListInstructor"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !canAuthor(rd) {
		return nil, domainagg.Forbidden(op, "instructor role required")
	}
	dbc := dbctx.New(ctx)
	summary, err := s.reviews.SummaryByInstructor(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("summarize reviews: %w", err)
	}
	rows, err := s.reviews.ListByInstructor(dbc, rd.UserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return &InstructorReviews{Summary: summary, Reviews: rows}, nil
}
