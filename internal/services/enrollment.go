package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type EnrollmentView struct {
	Enrollment *types.Enrollment `json:"enrollment"`
	Course     *types.Course     `json:"course,omitempty"`
}

type EnrollmentService interface {
	Enroll(ctx context.Context, courseID uuid.UUID) (*types.Enrollment, bool, error)
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context) ([]EnrollmentView, error)
	Cancel(ctx context.Context, courseID uuid.UUID) (*types.Enrollment, error)
	SetCurrentLesson(ctx context.Context, courseID, lessonID uuid.UUID) (*types.Enrollment, error)
	ContinueCourse(ctx context.Context, courseID uuid.UUID) (*ContinueResult, error)
}

type ContinueResult struct {
	Enrollment   *types.Enrollment `json:"enrollment"`
	Lesson       *types.Lesson     `json:"lesson"`
	CompletedNow bool              `json:"completed_now"`
}

type enrollmentService struct {
	log         *logger.Logger
	courses     repos.CourseRepo
	enrollments repos.EnrollmentRepo
	agg         domainagg.EnrollmentAggregate
}

func NewEnrollmentService(
	log *logger.Logger,
	courses repos.CourseRepo,
	enrollments repos.EnrollmentRepo,
	agg domainagg.EnrollmentAggregate,
) EnrollmentService {
	return &enrollmentService{
		log:         log.With("service", "EnrollmentService"),
		courses:     courses,
		enrollments: enrollments,
		agg:         agg,
	}
}

// Enroll self-enrolls the caller. Availability is checked before pricing.
// Paid courses are reached through checkout settlement; only FREE and HYBRID
// courses accept a direct enrollment.
func (s *enrollmentService) Enroll(ctx context.Context, courseID uuid.UUID) (*types.Enrollment, bool, error) {
	const op = "Enrollment.Enroll"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, false, err
	}
	course, err := s.courses.GetByID(dbctx.New(ctx), courseID)
	if err != nil {
		return nil, false, aggregates.MapError(op, err)
	}
	if course == nil {
		return nil, false, domainagg.NotFound(op, "course not found")
	}
	if !course.IsPublished() || course.CompanyOnly {
		return nil, false, domainagg.NotAvailable(op, "course is not available for enrollment")
	}
	if course.PricingType == types.PricingPaid && course.PriceMinor > 0 {
		existing, err := s.enrollments.GetByUserAndCourse(dbctx.New(ctx), rd.UserID, course.ID)
		if err != nil {
			return nil, false, aggregates.MapError(op, err)
		}
		if existing == nil {
			return nil, false, domainagg.NewError(domainagg.CodePreconditionFailed, op, "course requires purchase", nil)
		}
		return existing, false, nil
	}
	res, err := s.agg.Enroll(ctx, domainagg.EnrollInput{
		UserID:   rd.UserID,
		CourseID: course.ID,
		Source:   types.SourceB2C,
	})
	if err != nil {
		return nil, false, err
	}
	if res.Created {
		observability.Current().IncEnrollmentCreated(string(types.SourceB2C))
		s.log.Info("Enrollment created", "enrollment_id", res.Enrollment.ID, "course_id", course.ID, "user_id", rd.UserID)
	}
	return res.Enrollment, res.Created, nil
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	e, err := s.enrollments.GetByUserAndCourse(dbctx.New(ctx), userID, courseID)
	if err != nil {
		return false, fmt.Errorf("load enrollment: %w", err)
	}
	return e.Grants(), nil
}

func (s *enrollmentService) ListForUser(ctx context.Context) ([]EnrollmentView, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	rows, err := s.enrollments.ListByUser(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, e := range rows {
		ids = append(ids, e.CourseID)
	}
	courses, err := s.courses.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load enrolled courses: %w", err)
	}
	byID := make(map[uuid.UUID]*types.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	out := make([]EnrollmentView, 0, len(rows))
	for _, e := range rows {
		out = append(out, EnrollmentView{Enrollment: e, Course: byID[e.CourseID]})
	}
	return out, nil
}

func (s *enrollmentService) Cancel(ctx context.Context, courseID uuid.UUID) (*types.Enrollment, error) {
	e, err := s.callerEnrollment(ctx, "Enrollment.Cancel", courseID)
	if err != nil {
		return nil, err
	}
	res, err := s.agg.Cancel(ctx, domainagg.CancelInput{EnrollmentID: e.ID})
	if err != nil {
		return nil, err
	}
	return res.Enrollment, nil
}

func (s *enrollmentService) SetCurrentLesson(ctx context.Context, courseID, lessonID uuid.UUID) (*types.Enrollment, error) {
	e, err := s.callerEnrollment(ctx, "Enrollment.SetCurrentLesson", courseID)
	if err != nil {
		return nil, err
	}
	res, err := s.agg.SetCurrentLesson(ctx, domainagg.SetCurrentLessonInput{EnrollmentID: e.ID, LessonID: lessonID})
	if err != nil {
		return nil, err
	}
	return res.Enrollment, nil
}

// ContinueCourse moves the caller to the first lesson not yet completed.
func (s *enrollmentService) ContinueCourse(ctx context.Context, courseID uuid.UUID) (*ContinueResult, error) {
	e, err := s.callerEnrollment(ctx, "Enrollment.Continue", courseID)
	if err != nil {
		return nil, err
	}
	res, err := s.agg.AdvanceToNextUncompleted(ctx, domainagg.AdvanceInput{EnrollmentID: e.ID})
	if err != nil {
		return nil, err
	}
	if res.CompletedNow {
		s.log.Info("Enrollment completed", "enrollment_id", e.ID, "course_id", courseID)
	}
	return &ContinueResult{Enrollment: res.Enrollment, Lesson: res.Lesson, CompletedNow: res.CompletedNow}, nil
}

func (s *enrollmentService) callerEnrollment(ctx context.Context, op string, courseID uuid.UUID) (*types.Enrollment, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	return grantingEnrollment(ctx, s.enrollments, op, rd.UserID, courseID)
}

// grantingEnrollment loads the user's enrollment and rejects missing or
// canceled ones with not_enrolled.
func grantingEnrollment(ctx context.Context, enrollments repos.EnrollmentRepo, op string, userID, courseID uuid.UUID) (*types.Enrollment, error) {
	e, err := enrollments.GetByUserAndCourse(dbctx.New(ctx), userID, courseID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if !e.Grants() {
		return nil, domainagg.NotEnrolled(op, "not enrolled in course")
	}
	return e, nil
}
