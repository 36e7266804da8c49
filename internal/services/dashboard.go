package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/enrollment"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type CourseProgress struct {
	CourseID        uuid.UUID              `json:"course_id"`
	CourseTitle     string                 `json:"course_title"`
	EnrollmentID    uuid.UUID              `json:"enrollment_id"`
	Status          types.EnrollmentStatus `json:"status"`
	CurrentLessonID *uuid.UUID             `json:"current_lesson_id,omitempty"`
	EnrolledAt      time.Time              `json:"enrolled_at"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
	Summary         types.ProgressSummary  `json:"summary"`
}

type LearnerKPIs struct {
	EnrolledCourses   int `json:"enrolled_courses"`
	InProgressCourses int `json:"in_progress_courses"`
	CompletedCourses  int `json:"completed_courses"`
	Certificates      int `json:"certificates"`
	// AverageProgress is the mean progress percent over granting enrollments.
	AverageProgress int `json:"average_progress"`
}

type InstructorKPIs struct {
	Courses          int                 `json:"courses"`
	PublishedCourses int                 `json:"published_courses"`
	Enrollments      int                 `json:"enrollments"`
	Completions      int                 `json:"completions"`
	RevenueMinor     int64               `json:"revenue_minor"`
	Reviews          types.RatingSummary `json:"reviews"`
}

type DashboardService interface {
	LearnerProgress(ctx context.Context) ([]CourseProgress, error)
	LearnerKPIs(ctx context.Context) (*LearnerKPIs, error)
	InstructorKPIs(ctx context.Context) (*InstructorKPIs, error)
}

type dashboardService struct {
	log          *logger.Logger
	courses      repos.CourseRepo
	enrollments  repos.EnrollmentRepo
	progress     repos.LessonProgressRepo
	certificates repos.IssuedCertificateRepo
	orderItems   repos.OrderItemRepo
	reviews      repos.ReviewRepo
	catalog      CatalogService
}

func NewDashboardService(
	log *logger.Logger,
	courses repos.CourseRepo,
	enrollments repos.EnrollmentRepo,
	progress repos.LessonProgressRepo,
	certificates repos.IssuedCertificateRepo,
	orderItems repos.OrderItemRepo,
	reviews repos.ReviewRepo,
	catalog CatalogService,
) DashboardService {
	return &dashboardService{
		log:          log.With("service", "DashboardService"),
		courses:      courses,
		enrollments:  enrollments,
		progress:     progress,
		certificates: certificates,
		orderItems:   orderItems,
		reviews:      reviews,
		catalog:      catalog,
	}
}

// LearnerProgress lists the caller's granting enrollments, newest first,
// with progress counted against the current outline.
func (s *dashboardService) LearnerProgress(ctx context.Context) ([]CourseProgress, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	rows, err := s.enrollments.ListByUser(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	granting := make([]*types.Enrollment, 0, len(rows))
	courseIDs := make([]uuid.UUID, 0, len(rows))
	for _, e := range rows {
		if e.Grants() {
			granting = append(granting, e)
			courseIDs = append(courseIDs, e.CourseID)
		}
	}
	courses, err := s.courses.GetByIDs(dbc, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	titles := make(map[uuid.UUID]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}

	out := make([]CourseProgress, 0, len(granting))
	for _, e := range granting {
		summary, err := s.summarize(ctx, dbc, e)
		if err != nil {
			return nil, err
		}
		out = append(out, CourseProgress{
			CourseID:        e.CourseID,
			CourseTitle:     titles[e.CourseID],
			EnrollmentID:    e.ID,
			Status:          e.Status,
			CurrentLessonID: e.CurrentLessonID,
			EnrolledAt:      e.EnrolledAt,
			CompletedAt:     e.CompletedAt,
			Summary:         summary,
		})
	}
	return out, nil
}

func (s *dashboardService) summarize(ctx context.Context, dbc dbctx.Context, e *types.Enrollment) (types.ProgressSummary, error) {
	outline, err := s.catalog.Outline(ctx, e.CourseID)
	if err != nil {
		return types.ProgressSummary{}, err
	}
	rows, err := s.progress.ListByEnrollment(dbc, e.ID)
	if err != nil {
		return types.ProgressSummary{}, fmt.Errorf("list progress: %w", err)
	}
	inOutline := make(map[uuid.UUID]bool, outline.LessonCount())
	for _, sec := range outline.Sections {
		for _, l := range sec.Lessons {
			inOutline[l.ID] = true
		}
	}
	counted := make([]*types.LessonProgress, 0, len(rows))
	for _, r := range rows {
		if inOutline[r.LessonID] {
			counted = append(counted, r)
		}
	}
	return enrollment.Summarize(outline.LessonCount(), counted), nil
}

func (s *dashboardService) LearnerKPIs(ctx context.Context) (*LearnerKPIs, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := s.LearnerProgress(ctx)
	if err != nil {
		return nil, err
	}
	certs, err := s.certificates.ListByUser(dbctx.New(ctx), rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	out := &LearnerKPIs{EnrolledCourses: len(courses), Certificates: len(certs)}
	sum := 0
	for _, c := range courses {
		if c.Status == types.EnrollmentCompleted {
			out.CompletedCourses++
		} else {
			out.InProgressCourses++
		}
		sum += c.Summary.ProgressPercent
	}
	if len(courses) > 0 {
		out.AverageProgress = int(math.Round(float64(sum) / float64(len(courses))))
	}
	return out, nil
}

func (s *dashboardService) InstructorKPIs(ctx context.Context) (*InstructorKPIs, error) {
	const op = "Dashboard.InstructorKPIs"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !canAuthor(rd) {
		return nil, domainagg.Forbidden(op, "instructor role required")
	}
	dbc := dbctx.New(ctx)
	courses, err := s.courses.ListByInstructor(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	out := &InstructorKPIs{Courses: len(courses)}
	ids := make([]uuid.UUID, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
		if c.Status == types.CourseStatusPublished {
			out.PublishedCourses++
		}
	}
	counts, err := s.enrollments.CountByCourses(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	out.Enrollments = counts.Enrollments
	out.Completions = counts.Completed
	if out.RevenueMinor, err = s.orderItems.PaidCourseRevenue(dbc, ids); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	if out.Reviews, err = s.reviews.SummaryByInstructor(dbc, rd.UserID); err != nil {
		return nil, fmt.Errorf("summarize reviews: %w", err)
	}
	return out, nil
}
