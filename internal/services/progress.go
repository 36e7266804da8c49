package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/enrollment"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type LessonWithProgress struct {
	OutlineLesson
	ProgressPercent int  `json:"progress_percent"`
	Completed       bool `json:"completed"`
	LastPositionSec int  `json:"last_position_sec"`
}

type SectionWithProgress struct {
	ID       uuid.UUID            `json:"id"`
	Title    string               `json:"title"`
	Position int                  `json:"position"`
	Lessons  []LessonWithProgress `json:"lessons"`
}

type OutlineWithProgress struct {
	CourseID        uuid.UUID             `json:"course_id"`
	EnrollmentID    uuid.UUID             `json:"enrollment_id"`
	CurrentLessonID *uuid.UUID            `json:"current_lesson_id,omitempty"`
	Sections        []SectionWithProgress `json:"sections"`
	Summary         types.ProgressSummary `json:"summary"`
}

type ProgressUpdate struct {
	Percent         *int
	LastPositionSec *int
	MarkCompleted   bool
}

type LessonStateResult struct {
	Progress *types.LessonProgress `json:"progress"`
	Summary  types.ProgressSummary `json:"summary"`
	// Certificate is set when this update finished the course and the
	// learner already holds a passing final attempt.
	Certificate *types.IssuedCertificate `json:"certificate,omitempty"`
}

// CertificateIssuer is the part of the certification flow progress needs.
type CertificateIssuer interface {
	IssueIfQualified(ctx context.Context, userID, courseID uuid.UUID) (*CertificateResult, error)
}

type ProgressService interface {
	CourseOutlineWithProgress(ctx context.Context, courseID uuid.UUID) (*OutlineWithProgress, error)
	LessonState(ctx context.Context, courseID, lessonID uuid.UUID) (*LessonStateResult, error)
	UpdateProgress(ctx context.Context, courseID, lessonID uuid.UUID, in ProgressUpdate) (*LessonStateResult, error)
}

type progressService struct {
	log         *logger.Logger
	enrollments repos.EnrollmentRepo
	progress    repos.LessonProgressRepo
	catalog     CatalogService
	agg         domainagg.ProgressAggregate
	certifier   CertificateIssuer
}

func NewProgressService(
	log *logger.Logger,
	enrollments repos.EnrollmentRepo,
	progress repos.LessonProgressRepo,
	catalog CatalogService,
	agg domainagg.ProgressAggregate,
	certifier CertificateIssuer,
) ProgressService {
	return &progressService{
		log:         log.With("service", "ProgressService"),
		enrollments: enrollments,
		progress:    progress,
		catalog:     catalog,
		agg:         agg,
		certifier:   certifier,
	}
}

func (s *progressService) CourseOutlineWithProgress(ctx context.Context, courseID uuid.UUID) (*OutlineWithProgress, error) {
	const op = "Progress.CourseOutline"
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	e, err := grantingEnrollment(ctx, s.enrollments, op, rd.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.agg.EnsureProgressRows(ctx, domainagg.EnsureProgressRowsInput{EnrollmentID: e.ID}); err != nil {
		return nil, err
	}
	outline, err := s.catalog.Outline(ctx, courseID)
	if err != nil {
		return nil, err
	}
	rows, err := s.progress.ListByEnrollment(dbctx.New(ctx), e.ID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return mergeOutlineProgress(e, outline, rows), nil
}

func mergeOutlineProgress(e *types.Enrollment, outline *CourseOutline, rows []*types.LessonProgress) *OutlineWithProgress {
	byLesson := make(map[uuid.UUID]*types.LessonProgress, len(rows))
	for _, r := range rows {
		byLesson[r.LessonID] = r
	}
	out := &OutlineWithProgress{
		CourseID:        outline.CourseID,
		EnrollmentID:    e.ID,
		CurrentLessonID: e.CurrentLessonID,
		Sections:        make([]SectionWithProgress, 0, len(outline.Sections)),
	}
	// Only rows for lessons still in the outline count toward the summary.
	counted := make([]*types.LessonProgress, 0, len(rows))
	for _, sec := range outline.Sections {
		section := SectionWithProgress{
			ID:       sec.ID,
			Title:    sec.Title,
			Position: sec.Position,
			Lessons:  make([]LessonWithProgress, 0, len(sec.Lessons)),
		}
		for _, l := range sec.Lessons {
			item := LessonWithProgress{OutlineLesson: l}
			if p := byLesson[l.ID]; p != nil {
				item.ProgressPercent = p.ProgressPercent
				item.Completed = p.Completed
				item.LastPositionSec = p.LastPositionSec
				counted = append(counted, p)
			}
			section.Lessons = append(section.Lessons, item)
		}
		out.Sections = append(out.Sections, section)
	}
	out.Summary = enrollment.Summarize(outline.LessonCount(), counted)
	return out
}

func (s *progressService) LessonState(ctx context.Context, courseID, lessonID uuid.UUID) (*LessonStateResult, error) {
	return s.update(ctx, "Progress.LessonState", courseID, lessonID, ProgressUpdate{})
}

func (s *progressService) UpdateProgress(ctx context.Context, courseID, lessonID uuid.UUID, in ProgressUpdate) (*LessonStateResult, error) {
	out, err := s.update(ctx, "Progress.UpdateProgress", courseID, lessonID, in)
	if err != nil {
		return nil, err
	}
	kind := "position"
	switch {
	case in.MarkCompleted:
		kind = "completed"
	case in.Percent != nil:
		kind = "percent"
	}
	observability.Current().IncProgressUpdate(kind)
	return out, nil
}

func (s *progressService) update(ctx context.Context, op string, courseID, lessonID uuid.UUID, in ProgressUpdate) (*LessonStateResult, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	e, err := grantingEnrollment(ctx, s.enrollments, op, rd.UserID, courseID)
	if err != nil {
		return nil, err
	}
	res, err := s.agg.UpdateProgress(ctx, domainagg.UpdateProgressInput{
		EnrollmentID:    e.ID,
		LessonID:        lessonID,
		Percent:         in.Percent,
		LastPositionSec: in.LastPositionSec,
		MarkCompleted:   in.MarkCompleted,
	})
	if err != nil {
		return nil, err
	}
	out := &LessonStateResult{Progress: res.Progress, Summary: res.Summary}

	finished := res.Summary.TotalLessons > 0 && res.Summary.CompletedLessons == res.Summary.TotalLessons
	if in.MarkCompleted && finished && s.certifier != nil {
		cert, err := s.certifier.IssueIfQualified(ctx, rd.UserID, courseID)
		if err != nil {
			s.log.Warn("Certificate check after completion failed", "course_id", courseID, "user_id", rd.UserID, "error", err)
		} else if cert != nil {
			out.Certificate = cert.Certificate
		}
	}
	return out, nil
}
