package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/catalog"
	"github.com/yungbote/coursemarket-backend/internal/domain/enrollment"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

type EnrollmentAggregateDeps struct {
	Base BaseDeps

	Courses     repos.CourseRepo
	Lessons     repos.LessonRepo
	Enrollments repos.EnrollmentRepo
	Progress    repos.LessonProgressRepo
}

type enrollmentAggregate struct {
	deps EnrollmentAggregateDeps
}

func NewEnrollmentAggregate(deps EnrollmentAggregateDeps) domainagg.EnrollmentAggregate {
	deps.Base = deps.Base.withDefaults()
	return &enrollmentAggregate{deps: deps}
}

func (a *enrollmentAggregate) Contract() domainagg.Contract {
	return domainagg.EnrollmentAggregateContract
}

func (a *enrollmentAggregate) Enroll(ctx context.Context, in domainagg.EnrollInput) (domainagg.EnrollResult, error) {
	const op = "Enrollment.Enroll"
	var out domainagg.EnrollResult
	if in.UserID == uuid.Nil {
		return out, domainagg.Invalid(op, "missing user_id")
	}
	if in.CourseID == uuid.Nil {
		return out, domainagg.Invalid(op, "missing course_id")
	}
	if a.deps.Courses == nil || a.deps.Enrollments == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "enrollment aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		course, err := a.deps.Courses.GetByID(dbc, in.CourseID)
		if err != nil {
			return err
		}
		if course == nil {
			return domainagg.NotFound(op, fmt.Sprintf("course not found: %s", in.CourseID))
		}
		if !in.AllowUnpublished && !courseOpenTo(course, in.Source, in.CompanyID) {
			return domainagg.NotAvailable(op, "course is not available for enrollment")
		}
		row, created, err := enrollInTx(dbc, a.deps.Enrollments, in.UserID, in.CourseID, in.Source, in.CompanyID)
		if err != nil {
			return err
		}
		out.Enrollment = row
		out.Created = created
		return nil
	})
	return out, err
}

// courseOpenTo reports whether a learner may enroll through source.
// Company-only courses are reachable only through their own company.
func courseOpenTo(course *catalog.Course, source enrollment.Source, companyID *uuid.UUID) bool {
	if course == nil {
		return false
	}
	if course.CompanyOnly {
		return source == enrollment.SourceCompany &&
			companyID != nil && course.CompanyID != nil &&
			*companyID == *course.CompanyID &&
			course.Status != catalog.CourseStatusArchived
	}
	return course.IsPublished()
}

// enrollInTx is the shared get-or-create used by Enroll, settlement and
// seat assignment. An existing row is returned unchanged.
func enrollInTx(dbc dbctx.Context, rows repos.EnrollmentRepo, userID, courseID uuid.UUID, source enrollment.Source, companyID *uuid.UUID) (*enrollment.Enrollment, bool, error) {
	if source == "" {
		source = enrollment.SourceB2C
	}
	return getOrCreate(dbc,
		func(d dbctx.Context) (*enrollment.Enrollment, error) {
			return rows.GetByUserAndCourse(d, userID, courseID)
		},
		func(d dbctx.Context) (*enrollment.Enrollment, error) {
			e := &enrollment.Enrollment{
				UserID:    userID,
				CourseID:  courseID,
				Status:    enrollment.StatusActive,
				Source:    source,
				CompanyID: companyID,
			}
			if _, err := rows.Create(d, []*enrollment.Enrollment{e}); err != nil {
				return nil, err
			}
			return e, nil
		},
	)
}

func (a *enrollmentAggregate) SetCurrentLesson(ctx context.Context, in domainagg.SetCurrentLessonInput) (domainagg.SetCurrentLessonResult, error) {
	const op = "Enrollment.SetCurrentLesson"
	var out domainagg.SetCurrentLessonResult
	if in.EnrollmentID == uuid.Nil || in.LessonID == uuid.Nil {
		return out, domainagg.Invalid(op, "enrollment_id and lesson_id are required")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		e, err := a.lockActive(dbc, op, in.EnrollmentID)
		if err != nil {
			return err
		}
		lesson, err := a.deps.Lessons.GetByID(dbc, in.LessonID)
		if err != nil {
			return err
		}
		if lesson == nil {
			return domainagg.NotFound(op, fmt.Sprintf("lesson not found: %s", in.LessonID))
		}
		if lesson.CourseID != e.CourseID {
			return domainagg.CrossCourse(op, "lesson belongs to another course")
		}
		if e.CurrentLessonID == nil || *e.CurrentLessonID != lesson.ID {
			if err := a.deps.Enrollments.UpdateFields(dbc, e.ID, map[string]interface{}{
				"current_lesson_id": lesson.ID,
			}); err != nil {
				return err
			}
			id := lesson.ID
			e.CurrentLessonID = &id
		}
		out.Enrollment = e
		return nil
	})
	return out, err
}

func (a *enrollmentAggregate) AdvanceToNextUncompleted(ctx context.Context, in domainagg.AdvanceInput) (domainagg.AdvanceResult, error) {
	const op = "Enrollment.AdvanceToNextUncompleted"
	var out domainagg.AdvanceResult
	if in.EnrollmentID == uuid.Nil {
		return out, domainagg.Invalid(op, "missing enrollment_id")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		e, err := a.lockActive(dbc, op, in.EnrollmentID)
		if err != nil {
			return err
		}
		lessons, err := a.deps.Lessons.ListByCourseOrdered(dbc, e.CourseID)
		if err != nil {
			return err
		}
		if len(lessons) == 0 {
			return domainagg.NotFound(op, "course has no lessons")
		}
		last := lessons[len(lessons)-1]

		// A completed enrollment always resumes at the last lesson, even if
		// the pointer was moved back for review.
		if e.Status == enrollment.StatusCompleted {
			if err := a.pointAt(dbc, e, last.ID); err != nil {
				return err
			}
			out.Enrollment = e
			out.Lesson = last
			return nil
		}

		progress, err := a.deps.Progress.ListByEnrollment(dbc, e.ID)
		if err != nil {
			return err
		}
		done := make(map[uuid.UUID]bool, len(progress))
		for _, p := range progress {
			if p != nil && p.Completed {
				done[p.LessonID] = true
			}
		}

		var next *catalog.Lesson
		for _, l := range lessons {
			if !done[l.ID] {
				next = l
				break
			}
		}

		if next != nil {
			if err := a.pointAt(dbc, e, next.ID); err != nil {
				return err
			}
			out.Enrollment = e
			out.Lesson = next
			return nil
		}

		now := a.deps.Base.Now()
		err = statusTransition(a.deps.Base.CASGuard, dbc, &enrollment.Enrollment{}, e.ID,
			[]enrollment.Status{enrollment.StatusActive},
			map[string]any{
				"status":            enrollment.StatusCompleted,
				"completed_at":      now,
				"current_lesson_id": last.ID,
				"updated_at":        now,
			})
		if err != nil {
			return err
		}
		lastID := last.ID
		e.Status = enrollment.StatusCompleted
		e.CompletedAt = &now
		e.CurrentLessonID = &lastID
		out.Enrollment = e
		out.Lesson = last
		out.CompletedNow = true
		return nil
	})
	return out, err
}

func (a *enrollmentAggregate) Cancel(ctx context.Context, in domainagg.CancelInput) (domainagg.CancelResult, error) {
	const op = "Enrollment.Cancel"
	var out domainagg.CancelResult
	if in.EnrollmentID == uuid.Nil {
		return out, domainagg.Invalid(op, "missing enrollment_id")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		e, err := a.deps.Enrollments.LockByID(dbc, in.EnrollmentID)
		if err != nil {
			return err
		}
		if e == nil {
			return domainagg.NotFound(op, fmt.Sprintf("enrollment not found: %s", in.EnrollmentID))
		}
		out.Enrollment = e
		if e.Status == enrollment.StatusCanceled {
			return nil
		}
		if err := a.deps.Enrollments.UpdateFields(dbc, e.ID, map[string]interface{}{
			"status": enrollment.StatusCanceled,
		}); err != nil {
			return err
		}
		e.Status = enrollment.StatusCanceled
		out.Changed = true
		return nil
	})
	return out, err
}

func (a *enrollmentAggregate) lockActive(dbc dbctx.Context, op string, id uuid.UUID) (*enrollment.Enrollment, error) {
	e, err := a.deps.Enrollments.LockByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domainagg.NotFound(op, fmt.Sprintf("enrollment not found: %s", id))
	}
	if !e.Grants() {
		return nil, domainagg.NotEnrolled(op, "enrollment is canceled")
	}
	return e, nil
}

func (a *enrollmentAggregate) pointAt(dbc dbctx.Context, e *enrollment.Enrollment, lessonID uuid.UUID) error {
	if e.CurrentLessonID != nil && *e.CurrentLessonID == lessonID {
		return nil
	}
	if err := a.deps.Enrollments.UpdateFields(dbc, e.ID, map[string]interface{}{
		"current_lesson_id": lessonID,
	}); err != nil {
		return err
	}
	e.CurrentLessonID = &lessonID
	return nil
}
