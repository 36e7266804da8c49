package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/enrollment"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

type ProgressAggregateDeps struct {
	Base BaseDeps

	Lessons     repos.LessonRepo
	Enrollments repos.EnrollmentRepo
	Progress    repos.LessonProgressRepo
}

type progressAggregate struct {
	deps ProgressAggregateDeps
}

func NewProgressAggregate(deps ProgressAggregateDeps) domainagg.ProgressAggregate {
	deps.Base = deps.Base.withDefaults()
	return &progressAggregate{deps: deps}
}

func (a *progressAggregate) Contract() domainagg.Contract {
	return domainagg.ProgressAggregateContract
}

func (a *progressAggregate) EnsureProgressRows(ctx context.Context, in domainagg.EnsureProgressRowsInput) (domainagg.EnsureProgressRowsResult, error) {
	const op = "Progress.EnsureProgressRows"
	var out domainagg.EnsureProgressRowsResult
	if in.EnrollmentID == uuid.Nil {
		return out, domainagg.Invalid(op, "missing enrollment_id")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		e, err := a.deps.Enrollments.GetByID(dbc, in.EnrollmentID)
		if err != nil {
			return err
		}
		if e == nil {
			return domainagg.NotFound(op, fmt.Sprintf("enrollment not found: %s", in.EnrollmentID))
		}
		created, lessonIDs, err := a.ensureRows(dbc, e)
		if err != nil {
			return err
		}
		out.Created = created
		out.TotalLessons = len(lessonIDs)
		return nil
	})
	return out, err
}

func (a *progressAggregate) UpdateProgress(ctx context.Context, in domainagg.UpdateProgressInput) (domainagg.UpdateProgressResult, error) {
	const op = "Progress.UpdateProgress"
	var out domainagg.UpdateProgressResult
	if in.EnrollmentID == uuid.Nil || in.LessonID == uuid.Nil {
		return out, domainagg.Invalid(op, "enrollment_id and lesson_id are required")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		e, err := a.deps.Enrollments.GetByID(dbc, in.EnrollmentID)
		if err != nil {
			return err
		}
		if e == nil {
			return domainagg.NotFound(op, fmt.Sprintf("enrollment not found: %s", in.EnrollmentID))
		}
		if !e.Grants() {
			return domainagg.NotEnrolled(op, "enrollment is canceled")
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

		_, lessonIDs, err := a.ensureRows(dbc, e)
		if err != nil {
			return err
		}
		row, err := a.deps.Progress.LockByEnrollmentAndLesson(dbc, e.ID, lesson.ID)
		if err != nil {
			return err
		}
		if row == nil {
			return InvariantError("progress row missing after backfill")
		}

		updates := map[string]interface{}{}
		if in.Percent != nil && !row.Completed {
			row.ProgressPercent = enrollment.ClampPercent(*in.Percent)
			updates["progress_percent"] = row.ProgressPercent
		}
		if in.LastPositionSec != nil {
			row.LastPositionSec = enrollment.ClampPosition(*in.LastPositionSec)
			updates["last_position_sec"] = row.LastPositionSec
		}
		if in.MarkCompleted {
			row.Completed = true
			row.ProgressPercent = 100
			updates["completed"] = true
			updates["progress_percent"] = 100
		}
		if len(updates) > 0 {
			if err := a.deps.Progress.UpdateFields(dbc, row.ID, updates); err != nil {
				return err
			}
		}

		rows, err := a.deps.Progress.ListByEnrollment(dbc, e.ID)
		if err != nil {
			return err
		}
		out.Progress = row
		out.Summary = enrollment.Summarize(len(lessonIDs), rows)
		return nil
	})
	return out, err
}

// ensureRows inserts a zero row for every course lesson the enrollment lacks.
// Rows written by a concurrent caller are skipped by the conflict clause.
func (a *progressAggregate) ensureRows(dbc dbctx.Context, e *enrollment.Enrollment) (int, []uuid.UUID, error) {
	lessonIDs, err := a.deps.Lessons.ListIDsByCourse(dbc, e.CourseID)
	if err != nil {
		return 0, nil, err
	}
	existing, err := a.deps.Progress.ListByEnrollment(dbc, e.ID)
	if err != nil {
		return 0, nil, err
	}
	have := make(map[uuid.UUID]bool, len(existing))
	for _, p := range existing {
		have[p.LessonID] = true
	}
	missing := make([]*enrollment.LessonProgress, 0, len(lessonIDs))
	for _, id := range lessonIDs {
		if have[id] {
			continue
		}
		missing = append(missing, &enrollment.LessonProgress{
			EnrollmentID: e.ID,
			LessonID:     id,
		})
	}
	if len(missing) == 0 {
		return 0, lessonIDs, nil
	}
	n, err := a.deps.Progress.CreateIgnoreConflict(dbc, missing)
	if err != nil {
		return 0, nil, err
	}
	return int(n), lessonIDs, nil
}
