package aggregates_test

import (
	"testing"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/enrollment"
)

func TestEnsureProgressRowsBackfillsOnce(t *testing.T) {
	h := newHarness(t)
	learner := testutil.SeedUser(t, h.ctx, h.db, "rows@example.com")
	instr := testutil.SeedInstructor(t, h.ctx, h.db, "rows-i@example.com")
	course, lessons := testutil.SeedCourseOutline(t, h.ctx, h.db, instr.ID, 2, 1)
	e := testutil.SeedEnrollment(t, h.ctx, h.db, learner.ID, course.ID)
	testutil.SeedProgress(t, h.ctx, h.db, e.ID, lessons[0].ID, 40, false)
	agg := h.progressAgg()

	res, err := agg.EnsureProgressRows(h.ctx, domainagg.EnsureProgressRowsInput{EnrollmentID: e.ID})
	if err != nil || res.Created != 2 || res.TotalLessons != 3 {
		t.Fatalf("ensure: err=%v got=%+v", err, res)
	}
	res, err = agg.EnsureProgressRows(h.ctx, domainagg.EnsureProgressRowsInput{EnrollmentID: e.ID})
	if err != nil || res.Created != 0 {
		t.Fatalf("second ensure: err=%v got=%+v", err, res)
	}
	if n := h.count(t, &enrollment.LessonProgress{}, "enrollment_id = ?", e.ID); n != 3 {
		t.Fatalf("progress rows: want=3 got=%d", n)
	}
	kept, err := h.progress.GetByEnrollmentAndLesson(dbcOf(h), e.ID, lessons[0].ID)
	if err != nil || kept.ProgressPercent != 40 {
		t.Fatalf("existing row overwritten: err=%v got=%+v", err, kept)
	}
}

func TestUpdateProgressClampsAndCompletes(t *testing.T) {
	h := newHarness(t)
	learner := testutil.SeedUser(t, h.ctx, h.db, "clamp@example.com")
	instr := testutil.SeedInstructor(t, h.ctx, h.db, "clamp-i@example.com")
	course, lessons := testutil.SeedCourseOutline(t, h.ctx, h.db, instr.ID, 2)
	e := testutil.SeedEnrollment(t, h.ctx, h.db, learner.ID, course.ID)
	agg := h.progressAgg()
	lesson := lessons[0].ID

	res, err := agg.UpdateProgress(h.ctx, domainagg.UpdateProgressInput{EnrollmentID: e.ID, LessonID: lesson, Percent: ptr(150), LastPositionSec: ptr(-7)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Progress.ProgressPercent != 100 || res.Progress.Completed || res.Progress.LastPositionSec != 0 {
		t.Fatalf("clamped row: %+v", res.Progress)
	}
	if res.Summary.CompletedLessons != 0 || res.Summary.ProgressPercent != 50 || res.Summary.TotalLessons != 2 {
		t.Fatalf("summary after 100%% without completion: %+v", res.Summary)
	}

	res, err = agg.UpdateProgress(h.ctx, domainagg.UpdateProgressInput{EnrollmentID: e.ID, LessonID: lesson, Percent: ptr(-3)})
	if err != nil || res.Progress.ProgressPercent != 0 {
		t.Fatalf("negative percent: err=%v got=%+v", err, res.Progress)
	}

	res, err = agg.UpdateProgress(h.ctx, domainagg.UpdateProgressInput{EnrollmentID: e.ID, LessonID: lesson, Percent: ptr(10), MarkCompleted: true})
	if err != nil || !res.Progress.Completed || res.Progress.ProgressPercent != 100 {
		t.Fatalf("mark completed: err=%v got=%+v", err, res.Progress)
	}

	res, err = agg.UpdateProgress(h.ctx, domainagg.UpdateProgressInput{EnrollmentID: e.ID, LessonID: lesson, Percent: ptr(40), LastPositionSec: ptr(12)})
	if err != nil {
		t.Fatalf("update completed row: %v", err)
	}
	stored, err := h.progress.GetByEnrollmentAndLesson(dbcOf(h), e.ID, lesson)
	if err != nil || !stored.Completed || stored.ProgressPercent != 100 || stored.LastPositionSec != 12 {
		t.Fatalf("completed row must keep 100%%: err=%v got=%+v", err, stored)
	}
}

func TestThreeLessonCourseSummary(t *testing.T) {
	h := newHarness(t)
	learner := testutil.SeedUser(t, h.ctx, h.db, "three@example.com")
	instr := testutil.SeedInstructor(t, h.ctx, h.db, "three-i@example.com")
	course, lessons := testutil.SeedCourseOutline(t, h.ctx, h.db, instr.ID, 3)
	e := testutil.SeedEnrollment(t, h.ctx, h.db, learner.ID, course.ID)
	agg := h.progressAgg()

	if _, err := agg.EnsureProgressRows(h.ctx, domainagg.EnsureProgressRowsInput{EnrollmentID: e.ID}); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	rows, err := h.progress.ListByEnrollment(dbcOf(h), e.ID)
	if err != nil || len(rows) != 3 {
		t.Fatalf("rows: err=%v len=%d", err, len(rows))
	}
	for _, r := range rows {
		if r.ProgressPercent != 0 || r.Completed {
			t.Fatalf("fresh row: %+v", r)
		}
	}

	res, err := agg.UpdateProgress(h.ctx, domainagg.UpdateProgressInput{EnrollmentID: e.ID, LessonID: lessons[1].ID, MarkCompleted: true})
	if err != nil {
		t.Fatalf("complete lesson 2: %v", err)
	}
	if res.Summary.ProgressPercent != 33 || res.Summary.CompletedLessons != 1 || res.Summary.TotalLessons != 3 {
		t.Fatalf("summary: %+v", res.Summary)
	}
}

func TestUpdateProgressRejectsForeignLesson(t *testing.T) {
	h := newHarness(t)
	learner := testutil.SeedUser(t, h.ctx, h.db, "foreign@example.com")
	instr := testutil.SeedInstructor(t, h.ctx, h.db, "foreign-i@example.com")
	course, _ := testutil.SeedCourseOutline(t, h.ctx, h.db, instr.ID, 1)
	_, other := testutil.SeedCourseOutline(t, h.ctx, h.db, instr.ID, 1)
	e := testutil.SeedEnrollment(t, h.ctx, h.db, learner.ID, course.ID)

	_, err := h.progressAgg().UpdateProgress(h.ctx, domainagg.UpdateProgressInput{EnrollmentID: e.ID, LessonID: other[0].ID, Percent: ptr(50)})
	wantCode(t, "foreign lesson", err, domainagg.CodeCrossCourse)
	if n := h.count(t, &enrollment.LessonProgress{}, "enrollment_id = ?", e.ID); n != 0 {
		t.Fatalf("rejected update wrote rows: %d", n)
	}
}
