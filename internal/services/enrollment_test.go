package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
)

func seedFreeCourse(t *testing.T, h *harness, lessonsPerSection ...int) (*types.Course, []*types.Lesson) {
	t.Helper()
	author := h.instructor(t, "author-"+uuid.NewString()[:8]+"@example.com")
	course, lessons := testutil.SeedCourseOutline(t, h.ctx, h.db, author.ID, lessonsPerSection...)
	h.setCourse(t, course, map[string]any{"pricing_type": types.PricingFree, "price_minor": 0})
	return course, lessons
}

func TestEnrollFreeCourseIsIdempotent(t *testing.T) {
	h := newHarness(t)
	course, _ := seedFreeCourse(t, h, 2)
	learner := h.learner(t, "learner@example.com")
	ctx := h.as(learner)

	first, created, err := h.enrollment.Enroll(ctx, course.ID)
	if err != nil || !created {
		t.Fatalf("Enroll: want created got created=%v err=%v", created, err)
	}
	second, created, err := h.enrollment.Enroll(ctx, course.ID)
	if err != nil || created {
		t.Fatalf("Enroll again: want existing got created=%v err=%v", created, err)
	}
	if first.ID != second.ID {
		t.Fatalf("Enroll again: want=%s got=%s", first.ID, second.ID)
	}
	if n := h.count(t, &types.Enrollment{}, "user_id = ? AND course_id = ?", learner.ID, course.ID); n != 1 {
		t.Fatalf("enrollment rows: want=1 got=%d", n)
	}

	ok, err := h.enrollment.IsEnrolled(h.ctx, learner.ID, course.ID)
	if err != nil || !ok {
		t.Fatalf("IsEnrolled: want true got=%v err=%v", ok, err)
	}
	views, err := h.enrollment.ListForUser(ctx)
	if err != nil || len(views) != 1 || views[0].Course == nil || views[0].Course.ID != course.ID {
		t.Fatalf("ListForUser: got=%+v err=%v", views, err)
	}
}

func TestEnrollPaidCourseRequiresPurchase(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	course, _ := testutil.SeedCourseOutline(t, h.ctx, h.db, author.ID, 1)
	learner := h.learner(t, "learner@example.com")

	_, _, err := h.enrollment.Enroll(h.as(learner), course.ID)
	wantCode(t, "paid enroll", err, domainagg.CodePreconditionFailed)

	testutil.SeedEnrollment(t, h.ctx, h.db, learner.ID, course.ID)
	e, created, err := h.enrollment.Enroll(h.as(learner), course.ID)
	if err != nil || created || e == nil {
		t.Fatalf("paid enroll after purchase: got e=%v created=%v err=%v", e, created, err)
	}
}

func TestEnrollUnpublishedCourseIsNotAvailable(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	draft := testutil.SeedCourse(t, h.ctx, h.db, author.ID, types.CourseStatusDraft)
	h.setCourse(t, draft, map[string]any{"pricing_type": types.PricingFree, "price_minor": 0})

	_, _, err := h.enrollment.Enroll(h.as(h.learner(t, "l@example.com")), draft.ID)
	wantCode(t, "draft enroll", err, domainagg.CodeNotAvailable)
}

func TestEnrollUnpublishedPaidCourseIsNotAvailable(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	learner := h.learner(t, "l@example.com")
	for _, status := range []types.CourseStatus{types.CourseStatusDraft, types.CourseStatusArchived} {
		course := testutil.SeedCourse(t, h.ctx, h.db, author.ID, status)
		_, _, err := h.enrollment.Enroll(h.as(learner), course.ID)
		wantCode(t, "paid "+string(status)+" enroll", err, domainagg.CodeNotAvailable)
	}
}

func TestProgressThreeLessonScenario(t *testing.T) {
	h := newHarness(t)
	course, lessons := seedFreeCourse(t, h, 2, 1)
	learner := h.learner(t, "learner@example.com")
	ctx := h.as(learner)
	if _, _, err := h.enrollment.Enroll(ctx, course.ID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	outline, err := h.progress.CourseOutlineWithProgress(ctx, course.ID)
	if err != nil {
		t.Fatalf("CourseOutlineWithProgress: %v", err)
	}
	if outline.Summary.TotalLessons != 3 || outline.Summary.ProgressPercent != 0 {
		t.Fatalf("initial summary: got=%+v", outline.Summary)
	}
	if n := h.count(t, &types.LessonProgress{}, "enrollment_id = ?", outline.EnrollmentID); n != 3 {
		t.Fatalf("backfilled rows: want=3 got=%d", n)
	}

	res, err := h.progress.UpdateProgress(ctx, course.ID, lessons[0].ID, ProgressUpdate{MarkCompleted: true})
	if err != nil {
		t.Fatalf("complete lesson 1: %v", err)
	}
	if !res.Progress.Completed || res.Progress.ProgressPercent != 100 {
		t.Fatalf("lesson 1: got=%+v", res.Progress)
	}
	if res.Summary.CompletedLessons != 1 || res.Summary.ProgressPercent != 33 {
		t.Fatalf("summary after one: want 1/33 got=%+v", res.Summary)
	}

	res, err = h.progress.UpdateProgress(ctx, course.ID, lessons[1].ID, ProgressUpdate{Percent: ptr(150), LastPositionSec: ptr(-4)})
	if err != nil {
		t.Fatalf("partial lesson 2: %v", err)
	}
	if res.Progress.ProgressPercent != 100 || res.Progress.Completed || res.Progress.LastPositionSec != 0 {
		t.Fatalf("clamped lesson 2: got=%+v", res.Progress)
	}
	res, err = h.progress.UpdateProgress(ctx, course.ID, lessons[1].ID, ProgressUpdate{Percent: ptr(50)})
	if err != nil {
		t.Fatalf("lesson 2 back to 50: %v", err)
	}
	if res.Summary.ProgressPercent != 50 {
		t.Fatalf("summary: want=50 got=%+v", res.Summary)
	}

	// A completed lesson keeps its 100% when a lower percent arrives.
	res, err = h.progress.UpdateProgress(ctx, course.ID, lessons[0].ID, ProgressUpdate{Percent: ptr(10)})
	if err != nil {
		t.Fatalf("lower completed: %v", err)
	}
	if !res.Progress.Completed || res.Progress.ProgressPercent != 100 {
		t.Fatalf("completed lesson regressed: got=%+v", res.Progress)
	}

	state, err := h.progress.LessonState(ctx, course.ID, lessons[2].ID)
	if err != nil {
		t.Fatalf("LessonState: %v", err)
	}
	if state.Progress.ProgressPercent != 0 || state.Summary.TotalLessons != 3 {
		t.Fatalf("LessonState: got=%+v", state)
	}

	cont, err := h.enrollment.ContinueCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("ContinueCourse: %v", err)
	}
	if cont.Lesson == nil || cont.Lesson.ID != lessons[1].ID || cont.CompletedNow {
		t.Fatalf("ContinueCourse: want lesson 2 got=%+v", cont)
	}
}

func TestProgressRejectsForeignLessonAndCanceledEnrollment(t *testing.T) {
	h := newHarness(t)
	course, _ := seedFreeCourse(t, h, 1)
	_, otherLessons := seedFreeCourse(t, h, 1)
	learner := h.learner(t, "learner@example.com")
	ctx := h.as(learner)
	if _, _, err := h.enrollment.Enroll(ctx, course.ID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	_, err := h.progress.UpdateProgress(ctx, course.ID, otherLessons[0].ID, ProgressUpdate{Percent: ptr(10)})
	wantCode(t, "foreign lesson", err, domainagg.CodeCrossCourse)
	_, err = h.enrollment.SetCurrentLesson(ctx, course.ID, otherLessons[0].ID)
	wantCode(t, "foreign current lesson", err, domainagg.CodeCrossCourse)

	canceled, err := h.enrollment.Cancel(ctx, course.ID)
	if err != nil || canceled.Status != types.EnrollmentCanceled {
		t.Fatalf("Cancel: got=%+v err=%v", canceled, err)
	}
	_, err = h.progress.CourseOutlineWithProgress(ctx, course.ID)
	wantCode(t, "outline after cancel", err, domainagg.CodeNotEnrolled)

	_, err = h.progress.CourseOutlineWithProgress(h.as(h.learner(t, "stranger@example.com")), course.ID)
	wantCode(t, "stranger outline", err, domainagg.CodeNotEnrolled)
}

func TestCompletingLastLessonIssuesCertificateWhenQualified(t *testing.T) {
	h := newHarness(t)
	course, lessons := seedFreeCourse(t, h, 2)
	testutil.SeedTemplate(t, h.ctx, h.db, "default")
	quiz, _, _ := testutil.SeedFinalQuiz(t, h.ctx, h.db, course.ID, 2)
	learner := h.learner(t, "learner@example.com")
	ctx := h.as(learner)
	if _, _, err := h.enrollment.Enroll(ctx, course.ID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	testutil.SeedAttempt(t, h.ctx, h.db, quiz.ID, learner.ID, 100, true)

	first, err := h.progress.UpdateProgress(ctx, course.ID, lessons[0].ID, ProgressUpdate{MarkCompleted: true})
	if err != nil {
		t.Fatalf("complete 1: %v", err)
	}
	if first.Certificate != nil {
		t.Fatalf("certificate before course finished: got=%+v", first.Certificate)
	}
	last, err := h.progress.UpdateProgress(ctx, course.ID, lessons[1].ID, ProgressUpdate{MarkCompleted: true})
	if err != nil {
		t.Fatalf("complete 2: %v", err)
	}
	if last.Certificate == nil || last.Certificate.ScorePercent != 100 {
		t.Fatalf("certificate after completion: got=%+v", last.Certificate)
	}
	if h.renderer.count() != 1 {
		t.Fatalf("renders: want=1 got=%d", h.renderer.count())
	}

	again, err := h.certificate.GetCertificate(ctx, course.ID)
	if err != nil || again.Serial != last.Certificate.Serial {
		t.Fatalf("GetCertificate: want serial=%s got=%+v err=%v", last.Certificate.Serial, again, err)
	}
}
