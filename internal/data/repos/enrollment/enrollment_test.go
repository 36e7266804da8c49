package enrollment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

func TestEnrollmentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewEnrollmentRepo(db, testutil.Logger(t))

	inst := testutil.SeedInstructor(t, ctx, tx, "enr-inst@example.com")
	learner := testutil.SeedUser(t, ctx, tx, "enr-learner@example.com")
	course := testutil.SeedCourse(t, ctx, tx, inst.ID, types.CourseStatusPublished)

	e := &types.Enrollment{UserID: learner.ID, CourseID: course.ID}
	if _, err := repo.Create(dbc, []*types.Enrollment{e}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.Status != types.EnrollmentActive || e.Source != types.SourceB2C || e.EnrolledAt.IsZero() {
		t.Fatalf("Create: defaults not applied: %+v", e)
	}

	err := tx.Transaction(func(inner *gorm.DB) error {
		_, err := repo.Create(dbc.WithTx(inner), []*types.Enrollment{{UserID: learner.ID, CourseID: course.ID}})
		return err
	})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("Create(duplicate): want ErrDuplicatedKey got=%v", err)
	}

	got, err := repo.GetByUserAndCourse(dbc, learner.ID, course.ID)
	if err != nil || got == nil || got.ID != e.ID {
		t.Fatalf("GetByUserAndCourse: err=%v got=%+v", err, got)
	}
	if none, err := repo.GetByUserAndCourse(dbc, learner.ID, uuid.New()); err != nil || none != nil {
		t.Fatalf("GetByUserAndCourse(missing): err=%v got=%+v", err, none)
	}
	if rows, err := repo.GetByUserAndCourses(dbc, learner.ID, []uuid.UUID{course.ID, uuid.New()}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByUserAndCourses: err=%v len=%d", err, len(rows))
	}

	if err := repo.UpdateFields(dbc, e.ID, map[string]interface{}{"status": types.EnrollmentCanceled}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	locked, err := repo.LockByID(dbc, e.ID)
	if err != nil || locked == nil || locked.Status != types.EnrollmentCanceled {
		t.Fatalf("LockByID: err=%v got=%+v", err, locked)
	}
	if locked.Grants() {
		t.Fatalf("canceled enrollment must not grant access")
	}

	list, err := repo.ListByUser(dbc, learner.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(list))
	}
}

func TestLessonProgressRepoCreateIgnoreConflict(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLessonProgressRepo(db, testutil.Logger(t))

	inst := testutil.SeedInstructor(t, ctx, tx, "lp-inst@example.com")
	learner := testutil.SeedUser(t, ctx, tx, "lp-learner@example.com")
	course, lessons := testutil.SeedCourseOutline(t, ctx, tx, inst.ID, 3)
	e := testutil.SeedEnrollment(t, ctx, tx, learner.ID, course.ID)
	testutil.SeedProgress(t, ctx, tx, e.ID, lessons[0].ID, 40, false)

	rows := make([]*types.LessonProgress, 0, len(lessons))
	for _, l := range lessons {
		rows = append(rows, &types.LessonProgress{EnrollmentID: e.ID, LessonID: l.ID})
	}
	n, err := repo.CreateIgnoreConflict(dbc, rows)
	if err != nil {
		t.Fatalf("CreateIgnoreConflict: %v", err)
	}
	if n != 2 {
		t.Fatalf("CreateIgnoreConflict: want=2 got=%d", n)
	}

	existing, err := repo.GetByEnrollmentAndLesson(dbc, e.ID, lessons[0].ID)
	if err != nil || existing == nil || existing.ProgressPercent != 40 {
		t.Fatalf("existing row overwritten: err=%v got=%+v", err, existing)
	}

	all, err := repo.ListByEnrollment(dbc, e.ID)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListByEnrollment: err=%v len=%d", err, len(all))
	}

	if err := repo.UpdateFields(dbc, existing.ID, map[string]interface{}{"progress_percent": 100, "completed": true}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	locked, err := repo.LockByEnrollmentAndLesson(dbc, e.ID, lessons[0].ID)
	if err != nil || locked == nil || !locked.Completed || locked.ProgressPercent != 100 {
		t.Fatalf("LockByEnrollmentAndLesson: err=%v got=%+v", err, locked)
	}
}

func TestLessonRemovalClearsLearnerState(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	enrollments := NewEnrollmentRepo(db, log)
	progress := NewLessonProgressRepo(db, log)

	inst := testutil.SeedInstructor(t, ctx, tx, "removal-inst@example.com")
	course, lessons := testutil.SeedCourseOutline(t, ctx, tx, inst.ID, 2)
	a := testutil.SeedUser(t, ctx, tx, "removal-a@example.com")
	b := testutil.SeedUser(t, ctx, tx, "removal-b@example.com")

	ea := testutil.SeedEnrollment(t, ctx, tx, a.ID, course.ID)
	eb := testutil.SeedEnrollment(t, ctx, tx, b.ID, course.ID)
	testutil.SeedProgress(t, ctx, tx, ea.ID, lessons[0].ID, 100, true)
	testutil.SeedProgress(t, ctx, tx, ea.ID, lessons[1].ID, 10, false)
	testutil.SeedProgress(t, ctx, tx, eb.ID, lessons[0].ID, 40, false)
	if err := enrollments.UpdateFields(dbc, ea.ID, map[string]interface{}{"current_lesson_id": lessons[0].ID}); err != nil {
		t.Fatalf("UpdateFields(a): %v", err)
	}
	if err := enrollments.UpdateFields(dbc, eb.ID, map[string]interface{}{"current_lesson_id": lessons[1].ID}); err != nil {
		t.Fatalf("UpdateFields(b): %v", err)
	}

	n, err := progress.DeleteByLessons(dbc, []uuid.UUID{lessons[0].ID})
	if err != nil || n != 2 {
		t.Fatalf("DeleteByLessons: err=%v want=2 got=%d", err, n)
	}
	left, err := progress.ListByEnrollment(dbc, ea.ID)
	if err != nil || len(left) != 1 || left[0].LessonID != lessons[1].ID {
		t.Fatalf("ListByEnrollment after delete: err=%v got=%d", err, len(left))
	}

	n, err = enrollments.ClearCurrentLesson(dbc, []uuid.UUID{lessons[0].ID})
	if err != nil || n != 1 {
		t.Fatalf("ClearCurrentLesson: err=%v want=1 got=%d", err, n)
	}
	got, err := enrollments.GetByID(dbc, ea.ID)
	if err != nil || got == nil || got.CurrentLessonID != nil {
		t.Fatalf("GetByID(a): err=%v current=%v", err, got.CurrentLessonID)
	}
	got, err = enrollments.GetByID(dbc, eb.ID)
	if err != nil || got == nil || got.CurrentLessonID == nil || *got.CurrentLessonID != lessons[1].ID {
		t.Fatalf("GetByID(b): err=%v got=%+v", err, got)
	}
}

func TestEnrollmentRepoCountByCourses(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewEnrollmentRepo(db, testutil.Logger(t))

	inst := testutil.SeedInstructor(t, ctx, tx, "counts-inst@example.com")
	c1 := testutil.SeedCourse(t, ctx, tx, inst.ID, types.CourseStatusPublished)
	c2 := testutil.SeedCourse(t, ctx, tx, inst.ID, types.CourseStatusPublished)
	statuses := []types.EnrollmentStatus{types.EnrollmentActive, types.EnrollmentCompleted, types.EnrollmentCanceled}
	for i, st := range statuses {
		u := testutil.SeedUser(t, ctx, tx, fmt.Sprintf("counts-%d@example.com", i))
		e := testutil.SeedEnrollment(t, ctx, tx, u.ID, c1.ID)
		if err := repo.UpdateFields(dbc, e.ID, map[string]interface{}{"status": st}); err != nil {
			t.Fatalf("UpdateFields: %v", err)
		}
	}
	u := testutil.SeedUser(t, ctx, tx, "counts-c2@example.com")
	testutil.SeedEnrollment(t, ctx, tx, u.ID, c2.ID)

	got, err := repo.CountByCourses(dbc, []uuid.UUID{c1.ID, c2.ID})
	if err != nil || got.Enrollments != 3 || got.Completed != 1 {
		t.Fatalf("CountByCourses: err=%v want=3/1 got=%d/%d", err, got.Enrollments, got.Completed)
	}
	empty, err := repo.CountByCourses(dbc, nil)
	if err != nil || empty.Enrollments != 0 {
		t.Fatalf("CountByCourses(nil): err=%v got=%+v", err, empty)
	}
}
