package services

import (
	"testing"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
)

func TestCatalogUpdateSectionAndLesson(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "editor@example.com")
	course, lessons := testutil.SeedCourseOutline(t, h.ctx, h.db, author.ID, 1, 1)
	ctx := h.as(author)
	first, second := lessons[0], lessons[1]

	sec, err := h.catalog.UpdateSection(ctx, course.ID, first.SectionID, SectionInput{Title: "  Introduction  "})
	if err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	if sec.Title != "Introduction" {
		t.Fatalf("UpdateSection title: want=Introduction got=%q", sec.Title)
	}

	lesson, err := h.catalog.UpdateLesson(ctx, course.ID, first.SectionID, first.ID, LessonPatch{
		Title:      ptr("Bienvenue"),
		LessonType: ptr("video"),
		IsPreview:  ptr(true),
	})
	if err != nil {
		t.Fatalf("UpdateLesson: %v", err)
	}
	if lesson.Title != "Bienvenue" || lesson.LessonType != types.LessonVideo || !lesson.IsPreview {
		t.Fatalf("UpdateLesson: got title=%q type=%s preview=%v", lesson.Title, lesson.LessonType, lesson.IsPreview)
	}

	outline, err := h.catalog.Outline(h.ctx, course.ID)
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	if outline.Sections[0].Title != "Introduction" || outline.Sections[0].Lessons[0].Title != "Bienvenue" {
		t.Fatalf("Outline after edit: got section=%q lesson=%q", outline.Sections[0].Title, outline.Sections[0].Lessons[0].Title)
	}

	_, err = h.catalog.UpdateLesson(ctx, course.ID, first.SectionID, second.ID, LessonPatch{Title: ptr("x")})
	wantCode(t, "lesson of another section", err, domainagg.CodeCrossCourse)

	_, err = h.catalog.UpdateLesson(ctx, course.ID, first.SectionID, first.ID, LessonPatch{DurationSec: ptr(-1)})
	wantCode(t, "negative duration", err, domainagg.CodeValidation)

	intruder := h.instructor(t, "intruder@example.com")
	_, err = h.catalog.UpdateSection(h.as(intruder), course.ID, first.SectionID, SectionInput{Title: "Mine"})
	wantCode(t, "non-owner section", err, domainagg.CodeForbidden)
}

func TestCatalogDeleteLessonClearsLearnerState(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "pruner@example.com")
	course, lessons := testutil.SeedCourseOutline(t, h.ctx, h.db, author.ID, 3)
	learner := h.learner(t, "awa@example.com")
	e := testutil.SeedEnrollment(t, h.ctx, h.db, learner.ID, course.ID)
	testutil.SeedProgress(t, h.ctx, h.db, e.ID, lessons[0].ID, 100, true)
	testutil.SeedProgress(t, h.ctx, h.db, e.ID, lessons[1].ID, 30, false)
	if err := h.db.Model(&types.Enrollment{}).Where("id = ?", e.ID).Update("current_lesson_id", lessons[1].ID).Error; err != nil {
		t.Fatalf("set current lesson: %v", err)
	}

	res, err := h.catalog.DeleteLesson(h.as(author), course.ID, lessons[1].SectionID, lessons[1].ID)
	if err != nil {
		t.Fatalf("DeleteLesson: %v", err)
	}
	if res.LessonsDeleted != 1 || res.ProgressDeleted != 1 || res.EnrollmentsReset != 1 {
		t.Fatalf("DeleteLesson result: got=%+v", res)
	}
	reloaded, err := h.enrollments.GetByID(dbcFor(h), e.ID)
	if err != nil || reloaded.CurrentLessonID != nil {
		t.Fatalf("current lesson after delete: err=%v got=%v", err, reloaded.CurrentLessonID)
	}

	outline, err := h.progress.CourseOutlineWithProgress(h.as(learner), course.ID)
	if err != nil {
		t.Fatalf("CourseOutlineWithProgress: %v", err)
	}
	if outline.Summary.TotalLessons != 2 || outline.Summary.CompletedLessons != 1 || outline.Summary.ProgressPercent != 50 {
		t.Fatalf("summary after delete: got=%+v", outline.Summary)
	}

	_, err = h.catalog.DeleteLesson(h.as(author), course.ID, lessons[1].SectionID, lessons[1].ID)
	wantCode(t, "delete twice", err, domainagg.CodeNotFound)
}

func TestCatalogDeleteSectionRefusesQuizLessons(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "quizzer@example.com")
	course, lessons := testutil.SeedCourseOutline(t, h.ctx, h.db, author.ID, 2, 1)
	ctx := h.as(author)

	quiz := &types.Quiz{CourseID: course.ID, LessonID: &lessons[1].ID, Title: "Check"}
	if err := h.db.Create(quiz).Error; err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	_, err := h.catalog.DeleteSection(ctx, course.ID, lessons[0].SectionID)
	wantCode(t, "section with quiz lesson", err, domainagg.CodeConflict)
	if n := h.count(t, &types.Lesson{}, "course_id = ?", course.ID); n != 3 {
		t.Fatalf("lessons after refused delete: want=3 got=%d", n)
	}

	res, err := h.catalog.DeleteSection(ctx, course.ID, lessons[2].SectionID)
	if err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	if res.SectionsDeleted != 1 || res.LessonsDeleted != 1 {
		t.Fatalf("DeleteSection result: got=%+v", res)
	}
	if n := h.count(t, &types.CourseSection{}, "course_id = ?", course.ID); n != 1 {
		t.Fatalf("sections after delete: want=1 got=%d", n)
	}
	next, err := h.catalog.CreateSection(ctx, course.ID, SectionInput{Title: "Annexes"})
	if err != nil || next.Position != 2 {
		t.Fatalf("CreateSection after delete: err=%v got=%+v", err, next)
	}
}
