package services

import (
	"testing"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
)

func TestReviewRequiresEnrollmentAndReplacesPrevious(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "reviewed@example.com")
	course, _ := testutil.SeedCourseOutline(t, h.ctx, h.db, author.ID, 1)
	learner := h.learner(t, "critic@example.com")
	ctx := h.as(learner)

	_, err := h.review.SubmitReview(ctx, course.ID, ReviewInput{Rating: 4})
	wantCode(t, "review without enrollment", err, domainagg.CodeNotEnrolled)

	testutil.SeedEnrollment(t, h.ctx, h.db, learner.ID, course.ID)
	first, err := h.review.SubmitReview(ctx, course.ID, ReviewInput{Rating: 3, Comment: "  correct  "})
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	if first.Comment != "correct" {
		t.Fatalf("SubmitReview comment: want=correct got=%q", first.Comment)
	}
	second, err := h.review.SubmitReview(ctx, course.ID, ReviewInput{Rating: 5, Comment: "excellent"})
	if err != nil {
		t.Fatalf("SubmitReview again: %v", err)
	}
	if second.ID != first.ID || second.Rating != 5 {
		t.Fatalf("SubmitReview again: want id=%s rating=5 got id=%s rating=%d", first.ID, second.ID, second.Rating)
	}
	if n := h.count(t, &types.Review{}, "course_id = ?", course.ID); n != 1 {
		t.Fatalf("review rows: want=1 got=%d", n)
	}

	_, err = h.review.SubmitReview(ctx, course.ID, ReviewInput{Rating: 6})
	wantCode(t, "rating out of range", err, domainagg.CodeValidation)
	_, err = h.review.SubmitReview(h.as(author), course.ID, ReviewInput{Rating: 5})
	wantCode(t, "self review", err, domainagg.CodeForbidden)

	list, err := h.review.CourseReviews(h.ctx, course.ID, 0, 0)
	if err != nil {
		t.Fatalf("CourseReviews: %v", err)
	}
	if list.Summary.Count != 1 || list.Summary.Average != 5 || len(list.Reviews) != 1 {
		t.Fatalf("CourseReviews: got summary=%+v rows=%d", list.Summary, len(list.Reviews))
	}

	mine, err := h.review.InstructorReviews(h.as(author), 0, 0)
	if err != nil || mine.Summary.Count != 1 {
		t.Fatalf("InstructorReviews: err=%v got=%+v", err, mine)
	}
	_, err = h.review.InstructorReviews(ctx, 0, 0)
	wantCode(t, "learner instructor reviews", err, domainagg.CodeForbidden)
}

func TestCourseReviewsHideUnpublishedCourses(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "drafter@example.com")
	draft := testutil.SeedCourse(t, h.ctx, h.db, author.ID, types.CourseStatusDraft)

	_, err := h.review.CourseReviews(h.ctx, draft.ID, 0, 0)
	wantCode(t, "draft course reviews", err, domainagg.CodeNotFound)
}
