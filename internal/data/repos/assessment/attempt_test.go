package assessment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

func TestAttemptRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	attempts := NewAttemptRepo(db, log)
	quizzes := NewQuizRepo(db, log)

	inst := testutil.SeedInstructor(t, ctx, tx, "attempt-inst@example.com")
	learner := testutil.SeedUser(t, ctx, tx, "attempt-learner@example.com")
	course, lessons := testutil.SeedCourseOutline(t, ctx, tx, inst.ID, 1)
	final, _, _ := testutil.SeedFinalQuiz(t, ctx, tx, course.ID, 2)

	lessonQuiz := &types.Quiz{CourseID: course.ID, LessonID: &lessons[0].ID, Title: "check"}
	if _, err := quizzes.Create(dbc, []*types.Quiz{lessonQuiz}); err != nil {
		t.Fatalf("Create(lesson quiz): %v", err)
	}
	got, err := quizzes.GetFinalForCourse(dbc, course.ID)
	if err != nil || got == nil || got.ID != final.ID {
		t.Fatalf("GetFinalForCourse: err=%v got=%+v", err, got)
	}
	if n, err := quizzes.CountByLessons(dbc, []uuid.UUID{lessons[0].ID, uuid.New()}); err != nil || n != 1 {
		t.Fatalf("CountByLessons: err=%v want=1 got=%d", err, n)
	}

	testutil.SeedAttempt(t, ctx, tx, final.ID, learner.ID, 50, false)
	testutil.SeedAttempt(t, ctx, tx, final.ID, learner.ID, 100, true)
	testutil.SeedAttempt(t, ctx, tx, final.ID, learner.ID, 80, true)

	open := &types.Attempt{QuizID: final.ID, UserID: learner.ID}
	if _, err := attempts.Create(dbc, []*types.Attempt{open}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := attempts.CountSubmitted(dbc, final.ID, learner.ID)
	if err != nil || n != 3 {
		t.Fatalf("CountSubmitted: err=%v want=3 got=%d", err, n)
	}
	gotOpen, err := attempts.GetOpen(dbc, final.ID, learner.ID)
	if err != nil || gotOpen == nil || gotOpen.ID != open.ID {
		t.Fatalf("GetOpen: err=%v got=%+v", err, gotOpen)
	}
	best, err := attempts.BestPassing(dbc, final.ID, learner.ID)
	if err != nil || best == nil || best.ScorePercent != 100 {
		t.Fatalf("BestPassing: err=%v got=%+v", err, best)
	}

	now := time.Now().UTC()
	if err := attempts.UpdateFields(dbc, open.ID, map[string]interface{}{"submitted_at": now, "score_percent": 0}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	locked, err := attempts.LockByID(dbc, open.ID)
	if err != nil || locked == nil || !locked.Submitted() {
		t.Fatalf("LockByID: err=%v got=%+v", err, locked)
	}
	if none, err := attempts.GetOpen(dbc, final.ID, learner.ID); err != nil || none != nil {
		t.Fatalf("GetOpen after submit: err=%v got=%+v", err, none)
	}
}

func TestQuestionAndChoiceRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)

	inst := testutil.SeedInstructor(t, ctx, tx, "question-inst@example.com")
	course := testutil.SeedCourse(t, ctx, tx, inst.ID, types.CourseStatusPublished)
	quiz, correct, _ := testutil.SeedFinalQuiz(t, ctx, tx, course.ID, 3)

	questions, err := NewQuestionRepo(db, log).ListByQuiz(dbc, quiz.ID)
	if err != nil || len(questions) != 3 || questions[0].Prompt != "Q1" {
		t.Fatalf("ListByQuiz: err=%v rows=%+v", err, questions)
	}
	qids := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		qids = append(qids, q.ID)
	}
	choices, err := NewChoiceRepo(db, log).ListByQuestionIDs(dbc, qids)
	if err != nil || len(choices) != 6 {
		t.Fatalf("ListByQuestionIDs: err=%v len=%d", err, len(choices))
	}
	right := 0
	for _, c := range choices {
		if c.IsCorrect {
			right++
			if correct[c.QuestionID] != c.ID {
				t.Fatalf("correct choice mismatch for question %s", c.QuestionID)
			}
		}
	}
	if right != 3 {
		t.Fatalf("correct choices: want=3 got=%d", right)
	}
}
