package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	repotestutil "github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	"github.com/yungbote/coursemarket-backend/internal/domain/catalog"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

func TestFaultyRunnerFailAfterBodyRollsBackWrites(t *testing.T) {
	db := repotestutil.DB(t)
	ctx := context.Background()
	instr := repotestutil.SeedInstructor(t, ctx, db, "faulty@example.com")
	course := repotestutil.SeedCourse(t, ctx, db, instr.ID, catalog.CourseStatusDraft)

	commitErr := errors.New("commit lost")
	r := &FaultyRunner{Next: aggregates.NewGormTxRunner(db), FailAfterBody: commitErr}
	err := r.InTx(ctx, func(dbc dbctx.Context) error {
		return dbc.Tx.Model(&catalog.Course{}).Where("id = ?", course.ID).Update("title", "renamed").Error
	})
	if !errors.Is(err, commitErr) {
		t.Fatalf("want=commit lost got=%v", err)
	}
	var got catalog.Course
	if err := db.First(&got, "id = ?", course.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Title == "renamed" {
		t.Fatalf("write survived a failed commit")
	}
	if begun, committed := r.Calls(); begun != 1 || committed != 0 {
		t.Fatalf("calls: want=1/0 got=%d/%d", begun, committed)
	}
}

func TestFaultyRunnerFailBeginSkipsBody(t *testing.T) {
	beginErr := errors.New("no connection")
	r := &FaultyRunner{FailBegin: beginErr}
	ran := false
	err := r.InTx(context.Background(), func(dbctx.Context) error {
		ran = true
		return nil
	})
	if !errors.Is(err, beginErr) || ran {
		t.Fatalf("want=begin error without body got err=%v ran=%v", err, ran)
	}
}

func TestFaultyRunnerCountsCommits(t *testing.T) {
	r := &FaultyRunner{}
	for i := 0; i < 2; i++ {
		if err := r.InTx(context.Background(), func(dbctx.Context) error { return nil }); err != nil {
			t.Fatalf("InTx: %v", err)
		}
	}
	if begun, committed := r.Calls(); begun != 2 || committed != 2 {
		t.Fatalf("calls: want=2/2 got=%d/%d", begun, committed)
	}
}
