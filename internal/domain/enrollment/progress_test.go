package enrollment

import "testing"

func TestClampPercent(t *testing.T) {
	cases := []struct{ in, want int }{{-5, 0}, {0, 0}, {42, 42}, {100, 100}, {150, 100}}
	for _, c := range cases {
		if got := ClampPercent(c.in); got != c.want {
			t.Fatalf("ClampPercent(%d): want=%d got=%d", c.in, c.want, got)
		}
	}
}

func TestClampPositionAllowsSeekBack(t *testing.T) {
	if got := ClampPosition(-3); got != 0 {
		t.Fatalf("negative position: got=%d", got)
	}
	if got := ClampPosition(12); got != 12 {
		t.Fatalf("position: got=%d", got)
	}
}

func TestSummarizeRoundedMeanOverAllLessons(t *testing.T) {
	rows := []*LessonProgress{
		{ProgressPercent: 0},
		{ProgressPercent: 100, Completed: true},
		{ProgressPercent: 0},
	}
	got := Summarize(3, rows)
	if got.ProgressPercent != 33 || got.CompletedLessons != 1 || got.TotalLessons != 3 {
		t.Fatalf("summary: %+v", got)
	}

	// A lesson at 100% that was not marked completed counts toward the mean only.
	got = Summarize(2, []*LessonProgress{{ProgressPercent: 100}, {ProgressPercent: 50}})
	if got.ProgressPercent != 75 || got.CompletedLessons != 0 {
		t.Fatalf("summary without completion: %+v", got)
	}

	// Missing rows count as zero.
	got = Summarize(4, []*LessonProgress{{ProgressPercent: 100, Completed: true}})
	if got.ProgressPercent != 25 {
		t.Fatalf("missing rows: %+v", got)
	}
}

func TestSummarizeNoLessons(t *testing.T) {
	got := Summarize(0, nil)
	if got.ProgressPercent != 0 || got.TotalLessons != 0 {
		t.Fatalf("empty: %+v", got)
	}
}
