package testutil

import (
	"sync"
	"testing"
	"time"
)

func TestHooksRecorderCountsByOperationAndStatus(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Enrollment.Enroll", "success", time.Millisecond)
	h.ObserveOperation("Enrollment.Enroll", "conflict", time.Millisecond)
	h.ObserveOperation("Progress.UpdateLessonProgress", "success", time.Millisecond)
	h.IncConflict("Enrollment.Enroll")

	if got := h.Count("Enrollment.Enroll", ""); got != 2 {
		t.Fatalf("enroll ops: want=2 got=%d", got)
	}
	if got := h.Count("Enrollment.Enroll", "conflict"); got != 1 {
		t.Fatalf("enroll conflicts: want=1 got=%d", got)
	}
	last, ok := h.Last()
	if !ok || last.Name != "Progress.UpdateLessonProgress" {
		t.Fatalf("last op: want=Progress.UpdateLessonProgress got=%+v ok=%v", last, ok)
	}

	h.Reset()
	if _, ok := h.Last(); ok || len(h.Conflicts) != 0 {
		t.Fatalf("reset left state: ops=%d conflicts=%d", len(h.Operations), len(h.Conflicts))
	}
}

func TestHooksRecorderIsSafeForConcurrentWriters(t *testing.T) {
	h := &HooksRecorder{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.ObserveOperation("Seats.Consume", "success", 0)
			h.IncRetry("Seats.Consume")
		}()
	}
	wg.Wait()
	if got := h.Count("Seats.Consume", "success"); got != 8 || len(h.Retries) != 8 {
		t.Fatalf("concurrent records: want=8/8 got=%d/%d", got, len(h.Retries))
	}
}
