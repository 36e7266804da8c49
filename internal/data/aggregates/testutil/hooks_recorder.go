package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
)

// HooksRecorder keeps every aggregate hook call for assertions.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
	Retries    []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}

// Count returns how many operations named op finished with status.
// An empty status matches any outcome.
func (h *HooksRecorder) Count(op, status string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, ev := range h.Operations {
		if ev.Name == op && (status == "" || ev.Status == status) {
			n++
		}
	}
	return n
}

// Last returns the most recent operation, or false when none ran.
func (h *HooksRecorder) Last() (OperationEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.Operations) == 0 {
		return OperationEvent{}, false
	}
	return h.Operations[len(h.Operations)-1], true
}

func (h *HooksRecorder) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = nil
	h.Conflicts = nil
	h.Retries = nil
}
