package aggregates

import (
	"strings"
	"time"
	"unicode"

	"github.com/yungbote/coursemarket-backend/internal/observability"
)

// Hooks receives one ObserveOperation per executeWrite plus conflict and
// retry signals keyed by the same operation name.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type metricsHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks reports aggregate writes to Prometheus under
// snake_case operation labels ("Enrollment.Enroll" becomes "enrollment.enroll").
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{metrics: metrics}
}

func (h metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(operationLabel(name), strings.TrimSpace(status), dur)
}

func (h metricsHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(operationLabel(name))
}

func (h metricsHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetry(operationLabel(name))
}

func operationLabel(op string) string {
	op = strings.TrimSpace(op)
	if op == "" {
		return "unknown"
	}
	var b strings.Builder
	b.Grow(len(op) + 8)
	prevLower := false
	for _, r := range op {
		switch {
		case r == '.':
			b.WriteByte('.')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevLower = true
		default:
			b.WriteByte('_')
			prevLower = false
		}
	}
	return b.String()
}
