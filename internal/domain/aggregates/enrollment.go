package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/coursemarket-backend/internal/domain/catalog"
	"github.com/yungbote/coursemarket-backend/internal/domain/enrollment"
)

var EnrollmentAggregateContract = Contract{
	Name:             "EnrollmentAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "At most one enrollment per (user, course); the current lesson pointer stays inside the enrolled course; COMPLETED is entered once.",
}

type EnrollInput struct {
	UserID    uuid.UUID
	CourseID  uuid.UUID
	Source    enrollment.Source
	CompanyID *uuid.UUID
	// AllowUnpublished skips the availability check for internal fan-out
	// (settlement of an already-priced order, company seat assignment).
	AllowUnpublished bool
}

type EnrollResult struct {
	Enrollment *enrollment.Enrollment
	Created    bool
}

type SetCurrentLessonInput struct {
	EnrollmentID uuid.UUID
	LessonID     uuid.UUID
}

type SetCurrentLessonResult struct {
	Enrollment *enrollment.Enrollment
}

type AdvanceInput struct {
	EnrollmentID uuid.UUID
}

type AdvanceResult struct {
	Enrollment *enrollment.Enrollment
	Lesson     *catalog.Lesson
	// CompletedNow is true only for the call that moved the enrollment to COMPLETED.
	CompletedNow bool
}

type CancelInput struct {
	EnrollmentID uuid.UUID
}

type CancelResult struct {
	Enrollment *enrollment.Enrollment
	Changed    bool
}

type EnrollmentAggregate interface {
	Aggregate
	Enroll(ctx context.Context, in EnrollInput) (EnrollResult, error)
	SetCurrentLesson(ctx context.Context, in SetCurrentLessonInput) (SetCurrentLessonResult, error)
	AdvanceToNextUncompleted(ctx context.Context, in AdvanceInput) (AdvanceResult, error)
	Cancel(ctx context.Context, in CancelInput) (CancelResult, error)
}
