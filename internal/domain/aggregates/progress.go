package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/coursemarket-backend/internal/domain/enrollment"
)

var ProgressAggregateContract = Contract{
	Name:             "ProgressAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "One progress row per (enrollment, lesson); backfill tolerates concurrent inserts; completed implies 100 percent.",
}

type EnsureProgressRowsInput struct {
	EnrollmentID uuid.UUID
}

type EnsureProgressRowsResult struct {
	Created      int
	TotalLessons int
}

// UpdateProgressInput fields are optional; nil means "leave unchanged".
type UpdateProgressInput struct {
	EnrollmentID    uuid.UUID
	LessonID        uuid.UUID
	Percent         *int
	LastPositionSec *int
	MarkCompleted   bool
}

type UpdateProgressResult struct {
	Progress *enrollment.LessonProgress
	Summary  enrollment.Summary
}

type ProgressAggregate interface {
	Aggregate
	EnsureProgressRows(ctx context.Context, in EnsureProgressRowsInput) (EnsureProgressRowsResult, error)
	UpdateProgress(ctx context.Context, in UpdateProgressInput) (UpdateProgressResult, error)
}
