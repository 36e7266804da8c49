package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/coursemarket-backend/internal/domain/organization"
)

var SeatAggregateContract = Contract{
	Name:             "SeatAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Seats are consumed only for newly created company enrollments; seats_used never exceeds seats_total.",
}

type AssignCourseInput struct {
	CompanyID    uuid.UUID
	CourseID     uuid.UUID
	AssignedByID uuid.UUID
	UserIDs      []uuid.UUID
	DueDate      *time.Time
}

type AssignCourseResult struct {
	Assignment         *organization.CompanyAssignment
	EnrollmentsCreated int
	AlreadyEnrolled    int
	SeatsConsumed      int
}

type SeatAggregate interface {
	Aggregate
	AssignCourse(ctx context.Context, in AssignCourseInput) (AssignCourseResult, error)
}
