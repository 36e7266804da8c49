package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/coursemarket-backend/internal/domain/organization"
)

var InvitationAggregateContract = Contract{
	Name:             "InvitationAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "One invitation per (company, email). Accepting creates at most one EMPLOYEE membership and is idempotent for the invited user.",
}

type InviteMemberInput struct {
	CompanyID   uuid.UUID
	Email       string
	InvitedByID uuid.UUID
	// TTL defaults to organization.DefaultInvitationTTL.
	TTL time.Duration
}

type InviteMemberResult struct {
	Invitation *organization.CompanyInvitation
	// Rotated is true when a pending invitation got a fresh token and expiry.
	Rotated bool
}

type AcceptInvitationInput struct {
	Token  uuid.UUID
	UserID uuid.UUID
}

type AcceptInvitationResult struct {
	Invitation *organization.CompanyInvitation
	Member     *organization.CompanyMember
	// Joined is false when the user was already a member.
	Joined bool
}

type InvitationAggregate interface {
	Aggregate
	Invite(ctx context.Context, in InviteMemberInput) (InviteMemberResult, error)
	Accept(ctx context.Context, in AcceptInvitationInput) (AcceptInvitationResult, error)
}
