package aggregates

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/organization"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

type InvitationAggregateDeps struct {
	Base BaseDeps

	Companies   repos.CompanyRepo
	Members     repos.CompanyMemberRepo
	Invitations repos.CompanyInvitationRepo
	Users       repos.UserRepo
}

type invitationAggregate struct {
	deps InvitationAggregateDeps
}

func NewInvitationAggregate(deps InvitationAggregateDeps) domainagg.InvitationAggregate {
	deps.Base = deps.Base.withDefaults()
	return &invitationAggregate{deps: deps}
}

func (a *invitationAggregate) Contract() domainagg.Contract {
	return domainagg.InvitationAggregateContract
}

func (a *invitationAggregate) Invite(ctx context.Context, in domainagg.InviteMemberInput) (domainagg.InviteMemberResult, error) {
	const op = "Company.Invite"
	var out domainagg.InviteMemberResult
	email := organization.NormalizeEmail(in.Email)
	if in.CompanyID == uuid.Nil || !strings.Contains(email, "@") {
		return out, domainagg.Invalid(op, "company_id and a valid email are required")
	}
	ttl := in.TTL
	if ttl <= 0 {
		ttl = organization.DefaultInvitationTTL
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		company, err := a.deps.Companies.GetByID(dbc, in.CompanyID)
		if err != nil {
			return err
		}
		if company == nil {
			return domainagg.NotFound(op, "company not found")
		}
		existing, err := a.deps.Users.GetByEmail(dbc, email)
		if err != nil {
			return err
		}
		if existing != nil {
			m, err := a.deps.Members.GetByCompanyAndUser(dbc, company.ID, existing.ID)
			if err != nil {
				return err
			}
			if m != nil {
				return domainagg.NewError(domainagg.CodeConflict, op, "user is already a member", nil)
			}
		}

		expires := a.deps.Base.Now().Add(ttl)
		var invitedBy *uuid.UUID
		if in.InvitedByID != uuid.Nil {
			by := in.InvitedByID
			invitedBy = &by
		}
		inv, created, err := getOrCreate(dbc,
			func(dbc dbctx.Context) (*organization.CompanyInvitation, error) {
				return a.deps.Invitations.LockByCompanyAndEmail(dbc, company.ID, email)
			},
			func(dbc dbctx.Context) (*organization.CompanyInvitation, error) {
				row := &organization.CompanyInvitation{
					CompanyID:   company.ID,
					Email:       email,
					InvitedByID: invitedBy,
					ExpiresAt:   expires,
				}
				if _, err := a.deps.Invitations.Create(dbc, []*organization.CompanyInvitation{row}); err != nil {
					return nil, err
				}
				return row, nil
			},
		)
		if err != nil {
			return err
		}
		if !created {
			if inv.Accepted() {
				return domainagg.NewError(domainagg.CodeConflict, op, "invitation already accepted", nil)
			}
			inv.Token = uuid.New()
			inv.ExpiresAt = expires
			inv.InvitedByID = invitedBy
			if err := a.deps.Invitations.UpdateFields(dbc, inv.ID, map[string]interface{}{
				"token":         inv.Token,
				"expires_at":    inv.ExpiresAt,
				"invited_by_id": inv.InvitedByID,
			}); err != nil {
				return err
			}
			out.Rotated = true
		}
		out.Invitation = inv
		return nil
	})
	if err != nil {
		return domainagg.InviteMemberResult{}, err
	}
	return out, nil
}

// Accept joins the invited user to the company. The caller's account email
// must be the invited address.
func (a *invitationAggregate) Accept(ctx context.Context, in domainagg.AcceptInvitationInput) (domainagg.AcceptInvitationResult, error) {
	const op = "Company.AcceptInvitation"
	var out domainagg.AcceptInvitationResult
	if in.Token == uuid.Nil || in.UserID == uuid.Nil {
		return out, domainagg.Invalid(op, "token and user_id are required")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		inv, err := a.deps.Invitations.LockByToken(dbc, in.Token)
		if err != nil {
			return err
		}
		if inv == nil {
			return domainagg.NotFound(op, "invitation not found")
		}
		u, err := a.deps.Users.GetByID(dbc, in.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return domainagg.NotFound(op, "user not found")
		}
		if organization.NormalizeEmail(u.Email) != inv.Email {
			return domainagg.Forbidden(op, "invitation was sent to another email")
		}
		out.Invitation = inv

		if !inv.Accepted() && inv.Expired(a.deps.Base.Now()) {
			return domainagg.NotAvailable(op, "invitation has expired")
		}

		member, created, err := getOrCreate(dbc,
			func(dbc dbctx.Context) (*organization.CompanyMember, error) {
				return a.deps.Members.GetByCompanyAndUser(dbc, inv.CompanyID, u.ID)
			},
			func(dbc dbctx.Context) (*organization.CompanyMember, error) {
				row := &organization.CompanyMember{CompanyID: inv.CompanyID, UserID: u.ID, Role: organization.MemberEmployee}
				if _, err := a.deps.Members.Create(dbc, []*organization.CompanyMember{row}); err != nil {
					return nil, err
				}
				return row, nil
			},
		)
		if err != nil {
			return err
		}
		out.Member = member
		out.Joined = created

		if !inv.Accepted() {
			now := a.deps.Base.Now()
			if err := a.deps.Invitations.UpdateFields(dbc, inv.ID, map[string]interface{}{"accepted_at": now}); err != nil {
				return err
			}
			inv.AcceptedAt = &now
		}
		return nil
	})
	if err != nil {
		return domainagg.AcceptInvitationResult{}, err
	}
	return out, nil
}
