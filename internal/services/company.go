package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type AssignCourseRequest struct {
	CompanyID *uuid.UUID  `json:"company_id"`
	CourseID  uuid.UUID   `json:"course_id" validate:"required"`
	UserIDs   []uuid.UUID `json:"user_ids" validate:"min=1,max=500"`
	DueDate   *time.Time  `json:"due_date"`
}

type MemberView struct {
	UserID   uuid.UUID        `json:"user_id"`
	Email    string           `json:"email"`
	FullName string           `json:"full_name"`
	Role     types.MemberRole `json:"role"`
	JoinedAt time.Time        `json:"joined_at"`
}

type SeatSummary struct {
	CompanyID  uuid.UUID               `json:"company_id"`
	SeatsTotal int                     `json:"seats_total"`
	SeatsUsed  int                     `json:"seats_used"`
	SeatsLeft  int                     `json:"seats_left"`
	Licenses   []*types.CompanyLicense `json:"licenses"`
}

type InviteRequest struct {
	CompanyID *uuid.UUID `json:"company_id"`
	Email     string     `json:"email" validate:"required,email,max=254"`
}

type CompanyService interface {
	AssignCourse(ctx context.Context, in AssignCourseRequest) (*domainagg.AssignCourseResult, error)
	ListMembers(ctx context.Context, companyID *uuid.UUID) ([]MemberView, error)
	SeatSummary(ctx context.Context, companyID *uuid.UUID) (*SeatSummary, error)
	Invite(ctx context.Context, in InviteRequest) (*domainagg.InviteMemberResult, error)
	PendingInvitations(ctx context.Context, companyID *uuid.UUID) ([]*types.CompanyInvitation, error)
	// AcceptInvitation joins the caller to the inviting company.
	AcceptInvitation(ctx context.Context, token uuid.UUID) (*domainagg.AcceptInvitationResult, error)
}

type companyService struct {
	log      *logger.Logger
	users    repos.UserRepo
	members  repos.CompanyMemberRepo
	licenses repos.CompanyLicenseRepo
	invites  repos.CompanyInvitationRepo
	agg      domainagg.SeatAggregate
	inviteAg domainagg.InvitationAggregate
	now      func() time.Time
}

func NewCompanyService(
	log *logger.Logger,
	users repos.UserRepo,
	members repos.CompanyMemberRepo,
	licenses repos.CompanyLicenseRepo,
	invites repos.CompanyInvitationRepo,
	agg domainagg.SeatAggregate,
	inviteAg domainagg.InvitationAggregate,
) CompanyService {
	return &companyService{
		log:      log.With("service", "CompanyService"),
		users:    users,
		members:  members,
		licenses: licenses,
		invites:  invites,
		agg:      agg,
		inviteAg: inviteAg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// isCompanyAdmin is true for superadmins and for ADMIN members of companyID.
func isCompanyAdmin(dbc dbctx.Context, members repos.CompanyMemberRepo, rd *ctxutil.RequestData, companyID uuid.UUID) (bool, error) {
	if isSuperAdmin(rd) {
		return true, nil
	}
	m, err := members.GetByCompanyAndUser(dbc, companyID, rd.UserID)
	if err != nil {
		return false, err
	}
	return m != nil && m.Role == types.MemberAdmin, nil
}

// adminCompany resolves the company the caller acts for. An explicit id must
// be administered by the caller; otherwise the caller's single ADMIN
// membership is used.
func (s *companyService) adminCompany(ctx context.Context, op string, companyID *uuid.UUID) (*ctxutil.RequestData, uuid.UUID, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, uuid.Nil, err
	}
	dbc := dbctx.New(ctx)
	if companyID != nil && *companyID != uuid.Nil {
		ok, err := isCompanyAdmin(dbc, s.members, rd, *companyID)
		if err != nil {
			return nil, uuid.Nil, aggregates.MapError(op, err)
		}
		if !ok {
			return nil, uuid.Nil, domainagg.Forbidden(op, "not an admin of this company")
		}
		return rd, *companyID, nil
	}
	memberships, err := s.members.ListByUser(dbc, rd.UserID)
	if err != nil {
		return nil, uuid.Nil, aggregates.MapError(op, err)
	}
	var found []uuid.UUID
	for _, m := range memberships {
		if m.Role == types.MemberAdmin {
			found = append(found, m.CompanyID)
		}
	}
	switch len(found) {
	case 0:
		return nil, uuid.Nil, domainagg.Forbidden(op, "not a company admin")
	case 1:
		return rd, found[0], nil
	default:
		return nil, uuid.Nil, domainagg.Invalid(op, "company_id is required for admins of several companies")
	}
}

func (s *companyService) AssignCourse(ctx context.Context, in AssignCourseRequest) (*domainagg.AssignCourseResult, error) {
	const op = "Company.AssignCourse"
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	rd, companyID, err := s.adminCompany(ctx, op, in.CompanyID)
	if err != nil {
		return nil, err
	}
	res, err := s.agg.AssignCourse(ctx, domainagg.AssignCourseInput{
		CompanyID:    companyID,
		CourseID:     in.CourseID,
		AssignedByID: rd.UserID,
		UserIDs:      in.UserIDs,
		DueDate:      in.DueDate,
	})
	if err != nil {
		return nil, err
	}
	observability.Current().AddSeatsConsumed(res.SeatsConsumed)
	for i := 0; i < res.EnrollmentsCreated; i++ {
		observability.Current().IncEnrollmentCreated(string(types.SourceCompany))
	}
	s.log.Info("Course assigned",
		"company_id", companyID,
		"course_id", in.CourseID,
		"enrollments", res.EnrollmentsCreated,
		"already_enrolled", res.AlreadyEnrolled,
		"seats", res.SeatsConsumed,
	)
	return &res, nil
}

func (s *companyService) ListMembers(ctx context.Context, companyID *uuid.UUID) ([]MemberView, error) {
	const op = "Company.ListMembers"
	_, id, err := s.adminCompany(ctx, op, companyID)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	members, err := s.members.ListByCompany(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	users, err := s.users.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load member users: %w", err)
	}
	byID := make(map[uuid.UUID]*types.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]MemberView, 0, len(members))
	for _, m := range members {
		v := MemberView{UserID: m.UserID, Role: m.Role, JoinedAt: m.JoinedAt}
		if u := byID[m.UserID]; u != nil {
			v.Email = u.Email
			v.FullName = u.FullName
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *companyService) SeatSummary(ctx context.Context, companyID *uuid.UUID) (*SeatSummary, error) {
	const op = "Company.SeatSummary"
	_, id, err := s.adminCompany(ctx, op, companyID)
	if err != nil {
		return nil, err
	}
	licenses, err := s.licenses.ListByCompany(dbctx.New(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	out := &SeatSummary{CompanyID: id, Licenses: licenses}
	now := s.now()
	for _, l := range licenses {
		out.SeatsTotal += l.SeatsTotal
		out.SeatsUsed += l.SeatsUsed
		if l.Usable(now) {
			out.SeatsLeft += l.SeatsLeft()
		}
	}
	return out, nil
}

func (s *companyService) Invite(ctx context.Context, in InviteRequest) (*domainagg.InviteMemberResult, error) {
	const op = "Company.Invite"
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	rd, companyID, err := s.adminCompany(ctx, op, in.CompanyID)
	if err != nil {
		return nil, err
	}
	res, err := s.inviteAg.Invite(ctx, domainagg.InviteMemberInput{
		CompanyID:   companyID,
		Email:       in.Email,
		InvitedByID: rd.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Member invited",
		"company_id", companyID,
		"invitation_id", res.Invitation.ID,
		"rotated", res.Rotated,
	)
	return &res, nil
}

func (s *companyService) PendingInvitations(ctx context.Context, companyID *uuid.UUID) ([]*types.CompanyInvitation, error) {
	const op = "Company.PendingInvitations"
	_, id, err := s.adminCompany(ctx, op, companyID)
	if err != nil {
		return nil, err
	}
	out, err := s.invites.ListPendingByCompany(dbctx.New(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return out, nil
}

func (s *companyService) AcceptInvitation(ctx context.Context, token uuid.UUID) (*domainagg.AcceptInvitationResult, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.inviteAg.Accept(ctx, domainagg.AcceptInvitationInput{Token: token, UserID: rd.UserID})
	if err != nil {
		return nil, err
	}
	if res.Joined {
		s.log.Info("Invitation accepted", "company_id", res.Member.CompanyID, "user_id", rd.UserID)
	}
	return &res, nil
}
