package aggregates_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/organization"
)

func TestInviteRotatesPendingInvitation(t *testing.T) {
	h := newHarness(t)
	company := testutil.SeedCompany(t, h.ctx, h.db, "Wave Senegal")
	admin := testutil.SeedUser(t, h.ctx, h.db, "admin@wave.test")
	agg := h.invitationAgg()

	first, err := agg.Invite(h.ctx, domainagg.InviteMemberInput{CompanyID: company.ID, Email: "Khady@Wave.test", InvitedByID: admin.ID})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if first.Rotated || first.Invitation.Email != "khady@wave.test" {
		t.Fatalf("invite: want fresh row for khady@wave.test got rotated=%v email=%q", first.Rotated, first.Invitation.Email)
	}
	oldToken := first.Invitation.Token

	again, err := agg.Invite(h.ctx, domainagg.InviteMemberInput{CompanyID: company.ID, Email: "khady@wave.test", InvitedByID: admin.ID})
	if err != nil {
		t.Fatalf("re-invite: %v", err)
	}
	if !again.Rotated || again.Invitation.ID != first.Invitation.ID || again.Invitation.Token == oldToken {
		t.Fatalf("re-invite: want rotated token on same row got %+v", again)
	}
	if n := h.count(t, &organization.CompanyInvitation{}, "company_id = ?", company.ID); n != 1 {
		t.Fatalf("invitation rows: want=1 got=%d", n)
	}

	_, err = agg.Accept(h.ctx, domainagg.AcceptInvitationInput{Token: oldToken, UserID: admin.ID})
	wantCode(t, "accept with rotated token", err, domainagg.CodeNotFound)
}

func TestInviteRejectsExistingMember(t *testing.T) {
	h := newHarness(t)
	company := testutil.SeedCompany(t, h.ctx, h.db, "Jumia "+uuid.NewString()[:6])
	u := testutil.SeedUser(t, h.ctx, h.db, "member@jumia.test")
	testutil.SeedMember(t, h.ctx, h.db, company.ID, u.ID, organization.MemberEmployee)

	_, err := h.invitationAgg().Invite(h.ctx, domainagg.InviteMemberInput{CompanyID: company.ID, Email: "member@jumia.test"})
	wantCode(t, "invite member", err, domainagg.CodeConflict)

	_, err = h.invitationAgg().Invite(h.ctx, domainagg.InviteMemberInput{CompanyID: uuid.New(), Email: "x@jumia.test"})
	wantCode(t, "invite unknown company", err, domainagg.CodeNotFound)

	_, err = h.invitationAgg().Invite(h.ctx, domainagg.InviteMemberInput{CompanyID: company.ID, Email: "not-an-email"})
	wantCode(t, "invite bad email", err, domainagg.CodeValidation)
}

func TestAcceptInvitationJoinsOnce(t *testing.T) {
	h := newHarness(t)
	company := testutil.SeedCompany(t, h.ctx, h.db, "Free "+uuid.NewString()[:6])
	invitee := testutil.SeedUser(t, h.ctx, h.db, "ibrahima@free.test")
	stranger := testutil.SeedUser(t, h.ctx, h.db, "stranger@free.test")
	agg := h.invitationAgg()

	inv, err := agg.Invite(h.ctx, domainagg.InviteMemberInput{CompanyID: company.ID, Email: "ibrahima@free.test"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	token := inv.Invitation.Token

	_, err = agg.Accept(h.ctx, domainagg.AcceptInvitationInput{Token: token, UserID: stranger.ID})
	wantCode(t, "accept by another user", err, domainagg.CodeForbidden)

	res, err := agg.Accept(h.ctx, domainagg.AcceptInvitationInput{Token: token, UserID: invitee.ID})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !res.Joined || res.Member == nil || res.Member.Role != organization.MemberEmployee || res.Invitation.AcceptedAt == nil {
		t.Fatalf("accept: want joined employee got %+v", res)
	}

	replay, err := agg.Accept(h.ctx, domainagg.AcceptInvitationInput{Token: token, UserID: invitee.ID})
	if err != nil {
		t.Fatalf("accept replay: %v", err)
	}
	if replay.Joined || replay.Member.ID != res.Member.ID {
		t.Fatalf("accept replay: want same member without join got %+v", replay)
	}
	if n := h.count(t, &organization.CompanyMember{}, "company_id = ? AND user_id = ?", company.ID, invitee.ID); n != 1 {
		t.Fatalf("member rows: want=1 got=%d", n)
	}

	_, err = agg.Invite(h.ctx, domainagg.InviteMemberInput{CompanyID: company.ID, Email: "ibrahima@free.test"})
	wantCode(t, "re-invite after accept", err, domainagg.CodeConflict)
}

func TestAcceptExpiredInvitation(t *testing.T) {
	h := newHarness(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	h.base.Now = func() time.Time { return now }
	company := testutil.SeedCompany(t, h.ctx, h.db, "Expresso "+uuid.NewString()[:6])
	invitee := testutil.SeedUser(t, h.ctx, h.db, "late@expresso.test")

	inv, err := h.invitationAgg().Invite(h.ctx, domainagg.InviteMemberInput{CompanyID: company.ID, Email: "late@expresso.test", TTL: time.Hour})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	now = now.Add(2 * time.Hour)
	_, err = h.invitationAgg().Accept(h.ctx, domainagg.AcceptInvitationInput{Token: inv.Invitation.Token, UserID: invitee.ID})
	wantCode(t, "accept expired", err, domainagg.CodeNotAvailable)
	if n := h.count(t, &organization.CompanyMember{}, "company_id = ?", company.ID); n != 0 {
		t.Fatalf("member rows after expired accept: want=0 got=%d", n)
	}
}
