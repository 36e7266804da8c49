package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
)

func TestCompanyAssignCourseConsumesSeats(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	course := testutil.SeedCourse(t, h.ctx, h.db, author.ID, types.CourseStatusPublished)
	company := testutil.SeedCompany(t, h.ctx, h.db, "Acme")
	admin := h.learner(t, "admin@acme.test")
	testutil.SeedMember(t, h.ctx, h.db, company.ID, admin.ID, types.MemberAdmin)
	license := testutil.SeedLicense(t, h.ctx, h.db, company.ID, 2)

	var staff []uuid.UUID
	for _, email := range []string{"a@acme.test", "b@acme.test", "c@acme.test"} {
		u := h.learner(t, email)
		testutil.SeedMember(t, h.ctx, h.db, company.ID, u.ID, types.MemberEmployee)
		staff = append(staff, u.ID)
	}
	testutil.SeedEnrollment(t, h.ctx, h.db, staff[0], course.ID)
	ctx := h.as(admin)

	res, err := h.company.AssignCourse(ctx, AssignCourseRequest{CourseID: course.ID, UserIDs: staff[:2]})
	if err != nil {
		t.Fatalf("AssignCourse: %v", err)
	}
	if res.EnrollmentsCreated != 1 || res.AlreadyEnrolled != 1 || res.SeatsConsumed != 1 {
		t.Fatalf("AssignCourse: got=%+v", res)
	}

	// Two new targets with one seat left: nothing is written.
	extra := h.learner(t, "d@acme.test")
	testutil.SeedMember(t, h.ctx, h.db, company.ID, extra.ID, types.MemberEmployee)
	_, err = h.company.AssignCourse(ctx, AssignCourseRequest{CourseID: course.ID, UserIDs: []uuid.UUID{staff[2], extra.ID}})
	wantCode(t, "seats exhausted", err, domainagg.CodeForbidden)
	if n := h.count(t, &types.Enrollment{}, "user_id IN ?", []uuid.UUID{staff[2], extra.ID}); n != 0 {
		t.Fatalf("enrollments after rollback: want=0 got=%d", n)
	}
	var reloaded types.CompanyLicense
	if err := h.db.First(&reloaded, "id = ?", license.ID).Error; err != nil {
		t.Fatalf("load license: %v", err)
	}
	if reloaded.SeatsUsed != 1 {
		t.Fatalf("seats_used: want=1 got=%d", reloaded.SeatsUsed)
	}

	e, err := h.enrollments.GetByUserAndCourse(dbcFor(h), staff[1], course.ID)
	if err != nil || e == nil || e.Source != types.SourceCompany || e.CompanyID == nil || *e.CompanyID != company.ID {
		t.Fatalf("company enrollment: got=%+v err=%v", e, err)
	}
}

func TestCompanyAdminChecks(t *testing.T) {
	h := newHarness(t)
	author := h.instructor(t, "author@example.com")
	course := testutil.SeedCourse(t, h.ctx, h.db, author.ID, types.CourseStatusPublished)
	company := testutil.SeedCompany(t, h.ctx, h.db, "Acme")
	admin := h.learner(t, "admin@acme.test")
	testutil.SeedMember(t, h.ctx, h.db, company.ID, admin.ID, types.MemberAdmin)
	employee := h.learner(t, "e@acme.test")
	testutil.SeedMember(t, h.ctx, h.db, company.ID, employee.ID, types.MemberEmployee)
	outsider := h.learner(t, "x@other.test")
	testutil.SeedLicense(t, h.ctx, h.db, company.ID, 5)

	_, err := h.company.AssignCourse(h.as(employee), AssignCourseRequest{CourseID: course.ID, UserIDs: []uuid.UUID{employee.ID}})
	wantCode(t, "employee assigns", err, domainagg.CodeForbidden)
	_, err = h.company.AssignCourse(h.as(outsider), AssignCourseRequest{CompanyID: &company.ID, CourseID: course.ID, UserIDs: []uuid.UUID{employee.ID}})
	wantCode(t, "outsider assigns", err, domainagg.CodeForbidden)
	_, err = h.company.AssignCourse(h.as(admin), AssignCourseRequest{CourseID: course.ID, UserIDs: []uuid.UUID{outsider.ID}})
	wantCode(t, "non-member target", err, domainagg.CodeValidation)
	_, err = h.company.AssignCourse(h.as(admin), AssignCourseRequest{CourseID: course.ID})
	wantCode(t, "no targets", err, domainagg.CodeValidation)

	members, err := h.company.ListMembers(h.as(admin), &company.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("ListMembers: want=2 got=%d", len(members))
	}
	for _, m := range members {
		if m.Email == "" {
			t.Fatalf("member without email: %+v", m)
		}
	}
	_, err = h.company.ListMembers(h.as(employee), nil)
	wantCode(t, "employee lists", err, domainagg.CodeForbidden)
}

func TestCompanyInvitationFlow(t *testing.T) {
	h := newHarness(t)
	company := testutil.SeedCompany(t, h.ctx, h.db, "Kaymu")
	admin := h.learner(t, "admin@kaymu.test")
	testutil.SeedMember(t, h.ctx, h.db, company.ID, admin.ID, types.MemberAdmin)
	employee := h.learner(t, "ndeye@kaymu.test")

	_, err := h.company.Invite(h.as(employee), InviteRequest{Email: "x@kaymu.test"})
	wantCode(t, "invite by non-admin", err, domainagg.CodeForbidden)
	_, err = h.company.Invite(h.as(admin), InviteRequest{Email: "not-an-email"})
	wantCode(t, "invite bad email", err, domainagg.CodeValidation)

	inv, err := h.company.Invite(h.as(admin), InviteRequest{Email: "Ndeye@Kaymu.test"})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	pending, err := h.company.PendingInvitations(h.as(admin), nil)
	if err != nil || len(pending) != 1 || pending[0].ID != inv.Invitation.ID {
		t.Fatalf("PendingInvitations: err=%v got=%d", err, len(pending))
	}

	res, err := h.company.AcceptInvitation(h.as(employee), inv.Invitation.Token)
	if err != nil {
		t.Fatalf("AcceptInvitation: %v", err)
	}
	if !res.Joined || res.Member.CompanyID != company.ID {
		t.Fatalf("AcceptInvitation: got=%+v", res)
	}
	members, err := h.company.ListMembers(h.as(admin), &company.ID)
	if err != nil || len(members) != 2 {
		t.Fatalf("ListMembers: err=%v want=2 got=%d", err, len(members))
	}
	pending, err = h.company.PendingInvitations(h.as(admin), &company.ID)
	if err != nil || len(pending) != 0 {
		t.Fatalf("PendingInvitations after accept: err=%v got=%d", err, len(pending))
	}

	_, err = h.company.AcceptInvitation(h.as(admin), uuid.New())
	wantCode(t, "unknown token", err, domainagg.CodeNotFound)
}
