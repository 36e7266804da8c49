package aggregates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/enrollment"
	"github.com/yungbote/coursemarket-backend/internal/domain/organization"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

type SeatAggregateDeps struct {
	Base BaseDeps

	Companies   repos.CompanyRepo
	Members     repos.CompanyMemberRepo
	Licenses    repos.CompanyLicenseRepo
	Assignments repos.CompanyAssignmentRepo
	Courses     repos.CourseRepo
	Enrollments repos.EnrollmentRepo
}

type seatAggregate struct {
	deps SeatAggregateDeps
}

func NewSeatAggregate(deps SeatAggregateDeps) domainagg.SeatAggregate {
	deps.Base = deps.Base.withDefaults()
	return &seatAggregate{deps: deps}
}

func (a *seatAggregate) Contract() domainagg.Contract {
	return domainagg.SeatAggregateContract
}

func (a *seatAggregate) AssignCourse(ctx context.Context, in domainagg.AssignCourseInput) (domainagg.AssignCourseResult, error) {
	const op = "Company.AssignCourse"
	var out domainagg.AssignCourseResult
	if in.CompanyID == uuid.Nil || in.CourseID == uuid.Nil {
		return out, domainagg.Invalid(op, "company_id and course_id are required")
	}
	targets := uniqueIDs(in.UserIDs)
	if len(targets) == 0 {
		return out, domainagg.Invalid(op, "no users to assign")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		company, err := a.deps.Companies.GetByID(dbc, in.CompanyID)
		if err != nil {
			return err
		}
		if company == nil {
			return domainagg.NotFound(op, fmt.Sprintf("company not found: %s", in.CompanyID))
		}
		course, err := a.deps.Courses.GetByID(dbc, in.CourseID)
		if err != nil {
			return err
		}
		if course == nil {
			return domainagg.NotFound(op, fmt.Sprintf("course not found: %s", in.CourseID))
		}
		companyID := company.ID
		if !courseOpenTo(course, enrollment.SourceCompany, &companyID) {
			return domainagg.NotAvailable(op, "course is not available to this company")
		}

		members, err := a.deps.Members.MemberUserIDs(dbc, companyID, targets)
		if err != nil {
			return err
		}
		if len(members) != len(targets) {
			return domainagg.Invalid(op, "every assigned user must be a company member")
		}

		assignment := &organization.CompanyAssignment{
			CompanyID: companyID,
			CourseID:  course.ID,
			DueDate:   in.DueDate,
		}
		if in.AssignedByID != uuid.Nil {
			by := in.AssignedByID
			assignment.AssignedByID = &by
		}
		if _, err := a.deps.Assignments.Create(dbc, []*organization.CompanyAssignment{assignment}); err != nil {
			return err
		}
		if err := a.deps.Assignments.AddTargets(dbc, assignment.ID, targets); err != nil {
			return err
		}
		out.Assignment = assignment

		licenses, err := a.deps.Licenses.LockByCompany(dbc, companyID)
		if err != nil {
			return err
		}
		now := a.deps.Base.Now()
		for _, userID := range targets {
			_, created, err := enrollInTx(dbc, a.deps.Enrollments, userID, course.ID, enrollment.SourceCompany, &companyID)
			if err != nil {
				return err
			}
			if !created {
				out.AlreadyEnrolled++
				continue
			}
			out.EnrollmentsCreated++
			consumed, err := a.consumeSeat(dbc, licenses, now)
			if err != nil {
				return err
			}
			if !consumed {
				return domainagg.Forbidden(op, "no seats available")
			}
			out.SeatsConsumed++
		}
		return nil
	})
	if err != nil {
		return domainagg.AssignCourseResult{}, err
	}
	return out, nil
}

// consumeSeat takes one seat from the oldest usable license.
func (a *seatAggregate) consumeSeat(dbc dbctx.Context, licenses []*organization.CompanyLicense, now time.Time) (bool, error) {
	for _, l := range licenses {
		if !l.Usable(now) {
			continue
		}
		ok, err := a.deps.Licenses.ConsumeSeats(dbc, l.ID, 1)
		if err != nil {
			return false, err
		}
		if ok {
			l.SeatsUsed++
			return true, nil
		}
	}
	return false, nil
}

func uniqueIDs(in []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(in))
	out := make([]uuid.UUID, 0, len(in))
	for _, id := range in {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
