package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/certification"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

type CertificateAggregateDeps struct {
	Base BaseDeps

	Enrollments  repos.EnrollmentRepo
	Quizzes      repos.QuizRepo
	Attempts     repos.AttemptRepo
	Templates    repos.CertificateTemplateRepo
	Certificates repos.IssuedCertificateRepo
}

type certificateAggregate struct {
	deps CertificateAggregateDeps
}

func NewCertificateAggregate(deps CertificateAggregateDeps) domainagg.CertificateAggregate {
	deps.Base = deps.Base.withDefaults()
	return &certificateAggregate{deps: deps}
}

func (a *certificateAggregate) Contract() domainagg.Contract {
	return domainagg.CertificateAggregateContract
}

func (a *certificateAggregate) IssueIfQualified(ctx context.Context, in domainagg.IssueCertificateInput) (domainagg.IssueCertificateResult, error) {
	const op = "Certification.IssueIfQualified"
	var out domainagg.IssueCertificateResult
	if in.UserID == uuid.Nil || in.CourseID == uuid.Nil {
		return out, domainagg.Invalid(op, "user_id and course_id are required")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		e, err := a.deps.Enrollments.GetByUserAndCourse(dbc, in.UserID, in.CourseID)
		if err != nil {
			return err
		}
		if !e.Grants() {
			return domainagg.NotEnrolled(op, "user is not enrolled in course")
		}

		quiz, err := a.deps.Quizzes.GetFinalForCourse(dbc, in.CourseID)
		if err != nil {
			return err
		}
		if quiz == nil {
			return nil
		}
		best, err := a.deps.Attempts.BestPassing(dbc, quiz.ID, in.UserID)
		if err != nil {
			return err
		}
		if best == nil {
			return nil
		}
		out.Qualified = true

		cert, created, err := getOrCreate(dbc,
			func(d dbctx.Context) (*certification.IssuedCertificate, error) {
				return a.deps.Certificates.GetByUserAndCourse(d, in.UserID, in.CourseID)
			},
			func(d dbctx.Context) (*certification.IssuedCertificate, error) {
				tpl, err := a.deps.Templates.GetDefault(d)
				if err != nil {
					return nil, err
				}
				row := &certification.IssuedCertificate{
					UserID:       in.UserID,
					CourseID:     in.CourseID,
					ScorePercent: best.ScorePercent,
					IssuedAt:     a.deps.Base.Now(),
				}
				if tpl != nil {
					id := tpl.ID
					row.TemplateID = &id
				}
				if _, err := a.deps.Certificates.Create(d, []*certification.IssuedCertificate{row}); err != nil {
					return nil, err
				}
				return row, nil
			},
		)
		if err != nil {
			return err
		}
		out.Certificate = cert
		out.Created = created
		return nil
	})
	if err != nil {
		return domainagg.IssueCertificateResult{}, err
	}
	return out, nil
}

func (a *certificateAggregate) AttachDocument(ctx context.Context, in domainagg.AttachDocumentInput) (domainagg.AttachDocumentResult, error) {
	const op = "Certification.AttachDocument"
	var out domainagg.AttachDocumentResult
	key := strings.TrimSpace(in.Key)
	if in.CertificateID == uuid.Nil || key == "" {
		return out, domainagg.Invalid(op, "certificate_id and key are required")
	}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		attached, err := a.deps.Certificates.SetDocumentKeyIfEmpty(dbc, in.CertificateID, key)
		if err != nil {
			return err
		}
		out.Attached = attached
		if attached {
			out.Key = key
			return nil
		}
		cert, err := a.deps.Certificates.GetByID(dbc, in.CertificateID)
		if err != nil {
			return err
		}
		if cert == nil {
			return domainagg.NotFound(op, fmt.Sprintf("certificate not found: %s", in.CertificateID))
		}
		out.Key = cert.DocumentKey
		return nil
	})
	if err != nil {
		return domainagg.AttachDocumentResult{}, err
	}
	return out, nil
}
