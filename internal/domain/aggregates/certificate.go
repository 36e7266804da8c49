package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/coursemarket-backend/internal/domain/certification"
)

var CertificateAggregateContract = Contract{
	Name:             "CertificateAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "One certificate per (user, course). The document is uploaded after the row commits and attached once; the first attached key is kept.",
}

type IssueCertificateInput struct {
	UserID   uuid.UUID
	CourseID uuid.UUID
}

type IssueCertificateResult struct {
	// Certificate is nil when the user does not qualify yet.
	Certificate *certification.IssuedCertificate
	Created     bool
	Qualified   bool
}

type AttachDocumentInput struct {
	CertificateID uuid.UUID
	Key           string
}

type AttachDocumentResult struct {
	// Attached is false when another call stored a key first; Key is then
	// the stored one.
	Attached bool
	Key      string
}

type CertificateAggregate interface {
	Aggregate
	IssueIfQualified(ctx context.Context, in IssueCertificateInput) (IssueCertificateResult, error)
	AttachDocument(ctx context.Context, in AttachDocumentInput) (AttachDocumentResult, error)
}
