package aggregates

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/yungbote/coursemarket-backend/internal/domain/commerce"
)

var SettlementAggregateContract = Contract{
	Name:             "SettlementAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "An order is paid once; course lines fan out to enrollments and seat lines to one license each.",
}

type PlaceOrderInput struct {
	Order    *commerce.Order
	Items    []*commerce.OrderItem
	Provider string
	CouponID *uuid.UUID
}

type PlaceOrderResult struct {
	Order       *commerce.Order
	Transaction *commerce.PaymentTransaction
}

type RecordPaymentInput struct {
	Provider    string
	Reference   string
	ProviderRef string
	Status      commerce.PaymentStatus
	AmountMinor *int64
	RawPayload  json.RawMessage
}

type RecordPaymentResult struct {
	Transaction *commerce.PaymentTransaction
	Order       *commerce.Order
	Settlement  *SettleOrderResult
}

type SettleOrderInput struct {
	OrderID uuid.UUID
}

type SettleOrderResult struct {
	AlreadyPaid        bool `json:"already_paid"`
	EnrollmentsCreated int  `json:"enrollments_created"`
	LicensesCreated    int  `json:"licenses_created"`
}

type SettlementAggregate interface {
	Aggregate
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (PlaceOrderResult, error)
	RecordPayment(ctx context.Context, in RecordPaymentInput) (RecordPaymentResult, error)
	SettleOrder(ctx context.Context, in SettleOrderInput) (SettleOrderResult, error)
}
