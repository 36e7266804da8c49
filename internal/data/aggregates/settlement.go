package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/commerce"
	"github.com/yungbote/coursemarket-backend/internal/domain/enrollment"
	"github.com/yungbote/coursemarket-backend/internal/domain/organization"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/ids"
)

type SettlementAggregateDeps struct {
	Base BaseDeps

	Orders      repos.OrderRepo
	OrderItems  repos.OrderItemRepo
	Payments    repos.PaymentTransactionRepo
	Coupons     repos.CouponRepo
	Enrollments repos.EnrollmentRepo
	Licenses    repos.CompanyLicenseRepo
}

type settlementAggregate struct {
	deps SettlementAggregateDeps
}

func NewSettlementAggregate(deps SettlementAggregateDeps) domainagg.SettlementAggregate {
	deps.Base = deps.Base.withDefaults()
	return &settlementAggregate{deps: deps}
}

func (a *settlementAggregate) Contract() domainagg.Contract {
	return domainagg.SettlementAggregateContract
}

var settleableOrderStatuses = []commerce.OrderStatus{
	commerce.OrderDraft,
	commerce.OrderPending,
	commerce.OrderFailed,
}

func (a *settlementAggregate) PlaceOrder(ctx context.Context, in domainagg.PlaceOrderInput) (domainagg.PlaceOrderResult, error) {
	const op = "Commerce.PlaceOrder"
	var out domainagg.PlaceOrderResult
	if in.Order == nil {
		return out, domainagg.Invalid(op, "missing order")
	}
	if len(in.Items) == 0 {
		return out, domainagg.Invalid(op, "order has no items")
	}
	if in.Order.UserID == nil && in.Order.CompanyID == nil {
		return out, domainagg.Invalid(op, "order needs a buyer")
	}
	provider := strings.TrimSpace(in.Provider)
	if provider == "" {
		return out, domainagg.Invalid(op, "missing provider")
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		order := in.Order
		order.Status = commerce.OrderPending
		order.CouponID = in.CouponID
		if order.Reference == "" {
			order.Reference = ids.Reference("ORD")
		}
		if _, err := a.deps.Orders.Create(dbc, []*commerce.Order{order}); err != nil {
			return err
		}
		for _, it := range in.Items {
			it.OrderID = order.ID
		}
		if _, err := a.deps.OrderItems.Create(dbc, in.Items); err != nil {
			return err
		}
		order.Items = in.Items

		txn := &commerce.PaymentTransaction{
			OrderID:     order.ID,
			Provider:    provider,
			Reference:   ids.Reference("PAY"),
			Status:      commerce.PaymentInitiated,
			AmountMinor: order.TotalMinor,
			Currency:    order.Currency,
		}
		if _, err := a.deps.Payments.Create(dbc, []*commerce.PaymentTransaction{txn}); err != nil {
			return err
		}
		out.Order = order
		out.Transaction = txn
		return nil
	})
	if err != nil {
		return domainagg.PlaceOrderResult{}, err
	}
	return out, nil
}

func (a *settlementAggregate) RecordPayment(ctx context.Context, in domainagg.RecordPaymentInput) (domainagg.RecordPaymentResult, error) {
	const op = "Commerce.RecordPayment"
	var out domainagg.RecordPaymentResult
	ref := strings.TrimSpace(in.Reference)
	if ref == "" {
		return out, domainagg.Invalid(op, "missing reference")
	}
	if !in.Status.Valid() {
		return out, domainagg.Invalid(op, fmt.Sprintf("invalid payment status %q", in.Status))
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		txn, err := a.deps.Payments.LockByReference(dbc, ref)
		if err != nil {
			return err
		}
		if txn == nil {
			return domainagg.NotFound(op, fmt.Sprintf("payment not found: %s", ref))
		}
		if p := strings.TrimSpace(in.Provider); p != "" && !strings.EqualFold(p, txn.Provider) {
			return domainagg.Invalid(op, "provider does not match payment")
		}
		order, err := a.deps.Orders.LockByID(dbc, txn.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return InvariantError("payment references a missing order")
		}
		if in.Status == commerce.PaymentSuccess && in.AmountMinor != nil && *in.AmountMinor != order.TotalMinor {
			return domainagg.Invalid(op, fmt.Sprintf("paid amount %d does not match order total %d", *in.AmountMinor, order.TotalMinor))
		}

		updates := map[string]interface{}{"status": in.Status}
		if v := strings.TrimSpace(in.ProviderRef); v != "" {
			updates["provider_ref"] = v
			txn.ProviderRef = v
		}
		if len(in.RawPayload) > 0 {
			updates["raw_payload"] = datatypes.JSON(in.RawPayload)
			txn.RawPayload = datatypes.JSON(in.RawPayload)
		}
		if in.AmountMinor != nil {
			updates["amount_minor"] = *in.AmountMinor
			txn.AmountMinor = *in.AmountMinor
		}
		if err := a.deps.Payments.UpdateFields(dbc, txn.ID, updates); err != nil {
			return err
		}
		txn.Status = in.Status
		out.Transaction = txn

		switch in.Status {
		case commerce.PaymentSuccess:
			res, err := a.settleInTx(dbc, op, order)
			if err != nil {
				return err
			}
			out.Settlement = &res
		case commerce.PaymentFailed:
			if order.Status != commerce.OrderPaid {
				if err := a.deps.Orders.UpdateFields(dbc, order.ID, map[string]interface{}{
					"status": commerce.OrderFailed,
				}); err != nil {
					return err
				}
				order.Status = commerce.OrderFailed
			}
		}
		out.Order = order
		return nil
	})
	if err != nil {
		return domainagg.RecordPaymentResult{}, err
	}
	return out, nil
}

func (a *settlementAggregate) SettleOrder(ctx context.Context, in domainagg.SettleOrderInput) (domainagg.SettleOrderResult, error) {
	const op = "Commerce.SettleOrder"
	var out domainagg.SettleOrderResult
	if in.OrderID == uuid.Nil {
		return out, domainagg.Invalid(op, "missing order_id")
	}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		order, err := a.deps.Orders.LockByID(dbc, in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domainagg.NotFound(op, fmt.Sprintf("order not found: %s", in.OrderID))
		}
		out, err = a.settleInTx(dbc, op, order)
		return err
	})
	if err != nil {
		return domainagg.SettleOrderResult{}, err
	}
	return out, nil
}

// settleInTx expects order to be row-locked by the caller.
func (a *settlementAggregate) settleInTx(dbc dbctx.Context, op string, order *commerce.Order) (domainagg.SettleOrderResult, error) {
	var out domainagg.SettleOrderResult
	if order.Status == commerce.OrderPaid {
		out.AlreadyPaid = true
		return out, nil
	}
	if !statusIn(order.Status, settleableOrderStatuses...) {
		return out, domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("order is %s", order.Status), nil)
	}

	now := a.deps.Base.Now()
	err := statusTransition(a.deps.Base.CASGuard, dbc, &commerce.Order{}, order.ID, settleableOrderStatuses, map[string]any{
		"status":  commerce.OrderPaid,
		"paid_at": now,
	})
	if err != nil {
		return out, err
	}
	order.Status = commerce.OrderPaid
	order.PaidAt = &now

	items, err := a.deps.OrderItems.ListByOrder(dbc, order.ID)
	if err != nil {
		return out, err
	}
	licenses := make([]*organization.CompanyLicense, 0)
	for _, it := range items {
		switch it.ItemType {
		case commerce.ItemCourse:
			if it.CourseID == nil || order.UserID == nil {
				continue
			}
			_, created, err := enrollInTx(dbc, a.deps.Enrollments, *order.UserID, *it.CourseID, enrollment.SourceB2C, nil)
			if err != nil {
				return out, err
			}
			if created {
				out.EnrollmentsCreated++
			}
		case commerce.ItemCompanySeats:
			if order.CompanyID == nil || it.SeatsQty <= 0 {
				continue
			}
			itemID := it.ID
			licenses = append(licenses, &organization.CompanyLicense{
				CompanyID:   *order.CompanyID,
				OrderItemID: &itemID,
				SeatsTotal:  it.SeatsQty,
			})
		}
	}
	if len(licenses) > 0 {
		n, err := a.deps.Licenses.CreateIgnoreConflict(dbc, licenses)
		if err != nil {
			return out, err
		}
		out.LicensesCreated = int(n)
	}
	if order.CouponID != nil {
		if err := a.deps.Coupons.IncrementUsed(dbc, *order.CouponID); err != nil {
			return out, err
		}
	}
	return out, nil
}
