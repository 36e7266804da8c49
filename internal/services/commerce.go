package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/domain/commerce"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

const (
	DefaultCurrency     = "XOF"
	maxPaymentsListed   = 100
	defaultPaymentsList = 50
)

type CheckoutItemInput struct {
	ItemType string     `json:"item_type" validate:"required,oneof=COURSE COMPANY_SEATS"`
	CourseID *uuid.UUID `json:"course_id" validate:"required"`
	SeatsQty int        `json:"seats_qty" validate:"omitempty,min=1,max=10000"`
}

type CheckoutInput struct {
	CompanyID  *uuid.UUID          `json:"company_id"`
	Items      []CheckoutItemInput `json:"items" validate:"min=1,max=50,dive"`
	CouponCode string              `json:"coupon_code" validate:"omitempty,max=64"`
	Currency   string              `json:"currency" validate:"omitempty,len=3"`
	Provider   string              `json:"provider" validate:"required,max=64"`
}

type CheckoutResult struct {
	Order       *types.Order              `json:"order"`
	Transaction *types.PaymentTransaction `json:"transaction"`
}

type WebhookInput struct {
	Provider    string              `json:"provider"`
	Reference   string              `json:"reference" validate:"required"`
	ProviderRef string              `json:"provider_ref"`
	Status      types.PaymentStatus `json:"status" validate:"required"`
	AmountMinor *int64              `json:"amount_minor"`
	Raw         json.RawMessage     `json:"-"`
}

type WebhookResult struct {
	Transaction *types.PaymentTransaction    `json:"transaction"`
	Order       *types.Order                 `json:"order"`
	Settlement  *domainagg.SettleOrderResult `json:"settlement,omitempty"`
}

type CommerceService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	HandlePaymentWebhook(ctx context.Context, in WebhookInput) (*WebhookResult, error)
	SettleOrder(ctx context.Context, orderID uuid.UUID) (*domainagg.SettleOrderResult, error)
	ListPaymentsForUser(ctx context.Context, limit int) ([]*types.PaymentTransaction, error)
}

type commerceService struct {
	log      *logger.Logger
	courses  repos.CourseRepo
	coupons  repos.CouponRepo
	payments repos.PaymentTransactionRepo
	members  repos.CompanyMemberRepo
	agg      domainagg.SettlementAggregate
	now      func() time.Time
}

func NewCommerceService(
	log *logger.Logger,
	courses repos.CourseRepo,
	coupons repos.CouponRepo,
	payments repos.PaymentTransactionRepo,
	members repos.CompanyMemberRepo,
	agg domainagg.SettlementAggregate,
) CommerceService {
	return &commerceService{
		log:      log.With("service", "CommerceService"),
		courses:  courses,
		coupons:  coupons,
		payments: payments,
		members:  members,
		agg:      agg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Checkout prices the cart from the catalog and places a PENDING order with
// an INITIATED payment. Seat lines are priced per seat at the course price.
func (s *commerceService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	const op = "Commerce.Checkout"
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	hasSeats := false
	ids := make([]uuid.UUID, 0, len(in.Items))
	for _, it := range in.Items {
		if commerce.ItemType(it.ItemType) == commerce.ItemCompanySeats {
			hasSeats = true
			if it.SeatsQty < 1 {
				return nil, domainagg.Invalid(op, "seats_qty must be at least 1")
			}
		}
		ids = append(ids, *it.CourseID)
	}
	if hasSeats {
		if in.CompanyID == nil {
			return nil, domainagg.Invalid(op, "company_id is required for seat purchases")
		}
		ok, err := isCompanyAdmin(dbc, s.members, rd, *in.CompanyID)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		if !ok {
			return nil, domainagg.Forbidden(op, "only company admins can buy seats")
		}
	}

	courses, err := s.courses.GetByIDs(dbc, ids)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	byID := make(map[uuid.UUID]*types.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	items := make([]*types.OrderItem, 0, len(in.Items))
	seen := make(map[uuid.UUID]bool, len(in.Items))
	for _, it := range in.Items {
		course := byID[*it.CourseID]
		if course == nil || course.Status != types.CourseStatusPublished {
			return nil, domainagg.NotFound(op, fmt.Sprintf("course not available: %s", *it.CourseID))
		}
		if !strings.EqualFold(course.Currency, currency) {
			return nil, domainagg.Invalid(op, fmt.Sprintf("course %s is priced in %s", course.ID, course.Currency))
		}
		courseID := course.ID
		item := &types.OrderItem{
			ItemType:       commerce.ItemType(it.ItemType),
			CourseID:       &courseID,
			UnitPriceMinor: course.PriceMinor,
		}
		if item.ItemType == commerce.ItemCompanySeats {
			item.SeatsQty = it.SeatsQty
		} else {
			if seen[courseID] {
				return nil, domainagg.Invalid(op, "course listed twice in cart")
			}
			seen[courseID] = true
		}
		items = append(items, item)
	}

	var coupon *types.Coupon
	if code := commerce.NormalizeCouponCode(in.CouponCode); code != "" {
		coupon, err = s.coupons.GetByCode(dbc, code)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		if !coupon.Redeemable(s.now()) {
			return nil, domainagg.NotAvailable(op, "coupon is not redeemable")
		}
		if coupon.PercentOff == nil && coupon.AmountOffMinor != nil && !strings.EqualFold(coupon.Currency, currency) {
			return nil, domainagg.Invalid(op, "coupon currency does not match order")
		}
	}

	totals := commerce.PriceItems(items, coupon)
	order := &types.Order{
		Currency:      currency,
		SubtotalMinor: totals.SubtotalMinor,
		DiscountMinor: totals.DiscountMinor,
		TotalMinor:    totals.TotalMinor,
	}
	userID := rd.UserID
	order.UserID = &userID
	if in.CompanyID != nil {
		companyID := *in.CompanyID
		order.CompanyID = &companyID
	}
	var couponID *uuid.UUID
	if coupon != nil {
		id := coupon.ID
		couponID = &id
	}

	res, err := s.agg.PlaceOrder(ctx, domainagg.PlaceOrderInput{
		Order:    order,
		Items:    items,
		Provider: in.Provider,
		CouponID: couponID,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Order placed",
		"order_id", res.Order.ID,
		"reference", res.Order.Reference,
		"total_minor", res.Order.TotalMinor,
		"payment_reference", res.Transaction.Reference,
	)
	return &CheckoutResult{Order: res.Order, Transaction: res.Transaction}, nil
}

// HandlePaymentWebhook records a provider notification. Replays of a
// SUCCESS for an already paid order settle nothing twice.
func (s *commerceService) HandlePaymentWebhook(ctx context.Context, in WebhookInput) (*WebhookResult, error) {
	const op = "Commerce.Webhook"
	in.Status = types.PaymentStatus(strings.ToUpper(strings.TrimSpace(string(in.Status))))
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	res, err := s.agg.RecordPayment(ctx, domainagg.RecordPaymentInput{
		Provider:    in.Provider,
		Reference:   in.Reference,
		ProviderRef: in.ProviderRef,
		Status:      in.Status,
		AmountMinor: in.AmountMinor,
		RawPayload:  in.Raw,
	})
	if err != nil {
		observability.Current().IncSettlement("error")
		return nil, err
	}
	switch {
	case res.Settlement != nil && res.Settlement.AlreadyPaid:
		observability.Current().IncSettlement("already_paid")
	case res.Settlement != nil:
		observability.Current().IncSettlement("settled")
		s.log.Info("Order settled",
			"order_id", res.Order.ID,
			"enrollments", res.Settlement.EnrollmentsCreated,
			"licenses", res.Settlement.LicensesCreated,
		)
	case in.Status == types.PaymentFailed:
		observability.Current().IncSettlement("failed")
	default:
		observability.Current().IncSettlement("recorded")
	}
	return &WebhookResult{Transaction: res.Transaction, Order: res.Order, Settlement: res.Settlement}, nil
}

// SettleOrder is the manual reconciliation path for orders whose provider
// confirmed payment out of band.
func (s *commerceService) SettleOrder(ctx context.Context, orderID uuid.UUID) (*domainagg.SettleOrderResult, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !isSuperAdmin(rd) {
		return nil, domainagg.Forbidden("Commerce.SettleOrder", "only administrators settle orders manually")
	}
	res, err := s.agg.SettleOrder(ctx, domainagg.SettleOrderInput{OrderID: orderID})
	if err != nil {
		observability.Current().IncSettlement("error")
		return nil, err
	}
	if res.AlreadyPaid {
		observability.Current().IncSettlement("already_paid")
	} else {
		observability.Current().IncSettlement("settled")
	}
	return &res, nil
}

func (s *commerceService) ListPaymentsForUser(ctx context.Context, limit int) ([]*types.PaymentTransaction, error) {
	rd, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPaymentsList
	}
	if limit > maxPaymentsListed {
		limit = maxPaymentsListed
	}
	rows, err := s.payments.ListByUser(dbctx.New(ctx), rd.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return rows, nil
}
