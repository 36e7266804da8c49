package commerce

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderDraft    OrderStatus = "DRAFT"
	OrderPending  OrderStatus = "PENDING"
	OrderPaid     OrderStatus = "PAID"
	OrderFailed   OrderStatus = "FAILED"
	OrderCanceled OrderStatus = "CANCELED"
	OrderRefunded OrderStatus = "REFUNDED"
)

type ItemType string

const (
	ItemCourse       ItemType = "COURSE"
	ItemCompanySeats ItemType = "COMPANY_SEATS"
)

type PaymentStatus string

const (
	PaymentInitiated PaymentStatus = "INITIATED"
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSuccess   PaymentStatus = "SUCCESS"
	PaymentFailed    PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentInitiated, PaymentPending, PaymentSuccess, PaymentFailed:
		return true
	}
	return false
}

// Order amounts are integer minor units of Currency.
type Order struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Reference     string      `gorm:"column:reference;not null;uniqueIndex" json:"reference"`
	UserID        *uuid.UUID  `gorm:"type:uuid;column:user_id;index" json:"user_id,omitempty"`
	CompanyID     *uuid.UUID  `gorm:"type:uuid;column:company_id;index" json:"company_id,omitempty"`
	Status        OrderStatus `gorm:"column:status;not null;default:'DRAFT';index" json:"status"`
	Currency      string      `gorm:"column:currency;not null;default:'XOF'" json:"currency"`
	SubtotalMinor int64       `gorm:"column:subtotal_minor;not null;default:0" json:"subtotal_minor"`
	DiscountMinor int64       `gorm:"column:discount_minor;not null;default:0" json:"discount_minor"`
	TotalMinor    int64       `gorm:"column:total_minor;not null;default:0" json:"total_minor"`
	CouponID      *uuid.UUID  `gorm:"type:uuid;column:coupon_id" json:"coupon_id,omitempty"`
	CreatedAt     time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	PaidAt        *time.Time  `gorm:"column:paid_at" json:"paid_at,omitempty"`

	Items []*OrderItem `gorm:"-" json:"items,omitempty"`
}

func (Order) TableName() string { return "customer_order" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderDraft
	}
	return nil
}

type OrderItem struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID        uuid.UUID  `gorm:"type:uuid;column:order_id;not null;index" json:"order_id"`
	ItemType       ItemType   `gorm:"column:item_type;not null" json:"item_type"`
	CourseID       *uuid.UUID `gorm:"type:uuid;column:course_id" json:"course_id,omitempty"`
	SeatsQty       int        `gorm:"column:seats_qty;not null;default:0" json:"seats_qty"`
	UnitPriceMinor int64      `gorm:"column:unit_price_minor;not null;default:0" json:"unit_price_minor"`
	LineTotalMinor int64      `gorm:"column:line_total_minor;not null;default:0" json:"line_total_minor"`
}

func (OrderItem) TableName() string { return "order_item" }

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Quantity is the seat count for seat lines and 1 for everything else.
func (i *OrderItem) Quantity() int64 {
	if i.ItemType == ItemCompanySeats {
		if i.SeatsQty < 0 {
			return 0
		}
		return int64(i.SeatsQty)
	}
	return 1
}

type PaymentTransaction struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID      `gorm:"type:uuid;column:order_id;not null;index" json:"order_id"`
	Provider    string         `gorm:"column:provider;not null" json:"provider"`
	Reference   string         `gorm:"column:reference;not null;uniqueIndex" json:"reference"`
	ProviderRef string         `gorm:"column:provider_ref" json:"provider_ref,omitempty"`
	Status      PaymentStatus  `gorm:"column:status;not null;default:'INITIATED'" json:"status"`
	AmountMinor int64          `gorm:"column:amount_minor;not null;default:0" json:"amount_minor"`
	Currency    string         `gorm:"column:currency;not null;default:'XOF'" json:"currency"`
	RawPayload  datatypes.JSON `gorm:"column:raw_payload;type:jsonb" json:"raw_payload,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (PaymentTransaction) TableName() string { return "payment_transaction" }

func (p *PaymentTransaction) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PaymentInitiated
	}
	return nil
}
