package commerce

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Coupon struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code           string     `gorm:"column:code;not null;uniqueIndex" json:"code"`
	IsActive       bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	PercentOff     *int       `gorm:"column:percent_off" json:"percent_off,omitempty"`
	AmountOffMinor *int64     `gorm:"column:amount_off_minor" json:"amount_off_minor,omitempty"`
	Currency       string     `gorm:"column:currency;not null;default:'XOF'" json:"currency"`
	ValidFrom      *time.Time `gorm:"column:valid_from" json:"valid_from,omitempty"`
	ValidTo        *time.Time `gorm:"column:valid_to" json:"valid_to,omitempty"`
	UsageLimit     *int       `gorm:"column:usage_limit" json:"usage_limit,omitempty"`
	UsedCount      int        `gorm:"column:used_count;not null;default:0" json:"used_count"`
}

func (Coupon) TableName() string { return "coupon" }

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Code = NormalizeCouponCode(c.Code)
	return nil
}

func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Redeemable reports whether the coupon can be applied at now.
func (c *Coupon) Redeemable(now time.Time) bool {
	if c == nil || !c.IsActive {
		return false
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidTo != nil && now.After(*c.ValidTo) {
		return false
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false
	}
	return true
}

// Totals is the priced result of a set of order lines.
type Totals struct {
	SubtotalMinor int64
	DiscountMinor int64
	TotalMinor    int64
}

// PriceItems fills LineTotalMinor on every item and returns the order totals.
// The coupon applies only when active; percent_off wins over amount_off.
func PriceItems(items []*OrderItem, coupon *Coupon) Totals {
	var out Totals
	for _, it := range items {
		if it == nil {
			continue
		}
		it.LineTotalMinor = it.UnitPriceMinor * it.Quantity()
		out.SubtotalMinor += it.LineTotalMinor
	}
	if coupon != nil && coupon.IsActive {
		switch {
		case coupon.PercentOff != nil:
			pct := int64(*coupon.PercentOff)
			if pct < 0 {
				pct = 0
			}
			if pct > 100 {
				pct = 100
			}
			// half-up rounding in minor units
			out.DiscountMinor = (out.SubtotalMinor*pct + 50) / 100
		case coupon.AmountOffMinor != nil:
			out.DiscountMinor = *coupon.AmountOffMinor
			if out.DiscountMinor > out.SubtotalMinor {
				out.DiscountMinor = out.SubtotalMinor
			}
			if out.DiscountMinor < 0 {
				out.DiscountMinor = 0
			}
		}
	}
	out.TotalMinor = out.SubtotalMinor - out.DiscountMinor
	if out.TotalMinor < 0 {
		out.TotalMinor = 0
	}
	return out
}
