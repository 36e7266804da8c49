package commerce

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type PaymentTransactionRepo interface {
	Create(dbc dbctx.Context, rows []*types.PaymentTransaction) ([]*types.PaymentTransaction, error)
	GetByReference(dbc dbctx.Context, reference string) (*types.PaymentTransaction, error)
	LockByReference(dbc dbctx.Context, reference string) (*types.PaymentTransaction, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.PaymentTransaction, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type paymentTransactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPaymentTransactionRepo(db *gorm.DB, baseLog *logger.Logger) PaymentTransactionRepo {
	return &paymentTransactionRepo{db: db, log: baseLog.With("repo", "PaymentTransactionRepo")}
}

func (r *paymentTransactionRepo) Create(dbc dbctx.Context, rows []*types.PaymentTransaction) ([]*types.PaymentTransaction, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.PaymentTransaction{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *paymentTransactionRepo) GetByReference(dbc dbctx.Context, reference string) (*types.PaymentTransaction, error) {
	return r.byReference(dbc, reference, false)
}

func (r *paymentTransactionRepo) LockByReference(dbc dbctx.Context, reference string) (*types.PaymentTransaction, error) {
	return r.byReference(dbc, reference, true)
}

func (r *paymentTransactionRepo) byReference(dbc dbctx.Context, reference string, lock bool) (*types.PaymentTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rows []*types.PaymentTransaction
	if err := q.Where("reference = ?", reference).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListByUser returns the user's payment transactions across all their orders,
// newest first.
func (r *paymentTransactionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.PaymentTransaction, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.PaymentTransaction{}
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if err := t.WithContext(dbc.Ctx).
		Select("payment_transaction.*").
		Joins("JOIN customer_order ON customer_order.id = payment_transaction.order_id").
		Where("customer_order.user_id = ?", userID).
		Order("payment_transaction.created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *paymentTransactionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.PaymentTransaction{}).
		Where("id = ?", id).
		Updates(updates).Error
}
