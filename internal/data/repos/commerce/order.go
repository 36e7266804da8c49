package commerce

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type OrderRepo interface {
	Create(dbc dbctx.Context, rows []*types.Order) ([]*types.Order, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Order, error)
	GetByReference(dbc dbctx.Context, reference string) (*types.Order, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Order, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Order, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type orderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return &orderRepo{db: db, log: baseLog.With("repo", "OrderRepo")}
}

func (r *orderRepo) Create(dbc dbctx.Context, rows []*types.Order) ([]*types.Order, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Order{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *orderRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Order, error) {
	return r.first(dbc, false, "id = ?", id)
}

func (r *orderRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Order, error) {
	return r.first(dbc, true, "id = ?", id)
}

func (r *orderRepo) GetByReference(dbc dbctx.Context, reference string) (*types.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	return r.first(dbc, false, "reference = ?", reference)
}

func (r *orderRepo) first(dbc dbctx.Context, lock bool, query string, arg interface{}) (*types.Order, error) {
	if id, ok := arg.(uuid.UUID); ok && id == uuid.Nil {
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
	var rows []*types.Order
	if err := q.Where(query, arg).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *orderRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Order, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Order{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

type OrderItemRepo interface {
	Create(dbc dbctx.Context, rows []*types.OrderItem) ([]*types.OrderItem, error)
	ListByOrder(dbc dbctx.Context, orderID uuid.UUID) ([]*types.OrderItem, error)
	// PaidCourseRevenue sums course line totals of PAID orders, in minor units.
	PaidCourseRevenue(dbc dbctx.Context, courseIDs []uuid.UUID) (int64, error)
}

type orderItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderItemRepo(db *gorm.DB, baseLog *logger.Logger) OrderItemRepo {
	return &orderItemRepo{db: db, log: baseLog.With("repo", "OrderItemRepo")}
}

func (r *orderItemRepo) Create(dbc dbctx.Context, rows []*types.OrderItem) ([]*types.OrderItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.OrderItem{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *orderItemRepo) ListByOrder(dbc dbctx.Context, orderID uuid.UUID) ([]*types.OrderItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.OrderItem{}
	if orderID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderItemRepo) PaidCourseRevenue(dbc dbctx.Context, courseIDs []uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(courseIDs) == 0 {
		return 0, nil
	}
	var total int64
	row := t.WithContext(dbc.Ctx).
		Model(&types.OrderItem{}).
		Select("COALESCE(SUM(order_item.line_total_minor), 0)").
		Joins("JOIN customer_order ON customer_order.id = order_item.order_id").
		Where("customer_order.status = ?", types.OrderPaid).
		Where("order_item.item_type = ? AND order_item.course_id IN ?", types.ItemCourse, courseIDs).
		Row()
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
