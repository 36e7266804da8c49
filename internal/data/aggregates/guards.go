package aggregates

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

// CASGuard applies status transitions that only succeed while the row is
// still in an expected status. Locked reads narrow the race window; the
// guard closes it for writers that skipped the lock.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) conn(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx), nil
	}
	if g.db != nil {
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, ValidationError("missing db transaction context")
}

// statusTransition moves the row identified by id out of one of from and
// applies updates. model selects the table (e.g. &enrollment.Enrollment{}).
// Zero matched rows is a conflict: another writer moved the row first.
func statusTransition[S ~string](g CASGuard, dbc dbctx.Context, model any, id uuid.UUID, from []S, updates map[string]any) error {
	if model == nil || id == uuid.Nil {
		return ValidationError("model and id are required for a status transition")
	}
	if len(from) == 0 {
		return ValidationError("status transition needs at least one source status")
	}
	db, err := g.conn(dbc)
	if err != nil {
		return err
	}
	allowed := make([]string, 0, len(from))
	for _, s := range from {
		allowed = append(allowed, string(s))
	}
	res := db.Model(model).
		Where("id = ? AND status IN ?", id, allowed).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ConflictError(fmt.Sprintf("row %s left status %v before the update", id, allowed))
	}
	return nil
}

func statusIn[S ~string](current S, allowed ...S) bool {
	for _, s := range allowed {
		if current == s {
			return true
		}
	}
	return false
}
