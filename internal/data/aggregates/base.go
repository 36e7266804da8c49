package aggregates

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	Now      func() time.Time
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if errors.Is(mapped, domainagg.ErrConflict) {
			deps.Hooks.IncConflict(op)
		}
		if errors.Is(mapped, domainagg.ErrRetryable) {
			deps.Hooks.IncRetry(op)
		}
		if deps.Log != nil && status == string(domainagg.CodeInternal) {
			deps.Log.Warn("aggregate write failed", "op", op, "error", mapped)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}

// getOrCreate returns the row found by lookup, or inserts one through create.
// The insert runs in a savepoint so a unique violation from a concurrent
// writer leaves the outer transaction usable; the row is then re-read.
func getOrCreate[T any](
	dbc dbctx.Context,
	lookup func(dbctx.Context) (*T, error),
	create func(dbctx.Context) (*T, error),
) (*T, bool, error) {
	existing, err := lookup(dbc)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	var created *T
	insert := func(inner dbctx.Context) error {
		row, err := create(inner)
		if err != nil {
			return err
		}
		created = row
		return nil
	}
	if dbc.Tx != nil {
		err = dbc.Tx.Transaction(func(sp *gorm.DB) error {
			return insert(dbc.WithTx(sp))
		})
	} else {
		err = insert(dbc)
	}
	if err == nil {
		return created, true, nil
	}
	if !IsUniqueViolation(err) {
		return nil, false, err
	}

	existing, rerr := lookup(dbc)
	if rerr != nil {
		return nil, false, rerr
	}
	if existing == nil {
		return nil, false, ConflictError("row vanished after unique violation")
	}
	return existing, false, nil
}
