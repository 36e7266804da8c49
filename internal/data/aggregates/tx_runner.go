package aggregates

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

// TxRunner runs fn inside one database transaction. fn may run more than
// once, so it must not leak side effects outside dbc before returning.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

const (
	defaultTxAttempts = 3
	defaultTxBackoff  = 20 * time.Millisecond
)

type gormTxRunner struct {
	db       *gorm.DB
	attempts int
	backoff  time.Duration
}

type TxOption func(*gormTxRunner)

// WithTxRetry sets how many times a transaction aborted by a serialization
// failure or deadlock is attempted. attempts < 1 disables retry.
func WithTxRetry(attempts int, backoff time.Duration) TxOption {
	return func(r *gormTxRunner) {
		if attempts < 1 {
			attempts = 1
		}
		r.attempts = attempts
		r.backoff = backoff
	}
}

func NewGormTxRunner(db *gorm.DB, opts ...TxOption) TxRunner {
	r := &gormTxRunner{db: db, attempts: defaultTxAttempts, backoff: defaultTxBackoff}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	var err error
	for attempt := 1; ; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(dbctx.Context{Ctx: ctx, Tx: tx})
		})
		if err == nil || attempt >= r.attempts || !isTransientTxError(err) {
			return err
		}
		t := time.NewTimer(r.backoff * time.Duration(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
}

// isTransientTxError reports aborts the database expects the client to
// retry. Lock timeouts and cancellations are not retried here.
func isTransientTxError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "40001", "40P01":
			return true
		}
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "deadlock detected")
}
