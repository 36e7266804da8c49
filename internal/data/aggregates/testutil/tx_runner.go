package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/coursemarket-backend/internal/data/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

// FaultyRunner wraps a real runner and injects failures around the body.
// FailAfterBody is returned from inside the transaction, so the writes the
// body made are rolled back by Next the same way a failed COMMIT would.
// With a nil Next the body runs without a transaction.
type FaultyRunner struct {
	Next aggregates.TxRunner

	FailBegin     error
	FailAfterBody error

	mu        sync.Mutex
	Begun     int
	Committed int
}

var _ aggregates.TxRunner = (*FaultyRunner)(nil)

func (r *FaultyRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.Begun++
	r.mu.Unlock()
	if r.FailBegin != nil {
		return r.FailBegin
	}
	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return r.FailAfterBody
	}
	var err error
	if r.Next != nil {
		err = r.Next.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	if err == nil {
		r.mu.Lock()
		r.Committed++
		r.mu.Unlock()
	}
	return err
}

// Calls returns the begin and commit counts.
func (r *FaultyRunner) Calls() (begun, committed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Begun, r.Committed
}
