// Package gchan holds context-aware channel helpers.
// Every helper logs the same way when its context ends first,
// so callers do not repeat the select boilerplate.
package gchan

import (
	"context"
	"log/slog"
)

// SendC sends val to out unless ctx finishes first.
// On cancellation it logs "Context canceled while "+during at info level
// and reports false.
func SendC[T any](ctx context.Context, log *slog.Logger, out chan<- T, val T, during string) (sent bool) {
	select {
	case <-ctx.Done():
		log.Info("Context canceled while "+during, "cause", context.Cause(ctx))
		return false
	case out <- val:
		return true
	}
}

// RecvC receives from in unless ctx finishes first.
// On cancellation it logs like [SendC] and returns the zero value and false.
func RecvC[T any](ctx context.Context, log *slog.Logger, in <-chan T, during string) (val T, received bool) {
	select {
	case <-ctx.Done():
		log.Info("Context canceled while "+during, "cause", context.Cause(ctx))
		return val, false
	case val = <-in:
		return val, true
	}
}

// ReqResp sends req on reqCh and then waits for a value on respCh.
// The response channel should be buffered with capacity 1
// so the responder never blocks on a caller that gave up.
func ReqResp[T, U any](
	ctx context.Context, log *slog.Logger,
	reqCh chan<- T, req T,
	respCh <-chan U,
	kind string,
) (resp U, ok bool) {
	if !SendC(ctx, log, reqCh, req, "making "+kind+" request") {
		return resp, false
	}

	return RecvC(ctx, log, respCh, "receiving "+kind+" response")
}
