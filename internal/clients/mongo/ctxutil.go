package mongo

import (
	"context"
	"time"
)

// OpTimeout is the default timeout for MongoDB operations
const OpTimeout = 5 * time.Second

// WithRepoTimeout returns ctx unchanged when it is already ≤ d away from
// expiring; otherwise it wraps ctx in context.WithTimeout(ctx, d).
// The returned cancel is always safe to defer: when no new context is
// created we return a stub that does nothing, so callers can write
//
//	ctx, cancel := WithRepoTimeout(parentCtx, d)
//	defer cancel()
//
// without extra branching or nil checks.
func WithRepoTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if err := ctx.Err(); err != nil {
		// Parent context is already canceled or deadline exceeded.
		return ctx, func() {}
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= d {
		// Existing deadline is stricter; keep it.
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
