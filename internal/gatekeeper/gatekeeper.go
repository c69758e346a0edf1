// Package gatekeeper bounds the number of in-flight operations per user.
package gatekeeper

import (
	"context"

	"github.com/go-petr/mem-bank/internal/domain"
	"github.com/go-petr/mem-bank/pkg/moneypkg"
	"golang.org/x/sync/semaphore"
)

// Op is a single account operation admitted by the Gatekeeper.
type Op func(ctx context.Context) (moneypkg.Money, error)

// Gatekeeper is a non-blocking admission controller: a token bucket of
// fixed capacity with no queue. A request that arrives while the bucket is
// empty is refused immediately instead of waiting, so callers see a fast
// too-many-requests response rather than a latency spike.
type Gatekeeper struct {
	sem *semaphore.Weighted
}

// New returns a Gatekeeper admitting at most limit concurrent operations.
func New(limit int64) *Gatekeeper {
	return &Gatekeeper{
		sem: semaphore.NewWeighted(limit),
	}
}

// Execute admits and runs op, returning its result. When the in-flight
// limit is reached it returns domain.ErrTooManyRequests without running op.
// Admitted operations run concurrently; the slot is released on every exit
// path, including a panicking op.
func (g *Gatekeeper) Execute(ctx context.Context, op Op) (moneypkg.Money, error) {
	if !g.sem.TryAcquire(1) {
		return moneypkg.Money{}, domain.ErrTooManyRequests
	}
	defer g.sem.Release(1)

	return op(ctx)
}
