package gatekeeper

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-petr/mem-bank/internal/domain"
	"github.com/go-petr/mem-bank/pkg/moneypkg"
	"github.com/stretchr/testify/require"
)

const limit = 10

// holdSlots occupies n gatekeeper slots with operations that block until
// the returned release function is called.
func holdSlots(t *testing.T, g *Gatekeeper, n int) (release func(), done *sync.WaitGroup) {
	t.Helper()

	block := make(chan struct{})
	started := make(chan struct{}, n)

	done = &sync.WaitGroup{}
	for i := 0; i < n; i++ {
		done.Add(1)

		go func() {
			defer done.Done()

			_, err := g.Execute(context.Background(), func(ctx context.Context) (moneypkg.Money, error) {
				started <- struct{}{}
				<-block
				return moneypkg.Zero, nil
			})
			require.NoError(t, err)
		}()
	}

	for i := 0; i < n; i++ {
		<-started
	}

	return func() { close(block) }, done
}

func TestExecuteRefusesWhenFull(t *testing.T) {
	g := New(limit)

	release, done := holdSlots(t, g, limit)

	_, err := g.Execute(context.Background(), func(ctx context.Context) (moneypkg.Money, error) {
		t.Error("operation must not run after refusal")
		return moneypkg.Zero, nil
	})
	require.ErrorIs(t, err, domain.ErrTooManyRequests)

	release()
	done.Wait()

	// Capacity is restored once in-flight operations finish.
	got, err := g.Execute(context.Background(), func(ctx context.Context) (moneypkg.Money, error) {
		return moneypkg.Zero, nil
	})
	require.NoError(t, err)
	require.Equal(t, "0.00", got.Display())
}

func TestExecuteReturnsOpResult(t *testing.T) {
	g := New(limit)

	want, err := moneypkg.FromString("42.42")
	require.NoError(t, err)

	got, err := g.Execute(context.Background(), func(ctx context.Context) (moneypkg.Money, error) {
		return want, nil
	})
	require.NoError(t, err)
	require.Equal(t, 0, got.Compare(want))

	_, err = g.Execute(context.Background(), func(ctx context.Context) (moneypkg.Money, error) {
		return moneypkg.Money{}, domain.ErrInsufficientBalance
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestExecuteReleasesSlotOnPanic(t *testing.T) {
	g := New(1)

	require.Panics(t, func() {
		_, _ = g.Execute(context.Background(), func(ctx context.Context) (moneypkg.Money, error) {
			panic("op failure")
		})
	})

	// The slot held by the panicked op must be released.
	_, err := g.Execute(context.Background(), func(ctx context.Context) (moneypkg.Money, error) {
		return moneypkg.Zero, nil
	})
	require.NoError(t, err)
}

func TestAdmissionBoundUnderLoad(t *testing.T) {
	g := New(limit)

	const requests = 50

	var (
		inFlight    int64
		maxInFlight int64
		admitted    int64
		refused     int64
		wg          sync.WaitGroup
	)

	for i := 0; i < requests; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := g.Execute(context.Background(), func(ctx context.Context) (moneypkg.Money, error) {
				n := atomic.AddInt64(&inFlight, 1)
				for {
					seen := atomic.LoadInt64(&maxInFlight)
					if n <= seen || atomic.CompareAndSwapInt64(&maxInFlight, seen, n) {
						break
					}
				}
				atomic.AddInt64(&inFlight, -1)
				return moneypkg.Zero, nil
			})

			if err == domain.ErrTooManyRequests {
				atomic.AddInt64(&refused, 1)
			} else {
				require.NoError(t, err)
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(requests), admitted+refused)
	require.LessOrEqual(t, maxInFlight, int64(limit))
	require.Positive(t, admitted)
}

func TestTwoSimultaneousRequestsAtLastSlot(t *testing.T) {
	g := New(limit)

	release, done := holdSlots(t, g, limit-1)
	defer func() {
		release()
		done.Wait()
	}()

	// With one slot left, the first request takes it and blocks; a second
	// request arriving while that slot is held is refused.
	block := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		_, err := g.Execute(context.Background(), func(ctx context.Context) (moneypkg.Money, error) {
			close(started)
			<-block
			return moneypkg.Zero, nil
		})
		require.NoError(t, err)
	}()

	<-started

	_, err := g.Execute(context.Background(), func(ctx context.Context) (moneypkg.Money, error) {
		return moneypkg.Zero, nil
	})
	require.ErrorIs(t, err, domain.ErrTooManyRequests)

	close(block)
	wg.Wait()
}
