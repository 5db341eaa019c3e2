package docstore

import (
	"context"
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/observability"
)

// BreakerStore guards a Store with a circuit breaker so an unreachable backend fails
// fast instead of tying up request handlers. Client errors (4xx) do not trip it.
type BreakerStore struct {
	inner Store
	cb    *gobreaker.CircuitBreaker[any]
	name  string
}

// WithBreaker wraps inner. The breaker opens after 5 consecutive failures or a 60%
// failure rate over at least 10 calls, and probes again after 30 seconds.
func WithBreaker(inner Store, name string, logger *zap.Logger) *BreakerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	observability.StoreBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *Error
			return errors.As(err, &se) && se.Status >= 400 && se.Status < 500
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("document store breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			observability.StoreBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return &BreakerStore{inner: inner, cb: cb, name: name}
}

// State reports the breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	return guarded(b, "list", collection, func() ([]Document, error) { return b.inner.List(ctx, collection, q) })
}

func (b *BreakerStore) Get(ctx context.Context, collection, id string) (Document, error) {
	return guarded(b, "get", collection, func() (Document, error) { return b.inner.Get(ctx, collection, id) })
}

func (b *BreakerStore) Create(ctx context.Context, collection string, data Document) (Document, error) {
	return guarded(b, "create", collection, func() (Document, error) { return b.inner.Create(ctx, collection, data) })
}

func (b *BreakerStore) Update(ctx context.Context, collection, id string, patch Document) (Document, error) {
	return guarded(b, "update", collection, func() (Document, error) { return b.inner.Update(ctx, collection, id, patch) })
}

// Ping bypasses the breaker so readiness reflects the backend itself.
func (b *BreakerStore) Ping(ctx context.Context) error {
	return b.inner.Ping(ctx)
}

func guarded[T any](b *BreakerStore, op, collection string, fn func() (T, error)) (T, error) {
	var zero T
	res, err := b.cb.Execute(func() (any, error) { return fn() })
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, &Error{Op: op, Collection: collection, Status: http.StatusServiceUnavailable, Message: "document store unavailable", Err: err}
	}
	typed, _ := res.(T)
	return typed, err
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
