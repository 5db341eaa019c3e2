package docstore

import (
	"context"
	"time"

	"github.com/spec-kit/reservation-service/internal/observability"
)

// InstrumentedStore records latency and outcome of every store call.
type InstrumentedStore struct {
	inner   Store
	metrics *observability.Metrics
}

// Instrument wraps inner with call metrics.
func Instrument(inner Store, metrics *observability.Metrics) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, metrics: metrics}
}

func (s *InstrumentedStore) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	start := time.Now()
	docs, err := s.inner.List(ctx, collection, q)
	s.metrics.RecordStoreCall("list", collection, err, time.Since(start))
	return docs, err
}

func (s *InstrumentedStore) Get(ctx context.Context, collection, id string) (Document, error) {
	start := time.Now()
	doc, err := s.inner.Get(ctx, collection, id)
	s.metrics.RecordStoreCall("get", collection, err, time.Since(start))
	return doc, err
}

func (s *InstrumentedStore) Create(ctx context.Context, collection string, data Document) (Document, error) {
	start := time.Now()
	doc, err := s.inner.Create(ctx, collection, data)
	s.metrics.RecordStoreCall("create", collection, err, time.Since(start))
	return doc, err
}

func (s *InstrumentedStore) Update(ctx context.Context, collection, id string, patch Document) (Document, error) {
	start := time.Now()
	doc, err := s.inner.Update(ctx, collection, id, patch)
	s.metrics.RecordStoreCall("update", collection, err, time.Since(start))
	return doc, err
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}
