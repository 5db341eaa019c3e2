// Package memory is an in-process docstore.Store for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/reservation-service/internal/docstore"
)

// Store keeps collections in maps guarded by a RWMutex. Listing preserves
// insertion order unless the query sorts.
type Store struct {
	mu       sync.RWMutex
	records  map[string]map[string]docstore.Document
	order    map[string][]string
	failures map[string]error
	now      func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		records:  make(map[string]map[string]docstore.Document),
		order:    make(map[string][]string),
		failures: make(map[string]error),
		now:      time.Now,
	}
}

// Fail makes every op ("list", "get", "create", "update", "ping") on collection return
// err until cleared with a nil err. An empty collection matches all collections.
func (s *Store) Fail(op, collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := op + "|" + collection
	if err == nil {
		delete(s.failures, key)
		return
	}
	s.failures[key] = err
}

// Seed inserts documents verbatim, generating ids where missing.
func (s *Store) Seed(collection string, docs ...docstore.Document) []docstore.Document {
	out := make([]docstore.Document, 0, len(docs))
	for _, d := range docs {
		created, _ := s.Create(context.Background(), collection, d)
		out = append(out, created)
	}
	return out
}

// Count returns the number of records in a collection.
func (s *Store) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[collection])
}

func (s *Store) List(_ context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, &docstore.Error{Op: "list", Collection: collection, Status: 400, Message: err.Error()}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("list", collection); err != nil {
		return nil, err
	}
	var out []docstore.Document
	for _, id := range s.order[collection] {
		doc := s.records[collection][id]
		if q.Match(doc) {
			out = append(out, doc.Clone())
		}
	}
	q.SortDocuments(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, collection, id string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failure("get", collection); err != nil {
		return nil, err
	}
	doc, ok := s.records[collection][id]
	if !ok {
		return nil, docstore.NotFound("get", collection, id)
	}
	return doc.Clone(), nil
}

func (s *Store) Create(_ context.Context, collection string, data docstore.Document) (docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("create", collection); err != nil {
		return nil, err
	}
	doc := data.Clone()
	id := doc.ID()
	if id == "" {
		id = uuid.NewString()
	}
	doc["id"] = id
	stamp := s.now().UTC().Format(time.RFC3339Nano)
	doc["created"] = stamp
	doc["updated"] = stamp

	if s.records[collection] == nil {
		s.records[collection] = make(map[string]docstore.Document)
	}
	if _, exists := s.records[collection][id]; !exists {
		s.order[collection] = append(s.order[collection], id)
	}
	s.records[collection][id] = doc
	return doc.Clone(), nil
}

func (s *Store) Update(_ context.Context, collection, id string, patch docstore.Document) (docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("update", collection); err != nil {
		return nil, err
	}
	doc, ok := s.records[collection][id]
	if !ok {
		return nil, docstore.NotFound("update", collection, id)
	}
	for k, v := range patch {
		if k == "id" || k == "created" {
			continue
		}
		doc[k] = v
	}
	doc["updated"] = s.now().UTC().Format(time.RFC3339Nano)
	return doc.Clone(), nil
}

func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure("ping", "")
}

func (s *Store) failure(op, collection string) error {
	if err, ok := s.failures[op+"|"+collection]; ok {
		return err
	}
	if err, ok := s.failures[op+"|"]; ok {
		return err
	}
	return nil
}
