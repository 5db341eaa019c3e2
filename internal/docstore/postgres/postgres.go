// Package postgres stores documents as JSONB rows in a single documents table,
// for deployments that self-host instead of using the hosted backend.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/reservation-service/internal/docstore"
)

// Store implements docstore.Store over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an open pool. Run the migrations before first use.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// BuildListQuery renders the SELECT for a query. Field names travel as parameters.
func BuildListQuery(collection string, q docstore.Query) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT id, data, created, updated FROM documents WHERE collection=$1")
	args := []any{collection}
	for _, f := range q.Filters {
		args = append(args, f.Field)
		fieldIdx := len(args)
		if f.Value == nil {
			if f.Op == docstore.OpEq {
				fmt.Fprintf(&sb, " AND data->>$%d IS NULL", fieldIdx)
			} else {
				fmt.Fprintf(&sb, " AND data->>$%d IS NOT NULL", fieldIdx)
			}
			continue
		}
		args = append(args, docstore.ScalarText(f.Value))
		if f.Op == docstore.OpEq {
			fmt.Fprintf(&sb, " AND data->>$%d = $%d", fieldIdx, len(args))
		} else {
			fmt.Fprintf(&sb, " AND data->>$%d IS DISTINCT FROM $%d", fieldIdx, len(args))
		}
	}
	if q.Sort != "" {
		dir := "ASC"
		field := q.Sort
		if strings.HasPrefix(field, "-") {
			dir = "DESC"
			field = strings.TrimPrefix(field, "-")
		}
		args = append(args, field)
		fmt.Fprintf(&sb, " ORDER BY data->>$%d %s, created ASC", len(args), dir)
	} else {
		sb.WriteString(" ORDER BY created ASC")
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	return sb.String(), args
}

func (s *Store) List(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, &docstore.Error{Op: "list", Collection: collection, Status: http.StatusBadRequest, Message: err.Error()}
	}
	query, args := BuildListQuery(collection, q)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list", collection, err)
	}
	defer rows.Close()

	var out []docstore.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, wrap("list", collection, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", collection, err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	const query = `SELECT id, data, created, updated FROM documents WHERE collection=$1 AND id=$2`
	doc, err := scanDocument(s.pool.QueryRow(ctx, query, collection, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, docstore.NotFound("get", collection, id)
	}
	if err != nil {
		return nil, wrap("get", collection, err)
	}
	return doc, nil
}

func (s *Store) Create(ctx context.Context, collection string, data docstore.Document) (docstore.Document, error) {
	body := stripMeta(data)
	id := data.ID()
	if id == "" {
		id = uuid.NewString()
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &docstore.Error{Op: "create", Collection: collection, Status: http.StatusBadRequest, Message: "encode document", Err: err}
	}

	const query = `
        INSERT INTO documents (collection, id, data)
        VALUES ($1, $2, $3::jsonb)
        RETURNING id, data, created, updated`
	doc, err := scanDocument(s.pool.QueryRow(ctx, query, collection, id, string(payload)))
	if err != nil {
		return nil, wrap("create", collection, err)
	}
	return doc, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, patch docstore.Document) (docstore.Document, error) {
	payload, err := json.Marshal(stripMeta(patch))
	if err != nil {
		return nil, &docstore.Error{Op: "update", Collection: collection, Status: http.StatusBadRequest, Message: "encode patch", Err: err}
	}
	const query = `
        UPDATE documents SET data = data || $3::jsonb, updated = NOW()
        WHERE collection=$1 AND id=$2
        RETURNING id, data, created, updated`
	doc, err := scanDocument(s.pool.QueryRow(ctx, query, collection, id, string(payload)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, docstore.NotFound("update", collection, id)
	}
	if err != nil {
		return nil, wrap("update", collection, err)
	}
	return doc, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return &docstore.Error{Op: "ping", Status: http.StatusServiceUnavailable, Message: "postgres not configured"}
	}
	return s.pool.Ping(ctx)
}

func scanDocument(row pgx.Row) (docstore.Document, error) {
	var (
		id               string
		raw              []byte
		created, updated time.Time
	)
	if err := row.Scan(&id, &raw, &created, &updated); err != nil {
		return nil, err
	}
	doc := docstore.Document{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
	}
	doc["id"] = id
	doc["created"] = created.UTC().Format(time.RFC3339Nano)
	doc["updated"] = updated.UTC().Format(time.RFC3339Nano)
	return doc, nil
}

func stripMeta(d docstore.Document) docstore.Document {
	out := d.Clone()
	delete(out, "id")
	delete(out, "created")
	delete(out, "updated")
	return out
}

func wrap(op, collection string, err error) error {
	return &docstore.Error{Op: op, Collection: collection, Message: err.Error(), Err: err}
}
