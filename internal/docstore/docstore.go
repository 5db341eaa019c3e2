// Package docstore is the document-store boundary. Every collection the service reads
// or writes goes through Store; drivers live in subpackages.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Collection names.
const (
	CollectionTables           = "tables"
	CollectionReservations     = "reservations"
	CollectionStaff            = "staff"
	CollectionOnCall           = "on_call"
	CollectionStaffingRequests = "work_requests"
)

// Store is a minimal document database: list with filters, get, create and patch.
type Store interface {
	List(ctx context.Context, collection string, q Query) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Create(ctx context.Context, collection string, data Document) (Document, error)
	Update(ctx context.Context, collection, id string, patch Document) (Document, error)
	Ping(ctx context.Context) error
}

// ErrNotFound is matched by errors.Is for missing records.
var ErrNotFound = errors.New("record not found")

// Error is a failed store call. Status mirrors the store's HTTP status (0 when the
// call never produced one) and Data carries its raw error payload.
type Error struct {
	Op         string
	Collection string
	Status     int
	Message    string
	Data       map[string]any
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Collection != "" {
		return fmt.Sprintf("docstore %s %s: %s", e.Op, e.Collection, msg)
	}
	return fmt.Sprintf("docstore %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// StatusCode reports the store's HTTP status, defaulting to 500.
func (e *Error) StatusCode() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// Details exposes the raw error payload.
func (e *Error) Details() map[string]any {
	return e.Data
}

// NotFound builds a 404 Error.
func NotFound(op, collection, id string) *Error {
	return &Error{Op: op, Collection: collection, Status: http.StatusNotFound, Message: "record " + id + " not found", Err: ErrNotFound}
}

// Document is one record. The id lives under "id"; timestamps under "created" and "updated".
type Document map[string]any

// ID returns the record id.
func (d Document) ID() string { return d.String("id") }

// String returns a string field, or "" when missing.
func (d Document) String(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int coerces numeric and numeric-string fields.
func (d Document) Int(key string) int {
	switch v := d[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}

// Bool coerces boolean and boolean-string fields.
func (d Document) Bool(key string) bool {
	switch v := d[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Strings reads list fields stored as arrays or as a comma separated string.
func (d Document) Strings(key string) []string {
	switch v := d[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

// Time parses RFC3339 and the "2006-01-02 15:04:05.000Z" timestamp format.
func (d Document) Time(key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.000Z", "2006-01-02 15:04:05Z07:00"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// Clone returns a shallow copy.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
