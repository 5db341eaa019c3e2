package docstore

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Op is a filter comparison.
type Op string

const (
	OpEq  Op = "="
	OpNeq Op = "!="
)

// Filter compares one field against a scalar value.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Eq matches field == value.
func Eq(field string, value any) Filter { return Filter{Field: field, Op: OpEq, Value: value} }

// Neq matches field != value.
func Neq(field string, value any) Filter { return Filter{Field: field, Op: OpNeq, Value: value} }

// Query is a conjunction of filters with optional ordering and limit.
// Sort is a field name, prefixed with "-" for descending order.
type Query struct {
	Filters []Filter
	Sort    string
	Limit   int
}

// Where starts a query from filters.
func Where(filters ...Filter) Query { return Query{Filters: filters} }

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidField reports whether a name is safe to place in a backend expression.
func ValidField(name string) bool { return fieldPattern.MatchString(name) }

// Validate rejects filters and sorts on malformed field names.
func (q Query) Validate() error {
	for _, f := range q.Filters {
		if !ValidField(f.Field) {
			return fmt.Errorf("invalid filter field %q", f.Field)
		}
		if f.Op != OpEq && f.Op != OpNeq {
			return fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}
	if q.Sort != "" && !ValidField(strings.TrimPrefix(q.Sort, "-")) {
		return fmt.Errorf("invalid sort field %q", q.Sort)
	}
	return nil
}

// Match evaluates the filters against a document in memory.
func (q Query) Match(d Document) bool {
	for _, f := range q.Filters {
		eq := ScalarText(d[f.Field]) == ScalarText(f.Value)
		if (f.Op == OpEq) != eq {
			return false
		}
	}
	return true
}

// SortDocuments orders docs in place by q.Sort; numbers compare numerically.
func (q Query) SortDocuments(docs []Document) {
	if q.Sort == "" {
		return
	}
	field := strings.TrimPrefix(q.Sort, "-")
	desc := strings.HasPrefix(q.Sort, "-")
	sort.SliceStable(docs, func(i, j int) bool {
		less := lessValue(docs[i][field], docs[j][field])
		if desc {
			return lessValue(docs[j][field], docs[i][field])
		}
		return less
	})
}

// ScalarText renders a scalar the way JSON text extraction would ("3", "true", "abc").
func ScalarText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func lessValue(a, b any) bool {
	af, aErr := strconv.ParseFloat(ScalarText(a), 64)
	bf, bErr := strconv.ParseFloat(ScalarText(b), 64)
	if aErr == nil && bErr == nil {
		return af < bf
	}
	return ScalarText(a) < ScalarText(b)
}
