package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/reservation-service/internal/docstore"
)

func TestBuildListQuery(t *testing.T) {
	q := docstore.Query{
		Filters: []docstore.Filter{
			docstore.Eq("reservation_date", "2025-03-14"),
			docstore.Eq("party_size", 4),
			docstore.Neq("status", "canceled"),
			docstore.Eq("table_id", nil),
		},
		Sort:  "-start_time",
		Limit: 10,
	}

	sql, args := BuildListQuery("reservations", q)

	assert.Equal(t,
		"SELECT id, data, created, updated FROM documents WHERE collection=$1"+
			" AND data->>$2 = $3 AND data->>$4 = $5 AND data->>$6 IS DISTINCT FROM $7 AND data->>$8 IS NULL"+
			" ORDER BY data->>$9 DESC, created ASC LIMIT $10",
		sql)
	assert.Equal(t, []any{"reservations", "reservation_date", "2025-03-14", "party_size", "4", "status", "canceled", "table_id", "start_time", 10}, args)
}

func TestBuildListQuery_Plain(t *testing.T) {
	sql, args := BuildListQuery("tables", docstore.Query{})
	assert.Equal(t, "SELECT id, data, created, updated FROM documents WHERE collection=$1 ORDER BY created ASC", sql)
	assert.Equal(t, []any{"tables"}, args)
}

func TestStripMeta(t *testing.T) {
	out := stripMeta(docstore.Document{"id": "x", "created": "y", "updated": "z", "name": "A"})
	assert.Equal(t, docstore.Document{"name": "A"}, out)
}
