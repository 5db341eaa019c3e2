package repository

import (
	"context"

	"github.com/spec-kit/reservation-service/internal/docstore"
	"github.com/spec-kit/reservation-service/internal/domain"
)

// OnCallRepository reads the on-call roster.
type OnCallRepository interface {
	ListByDate(ctx context.Context, date string) ([]domain.OnCallEntry, error)
}

type onCallRepository struct {
	store docstore.Store
}

// NewOnCallRepository instantiates the repository.
func NewOnCallRepository(store docstore.Store) OnCallRepository {
	return &onCallRepository{store: store}
}

func (r *onCallRepository) ListByDate(ctx context.Context, date string) ([]domain.OnCallEntry, error) {
	docs, err := r.store.List(ctx, docstore.CollectionOnCall, docstore.Where(docstore.Eq("date", date)))
	if err != nil {
		return nil, err
	}
	out := make([]domain.OnCallEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.OnCallEntry{
			ID:        d.ID(),
			Date:      dateOnly(d.String("date")),
			Role:      domain.StaffRole(d.String("role")),
			Available: d.Bool("available"),
			StaffName: d.String("staff_name"),
		})
	}
	return out, nil
}
