package repository

import (
	"context"

	"github.com/spec-kit/reservation-service/internal/docstore"
	"github.com/spec-kit/reservation-service/internal/domain"
)

// TableRepository reads the table inventory and writes floor status.
type TableRepository interface {
	List(ctx context.Context) ([]domain.Table, error)
	GetByID(ctx context.Context, id string) (*domain.Table, error)
	UpdateStatus(ctx context.Context, id string, status domain.TableStatus) error
}

type tableRepository struct {
	store docstore.Store
}

// NewTableRepository instantiates the repository.
func NewTableRepository(store docstore.Store) TableRepository {
	return &tableRepository{store: store}
}

func (r *tableRepository) List(ctx context.Context) ([]domain.Table, error) {
	docs, err := r.store.List(ctx, docstore.CollectionTables, docstore.Query{Sort: "capacity"})
	if err != nil {
		return nil, err
	}
	tables := make([]domain.Table, 0, len(docs))
	for _, d := range docs {
		tables = append(tables, tableFromDocument(d))
	}
	return tables, nil
}

func (r *tableRepository) GetByID(ctx context.Context, id string) (*domain.Table, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionTables, id)
	if err != nil {
		return nil, err
	}
	t := tableFromDocument(doc)
	return &t, nil
}

func (r *tableRepository) UpdateStatus(ctx context.Context, id string, status domain.TableStatus) error {
	_, err := r.store.Update(ctx, docstore.CollectionTables, id, docstore.Document{"status": string(status)})
	return err
}

func tableFromDocument(d docstore.Document) domain.Table {
	return domain.Table{
		ID:       d.ID(),
		Name:     d.String("name"),
		Capacity: d.Int("capacity"),
		Section:  d.String("section"),
		Status:   domain.TableStatus(d.String("status")),
	}
}
