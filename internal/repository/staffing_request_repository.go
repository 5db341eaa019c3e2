package repository

import (
	"context"

	"github.com/spec-kit/reservation-service/internal/docstore"
	"github.com/spec-kit/reservation-service/internal/domain"
)

// StaffingRequestRepository persists work requests raised by escalation.
type StaffingRequestRepository interface {
	Create(ctx context.Context, req *domain.StaffingRequest) error
	List(ctx context.Context, filter StaffingRequestFilter) ([]domain.StaffingRequest, error)
}

// StaffingRequestFilter narrows listing; empty fields match everything.
type StaffingRequestFilter struct {
	Date   string
	Status string
}

type staffingRequestRepository struct {
	store docstore.Store
}

// NewStaffingRequestRepository instantiates the repository.
func NewStaffingRequestRepository(store docstore.Store) StaffingRequestRepository {
	return &staffingRequestRepository{store: store}
}

func (r *staffingRequestRepository) Create(ctx context.Context, req *domain.StaffingRequest) error {
	doc, err := r.store.Create(ctx, docstore.CollectionStaffingRequests, docstore.Document{
		"date":       req.Date,
		"start_time": req.StartTime,
		"role":       string(req.Role),
		"quantity":   req.Quantity,
		"reason":     string(req.Reason),
		"status":     req.Status,
		"section":    req.Section,
		"tags":       nonNilTags(req.Tags),
		"notes":      req.Notes,
	})
	if err != nil {
		return err
	}
	*req = staffingRequestFromDocument(doc)
	return nil
}

func (r *staffingRequestRepository) List(ctx context.Context, filter StaffingRequestFilter) ([]domain.StaffingRequest, error) {
	q := docstore.Query{Sort: "start_time"}
	if filter.Date != "" {
		q.Filters = append(q.Filters, docstore.Eq("date", filter.Date))
	}
	if filter.Status != "" {
		q.Filters = append(q.Filters, docstore.Eq("status", filter.Status))
	}
	docs, err := r.store.List(ctx, docstore.CollectionStaffingRequests, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.StaffingRequest, 0, len(docs))
	for _, d := range docs {
		out = append(out, staffingRequestFromDocument(d))
	}
	return out, nil
}

func staffingRequestFromDocument(d docstore.Document) domain.StaffingRequest {
	return domain.StaffingRequest{
		ID:        d.ID(),
		Date:      dateOnly(d.String("date")),
		StartTime: d.String("start_time"),
		Role:      domain.StaffRole(d.String("role")),
		Quantity:  d.Int("quantity"),
		Reason:    domain.StaffingReason(d.String("reason")),
		Status:    d.String("status"),
		Section:   d.String("section"),
		Tags:      d.Strings("tags"),
		Notes:     d.String("notes"),
		CreatedAt: d.Time("created"),
	}
}
