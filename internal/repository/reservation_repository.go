package repository

import (
	"context"
	"strings"

	"github.com/spec-kit/reservation-service/internal/docstore"
	"github.com/spec-kit/reservation-service/internal/domain"
)

// ReservationRepository handles persistence for reservations.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	ListByDate(ctx context.Context, date string) ([]domain.Reservation, error)
	ListByTableAndDate(ctx context.Context, tableID, date string) ([]domain.Reservation, error)
	FindDuplicate(ctx context.Context, key DuplicateKey) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error)
}

// DuplicateKey identifies a resubmitted reservation. Source and CustomerName match
// ignoring case.
type DuplicateKey struct {
	Source       domain.ReservationSource
	Date         string
	StartTime    string
	PartySize    int
	CustomerName string
}

type reservationRepository struct {
	store docstore.Store
}

// NewReservationRepository instantiates the repository.
func NewReservationRepository(store docstore.Store) ReservationRepository {
	return &reservationRepository{store: store}
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	doc, err := r.store.Create(ctx, docstore.CollectionReservations, reservationToDocument(res))
	if err != nil {
		return err
	}
	*res = reservationFromDocument(doc)
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionReservations, id)
	if err != nil {
		return nil, err
	}
	res := reservationFromDocument(doc)
	return &res, nil
}

func (r *reservationRepository) ListByDate(ctx context.Context, date string) ([]domain.Reservation, error) {
	return r.list(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("reservation_date", date)},
		Sort:    "start_time",
	})
}

func (r *reservationRepository) ListByTableAndDate(ctx context.Context, tableID, date string) ([]domain.Reservation, error) {
	return r.list(ctx, docstore.Query{
		Filters: []docstore.Filter{
			docstore.Eq("reservation_date", date),
			docstore.Eq("table_id", tableID),
		},
		Sort: "start_time",
	})
}

// FindDuplicate returns nil, nil when no matching reservation exists. Store filters
// compare case-sensitively, so source is matched here after normalization rather than
// in the query; other clients may have written "Phone" or "OpenTable".
func (r *reservationRepository) FindDuplicate(ctx context.Context, key DuplicateKey) (*domain.Reservation, error) {
	candidates, err := r.list(ctx, docstore.Where(
		docstore.Eq("reservation_date", key.Date),
		docstore.Eq("start_time", key.StartTime),
		docstore.Eq("party_size", key.PartySize),
	))
	if err != nil {
		return nil, err
	}
	source := domain.NormalizeSource(string(key.Source))
	name := strings.TrimSpace(key.CustomerName)
	for i := range candidates {
		if candidates[i].Source != source {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(candidates[i].CustomerName), name) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	doc, err := r.store.Update(ctx, docstore.CollectionReservations, id, docstore.Document{"status": string(status)})
	if err != nil {
		return nil, err
	}
	res := reservationFromDocument(doc)
	return &res, nil
}

func (r *reservationRepository) list(ctx context.Context, q docstore.Query) ([]domain.Reservation, error) {
	docs, err := r.store.List(ctx, docstore.CollectionReservations, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(docs))
	for _, d := range docs {
		out = append(out, reservationFromDocument(d))
	}
	return out, nil
}

func reservationToDocument(r *domain.Reservation) docstore.Document {
	doc := docstore.Document{
		"reservation_date": r.Date,
		"start_time":       r.StartTime,
		"party_size":       r.PartySize,
		"block_minutes":    r.BlockMinutes,
		"customer_name":    r.CustomerName,
		"customer_phone":   r.CustomerPhone,
		"customer_email":   r.CustomerEmail,
		"notes":            r.Notes,
		"status":           string(r.Status),
		"source":           string(r.Source),
		"table_id":         r.TableID,
		"section":          r.Section,
		"tags":             nonNilTags(r.Tags),
	}
	if r.ID != "" {
		doc["id"] = r.ID
	}
	return doc
}

func reservationFromDocument(d docstore.Document) domain.Reservation {
	return domain.Reservation{
		ID:            d.ID(),
		Date:          dateOnly(d.String("reservation_date")),
		StartTime:     d.String("start_time"),
		PartySize:     d.Int("party_size"),
		BlockMinutes:  d.Int("block_minutes"),
		CustomerName:  d.String("customer_name"),
		CustomerPhone: d.String("customer_phone"),
		CustomerEmail: d.String("customer_email"),
		Notes:         d.String("notes"),
		Status:        domain.NormalizeStatus(d.String("status")),
		Source:        domain.NormalizeSource(d.String("source")),
		TableID:       d.String("table_id"),
		Section:       d.String("section"),
		Tags:          d.Strings("tags"),
		CreatedAt:     d.Time("created"),
		UpdatedAt:     d.Time("updated"),
	}
}

// dateOnly trims a stored datetime ("2025-03-14 00:00:00.000Z") to its day.
func dateOnly(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
