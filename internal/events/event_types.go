package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/reservation-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReservationCreated EventType = "reservation_created"
	EventStaffingRequested  EventType = "staffing_requested"
	EventTableHeld          EventType = "table_held"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	ReservationID string      `json:"reservation_id,omitempty"`
	Actor         Actor       `json:"actor"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, reservationID string, actor Actor, payload interface{}) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ReservationID: reservationID,
		Actor:         actor,
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
	}
}

// ServiceActor is the actor for intake and background work.
func ServiceActor() Actor {
	return Actor{Type: domain.SubjectTypeService}
}

// ReservationCreatedPayload payload.
type ReservationCreatedPayload struct {
	Date      string                   `json:"reservation_date"`
	StartTime string                   `json:"start_time"`
	PartySize int                      `json:"party_size"`
	Source    domain.ReservationSource `json:"source"`
	TableID   string                   `json:"table_id,omitempty"`
	Outcome   string                   `json:"outcome"`
	Fallback  bool                     `json:"fallback"`
	Tags      []string                 `json:"tags,omitempty"`
}

// StaffingRequestedPayload payload.
type StaffingRequestedPayload struct {
	RequestID string                `json:"request_id,omitempty"`
	Date      string                `json:"date"`
	StartTime string                `json:"start_time"`
	Role      domain.StaffRole      `json:"role"`
	Quantity  int                   `json:"quantity"`
	Reason    domain.StaffingReason `json:"reason"`
	Section   string                `json:"section,omitempty"`
	OnCall    bool                  `json:"on_call"`
}

// TableHeldPayload payload.
type TableHeldPayload struct {
	TableID   string `json:"table_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
}
