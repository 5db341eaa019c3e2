package domain

import (
	"strings"
	"time"
)

// ReservationStatus enumerates reservation lifecycle states.
type ReservationStatus string

const (
	ReservationStatusBooked    ReservationStatus = "booked"
	ReservationStatusSeated    ReservationStatus = "seated"
	ReservationStatusCanceled  ReservationStatus = "canceled"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// NormalizeStatus lowercases a status and folds the "cancelled" spelling.
func NormalizeStatus(s string) ReservationStatus {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "cancelled" {
		v = string(ReservationStatusCanceled)
	}
	return ReservationStatus(v)
}

// ParseReservationStatus accepts only the known lifecycle states.
func ParseReservationStatus(s string) (ReservationStatus, bool) {
	st := NormalizeStatus(s)
	switch st {
	case ReservationStatusBooked, ReservationStatusSeated, ReservationStatusCanceled,
		ReservationStatusCompleted, ReservationStatusNoShow:
		return st, true
	}
	return "", false
}

// Occupies reports whether a reservation in this status still blocks its table.
func (s ReservationStatus) Occupies() bool {
	switch NormalizeStatus(string(s)) {
	case ReservationStatusCanceled, ReservationStatusCompleted, ReservationStatusNoShow:
		return false
	}
	return true
}

// Holdable reports whether the table should be held ahead of the reservation.
func (s ReservationStatus) Holdable() bool {
	switch NormalizeStatus(string(s)) {
	case ReservationStatusBooked, ReservationStatusSeated:
		return true
	}
	return false
}

// ReservationSource identifies the intake channel.
type ReservationSource string

const (
	SourceOpenTable ReservationSource = "opentable"
	SourcePhone     ReservationSource = "phone"
	SourceWeb       ReservationSource = "web"
)

// NormalizeSource maps unknown channels to opentable.
func NormalizeSource(s string) ReservationSource {
	switch src := ReservationSource(strings.ToLower(strings.TrimSpace(s))); src {
	case SourcePhone, SourceWeb, SourceOpenTable:
		return src
	}
	return SourceOpenTable
}

// Reservation tags written by the seating decision.
const (
	TagOversize         = "oversize"
	TagNoTableAvailable = "no_table_available"
)

// Reservation is a booked party. Date is YYYY-MM-DD and StartTime HH:MM in restaurant time.
type Reservation struct {
	ID            string            `json:"id"`
	Date          string            `json:"reservation_date"`
	StartTime     string            `json:"start_time"`
	PartySize     int               `json:"party_size"`
	BlockMinutes  int               `json:"block_minutes,omitempty"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone,omitempty"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Status        ReservationStatus `json:"status"`
	Source        ReservationSource `json:"source"`
	TableID       string            `json:"table_id,omitempty"`
	Section       string            `json:"section,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	CreatedAt     time.Time         `json:"created_at,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at,omitempty"`
}

// HasTag reports whether tag is present, ignoring case.
func (r *Reservation) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
