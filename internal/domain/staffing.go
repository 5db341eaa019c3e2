package domain

import "time"

// StaffingReason explains why extra staff was requested.
type StaffingReason string

const (
	StaffingReasonOversize     StaffingReason = "reservation_oversize"
	StaffingReasonNoTable      StaffingReason = "no_table_available"
	StaffingRequestStatusOpen                 = "open"
	StaffingReservationTagPref                = "reservation:"
)

// StaffingRequest asks the floor for an extra host or server.
type StaffingRequest struct {
	ID        string         `json:"id"`
	Date      string         `json:"date"`
	StartTime string         `json:"start_time"`
	Role      StaffRole      `json:"role"`
	Quantity  int            `json:"quantity"`
	Reason    StaffingReason `json:"reason"`
	Status    string         `json:"status"`
	Section   string         `json:"section,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
}

// OnCallEntry says whether someone in a role can be called in on a date.
type OnCallEntry struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Role      StaffRole `json:"role"`
	Available bool      `json:"available"`
	StaffName string    `json:"staff_name,omitempty"`
}
