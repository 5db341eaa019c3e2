package dto

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spec-kit/reservation-service/internal/domain"
	"github.com/spec-kit/reservation-service/internal/seating"
	"github.com/spec-kit/reservation-service/internal/service"
)

// FlexInt accepts a JSON number or a numeric string. Booking widgets post form
// values as strings. Fractional values are rejected rather than truncated.
type FlexInt int

// ErrNotInteger is returned for numeric values with a fractional part.
var ErrNotInteger = errors.New("value must be a whole number")

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return err
	}
	if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return fmt.Errorf("%w: %s", ErrNotInteger, s)
	}
	*f = FlexInt(int(n))
	return nil
}

// ReservationCreateRequest payload.
type ReservationCreateRequest struct {
	ReservationDate string   `json:"reservation_date" validate:"required,ymd"`
	StartTime       string   `json:"start_time" validate:"required,clock"`
	PartySize       FlexInt  `json:"party_size" validate:"required,gt=0"`
	CustomerName    string   `json:"customer_name" validate:"required,max=200"`
	CustomerPhone   string   `json:"customer_phone" validate:"omitempty,max=40"`
	CustomerEmail   string   `json:"customer_email" validate:"omitempty,email"`
	Notes           string   `json:"notes" validate:"omitempty,max=2000"`
	Source          string   `json:"source" validate:"omitempty,max=32"`
	Section         string   `json:"section" validate:"omitempty,max=64"`
	BlockMinutes    FlexInt  `json:"block_minutes" validate:"omitempty,min=15,max=720"`
	Tags            []string `json:"tags" validate:"omitempty,max=20,dive,max=64"`
}

// Input converts the payload for the reservation service.
func (r ReservationCreateRequest) Input() service.ReservationCreateInput {
	return service.ReservationCreateInput{
		Date:          r.ReservationDate,
		StartTime:     r.StartTime,
		PartySize:     int(r.PartySize),
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CustomerEmail: r.CustomerEmail,
		Notes:         r.Notes,
		Source:        r.Source,
		Section:       r.Section,
		BlockMinutes:  int(r.BlockMinutes),
		Tags:          r.Tags,
	}
}

// ReservationStatusRequest payload for staff transitions.
type ReservationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=booked seated canceled cancelled completed no_show BOOKED SEATED CANCELED CANCELLED COMPLETED NO_SHOW"`
}

// ReservationResponse is the envelope for intake.
type ReservationResponse struct {
	OK          bool                `json:"ok"`
	Duplicate   bool                `json:"duplicate,omitempty"`
	Reservation *domain.Reservation `json:"reservation"`
	Debug       *ReservationDebug   `json:"debug,omitempty"`
}

// ReservationDebug exposes the seating decision when debug=1.
type ReservationDebug struct {
	Decision *seating.Decision `json:"decision,omitempty"`
	Staffing *service.Result   `json:"staffing,omitempty"`
}

// ReservationListResponse lists one day's reservations.
type ReservationListResponse struct {
	OK           bool                 `json:"ok"`
	Date         string               `json:"date"`
	Reservations []domain.Reservation `json:"reservations"`
}

// HoldsResponse reports a hold sweep. Results are only included with debug=1.
type HoldsResponse struct {
	OK      bool             `json:"ok"`
	Applied int              `json:"applied"`
	Date    string           `json:"date,omitempty"`
	Now     string           `json:"now,omitempty"`
	Results []service.Result `json:"results,omitempty"`
}

// TablesResponse lists the inventory.
type TablesResponse struct {
	OK     bool           `json:"ok"`
	Tables []domain.Table `json:"tables"`
}

// StaffingRequestsResponse lists work requests.
type StaffingRequestsResponse struct {
	OK       bool                     `json:"ok"`
	Requests []domain.StaffingRequest `json:"requests"`
}

// ErrorBody is the error half of every envelope.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	OK    bool      `json:"ok"`
	Error ErrorBody `json:"error"`
}
