package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reservation-service/internal/api/dto"
	"github.com/spec-kit/reservation-service/internal/auth"
	"github.com/spec-kit/reservation-service/internal/service"
	"github.com/spec-kit/reservation-service/internal/validation"
	apperrors "github.com/spec-kit/reservation-service/pkg/util/errorutil"
)

// ReservationsHandler serves reservation intake and the staff reservation views.
type ReservationsHandler struct {
	service  *service.ReservationService
	location *time.Location
	now      func() time.Time
}

// NewReservationsHandler constructs handler. Dates default to today in loc.
func NewReservationsHandler(svc *service.ReservationService, loc *time.Location) *ReservationsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReservationsHandler{service: svc, location: loc, now: time.Now}
}

// Create POST /api/reservations.
func (h *ReservationsHandler) Create(c *fiber.Ctx) error {
	var req dto.ReservationCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return err
	}

	out, err := h.service.Create(c.UserContext(), req.Input())
	if err != nil {
		return err
	}

	resp := dto.ReservationResponse{OK: true, Duplicate: out.Duplicate, Reservation: out.Reservation}
	if debugRequested(c) && !out.Duplicate {
		resp.Debug = &dto.ReservationDebug{Decision: out.Decision, Staffing: out.Staffing}
	}
	status := http.StatusCreated
	if out.Duplicate {
		status = http.StatusOK
	}
	return c.Status(status).JSON(resp)
}

// List GET /api/reservations?date=YYYY-MM-DD.
func (h *ReservationsHandler) List(c *fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		date = h.now().In(h.location).Format("2006-01-02")
	}
	reservations, err := h.service.ListByDate(c.UserContext(), date)
	if err != nil {
		return err
	}
	return c.JSON(dto.ReservationListResponse{OK: true, Date: date, Reservations: reservations})
}

// UpdateStatus PATCH /api/reservations/:id/status.
func (h *ReservationsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.ReservationStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return err
	}
	updated, err := h.service.UpdateStatus(c.UserContext(), auth.StaffFromContext(c), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.ReservationResponse{OK: true, Reservation: updated})
}

func debugRequested(c *fiber.Ctx) bool {
	switch c.Query("debug") {
	case "1", "true", "yes":
		return true
	}
	return false
}
