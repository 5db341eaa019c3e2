package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reservation-service/internal/api/dto"
	"github.com/spec-kit/reservation-service/internal/service"
)

// FloorHandler serves table and staffing views to staff.
type FloorHandler struct {
	service *service.FloorService
}

// NewFloorHandler constructs handler.
func NewFloorHandler(svc *service.FloorService) *FloorHandler {
	return &FloorHandler{service: svc}
}

// Tables GET /api/tables.
func (h *FloorHandler) Tables(c *fiber.Ctx) error {
	tables, err := h.service.ListTables(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.TablesResponse{OK: true, Tables: tables})
}

// StaffingRequests GET /api/staffing-requests?date=&status=.
func (h *FloorHandler) StaffingRequests(c *fiber.Ctx) error {
	requests, err := h.service.ListStaffingRequests(c.UserContext(), c.Query("date"), c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(dto.StaffingRequestsResponse{OK: true, Requests: requests})
}
