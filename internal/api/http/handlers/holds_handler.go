package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reservation-service/internal/api/dto"
	"github.com/spec-kit/reservation-service/internal/service"
)

// HoldsHandler triggers hold application on demand.
type HoldsHandler struct {
	service *service.HoldService
}

// NewHoldsHandler constructs handler.
func NewHoldsHandler(svc *service.HoldService) *HoldsHandler {
	return &HoldsHandler{service: svc}
}

// Apply POST /api/holds/apply.
func (h *HoldsHandler) Apply(c *fiber.Ctx) error {
	report, err := h.service.Apply(c.UserContext())
	if err != nil {
		return err
	}
	resp := dto.HoldsResponse{OK: true, Applied: report.Applied}
	if debugRequested(c) {
		resp.Date = report.Date
		resp.Now = report.Now
		resp.Results = report.Results
	}
	return c.JSON(resp)
}
