package service

import (
	"context"

	"github.com/spec-kit/reservation-service/internal/domain"
	"github.com/spec-kit/reservation-service/internal/repository"
	"github.com/spec-kit/reservation-service/internal/seating"
	"github.com/spec-kit/reservation-service/pkg/util/errorutil"
)

// FloorService serves read-only floor views for staff.
type FloorService struct {
	tables   repository.TableRepository
	staffing repository.StaffingRequestRepository
}

// NewFloorService constructs the service.
func NewFloorService(tables repository.TableRepository, staffing repository.StaffingRequestRepository) *FloorService {
	return &FloorService{tables: tables, staffing: staffing}
}

// ListTables returns the inventory, smallest first.
func (s *FloorService) ListTables(ctx context.Context) ([]domain.Table, error) {
	tables, err := s.tables.List(ctx)
	if err != nil {
		return nil, errorutil.NewUpstreamError(err)
	}
	return tables, nil
}

// ListStaffingRequests filters work requests by day and status; both are optional.
func (s *FloorService) ListStaffingRequests(ctx context.Context, date, status string) ([]domain.StaffingRequest, error) {
	filter := repository.StaffingRequestFilter{Status: status}
	if date != "" {
		day, err := seating.ParseDate(date)
		if err != nil {
			return nil, errorutil.NewValidationError(err.Error(), map[string]any{"field": "date"})
		}
		filter.Date = day
	}
	out, err := s.staffing.List(ctx, filter)
	if err != nil {
		return nil, errorutil.NewUpstreamError(err)
	}
	return out, nil
}
