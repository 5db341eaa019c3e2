package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/domain"
	"github.com/spec-kit/reservation-service/internal/events"
	"github.com/spec-kit/reservation-service/internal/observability"
	"github.com/spec-kit/reservation-service/internal/repository"
	"github.com/spec-kit/reservation-service/internal/seating"
)

// OpStaffingRequest names staffing escalation results.
const OpStaffingRequest = "staffing_request"

// StaffingService raises work requests for parties that could not be auto-seated.
type StaffingService struct {
	requests      repository.StaffingRequestRepository
	onCall        repository.OnCallRepository
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
	busyThreshold int
	defaultBlock  int
}

// StaffingDependencies bundles collaborators for the staffing service.
type StaffingDependencies struct {
	RequestRepo   repository.StaffingRequestRepository
	OnCallRepo    repository.OnCallRepository
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	BusyThreshold int
	DefaultBlock  int
}

// NewStaffingService constructs the service.
func NewStaffingService(deps StaffingDependencies) *StaffingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	block := deps.DefaultBlock
	if block <= 0 {
		block = seating.DefaultBlock
	}
	return &StaffingService{
		requests:      deps.RequestRepo,
		onCall:        deps.OnCallRepo,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        logger,
		busyThreshold: deps.BusyThreshold,
		defaultBlock:  block,
	}
}

// Escalate creates one open staffing request for res. sameDay holds the other active
// reservations of the day and sizes the request. It never returns an error: the
// outcome is reported in the Result.
func (s *StaffingService) Escalate(ctx context.Context, res *domain.Reservation, decision seating.Decision, sameDay []domain.Reservation) Result {
	target := res.ID

	roster, err := s.onCall.ListByDate(ctx, res.Date)
	if err != nil {
		s.logger.Warn("on-call roster unavailable; using default role",
			zap.String("date", res.Date), zap.Error(err))
		roster = nil
	}

	block := res.BlockMinutes
	if block <= 0 {
		block = s.defaultBlock
	}
	start, err := seating.ParseClock(res.StartTime)
	if err != nil {
		s.metrics.RecordStaffing("", err)
		return failed(OpStaffingRequest, target, err)
	}
	overlapping := seating.CountOverlapping(seating.Window(start, block), block, sameDay)

	plan, err := seating.PlanStaffing(decision, overlapping, s.busyThreshold, roster)
	if err != nil {
		s.metrics.RecordStaffing("", err)
		return failed(OpStaffingRequest, target, err)
	}

	req := &domain.StaffingRequest{
		Date:      res.Date,
		StartTime: res.StartTime,
		Role:      plan.Role,
		Quantity:  plan.Quantity,
		Reason:    plan.Reason,
		Status:    domain.StaffingRequestStatusOpen,
		Section:   res.Section,
		Tags:      []string{domain.StaffingReservationTagPref + res.ID},
		Notes:     staffingNotes(res, plan, overlapping),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		s.metrics.RecordStaffing(string(plan.Role), err)
		return failed(OpStaffingRequest, target, err)
	}
	s.metrics.RecordStaffing(string(plan.Role), nil)

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.New(events.EventStaffingRequested, res.ID, events.ServiceActor(),
			events.StaffingRequestedPayload{
				RequestID: req.ID,
				Date:      req.Date,
				StartTime: req.StartTime,
				Role:      req.Role,
				Quantity:  req.Quantity,
				Reason:    req.Reason,
				Section:   req.Section,
				OnCall:    plan.OnCall,
			}))
	}
	return succeeded(OpStaffingRequest, target, req)
}

func staffingNotes(res *domain.Reservation, plan seating.StaffingPlan, overlapping int) string {
	onCall := "no one on call"
	if plan.OnCall {
		onCall = "on-call " + string(plan.Role) + " available"
	}
	return fmt.Sprintf("party of %d for %s at %s; %d overlapping reservations; %s",
		res.PartySize, res.CustomerName, res.StartTime, overlapping, onCall)
}
