package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/domain"
	"github.com/spec-kit/reservation-service/internal/events"
	"github.com/spec-kit/reservation-service/internal/observability"
	"github.com/spec-kit/reservation-service/internal/repository"
	"github.com/spec-kit/reservation-service/internal/seating"
	"github.com/spec-kit/reservation-service/pkg/util/errorutil"
)

// OpTableHold names hold application results.
const OpTableHold = "table_hold"

// HoldService marks tables reserved ahead of their reservations.
type HoldService struct {
	tables       repository.TableRepository
	reservations repository.ReservationRepository
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
	location     *time.Location
	holdMinutes  int
	defaultBlock int
	now          func() time.Time
}

// HoldDependencies bundles collaborators for the hold service.
type HoldDependencies struct {
	TableRepo       repository.TableRepository
	ReservationRepo repository.ReservationRepository
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
	Location        *time.Location
	HoldMinutes     int
	DefaultBlock    int
	Now             func() time.Time
}

// HoldReport summarizes one sweep.
type HoldReport struct {
	Date    string   `json:"date"`
	Now     string   `json:"now"`
	Applied int      `json:"applied"`
	Results []Result `json:"results"`
}

// NewHoldService constructs the service.
func NewHoldService(deps HoldDependencies) *HoldService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	hold := deps.HoldMinutes
	if hold <= 0 {
		hold = seating.DefaultHoldMinutes
	}
	block := deps.DefaultBlock
	if block <= 0 {
		block = seating.DefaultBlock
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &HoldService{
		tables:       deps.TableRepo,
		reservations: deps.ReservationRepo,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       logger,
		location:     loc,
		holdMinutes:  hold,
		defaultBlock: block,
		now:          now,
	}
}

// Apply marks the table of every booked or seated reservation of today whose hold
// window contains the current time as reserved. Tables are updated independently and
// at most once per sweep; per-table failures are reported in the results only.
func (s *HoldService) Apply(ctx context.Context) (*HoldReport, error) {
	now := s.now().In(s.location)
	date := now.Format("2006-01-02")
	minute := seating.MinuteOfDay(now)

	reservations, err := s.reservations.ListByDate(ctx, date)
	if err != nil {
		return nil, errorutil.NewUpstreamError(err)
	}

	report := &HoldReport{Date: date, Now: seating.FormatClock(minute), Results: []Result{}}
	held := make(map[string]bool)
	for _, r := range reservations {
		if !seating.ShouldHold(r, minute, s.holdMinutes, s.defaultBlock) || held[r.TableID] {
			continue
		}
		held[r.TableID] = true

		err := s.tables.UpdateStatus(ctx, r.TableID, domain.TableStatusReserved)
		s.metrics.RecordHold(err)
		if err != nil {
			report.Results = append(report.Results, failed(OpTableHold, r.TableID, err))
			continue
		}
		report.Applied++
		report.Results = append(report.Results, succeeded(OpTableHold, r.TableID, map[string]string{
			"reservation_id": r.ID,
			"start_time":     r.StartTime,
		}))
		if s.dispatcher != nil {
			_ = s.dispatcher.Publish(ctx, events.New(events.EventTableHeld, r.ID, events.ServiceActor(),
				events.TableHeldPayload{TableID: r.TableID, Date: date, StartTime: r.StartTime}))
		}
	}

	LogResults(s.logger, report.Results...)
	s.logger.Info("holds applied",
		zap.String("date", date),
		zap.String("now", report.Now),
		zap.Int("applied", report.Applied),
		zap.Int("attempted", len(report.Results)))
	return report, nil
}
