package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/docstore"
	"github.com/spec-kit/reservation-service/internal/domain"
	"github.com/spec-kit/reservation-service/internal/events"
	"github.com/spec-kit/reservation-service/internal/lock"
	"github.com/spec-kit/reservation-service/internal/observability"
	"github.com/spec-kit/reservation-service/internal/repository"
	"github.com/spec-kit/reservation-service/internal/seating"
	"github.com/spec-kit/reservation-service/pkg/util/errorutil"
)

// ReservationService runs reservation intake: idempotency, seating and escalation.
type ReservationService struct {
	tables       repository.TableRepository
	reservations repository.ReservationRepository
	staffing     *StaffingService
	locker       lock.TableLocker
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger

	defaultBlock int
	policy       seating.FallbackPolicy
	lockTTL      time.Duration
}

// ReservationDependencies bundles collaborators for the reservation service.
type ReservationDependencies struct {
	TableRepo       repository.TableRepository
	ReservationRepo repository.ReservationRepository
	Staffing        *StaffingService
	Locker          lock.TableLocker
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger

	DefaultBlockMinutes int
	FallbackPolicy      seating.FallbackPolicy
	LockTTL             time.Duration
}

// ReservationCreateInput describes an inbound reservation.
type ReservationCreateInput struct {
	Date          string
	StartTime     string
	PartySize     int
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Notes         string
	Source        string
	Section       string
	BlockMinutes  int
	Tags          []string
}

// CreateResult is what intake produced. Decision and Staffing are nil for duplicates.
type CreateResult struct {
	Reservation *domain.Reservation
	Duplicate   bool
	Decision    *seating.Decision
	Staffing    *Result
}

// NewReservationService constructs the service.
func NewReservationService(deps ReservationDependencies) *ReservationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	block := deps.DefaultBlockMinutes
	if block <= 0 {
		block = seating.DefaultBlock
	}
	policy := deps.FallbackPolicy
	if policy == "" {
		policy = seating.FallbackSeatAnyway
	}
	ttl := deps.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	locker := deps.Locker
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	return &ReservationService{
		tables:       deps.TableRepo,
		reservations: deps.ReservationRepo,
		staffing:     deps.Staffing,
		locker:       locker,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       logger,
		defaultBlock: block,
		policy:       policy,
		lockTTL:      ttl,
	}
}

// Create validates and stores a reservation, assigning a table when one fits. An
// identical earlier submission is returned instead with Duplicate set.
func (s *ReservationService) Create(ctx context.Context, input ReservationCreateInput) (*CreateResult, error) {
	res, start, err := s.normalize(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.reservations.FindDuplicate(ctx, repository.DuplicateKey{
		Source:       res.Source,
		Date:         res.Date,
		StartTime:    res.StartTime,
		PartySize:    res.PartySize,
		CustomerName: res.CustomerName,
	})
	if err != nil {
		s.logger.Warn("duplicate lookup failed; continuing as new reservation", zap.Error(err))
	} else if existing != nil {
		return &CreateResult{Reservation: existing, Duplicate: true}, nil
	}

	tables, err := s.tables.List(ctx)
	if err != nil {
		return nil, errorutil.NewUpstreamError(err)
	}
	sameDay, err := s.reservations.ListByDate(ctx, res.Date)
	if err != nil {
		return nil, errorutil.NewUpstreamError(err)
	}

	req := seating.Request{
		PartySize:    res.PartySize,
		Start:        start,
		BlockMinutes: res.BlockMinutes,
		Section:      res.Section,
		Policy:       s.policy,
	}
	decision := seating.Assign(req, tables, sameDay)
	s.metrics.RecordDecision(string(decision.Outcome), decision.Fallback)

	res.TableID = decision.TableID
	res.Section = decision.Section
	res.Tags = mergeTags(res.Tags, decision.Tags)

	if decision.Outcome == seating.OutcomeAssigned && !decision.Fallback {
		release, err := s.claimTable(ctx, req, res)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("release table lock failed", zap.String("table_id", res.TableID), zap.Error(err))
			}
		}()
	}

	if err := s.reservations.Create(ctx, res); err != nil {
		return nil, errorutil.NewUpstreamError(err)
	}

	s.logger.Info("reservation created",
		zap.String("reservation_id", res.ID),
		zap.String("date", res.Date),
		zap.String("start_time", res.StartTime),
		zap.Int("party_size", res.PartySize),
		zap.String("outcome", string(decision.Outcome)),
		zap.String("table_id", res.TableID),
		zap.Bool("fallback", decision.Fallback))
	s.publish(ctx, events.New(events.EventReservationCreated, res.ID, events.ServiceActor(),
		events.ReservationCreatedPayload{
			Date:      res.Date,
			StartTime: res.StartTime,
			PartySize: res.PartySize,
			Source:    res.Source,
			TableID:   res.TableID,
			Outcome:   string(decision.Outcome),
			Fallback:  decision.Fallback,
			Tags:      res.Tags,
		}))

	out := &CreateResult{Reservation: res, Decision: &decision}
	if decision.NeedsStaffing() && s.staffing != nil {
		result := s.staffing.Escalate(ctx, res, decision, sameDay)
		LogResults(s.logger, result)
		out.Staffing = &result
	}
	return out, nil
}

// claimTable locks the chosen table for the day and re-reads its reservations so a
// concurrent intake that took the slot after our snapshot is detected.
func (s *ReservationService) claimTable(ctx context.Context, req seating.Request, res *domain.Reservation) (lock.Release, error) {
	release, err := s.locker.Acquire(ctx, res.TableID, res.Date, s.lockTTL)
	if errors.Is(err, lock.ErrLockHeld) {
		return nil, errorutil.NewRetryableConflict("table is being booked by another request; retry", map[string]any{
			"table_id": res.TableID,
			"date":     res.Date,
		})
	}
	if err != nil {
		s.logger.Warn("table lock unavailable; revalidating without lock",
			zap.String("table_id", res.TableID), zap.Error(err))
		release = func(context.Context) error { return nil }
	}

	current, err := s.reservations.ListByTableAndDate(ctx, res.TableID, res.Date)
	if err != nil {
		_ = release(ctx)
		return nil, errorutil.NewUpstreamError(err)
	}
	if seating.HasConflict(res.TableID, req, current) {
		_ = release(ctx)
		return nil, errorutil.NewRetryableConflict("table was booked concurrently; retry", map[string]any{
			"table_id":   res.TableID,
			"date":       res.Date,
			"start_time": res.StartTime,
		})
	}
	return release, nil
}

func (s *ReservationService) normalize(input ReservationCreateInput) (*domain.Reservation, int, error) {
	missing := []string{}
	if strings.TrimSpace(input.Date) == "" {
		missing = append(missing, "reservation_date")
	}
	if strings.TrimSpace(input.StartTime) == "" {
		missing = append(missing, "start_time")
	}
	if input.PartySize <= 0 {
		missing = append(missing, "party_size")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		missing = append(missing, "customer_name")
	}
	if len(missing) > 0 {
		return nil, 0, errorutil.NewValidationError("reservation_date, start_time, party_size and customer_name are required",
			map[string]any{"fields": missing})
	}

	date, err := seating.ParseDate(input.Date)
	if err != nil {
		return nil, 0, errorutil.NewValidationError(err.Error(), map[string]any{"field": "reservation_date"})
	}
	start, err := seating.ParseClock(input.StartTime)
	if err != nil {
		return nil, 0, errorutil.NewValidationError(err.Error(), map[string]any{"field": "start_time"})
	}
	if input.BlockMinutes < 0 {
		return nil, 0, errorutil.NewValidationError("block_minutes must be positive", map[string]any{"field": "block_minutes"})
	}
	block := input.BlockMinutes
	if block == 0 {
		block = s.defaultBlock
	}

	return &domain.Reservation{
		Date:          date,
		StartTime:     seating.FormatClock(start),
		PartySize:     input.PartySize,
		BlockMinutes:  block,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		Notes:         strings.TrimSpace(input.Notes),
		Status:        domain.ReservationStatusBooked,
		Source:        domain.NormalizeSource(input.Source),
		Section:       strings.TrimSpace(input.Section),
		Tags:          mergeTags(nil, input.Tags),
	}, start, nil
}

// ListByDate returns a day's reservations ordered by start time.
func (s *ReservationService) ListByDate(ctx context.Context, date string) ([]domain.Reservation, error) {
	day, err := seating.ParseDate(date)
	if err != nil {
		return nil, errorutil.NewValidationError(err.Error(), map[string]any{"field": "date"})
	}
	out, err := s.reservations.ListByDate(ctx, day)
	if err != nil {
		return nil, errorutil.NewUpstreamError(err)
	}
	return out, nil
}

// UpdateStatus moves a reservation to a new lifecycle state on behalf of staff.
func (s *ReservationService) UpdateStatus(ctx context.Context, actor *domain.StaffMember, id, status string) (*domain.Reservation, error) {
	next, ok := domain.ParseReservationStatus(status)
	if !ok {
		return nil, errorutil.NewValidationError("unknown reservation status", map[string]any{"status": status})
	}
	updated, err := s.reservations.UpdateStatus(ctx, id, next)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, errorutil.NewNotFound("reservation", map[string]any{"id": id})
	}
	if err != nil {
		return nil, errorutil.NewUpstreamError(err)
	}
	fields := []zap.Field{zap.String("reservation_id", id), zap.String("status", string(next))}
	if actor != nil {
		fields = append(fields, zap.String("staff_id", actor.ID))
	}
	s.logger.Info("reservation status changed", fields...)
	return updated, nil
}

func (s *ReservationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// mergeTags appends extra to base, dropping blanks and case-insensitive repeats.
func mergeTags(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, t := range list {
			t = strings.TrimSpace(t)
			key := strings.ToLower(t)
			if t == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	return out
}
