// Package seating decides which table a party sits at and what the floor needs when
// nothing fits. Everything here is pure: callers fetch tables and reservations and
// persist the outcome.
package seating

import (
	"sort"
	"strings"

	"github.com/spec-kit/reservation-service/internal/domain"
)

// Outcome of a seating decision.
type Outcome string

const (
	OutcomeAssigned         Outcome = "assigned"
	OutcomeOversize         Outcome = "oversize"
	OutcomeNoTableAvailable Outcome = "no_table_available"
)

// FallbackPolicy decides what happens when every fitting table is already booked.
type FallbackPolicy string

const (
	// FallbackSeatAnyway assigns the smallest fitting table despite the overlap.
	FallbackSeatAnyway FallbackPolicy = "seat_anyway"
	// FallbackStrict leaves the party unassigned and tags it no_table_available.
	FallbackStrict FallbackPolicy = "strict"
)

// ParseFallbackPolicy maps config values onto a policy, defaulting to seat_anyway.
func ParseFallbackPolicy(s string) FallbackPolicy {
	if FallbackPolicy(strings.ToLower(strings.TrimSpace(s))) == FallbackStrict {
		return FallbackStrict
	}
	return FallbackSeatAnyway
}

// Request is a party to seat.
type Request struct {
	PartySize    int
	Start        int // minutes since midnight
	BlockMinutes int
	Section      string
	Policy       FallbackPolicy
}

// Conflict records an existing reservation that blocks a candidate table.
type Conflict struct {
	TableID       string   `json:"table_id"`
	ReservationID string   `json:"reservation_id"`
	Window        Interval `json:"window"`
}

// Trace explains a decision. It is only surfaced to clients in debug mode.
type Trace struct {
	Window              Interval   `json:"window"`
	MaxCapacity         int        `json:"max_capacity"`
	PreferredCandidates []string   `json:"preferred_candidates,omitempty"`
	Candidates          []string   `json:"candidates"`
	Conflicts           []Conflict `json:"conflicts,omitempty"`
	Skipped             []string   `json:"skipped,omitempty"`
	FallbackReason      string     `json:"fallback_reason,omitempty"`
}

// Decision is the result of Assign.
type Decision struct {
	Outcome  Outcome  `json:"outcome"`
	TableID  string   `json:"table_id,omitempty"`
	Section  string   `json:"section,omitempty"`
	Fallback bool     `json:"fallback"`
	Tags     []string `json:"tags,omitempty"`
	Trace    Trace    `json:"trace"`
}

// NeedsStaffing reports whether the floor should be asked for help.
func (d Decision) NeedsStaffing() bool {
	return d.Outcome == OutcomeOversize || d.Outcome == OutcomeNoTableAvailable
}

// Assign picks the smallest conflict-free table that fits the party, preferring the
// requested section. Parties larger than every table are tagged oversize and never
// split across tables. When all fitting tables are booked the request's policy decides
// between overbooking the smallest fit and leaving the party unassigned.
//
// Existing reservations are assumed to occupy their own block_minutes; reservations
// without one are assumed to occupy the request's block.
func Assign(req Request, tables []domain.Table, existing []domain.Reservation) Decision {
	window := Window(req.Start, req.BlockMinutes)
	decision := Decision{Section: req.Section, Trace: Trace{Window: window, Candidates: []string{}}}

	maxCapacity := 0
	for _, t := range tables {
		if t.Capacity > maxCapacity {
			maxCapacity = t.Capacity
		}
	}
	decision.Trace.MaxCapacity = maxCapacity

	if len(tables) > 0 && req.PartySize > maxCapacity {
		decision.Outcome = OutcomeOversize
		decision.Tags = []string{domain.TagOversize}
		return decision
	}

	fitting := fittingTables(tables, req.PartySize, "")
	var preferred []domain.Table
	if req.Section != "" {
		preferred = fittingTables(tables, req.PartySize, req.Section)
	}
	decision.Trace.Candidates = tableIDs(fitting)
	decision.Trace.PreferredCandidates = tableIDs(preferred)

	if len(fitting) == 0 {
		decision.Outcome = OutcomeNoTableAvailable
		decision.Tags = []string{domain.TagNoTableAvailable}
		return decision
	}

	byTable := occupancyByTable(existing, req.BlockMinutes, &decision.Trace)
	checked := make(map[string]bool, len(fitting))
	for _, list := range [][]domain.Table{preferred, fitting} {
		for _, t := range list {
			if checked[t.ID] {
				continue
			}
			checked[t.ID] = true
			conflicts := conflictsFor(t.ID, window, byTable[t.ID])
			if len(conflicts) == 0 {
				return assigned(decision, t, req.Section, false)
			}
			decision.Trace.Conflicts = append(decision.Trace.Conflicts, conflicts...)
		}
	}

	if req.Policy == FallbackStrict {
		decision.Trace.FallbackReason = "all fitting tables booked; strict policy leaves party unassigned"
		decision.Outcome = OutcomeNoTableAvailable
		decision.Tags = []string{domain.TagNoTableAvailable}
		return decision
	}
	decision.Trace.FallbackReason = "all fitting tables booked; seating at smallest fitting table"
	return assigned(decision, fitting[0], req.Section, true)
}

// HasConflict reports whether tableID already holds an active reservation overlapping
// the request window. Reservations listed in ignore are skipped.
func HasConflict(tableID string, req Request, existing []domain.Reservation, ignore ...string) bool {
	skip := make(map[string]bool, len(ignore))
	for _, id := range ignore {
		skip[id] = true
	}
	window := Window(req.Start, req.BlockMinutes)
	for _, r := range existing {
		if r.TableID != tableID || skip[r.ID] || !r.Status.Occupies() {
			continue
		}
		w, ok := reservationWindow(r, req.BlockMinutes)
		if ok && w.Overlaps(window) {
			return true
		}
	}
	return false
}

// CountOverlapping counts active reservations of any table overlapping the window.
func CountOverlapping(window Interval, defaultBlock int, existing []domain.Reservation) int {
	n := 0
	for _, r := range existing {
		if !r.Status.Occupies() {
			continue
		}
		if w, ok := reservationWindow(r, defaultBlock); ok && w.Overlaps(window) {
			n++
		}
	}
	return n
}

func assigned(d Decision, t domain.Table, requestedSection string, fallback bool) Decision {
	d.Outcome = OutcomeAssigned
	d.TableID = t.ID
	d.Fallback = fallback
	if requestedSection == "" {
		d.Section = t.Section
	}
	return d
}

// fittingTables returns tables with capacity >= party, optionally restricted to a
// section, smallest first. Ties keep a deterministic order by id.
func fittingTables(tables []domain.Table, party int, section string) []domain.Table {
	out := make([]domain.Table, 0, len(tables))
	for _, t := range tables {
		if t.Capacity < party {
			continue
		}
		if section != "" && !strings.EqualFold(t.Section, section) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type occupancy struct {
	reservationID string
	window        Interval
}

func occupancyByTable(existing []domain.Reservation, defaultBlock int, trace *Trace) map[string][]occupancy {
	out := make(map[string][]occupancy)
	for _, r := range existing {
		if r.TableID == "" || !r.Status.Occupies() {
			continue
		}
		w, ok := reservationWindow(r, defaultBlock)
		if !ok {
			trace.Skipped = append(trace.Skipped, r.ID)
			continue
		}
		out[r.TableID] = append(out[r.TableID], occupancy{reservationID: r.ID, window: w})
	}
	return out
}

func conflictsFor(tableID string, window Interval, occupied []occupancy) []Conflict {
	var out []Conflict
	for _, o := range occupied {
		if o.window.Overlaps(window) {
			out = append(out, Conflict{TableID: tableID, ReservationID: o.reservationID, Window: o.window})
		}
	}
	return out
}

func reservationWindow(r domain.Reservation, defaultBlock int) (Interval, bool) {
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return Interval{}, false
	}
	block := r.BlockMinutes
	if block <= 0 {
		block = defaultBlock
	}
	return Window(start, block), true
}

func tableIDs(tables []domain.Table) []string {
	ids := make([]string, 0, len(tables))
	for _, t := range tables {
		ids = append(ids, t.ID)
	}
	return ids
}
