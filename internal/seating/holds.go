package seating

import "github.com/spec-kit/reservation-service/internal/domain"

// DefaultHoldMinutes is how long before a reservation its table is held.
const DefaultHoldMinutes = 120

// HoldWindow returns the closed range [start-hold, start+block] during which the
// reservation's table should be held.
func HoldWindow(start, holdMinutes, blockMinutes int) Interval {
	if holdMinutes < 0 {
		holdMinutes = 0
	}
	w := Window(start, blockMinutes)
	return Interval{Start: start - holdMinutes, End: w.End}
}

// ShouldHold reports whether r's table must be marked reserved at minute now.
// Only booked or seated reservations with a table qualify.
func ShouldHold(r domain.Reservation, now, holdMinutes, defaultBlock int) bool {
	if r.TableID == "" || !r.Status.Holdable() {
		return false
	}
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return false
	}
	block := r.BlockMinutes
	if block <= 0 {
		block = defaultBlock
	}
	return HoldWindow(start, holdMinutes, block).Contains(now)
}
