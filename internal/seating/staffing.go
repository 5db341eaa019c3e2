package seating

import (
	"fmt"

	"github.com/spec-kit/reservation-service/internal/domain"
)

// DefaultBusyThreshold is the overlap count above which two staff are requested.
const DefaultBusyThreshold = 5

// StaffingPlan is what to ask the floor for after a party could not be seated.
type StaffingPlan struct {
	Role     domain.StaffRole      `json:"role"`
	Quantity int                   `json:"quantity"`
	Reason   domain.StaffingReason `json:"reason"`
	OnCall   bool                  `json:"on_call"`
}

// PlanStaffing derives the staffing request for a decision that needs one.
// Oversize parties call for a host, unseatable ones for a server; when nobody in that
// role is on call but the other role is, the other role is requested instead.
// overlapping is the number of active reservations sharing the window.
func PlanStaffing(d Decision, overlapping, busyThreshold int, roster []domain.OnCallEntry) (StaffingPlan, error) {
	var plan StaffingPlan
	switch d.Outcome {
	case OutcomeOversize:
		plan.Role, plan.Reason = domain.StaffRoleHost, domain.StaffingReasonOversize
	case OutcomeNoTableAvailable:
		plan.Role, plan.Reason = domain.StaffRoleServer, domain.StaffingReasonNoTable
	default:
		return plan, fmt.Errorf("no staffing needed for outcome %q", d.Outcome)
	}

	plan.OnCall = onCall(roster, plan.Role)
	if !plan.OnCall {
		if other := otherRole(plan.Role); onCall(roster, other) {
			plan.Role = other
			plan.OnCall = true
		}
	}

	if busyThreshold <= 0 {
		busyThreshold = DefaultBusyThreshold
	}
	plan.Quantity = 1
	if overlapping > busyThreshold {
		plan.Quantity = 2
	}
	return plan, nil
}

func onCall(roster []domain.OnCallEntry, role domain.StaffRole) bool {
	for _, e := range roster {
		if !e.Available {
			continue
		}
		if r, ok := domain.ParseStaffRole(string(e.Role)); ok && r == role {
			return true
		}
	}
	return false
}

func otherRole(role domain.StaffRole) domain.StaffRole {
	if role == domain.StaffRoleHost {
		return domain.StaffRoleServer
	}
	return domain.StaffRoleHost
}
