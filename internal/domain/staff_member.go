package domain

import "strings"

// StaffRole enumerates floor and back-office roles.
type StaffRole string

const (
	StaffRoleAdmin   StaffRole = "admin"
	StaffRoleManager StaffRole = "manager"
	StaffRoleHost    StaffRole = "host"
	StaffRoleServer  StaffRole = "server"
)

// ParseStaffRole normalizes a role name; ok is false for unknown roles.
func ParseStaffRole(s string) (StaffRole, bool) {
	role := StaffRole(strings.ToLower(strings.TrimSpace(s)))
	switch role {
	case StaffRoleAdmin, StaffRoleManager, StaffRoleHost, StaffRoleServer:
		return role, true
	}
	return "", false
}

// StaffMember identifies the caller behind a staff token.
type StaffMember struct {
	ID   string
	Name string
	Role StaffRole
}
