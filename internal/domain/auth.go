package domain

// SubjectType differentiates token subjects.
type SubjectType string

const (
	SubjectTypeStaff   SubjectType = "STAFF"
	SubjectTypeService SubjectType = "SERVICE"
)
