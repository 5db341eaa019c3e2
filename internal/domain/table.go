package domain

// TableStatus is the floor status of a table.
type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusReserved  TableStatus = "reserved"
	TableStatusOccupied  TableStatus = "occupied"
)

// Table is a seatable table. Capacity and section are maintained outside this service.
type Table struct {
	ID       string      `json:"id"`
	Name     string      `json:"name,omitempty"`
	Capacity int         `json:"capacity"`
	Section  string      `json:"section,omitempty"`
	Status   TableStatus `json:"status,omitempty"`
}
