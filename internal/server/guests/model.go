package guests

import (
	"database/sql"
	"time"
)

// Registration record lifecycle states.
const (
	StatusPending    = "pending"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusNoShow     = "no_show"
)

// Event labels a discrete state transition. Each label maps to its own
// archive-channel template.
type Event string

const (
	EventNewRegistration   Event = "new_registration"
	EventFormRegistration  Event = "new_registration_form"
	EventGroupRegistration Event = "new_registration_group"
	EventCheckIn           Event = "check_in"
	EventCheckOut          Event = "check_out"
	EventNoShow            Event = "no_show"
)

// Guest is one registration record. Instants (EstimatedAt, CreatedAt,
// check times) are stored as UTC; calendar-day rules are evaluated in the
// site time zone by the callers.
type Guest struct {
	ID           int64
	FullName     string
	IDCardNumber string
	Company      string
	SupplierName string
	LicensePlate string
	Reason       string
	Status       string
	EstimatedAt  time.Time
	CheckInAt    sql.NullTime
	CheckOutAt   sql.NullTime
	RegisteredBy int64
	CreatedAt    time.Time

	// RegisteredByName is joined from the user directory on reads that
	// render messages; it is not a column of the guests table.
	RegisteredByName string
}
