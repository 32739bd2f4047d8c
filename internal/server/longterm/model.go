package longterm

import "time"

// LongTermGuest is a standing registration. While its date window is
// active, a fresh pending guest record is materialized for it each day.
type LongTermGuest struct {
	ID           int64
	FullName     string
	IDCardNumber string
	Company      string
	SupplierName string
	LicensePlate string
	Reason       string
	// EstimatedAt carries the habitual arrival time; only its clock
	// component matters when materializing a day's record.
	EstimatedAt  time.Time
	StartDate    time.Time
	EndDate      time.Time
	Active       bool
	RegisteredBy int64
	CreatedAt    time.Time
}
