package attendance

import (
	"time"
)

// Record is one clock-in/clock-out pair. It is created on clock-in and
// mutated exactly once on clock-out.
type Record struct {
	ID           string
	OwnerID      string
	EmployeeID   string
	EmployeeName string

	// WorkDate is the calendar day of EnteredTime in the ledger's timezone.
	WorkDate        time.Time
	EnteredTime     time.Time
	EnteredLocation string

	OutTime          *time.Time
	OutLocation      *string
	FarDistance      *float64
	TotalHoursWorked *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the record has not been clocked out yet.
func (r Record) IsOpen() bool {
	return r.OutTime == nil
}

// WorkedDuration returns the elapsed time between clock-in and clock-out.
// The second return value is false while the record is open.
func (r Record) WorkedDuration() (time.Duration, bool) {
	if r.OutTime == nil {
		return 0, false
	}
	return r.OutTime.Sub(r.EnteredTime), true
}
