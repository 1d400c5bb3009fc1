package attendance

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusInProgress     Status = "InProgress"
	StatusPresent        Status = "Present"
	StatusLateArrival    Status = "LateArrival"
	StatusEarlyDeparture Status = "EarlyDeparture"
)

const (
	// FullDayHours is the minimum worked time for a record not to count as an early departure.
	FullDayHours = 8
	// LateAfterHour is the last local hour-of-day at which a clock-in is still on time.
	LateAfterHour = 9
)

// DurationPlaceholder is rendered instead of a duration while a record is open.
const DurationPlaceholder = "-"

// Statuses lists every derived status, in display order.
func Statuses() []Status {
	return []Status{StatusPresent, StatusLateArrival, StatusEarlyDeparture, StatusInProgress}
}

// HoursBetween returns the real-valued number of hours from start to end.
func HoursBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}

// DeriveStatus classifies a record. The early-departure check runs before the
// late-arrival check, so a short day that also started late is EarlyDeparture.
func DeriveStatus(r Record, loc *time.Location) Status {
	if r.OutTime == nil {
		return StatusInProgress
	}
	if loc == nil {
		loc = time.UTC
	}

	if HoursBetween(r.EnteredTime, *r.OutTime) < FullDayHours {
		return StatusEarlyDeparture
	}
	if r.EnteredTime.In(loc).Hour() > LateAfterHour {
		return StatusLateArrival
	}
	return StatusPresent
}

// FormatWorkedDuration renders whole worked minutes as "8h 20m".
func FormatWorkedDuration(r Record) string {
	d, ok := r.WorkedDuration()
	if !ok {
		return DurationPlaceholder
	}

	minutes := int(d / time.Minute)
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// DayBounds returns [start of day, start of next day) for t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// MonthBounds returns [first day of month, first day of next month) for t in loc.
func MonthBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// WorkDate truncates t to its calendar day in loc, expressed as midnight UTC
// so it can be stored in a DATE column without drifting.
func WorkDate(t time.Time, loc *time.Location) time.Time {
	start, _ := DayBounds(t, loc)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
}
