package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/attendance"
)

// Ledger owns the one-record-per-owner-per-day rule and the clock-out
// transition. Day boundaries are computed in loc, never in the process zone.
// Geofencing is the caller's job.
type Ledger struct {
	repo attendance.Repository
	loc  *time.Location
}

func NewLedger(repo attendance.Repository, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{repo: repo, loc: loc}
}

func (l *Ledger) Location() *time.Location {
	return l.loc
}

// clockPrecision is the coarsest timestamp resolution of the supported
// stores. Hours are computed from truncated times so they match a reload.
const clockPrecision = time.Millisecond

// ClockIn opens today's record for owner.
func (l *Ledger) ClockIn(ctx context.Context, owner, employeeID, employeeName, location string, now time.Time) (attendance.Record, error) {
	now = now.Truncate(clockPrecision)
	start, end := attendance.DayBounds(now, l.loc)

	existing, err := l.repo.ListByOwnerAndRange(ctx, owner, start, end)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if len(existing) > 0 {
		return attendance.Record{}, attendance.ErrDuplicateClockIn
	}

	record, err := l.repo.Create(ctx, attendance.Record{
		OwnerID:         owner,
		EmployeeID:      employeeID,
		EmployeeName:    employeeName,
		WorkDate:        attendance.WorkDate(now, l.loc),
		EnteredTime:     now,
		EnteredLocation: location,
	})
	if err != nil {
		// Lost a race with a concurrent clock-in for the same day.
		if errors.Is(err, attendance.ErrDuplicateClockIn) {
			return attendance.Record{}, attendance.ErrDuplicateClockIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return record, nil
}

// ClockOut closes recordID. A record owned by someone else is reported as not found.
func (l *Ledger) ClockOut(ctx context.Context, owner, recordID, location string, farDistance float64, now time.Time) (attendance.Record, error) {
	record, err := l.repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	if record.OwnerID != owner {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	if !record.IsOpen() {
		return attendance.Record{}, attendance.ErrAlreadyClockedOut
	}

	outTime := now.Truncate(clockPrecision)
	outLocation := location
	hours := attendance.HoursBetween(record.EnteredTime.Truncate(clockPrecision), outTime)

	record.OutTime = &outTime
	record.OutLocation = &outLocation
	record.FarDistance = &farDistance
	record.TotalHoursWorked = &hours

	closed, err := l.repo.CloseOut(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyClockedOut) {
			return attendance.Record{}, attendance.ErrAlreadyClockedOut
		}
		return attendance.Record{}, fmt.Errorf("failed to close attendance record: %w", err)
	}

	return closed, nil
}

// History returns owner's records entered in [from, to), newest first.
func (l *Ledger) History(ctx context.Context, owner string, from, to time.Time) ([]attendance.Record, error) {
	records, err := l.repo.ListByOwnerAndRange(ctx, owner, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	return records, nil
}

// Today returns owner's record for the day containing now, or nil.
func (l *Ledger) Today(ctx context.Context, owner string, now time.Time) (*attendance.Record, error) {
	start, end := attendance.DayBounds(now, l.loc)

	records, err := l.History(ctx, owner, start, end)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// MonthlySummary counts owner's records per derived status for the month containing month.
func (l *Ledger) MonthlySummary(ctx context.Context, owner string, month time.Time) (attendance.MonthlySummaryResponse, error) {
	start, end := attendance.MonthBounds(month, l.loc)

	records, err := l.History(ctx, owner, start, end)
	if err != nil {
		return attendance.MonthlySummaryResponse{}, err
	}

	return attendance.Summarize(start.Format("2006-01"), records, l.loc), nil
}
