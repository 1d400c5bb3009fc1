package attendance

import (
	"context"
)

// AttendanceService is the attendance side of the accounting engine as seen by handlers.
type AttendanceService interface {
	// ClockIn validates the location against the site and opens today's record
	ClockIn(ctx context.Context, req ClockInRequest) (AttendanceResponse, error)

	// ClockOut closes an open record owned by the caller
	ClockOut(ctx context.Context, req ClockOutRequest) (AttendanceResponse, error)

	// GetMyAttendance lists the caller's records, newest first
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// GetToday returns the caller's record for the current day, or nil
	GetToday(ctx context.Context, ownerID string) (*AttendanceResponse, error)

	// GetMonthlySummary counts the caller's records per derived status
	GetMonthlySummary(ctx context.Context, filter SummaryFilter) (MonthlySummaryResponse, error)
}
