package accounting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/geo"
	"go.opentelemetry.io/otel/attribute"
)

// ClockIn implements attendance.AttendanceService.
func (s *Service) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	ctx, span := s.start(ctx, "ClockIn")
	defer span.End()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, fail(span, err)
	}

	point := req.Point()
	distance, within, err := s.site.Check(point)
	if err != nil {
		return attendance.AttendanceResponse{}, fail(span, err)
	}
	span.SetAttributes(
		attribute.String("owner_id", req.OwnerID),
		attribute.Float64("distance_meters", distance),
	)
	if !within {
		return attendance.AttendanceResponse{}, fail(span, &attendance.RadiusError{
			DistanceMeters: distance,
			RadiusMeters:   s.site.RadiusMeters,
		})
	}

	unlock := s.locks.lock("attendance:" + req.OwnerID)
	defer unlock()

	record, err := s.ledger.ClockIn(ctx, req.OwnerID, req.EmployeeID, req.EmployeeName, point.String(), s.now())
	if err != nil {
		return attendance.AttendanceResponse{}, fail(span, err)
	}

	slog.InfoContext(ctx, "clock-in recorded",
		"owner_id", record.OwnerID,
		"record_id", record.ID,
		"distance_meters", geo.RoundMeters(distance),
	)

	return attendance.NewAttendanceResponse(record, s.Location()), nil
}

// ClockOut implements attendance.AttendanceService.
func (s *Service) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	ctx, span := s.start(ctx, "ClockOut")
	defer span.End()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, fail(span, err)
	}

	point := req.Point()
	distance, _, err := s.site.Check(point)
	if err != nil {
		return attendance.AttendanceResponse{}, fail(span, err)
	}
	span.SetAttributes(
		attribute.String("owner_id", req.OwnerID),
		attribute.String("record_id", req.RecordID),
		attribute.Float64("distance_meters", distance),
	)

	record, err := s.ledger.ClockOut(ctx, req.OwnerID, req.RecordID, point.String(), distance, s.now())
	if err != nil {
		return attendance.AttendanceResponse{}, fail(span, err)
	}

	slog.InfoContext(ctx, "clock-out recorded",
		"owner_id", record.OwnerID,
		"record_id", record.ID,
		"total_hours_worked", *record.TotalHoursWorked,
	)

	return attendance.NewAttendanceResponse(record, s.Location()), nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *Service) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	ctx, span := s.start(ctx, "GetMyAttendance")
	defer span.End()

	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, fail(span, err)
	}

	loc := s.Location()
	var from time.Time
	if filter.StartDate != nil && *filter.StartDate != "" {
		from, _ = time.ParseInLocation("2006-01-02", *filter.StartDate, loc)
	}
	_, to := attendance.DayBounds(s.now(), loc)
	if filter.EndDate != nil && *filter.EndDate != "" {
		end, _ := time.ParseInLocation("2006-01-02", *filter.EndDate, loc)
		to = end.AddDate(0, 0, 1)
	}

	records, err := s.ledger.History(ctx, filter.OwnerID, from, to)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fail(span, err)
	}

	resp := attendance.ListAttendanceResponse{
		TotalCount:  len(records),
		Attendances: make([]attendance.AttendanceResponse, 0, len(records)),
	}
	for _, r := range records {
		resp.Attendances = append(resp.Attendances, attendance.NewAttendanceResponse(r, loc))
	}

	return resp, nil
}

// GetToday implements attendance.AttendanceService.
func (s *Service) GetToday(ctx context.Context, ownerID string) (*attendance.AttendanceResponse, error) {
	ctx, span := s.start(ctx, "GetToday")
	defer span.End()

	record, err := s.ledger.Today(ctx, ownerID, s.now())
	if err != nil {
		return nil, fail(span, err)
	}
	if record == nil {
		return nil, nil
	}

	resp := attendance.NewAttendanceResponse(*record, s.Location())
	return &resp, nil
}

// GetMonthlySummary implements attendance.AttendanceService.
func (s *Service) GetMonthlySummary(ctx context.Context, filter attendance.SummaryFilter) (attendance.MonthlySummaryResponse, error) {
	ctx, span := s.start(ctx, "GetMonthlySummary")
	defer span.End()

	if err := filter.Validate(); err != nil {
		return attendance.MonthlySummaryResponse{}, fail(span, err)
	}

	month := s.now()
	if filter.Month != "" {
		parsed, err := time.ParseInLocation("2006-01", filter.Month, s.Location())
		if err != nil {
			return attendance.MonthlySummaryResponse{}, fail(span, fmt.Errorf("failed to parse month: %w", err))
		}
		month = parsed
	}

	summary, err := s.ledger.MonthlySummary(ctx, filter.OwnerID, month)
	if err != nil {
		return attendance.MonthlySummaryResponse{}, fail(span, err)
	}
	return summary, nil
}
