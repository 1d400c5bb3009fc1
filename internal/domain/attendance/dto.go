package attendance

import (
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/geo"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type ClockInRequest struct {
	OwnerID      string   `json:"-"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("owner_id", r.OwnerID)
	errs.Required("employee_id", r.EmployeeID)
	errs.Required("employee_name", r.EmployeeName)
	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Point returns the submitted coordinates. Call Validate first.
func (r *ClockInRequest) Point() geo.Point {
	return geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

type ClockOutRequest struct {
	OwnerID   string   `json:"-"`
	RecordID  string   `json:"-"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("owner_id", r.OwnerID)
	errs.Required("id", r.RecordID)
	errs = append(errs, validateCoordinates(r.Latitude, r.Longitude)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Point returns the submitted coordinates. Call Validate first.
func (r *ClockOutRequest) Point() geo.Point {
	return geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

// validateCoordinates only checks presence; range checks belong to geo.
func validateCoordinates(lat, lon *float64) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if lat == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	}
	if lon == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	}
	return errs
}

type AttendanceResponse struct {
	ID               string   `json:"id"`
	EmployeeID       string   `json:"employee_id"`
	EmployeeName     string   `json:"employee_name"`
	WorkDate         string   `json:"work_date"`
	EnteredTime      string   `json:"entered_time"`
	EnteredLocation  string   `json:"entered_location"`
	OutTime          *string  `json:"out_time"`
	OutLocation      *string  `json:"out_location"`
	FarDistance      *int     `json:"far_distance_meters"`
	TotalHoursWorked *float64 `json:"total_hours_worked"`
	Status           Status   `json:"status"`
	WorkedDuration   string   `json:"worked_duration"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// NewAttendanceResponse renders a record for presentation. Timestamps are
// shown in loc and distances are rounded to the meter here and nowhere else.
func NewAttendanceResponse(r Record, loc *time.Location) AttendanceResponse {
	if loc == nil {
		loc = time.UTC
	}

	resp := AttendanceResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		WorkDate:         r.WorkDate.Format("2006-01-02"),
		EnteredTime:      r.EnteredTime.In(loc).Format(time.RFC3339),
		EnteredLocation:  r.EnteredLocation,
		OutLocation:      r.OutLocation,
		TotalHoursWorked: r.TotalHoursWorked,
		Status:           DeriveStatus(r, loc),
		WorkedDuration:   FormatWorkedDuration(r),
		CreatedAt:        r.CreatedAt.In(loc).Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.In(loc).Format(time.RFC3339),
	}

	if r.OutTime != nil {
		out := r.OutTime.In(loc).Format(time.RFC3339)
		resp.OutTime = &out
	}
	if r.FarDistance != nil {
		meters := geo.RoundMeters(*r.FarDistance)
		resp.FarDistance = &meters
	}

	return resp
}

type MyAttendanceFilter struct {
	OwnerID   string  `json:"-"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("owner_id", f.OwnerID)

	var start, end time.Time
	var startOK, endOK bool
	if f.StartDate != nil && *f.StartDate != "" {
		if start, startOK = validator.IsValidDate(*f.StartDate); !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if end, endOK = validator.IsValidDate(*f.EndDate); !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int                  `json:"total_count"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type SummaryFilter struct {
	OwnerID string `json:"-"`
	Month   string `json:"month"` // YYYY-MM, defaults to the current month
}

func (f *SummaryFilter) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("owner_id", f.OwnerID)

	if f.Month != "" {
		if _, ok := validator.IsValidMonth(f.Month); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be in YYYY-MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MonthlySummaryResponse struct {
	Month            string         `json:"month"`
	TotalRecords     int            `json:"total_records"`
	Counts           map[Status]int `json:"counts"`
	TotalHoursWorked float64        `json:"total_hours_worked"`
}

// Summarize counts records per derived status and sums closed hours.
func Summarize(month string, records []Record, loc *time.Location) MonthlySummaryResponse {
	resp := MonthlySummaryResponse{
		Month:        month,
		TotalRecords: len(records),
		Counts:       make(map[Status]int, 4),
	}
	for _, s := range Statuses() {
		resp.Counts[s] = 0
	}

	for _, r := range records {
		resp.Counts[DeriveStatus(r, loc)]++
		if r.TotalHoursWorked != nil {
			resp.TotalHoursWorked += *r.TotalHoursWorked
		}
	}

	return resp
}
