package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

// MissingFields wraps errs so that callers can match both ErrMissingField and
// validator.ValidationErrors.
func MissingFields(errs validator.ValidationErrors) error {
	return fmt.Errorf("%w: %w", ErrMissingField, errs)
}

type SubmitLeaveRequest struct {
	OwnerID          string `json:"-"`
	EmployeeID       string `json:"employee_id"`
	EmployeeName     string `json:"employee_name"`
	LeaveType        string `json:"leave_type"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Reason           string `json:"reason"`
	ConfirmLossOfPay bool   `json:"confirm_loss_of_pay"`

	// Parsed by Validate
	Type  Type      `json:"-"`
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *SubmitLeaveRequest) Validate() error {
	var missing validator.ValidationErrors
	missing.Required("owner_id", r.OwnerID)
	missing.Required("employee_id", r.EmployeeID)
	missing.Required("employee_name", r.EmployeeName)
	missing.Required("leave_type", r.LeaveType)
	missing.Required("start_date", r.StartDate)
	missing.Required("end_date", r.EndDate)
	missing.Required("reason", r.Reason)

	var errs validator.ValidationErrors

	if !validator.IsEmpty(r.LeaveType) {
		t, ok := ParseType(r.LeaveType)
		if !ok {
			names := make([]string, 0, len(Types()))
			for _, t := range Types() {
				names = append(names, string(t))
			}
			errs = append(errs, validator.ValidationError{
				Field:   "leave_type",
				Message: "leave_type must be one of: " + strings.Join(names, ", "),
			})
		}
		r.Type = t
	}

	if !validator.IsEmpty(r.StartDate) {
		start, ok := validator.IsValidDate(r.StartDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
		r.Start = start
	}

	if !validator.IsEmpty(r.EndDate) {
		end, ok := validator.IsValidDate(r.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
		r.End = end
	}

	if len(missing) > 0 {
		return MissingFields(append(missing, errs...))
	}
	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CancelLeaveRequest struct {
	ID      string `json:"-"`
	OwnerID string `json:"-"`
}

func (r *CancelLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("id", r.ID)
	errs.Required("owner_id", r.OwnerID)

	if len(errs) > 0 {
		return MissingFields(errs)
	}

	return nil
}

type GetLeaveRequest struct {
	ID      string `json:"-"`
	OwnerID string `json:"-"`
	IsAdmin bool   `json:"-"`
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("id", r.ID)
	errs.Required("status", r.Status)

	if len(errs) > 0 {
		return MissingFields(errs)
	}

	return nil
}

type ListLeaveRequestFilter struct {
	Status *string `json:"status,omitempty"`
}

func (f *ListLeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && *f.Status != "" {
		if _, ok := ParseStatus(*f.Status); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: Pending, Approved, Rejected",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveRequestResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	LeaveType     Type    `json:"leave_type"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Days          int     `json:"days"`
	LossOfPayDays int     `json:"loss_of_pay_days"`
	Reason        string  `json:"reason"`
	Status        Status  `json:"status"`
	DecidedAt     *string `json:"decided_at"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func NewLeaveRequestResponse(r Request) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		LeaveType:     r.Type,
		StartDate:     r.StartDate.Format(dateLayout),
		EndDate:       r.EndDate.Format(dateLayout),
		Days:          r.Days,
		LossOfPayDays: r.LossOfPayDays,
		Reason:        r.Reason,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		decided := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &decided
	}
	return resp
}

type ListLeaveRequestResponse struct {
	TotalCount int                    `json:"total_count"`
	Requests   []LeaveRequestResponse `json:"requests"`
}

func NewListLeaveRequestResponse(requests []Request) ListLeaveRequestResponse {
	resp := ListLeaveRequestResponse{
		TotalCount: len(requests),
		Requests:   make([]LeaveRequestResponse, 0, len(requests)),
	}
	for _, r := range requests {
		resp.Requests = append(resp.Requests, NewLeaveRequestResponse(r))
	}
	return resp
}

type BalanceResponse struct {
	TotalAllowance int            `json:"total_allowance"`
	Used           int            `json:"used"`
	Remaining      int            `json:"remaining"`
	MonthlyUsage   map[string]int `json:"monthly_usage"`
	PeriodStart    *string        `json:"period_start"`
	PeriodEnd      *string        `json:"period_end"`
}

func NewBalanceResponse(b Balance) BalanceResponse {
	resp := BalanceResponse{
		TotalAllowance: b.TotalAllowance,
		Used:           b.Used,
		Remaining:      b.Remaining,
		MonthlyUsage:   b.MonthlyUsage,
	}
	if resp.MonthlyUsage == nil {
		resp.MonthlyUsage = map[string]int{}
	}
	if !b.PeriodStart.IsZero() {
		start := b.PeriodStart.Format(dateLayout)
		resp.PeriodStart = &start
	}
	if !b.PeriodEnd.IsZero() {
		// PeriodEnd is exclusive; show the last day covered.
		end := b.PeriodEnd.AddDate(0, 0, -1).Format(dateLayout)
		resp.PeriodEnd = &end
	}
	return resp
}

// ConfirmationDetails is the error payload returned when a submission needs
// confirm_loss_of_pay.
type ConfirmationDetails struct {
	Month                string `json:"month"`
	Days                 int    `json:"days"`
	LeaveType            Type   `json:"leave_type"`
	LossOfPayDays        int    `json:"loss_of_pay_days"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
	Reason               string `json:"reason"`
}

func NewConfirmationDetails(e *ConfirmationError) ConfirmationDetails {
	return ConfirmationDetails{
		Month:                e.Month,
		Days:                 e.Days,
		LeaveType:            e.Evaluation.FinalType,
		LossOfPayDays:        e.Evaluation.LossOfPayDays,
		RequiresConfirmation: e.Evaluation.RequiresConfirmation,
		Reason:               e.Evaluation.Reason,
	}
}
