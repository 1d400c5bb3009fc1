package leave

import (
	"time"
)

type Type string

const (
	TypeVacation      Type = "Vacation"
	TypeSickLeave     Type = "Sick Leave"
	TypePersonalLeave Type = "Personal Leave"
	TypeWorkFromHome  Type = "Work From Home"
	TypeLossOfPay     Type = "Loss of Pay"
)

// Types lists every leave type accepted on submission.
func Types() []Type {
	return []Type{TypeVacation, TypeSickLeave, TypePersonalLeave, TypeWorkFromHome, TypeLossOfPay}
}

func ParseType(s string) (Type, bool) {
	for _, t := range Types() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), true
	}
	return "", false
}

// IsTerminal reports whether no transition is defined out of s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Request is a leave request. It is created Pending, then either decided
// once by an administrator or deleted by its owner while still Pending.
type Request struct {
	ID           string
	OwnerID      string
	EmployeeID   string
	EmployeeName string

	Type      Type
	StartDate time.Time
	EndDate   time.Time

	Days          int
	LossOfPayDays int
	Reason        string

	Status    Status
	DecidedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Month is the "YYYY-MM" key of the request's start date.
func (r Request) Month() string {
	return MonthKey(r.StartDate)
}

// Overlaps reports whether the inclusive date ranges of r and [start, end] intersect.
func (r Request) Overlaps(start, end time.Time) bool {
	return !r.StartDate.After(end) && !start.After(r.EndDate)
}

func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// Balance is a projection over an employee's approved requests. It is never persisted.
type Balance struct {
	TotalAllowance int
	Used           int
	Remaining      int
	MonthlyUsage   map[string]int

	// PeriodStart and PeriodEnd bound the accrual window, end exclusive.
	// Both are zero for a lifetime window.
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Evaluation is the outcome of checking a candidate request against a Balance.
type Evaluation struct {
	FinalType            Type
	LossOfPayDays        int
	RequiresConfirmation bool
	Reason               string
}
