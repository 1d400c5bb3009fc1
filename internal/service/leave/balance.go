package leave

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/leave"
)

type AccrualPeriod string

const (
	// AccrualCalendarYear resets the allowance every January 1st.
	AccrualCalendarYear AccrualPeriod = "calendar_year"
	// AccrualLifetime never resets the allowance.
	AccrualLifetime AccrualPeriod = "lifetime"
)

func ParseAccrualPeriod(s string) (AccrualPeriod, error) {
	switch AccrualPeriod(s) {
	case AccrualCalendarYear, AccrualLifetime:
		return AccrualPeriod(s), nil
	case "":
		return AccrualCalendarYear, nil
	}
	return "", fmt.Errorf("unknown accrual period %q", s)
}

type Policy struct {
	AnnualAllowance int
	MonthlyCap      int
	AccrualPeriod   AccrualPeriod
}

func DefaultPolicy() Policy {
	return Policy{
		AnnualAllowance: 20,
		MonthlyCap:      2,
		AccrualPeriod:   AccrualCalendarYear,
	}
}

// Window returns the accrual window containing asOf, end exclusive.
// A lifetime policy has no window and returns zero times.
func (p Policy) Window(asOf time.Time) (time.Time, time.Time) {
	if p.AccrualPeriod == AccrualLifetime {
		return time.Time{}, time.Time{}
	}
	start := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

func inWindow(start, end, day time.Time) bool {
	if start.IsZero() && end.IsZero() {
		return true
	}
	return !day.Before(start) && day.Before(end)
}

// BusinessDaysBetween counts the weekdays in [start, end], both inclusive.
func BusinessDaysBetween(start, end time.Time) int {
	start = truncateDay(start)
	end = truncateDay(end)

	days := 0
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		if current.Weekday() == time.Saturday || current.Weekday() == time.Sunday {
			continue
		}
		days++
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ComputeBalance projects the balance from scratch over every approved,
// paid request whose start date falls in the accrual window containing asOf.
func ComputeBalance(requests []leave.Request, policy Policy, asOf time.Time) leave.Balance {
	start, end := policy.Window(asOf)

	balance := leave.Balance{
		TotalAllowance: policy.AnnualAllowance,
		MonthlyUsage:   make(map[string]int),
		PeriodStart:    start,
		PeriodEnd:      end,
	}

	for _, r := range requests {
		if r.Status != leave.StatusApproved || r.Type == leave.TypeLossOfPay {
			continue
		}
		if !inWindow(start, end, r.StartDate) {
			continue
		}
		balance.Used += r.Days
		balance.MonthlyUsage[r.Month()] += r.Days
	}

	balance.Remaining = max(0, balance.TotalAllowance-balance.Used)
	return balance
}

// EvaluateNewRequest decides how a candidate request is booked against balance.
// Insufficient balance converts the whole request to loss of pay. Otherwise
// days past the monthly cap become loss of pay on the requested type and
// need confirmation. A request already typed as loss of pay is kept as is.
func EvaluateNewRequest(balance leave.Balance, candidateDays int, candidateMonth string, requestedType leave.Type, policy Policy) leave.Evaluation {
	if requestedType == leave.TypeLossOfPay {
		return leave.Evaluation{FinalType: requestedType}
	}

	if candidateDays > balance.Remaining {
		return leave.Evaluation{
			FinalType:     leave.TypeLossOfPay,
			LossOfPayDays: candidateDays,
			Reason:        fmt.Sprintf("requested %d days but only %d remain", candidateDays, balance.Remaining),
		}
	}

	if overflow := balance.MonthlyUsage[candidateMonth] + candidateDays - policy.MonthlyCap; overflow > 0 {
		return leave.Evaluation{
			FinalType:            requestedType,
			LossOfPayDays:        overflow,
			RequiresConfirmation: true,
			Reason:               fmt.Sprintf("monthly cap of %d days exceeded by %d in %s", policy.MonthlyCap, overflow, candidateMonth),
		}
	}

	return leave.Evaluation{FinalType: requestedType}
}
