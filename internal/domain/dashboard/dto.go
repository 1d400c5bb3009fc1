package dashboard

import (
	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/leave"
)

// ========== EMPLOYEE DASHBOARD ==========

// DashboardResponse is the combined response for the employee dashboard endpoint
type DashboardResponse struct {
	Today           *attendance.AttendanceResponse    `json:"today"`
	TodayStatus     attendance.Status                 `json:"today_status"`
	MonthlySummary  attendance.MonthlySummaryResponse `json:"monthly_summary"`
	LeaveBalance    leave.BalanceResponse             `json:"leave_balance"`
	PendingRequests int                               `json:"pending_requests"`
	GeneratedAt     string                            `json:"generated_at"`
}

// NotClockedIn is reported as today's status before the first clock-in of the day.
const NotClockedIn attendance.Status = "NotClockedIn"
