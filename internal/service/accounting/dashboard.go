package accounting

import (
	"context"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/leave"
	"golang.org/x/sync/errgroup"
)

// GetMyDashboard implements dashboard.DashboardService.
func (s *Service) GetMyDashboard(ctx context.Context, ownerID string) (dashboard.DashboardResponse, error) {
	ctx, span := s.start(ctx, "GetMyDashboard")
	defer span.End()

	now := s.now()
	loc := s.Location()

	var (
		today    *attendance.Record
		summary  attendance.MonthlySummaryResponse
		balance  leave.Balance
		requests []leave.Request
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Today's record
	g.Go(func() error {
		var err error
		today, err = s.ledger.Today(gCtx, ownerID, now)
		return err
	})

	// 2. Month summary
	g.Go(func() error {
		var err error
		summary, err = s.ledger.MonthlySummary(gCtx, ownerID, now)
		return err
	})

	// 3. Leave balance
	g.Go(func() error {
		var err error
		balance, err = s.workflow.Balance(gCtx, ownerID, now)
		return err
	})

	// 4. Pending requests
	g.Go(func() error {
		var err error
		requests, err = s.workflow.ListMine(gCtx, ownerID)
		return err
	})

	if err := g.Wait(); err != nil {
		return dashboard.DashboardResponse{}, fail(span, err)
	}

	resp := dashboard.DashboardResponse{
		TodayStatus:    dashboard.NotClockedIn,
		MonthlySummary: summary,
		LeaveBalance:   leave.NewBalanceResponse(balance),
		GeneratedAt:    now.In(loc).Format(time.RFC3339),
	}
	if today != nil {
		r := attendance.NewAttendanceResponse(*today, loc)
		resp.Today = &r
		resp.TodayStatus = r.Status
	}
	for _, r := range requests {
		if r.Status == leave.StatusPending {
			resp.PendingRequests++
		}
	}

	return resp, nil
}
