package dashboard

import "context"

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetMyDashboard returns today's attendance, the month summary and the
	// leave balance of the caller, loaded concurrently
	GetMyDashboard(ctx context.Context, ownerID string) (DashboardResponse, error)
}
