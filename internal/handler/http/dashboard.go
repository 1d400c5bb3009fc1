package http

import (
	"net/http"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/presence-ledger-go/internal/handler/http/response"
)

// DashboardHandler defines the interface for dashboard HTTP handlers
type DashboardHandler interface {
	GetMyDashboard(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{
		dashboardService: dashboardService,
	}
}

// GetMyDashboard handles GET /dashboard/my
func (h *dashboardHandlerImpl) GetMyDashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	result, err := h.dashboardService.GetMyDashboard(r.Context(), identity.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
