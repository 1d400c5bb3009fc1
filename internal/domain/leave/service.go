package leave

import (
	"context"
)

type LeaveService interface {
	// Request
	SubmitRequest(ctx context.Context, req SubmitLeaveRequest) (LeaveRequestResponse, error)
	CancelRequest(ctx context.Context, req CancelLeaveRequest) error
	GetRequest(ctx context.Context, req GetLeaveRequest) (LeaveRequestResponse, error)
	ListMyRequests(ctx context.Context, ownerID string) (ListLeaveRequestResponse, error)

	// Admin
	ListRequests(ctx context.Context, filter ListLeaveRequestFilter) (ListLeaveRequestResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (LeaveRequestResponse, error)

	// Balance
	GetMyBalance(ctx context.Context, ownerID string) (BalanceResponse, error)
}
