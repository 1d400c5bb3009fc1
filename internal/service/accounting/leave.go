package accounting

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/leave"
	leaveService "github.com/cmlabs-hris/presence-ledger-go/internal/service/leave"
	"go.opentelemetry.io/otel/attribute"
)

// SubmitRequest implements leave.LeaveService.
func (s *Service) SubmitRequest(ctx context.Context, req leave.SubmitLeaveRequest) (leave.LeaveRequestResponse, error) {
	ctx, span := s.start(ctx, "SubmitRequest")
	defer span.End()

	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, fail(span, err)
	}
	span.SetAttributes(
		attribute.String("owner_id", req.OwnerID),
		attribute.String("leave_type", string(req.Type)),
	)

	// Keeps the overlap check meaningful for rapid double submits.
	unlock := s.locks.lock("leave:" + req.OwnerID)
	defer unlock()

	request, err := s.workflow.Submit(ctx, leaveService.SubmitInput{
		OwnerID:          req.OwnerID,
		EmployeeID:       req.EmployeeID,
		EmployeeName:     req.EmployeeName,
		Type:             req.Type,
		StartDate:        req.Start,
		EndDate:          req.End,
		Reason:           req.Reason,
		ConfirmLossOfPay: req.ConfirmLossOfPay,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fail(span, err)
	}

	slog.InfoContext(ctx, "leave request submitted",
		"owner_id", request.OwnerID,
		"request_id", request.ID,
		"leave_type", request.Type,
		"days", request.Days,
		"loss_of_pay_days", request.LossOfPayDays,
	)

	return leave.NewLeaveRequestResponse(request), nil
}

// CancelRequest implements leave.LeaveService.
func (s *Service) CancelRequest(ctx context.Context, req leave.CancelLeaveRequest) error {
	ctx, span := s.start(ctx, "CancelRequest")
	defer span.End()

	if err := req.Validate(); err != nil {
		return fail(span, err)
	}

	if err := s.workflow.Cancel(ctx, req.ID, req.OwnerID); err != nil {
		return fail(span, err)
	}

	slog.InfoContext(ctx, "leave request cancelled", "owner_id", req.OwnerID, "request_id", req.ID)
	return nil
}

// GetRequest implements leave.LeaveService. Only the owner or an admin may read a request.
func (s *Service) GetRequest(ctx context.Context, req leave.GetLeaveRequest) (leave.LeaveRequestResponse, error) {
	ctx, span := s.start(ctx, "GetRequest")
	defer span.End()

	request, err := s.workflow.Get(ctx, req.ID)
	if err != nil {
		return leave.LeaveRequestResponse{}, fail(span, err)
	}
	if !req.IsAdmin && request.OwnerID != req.OwnerID {
		return leave.LeaveRequestResponse{}, fail(span, leave.ErrUnauthorized)
	}

	return leave.NewLeaveRequestResponse(request), nil
}

// ListMyRequests implements leave.LeaveService.
func (s *Service) ListMyRequests(ctx context.Context, ownerID string) (leave.ListLeaveRequestResponse, error) {
	ctx, span := s.start(ctx, "ListMyRequests")
	defer span.End()

	requests, err := s.workflow.ListMine(ctx, ownerID)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fail(span, err)
	}
	return leave.NewListLeaveRequestResponse(requests), nil
}

// ListRequests implements leave.LeaveService.
func (s *Service) ListRequests(ctx context.Context, filter leave.ListLeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	ctx, span := s.start(ctx, "ListRequests")
	defer span.End()

	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, fail(span, err)
	}

	var status *leave.Status
	if filter.Status != nil && *filter.Status != "" {
		parsed, _ := leave.ParseStatus(*filter.Status)
		status = &parsed
	}

	requests, err := s.workflow.ListAll(ctx, status)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fail(span, err)
	}
	return leave.NewListLeaveRequestResponse(requests), nil
}

// UpdateStatus implements leave.LeaveService.
func (s *Service) UpdateStatus(ctx context.Context, req leave.UpdateStatusRequest) (leave.LeaveRequestResponse, error) {
	ctx, span := s.start(ctx, "UpdateStatus")
	defer span.End()

	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, fail(span, err)
	}

	request, err := s.workflow.SetStatus(ctx, req.ID, leave.Status(req.Status), s.now())
	if err != nil {
		return leave.LeaveRequestResponse{}, fail(span, err)
	}

	slog.InfoContext(ctx, "leave request decided", "request_id", request.ID, "status", request.Status)
	return leave.NewLeaveRequestResponse(request), nil
}

// GetMyBalance implements leave.LeaveService.
func (s *Service) GetMyBalance(ctx context.Context, ownerID string) (leave.BalanceResponse, error) {
	ctx, span := s.start(ctx, "GetMyBalance")
	defer span.End()

	balance, err := s.workflow.Balance(ctx, ownerID, s.now())
	if err != nil {
		return leave.BalanceResponse{}, fail(span, err)
	}
	return leave.NewBalanceResponse(balance), nil
}
