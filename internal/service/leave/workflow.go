package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/leave"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/validator"
)

type SubmitInput struct {
	OwnerID          string
	EmployeeID       string
	EmployeeName     string
	Type             leave.Type
	StartDate        time.Time
	EndDate          time.Time
	Reason           string
	ConfirmLossOfPay bool
}

func (in SubmitInput) validate() error {
	var errs validator.ValidationErrors

	errs.Required("owner_id", in.OwnerID)
	errs.Required("employee_id", in.EmployeeID)
	errs.Required("employee_name", in.EmployeeName)
	errs.Required("leave_type", string(in.Type))
	errs.Required("reason", in.Reason)
	if in.StartDate.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date is required"})
	}
	if in.EndDate.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date is required"})
	}

	if len(errs) > 0 {
		return leave.MissingFields(errs)
	}

	return nil
}

// Workflow drives a leave request from submission to a decision or cancellation.
// Approved and Rejected are terminal.
type Workflow struct {
	repo   leave.Repository
	tx     leave.Transactor
	policy Policy
}

// NewWorkflow builds a Workflow. tx may be nil, in which case Submit runs
// without a surrounding transaction.
func NewWorkflow(repo leave.Repository, tx leave.Transactor, policy Policy) *Workflow {
	return &Workflow{repo: repo, tx: tx, policy: policy}
}

func (w *Workflow) Policy() Policy {
	return w.policy
}

func (w *Workflow) withinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if w.tx == nil {
		return fn(ctx)
	}
	return w.tx.WithinTransaction(ctx, fn)
}

// Submit evaluates the candidate against the owner's recomputed balance and
// persists it as Pending.
func (w *Workflow) Submit(ctx context.Context, in SubmitInput) (leave.Request, error) {
	if err := in.validate(); err != nil {
		return leave.Request{}, err
	}

	start := truncateDay(in.StartDate)
	end := truncateDay(in.EndDate)
	if end.Before(start) {
		return leave.Request{}, leave.ErrInvalidDateRange
	}

	days := BusinessDaysBetween(start, end)
	if days == 0 {
		return leave.Request{}, fmt.Errorf("%w: %s to %s has no business days", leave.ErrInvalidDateRange,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	var created leave.Request
	err := w.withinTransaction(ctx, func(ctx context.Context) error {
		history, err := w.repo.ListByOwner(ctx, in.OwnerID)
		if err != nil {
			return fmt.Errorf("failed to list leave history: %w", err)
		}

		for _, r := range history {
			if r.Status != leave.StatusRejected && r.Overlaps(start, end) {
				return leave.ErrOverlappingRequest
			}
		}

		month := leave.MonthKey(start)
		balance := ComputeBalance(history, w.policy, start)
		evaluation := EvaluateNewRequest(balance, days, month, in.Type, w.policy)
		if evaluation.RequiresConfirmation && !in.ConfirmLossOfPay {
			return &leave.ConfirmationError{Month: month, Days: days, Evaluation: evaluation}
		}

		created, err = w.repo.Create(ctx, leave.Request{
			OwnerID:       in.OwnerID,
			EmployeeID:    in.EmployeeID,
			EmployeeName:  in.EmployeeName,
			Type:          evaluation.FinalType,
			StartDate:     start,
			EndDate:       end,
			Days:          days,
			LossOfPayDays: evaluation.LossOfPayDays,
			Reason:        in.Reason,
			Status:        leave.StatusPending,
		})
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.Request{}, err
	}

	return created, nil
}

// SetStatus records an administrator decision on a Pending request.
func (w *Workflow) SetStatus(ctx context.Context, id string, status leave.Status, now time.Time) (leave.Request, error) {
	if status != leave.StatusApproved && status != leave.StatusRejected {
		return leave.Request{}, leave.ErrInvalidStatus
	}

	request, err := w.Get(ctx, id)
	if err != nil {
		return leave.Request{}, err
	}
	if request.Status != leave.StatusPending {
		return leave.Request{}, leave.ErrAlreadyProcessed
	}

	updated, err := w.repo.UpdateStatus(ctx, id, status, now)
	if err != nil {
		if errors.Is(err, leave.ErrAlreadyProcessed) || errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.Request{}, err
		}
		return leave.Request{}, fmt.Errorf("failed to update leave request status: %w", err)
	}

	return updated, nil
}

// Cancel deletes a Pending request on behalf of its owner.
func (w *Workflow) Cancel(ctx context.Context, id, owner string) error {
	request, err := w.Get(ctx, id)
	if err != nil {
		return err
	}
	if request.OwnerID != owner {
		return leave.ErrUnauthorized
	}
	if request.Status != leave.StatusPending {
		return leave.ErrNotPending
	}

	if err := w.repo.DeletePending(ctx, id); err != nil {
		if errors.Is(err, leave.ErrNotPending) {
			return leave.ErrNotPending
		}
		return fmt.Errorf("failed to delete leave request: %w", err)
	}

	return nil
}

func (w *Workflow) Get(ctx context.Context, id string) (leave.Request, error) {
	request, err := w.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.Request{}, leave.ErrLeaveRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return request, nil
}

func (w *Workflow) ListMine(ctx context.Context, owner string) ([]leave.Request, error) {
	requests, err := w.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return requests, nil
}

// ListAll lists every owner's requests, optionally narrowed to one status.
func (w *Workflow) ListAll(ctx context.Context, status *leave.Status) ([]leave.Request, error) {
	requests, err := w.repo.List(ctx, leave.ListFilter{Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return requests, nil
}

// Balance projects owner's balance for the accrual window containing now.
func (w *Workflow) Balance(ctx context.Context, owner string, now time.Time) (leave.Balance, error) {
	history, err := w.ListMine(ctx, owner)
	if err != nil {
		return leave.Balance{}, err
	}
	return ComputeBalance(history, w.policy, now), nil
}
