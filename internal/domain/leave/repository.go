package leave

import (
	"context"
	"time"
)

// Repository - interface for leave_requests table
type Repository interface {
	Create(ctx context.Context, request Request) (Request, error)
	// GetByID fails with ErrLeaveRequestNotFound when id does not resolve.
	GetByID(ctx context.Context, id string) (Request, error)
	// ListByOwner returns every request of the owner, newest start date first.
	ListByOwner(ctx context.Context, ownerID string) ([]Request, error)
	List(ctx context.Context, filter ListFilter) ([]Request, error)
	// UpdateStatus moves a Pending request to status. It fails with
	// ErrAlreadyProcessed when the request is no longer Pending.
	UpdateStatus(ctx context.Context, id string, status Status, decidedAt time.Time) (Request, error)
	// DeletePending removes a request only while it is Pending, otherwise it
	// fails with ErrNotPending.
	DeletePending(ctx context.Context, id string) error
}

// ListFilter narrows List. A nil Status lists every request.
type ListFilter struct {
	Status *Status
}

// Transactor runs fn so that repository calls made with the ctx it receives
// share one transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
