package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/leave"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.Repository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `id, owner_id, employee_id, employee_name, leave_type,
	start_date, end_date, days, loss_of_pay_days, reason, status, decided_at,
	created_at, updated_at`

// Create implements leave.Repository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to generate leave request id: %w", err)
	}
	request.ID = id.String()
	if request.Status == "" {
		request.Status = leave.StatusPending
	}

	query := `
		INSERT INTO leave_requests (
			id, owner_id, employee_id, employee_name, leave_type, start_date, end_date,
			days, loss_of_pay_days, reason, status, decided_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + leaveRequestColumns

	created, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.ID,
		request.OwnerID,
		request.EmployeeID,
		request.EmployeeName,
		string(request.Type),
		request.StartDate,
		request.EndDate,
		request.Days,
		request.LossOfPayDays,
		request.Reason,
		string(request.Status),
		request.DecidedAt,
	))
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return created, nil
}

// GetByID implements leave.Repository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	if _, err := uuid.Parse(id); err != nil {
		return leave.Request{}, leave.ErrLeaveRequestNotFound
	}

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1`
	request, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrLeaveRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return request, nil
}

// ListByOwner implements leave.Repository.
func (r *leaveRequestRepositoryImpl) ListByOwner(ctx context.Context, ownerID string) ([]leave.Request, error) {
	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE owner_id = $1
		ORDER BY start_date DESC, created_at DESC
	`
	return r.query(ctx, query, ownerID)
}

// List implements leave.Repository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.ListFilter) ([]leave.Request, error) {
	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests`
	var args []interface{}
	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	return r.query(ctx, query, args...)
}

func (r *leaveRequestRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		request, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}
	return requests, nil
}

// UpdateStatus implements leave.Repository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.Status, decidedAt time.Time) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	if _, err := uuid.Parse(id); err != nil {
		return leave.Request{}, leave.ErrLeaveRequestNotFound
	}

	query := `
		UPDATE leave_requests
		SET status = $1, decided_at = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING ` + leaveRequestColumns

	updated, err := scanLeaveRequest(q.QueryRow(ctx, query,
		string(status),
		decidedAt.UTC(),
		id,
		string(leave.StatusPending),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, err := r.GetByID(ctx, id); err != nil {
				return leave.Request{}, err
			}
			return leave.Request{}, leave.ErrAlreadyProcessed
		}
		return leave.Request{}, fmt.Errorf("failed to update leave request status: %w", err)
	}
	return updated, nil
}

// DeletePending implements leave.Repository.
func (r *leaveRequestRepositoryImpl) DeletePending(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := uuid.Parse(id); err != nil {
		return leave.ErrLeaveRequestNotFound
	}

	tag, err := q.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1 AND status = $2`, id, string(leave.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return leave.ErrNotPending
	}
	return nil
}

func scanLeaveRequest(row pgx.Row) (leave.Request, error) {
	var (
		request   leave.Request
		leaveType string
		status    string
	)
	err := row.Scan(
		&request.ID,
		&request.OwnerID,
		&request.EmployeeID,
		&request.EmployeeName,
		&leaveType,
		&request.StartDate,
		&request.EndDate,
		&request.Days,
		&request.LossOfPayDays,
		&request.Reason,
		&status,
		&request.DecidedAt,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return leave.Request{}, err
	}

	request.Type = leave.Type(leaveType)
	request.Status = leave.Status(status)
	if request.DecidedAt != nil {
		t := request.DecidedAt.UTC()
		request.DecidedAt = &t
	}
	request.CreatedAt = request.CreatedAt.UTC()
	request.UpdatedAt = request.UpdatedAt.UTC()
	return request, nil
}
