package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/leave"
	"github.com/google/uuid"
)

type leaveRequestRepositoryImpl struct {
	store *Store
}

func NewLeaveRequestRepository(store *Store) leave.Repository {
	return &leaveRequestRepositoryImpl{store: store}
}

const leaveRequestColumns = `id, owner_id, employee_id, employee_name, leave_type,
	start_date, end_date, days, loss_of_pay_days, reason, status, decided_at,
	created_at, updated_at`

// Create implements leave.Repository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return leave.Request{}, fmt.Errorf("generate leave request id: %w", err)
	}
	now := time.Now().UTC()
	request.ID = id.String()
	request.CreatedAt = now
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = leave.StatusPending
	}

	_, err = r.store.conn(ctx).ExecContext(ctx,
		`INSERT INTO leave_requests (`+leaveRequestColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ID,
		request.OwnerID,
		request.EmployeeID,
		request.EmployeeName,
		string(request.Type),
		request.StartDate.Format(dateLayout),
		request.EndDate.Format(dateLayout),
		request.Days,
		request.LossOfPayDays,
		request.Reason,
		string(request.Status),
		nullMillis(request.DecidedAt),
		toMillis(request.CreatedAt),
		toMillis(request.UpdatedAt),
	)
	if err != nil {
		return leave.Request{}, fmt.Errorf("create leave request: %w", err)
	}

	return r.GetByID(ctx, request.ID)
}

// GetByID implements leave.Repository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Request, error) {
	row := r.store.conn(ctx).QueryRowContext(ctx,
		`SELECT `+leaveRequestColumns+` FROM leave_requests WHERE id = ?`, id)

	request, err := scanLeaveRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leave.Request{}, leave.ErrLeaveRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("get leave request: %w", err)
	}
	return request, nil
}

// ListByOwner implements leave.Repository.
func (r *leaveRequestRepositoryImpl) ListByOwner(ctx context.Context, ownerID string) ([]leave.Request, error) {
	return r.query(ctx,
		`SELECT `+leaveRequestColumns+` FROM leave_requests
		  WHERE owner_id = ?
		  ORDER BY start_date DESC, created_at DESC`,
		ownerID,
	)
}

// List implements leave.Repository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.ListFilter) ([]leave.Request, error) {
	if filter.Status != nil {
		return r.query(ctx,
			`SELECT `+leaveRequestColumns+` FROM leave_requests
			  WHERE status = ?
			  ORDER BY created_at DESC`,
			string(*filter.Status),
		)
	}
	return r.query(ctx,
		`SELECT `+leaveRequestColumns+` FROM leave_requests ORDER BY created_at DESC`)
}

func (r *leaveRequestRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]leave.Request, error) {
	rows, err := r.store.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		request, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leave request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leave requests: %w", err)
	}
	return requests, nil
}

// UpdateStatus implements leave.Repository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.Status, decidedAt time.Time) (leave.Request, error) {
	result, err := r.store.conn(ctx).ExecContext(ctx,
		`UPDATE leave_requests
		    SET status = ?, decided_at = ?, updated_at = ?
		  WHERE id = ? AND status = ?`,
		string(status),
		toMillis(decidedAt),
		toMillis(time.Now()),
		id,
		string(leave.StatusPending),
	)
	if err != nil {
		return leave.Request{}, fmt.Errorf("update leave request status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return leave.Request{}, fmt.Errorf("update leave request status: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return leave.Request{}, err
		}
		return leave.Request{}, leave.ErrAlreadyProcessed
	}

	return r.GetByID(ctx, id)
}

// DeletePending implements leave.Repository.
func (r *leaveRequestRepositoryImpl) DeletePending(ctx context.Context, id string) error {
	result, err := r.store.conn(ctx).ExecContext(ctx,
		`DELETE FROM leave_requests WHERE id = ? AND status = ?`,
		id, string(leave.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("delete leave request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete leave request: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return leave.ErrNotPending
	}
	return nil
}

func scanLeaveRequest(row rowScanner) (leave.Request, error) {
	var (
		request   leave.Request
		leaveType string
		startDate string
		endDate   string
		status    string
		decidedAt sql.NullInt64
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&request.ID,
		&request.OwnerID,
		&request.EmployeeID,
		&request.EmployeeName,
		&leaveType,
		&startDate,
		&endDate,
		&request.Days,
		&request.LossOfPayDays,
		&request.Reason,
		&status,
		&decidedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return leave.Request{}, err
	}

	request.Type = leave.Type(leaveType)
	request.Status = leave.Status(status)
	if request.StartDate, err = parseDate(startDate); err != nil {
		return leave.Request{}, fmt.Errorf("parse start_date %q: %w", startDate, err)
	}
	if request.EndDate, err = parseDate(endDate); err != nil {
		return leave.Request{}, fmt.Errorf("parse end_date %q: %w", endDate, err)
	}
	if decidedAt.Valid {
		t := fromMillis(decidedAt.Int64)
		request.DecidedAt = &t
	}
	request.CreatedAt = fromMillis(createdAt)
	request.UpdatedAt = fromMillis(updatedAt)
	return request, nil
}
