package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const attendanceOwnerWorkDateKey = "attendance_records_owner_work_date_key"

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `id, owner_id, employee_id, employee_name, work_date,
	entered_time, entered_location, out_time, out_location, far_distance,
	total_hours_worked, created_at, updated_at`

// Create implements attendance.Repository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}
	record.ID = id.String()

	query := `
		INSERT INTO attendance_records (
			id, owner_id, employee_id, employee_name, work_date,
			entered_time, entered_location, out_time, out_location, far_distance, total_hours_worked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + attendanceColumns

	created, err := scanAttendance(q.QueryRow(ctx, query,
		record.ID,
		record.OwnerID,
		record.EmployeeID,
		record.EmployeeName,
		record.WorkDate,
		record.EnteredTime.UTC(),
		record.EnteredLocation,
		record.OutTime,
		record.OutLocation,
		record.FarDistance,
		record.TotalHoursWorked,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == attendanceOwnerWorkDateKey {
			return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", attendance.ErrDuplicateClockIn)
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return created, nil
}

// GetByID implements attendance.Repository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	if _, err := uuid.Parse(id); err != nil {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id = $1`
	record, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return record, nil
}

// ListByOwnerAndRange implements attendance.Repository.
func (r *attendanceRepositoryImpl) ListByOwnerAndRange(ctx context.Context, ownerID string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE owner_id = $1 AND entered_time >= $2 AND entered_time < $3
		ORDER BY entered_time DESC
	`
	rows, err := q.Query(ctx, query, ownerID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return records, nil
}

// CloseOut implements attendance.Repository.
func (r *attendanceRepositoryImpl) CloseOut(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	if _, err := uuid.Parse(record.ID); err != nil {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}

	query := `
		UPDATE attendance_records
		SET out_time = $1, out_location = $2, far_distance = $3, total_hours_worked = $4, updated_at = NOW()
		WHERE id = $5 AND out_time IS NULL
		RETURNING ` + attendanceColumns

	updated, err := scanAttendance(q.QueryRow(ctx, query,
		record.OutTime,
		record.OutLocation,
		record.FarDistance,
		record.TotalHoursWorked,
		record.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, err := r.GetByID(ctx, record.ID); err != nil {
				return attendance.Record{}, err
			}
			return attendance.Record{}, attendance.ErrAlreadyClockedOut
		}
		return attendance.Record{}, fmt.Errorf("failed to close attendance record: %w", err)
	}
	return updated, nil
}

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var record attendance.Record
	err := row.Scan(
		&record.ID,
		&record.OwnerID,
		&record.EmployeeID,
		&record.EmployeeName,
		&record.WorkDate,
		&record.EnteredTime,
		&record.EnteredLocation,
		&record.OutTime,
		&record.OutLocation,
		&record.FarDistance,
		&record.TotalHoursWorked,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	record.EnteredTime = record.EnteredTime.UTC()
	if record.OutTime != nil {
		t := record.OutTime.UTC()
		record.OutTime = &t
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}
