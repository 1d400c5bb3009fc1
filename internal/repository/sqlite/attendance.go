package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/attendance"
	"github.com/google/uuid"
)

type attendanceRepositoryImpl struct {
	store *Store
}

func NewAttendanceRepository(store *Store) attendance.Repository {
	return &attendanceRepositoryImpl{store: store}
}

const attendanceColumns = `id, owner_id, employee_id, employee_name, work_date,
	entered_time, entered_location, out_time, out_location, far_distance,
	total_hours_worked, created_at, updated_at`

// Create implements attendance.Repository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("generate attendance id: %w", err)
	}
	now := time.Now().UTC()
	record.ID = id.String()
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err = r.store.conn(ctx).ExecContext(ctx,
		`INSERT INTO attendance_records (`+attendanceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.OwnerID,
		record.EmployeeID,
		record.EmployeeName,
		record.WorkDate.Format(dateLayout),
		toMillis(record.EnteredTime),
		record.EnteredLocation,
		nullMillis(record.OutTime),
		nullString(record.OutLocation),
		nullFloat(record.FarDistance),
		nullFloat(record.TotalHoursWorked),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "attendance_records.owner_id") {
			return attendance.Record{}, fmt.Errorf("create attendance record: %w", attendance.ErrDuplicateClockIn)
		}
		return attendance.Record{}, fmt.Errorf("create attendance record: %w", err)
	}

	return r.GetByID(ctx, record.ID)
}

// GetByID implements attendance.Repository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	row := r.store.conn(ctx).QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records WHERE id = ?`, id)

	record, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("get attendance record: %w", err)
	}
	return record, nil
}

// ListByOwnerAndRange implements attendance.Repository.
func (r *attendanceRepositoryImpl) ListByOwnerAndRange(ctx context.Context, ownerID string, from, to time.Time) ([]attendance.Record, error) {
	rows, err := r.store.conn(ctx).QueryContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records
		  WHERE owner_id = ? AND entered_time >= ? AND entered_time < ?
		  ORDER BY entered_time DESC`,
		ownerID, toMillis(from), toMillis(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return records, nil
}

// CloseOut implements attendance.Repository.
func (r *attendanceRepositoryImpl) CloseOut(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	result, err := r.store.conn(ctx).ExecContext(ctx,
		`UPDATE attendance_records
		    SET out_time = ?, out_location = ?, far_distance = ?, total_hours_worked = ?, updated_at = ?
		  WHERE id = ? AND out_time IS NULL`,
		nullMillis(record.OutTime),
		nullString(record.OutLocation),
		nullFloat(record.FarDistance),
		nullFloat(record.TotalHoursWorked),
		toMillis(time.Now()),
		record.ID,
	)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("close attendance record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("close attendance record: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, record.ID); err != nil {
			return attendance.Record{}, err
		}
		return attendance.Record{}, attendance.ErrAlreadyClockedOut
	}

	return r.GetByID(ctx, record.ID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendance(row rowScanner) (attendance.Record, error) {
	var (
		record      attendance.Record
		workDate    string
		enteredTime int64
		outTime     sql.NullInt64
		outLocation sql.NullString
		farDistance sql.NullFloat64
		totalHours  sql.NullFloat64
		createdAt   int64
		updatedAt   int64
	)
	err := row.Scan(
		&record.ID,
		&record.OwnerID,
		&record.EmployeeID,
		&record.EmployeeName,
		&workDate,
		&enteredTime,
		&record.EnteredLocation,
		&outTime,
		&outLocation,
		&farDistance,
		&totalHours,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	record.WorkDate, err = parseDate(workDate)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("parse work_date %q: %w", workDate, err)
	}
	record.EnteredTime = fromMillis(enteredTime)
	if outTime.Valid {
		t := fromMillis(outTime.Int64)
		record.OutTime = &t
	}
	if outLocation.Valid {
		record.OutLocation = &outLocation.String
	}
	if farDistance.Valid {
		record.FarDistance = &farDistance.Float64
	}
	if totalHours.Valid {
		record.TotalHoursWorked = &totalHours.Float64
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
