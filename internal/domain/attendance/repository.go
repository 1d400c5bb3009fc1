package attendance

import (
	"context"
	"time"
)

// Repository defines data access methods for attendance records.
type Repository interface {
	// Create persists a new record. A second record for the same owner and
	// work date fails with ErrDuplicateClockIn.
	Create(ctx context.Context, record Record) (Record, error)

	// GetByID fails with ErrRecordNotFound when id does not resolve.
	GetByID(ctx context.Context, id string) (Record, error)

	// ListByOwnerAndRange returns records whose EnteredTime is in [from, to),
	// newest first.
	ListByOwnerAndRange(ctx context.Context, ownerID string, from, to time.Time) ([]Record, error)

	// CloseOut sets the four clock-out fields only if the record is still
	// open, otherwise it fails with ErrAlreadyClockedOut.
	CloseOut(ctx context.Context, record Record) (Record, error)
}
