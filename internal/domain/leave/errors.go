package leave

import (
	"errors"
	"fmt"
)

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrMissingField         = errors.New("required field is missing")
	ErrInvalidLeaveType     = errors.New("invalid leave type")
	ErrInvalidDateRange     = errors.New("end date must not be before start date and the range must contain a business day")
	ErrInvalidStatus        = errors.New("status must be Approved or Rejected")
	ErrUnauthorized         = errors.New("unauthorized to access this leave request")
	ErrAlreadyProcessed     = errors.New("leave request already processed")
	ErrNotPending           = errors.New("only pending leave requests can be cancelled")
	ErrOverlappingRequest   = errors.New("leave request overlaps an existing pending or approved request")

	ErrLossOfPayConfirmationRequired = errors.New("monthly leave cap exceeded, confirm loss of pay to continue")
)

// ConfirmationError carries the evaluation the caller has to confirm before resubmitting.
type ConfirmationError struct {
	Month      string
	Days       int
	Evaluation Evaluation
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("%s: %d of %d days in %s would be loss of pay",
		ErrLossOfPayConfirmationRequired, e.Evaluation.LossOfPayDays, e.Days, e.Month)
}

func (e *ConfirmationError) Unwrap() error {
	return ErrLossOfPayConfirmationRequired
}
