package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/leave"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/geo"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var radiusErr *attendance.RadiusError
	if errors.As(err, &radiusErr) {
		Forbidden(w, "You are outside the allowed radius", map[string]string{
			"distance_meters": strconv.Itoa(geo.RoundMeters(radiusErr.DistanceMeters)),
			"radius_meters":   strconv.Itoa(geo.RoundMeters(radiusErr.RadiusMeters)),
		})
		return
	}

	var confirmErr *leave.ConfirmationError
	if errors.As(err, &confirmErr) {
		ConflictWithData(w, "LOSS_OF_PAY_CONFIRMATION_REQUIRED",
			"Monthly leave cap exceeded, resubmit with confirm_loss_of_pay to continue",
			leave.NewConfirmationDetails(confirmErr))
		return
	}

	switch {
	case errors.Is(err, geo.ErrInvalidCoordinate):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrOutsideAllowedRadius):
		Forbidden(w, "You are outside the allowed radius", nil)
	case errors.Is(err, attendance.ErrDuplicateClockIn):
		Conflict(w, "You have already registered your attendance for today")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		Conflict(w, "You have already clocked out")

	// Leave domain errors
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrInvalidLeaveType):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrInvalidStatus):
		BadRequest(w, "Status must be Approved or Rejected", nil)
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrUnauthorized):
		Forbidden(w, "You are not allowed to access this leave request", nil)
	case errors.Is(err, leave.ErrAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrNotPending):
		Conflict(w, "Only pending leave requests can be cancelled")
	case errors.Is(err, leave.ErrOverlappingRequest):
		Conflict(w, "Leave request overlaps an existing request")
	case errors.Is(err, leave.ErrLossOfPayConfirmationRequired):
		Conflict(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
