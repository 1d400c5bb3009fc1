package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	ErrDuplicateClockIn     = errors.New("you have already registered your attendance for today")
	ErrRecordNotFound       = errors.New("attendance record not found")
	ErrAlreadyClockedOut    = errors.New("you have already clocked out")
	ErrOutsideAllowedRadius = errors.New("you are outside the allowed radius")
)

// RadiusError reports how far a rejected clock-in was from the site.
type RadiusError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *RadiusError) Error() string {
	return fmt.Sprintf("%s: %.0f m away, allowed %.0f m", ErrOutsideAllowedRadius, e.DistanceMeters, e.RadiusMeters)
}

func (e *RadiusError) Unwrap() error {
	return ErrOutsideAllowedRadius
}
