package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("operation not allowed for this user")

	ErrInvalidSeat = errors.New("seat does not belong to the showtime's hall")
	ErrSeatSold    = errors.New("seat already sold")
	ErrSeatLocked  = errors.New("seat locked by another user")

	ErrNoActiveHold   = errors.New("no active seat hold for this showtime")
	ErrBookingExpired = errors.New("booking has expired")
	ErrPastShowtime   = errors.New("showtime has already started")

	ErrNoPricing         = errors.New("no pricing for seat type")
	ErrUnknownConcession = errors.New("concession item not found")

	ErrAlreadyCancelled = errors.New("booking already cancelled")
	ErrAlreadyConfirmed = errors.New("booking already confirmed")

	ErrAmountMismatch = errors.New("notified amount does not match booking amount")
	ErrChecksumFailed = errors.New("payment signature verification failed")
)

// SeatConflictError names the exact seats a buyer lost a race for, so the
// client can correct its selection without refetching the whole seat map.
type SeatConflictError struct {
	Reason  error // ErrSeatSold or ErrSeatLocked
	SeatIDs []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("%v: %s", e.Reason, strings.Join(e.SeatIDs, ", "))
}

func (e *SeatConflictError) Unwrap() error { return e.Reason }

func IsConflict(err error) bool {
	return errors.Is(err, ErrSeatSold) ||
		errors.Is(err, ErrSeatLocked) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrAlreadyConfirmed)
}

func IsPrecondition(err error) bool {
	return errors.Is(err, ErrInvalidSeat) ||
		errors.Is(err, ErrNoActiveHold) ||
		errors.Is(err, ErrBookingExpired) ||
		errors.Is(err, ErrPastShowtime) ||
		errors.Is(err, ErrNoPricing) ||
		errors.Is(err, ErrUnknownConcession) ||
		errors.Is(err, ErrAmountMismatch)
}
