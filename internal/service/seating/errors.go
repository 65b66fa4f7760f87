package seating

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSeatNotFound    = errors.New("seat not found")
	ErrDuplicateSeat   = errors.New("seat with this number and row already exists in the session")
	ErrSeatHasTicket   = errors.New("seat with a ticket cannot be deleted")
	ErrGenerateFailed  = errors.New("unable to generate default seats")
)
