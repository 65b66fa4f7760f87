package booking

import "errors"

var (
	ErrNoSeats        = errors.New("no seats selected")
	ErrSeatsNotFound  = errors.New("ticket seats are not found")
	ErrAlreadyBooked  = errors.New("seat is already booked")
	ErrMixedSessions  = errors.New("ticket should have seats from the same session")
	ErrSessionEnded   = errors.New("session is ended")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrPersonNotFound = errors.New("person not found")
	ErrForbidden      = errors.New("no access")
)
