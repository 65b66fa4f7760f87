package scheduling

import "errors"

var (
	ErrInvalidRange     = errors.New("session start should be earlier than session end")
	ErrInvalidStart     = errors.New("session cannot start earlier than the movie start date")
	ErrMovieNotFound    = errors.New("movie not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrHasTicketedSeats = errors.New("session with ticketed seats cannot be deleted")
)
