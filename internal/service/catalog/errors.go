package catalog

import "errors"

var (
	ErrMovieNotFound  = errors.New("movie not found")
	ErrPersonNotFound = errors.New("person not found")
	ErrEmailTaken     = errors.New("email already registered")
)
