package repository

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrSeatsTaken   = errors.New("some seats already have a ticket")
	ErrSeatTicketed = errors.New("seat has a ticket attached")
)
