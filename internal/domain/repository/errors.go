package repository

import "errors"

var (
	// ErrDuplicate is returned when a unique constraint rejects an insert
	ErrDuplicate = errors.New("record already exists")
	// ErrInUse is returned when a delete is blocked by dependent rows
	ErrInUse = errors.New("record is referenced by other records")
)
