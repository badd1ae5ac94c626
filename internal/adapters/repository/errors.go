package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound  = errors.New("match not found")
	ErrInvalidID = errors.New("invalid match id")
	ErrCorrupt   = errors.New("corrupt snapshot")
)
