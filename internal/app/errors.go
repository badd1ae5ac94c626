package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrMatchNotFound  = errors.New("match not found")
	ErrInvalidSport   = errors.New("invalid sport")
	ErrDuplicateMatch = errors.New("match already exists")
	ErrInvalidTeam    = errors.New("invalid team")
	ErrInvalidPlayers = errors.New("invalid roster")
	ErrSetNotFound    = errors.New("set not found")
)
