package export

import "errors"

// Sentinel kinds for export errors.
var (
	ErrEmptyRoster  = errors.New("roster sheet has no players")
	ErrRosterHeader = errors.New("roster sheet has no name column")
	ErrWorkbook     = errors.New("workbook generation failed")
)
