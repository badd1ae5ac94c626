package simulate

import "errors"

// Sentinel kinds for simulation errors.
var (
	ErrUnhealthy    = errors.New("service is not healthy")
	ErrStatus       = errors.New("unexpected response status")
	ErrScoreDrift   = errors.New("served score differs from recomputed score")
	ErrNoVocabulary = errors.New("sport has no tappable actions")
)
