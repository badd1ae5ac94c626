// Package simulate drives random but legal matches against a running
// courtside API and replays persisted snapshots offline.
package simulate

import (
	"time"

	"github.com/okian/courtside/internal/domain/model"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Sport    model.Sport   // Sport of every simulated match
	Matches  int           // Number of concurrent matches
	Points   int           // Recorded points per match
	SetEvery int           // Close the period after this many points; 0 never
	Roster   int           // Players per match; 0 disables attribution
	Finish   bool          // Finish matches after the last point
	Workers  int           // Number of concurrent match drivers
	Timeout  time.Duration // HTTP request timeout
	Seed     int64         // Faker seed; 0 picks one from the clock
	Verbose  bool          // Log every command
}

// Stats holds run statistics.
type Stats struct {
	MatchesCreated  int
	MatchesVerified int
	Commands        int
	Recorded        int
	Rejected        int
	Parked          int
	Failed          int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
