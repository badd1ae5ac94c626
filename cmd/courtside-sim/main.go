// Command courtside-sim drives simulated matches against a running
// courtside server and replays stored snapshots.
//
// Usage:
//
//	courtside-sim run --sport volleyball --matches 20 --points 50
//	courtside-sim run --sport tennis --roster 0 --finish=false
//	courtside-sim replay data/final.json --xlsx final.xlsx
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/courtside/internal/adapters/export"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/simulate"
	"github.com/okian/courtside/pkg/logger"
)

// Default run settings.
const (
	defaultMatches  = 10
	defaultPoints   = 40
	defaultSetEvery = 25
	defaultRoster   = 6
	defaultTimeout  = 10 * time.Second
	defaultRunLimit = 10 * time.Minute
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:          "courtside-sim",
		Short:        "Simulate and replay courtside matches",
		SilenceUsage: true,
	}
	root.AddCommand(runCmd())
	root.AddCommand(replayCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cfg := simulate.Config{}
	var sportName string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play random legal matches against a server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}
			cfg.Sport = model.Sport(sportName)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, defaultRunLimit)
			defer cancel()

			stats, err := simulate.Run(ctx, &cfg)
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(),
					"matches %d (verified %d), points %d, parked %d, rejected taps %d, commands %d in %s\n",
					stats.MatchesCreated, stats.MatchesVerified, stats.Recorded, stats.Parked,
					stats.Rejected, stats.Commands, stats.Duration.Round(time.Millisecond))
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.StringVar(&sportName, "sport", string(model.SportVolleyball), "Sport of the simulated matches")
	f.IntVar(&cfg.Matches, "matches", defaultMatches, "Number of matches")
	f.IntVar(&cfg.Points, "points", defaultPoints, "Points per match")
	f.IntVar(&cfg.SetEvery, "set-every", defaultSetEvery, "Close the period every N points; 0 never")
	f.IntVar(&cfg.Roster, "roster", defaultRoster, "Players per match; 0 disables attribution")
	f.BoolVar(&cfg.Finish, "finish", true, "Finish matches after the last point")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "Concurrent match drivers")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.Int64Var(&cfg.Seed, "seed", 0, "Faker seed; 0 uses the clock")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every command")
	return cmd
}

func replayCmd() *cobra.Command {
	var xlsxPath string
	cmd := &cobra.Command{
		Use:   "replay <snapshot.json>",
		Short: "Recompute the score of a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(args[0])
			if err != nil {
				return err
			}
			sum, err := simulate.Replay(snap)
			if err != nil {
				return err
			}
			if err := sum.Print(cmd.OutOrStdout()); err != nil {
				return err
			}
			if xlsxPath == "" {
				return nil
			}
			return writeWorkbook(xlsxPath, snap)
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the match as an Excel workbook")
	return cmd
}

func readSnapshot(path string) (model.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()
	return simulate.ReadSnapshot(f)
}

func writeWorkbook(path string, snap model.Snapshot) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.WriteWorkbook(f, snap)
}
