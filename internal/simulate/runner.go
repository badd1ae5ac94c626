package simulate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/sport"
	"github.com/okian/courtside/pkg/logger"
)

// Attempts allowed per recorded point before a match driver gives up.
const attemptsPerPoint = 4

type counters struct {
	created  atomic.Int64
	verified atomic.Int64
	commands atomic.Int64
	recorded atomic.Int64
	rejected atomic.Int64
	parked   atomic.Int64
	failed   atomic.Int64
}

type runner struct {
	cfg    *Config
	client *Client
	gen    *Generator
	defs   []sport.ActionDef
	rules  sport.Rules
	log    logger.Logger
	counts counters
}

// Run drives cfg.Matches matches concurrently and verifies every served
// score against a score recomputed from the match snapshot.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	rules, err := sport.For(cfg.Sport)
	if err != nil {
		return stats, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := &runner{
		cfg:    cfg,
		client: NewClient(cfg.BaseURL, cfg.Timeout),
		gen:    NewGenerator(seed),
		rules:  rules,
		log:    logger.Named("simulate"),
	}

	r.log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("sport", string(cfg.Sport)),
		logger.Int("matches", cfg.Matches),
		logger.Int("points", cfg.Points),
		logger.Int("workers", cfg.Workers),
		logger.Int64("seed", seed))

	if err := r.client.Health(ctx); err != nil {
		return stats, err
	}
	r.defs, err = r.client.Actions(ctx, cfg.Sport)
	if err != nil {
		return stats, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	if _, ok := r.gen.Selection(r.defs); !ok {
		return stats, fmt.Errorf("%w: %s", ErrNoVocabulary, cfg.Sport)
	}

	errs := r.drive(ctx)

	stats.MatchesCreated = int(r.counts.created.Load())
	stats.MatchesVerified = int(r.counts.verified.Load())
	stats.Commands = int(r.counts.commands.Load())
	stats.Recorded = int(r.counts.recorded.Load())
	stats.Rejected = int(r.counts.rejected.Load())
	stats.Parked = int(r.counts.parked.Load())
	stats.Failed = int(r.counts.failed.Load())
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	r.log.Info(ctx, "simulation finished",
		logger.Int("matchesCreated", stats.MatchesCreated),
		logger.Int("matchesVerified", stats.MatchesVerified),
		logger.Int("commands", stats.Commands),
		logger.Int("recorded", stats.Recorded),
		logger.Int("rejected", stats.Rejected),
		logger.Int("parked", stats.Parked),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration))

	return stats, errors.Join(errs...)
}

// drive runs one driver per match on a bounded set of workers.
func (r *runner) drive(ctx context.Context) []error {
	workers := max(1, min(r.cfg.Workers, r.cfg.Matches))
	jobs := make(chan int, workers)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := r.match(ctx, i); err != nil {
					r.counts.failed.Add(1)
					r.log.Warn(ctx, "match driver failed", logger.Int("match", i), logger.Error(err))
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}
		}()
	}

	func() {
		defer close(jobs)
		for i := range r.cfg.Matches {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func (r *runner) match(ctx context.Context, n int) error {
	req := service.CreateRequest{
		Sport:     r.cfg.Sport,
		TeamNames: r.gen.TeamNames(),
	}
	if r.cfg.Roster > 0 {
		req.Players = r.gen.Roster(r.cfg.Roster)
	}
	view, err := r.client.CreateMatch(ctx, req)
	if err != nil {
		return fmt.Errorf("create match %d: %w", n, err)
	}
	r.counts.created.Add(1)
	id := view.ID

	recorded := 0
	for attempt := 0; recorded < r.cfg.Points && attempt < r.cfg.Points*attemptsPerPoint; attempt++ {
		out, err := r.point(ctx, id, req.Players)
		if err != nil {
			return err
		}
		if out == nil {
			continue
		}
		recorded++

		if out.Match.AwaitingNewSet {
			if _, err := r.command(ctx, id, "sets/start", nil); err != nil {
				return err
			}
		} else if r.cfg.SetEvery > 0 && recorded%r.cfg.SetEvery == 0 && recorded < r.cfg.Points {
			if _, err := r.command(ctx, id, "sets/end", nil); err != nil {
				return err
			}
			if _, err := r.command(ctx, id, "sets/start", nil); err != nil {
				return err
			}
		}
	}

	if r.cfg.Finish {
		if _, err := r.command(ctx, id, "finish", nil); err != nil {
			return err
		}
	}
	return r.verify(ctx, id)
}

// point plays one selection to its end. It returns the final outcome when
// a point was recorded and nil when the attempt produced no point.
func (r *runner) point(ctx context.Context, id string, players []model.Player) (*service.Outcome, error) {
	sel, _ := r.gen.Selection(r.defs)
	out, err := r.command(ctx, id, "select", sel)
	if err != nil {
		return nil, err
	}

	// Direction tracking takes an origin and an endpoint tap.
	for taps := 0; taps < 2 && out.Tap != nil && (out.Tap.Status == service.TapSelected || out.Tap.Status == service.TapArmed); taps++ {
		rects, err := r.client.Highlights(ctx, id)
		if err != nil {
			return nil, err
		}
		x, y := r.gen.Tap(rects)
		if out, err = r.command(ctx, id, "tap", map[string]float64{"x": x, "y": y}); err != nil {
			return nil, err
		}
	}
	if out.Tap == nil {
		return nil, nil
	}

	switch out.Tap.Status {
	case service.TapRecorded:
		r.counts.recorded.Add(1)
		return &out, nil
	case service.TapParked:
		r.counts.recorded.Add(1)
		r.counts.parked.Add(1)
		if player := r.gen.Player(players); player != "" {
			out, err = r.command(ctx, id, "players/assign", map[string]string{"player_id": player})
		} else {
			out, err = r.command(ctx, id, "players/skip", nil)
		}
		if err != nil {
			return nil, err
		}
		return &out, nil
	case service.TapRejected:
		r.counts.rejected.Add(1)
	}
	if out.Match.Selection != nil {
		if _, err := r.command(ctx, id, "cancel", nil); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (r *runner) command(ctx context.Context, id, command string, body any) (service.Outcome, error) {
	r.counts.commands.Add(1)
	out, err := r.client.Command(ctx, id, command, r.gen.CommandID(), body)
	if err != nil {
		return out, err
	}
	if r.cfg.Verbose {
		status := ""
		if out.Tap != nil {
			status = string(out.Tap.Status)
		}
		r.log.Debug(ctx, "command",
			logger.String("match", id),
			logger.String("command", command),
			logger.String("status", status),
			logger.Int("blue", out.Match.Score.Blue),
			logger.Int("red", out.Match.Score.Red))
	}
	return out, nil
}

// verify recomputes the current period score from the snapshot.
func (r *runner) verify(ctx context.Context, id string) error {
	view, err := r.client.Match(ctx, id)
	if err != nil {
		return err
	}
	snap, err := r.client.Snapshot(ctx, id)
	if err != nil {
		return err
	}
	if got := r.rules.Score(snap.Points, snap.Metadata); got != view.Score {
		return fmt.Errorf("%w: match %s served %+v, recomputed %+v", ErrScoreDrift, id, view.Score, got)
	}
	if len(snap.CompletedSets) != len(view.CompletedSets) {
		return fmt.Errorf("%w: match %s has %d stored sets, view shows %d",
			ErrScoreDrift, id, len(snap.CompletedSets), len(view.CompletedSets))
	}
	r.counts.verified.Add(1)
	return nil
}
