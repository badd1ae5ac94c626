// Package service provides the scorekeeping service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	eventqueue "github.com/okian/courtside/internal/adapters/mq/queue"
	workerpool "github.com/okian/courtside/internal/adapters/mq/worker"
	repository "github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/domain/dedupe"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/sport"
	"github.com/okian/courtside/internal/domain/stats"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/internal/domain/zone"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

const tracerName = "github.com/okian/courtside/internal/app"

// CreateRequest describes a new match.
type CreateRequest struct {
	ID        string          `json:"id,omitempty"`
	Sport     model.Sport     `json:"sport"`
	TeamNames model.TeamNames `json:"team_names"`
	Metadata  *model.Metadata `json:"metadata,omitempty"`
	Players   []model.Player  `json:"players,omitempty"`
}

// Outcome is the result of a match command.
type Outcome struct {
	Match types.MatchView `json:"match"`
	Tap   *TapResult      `json:"tap,omitempty"`
	// Changed is false when the command was a no-op for the current state.
	Changed bool `json:"changed"`
	// Duplicate is set when the command id was already applied.
	Duplicate bool `json:"duplicate,omitempty"`
}

type entry struct {
	mu    sync.Mutex
	match *Match
}

// Service owns the live matches and persists their snapshots in the
// background.
type Service struct {
	mu sync.RWMutex

	// Core components
	matches      map[string]*entry
	store        repository.Store
	deduper      dedupe.Deduper
	persistQueue eventqueue.Queue
	workerPool   *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	debounce    time.Duration
	chronoTick  time.Duration
	matchOpts   []MatchOption

	// State
	started bool
	stopCh  chan struct{}
	tickWG  sync.WaitGroup

	tracer trace.Tracer
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of persistence workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the persistence queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the command id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets the snapshot store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithPersistDebounce sets how long snapshots of a match are coalesced
// before being written.
func WithPersistDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithChronoTick sets the period of the match chrono. Zero disables it.
func WithChronoTick(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.chronoTick = d
		}
	}
}

// WithMatchOptions adds options applied to every created or restored match.
func WithMatchOptions(opts ...MatchOption) Option {
	return func(s *Service) {
		s.matchOpts = append(s.matchOpts, opts...)
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		matches:     make(map[string]*entry),
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		dedupeSize:  100_000,
		debounce:    250 * time.Millisecond,
		chronoTick:  time.Second,
		stopCh:      make(chan struct{}),
		tracer:      otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the components, restores stored matches and starts the
// background loops.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting scorekeeping service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
		s.logger.Info(ctx, "using memory store")
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.persistQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)

	if err := s.restore(ctx); err != nil {
		return err
	}

	s.workerPool = workerpool.NewPool(s.workerCount, s.persistQueue, s.store,
		workerpool.WithPoolDebounce(s.debounce),
		workerpool.WithPoolLogger(s.logger.Named("persist")),
	)
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.stopCh = make(chan struct{})
	if s.chronoTick > 0 {
		s.tickWG.Add(1)
		go s.runChrono(s.stopCh)
	}

	s.started = true
	s.updateActive()
	s.logger.Info(ctx, "scorekeeping service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("matches", len(s.matches)),
	)

	return nil
}

// restore loads every stored match. Unreadable snapshots are logged and
// skipped.
func (s *Service) restore(ctx context.Context) error {
	snaps, err := s.store.List(ctx)
	if err != nil {
		if len(snaps) == 0 && !errors.Is(err, repository.ErrCorrupt) {
			return fmt.Errorf("list stored matches: %w", err)
		}
		s.logger.Warn(ctx, "some stored matches could not be read", logger.Error(err))
	}
	for _, snap := range snaps {
		m, err := Restore(snap, s.matchOpts...)
		if err != nil {
			s.logger.Warn(ctx, "skipping stored match",
				logger.String("match", snap.ID),
				logger.Error(err),
			)
			continue
		}
		s.matches[m.ID()] = &entry{match: m}
	}
	return nil
}

// Stop flushes pending snapshots and shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stopCh)
	s.mu.Unlock()

	// The chrono loop takes s.mu; wait for it outside the lock.
	s.tickWG.Wait()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping scorekeeping service...")

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.logger.Info(ctx, "scorekeeping service stopped")
}

func (s *Service) runChrono(stop <-chan struct{}) {
	defer s.tickWG.Done()
	ticker := time.NewTicker(s.chronoTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Service) tick() {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.matches))
	for _, e := range s.matches {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	ctx := context.Background()
	for _, e := range entries {
		e.mu.Lock()
		if e.match.Tick() {
			s.persist(ctx, e.match)
		}
		e.mu.Unlock()
	}
}

// SeenAndRecord atomically checks if a command id was seen and records it
// if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordCommandDuplicate()
	}
	return seen
}

// Unrecord removes a command id so that the command can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

func (s *Service) persist(ctx context.Context, m *Match) {
	job := eventqueue.Job{Snapshot: m.Snapshot()}
	if !s.persistQueue.Enqueue(ctx, job) {
		s.logger.Warn(ctx, "persistence queue rejected snapshot",
			logger.String("match", m.ID()),
			logger.Int64("version", int64(m.Version())),
		)
	}
}

func (s *Service) updateActive() {
	active := 0
	for _, e := range s.matches {
		e.mu.Lock()
		if !e.match.Finished() {
			active++
		}
		e.mu.Unlock()
	}
	metrics.UpdateActiveMatches(active)
}

func (s *Service) lookup(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	e, ok := s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return e, nil
}

func (s *Service) span(ctx context.Context, name, matchID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "match."+name, trace.WithAttributes(
		attribute.String("match.id", matchID),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// mutate runs fn on a match under its lock. A non-empty commandID makes the
// command idempotent per match.
func (s *Service) mutate(ctx context.Context, name, id, commandID string, fn func(m *Match) (*TapResult, bool, error)) (out Outcome, err error) {
	ctx, span := s.span(ctx, name, id)
	defer func() { endSpan(span, err) }()

	start := time.Now()
	defer func() {
		metrics.RecordCommandLatency(name, float64(time.Since(start).Microseconds())/1000)
	}()

	e, err := s.lookup(id)
	if err != nil {
		return Outcome{}, err
	}

	// Runs after the entry is unlocked; updateActive locks every entry.
	var finishedNow bool
	defer func() {
		if finishedNow {
			s.mu.RLock()
			s.updateActive()
			s.mu.RUnlock()
		}
	}()

	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.match
	span.SetAttributes(attribute.String("match.sport", string(m.Sport())))
	ctx = logger.WithMatch(ctx, id, string(m.Sport()))

	var key string
	if commandID != "" {
		key = dedupe.Key(id, commandID)
		if s.SeenAndRecord(ctx, key) {
			s.logger.Debug(ctx, "duplicate command detected, skipping",
				logger.String("command", name),
				logger.String("commandID", commandID),
			)
			return Outcome{Match: m.View(), Duplicate: true}, nil
		}
	}

	setBefore, finishedBefore := m.setNumber, m.Finished()
	tap, changed, err := fn(m)
	if err != nil {
		if key != "" {
			s.Unrecord(ctx, key)
		}
		return Outcome{}, err
	}

	sport := string(m.Sport())
	for n := setBefore; n < m.setNumber; n++ {
		metrics.RecordSetCompleted(sport)
	}
	if changed {
		s.persist(ctx, m)
	}
	if !finishedBefore && m.Finished() {
		metrics.RecordMatchFinished(sport)
		s.logger.Info(ctx, "match finished")
		finishedNow = true
	}
	span.SetAttributes(attribute.Bool("match.changed", changed))

	return Outcome{Match: m.View(), Tap: tap, Changed: changed}, nil
}

// CreateMatch registers a new match.
func (s *Service) CreateMatch(ctx context.Context, req CreateRequest) (view types.MatchView, err error) {
	ctx, span := s.span(ctx, "create", req.ID)
	defer func() { endSpan(span, err) }()

	if err := validPlayers(req.Players); err != nil {
		return types.MatchView{}, err
	}
	opts := slices.Clone(s.matchOpts)
	opts = append(opts, WithMatchID(req.ID), WithPlayers(req.Players))
	if req.TeamNames.Blue != "" || req.TeamNames.Red != "" {
		opts = append(opts, WithTeamNames(req.TeamNames))
	}
	if req.Metadata != nil {
		opts = append(opts, WithMetadata(*req.Metadata))
	}
	m, err := NewMatch(req.Sport, opts...)
	if err != nil {
		return types.MatchView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return types.MatchView{}, ErrNotStarted
	}
	if _, exists := s.matches[m.ID()]; exists {
		return types.MatchView{}, fmt.Errorf("%w: %s", ErrDuplicateMatch, m.ID())
	}
	s.matches[m.ID()] = &entry{match: m}
	s.persist(ctx, m)
	s.updateActive()

	s.logger.Info(ctx, "match created",
		logger.String("match", m.ID()),
		logger.String("sport", string(m.Sport())),
	)
	return m.View(), nil
}

// GetMatch returns the live view of a match.
func (s *Service) GetMatch(ctx context.Context, id string) (types.MatchView, error) {
	e, err := s.lookup(id)
	if err != nil {
		return types.MatchView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.match.View(), nil
}

// Snapshot returns the persistable state of a match.
func (s *Service) Snapshot(ctx context.Context, id string) (model.Snapshot, error) {
	e, err := s.lookup(id)
	if err != nil {
		return model.Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.match.Snapshot(), nil
}

// ListMatches returns a summary of every match, oldest first.
func (s *Service) ListMatches(ctx context.Context) ([]types.MatchSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	type row struct {
		created time.Time
		sum     types.MatchSummary
	}
	rows := make([]row, 0, len(s.matches))
	for _, e := range s.matches {
		e.mu.Lock()
		rows = append(rows, row{created: e.match.createdAt, sum: e.match.Summary()})
		e.mu.Unlock()
	}
	slices.SortFunc(rows, func(a, b row) int {
		if c := a.created.Compare(b.created); c != 0 {
			return c
		}
		if a.sum.ID < b.sum.ID {
			return -1
		}
		return 1
	})
	out := make([]types.MatchSummary, len(rows))
	for i, r := range rows {
		out[i] = r.sum
	}
	return out, nil
}

// DeleteMatch removes a match and its stored snapshot.
func (s *Service) DeleteMatch(ctx context.Context, id string) (err error) {
	ctx, span := s.span(ctx, "delete", id)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	if _, ok := s.matches[id]; !ok {
		return ErrMatchNotFound
	}
	delete(s.matches, id)
	job := eventqueue.Job{Snapshot: model.Snapshot{ID: id}, Delete: true}
	if !s.persistQueue.Enqueue(ctx, job) {
		if err := s.store.Delete(ctx, id); err != nil {
			return err
		}
	}
	s.updateActive()
	s.logger.Info(ctx, "match deleted", logger.String("match", id))
	return nil
}

// SelectAction arms an action on a match.
func (s *Service) SelectAction(ctx context.Context, id, commandID string, sel Selection) (Outcome, error) {
	return s.mutate(ctx, "select", id, commandID, func(m *Match) (*TapResult, bool, error) {
		if !sel.Team.Valid() {
			return nil, false, ErrInvalidTeam
		}
		version := m.Version()
		res := m.SelectAction(sel)
		s.observeTap(m, res, "selection")
		return &res, m.Version() != version, nil
	})
}

// CancelSelection clears the armed action.
func (s *Service) CancelSelection(ctx context.Context, id, commandID string) (Outcome, error) {
	return s.mutate(ctx, "cancel", id, commandID, func(m *Match) (*TapResult, bool, error) {
		return nil, m.CancelSelection(), nil
	})
}

// RecordTap records a court tap.
func (s *Service) RecordTap(ctx context.Context, id, commandID string, x, y float64) (Outcome, error) {
	return s.mutate(ctx, "tap", id, commandID, func(m *Match) (*TapResult, bool, error) {
		// An ignored tap can still commit an earlier parked point.
		version := m.Version()
		res := m.RecordTap(x, y)
		s.observeTap(m, res, "zone")
		return &res, m.Version() != version, nil
	})
}

func (s *Service) observeTap(m *Match, res TapResult, reason string) {
	sport := string(m.Sport())
	switch res.Status {
	case TapRecorded:
		metrics.RecordPoint(sport, string(res.Point.Type))
	case TapRejected:
		metrics.RecordTapRejected(sport, reason)
	}
}

// Undo reverts the most recent event of a match.
func (s *Service) Undo(ctx context.Context, id, commandID string) (Outcome, error) {
	return s.mutate(ctx, "undo", id, commandID, func(m *Match) (*TapResult, bool, error) {
		changed := m.Undo()
		if changed {
			metrics.RecordUndo(string(m.Sport()))
		}
		return nil, changed, nil
	})
}

// AssignPlayer attributes the point awaiting a player.
func (s *Service) AssignPlayer(ctx context.Context, id, commandID, playerID string) (Outcome, error) {
	return s.mutate(ctx, "assign", id, commandID, func(m *Match) (*TapResult, bool, error) {
		if playerID == "" {
			return nil, false, fmt.Errorf("%w: player id is required", ErrInvalidPlayers)
		}
		if m.parked == nil {
			return nil, false, nil
		}
		p := m.parked.point
		if !m.AssignPlayer(playerID) {
			return nil, false, nil
		}
		metrics.RecordPoint(string(m.Sport()), string(p.Type))
		return nil, true, nil
	})
}

// SkipPlayerAssignment commits the point awaiting a player unattributed.
func (s *Service) SkipPlayerAssignment(ctx context.Context, id, commandID string) (Outcome, error) {
	return s.mutate(ctx, "skip_assign", id, commandID, func(m *Match) (*TapResult, bool, error) {
		if m.parked == nil {
			return nil, false, nil
		}
		p := m.parked.point
		if !m.SkipPlayerAssignment() {
			return nil, false, nil
		}
		metrics.RecordPoint(string(m.Sport()), string(p.Type))
		return nil, true, nil
	})
}

// SetPlayers replaces the roster of a match.
func (s *Service) SetPlayers(ctx context.Context, id, commandID string, players []model.Player) (Outcome, error) {
	return s.mutate(ctx, "roster", id, commandID, func(m *Match) (*TapResult, bool, error) {
		if err := validPlayers(players); err != nil {
			return nil, false, err
		}
		return nil, m.SetPlayers(players), nil
	})
}

// EndSet closes the current period.
func (s *Service) EndSet(ctx context.Context, id, commandID string) (Outcome, error) {
	return s.mutate(ctx, "end_set", id, commandID, func(m *Match) (*TapResult, bool, error) {
		return nil, m.EndSet(), nil
	})
}

// StartNewSet opens the next period.
func (s *Service) StartNewSet(ctx context.Context, id, commandID string) (Outcome, error) {
	return s.mutate(ctx, "start_set", id, commandID, func(m *Match) (*TapResult, bool, error) {
		return nil, m.StartNewSet(), nil
	})
}

// FinishMatch closes the match.
func (s *Service) FinishMatch(ctx context.Context, id, commandID string) (Outcome, error) {
	return s.mutate(ctx, "finish", id, commandID, func(m *Match) (*TapResult, bool, error) {
		return nil, m.FinishMatch(), nil
	})
}

// SwitchSides flips the teams' physical sides.
func (s *Service) SwitchSides(ctx context.Context, id, commandID string) (Outcome, error) {
	return s.mutate(ctx, "switch_sides", id, commandID, func(m *Match) (*TapResult, bool, error) {
		return nil, m.SwitchSides(), nil
	})
}

// Highlights returns the legal landing zones of the armed action.
func (s *Service) Highlights(ctx context.Context, id string) ([]zone.Rect, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.match.Highlights(), nil
}

// Replay returns the state of a period after its first index points.
func (s *Service) Replay(ctx context.Context, id string, set, index int) (types.ReplayView, error) {
	e, err := s.lookup(id)
	if err != nil {
		return types.ReplayView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.match.Replay(set, index)
	if !ok {
		return types.ReplayView{}, fmt.Errorf("%w: %d", ErrSetNotFound, set)
	}
	return v, nil
}

// Stats aggregates statistics for one period, or the whole match when set
// is negative.
func (s *Service) Stats(ctx context.Context, id string, set int) (types.StatsView, error) {
	points, number, roster, _, err := s.points(id, set)
	if err != nil {
		return types.StatsView{}, err
	}
	return types.StatsView{
		SetNumber: number,
		Teams:     stats.Teams(points),
		Players:   stats.Players(points, roster),
	}, nil
}

// Heatmap bins the spatial points of a period, or the whole match when set
// is negative, into a cols x rows grid.
func (s *Service) Heatmap(ctx context.Context, id string, set, cols, rows int) (stats.Heatmap, error) {
	points, _, _, rules, err := s.points(id, set)
	if err != nil {
		return stats.Heatmap{}, err
	}
	return stats.Density(points, cols, rows, rules.Spatial), nil
}

// CourtPoints returns the points of a period, or of the whole match when set
// is negative, with the sport rules and team names needed to draw them.
func (s *Service) CourtPoints(ctx context.Context, id string, set int) ([]model.Point, sport.Rules, model.TeamNames, error) {
	points, _, _, rules, err := s.points(id, set)
	if err != nil {
		return nil, nil, model.TeamNames{}, err
	}
	e, err := s.lookup(id)
	if err != nil {
		return nil, nil, model.TeamNames{}, err
	}
	e.mu.Lock()
	names := e.match.Names()
	e.mu.Unlock()
	return points, rules, names, nil
}

// points copies the requested points and the roster. The returned set
// number is 0 for the whole match.
func (s *Service) points(id string, set int) ([]model.Point, int, []model.Player, sport.Rules, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.match
	if set < 0 {
		return m.AllPoints(), 0, m.Players(), m.Rules(), nil
	}
	points, ok := m.PointsOf(set)
	if !ok {
		return nil, 0, nil, nil, fmt.Errorf("%w: %d", ErrSetNotFound, set)
	}
	if set == 0 {
		set = m.setNumber
	}
	return points, set, m.Players(), m.Rules(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.persistQueue.Len(ctx)
		out["queueLength"] = queueLen
		out["matches"] = len(s.matches)
		out["storedMatches"] = s.store.Count(ctx)
		out["dedupeEntries"] = s.deduper.Size()

		metrics.UpdatePersistQueueSize(queueLen)
		metrics.UpdatePersistWorkers(s.workerCount)
	}

	return out
}

func validPlayers(players []model.Player) error {
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if p.ID == "" {
			return fmt.Errorf("%w: player without id", ErrInvalidPlayers)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate player %s", ErrInvalidPlayers, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
