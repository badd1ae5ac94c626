package service

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/rally"
	"github.com/okian/courtside/internal/domain/scoring"
	"github.com/okian/courtside/internal/domain/sport"
	"github.com/okian/courtside/internal/domain/stats"
	"github.com/okian/courtside/internal/domain/types"
	"github.com/okian/courtside/internal/domain/zone"
)

// TapStatus is the result of a selection or a court tap.
type TapStatus string

const (
	TapIgnored  TapStatus = "ignored"
	TapRejected TapStatus = "rejected"
	TapSelected TapStatus = "selected"
	TapExtended TapStatus = "extended"
	TapArmed    TapStatus = "direction_armed"
	TapRecorded TapStatus = "recorded"
	TapParked   TapStatus = "parked"
)

// TapResult reports what a selection or tap did to the match.
type TapResult struct {
	Status TapStatus    `json:"status"`
	Zone   zone.Zone    `json:"zone,omitempty"`
	Point  *model.Point `json:"point,omitempty"`
}

// Selection is an operator's choice of team, point type and action.
type Selection struct {
	Team   model.Team       `json:"team"`
	Type   model.PointType  `json:"type"`
	Action model.Action     `json:"action"`
	Meta   model.ActionMeta `json:"meta"`
}

type parkedPoint struct {
	point model.Point
	// index is the log position at the time the point concluded.
	index int
}

// Match coordinates the live state of one match: the point log of the
// current period, completed periods, the tap state machine, roster and
// side/chrono bookkeeping. Scores are never stored; they are folded from the
// log on demand. A Match is not safe for concurrent use.
type Match struct {
	id        string
	rules     sport.Rules
	teams     model.TeamNames
	meta      model.Metadata
	points    []model.Point
	sets      []model.SetData
	setNumber int
	swapped   bool
	chrono    int64
	players   []model.Player
	finished  bool
	awaiting  bool
	parked    *parkedPoint
	acc       *rally.Accumulator
	assign    *bool

	createdAt time.Time
	updatedAt time.Time
	lastTS    time.Time
	version   uint64

	now   func() time.Time
	newID func() string
}

// MatchOption applies a configuration option to a Match.
type MatchOption func(*Match)

// WithMatchID sets the match id.
func WithMatchID(id string) MatchOption {
	return func(m *Match) {
		if id != "" {
			m.id = id
		}
	}
}

// WithTeamNames sets the team display names.
func WithTeamNames(names model.TeamNames) MatchOption {
	return func(m *Match) { m.teams = names }
}

// WithMetadata sets the per-match behavior flags.
func WithMetadata(meta model.Metadata) MatchOption {
	return func(m *Match) { m.meta = meta }
}

// WithPlayers sets the home roster.
func WithPlayers(players []model.Player) MatchOption {
	return func(m *Match) { m.players = slices.Clone(players) }
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) MatchOption {
	return func(m *Match) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator sets the generator of match, point and set ids.
func WithIDGenerator(gen func() string) MatchOption {
	return func(m *Match) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// NewMatch creates a match of the given sport.
func NewMatch(s model.Sport, opts ...MatchOption) (*Match, error) {
	rules, err := sport.For(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSport, err)
	}
	m := &Match{
		rules:     rules,
		meta:      model.DefaultMetadata(),
		setNumber: 1,
		now:       time.Now,
		newID:     uuid.NewString,
		teams:     model.TeamNames{Blue: "Blue", Red: "Red"},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.id == "" {
		m.id = m.newID()
	}
	if !m.meta.InitialServer.Valid() {
		m.meta.InitialServer = model.TeamBlue
	}
	m.acc = rally.New(
		rally.WithPerformanceMode(m.meta.PerformanceMode),
		rally.WithDirectionMode(m.meta.DirectionTracking),
		rally.WithIDGenerator(m.newID),
	)
	m.createdAt = m.now()
	m.updatedAt = m.createdAt
	return m, nil
}

// ID returns the match id.
func (m *Match) ID() string { return m.id }

// Sport returns the sport of the match.
func (m *Match) Sport() model.Sport { return m.rules.Sport() }

// Finished reports whether the match is closed.
func (m *Match) Finished() bool { return m.finished }

// Version increases with every accepted mutation.
func (m *Match) Version() uint64 { return m.version }

func (m *Match) touch() {
	m.updatedAt = m.now()
	m.version++
}

// stamp returns a timestamp that never goes backwards within the match.
func (m *Match) stamp() time.Time {
	t := m.now()
	if t.Before(m.lastTS) {
		t = m.lastTS
	}
	m.lastTS = t
	return t
}

// SelectAction arms an action. Serve faults that never take a court tap
// conclude immediately.
func (m *Match) SelectAction(sel Selection) TapResult {
	if m.finished || m.awaiting {
		return TapResult{Status: TapIgnored}
	}
	if !sel.Team.Valid() || !sport.Known(m.rules, sel.Action, sel.Type) {
		return TapResult{Status: TapRejected}
	}
	meta := sel.Meta
	if meta.PointValue == 0 && sel.Type == model.TypeScored {
		if v := sport.PointValue(m.rules, sel.Action); v > 1 {
			meta.PointValue = v
		}
	}
	m.acc.Select(rally.Selection{Team: sel.Team, Type: sel.Type, Action: sel.Action, Meta: meta})
	m.assign = sel.Meta.AssignToPlayer
	m.touch()

	if sport.AutoResolve(m.rules, sel.Action) {
		return m.conclude(m.acc.Resolve(m.stamp()), zone.None)
	}
	return TapResult{Status: TapSelected}
}

// CancelSelection clears the armed action. A rally in progress is kept.
func (m *Match) CancelSelection() bool {
	if m.finished || !m.acc.Cancel() {
		return false
	}
	m.assign = nil
	m.touch()
	return true
}

// RecordTap handles a court tap at normalized coordinates. Taps in zones the
// selected action cannot land in are rejected without changing any state.
func (m *Match) RecordTap(x, y float64) TapResult {
	if m.finished || m.awaiting {
		return TapResult{Status: TapIgnored}
	}
	sel, ok := m.acc.Selected()
	if !ok {
		return TapResult{Status: TapIgnored}
	}
	if !m.meta.HasCourt {
		return m.conclude(m.acc.Resolve(m.stamp()), zone.None)
	}

	z := zone.Locate(m.rules.Zones(), x, y)
	origin := m.meta.DirectionMode() && !m.acc.HasPendingOrigin()
	if !origin {
		var allowed bool
		z, allowed = zone.Check(m.rules.Zones(), x, y, m.zoneSelection(sel))
		if !allowed {
			return TapResult{Status: TapRejected, Zone: z}
		}
	}
	return m.conclude(m.acc.Record(x, y, m.stamp()), z)
}

func (m *Match) zoneSelection(sel rally.Selection) zone.Selection {
	return zone.Selection{
		Team:         sel.Team,
		Type:         sel.Type,
		Action:       sel.Action,
		SidesSwapped: m.SidesSwapped(),
		ServingSide:  m.servingSide(),
	}
}

func (m *Match) conclude(out rally.Outcome, z zone.Zone) TapResult {
	switch out.Kind {
	case rally.Extended:
		m.touch()
		return TapResult{Status: TapExtended, Zone: z}
	case rally.DirectionArmed:
		m.touch()
		return TapResult{Status: TapArmed, Zone: z}
	case rally.Concluded:
	default:
		return TapResult{Status: TapIgnored, Zone: z}
	}

	p := out.Point
	assign := m.assign
	m.assign = nil
	defer m.touch()

	if m.needsAttribution(p, assign) {
		if m.parked != nil {
			m.settle("")
			// The earlier point closed the period; the next one has not
			// started yet.
			if m.awaiting {
				return TapResult{Status: TapIgnored, Zone: z}
			}
		}
		m.parked = &parkedPoint{point: p, index: len(m.points)}
		return TapResult{Status: TapParked, Zone: z, Point: &p}
	}
	m.points = append(m.points, p)
	m.afterPoint()
	return TapResult{Status: TapRecorded, Zone: z, Point: &p}
}

// needsAttribution applies the roster attribution policy: home players are
// asked for every neutral action, every home point and every home fault
// (a red fault point). Opponent serve faults credited to blue cannot be
// attributed to a home player.
func (m *Match) needsAttribution(p model.Point, assign *bool) bool {
	if len(m.players) == 0 || p.PlayerID != "" {
		return false
	}
	if assign != nil && !*assign {
		return false
	}
	switch {
	case p.Type == model.TypeNeutral:
		return true
	case p.Team == model.TeamBlue:
		return !(p.Type == model.TypeFault && sport.AutoResolve(m.rules, p.Action))
	default:
		return p.Type == model.TypeFault
	}
}

func (m *Match) afterPoint() {
	if !m.meta.AutoEndSet {
		return
	}
	if st, ok := m.rules.GameState(m.points, m.meta); ok && st.SetJustWon != nil {
		m.EndSet()
	}
}

// settle inserts the parked point at its original position, attributed to
// playerID when not empty.
func (m *Match) settle(playerID string) {
	p := m.parked.point
	idx := min(m.parked.index, len(m.points))
	m.parked = nil
	if playerID != "" {
		p.PlayerID = playerID
		if n := len(p.RallyActions); n > 0 {
			p.RallyActions = slices.Clone(p.RallyActions)
			p.RallyActions[n-1].PlayerID = playerID
		}
	}
	m.points = slices.Insert(m.points, idx, p)
	m.afterPoint()
}

// AssignPlayer attributes the parked point to playerID and commits it.
// Roster membership is not checked; ids that leave the roster show up as
// ghost players in the stats.
func (m *Match) AssignPlayer(playerID string) bool {
	if m.finished || m.parked == nil || playerID == "" {
		return false
	}
	m.settle(playerID)
	m.touch()
	return true
}

// SkipPlayerAssignment commits the parked point without attribution.
func (m *Match) SkipPlayerAssignment() bool {
	if m.finished || m.parked == nil {
		return false
	}
	m.settle("")
	m.touch()
	return true
}

// Undo reverts the most recent event. A pending direction origin goes first,
// then the newest rally sub-action. Otherwise the newest point is removed
// and, if it concluded a multi-action rally, the rally is reopened without
// its concluding action. Completed periods are never reopened.
func (m *Match) Undo() bool {
	if m.finished {
		return false
	}
	if m.acc.DropOrigin() {
		m.touch()
		return true
	}
	if m.acc.PopAction() {
		m.touch()
		return true
	}
	if m.parked != nil && m.parked.index >= len(m.points) {
		p := m.parked.point
		m.parked = nil
		m.reopen(p)
		m.touch()
		return true
	}
	if len(m.points) == 0 {
		return false
	}
	last := m.points[len(m.points)-1]
	m.points = m.points[:len(m.points)-1]
	if m.parked != nil {
		m.parked.index = min(m.parked.index, len(m.points))
	}
	m.reopen(last)
	m.touch()
	return true
}

func (m *Match) reopen(p model.Point) {
	if len(p.RallyActions) > 1 {
		m.acc.Reopen(p)
	}
}

// EndSet closes the current period. The winner is the team ahead on the
// period score; a tie goes to blue. A parked point is committed unattributed
// first. The next period starts with StartNewSet.
func (m *Match) EndSet() bool {
	if m.finished {
		return false
	}
	if m.parked != nil {
		m.settleQuietly()
	}
	if len(m.points) == 0 {
		return false
	}
	m.closePeriod()
	m.awaiting = true
	m.touch()
	return true
}

// settleQuietly commits the parked point without triggering an automatic
// end of set.
func (m *Match) settleQuietly() {
	p := m.parked.point
	idx := min(m.parked.index, len(m.points))
	m.parked = nil
	m.points = slices.Insert(m.points, idx, p)
}

func (m *Match) closePeriod() {
	score := m.rules.Score(m.points, m.meta)
	m.sets = append(m.sets, model.SetData{
		ID:       m.newID(),
		Number:   m.setNumber,
		Points:   m.points,
		Score:    score,
		Winner:   score.Leader(),
		Duration: m.chrono,
	})
	m.points = nil
	m.acc.Discard()
	m.assign = nil
	m.chrono = 0
	m.setNumber++
}

// StartNewSet opens the next period and switches sides.
func (m *Match) StartNewSet() bool {
	if m.finished || !m.awaiting {
		return false
	}
	m.awaiting = false
	m.swapped = !m.swapped
	m.touch()
	return true
}

// FinishMatch closes any period in progress and freezes the match.
func (m *Match) FinishMatch() bool {
	if m.finished {
		return false
	}
	if m.parked != nil {
		m.settleQuietly()
	}
	// An empty period is dropped rather than stored as a zero-point set.
	if len(m.points) > 0 {
		m.closePeriod()
	}
	m.acc.Discard()
	m.awaiting = false
	m.finished = true
	m.touch()
	return true
}

// SwitchSides flips the physical sides of the teams.
func (m *Match) SwitchSides() bool {
	if m.finished {
		return false
	}
	m.swapped = !m.swapped
	m.touch()
	return true
}

// SetPlayers replaces the roster. Existing attributions are kept even for
// players that are removed.
func (m *Match) SetPlayers(players []model.Player) bool {
	if m.finished {
		return false
	}
	m.players = slices.Clone(players)
	m.touch()
	return true
}

// Tick advances the chrono by one second while a period is being played.
func (m *Match) Tick() bool {
	if m.finished || m.awaiting {
		return false
	}
	m.chrono++
	return true
}

// SidesSwapped reports the effective side flag, including automatic
// changeovers after odd games when enabled.
func (m *Match) SidesSwapped() bool {
	swapped := m.swapped
	if m.meta.AutoChangeover {
		if st, ok := m.rules.GameState(m.points, m.meta); ok && ((st.TotalGamesInSet+1)/2)%2 == 1 {
			swapped = !swapped
		}
	}
	return swapped
}

func (m *Match) servingSide() model.ServingSide {
	if st, ok := m.rules.GameState(m.points, m.meta); ok {
		return st.ServingSide
	}
	return model.ServingDeuce
}

// Score returns the score of the current period.
func (m *Match) Score() model.Score {
	return m.rules.Score(m.points, m.meta)
}

// Points returns a copy of the current period's log.
func (m *Match) Points() []model.Point { return slices.Clone(m.points) }

// Sets returns a copy of the completed periods.
func (m *Match) Sets() []model.SetData { return slices.Clone(m.sets) }

// Players returns a copy of the roster.
func (m *Match) Players() []model.Player { return slices.Clone(m.players) }

// Rules returns the sport rules of the match.
func (m *Match) Rules() sport.Rules { return m.rules }

// Names returns the team names.
func (m *Match) Names() model.TeamNames { return m.teams }

// Highlights returns the legal landing rectangles of the armed action.
func (m *Match) Highlights() []zone.Rect {
	sel, ok := m.acc.Selected()
	if !ok || !m.meta.HasCourt || m.finished {
		return nil
	}
	if m.meta.DirectionMode() && !m.acc.HasPendingOrigin() {
		return []zone.Rect{zone.Full}
	}
	return m.rules.Zones().Highlights(m.zoneSelection(sel))
}

// View projects the live state for display.
func (m *Match) View() types.MatchView {
	v := types.MatchView{
		ID:             m.id,
		Sport:          m.rules.Sport(),
		TeamNames:      m.teams,
		Metadata:       m.meta,
		PeriodLabel:    m.rules.PeriodLabel(),
		SetNumber:      m.setNumber,
		Score:          m.Score(),
		SetsWon:        stats.SetsWon(m.sets),
		ServingTeam:    scoring.ServingTeam(m.points, m.meta.InitialServer),
		ServingSide:    m.servingSide(),
		SidesSwapped:   m.SidesSwapped(),
		RallyState:     m.acc.State().String(),
		Rally:          m.acc.InProgress(),
		Points:         m.Points(),
		CompletedSets:  make([]types.SetSummary, 0, len(m.sets)),
		Players:        m.Players(),
		ChronoSeconds:  m.chrono,
		Finished:       m.finished,
		AwaitingNewSet: m.awaiting,
		Version:        m.version,
		Highlights:     m.Highlights(),
	}
	v.BlueSide = zone.TeamSide(model.TeamBlue, v.SidesSwapped)
	if st, ok := m.rules.GameState(m.points, m.meta); ok {
		v.Game = &st
		v.ServingTeam = st.ServingTeam
	}
	if sel, ok := m.acc.Selected(); ok {
		v.Selection = &types.SelectionView{
			Team:             sel.Team,
			Type:             sel.Type,
			Action:           sel.Action,
			Meta:             sel.Meta,
			AwaitingEndpoint: m.acc.HasPendingOrigin(),
		}
	}
	if m.parked != nil {
		p := m.parked.point
		v.PendingAssignment = &p
	}
	for _, s := range m.sets {
		v.CompletedSets = append(v.CompletedSets, types.SetSummary{
			Number:   s.Number,
			Score:    s.Score,
			Winner:   s.Winner,
			Duration: s.Duration,
			Points:   len(s.Points),
		})
	}
	return v
}

// Summary returns a short listing entry.
func (m *Match) Summary() types.MatchSummary {
	return types.MatchSummary{
		ID:        m.id,
		Sport:     m.rules.Sport(),
		TeamNames: m.teams,
		SetNumber: m.setNumber,
		SetsWon:   stats.SetsWon(m.sets),
		Score:     m.Score(),
		Finished:  m.finished,
	}
}

// Replay returns the state of a period after its first n points. Set 0 or
// the current set number addresses the period in progress.
func (m *Match) Replay(set, n int) (types.ReplayView, bool) {
	points, ok := m.PointsOf(set)
	if !ok {
		return types.ReplayView{}, false
	}
	number := set
	if set == 0 {
		number = m.setNumber
	}
	n = max(0, min(n, len(points)))
	prefix := points[:n]

	v := types.ReplayView{
		SetNumber: number,
		Index:     n,
		Total:     len(points),
		Score:     m.rules.Score(prefix, m.meta),
	}
	if n > 0 {
		p := points[n-1]
		v.Point = &p
	}
	if st, ok := m.rules.GameState(prefix, m.meta); ok {
		v.Game = &st
	}
	return v, true
}

// PointsOf returns the log of a period. Set 0 or the current set number
// addresses the period in progress.
func (m *Match) PointsOf(set int) ([]model.Point, bool) {
	if set == 0 || set == m.setNumber {
		return slices.Clone(m.points), true
	}
	idx := slices.IndexFunc(m.sets, func(s model.SetData) bool { return s.Number == set })
	if idx < 0 {
		return nil, false
	}
	return slices.Clone(m.sets[idx].Points), true
}

// AllPoints returns every point of the match in order.
func (m *Match) AllPoints() []model.Point {
	return stats.AllPoints(m.sets, m.points)
}

// Snapshot returns the persistable state. A parked point and the armed
// selection are transient and not included.
func (m *Match) Snapshot() model.Snapshot {
	return model.Snapshot{
		ID:               m.id,
		Sport:            m.rules.Sport(),
		TeamNames:        m.teams,
		CompletedSets:    slices.Clone(m.sets),
		CurrentSetNumber: m.setNumber,
		Points:           slices.Clone(m.points),
		Rally:            m.acc.InProgress(),
		SidesSwapped:     m.swapped,
		ServingSide:      m.servingSide(),
		ChronoSeconds:    m.chrono,
		Players:          slices.Clone(m.players),
		Metadata:         m.meta,
		Finished:         m.finished,
		AwaitingNewSet:   m.awaiting,
		CreatedAt:        m.createdAt,
		UpdatedAt:        m.updatedAt,
		Version:          m.version,
	}
}

// Restore rebuilds a match from a snapshot.
func Restore(snap model.Snapshot, opts ...MatchOption) (*Match, error) {
	base := []MatchOption{
		WithMatchID(snap.ID),
		WithTeamNames(snap.TeamNames),
		WithMetadata(snap.Metadata),
		WithPlayers(snap.Players),
	}
	m, err := NewMatch(snap.Sport, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	m.sets = slices.Clone(snap.CompletedSets)
	m.points = slices.Clone(snap.Points)
	m.setNumber = max(snap.CurrentSetNumber, 1)
	m.swapped = snap.SidesSwapped
	m.chrono = snap.ChronoSeconds
	m.finished = snap.Finished
	m.awaiting = snap.AwaitingNewSet
	m.version = snap.Version
	if !snap.CreatedAt.IsZero() {
		m.createdAt = snap.CreatedAt
	}
	if !snap.UpdatedAt.IsZero() {
		m.updatedAt = snap.UpdatedAt
	}
	for _, p := range m.points {
		if p.Timestamp.After(m.lastTS) {
			m.lastTS = p.Timestamp
		}
	}
	m.acc.Restore(snap.Rally)
	return m, nil
}
