// Package match owns the state of the match being scored.
package match

import (
	"context"
	"errors"
	"iter"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/tanteo/internal/history"
	"github.com/verte-zerg/tanteo/internal/model"
)

// ErrInvalidTeam is returned for a team index other than 0 or 1.
var ErrInvalidTeam = errors.New("team index must be 0 or 1")

// NoWinner is the Outcome.Winner value when no winner was declared.
const NoWinner = -1

// Persister loads and stores the match state.
type Persister interface {
	LoadState(ctx context.Context) model.MatchState
	SaveState(ctx context.Context, st model.MatchState) error
}

// Recorder receives the final state of a won match.
type Recorder interface {
	RecordMatch(ctx context.Context, st model.MatchState, winner int) model.MatchResult
}

// Outcome describes what AddPoints did.
type Outcome struct {
	Applied bool
	// Winner is the team declared winner by this call, or NoWinner.
	Winner int
}

// Engine applies scoring actions to a match. It is driven from a single
// goroutine and is not safe for concurrent use.
type Engine struct {
	state    model.MatchState
	store    Persister
	recorder Recorder
	defaults model.Defaults
	now      func() time.Time
	log      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithDefaults sets the names and target a reset match starts from.
func WithDefaults(d model.Defaults) Option {
	return func(e *Engine) { e.defaults = d }
}

// New loads the persisted match and returns an Engine for it.
func New(ctx context.Context, store Persister, recorder Recorder, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		recorder: recorder,
		defaults: model.StandardDefaults(),
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = store.LoadState(ctx)
	return e
}

// State returns a copy of the current match state.
func (e *Engine) State() model.MatchState {
	out := e.state.Clone()
	if e.state.Snapshot != nil {
		snap := e.state.Snapshot.Clone()
		out.Snapshot = &snap
	}
	return out
}

// CanUndo reports whether Undo would change anything.
func (e *Engine) CanUndo() bool {
	return e.state.Snapshot != nil || len(e.state.History) > 0
}

// AddPoints adds delta to a team's score, capping at the target and
// flooring at zero. Scoring after a win or past the target is a no-op.
func (e *Engine) AddPoints(ctx context.Context, team, delta int) (Outcome, error) {
	out := Outcome{Winner: NoWinner}
	if !model.ValidTeam(team) {
		return out, ErrInvalidTeam
	}
	if e.state.WinnerShown {
		return out, nil
	}
	current := e.state.Teams[team].Score
	target := e.state.Target
	if current >= target {
		return out, nil
	}
	next := max(0, current+delta)
	if next >= target {
		next = target
	}
	// The recorded delta is the applied one so history always sums to the score.
	pts := next - current
	if pts == 0 {
		return out, nil
	}

	before := e.state.Clone()
	e.state.Snapshot = &before
	e.state.Teams[team].Score = next
	e.state.PushHistory(model.HistoryEntry{
		Time:  e.now().UnixMilli(),
		Team:  team,
		Pts:   pts,
		Total: next,
	})
	e.persist(ctx)

	out.Applied = true
	out.Winner = e.checkWinner(ctx)
	return out, nil
}

// Undo reverts the last AddPoints from the snapshot when there is one.
// Otherwise it pops the newest history entry and subtracts its points; that
// path leaves the winner flag untouched. Reports whether anything changed.
func (e *Engine) Undo(ctx context.Context) bool {
	switch {
	case e.state.Snapshot != nil:
		restored := e.state.Snapshot.Clone()
		e.state = restored
	case len(e.state.History) > 0:
		last := e.state.History[0]
		e.state.History = e.state.History[1:]
		e.state.Teams[last.Team].Score = max(0, e.state.Teams[last.Team].Score-last.Pts)
	default:
		return false
	}
	e.persist(ctx)
	return true
}

// Reset replaces the match with a fresh default one.
func (e *Engine) Reset(ctx context.Context) {
	e.state = model.NewMatchState(e.defaults, e.now())
	e.persist(ctx)
}

// NewGameKeepNames starts a rematch with the same names and target.
func (e *Engine) NewGameKeepNames(ctx context.Context) {
	for i := range e.state.Teams {
		e.state.Teams[i].Score = 0
	}
	e.state.History = []model.HistoryEntry{}
	e.state.WinnerShown = false
	e.state.Snapshot = nil
	e.state.StartTime = e.now().UnixMilli()
	e.persist(ctx)
}

// RenameTeam sets a team name. Blank names fall back to "TEAM n".
func (e *Engine) RenameTeam(ctx context.Context, team int, name string) error {
	if !model.ValidTeam(team) {
		return ErrInvalidTeam
	}
	e.state.Teams[team].Name = model.NormalizeName(name, team)
	e.persist(ctx)
	return nil
}

// SetTarget parses raw as the new target, falling back to the default for
// anything that is not a positive integer. Existing scores are not
// re-checked. Returns the applied target.
func (e *Engine) SetTarget(ctx context.Context, raw string) int {
	target, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || target <= 0 {
		target = model.DefaultTarget
	}
	e.state.Target = target
	e.persist(ctx)
	return target
}

// Detailed returns the per-entry history view.
func (e *Engine) Detailed() iter.Seq[history.Row] {
	return history.Detailed(e.State().History)
}

// Grouped returns the time-grouped history view.
func (e *Engine) Grouped(window time.Duration) []history.Group {
	return history.Grouped(e.state.History, window)
}

func (e *Engine) checkWinner(ctx context.Context) int {
	if e.state.WinnerShown {
		return NoWinner
	}
	for i, t := range e.state.Teams {
		if t.Score < e.state.Target {
			continue
		}
		e.state.WinnerShown = true
		e.persist(ctx)
		if e.recorder != nil {
			e.recorder.RecordMatch(ctx, e.state.Clone(), i)
		}
		e.log.Info("winner declared", zap.Int("team", i), zap.String("name", t.Name))
		return i
	}
	return NoWinner
}

func (e *Engine) persist(ctx context.Context) {
	if err := e.store.SaveState(ctx, e.state); err != nil {
		e.log.Error("failed to save match state", zap.Error(err))
	}
}
