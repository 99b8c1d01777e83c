// Package stats records finished matches and reports on them.
package stats

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/tanteo/internal/model"
)

// Persister is the storage the recorder appends to.
type Persister interface {
	LoadStats(ctx context.Context) model.StatsStore
	SaveStats(ctx context.Context, s model.StatsStore) error
}

// Recorder appends match results to the persisted statistics.
type Recorder struct {
	store Persister
	log   *zap.Logger
	now   func() time.Time
}

// NewRecorder builds a Recorder. A nil logger disables logging.
func NewRecorder(store Persister, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{store: store, log: log, now: time.Now}
}

// SetClock overrides the time source.
func (r *Recorder) SetClock(now func() time.Time) {
	r.now = now
}

// RecordMatch appends a result built from the final state. A write failure
// is logged and otherwise ignored.
func (r *Recorder) RecordMatch(ctx context.Context, st model.MatchState, winner int) model.MatchResult {
	res := BuildResult(st, winner, r.now())
	s := r.store.LoadStats(ctx)
	s.Matches = append(s.Matches, res)
	if err := r.store.SaveStats(ctx, s); err != nil {
		r.log.Error("failed to save match result", zap.String("winner", res.Winner), zap.Error(err))
		return res
	}
	r.log.Info("match recorded",
		zap.String("winner", res.Winner),
		zap.Int("winner_score", res.WinnerScore),
		zap.Int("loser_score", res.LoserScore),
		zap.Int("duration_min", res.DurationMinutes),
	)
	return res
}

// Load returns all recorded matches, oldest first.
func (r *Recorder) Load(ctx context.Context) model.StatsStore {
	return r.store.LoadStats(ctx)
}

// Clear drops every recorded match.
func (r *Recorder) Clear(ctx context.Context) error {
	if err := r.store.SaveStats(ctx, model.StatsStore{Matches: []model.MatchResult{}}); err != nil {
		r.log.Error("failed to clear statistics", zap.Error(err))
		return err
	}
	r.log.Info("statistics cleared")
	return nil
}

// BuildResult summarizes st with winner as the winning team index.
func BuildResult(st model.MatchState, winner int, now time.Time) model.MatchResult {
	loser := 1 - winner
	start := st.StartTime
	if start <= 0 {
		start = now.UnixMilli()
	}
	minutes := int(math.Round(float64(now.UnixMilli()-start) / 60000))
	if minutes < 0 {
		minutes = 0
	}
	return model.MatchResult{
		ID:              uuid.NewString(),
		Date:            now.UTC(),
		Winner:          st.Teams[winner].Name,
		WinnerScore:     st.Teams[winner].Score,
		Loser:           st.Teams[loser].Name,
		LoserScore:      st.Teams[loser].Score,
		TotalMoves:      len(st.History),
		Target:          st.Target,
		DurationMinutes: minutes,
	}
}
