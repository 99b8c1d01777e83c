package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/tanteo/internal/model"
)

// Fixed keys for the two persisted records.
const (
	KeyMatchState = "match_state_v1"
	KeyStats      = "match_stats_v1"
)

// Adapter reads and writes the typed records on top of a Backend.
// Reads never fail: anything unreadable comes back as the default value.
type Adapter struct {
	backend  Backend
	log      *zap.Logger
	defaults model.Defaults
	now      func() time.Time
}

// NewAdapter wraps backend. A nil logger disables logging.
func NewAdapter(backend Backend, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		backend:  backend,
		log:      log,
		defaults: model.StandardDefaults(),
		now:      time.Now,
	}
}

// SetDefaults changes the state returned when nothing usable is stored.
func (a *Adapter) SetDefaults(d model.Defaults) {
	a.defaults = d
}

// LoadState returns the persisted match state or a fresh one.
func (a *Adapter) LoadState(ctx context.Context) model.MatchState {
	now := a.now()
	st, ok := load[model.MatchState](ctx, a, KeyMatchState)
	if !ok {
		return model.NewMatchState(a.defaults, now)
	}
	st.Normalize(now)
	return st
}

// SaveState persists the match state.
func (a *Adapter) SaveState(ctx context.Context, st model.MatchState) error {
	return save(ctx, a, KeyMatchState, st)
}

// LoadStats returns the persisted statistics or an empty store.
func (a *Adapter) LoadStats(ctx context.Context) model.StatsStore {
	s, ok := load[model.StatsStore](ctx, a, KeyStats)
	if !ok {
		s = model.StatsStore{}
	}
	s.Normalize()
	return s
}

// SaveStats persists the statistics.
func (a *Adapter) SaveStats(ctx context.Context, s model.StatsStore) error {
	s.Normalize()
	return save(ctx, a, KeyStats, s)
}

func load[T any](ctx context.Context, a *Adapter, key string) (T, bool) {
	var out T
	raw, found, err := a.backend.Get(ctx, key)
	if err != nil {
		a.log.Warn("failed to read record", zap.String("key", key), zap.Error(err))
		return out, false
	}
	if !found || len(raw) == 0 {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		a.log.Warn("discarding malformed record", zap.String("key", key), zap.Error(err))
		var zero T
		return zero, false
	}
	return out, true
}

func save[T any](ctx context.Context, a *Adapter, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := a.backend.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
