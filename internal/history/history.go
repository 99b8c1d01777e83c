// Package history derives display views from a match history.
//
// History slices are newest first, as stored in model.MatchState. Both views
// are pure functions of that slice and are recomputed on every call.
package history

import (
	"iter"
	"time"

	"github.com/verte-zerg/tanteo/internal/model"
)

// DefaultWindow is the merge gap used by Grouped.
const DefaultWindow = 60 * time.Second

// Row is one history entry with both team totals as of that entry.
type Row struct {
	Entry  model.HistoryEntry
	Totals [model.TeamCount]int
}

// Group is a run of entries that happened close together.
type Group struct {
	Start  time.Time
	End    time.Time
	Points [model.TeamCount]int
	Totals [model.TeamCount]int
	Count  int
}

// Changed reports whether the group moved the score of team idx.
func (g Group) Changed(idx int) bool {
	return g.Points[idx] != 0
}

// Baseline returns each team's score before the oldest retained entry.
// It is zero unless older entries were dropped by the history cap.
func Baseline(history []model.HistoryEntry) [model.TeamCount]int {
	var base [model.TeamCount]int
	var seen [model.TeamCount]bool
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		if !model.ValidTeam(h.Team) || seen[h.Team] {
			continue
		}
		seen[h.Team] = true
		if b := h.Total - h.Pts; b > 0 {
			base[h.Team] = b
		}
	}
	return base
}

// Detailed yields every entry newest first with running totals.
func Detailed(history []model.HistoryEntry) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		totals := Baseline(history)
		for _, h := range history {
			if model.ValidTeam(h.Team) {
				totals[h.Team] += h.Pts
			}
		}
		for _, h := range history {
			if !model.ValidTeam(h.Team) {
				continue
			}
			if !yield(Row{Entry: h, Totals: totals}) {
				return
			}
			totals[h.Team] -= h.Pts
		}
	}
}

// Grouped merges entries whose time is within window of the previous entry
// in the same group. The anchor moves with every joining entry, so a long
// run of closely spaced entries stays in one group. Groups come back newest
// first.
func Grouped(history []model.HistoryEntry, window time.Duration) []Group {
	if window <= 0 {
		window = DefaultWindow
	}
	totals := Baseline(history)
	var groups []Group
	var open *Group
	var anchor int64
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		if !model.ValidTeam(h.Team) {
			continue
		}
		totals[h.Team] += h.Pts
		at := h.At()
		if open != nil && absMillis(h.Time-anchor) <= window.Milliseconds() {
			open.Points[h.Team] += h.Pts
			open.End = at
			open.Totals = totals
			open.Count++
			anchor = h.Time
			continue
		}
		groups = append(groups, Group{Start: at, End: at, Totals: totals, Count: 1})
		open = &groups[len(groups)-1]
		open.Points[h.Team] = h.Pts
		anchor = h.Time
	}
	for l, r := 0, len(groups)-1; l < r; l, r = l+1, r-1 {
		groups[l], groups[r] = groups[r], groups[l]
	}
	return groups
}

func absMillis(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
