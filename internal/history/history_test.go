package history

import (
	"slices"
	"testing"
	"time"

	"github.com/verte-zerg/tanteo/internal/model"
)

// build turns oldest-first (ms, team, pts) triples into a newest-first history.
func build(events ...[3]int64) []model.HistoryEntry {
	var totals [2]int
	out := make([]model.HistoryEntry, 0, len(events))
	for _, e := range events {
		team := int(e[1])
		totals[team] += int(e[2])
		out = append([]model.HistoryEntry{{Time: e[0], Team: team, Pts: int(e[2]), Total: totals[team]}}, out...)
	}
	return out
}

func TestDetailedRunningTotals(t *testing.T) {
	h := build(
		[3]int64{1_000, 0, 2},
		[3]int64{2_000, 1, 3},
		[3]int64{3_000, 0, 1},
		[3]int64{4_000, 1, -1},
	)
	rows := slices.Collect(Detailed(h))
	want := [][2]int{{3, 2}, {3, 3}, {2, 3}, {2, 0}}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, r := range rows {
		if r.Totals != want[i] {
			t.Fatalf("row %d: expected totals %v, got %v", i, want[i], r.Totals)
		}
		if r.Entry != h[i] {
			t.Fatalf("row %d: expected newest-first order", i)
		}
		if r.Totals[r.Entry.Team] != r.Entry.Total {
			t.Fatalf("row %d: totals %v disagree with recorded total %d", i, r.Totals, r.Entry.Total)
		}
	}
}

func TestDetailedStopsEarly(t *testing.T) {
	h := build([3]int64{1, 0, 1}, [3]int64{2, 0, 1}, [3]int64{3, 0, 1})
	n := 0
	for range Detailed(h) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("expected to stop after 2 rows, got %d", n)
	}
}

func TestDetailedEmpty(t *testing.T) {
	if rows := slices.Collect(Detailed(nil)); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestGroupedRollingWindow(t *testing.T) {
	h := build(
		[3]int64{0, 0, 1},
		[3]int64{40_000, 1, 2},
		[3]int64{85_000, 0, 3},
		[3]int64{205_000, 1, 1},
	)
	groups := Grouped(h, 60*time.Second)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %+v", len(groups), groups)
	}
	newest, oldest := groups[0], groups[1]
	if oldest.Count != 3 || oldest.Points != [2]int{4, 2} || oldest.Totals != [2]int{4, 2} {
		t.Fatalf("unexpected first group: %+v", oldest)
	}
	if !oldest.Start.Equal(time.UnixMilli(0)) || !oldest.End.Equal(time.UnixMilli(85_000)) {
		t.Fatalf("unexpected first group span: %v - %v", oldest.Start, oldest.End)
	}
	if newest.Count != 1 || newest.Points != [2]int{0, 1} || newest.Totals != [2]int{4, 3} {
		t.Fatalf("unexpected second group: %+v", newest)
	}
	if newest.Changed(0) || !newest.Changed(1) {
		t.Fatalf("expected only team 1 changed in newest group")
	}
}

func TestGroupedWindowIsInclusive(t *testing.T) {
	h := build([3]int64{0, 0, 1}, [3]int64{60_000, 0, 1}, [3]int64{120_001, 0, 1})
	groups := Grouped(h, time.Minute)
	if len(groups) != 2 || groups[1].Count != 2 {
		t.Fatalf("unexpected groups: %+v", groups)
	}
}

func TestGroupedDefaultWindow(t *testing.T) {
	h := build([3]int64{0, 0, 1}, [3]int64{59_000, 1, 1})
	if groups := Grouped(h, 0); len(groups) != 1 {
		t.Fatalf("expected default window to merge, got %d groups", len(groups))
	}
}

func TestGroupedPartitionsDetailed(t *testing.T) {
	var events [][3]int64
	at := int64(0)
	for i := 0; i < 40; i++ {
		at += int64((i%7)*17_000 + 3_000)
		pts := int64(i%3 + 1)
		if i%5 == 4 {
			pts = -1
		}
		events = append(events, [3]int64{at, int64(i % 2), pts})
	}
	h := build(events...)

	rows := slices.Collect(Detailed(h))
	groups := Grouped(h, DefaultWindow)

	count := 0
	var sum [2]int
	for _, g := range groups {
		count += g.Count
		sum[0] += g.Points[0]
		sum[1] += g.Points[1]
	}
	if count != len(rows) {
		t.Fatalf("groups cover %d entries, detailed has %d", count, len(rows))
	}
	if sum != rows[0].Totals {
		t.Fatalf("group points %v do not match detailed totals %v", sum, rows[0].Totals)
	}
	if groups[0].Totals != rows[0].Totals {
		t.Fatalf("newest group totals %v differ from detailed %v", groups[0].Totals, rows[0].Totals)
	}

	// Walking groups oldest first, each group's totals must equal the detailed
	// totals at its last entry.
	idx := len(rows)
	for i := len(groups) - 1; i >= 0; i-- {
		idx -= groups[i].Count
		if rows[idx].Totals != groups[i].Totals {
			t.Fatalf("group %d totals %v, detailed %v", i, groups[i].Totals, rows[idx].Totals)
		}
	}
}

func TestBaselineAfterTruncation(t *testing.T) {
	// Oldest retained entries start from 10 and 4.
	h := []model.HistoryEntry{
		{Time: 3, Team: 0, Pts: 1, Total: 12},
		{Time: 2, Team: 1, Pts: 2, Total: 6},
		{Time: 1, Team: 0, Pts: 1, Total: 11},
	}
	if got := Baseline(h); got != [2]int{10, 4} {
		t.Fatalf("unexpected baseline %v", got)
	}
	rows := slices.Collect(Detailed(h))
	if rows[0].Totals != [2]int{12, 6} || rows[2].Totals != [2]int{11, 4} {
		t.Fatalf("unexpected totals: %+v", rows)
	}
	groups := Grouped(h, time.Minute)
	if len(groups) != 1 || groups[0].Totals != [2]int{12, 6} {
		t.Fatalf("unexpected groups: %+v", groups)
	}
}
