package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tanteo/internal/model"
)

func sampleMatches() []model.MatchResult {
	base := time.Date(2026, 5, 2, 21, 0, 0, 0, time.UTC)
	return []model.MatchResult{
		{Date: base, Winner: "NOSOTROS", WinnerScore: 30, Loser: "ELLOS", LoserScore: 18, DurationMinutes: 20},
		{Date: base.Add(time.Hour), Winner: "ELLOS", WinnerScore: 30, Loser: "NOSOTROS", LoserScore: 28, DurationMinutes: 35},
		{Date: base.Add(2 * time.Hour), Winner: "NOSOTROS", WinnerScore: 30, Loser: "ELLOS", LoserScore: 2, DurationMinutes: 1},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleMatches())
	if s.Matches != 3 || s.LongestDuration != 35 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if len(s.Teams) != 2 || s.Teams[0].Name != "NOSOTROS" || s.Teams[0].Wins != 2 || s.Teams[0].Losses != 1 {
		t.Fatalf("unexpected team records: %+v", s.Teams)
	}
	if s.AvgMargin != 14 {
		t.Fatalf("expected avg margin 14, got %.2f", s.AvgMargin)
	}
	if s.AvgDuration != 56.0/3 {
		t.Fatalf("unexpected avg duration %.3f", s.AvgDuration)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	matches := sampleMatches()
	got := Recent(matches, 2)
	if len(got) != 2 || got[0].DurationMinutes != 1 || got[1].DurationMinutes != 35 {
		t.Fatalf("unexpected recent matches: %+v", got)
	}
	if all := Recent(matches, 0); len(all) != 3 {
		t.Fatalf("expected all matches, got %d", len(all))
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); len(got) != 3 {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestRenderSummaryAndRecent(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sampleMatches()); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if err := RenderRecent(&buf, sampleMatches(), 5); err != nil {
		t.Fatalf("render recent: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Matches: 3", "Longest: 35 minutes", "Durations: ", "Recent Matches", "30 - 2", "NOSOTROS"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if !strings.Contains(buf.String(), "No matches recorded.") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestFormatMinutes(t *testing.T) {
	if FormatMinutes(1) != "1 minute" || FormatMinutes(0) != "0 minutes" {
		t.Fatalf("unexpected minute formatting")
	}
}
