package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tanteo/internal/model"
)

const sparkChars = " .:-=+*#%@"

// TeamRecord counts results for one team name.
type TeamRecord struct {
	Name   string
	Wins   int
	Losses int
}

// Summary aggregates all recorded matches.
type Summary struct {
	Matches         int
	Teams           []TeamRecord
	AvgDuration     float64
	LongestDuration int
	AvgMargin       float64
}

// Summarize builds a Summary. Teams are ordered by wins, then name.
func Summarize(matches []model.MatchResult) Summary {
	out := Summary{Matches: len(matches)}
	if len(matches) == 0 {
		return out
	}
	records := map[string]*TeamRecord{}
	record := func(name string) *TeamRecord {
		r, ok := records[name]
		if !ok {
			r = &TeamRecord{Name: name}
			records[name] = r
		}
		return r
	}
	var durationSum, marginSum int
	for _, m := range matches {
		record(m.Winner).Wins++
		record(m.Loser).Losses++
		durationSum += m.DurationMinutes
		marginSum += m.WinnerScore - m.LoserScore
		if m.DurationMinutes > out.LongestDuration {
			out.LongestDuration = m.DurationMinutes
		}
	}
	count := float64(len(matches))
	out.AvgDuration = float64(durationSum) / count
	out.AvgMargin = float64(marginSum) / count
	for _, r := range records {
		out.Teams = append(out.Teams, *r)
	}
	sort.Slice(out.Teams, func(i, j int) bool {
		if out.Teams[i].Wins == out.Teams[j].Wins {
			return out.Teams[i].Name < out.Teams[j].Name
		}
		return out.Teams[i].Wins > out.Teams[j].Wins
	})
	return out
}

// Recent returns up to n matches, newest first.
func Recent(matches []model.MatchResult, n int) []model.MatchResult {
	if n <= 0 || n > len(matches) {
		n = len(matches)
	}
	out := make([]model.MatchResult, 0, n)
	for i := len(matches) - 1; i >= len(matches)-n; i-- {
		out = append(out, matches[i])
	}
	return out
}

// Durations returns match durations in minutes, oldest first.
func Durations(matches []model.MatchResult) []float64 {
	out := make([]float64, len(matches))
	for i, m := range matches {
		out[i] = float64(m.DurationMinutes)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// FormatMinutes renders a duration in minutes for display.
func FormatMinutes(n int) string {
	if n == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", n)
}

// RenderSummary prints overall results.
func RenderSummary(w io.Writer, matches []model.MatchResult) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "No matches recorded.")
		return err
	}
	s := Summarize(matches)
	lines := []string{
		"Summary",
		fmt.Sprintf("Matches: %d", s.Matches),
		fmt.Sprintf("Avg duration: %.1f min", s.AvgDuration),
		fmt.Sprintf("Longest: %s", FormatMinutes(s.LongestDuration)),
		fmt.Sprintf("Avg margin: %.1f pts", s.AvgMargin),
	}
	if len(matches) > 1 {
		lines = append(lines, "Durations: "+Sparkline(Durations(matches)))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	rows := make([][]string, 0, len(s.Teams))
	for _, t := range s.Teams {
		rows = append(rows, []string{t.Name, fmt.Sprintf("%d", t.Wins), fmt.Sprintf("%d", t.Losses)})
	}
	return writeTable(w, []string{"Team", "Wins", "Losses"}, rows, map[int]bool{1: true, 2: true})
}

// RenderRecent prints the last n matches, newest first.
func RenderRecent(w io.Writer, matches []model.MatchResult, n int) error {
	if len(matches) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Recent Matches"); err != nil {
		return err
	}
	recent := Recent(matches, n)
	rows := make([][]string, 0, len(recent))
	for _, m := range recent {
		rows = append(rows, []string{
			m.Date.Local().Format("2006-01-02 15:04"),
			m.Winner,
			fmt.Sprintf("%d - %d", m.WinnerScore, m.LoserScore),
			m.Loser,
			fmt.Sprintf("%d", m.DurationMinutes),
		})
	}
	headers := []string{"Date", "Winner", "Score", "Loser", "Minutes"}
	return writeTable(w, headers, rows, map[int]bool{2: true, 4: true})
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
