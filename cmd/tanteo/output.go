package main

import (
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/tanteo/internal/history"
	"github.com/verte-zerg/tanteo/internal/model"
)

const terminalWidthBackup = 80

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func printBoard(w io.Writer, st model.MatchState) error {
	nameWidth := max(runewidth.StringWidth(st.Teams[0].Name), runewidth.StringWidth(st.Teams[1].Name))
	lines := make([]string, 0, 4)
	for _, t := range st.Teams {
		lines = append(lines, fmt.Sprintf("%s  %2d", runewidth.FillRight(t.Name, nameWidth), t.Score))
	}
	info := fmt.Sprintf("Target %d  Moves %d", st.Target, len(st.History))
	if st.WinnerShown {
		for _, t := range st.Teams {
			if t.Score >= st.Target {
				info += "  Winner: " + t.Name
				break
			}
		}
	}
	lines = append(lines, info)
	return writeLines(w, lines)
}

func noChangeReason(st model.MatchState, team int) string {
	switch {
	case st.WinnerShown:
		return "the match is over"
	case st.Teams[team].Score >= st.Target:
		return "the team already reached the target"
	default:
		return "the score cannot go below zero"
	}
}

func printDetailed(w io.Writer, st model.MatchState, rows iter.Seq[history.Row], width int) error {
	var lines []string
	for r := range rows {
		lines = append(lines, truncate(fmt.Sprintf("%s  %s  %+d  %d - %d",
			r.Entry.At().Local().Format("15:04:05"),
			st.Teams[r.Entry.Team].Name,
			r.Entry.Pts,
			r.Totals[0], r.Totals[1],
		), width))
	}
	if len(lines) == 0 {
		lines = append(lines, "No points scored yet.")
	}
	return writeLines(w, lines)
}

func printGrouped(w io.Writer, st model.MatchState, groups []history.Group, width int) error {
	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		var parts []string
		for i, t := range st.Teams {
			if g.Changed(i) {
				parts = append(parts, fmt.Sprintf("%s %+d", t.Name, g.Points[i]))
			}
		}
		lines = append(lines, truncate(fmt.Sprintf("%s  %s  %d - %d",
			formatSpan(g.Start, g.End),
			strings.Join(parts, ", "),
			g.Totals[0], g.Totals[1],
		), width))
	}
	if len(lines) == 0 {
		lines = append(lines, "No points scored yet.")
	}
	return writeLines(w, lines)
}

func formatSpan(start, end time.Time) string {
	s := start.Local().Format("15:04:05")
	if end.Equal(start) {
		return s
	}
	return s + "-" + end.Local().Format("15:04:05")
}

func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
