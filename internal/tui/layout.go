package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	tallyPerRow = 3
	// Point where truco's "malas" end and "buenas" begin.
	tallyHalf = 15
)

var tallyMarks = []rune("||||/")

// renderTally draws a score as matchstick groups of five, three groups per
// line, with a divider once the score passes the halfway mark.
func renderTally(score, target int) []string {
	groups := max(6, (target+4)/5)
	divider := strings.Repeat("-", tallyPerRow*5+tallyPerRow-1)
	var lines []string
	var row []string
	for g := 0; g < groups; g++ {
		filled := max(0, min(5, score-g*5))
		row = append(row, tallyGroup(filled))
		end := (g + 1) * 5
		split := end == tallyHalf && score > tallyHalf
		if len(row) == tallyPerRow || g == groups-1 || split {
			lines = append(lines, strings.Join(row, " "))
			row = nil
		}
		if split {
			lines = append(lines, divider)
		}
	}
	return lines
}

func tallyGroup(filled int) string {
	out := make([]rune, 5)
	for j := range out {
		if j < filled {
			out[j] = tallyMarks[j]
		} else {
			out[j] = '.'
		}
	}
	return string(out)
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
