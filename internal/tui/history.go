package tui

import (
	"fmt"
	"iter"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tanteo/internal/history"
)

func newHistoryTable() table.Model {
	t := table.New(table.WithHeight(1))
	t.SetStyles(historyTableStyles())
	return t
}

func historyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) effectiveWindow() time.Duration {
	if m.window <= 0 {
		return history.DefaultWindow
	}
	return m.window
}

func (m *Model) refreshHistory() {
	names := m.engine.State().Teams
	var cols []table.Column
	var rows []table.Row
	if m.grouped {
		cols, rows = groupedRows(names[0].Name, names[1].Name, m.engine.Grouped(m.effectiveWindow()))
	} else {
		cols, rows = detailedRows(names[0].Name, names[1].Name, m.engine.Detailed())
	}
	// Rows must never carry more cells than the columns being set.
	m.historyTable.SetRows(nil)
	m.historyTable.SetColumns(cols)
	m.historyTable.SetRows(rows)
	m.historyTable.GotoTop()
}

func detailedRows(nameA, nameB string, seq iter.Seq[history.Row]) ([]table.Column, []table.Row) {
	cols := []table.Column{
		{Title: "Time", Width: 8},
		{Title: "Team", Width: max(4, runewidth.StringWidth(nameA), runewidth.StringWidth(nameB))},
		{Title: "Pts", Width: 4},
		{Title: "Score", Width: 9},
	}
	names := [2]string{nameA, nameB}
	var rows []table.Row
	for r := range seq {
		rows = append(rows, table.Row{
			r.Entry.At().Local().Format("15:04:05"),
			names[r.Entry.Team],
			fmt.Sprintf("%+d", r.Entry.Pts),
			fmt.Sprintf("%d - %d", r.Totals[0], r.Totals[1]),
		})
	}
	return cols, rows
}

func groupedRows(nameA, nameB string, groups []history.Group) ([]table.Column, []table.Row) {
	cols := []table.Column{
		{Title: "Time", Width: 17},
		{Title: nameA, Width: max(4, runewidth.StringWidth(nameA))},
		{Title: nameB, Width: max(4, runewidth.StringWidth(nameB))},
		{Title: "Score", Width: 9},
		{Title: "Moves", Width: 5},
	}
	rows := make([]table.Row, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, table.Row{
			groupSpan(g),
			groupPoints(g, 0),
			groupPoints(g, 1),
			fmt.Sprintf("%d - %d", g.Totals[0], g.Totals[1]),
			fmt.Sprintf("%d", g.Count),
		})
	}
	return cols, rows
}

func groupSpan(g history.Group) string {
	start := g.Start.Local().Format("15:04:05")
	if g.End.Equal(g.Start) {
		return start
	}
	return start + "-" + g.End.Local().Format("15:04:05")
}

func groupPoints(g history.Group, team int) string {
	if !g.Changed(team) {
		return ""
	}
	return fmt.Sprintf("%+d", g.Points[team])
}
