package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tanteo/internal/model"
	"github.com/verte-zerg/tanteo/internal/stats"
)

const recentMatches = 5

func (m *Model) refreshStats() {
	if m.stats == nil {
		m.matches = nil
	} else {
		m.matches = m.stats.Load(m.ctx).Matches
	}
	m.renderStatsContent()
}

func (m *Model) renderStatsContent() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.statsView.SetContent(renderStatsOverview(m.matches, width))
	m.statsView.GotoTop()
}

func renderStatsOverview(matches []model.MatchResult, width int) string {
	if len(matches) == 0 {
		return "No matches recorded.\nFinish a match to see it here."
	}
	s := stats.Summarize(matches)
	cards := []string{
		metricCard("Matches", fmt.Sprintf("%d", s.Matches)),
		metricCard("Avg duration", fmt.Sprintf("%.1f min", s.AvgDuration)),
		metricCard("Longest", stats.FormatMinutes(s.LongestDuration)),
		metricCard("Avg margin", fmt.Sprintf("%.1f pts", s.AvgMargin)),
	}
	summary := strings.Join(cards, "\n")
	if width >= 80 {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	var buf bytes.Buffer
	if err := stats.RenderRecent(&buf, matches, recentMatches); err != nil {
		return fmt.Sprintf("Failed to render matches: %v", err)
	}
	records := make([]string, 0, len(s.Teams))
	for _, t := range s.Teams {
		records = append(records, fmt.Sprintf("%s %d-%d", t.Name, t.Wins, t.Losses))
	}
	lines := []string{summary, ""}
	if len(matches) > 1 {
		lines = append(lines, headerStyle.Render("Durations ")+stats.Sparkline(stats.Durations(matches)))
	}
	lines = append(lines, headerStyle.Render("Records ")+truncateLine(strings.Join(records, "  "), max(1, width-8)), "")
	lines = append(lines, strings.TrimRight(buf.String(), "\n"))
	return strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Padding(0, 1).Render(content)
}
