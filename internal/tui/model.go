// Package tui provides the Bubble Tea scoreboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/tanteo/internal/match"
	"github.com/verte-zerg/tanteo/internal/model"
)

const (
	tabScore = iota
	tabHistory
	tabStats
)

type mode int

const (
	modeNormal mode = iota
	modeRename
	modeTarget
	modeConfirmReset
	modeConfirmClear
	modeWin
)

type scoreKey struct {
	team  int
	delta int
}

var scoreKeys = map[string]scoreKey{
	"a": {0, 1},
	"s": {0, 2},
	"d": {0, 3},
	"z": {0, -1},
	"j": {1, 1},
	"k": {1, 2},
	"l": {1, 3},
	"m": {1, -1},
}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	winnerCardStyle = cardStyle.BorderForeground(lipgloss.Color("#C89A3A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tallyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// StatsSource exposes the recorded matches to the Stats tab.
type StatsSource interface {
	Load(ctx context.Context) model.StatsStore
	Clear(ctx context.Context) error
}

// Model implements the Bubble Tea scoreboard.
type Model struct {
	ctx    context.Context
	engine *match.Engine
	stats  StatsSource
	window time.Duration
	log    *zap.Logger
	now    func() time.Time

	tabs      []string
	activeTab int
	grouped   bool

	mode     mode
	editTeam int
	winner   int
	input    textinput.Model

	historyTable table.Model
	statsView    viewport.Model
	matches      []model.MatchResult

	status string
	errMsg string

	width  int
	height int
}

// NewModel constructs a scoreboard model over engine. window is the history
// grouping window; zero uses the default.
func NewModel(ctx context.Context, engine *match.Engine, stats StatsSource, window time.Duration, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Model{
		ctx:     ctx,
		engine:  engine,
		stats:   stats,
		window:  window,
		log:     log,
		now:     time.Now,
		tabs:    []string{"Score", "History", "Stats"},
		grouped: true,
		winner:  match.NoWinner,
	}
	m.input = newInput()
	m.historyTable = newHistoryTable()
	m.statsView = viewport.New(0, 0)
	m.refreshHistory()
	m.refreshStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderStatsContent()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeRename, modeTarget:
			return m.updateInput(msg)
		case modeConfirmReset, modeConfirmClear:
			return m.updateConfirm(msg)
		case modeWin:
			return m.updateWin(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.mode != modeNormal {
		return fitLines(m.renderModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderTabs(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if sk, ok := scoreKeys[key]; ok {
		m.addPoints(sk.team, sk.delta)
		return m, nil
	}
	switch key {
	case "q":
		return m, tea.Quit
	case "u":
		if m.engine.Undo(m.ctx) {
			m.setStatus("Undone.")
		} else {
			m.setStatus("Nothing to undo.")
		}
		m.refreshHistory()
		return m, nil
	case "tab", "right":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "shift+tab", "left":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "g":
		if m.activeTab == tabHistory {
			m.grouped = !m.grouped
			m.refreshHistory()
		}
		return m, nil
	case "n":
		return m.startInput(modeRename, 0)
	case "N":
		return m.startInput(modeRename, 1)
	case "t":
		return m.startInput(modeTarget, 0)
	case "r":
		m.mode = modeConfirmReset
		return m, nil
	case "x":
		if m.activeTab == tabStats {
			m.mode = modeConfirmClear
		}
		return m, nil
	}
	var cmd tea.Cmd
	switch m.activeTab {
	case tabHistory:
		m.historyTable, cmd = m.historyTable.Update(msg)
	case tabStats:
		m.statsView, cmd = m.statsView.Update(msg)
	}
	return m, cmd
}

func (m *Model) addPoints(team, delta int) {
	st := m.engine.State()
	if st.WinnerShown {
		// Scoring is closed; offer the rematch again.
		m.winner = leader(st)
		m.mode = modeWin
		return
	}
	out, err := m.engine.AddPoints(m.ctx, team, delta)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.status = ""
	m.refreshHistory()
	if out.Winner != match.NoWinner {
		m.winner = out.Winner
		m.mode = modeWin
		m.refreshStats()
	}
}

func (m *Model) updateWin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.engine.NewGameKeepNames(m.ctx)
		m.mode = modeNormal
		m.setStatus("New match started.")
		m.refreshHistory()
	case "n", "esc":
		m.mode = modeNormal
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		if m.mode == modeConfirmReset {
			m.engine.Reset(m.ctx)
			m.setStatus("Match reset.")
			m.refreshHistory()
		} else {
			if err := m.stats.Clear(m.ctx); err != nil {
				m.log.Warn("clear stats from board failed", zap.Error(err))
				m.errMsg = fmt.Sprintf("failed to clear stats: %v", err)
			} else {
				m.setStatus("Statistics cleared.")
			}
			m.refreshStats()
		}
		m.mode = modeNormal
	case "n", "esc":
		m.mode = modeNormal
	}
	return m, nil
}

func (m *Model) startInput(md mode, team int) (tea.Model, tea.Cmd) {
	st := m.engine.State()
	m.mode = md
	m.editTeam = team
	if md == modeRename {
		m.input.Prompt = "Name: "
		m.input.Placeholder = model.FallbackName(team)
		m.input.SetValue(st.Teams[team].Name)
	} else {
		m.input.Prompt = "Target: "
		m.input.Placeholder = fmt.Sprintf("%d", model.DefaultTarget)
		m.input.SetValue(fmt.Sprintf("%d", st.Target))
	}
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.applyInput()
		m.mode = modeNormal
		m.input.Blur()
		m.refreshHistory()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyInput() {
	value := m.input.Value()
	if m.mode == modeTarget {
		applied := m.engine.SetTarget(m.ctx, value)
		m.setStatus(fmt.Sprintf("Target set to %d.", applied))
		return
	}
	if err := m.engine.RenameTeam(m.ctx, m.editTeam, value); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.setStatus(fmt.Sprintf("Team renamed to %s.", m.engine.State().Teams[m.editTeam].Name))
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.errMsg = ""
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.activeTab == tabHistory {
		m.historyTable.Focus()
	} else {
		m.historyTable.Blur()
	}
	if m.activeTab == tabStats {
		m.refreshStats()
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(1, lipgloss.Height(activeNavStyle.Render("X")))
	footerHeight = 2
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	// One line of the body is the history view title.
	m.historyTable.SetWidth(m.width)
	m.historyTable.SetHeight(max(1, bodyHeight-2))
	m.statsView.Width = m.width
	m.statsView.Height = bodyHeight
	m.input.Width = max(10, modalInnerWidth(m.width)-lipgloss.Width(m.input.Prompt))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderBody(height int) string {
	switch m.activeTab {
	case tabHistory:
		return m.renderHistory()
	case tabStats:
		return m.statsView.View()
	default:
		return m.renderScore(height)
	}
}

func (m *Model) renderScore(height int) string {
	st := m.engine.State()
	cards := make([]string, 0, len(st.Teams))
	for i, t := range st.Teams {
		style := cardStyle
		if st.WinnerShown && t.Score >= st.Target {
			style = winnerCardStyle
		}
		lines := []string{
			cardTitleStyle.Render(t.Name),
			cardValueStyle.Render(fmt.Sprintf("%d", t.Score)),
			"",
			tallyStyle.Render(strings.Join(renderTally(t.Score, st.Target), "\n")),
		}
		if i == 0 {
			lines = append(lines, "", headerStyle.Render("a/s/d +1/2/3  z -1"))
		} else {
			lines = append(lines, "", headerStyle.Render("j/k/l +1/2/3  m -1"))
		}
		cards = append(cards, style.Render(strings.Join(lines, "\n")))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], "  ", cards[1])
	info := headerStyle.Render(m.matchInfo(st))
	content := lipgloss.JoinVertical(lipgloss.Center, board, "", info)
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) matchInfo(st model.MatchState) string {
	elapsed := int(m.now().Sub(time.UnixMilli(st.StartTime)).Minutes())
	info := fmt.Sprintf("Target %d  Moves %d  Elapsed %s", st.Target, len(st.History), formatElapsed(elapsed))
	if st.WinnerShown {
		info += "  Winner: " + st.Teams[leader(st)].Name
	}
	return info
}

func (m *Model) renderHistory() string {
	title := "Detailed"
	if m.grouped {
		title = fmt.Sprintf("Grouped (window %s)", m.effectiveWindow())
	}
	if len(m.historyTable.Rows()) == 0 {
		return headerStyle.Render(title) + "\n\nNo points scored yet."
	}
	return headerStyle.Render(title) + "\n" + tableMutedStyle.Render(m.historyTable.View())
}

func (m *Model) renderFooter() string {
	help := "u undo  n/N rename  t target  r reset  tab switch  q quit"
	switch m.activeTab {
	case tabHistory:
		help = "g grouped/detailed  up/down scroll  " + help
	case tabStats:
		help = "x clear stats  up/down scroll  " + help
	}
	status := headerStyle.Render(truncateLine(m.status, m.width))
	if m.errMsg != "" {
		status = errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return headerStyle.Render(truncateLine(help, m.width)) + "\n" + status
}

func (m *Model) renderModal() string {
	var body []string
	switch m.mode {
	case modeWin:
		st := m.engine.State()
		w := m.winner
		if !model.ValidTeam(w) {
			w = leader(st)
		}
		body = []string{
			cardValueStyle.Render(fmt.Sprintf("%s wins!", st.Teams[w].Name)),
			fmt.Sprintf("%s %d - %d %s", st.Teams[0].Name, st.Teams[0].Score, st.Teams[1].Score, st.Teams[1].Name),
			"",
			headerStyle.Render("y rematch / n dismiss"),
		}
	case modeConfirmReset:
		body = []string{
			cardValueStyle.Render("Reset match?"),
			"Scores, names and history go back to defaults.",
			headerStyle.Render("y confirm / n cancel"),
		}
	case modeConfirmClear:
		body = []string{
			cardValueStyle.Render("Clear statistics?"),
			"Every recorded match will be deleted.",
			headerStyle.Render("y confirm / n cancel"),
		}
	case modeRename:
		body = []string{
			cardValueStyle.Render(fmt.Sprintf("Rename team %d", m.editTeam+1)),
			m.input.View(),
			headerStyle.Render("Enter to apply / Esc to cancel"),
		}
	case modeTarget:
		body = []string{
			cardValueStyle.Render("Target score"),
			m.input.View(),
			headerStyle.Render("Enter to apply / Esc to cancel"),
		}
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func newInput() textinput.Model {
	input := textinput.New()
	input.CharLimit = 32
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// leader returns the team at or above the target, else the higher score.
func leader(st model.MatchState) int {
	for i, t := range st.Teams {
		if t.Score >= st.Target {
			return i
		}
	}
	if st.Teams[1].Score > st.Teams[0].Score {
		return 1
	}
	return 0
}

func formatElapsed(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", max(0, minutes))
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}
