package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tanteo/internal/match"
	"github.com/verte-zerg/tanteo/internal/stats"
	"github.com/verte-zerg/tanteo/internal/store"
)

func newTestModel(t *testing.T) (*Model, *match.Engine, *stats.Recorder) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tanteo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if cerr := st.Close(); cerr != nil {
			t.Fatalf("close store: %v", cerr)
		}
	})
	ctx := context.Background()
	adapter := store.NewAdapter(st, nil)
	rec := stats.NewRecorder(adapter, nil)
	engine := match.New(ctx, adapter, rec)
	m := NewModel(ctx, engine, rec, time.Minute, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, engine, rec
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func TestScoreKeysDriveEngine(t *testing.T) {
	m, engine, _ := newTestModel(t)
	press(m, "a", "s", "d", "j", "k", "l", "z", "m")
	st := engine.State()
	if st.Teams[0].Score != 5 || st.Teams[1].Score != 5 {
		t.Fatalf("unexpected scores %d-%d", st.Teams[0].Score, st.Teams[1].Score)
	}
	if len(st.History) != 8 {
		t.Fatalf("expected 8 history entries, got %d", len(st.History))
	}
	press(m, "u")
	if got := engine.State().Teams[1].Score; got != 6 {
		t.Fatalf("expected undo to restore 6, got %d", got)
	}
}

func TestWinOpensModalAndRematch(t *testing.T) {
	m, engine, rec := newTestModel(t)
	engine.SetTarget(context.Background(), "3")
	press(m, "d")
	if m.mode != modeWin || m.winner != 0 {
		t.Fatalf("expected win modal for team 0, got mode %d winner %d", m.mode, m.winner)
	}
	if !strings.Contains(m.View(), "NOSOTROS wins!") {
		t.Fatalf("expected winner in modal view")
	}
	if n := len(rec.Load(context.Background()).Matches); n != 1 {
		t.Fatalf("expected 1 recorded match, got %d", n)
	}
	press(m, "y")
	st := engine.State()
	if m.mode != modeNormal || st.WinnerShown || st.Teams[0].Score != 0 || st.Target != 3 {
		t.Fatalf("unexpected state after rematch: %+v", st)
	}
}

func TestDismissedWinKeepsScoringClosed(t *testing.T) {
	m, engine, _ := newTestModel(t)
	engine.SetTarget(context.Background(), "2")
	press(m, "k", "n")
	if m.mode != modeNormal {
		t.Fatalf("expected modal dismissed")
	}
	press(m, "a")
	if m.mode != modeWin || m.winner != 1 {
		t.Fatalf("expected scoring key to reopen win modal, got mode %d", m.mode)
	}
	if got := engine.State().Teams[0].Score; got != 0 {
		t.Fatalf("expected no points after win, got %d", got)
	}
}

func TestRenameTeam(t *testing.T) {
	m, engine, _ := newTestModel(t)
	press(m, "N")
	if m.mode != modeRename || m.editTeam != 1 {
		t.Fatalf("expected rename mode for team 1")
	}
	m.input.SetValue("los de enfrente")
	press(m, "enter")
	if got := engine.State().Teams[1].Name; got != "LOS DE ENFRENTE" {
		t.Fatalf("unexpected name %q", got)
	}
	press(m, "n")
	m.input.SetValue("   ")
	press(m, "enter")
	if got := engine.State().Teams[0].Name; got != "TEAM 1" {
		t.Fatalf("expected fallback name, got %q", got)
	}
}

func TestSetTargetFallsBack(t *testing.T) {
	m, engine, _ := newTestModel(t)
	press(m, "t")
	m.input.SetValue("15")
	press(m, "enter")
	if got := engine.State().Target; got != 15 {
		t.Fatalf("expected target 15, got %d", got)
	}
	press(m, "t")
	m.input.SetValue("abc")
	press(m, "enter")
	if got := engine.State().Target; got != 30 {
		t.Fatalf("expected default target, got %d", got)
	}
	if m.status != "Target set to 30." {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestInputEscCancels(t *testing.T) {
	m, engine, _ := newTestModel(t)
	press(m, "n")
	m.input.SetValue("otro")
	press(m, "esc")
	if m.mode != modeNormal || engine.State().Teams[0].Name != "NOSOTROS" {
		t.Fatalf("expected rename cancelled")
	}
}

func TestResetNeedsConfirmation(t *testing.T) {
	m, engine, _ := newTestModel(t)
	press(m, "d", "r", "n")
	if got := engine.State().Teams[0].Score; got != 3 {
		t.Fatalf("expected reset cancelled, got score %d", got)
	}
	press(m, "r", "y")
	st := engine.State()
	if st.Teams[0].Score != 0 || len(st.History) != 0 {
		t.Fatalf("expected reset state, got %+v", st)
	}
}

func TestClearStatsOnlyFromStatsTab(t *testing.T) {
	m, engine, rec := newTestModel(t)
	engine.SetTarget(context.Background(), "1")
	press(m, "a", "y")
	press(m, "x")
	if m.mode != modeNormal {
		t.Fatalf("expected x to be ignored outside stats tab")
	}
	press(m, "tab", "tab")
	if m.activeTab != tabStats {
		t.Fatalf("expected stats tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.statsView.View(), "Recent Matches") {
		t.Fatalf("expected recent matches in stats view")
	}
	press(m, "x", "y")
	if n := len(rec.Load(context.Background()).Matches); n != 0 {
		t.Fatalf("expected stats cleared, got %d", n)
	}
	if !strings.Contains(m.statsView.View(), "No matches recorded.") {
		t.Fatalf("expected empty stats view")
	}
}

func TestHistoryToggle(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "a", "j", "s")
	press(m, "tab")
	if !m.grouped {
		t.Fatalf("expected grouped view by default")
	}
	if rows := m.historyTable.Rows(); len(rows) != 1 || rows[0][3] != "3 - 1" {
		t.Fatalf("unexpected grouped rows: %v", rows)
	}
	press(m, "g")
	rows := m.historyTable.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 detailed rows, got %d", len(rows))
	}
	if rows[0][2] != "+2" || rows[0][3] != "3 - 1" || rows[2][3] != "1 - 0" {
		t.Fatalf("unexpected detailed rows: %v", rows)
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.status = "Undone."
	out := m.renderFooter()
	if !containsAll(out, []string{"u undo", "n/N rename", "t target", "q quit", "Undone."}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
	press(m, "tab")
	if out := m.renderFooter(); !strings.Contains(out, "g grouped/detailed") {
		t.Fatalf("expected history help, got %s", out)
	}
}

func TestViewFitsWindow(t *testing.T) {
	m, _, _ := newTestModel(t)
	lines := strings.Split(m.View(), "\n")
	if len(lines) != 30 {
		t.Fatalf("expected 30 lines, got %d", len(lines))
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
