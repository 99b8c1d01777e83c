// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultTarget is the score a team must reach when nothing else is configured.
	DefaultTarget = 30
	// MaxHistory caps the number of retained history entries.
	MaxHistory = 200
	// TeamCount is the number of teams in a match.
	TeamCount = 2
)

// DefaultTeamNames are used for a fresh match.
var DefaultTeamNames = [TeamCount]string{"NOSOTROS", "ELLOS"}

// Team is one side of the match.
type Team struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// HistoryEntry records a single point change for one team.
type HistoryEntry struct {
	Time  int64 `json:"time"` // ms since epoch
	Team  int   `json:"team"`
	Pts   int   `json:"pts"`
	Total int   `json:"total"`
}

// At returns the entry time.
func (h HistoryEntry) At() time.Time {
	return time.UnixMilli(h.Time)
}

// MatchState is the full in-progress match. History is newest first.
type MatchState struct {
	Teams       [TeamCount]Team `json:"teams"`
	History     []HistoryEntry  `json:"history"`
	Target      int             `json:"target"`
	StartTime   int64           `json:"startTime"`
	WinnerShown bool            `json:"winnerShown"`
	Snapshot    *MatchState     `json:"snapshot,omitempty"`
}

// Defaults holds the values a reset match starts from.
type Defaults struct {
	Names  [TeamCount]string
	Target int
}

// StandardDefaults returns the built-in defaults.
func StandardDefaults() Defaults {
	return Defaults{Names: DefaultTeamNames, Target: DefaultTarget}
}

// NewMatchState builds a fresh match started at now.
func NewMatchState(d Defaults, now time.Time) MatchState {
	st := MatchState{
		History:   []HistoryEntry{},
		Target:    d.Target,
		StartTime: now.UnixMilli(),
	}
	for i := range st.Teams {
		st.Teams[i] = Team{Name: NormalizeName(d.Names[i], i)}
	}
	if st.Target <= 0 {
		st.Target = DefaultTarget
	}
	return st
}

// Started returns the match start time.
func (s MatchState) Started() time.Time {
	return time.UnixMilli(s.StartTime)
}

// Clone returns a deep copy without the undo snapshot.
func (s MatchState) Clone() MatchState {
	out := s
	out.History = make([]HistoryEntry, len(s.History))
	copy(out.History, s.History)
	out.Snapshot = nil
	return out
}

// PushHistory prepends an entry and drops the oldest beyond MaxHistory.
func (s *MatchState) PushHistory(entry HistoryEntry) {
	s.History = append([]HistoryEntry{entry}, s.History...)
	if len(s.History) > MaxHistory {
		s.History = s.History[:MaxHistory]
	}
}

// Normalize repairs a decoded state so the engine can rely on its shape.
func (s *MatchState) Normalize(now time.Time) {
	if s.Target <= 0 {
		s.Target = DefaultTarget
	}
	if s.StartTime <= 0 {
		s.StartTime = now.UnixMilli()
	}
	for i := range s.Teams {
		s.Teams[i].Name = NormalizeName(s.Teams[i].Name, i)
		if s.Teams[i].Score < 0 {
			s.Teams[i].Score = 0
		}
	}
	history := make([]HistoryEntry, 0, len(s.History))
	for _, h := range s.History {
		if !ValidTeam(h.Team) {
			continue
		}
		history = append(history, h)
	}
	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}
	s.History = history
	if s.Snapshot != nil {
		s.Snapshot.Snapshot = nil
		s.Snapshot.Normalize(now)
	}
}

// ValidTeam reports whether idx addresses a team.
func ValidTeam(idx int) bool {
	return idx >= 0 && idx < TeamCount
}

// FallbackName is the name used when a team name is blank.
func FallbackName(idx int) string {
	return fmt.Sprintf("TEAM %d", idx+1)
}

// NormalizeName trims and upper-cases a team name.
func NormalizeName(name string, idx int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return FallbackName(idx)
	}
	return strings.ToUpper(name)
}

// MatchResult summarizes a finished match.
type MatchResult struct {
	ID              string    `json:"id"`
	Date            time.Time `json:"date"`
	Winner          string    `json:"winner"`
	WinnerScore     int       `json:"winnerScore"`
	Loser           string    `json:"loser"`
	LoserScore      int       `json:"loserScore"`
	TotalMoves      int       `json:"totalMoves"`
	Target          int       `json:"target"`
	DurationMinutes int       `json:"durationMinutes"`
}

// StatsStore holds finished matches, oldest first.
type StatsStore struct {
	Matches []MatchResult `json:"matches"`
}

// Normalize makes sure Matches is never nil.
func (s *StatsStore) Normalize() {
	if s.Matches == nil {
		s.Matches = []MatchResult{}
	}
}
