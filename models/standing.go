package models

import (
	"fmt"
	"time"
)

// StandingRow is a derived view over confirmed matches. It is never stored.
type StandingRow struct {
	Position          int    `json:"position"`
	PlayerID          int    `json:"player_id"`
	DisplayName       string `json:"display_name,omitempty"`
	GroupNumber       int    `json:"group_number,omitempty"`
	SRP               int    `json:"srp"`
	SOP               int    `json:"sop"`
	NGD               int    `json:"ngd"`
	Points            int    `json:"points"`
	Played            int    `json:"played"`
	Wins              int    `json:"wins"`
	Draws             int    `json:"draws"`
	Losses            int    `json:"losses"`
	GamePointsFor     int    `json:"game_points_for"`
	GamePointsAgainst int    `json:"game_points_against"`
}

type ScopeKind string

const (
	ScopeLive       ScopeKind = "live"
	ScopeAfterRound ScopeKind = "after_round"
	ScopeGroup      ScopeKind = "group"
)

// StandingsScope selects the confirmed matches that feed a standings table.
// Round and Group may be combined; zero means unrestricted.
type StandingsScope struct {
	Round int `json:"round,omitempty"`
	Group int `json:"group,omitempty"`
}

func LiveScope() StandingsScope                    { return StandingsScope{} }
func AfterRoundScope(n int) StandingsScope         { return StandingsScope{Round: n} }
func GroupScope(g int) StandingsScope              { return StandingsScope{Group: g} }
func GroupAfterRoundScope(g, n int) StandingsScope { return StandingsScope{Group: g, Round: n} }

func (s StandingsScope) Kind() ScopeKind {
	switch {
	case s.Group > 0:
		return ScopeGroup
	case s.Round > 0:
		return ScopeAfterRound
	}
	return ScopeLive
}

// Includes reports whether a match belongs to the scope.
func (s StandingsScope) Includes(m *Match) bool {
	if s.Group > 0 && m.GroupNumber != s.Group {
		return false
	}
	if s.Round > 0 && m.RoundNumber > s.Round {
		return false
	}
	return true
}

func (s StandingsScope) String() string {
	return fmt.Sprintf("g%d:r%d", s.Group, s.Round)
}

type PlayerRoundPoints struct {
	PlayerID    int    `json:"player_id"`
	DisplayName string `json:"display_name,omitempty"`
	Points      int    `json:"points"`
}

type RoundPoints struct {
	RoundNumber int                 `json:"round_number"`
	Points      []PlayerRoundPoints `json:"points"`
}

type RoundStandings struct {
	RoundNumber int           `json:"round_number"`
	IsComplete  bool          `json:"is_complete"`
	Standings   []StandingRow `json:"standings"`
}

// LiveSnapshot is what live clients and exported snapshots receive.
type LiveSnapshot struct {
	TournamentID  int              `json:"tournament_id"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Status        TournamentStatus `json:"status"`
	CurrentRounds map[int]int      `json:"current_rounds"`
	Rounds        []*Round         `json:"rounds"`
	Standings     []StandingRow    `json:"standings"`
}
