package models

import (
	"sort"
	"time"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchDisputed  MatchStatus = "disputed"
	MatchConfirmed MatchStatus = "confirmed"
)

type QueenPocketedBy string

const (
	QueenNone       QueenPocketedBy = "none"
	QueenStriker    QueenPocketedBy = "striker"
	QueenNonStriker QueenPocketedBy = "non_striker"
)

// TossState records who won the toss and what they chose.
type TossState struct {
	WinnerPlayerID int    `json:"winner_player_id"`
	Choice         string `json:"choice"`
}

// BoardResult is one rack of carrom play. Points are trusted as supplied,
// queen adjustments are already included.
type BoardResult struct {
	BoardNumber        int             `json:"board_number"`
	StrikerPlayerID    int             `json:"striker_player_id"`
	StrikerColor       string          `json:"striker_color"`
	StrikerPocketed    int             `json:"striker_pocketed"`
	NonStrikerPocketed int             `json:"non_striker_pocketed"`
	QueenPocketedBy    QueenPocketedBy `json:"queen_pocketed_by"`
	PointsPlayer1      int             `json:"points_player1"`
	PointsPlayer2      int             `json:"points_player2"`
	WinnerPlayerID     *int            `json:"winner_player_id,omitempty"`
	IsTiebreaker       bool            `json:"is_tiebreaker"`
	IsSuddenDeath      bool            `json:"is_sudden_death"`
}

type SuddenDeathResult struct {
	WinnerPlayerID int `json:"winner_player_id"`
	Player1Hits    int `json:"player1_hits"`
	Player2Hits    int `json:"player2_hits"`
	Attempts       int `json:"attempts"`
}

type Match struct {
	ID              int                `json:"id" db:"id"`
	TournamentID    int                `json:"tournament_id" db:"tournament_id"`
	GroupNumber     int                `json:"group_number" db:"group_number"`
	RoundNumber     int                `json:"round_number" db:"round_number"`
	TableNumber     int                `json:"table_number" db:"table_number"`
	Player1ID       int                `json:"player1_id" db:"player1_id"`
	Player2ID       int                `json:"player2_id" db:"player2_id"`
	Toss            *TossState         `json:"toss,omitempty" db:"toss"`
	Boards          []BoardResult      `json:"boards" db:"boards"`
	SuddenDeath     *SuddenDeathResult `json:"sudden_death,omitempty" db:"sudden_death"`
	ConfirmedScore1 *int               `json:"confirmed_score1" db:"confirmed_score1"`
	ConfirmedScore2 *int               `json:"confirmed_score2" db:"confirmed_score2"`
	ConfirmedAt     *time.Time         `json:"confirmed_at,omitempty" db:"confirmed_at"`
	WinnerPlayerID  *int               `json:"winner_player_id,omitempty" db:"winner_player_id"`
	Status          MatchStatus        `json:"status" db:"status"`
	OverriddenBy    *int               `json:"overridden_by,omitempty" db:"overridden_by"`
	OverrideReason  *string            `json:"override_reason,omitempty" db:"override_reason"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`

	// Populated by the service, not stored on the match row.
	Confirmations  int           `json:"confirmations" db:"-"`
	MyConfirmation *Confirmation `json:"my_confirmation,omitempty" db:"-"`
}

func (m *Match) IsParticipant(playerID int) bool {
	return playerID == m.Player1ID || playerID == m.Player2ID
}

// Opponent returns the other player of the match, or 0 if playerID did not play it.
func (m *Match) Opponent(playerID int) int {
	switch playerID {
	case m.Player1ID:
		return m.Player2ID
	case m.Player2ID:
		return m.Player1ID
	}
	return 0
}

func (m *Match) IsConfirmed() bool {
	return m.Status == MatchConfirmed && m.ConfirmedScore1 != nil && m.ConfirmedScore2 != nil
}

// OutcomeFor reports the result of a confirmed match for playerID. An equal
// score with a recorded winner (sudden death) counts as a win for that winner.
func (m *Match) OutcomeFor(playerID int) Outcome {
	if !m.IsConfirmed() {
		return ""
	}
	s1, s2 := *m.ConfirmedScore1, *m.ConfirmedScore2
	if playerID == m.Player2ID {
		s1, s2 = s2, s1
	}
	switch {
	case s1 > s2:
		return OutcomeWin
	case s1 < s2:
		return OutcomeLoss
	}
	if m.WinnerPlayerID == nil {
		return OutcomeTie
	}
	if *m.WinnerPlayerID == playerID {
		return OutcomeWin
	}
	return OutcomeLoss
}

// PairKey identifies the unordered pair of players of a match.
func PairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Confirmation is one player's claimed result for a match. A match holds at
// most one confirmation per player. The board detail travels with the claim
// so one player's submission never rewrites the other's.
type Confirmation struct {
	MatchID            int                `json:"match_id" db:"match_id"`
	SubmittingPlayerID int                `json:"submitting_player_id" db:"player_id"`
	Score1             int                `json:"score1" db:"score1"`
	Score2             int                `json:"score2" db:"score2"`
	WinnerPlayerID     *int               `json:"winner_player_id,omitempty" db:"winner_player_id"`
	Toss               *TossState         `json:"toss,omitempty" db:"toss"`
	Boards             []BoardResult      `json:"boards,omitempty" db:"boards"`
	SuddenDeath        *SuddenDeathResult `json:"sudden_death,omitempty" db:"sudden_death"`
	SubmittedAt        time.Time          `json:"submitted_at" db:"submitted_at"`
}

// Agrees reports whether two claims name the same score and the same winner.
// Two drawn claims without a winner agree.
func (c Confirmation) Agrees(other Confirmation) bool {
	if c.Score1 != other.Score1 || c.Score2 != other.Score2 {
		return false
	}
	if c.WinnerPlayerID == nil || other.WinnerPlayerID == nil {
		return c.WinnerPlayerID == nil && other.WinnerPlayerID == nil
	}
	return *c.WinnerPlayerID == *other.WinnerPlayerID
}

// ResolveConfirmations derives the match state from its confirmations.
// With two agreeing confirmations the agreed claim is returned; its detail
// fields are merged from both, later submissions first.
func ResolveConfirmations(confs []Confirmation) (MatchStatus, *Confirmation) {
	byPlayer := make(map[int]Confirmation, len(confs))
	order := make([]int, 0, len(confs))
	for _, c := range confs {
		if _, seen := byPlayer[c.SubmittingPlayerID]; !seen {
			order = append(order, c.SubmittingPlayerID)
		}
		byPlayer[c.SubmittingPlayerID] = c
	}
	if len(byPlayer) < 2 {
		return MatchPending, nil
	}

	claims := make([]Confirmation, 0, len(order))
	for _, id := range order {
		claims = append(claims, byPlayer[id])
	}
	sort.SliceStable(claims, func(i, j int) bool { return claims[i].SubmittedAt.Before(claims[j].SubmittedAt) })

	agreed := claims[0]
	for _, c := range claims[1:] {
		if !c.Agrees(agreed) {
			return MatchDisputed, nil
		}
		if c.Toss != nil {
			agreed.Toss = c.Toss
		}
		if len(c.Boards) > 0 {
			agreed.Boards = c.Boards
		}
		if c.SuddenDeath != nil {
			agreed.SuddenDeath = c.SuddenDeath
		}
	}
	return MatchConfirmed, &agreed
}
