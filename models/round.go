package models

import "time"

// Round is one SRR round of a group. It is complete when every match in it
// is confirmed.
type Round struct {
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	GroupNumber  int       `json:"group_number" db:"group_number"`
	RoundNumber  int       `json:"round_number" db:"round_number"`
	Matches      []*Match  `json:"matches" db:"-"`
	IsComplete   bool      `json:"is_complete" db:"-"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Evaluate recomputes IsComplete from the round's matches.
func (r *Round) Evaluate() {
	r.IsComplete = len(r.Matches) > 0
	for _, m := range r.Matches {
		if !m.IsConfirmed() {
			r.IsComplete = false
			return
		}
	}
}

type RoundDeletion struct {
	DeletedRoundNumber int `json:"deleted_round_number"`
	DeletedMatches     int `json:"deleted_matches"`
}

type GroupDeletion struct {
	DeletedGroups  int `json:"deleted_groups"`
	DeletedRounds  int `json:"deleted_rounds"`
	DeletedMatches int `json:"deleted_matches"`
	DeletedRows    int `json:"deleted_rows"`
}
