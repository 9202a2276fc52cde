package models

import "time"

// TournamentStatus mirrors the tournament_status enum in the database.
type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

// RoundOneMethod selects how seeds are paired before any standings exist.
type RoundOneMethod string

const (
	RoundOneAdjacent    RoundOneMethod = "adjacent"
	RoundOneTopVsTop    RoundOneMethod = "top_vs_top"
	RoundOneTopVsBottom RoundOneMethod = "top_vs_bottom"
)

func (m RoundOneMethod) Valid() bool {
	switch m {
	case RoundOneAdjacent, RoundOneTopVsTop, RoundOneTopVsBottom:
		return true
	}
	return false
}

// Tournament holds the metadata the engine consumes: number of SRR rounds,
// group count, size of the venue's table pool and the scoring table.
type Tournament struct {
	ID             int              `json:"id" db:"id"`
	Name           string           `json:"name" db:"name"`
	Venue          *string          `json:"venue,omitempty" db:"venue"`
	SRRRounds      int              `json:"srr_rounds" db:"srr_rounds"`
	NumberOfGroups int              `json:"number_of_groups" db:"number_of_groups"`
	TableCount     int              `json:"table_count" db:"table_count"`
	RoundOneMethod RoundOneMethod   `json:"round_one_method" db:"round_one_method"`
	Scoring        ScoringTable     `json:"scoring" db:"scoring_table"`
	Status         TournamentStatus `json:"status" db:"status"`
	CreatedBy      int              `json:"created_by" db:"created_by"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}
