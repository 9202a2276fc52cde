package models

import "time"

type GroupMethod string

const (
	GroupInterleaved GroupMethod = "interleaved"
	GroupSnake       GroupMethod = "snake"
)

func (m GroupMethod) Valid() bool {
	return m == GroupInterleaved || m == GroupSnake
}

type Group struct {
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	GroupNumber  int         `json:"group_number" db:"group_number"`
	GroupCount   int         `json:"group_count" db:"group_count"`
	Method       GroupMethod `json:"method" db:"method"`
	Members      []SeedEntry `json:"members" db:"-"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// MemberIDs returns the player ids of the group in seed order.
func (g *Group) MemberIDs() []int {
	ids := make([]int, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.PlayerID
	}
	return ids
}
