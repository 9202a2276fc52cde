package models

type SeedSource string

const (
	SeedNational      SeedSource = "national"
	SeedInternational SeedSource = "international"
	SeedNew           SeedSource = "new"
)

func (s SeedSource) Valid() bool {
	switch s {
	case SeedNational, SeedInternational, SeedNew:
		return true
	}
	return false
}

// SeedEntry is one seeded player of a tournament.
type SeedEntry struct {
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	PlayerID     int        `json:"player_id" db:"player_id"`
	Seed         int        `json:"seed" db:"seed"`
	SourceType   SeedSource `json:"source_type" db:"source_type"`
	DisplayName  string     `json:"display_name,omitempty" db:"-"`
}
