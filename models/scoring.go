package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Outcome is the result of a match from one player's point of view.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeTie  Outcome = "tie"
	OutcomeLoss Outcome = "loss"
)

// ScoringTable maps a match outcome to the round points awarded for it.
// Values are configured per tournament.
type ScoringTable struct {
	Win  int `json:"win"`
	Tie  int `json:"tie"`
	Loss int `json:"loss"`
}

func DefaultScoringTable() ScoringTable {
	return ScoringTable{Win: 2, Tie: 1, Loss: 0}
}

func (s ScoringTable) Points(o Outcome) int {
	switch o {
	case OutcomeWin:
		return s.Win
	case OutcomeTie:
		return s.Tie
	default:
		return s.Loss
	}
}

func (s ScoringTable) Validate() error {
	if s.Win < 0 || s.Tie < 0 || s.Loss < 0 {
		return errors.New("scoring table values must not be negative")
	}
	if s.Win < s.Tie || s.Tie < s.Loss {
		return fmt.Errorf("scoring table must satisfy win >= tie >= loss, got %d/%d/%d", s.Win, s.Tie, s.Loss)
	}
	return nil
}

// Value stores the table as JSONB.
func (s ScoringTable) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *ScoringTable) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*s = DefaultScoringTable()
		return nil
	default:
		return fmt.Errorf("unsupported scoring table type %T", src)
	}
	return json.Unmarshal(raw, s)
}
