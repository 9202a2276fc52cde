package scoring

import (
	"sort"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

// Player is one entrant of a standings table. Players without a confirmed
// match still get a row.
type Player struct {
	ID          int
	DisplayName string
	GroupNumber int
}

type tally struct {
	row       models.StandingRow
	opponents []int
}

// Calculate ranks players over the confirmed matches inside scope.
// Order is SRP, SOP, NGD descending; equal rows share a position and the
// next position skips ahead (1, 1, 3).
func Calculate(matches []*models.Match, players []Player, table models.ScoringTable, scope models.StandingsScope) []models.StandingRow {
	tallies := make(map[int]*tally, len(players))
	get := func(id, group int) *tally {
		t, ok := tallies[id]
		if !ok {
			t = &tally{row: models.StandingRow{PlayerID: id, GroupNumber: group}}
			tallies[id] = t
		}
		return t
	}
	for _, p := range players {
		if scope.Group > 0 && p.GroupNumber != 0 && p.GroupNumber != scope.Group {
			continue
		}
		t := get(p.ID, p.GroupNumber)
		t.row.DisplayName = p.DisplayName
	}

	lastRound := make(map[int]int)
	for _, m := range matches {
		if !scope.Includes(m) {
			continue
		}
		if m.RoundNumber > lastRound[m.GroupNumber] {
			lastRound[m.GroupNumber] = m.RoundNumber
		}
	}
	if scope.Round > 0 {
		for g := range lastRound {
			lastRound[g] = scope.Round
		}
	}

	for _, m := range matches {
		if !scope.Includes(m) || !m.IsConfirmed() {
			continue
		}
		for _, side := range [2]struct{ id, opp, scored, conceded int }{
			{m.Player1ID, m.Player2ID, *m.ConfirmedScore1, *m.ConfirmedScore2},
			{m.Player2ID, m.Player1ID, *m.ConfirmedScore2, *m.ConfirmedScore1},
		} {
			t := get(side.id, m.GroupNumber)
			outcome := m.OutcomeFor(side.id)
			pts := table.Points(outcome)

			t.row.SRP += pts
			t.row.Played++
			t.row.GamePointsFor += side.scored
			t.row.GamePointsAgainst += side.conceded
			switch outcome {
			case models.OutcomeWin:
				t.row.Wins++
			case models.OutcomeTie:
				t.row.Draws++
			case models.OutcomeLoss:
				t.row.Losses++
			}
			if m.RoundNumber == lastRound[m.GroupNumber] {
				t.row.Points = pts
			}
			t.opponents = append(t.opponents, side.opp)
		}
	}

	rows := make([]models.StandingRow, 0, len(tallies))
	for _, t := range tallies {
		for _, opp := range t.opponents {
			if o, ok := tallies[opp]; ok {
				t.row.SOP += o.row.SRP
			}
		}
		t.row.NGD = t.row.GamePointsFor - t.row.GamePointsAgainst
		rows = append(rows, t.row)
	}

	Rank(rows)
	return rows
}

// Rank sorts rows and assigns competition positions in place.
func Rank(rows []models.StandingRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !sameKey(a, b) {
			return ahead(a, b)
		}
		return a.PlayerID < b.PlayerID
	})
	for i := range rows {
		if i > 0 && sameKey(rows[i-1], rows[i]) {
			rows[i].Position = rows[i-1].Position
			continue
		}
		rows[i].Position = i + 1
	}
}

func sameKey(a, b models.StandingRow) bool {
	return a.SRP == b.SRP && a.SOP == b.SOP && a.NGD == b.NGD
}

func ahead(a, b models.StandingRow) bool {
	if a.SRP != b.SRP {
		return a.SRP > b.SRP
	}
	if a.SOP != b.SOP {
		return a.SOP > b.SOP
	}
	return a.NGD > b.NGD
}

// PointsByRound lists the round points each player earned, one entry per
// round number present among the confirmed matches.
func PointsByRound(matches []*models.Match, table models.ScoringTable) []models.RoundPoints {
	byRound := make(map[int][]models.PlayerRoundPoints)
	for _, m := range matches {
		if !m.IsConfirmed() {
			continue
		}
		for _, id := range [2]int{m.Player1ID, m.Player2ID} {
			byRound[m.RoundNumber] = append(byRound[m.RoundNumber], models.PlayerRoundPoints{
				PlayerID: id,
				Points:   table.Points(m.OutcomeFor(id)),
			})
		}
	}

	rounds := make([]int, 0, len(byRound))
	for r := range byRound {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)

	out := make([]models.RoundPoints, 0, len(rounds))
	for _, r := range rounds {
		pts := byRound[r]
		sort.Slice(pts, func(i, j int) bool {
			if pts[i].Points != pts[j].Points {
				return pts[i].Points > pts[j].Points
			}
			return pts[i].PlayerID < pts[j].PlayerID
		})
		out = append(out, models.RoundPoints{RoundNumber: r, Points: pts})
	}
	return out
}
