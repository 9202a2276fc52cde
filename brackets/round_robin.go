package brackets

import (
	"context"
	"fmt"
	"sort"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

type SwissRoundRobinGenerator struct {
	tables *TableAssigner
}

func NewSwissRoundRobinGenerator(tables *TableAssigner) PairingGenerator {
	if tables == nil {
		tables = NewRandomTableAssigner()
	}
	return &SwissRoundRobinGenerator{tables: tables}
}

func (g *SwissRoundRobinGenerator) GetName() string {
	return "SwissRoundRobin"
}

// GeneratePairings produces the next round of one group. Round 1 is paired
// from seed order alone; later rounds pair adjacent players of the group
// standings without repeating an earlier pairing.
func (g *SwissRoundRobinGenerator) GeneratePairings(ctx context.Context, params GeneratePairingsParams) ([]Pairing, error) {
	n := len(params.Members)
	if n < 2 {
		return nil, fmt.Errorf("SwissRoundRobinGenerator: group %d has %d members, min 2 required", params.GroupNumber, n)
	}
	if n%2 != 0 {
		return nil, fmt.Errorf("%w: group %d has %d members", ErrOddGroupSize, params.GroupNumber, n)
	}

	var pairs [][2]int
	var err error
	if params.RoundNumber <= 1 {
		pairs, err = roundOnePairs(params.Members, params.RoundOneMethod)
	} else {
		order := rankOrder(params.Members, params.Standings)
		var ok bool
		pairs, ok = pairByRank(order, playedPairs(params.History))
		if !ok {
			err = fmt.Errorf("%w: group %d round %d", ErrNoValidPairingExists, params.GroupNumber, params.RoundNumber)
		}
	}
	if err != nil {
		return nil, err
	}

	tables, err := g.tables.Assign(len(pairs), params.TableCount, params.BusyTables)
	if err != nil {
		return nil, err
	}

	result := make([]Pairing, len(pairs))
	for i, p := range pairs {
		result[i] = Pairing{Player1ID: p[0], Player2ID: p[1], TableNumber: tables[i]}
	}
	return result, nil
}

func roundOnePairs(members []models.SeedEntry, method models.RoundOneMethod) ([][2]int, error) {
	sorted := make([]models.SeedEntry, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seed < sorted[j].Seed })

	n := len(sorted)
	half := n / 2
	pairs := make([][2]int, 0, half)

	switch method {
	case models.RoundOneAdjacent, "":
		for i := 0; i+1 < n; i += 2 {
			pairs = append(pairs, [2]int{sorted[i].PlayerID, sorted[i+1].PlayerID})
		}
	case models.RoundOneTopVsTop:
		for i := 0; i < half; i++ {
			pairs = append(pairs, [2]int{sorted[i].PlayerID, sorted[half+i].PlayerID})
		}
	case models.RoundOneTopVsBottom:
		for i := 0; i < half; i++ {
			pairs = append(pairs, [2]int{sorted[i].PlayerID, sorted[n-1-i].PlayerID})
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoundOne, method)
	}
	return pairs, nil
}

// rankOrder sorts group members by standing position, falling back to seed
// for equal positions and for players without a row.
func rankOrder(members []models.SeedEntry, standings []models.StandingRow) []int {
	position := make(map[int]int, len(standings))
	for _, row := range standings {
		position[row.PlayerID] = row.Position
	}
	sorted := make([]models.SeedEntry, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, okI := position[sorted[i].PlayerID]
		pj, okJ := position[sorted[j].PlayerID]
		if okI != okJ {
			return okI
		}
		if pi != pj {
			return pi < pj
		}
		return sorted[i].Seed < sorted[j].Seed
	})

	order := make([]int, len(sorted))
	for i, m := range sorted {
		order[i] = m.PlayerID
	}
	return order
}

func playedPairs(history []*models.Match) map[[2]int]bool {
	played := make(map[[2]int]bool, len(history))
	for _, m := range history {
		played[models.PairKey(m.Player1ID, m.Player2ID)] = true
	}
	return played
}

// pairByRank pairs the highest remaining player with the nearest lower-ranked
// player they have not met, skipping any partner that would leave the rest of
// the group unpairable.
func pairByRank(order []int, played map[[2]int]bool) ([][2]int, bool) {
	if !hasPerfectMatching(order, played) {
		return nil, false
	}
	remaining := append([]int(nil), order...)
	pairs := make([][2]int, 0, len(order)/2)
	for len(remaining) > 0 {
		top := remaining[0]
		paired := false
		for j := 1; j < len(remaining); j++ {
			opp := remaining[j]
			if played[models.PairKey(top, opp)] {
				continue
			}
			rest := make([]int, 0, len(remaining)-2)
			rest = append(rest, remaining[1:j]...)
			rest = append(rest, remaining[j+1:]...)
			if hasPerfectMatching(rest, played) {
				pairs = append(pairs, [2]int{top, opp})
				remaining = rest
				paired = true
				break
			}
		}
		if !paired {
			return nil, false
		}
	}
	return pairs, true
}
