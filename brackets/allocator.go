package brackets

import (
	"fmt"
	"sort"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

const (
	MinGroups = 2
	MaxGroups = 64
)

// AllocateGroups distributes seeded players into groupCount groups. Members of
// each group are kept in seed order.
func AllocateGroups(tournamentID int, seeds []models.SeedEntry, groupCount int, method models.GroupMethod) ([]*models.Group, error) {
	if groupCount < MinGroups || groupCount > MaxGroups || groupCount > len(seeds) {
		return nil, fmt.Errorf("%w (got %d for %d players)", ErrInvalidGroupCount, groupCount, len(seeds))
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroupMethod, method)
	}

	sorted := make([]models.SeedEntry, len(seeds))
	copy(sorted, seeds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Seed < sorted[j].Seed
	})

	groups := make([]*models.Group, groupCount)
	for i := range groups {
		groups[i] = &models.Group{
			TournamentID: tournamentID,
			GroupNumber:  i + 1,
			GroupCount:   groupCount,
			Method:       method,
			Members:      make([]models.SeedEntry, 0, len(sorted)/groupCount+1),
		}
	}

	for i, entry := range sorted {
		g := groupIndex(i, groupCount, method)
		groups[g].Members = append(groups[g].Members, entry)
	}

	return groups, nil
}

// groupIndex returns the 0-based group for the player at sorted position i.
func groupIndex(i, groupCount int, method models.GroupMethod) int {
	pos := i % groupCount
	if method == models.GroupSnake && (i/groupCount)%2 == 1 {
		return groupCount - 1 - pos
	}
	return pos
}
