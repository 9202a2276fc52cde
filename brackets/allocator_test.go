package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

func seeds(n int) []models.SeedEntry {
	out := make([]models.SeedEntry, n)
	for i := range out {
		out[i] = models.SeedEntry{TournamentID: 1, PlayerID: 100 + i + 1, Seed: i + 1, SourceType: models.SeedNational}
	}
	return out
}

func seedNumbers(g *models.Group) []int {
	out := make([]int, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.Seed
	}
	return out
}

func TestAllocateGroups_Interleaved(t *testing.T) {
	groups, err := AllocateGroups(1, seeds(4), 2, models.GroupInterleaved)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, []int{1, 3}, seedNumbers(groups[0]))
	assert.Equal(t, []int{2, 4}, seedNumbers(groups[1]))
	assert.Equal(t, 1, groups[0].GroupNumber)
	assert.Equal(t, 2, groups[1].GroupCount)
}

func TestAllocateGroups_SnakeReversesSecondBand(t *testing.T) {
	const g = 4
	groups, err := AllocateGroups(1, seeds(2*g), g, models.GroupSnake)
	require.NoError(t, err)

	assignment := make(map[int]int)
	for _, grp := range groups {
		for _, m := range grp.Members {
			assignment[m.Seed] = grp.GroupNumber
		}
	}

	for i := 1; i <= g; i++ {
		assert.Equal(t, i, assignment[i], "seed %d", i)
		assert.Equal(t, assignment[i], assignment[2*g+1-i], "seed %d mirrors seed %d", 2*g+1-i, i)
	}
}

func TestAllocateGroups_PartitionAndBalance(t *testing.T) {
	for _, method := range []models.GroupMethod{models.GroupInterleaved, models.GroupSnake} {
		for n := 2; n <= 40; n++ {
			for g := 2; g <= n && g <= 9; g++ {
				input := seeds(n)
				groups, err := AllocateGroups(1, input, g, method)
				require.NoError(t, err)

				seen := make(map[int]int)
				minSize, maxSize := n, 0
				for _, grp := range groups {
					if len(grp.Members) < minSize {
						minSize = len(grp.Members)
					}
					if len(grp.Members) > maxSize {
						maxSize = len(grp.Members)
					}
					for i, m := range grp.Members {
						seen[m.PlayerID]++
						if i > 0 {
							assert.Less(t, grp.Members[i-1].Seed, m.Seed, "members kept in seed order")
						}
					}
				}
				assert.Len(t, seen, n, "%s n=%d g=%d", method, n, g)
				for id, count := range seen {
					assert.Equal(t, 1, count, "player %d placed once", id)
				}
				assert.LessOrEqual(t, maxSize-minSize, 1, "%s n=%d g=%d", method, n, g)
			}
		}
	}
}

func TestAllocateGroups_UnsortedInput(t *testing.T) {
	input := seeds(6)
	input[0], input[5] = input[5], input[0]

	groups, err := AllocateGroups(1, input, 3, models.GroupInterleaved)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, seedNumbers(groups[0]))
	assert.Equal(t, []int{3, 6}, seedNumbers(groups[2]))
}

func TestAllocateGroups_InvalidCount(t *testing.T) {
	cases := []struct {
		name    string
		players int
		groups  int
	}{
		{"one group", 10, 1},
		{"more groups than players", 3, 4},
		{"above maximum", 200, 65},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AllocateGroups(1, seeds(tc.players), tc.groups, models.GroupSnake)
			assert.ErrorIs(t, err, ErrInvalidGroupCount)
		})
	}
}

func TestAllocateGroups_UnknownMethod(t *testing.T) {
	_, err := AllocateGroups(1, seeds(4), 2, "spiral")
	assert.ErrorIs(t, err, ErrUnknownGroupMethod)
}
