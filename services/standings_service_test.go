package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

// playedTournament returns a finished single-round tournament: group 1's
// ids[0] beat ids[2] 25-10 and group 2's ids[1] drew ids[3] 15-15.
func (e *env) playedTournament(t *testing.T) (*models.Tournament, []int) {
	t.Helper()
	ctx := context.Background()
	tour, ids := e.setupTournament(t, 4, 2, 1, 0)
	for group, score := range [][2]int{{25, 10}, {15, 15}} {
		round, err := e.rounds.GenerateRound(ctx, tour.ID, group+1, nil)
		require.NoError(t, err)
		e.confirm(t, round.Matches[0], score[0], score[1])
	}
	return tour, ids
}

func positions(rows []models.StandingRow) map[int]int {
	out := make(map[int]int, len(rows))
	for _, r := range rows {
		out[r.PlayerID] = r.Position
	}
	return out
}

func TestGetStandings_Live(t *testing.T) {
	e := newEnv()
	tour, ids := e.playedTournament(t)

	rows, err := e.standings.GetStandings(context.Background(), tour.ID, models.LiveScope())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, ids[0], rows[0].PlayerID)
	assert.Equal(t, 2, rows[0].SRP)
	assert.Equal(t, 0, rows[0].SOP)
	assert.Equal(t, 15, rows[0].NGD)
	assert.Equal(t, "player1", rows[0].DisplayName)
	assert.Equal(t, map[int]int{ids[0]: 1, ids[1]: 2, ids[3]: 2, ids[2]: 4}, positions(rows))

	loser := rows[3]
	assert.Equal(t, ids[2], loser.PlayerID)
	assert.Equal(t, 2, loser.SOP)
	assert.Equal(t, -15, loser.NGD)
	assert.Equal(t, 1, loser.Losses)
}

func TestGetStandings_GroupScope(t *testing.T) {
	e := newEnv()
	tour, ids := e.playedTournament(t)

	rows, err := e.standings.GetStandings(context.Background(), tour.ID, models.GroupScope(2))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, map[int]int{ids[1]: 1, ids[3]: 1}, positions(rows))
	for _, r := range rows {
		assert.Equal(t, 1, r.Draws)
		assert.Equal(t, 1, r.Points)
	}
}

func TestGetStandings_InvalidScope(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	tour, _ := e.playedTournament(t)

	_, err := e.standings.GetStandings(ctx, tour.ID, models.AfterRoundScope(2))
	assert.ErrorIs(t, err, ErrInvalidRoundNumber)

	_, err = e.standings.GetStandings(ctx, tour.ID, models.StandingsScope{Round: -1})
	assert.ErrorIs(t, err, ErrInvalidRoundNumber)

	_, err = e.standings.GetStandings(ctx, tour.ID, models.StandingsScope{Group: -1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.standings.GetStandings(ctx, 404, models.LiveScope())
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestGetStandings_PendingMatchesScoreNothing(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	tour, _ := e.setupTournament(t, 4, 2, 3, 0)
	_, err := e.rounds.GenerateRound(ctx, tour.ID, 1, nil)
	require.NoError(t, err)

	rows, err := e.standings.GetStandings(ctx, tour.ID, models.LiveScope())
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.Equal(t, 1, r.Position)
		assert.Zero(t, r.Played)
	}
}

func TestRoundPoints(t *testing.T) {
	e := newEnv()
	tour, ids := e.playedTournament(t)

	points, err := e.standings.RoundPoints(context.Background(), tour.ID)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 1, points[0].RoundNumber)
	assert.Equal(t, []models.PlayerRoundPoints{
		{PlayerID: ids[0], DisplayName: "player1", Points: 2},
		{PlayerID: ids[1], DisplayName: "player2", Points: 1},
		{PlayerID: ids[3], DisplayName: "player4", Points: 1},
		{PlayerID: ids[2], DisplayName: "player3", Points: 0},
	}, points[0].Points)
}

func TestStandingsByRound(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	tour, _ := e.setupTournament(t, 8, 2, 3, 0)
	r1, err := e.rounds.GenerateRound(ctx, tour.ID, 1, nil)
	require.NoError(t, err)
	for _, m := range r1.Matches {
		e.confirm(t, m, 21, 4)
	}
	_, err = e.rounds.GenerateRound(ctx, tour.ID, 1, nil)
	require.NoError(t, err)

	byRound, err := e.standings.StandingsByRound(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, byRound, 2)
	assert.True(t, byRound[0].IsComplete)
	assert.False(t, byRound[1].IsComplete)
	assert.Len(t, byRound[0].Standings, 8)
	// Round 2 has no confirmed match yet, so the order is unchanged.
	assert.Equal(t, positions(byRound[0].Standings), positions(byRound[1].Standings))
}

func TestLiveSnapshot(t *testing.T) {
	e := newEnv()
	tour, _ := e.playedTournament(t)

	snap, err := e.standings.LiveSnapshot(context.Background(), tour.ID)
	require.NoError(t, err)
	assert.Equal(t, tour.ID, snap.TournamentID)
	assert.Equal(t, models.StatusCompleted, snap.Status)
	assert.Equal(t, map[int]int{1: 1, 2: 1}, snap.CurrentRounds)
	assert.Len(t, snap.Rounds, 2)
	assert.Len(t, snap.Standings, 4)
	assert.False(t, snap.GeneratedAt.IsZero())
}

func TestGetStandings_ConfirmationDuringLoadIsNotServedStale(t *testing.T) {
	c := newMemoryCache()
	e := newEnvWithCache(c)
	ctx := context.Background()
	tour, m, _ := e.firstMatch(t, 1)

	// The match is confirmed after the read loaded its data but before it
	// cached the rows.
	c.beforeSet = func() { e.confirm(t, m, 25, 10) }
	before, err := e.standings.GetStandings(ctx, tour.ID, models.LiveScope())
	require.NoError(t, err)
	for _, row := range before {
		assert.Zero(t, row.Played)
	}

	after, err := e.standings.GetStandings(ctx, tour.ID, models.LiveScope())
	require.NoError(t, err)
	played := make(map[int]int)
	for _, row := range after {
		played[row.PlayerID] = row.Played
	}
	assert.Equal(t, 1, played[m.Player1ID])
	assert.Equal(t, 1, played[m.Player2ID])

	// The fresh rows are cached under the new version.
	again, err := e.standings.GetStandings(ctx, tour.ID, models.LiveScope())
	require.NoError(t, err)
	assert.Equal(t, after, again)
}
