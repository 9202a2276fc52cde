package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/live"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

// firstMatch sets up a tournament of two groups of two and returns group 1's
// round one match.
func (e *env) firstMatch(t *testing.T, srrRounds int) (*models.Tournament, *models.Match, []int) {
	t.Helper()
	tour, ids := e.setupTournament(t, 4, 2, srrRounds, 0)
	round, err := e.rounds.GenerateRound(context.Background(), tour.ID, 1, nil)
	require.NoError(t, err)
	require.Len(t, round.Matches, 1)
	return tour, round.Matches[0], ids
}

func TestSubmitConfirmation_ConsensusFlow(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, m, ids := e.firstMatch(t, 1)
	p1, p2 := m.Player1ID, m.Player2ID
	require.Equal(t, ids[0], p1)

	_, err := e.matches.SubmitConfirmation(ctx, m.ID, ids[1], ResultInput{Score1: 25, Score2: 10})
	assert.ErrorIs(t, err, ErrNotMatchParticipant)
	assert.ErrorIs(t, err, ErrAuthorization)

	got, err := e.matches.SubmitConfirmation(ctx, m.ID, p1, ResultInput{Score1: 25, Score2: 10})
	require.NoError(t, err)
	assert.Equal(t, models.MatchPending, got.Status)
	assert.Equal(t, 1, got.Confirmations)
	require.NotNil(t, got.MyConfirmation)
	assert.Equal(t, 25, got.MyConfirmation.Score1)
	assert.Nil(t, got.ConfirmedScore1)

	got, err = e.matches.SubmitConfirmation(ctx, m.ID, p2, ResultInput{Score1: 10, Score2: 25})
	require.NoError(t, err)
	assert.Equal(t, models.MatchDisputed, got.Status)
	assert.Nil(t, got.ConfirmedAt)

	got, err = e.matches.SubmitConfirmation(ctx, m.ID, p2, ResultInput{Score1: 25, Score2: 10})
	require.NoError(t, err)
	assert.Equal(t, models.MatchConfirmed, got.Status)
	assert.Equal(t, 2, got.Confirmations)
	require.NotNil(t, got.ConfirmedScore1)
	assert.Equal(t, 25, *got.ConfirmedScore1)
	assert.Equal(t, 10, *got.ConfirmedScore2)
	assert.NotNil(t, got.ConfirmedAt)
	require.NotNil(t, got.WinnerPlayerID)
	assert.Equal(t, p1, *got.WinnerPlayerID)

	_, err = e.matches.SubmitConfirmation(ctx, m.ID, p1, ResultInput{Score1: 25, Score2: 10})
	assert.ErrorIs(t, err, ErrMatchAlreadyConfirmed)
	assert.ErrorIs(t, err, ErrState)

	// A confirmed match reports its state to anyone, participant or not.
	_, err = e.matches.SubmitConfirmation(ctx, m.ID, ids[1], ResultInput{Score1: 25, Score2: 10})
	assert.ErrorIs(t, err, ErrMatchAlreadyConfirmed)

	assert.Contains(t, e.pub.types(), live.EventMatchUpdated)
	assert.Contains(t, e.pub.types(), live.EventStandingsUpdated)
}

func TestSubmitConfirmation_Validation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, m, _ := e.firstMatch(t, 1)

	_, err := e.matches.SubmitConfirmation(ctx, m.ID, m.Player1ID, ResultInput{Score1: -1, Score2: 3})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.matches.SubmitConfirmation(ctx, 404, m.Player1ID, ResultInput{Score1: 1, Score2: 3})
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = e.matches.SubmitConfirmation(ctx, m.ID, m.Player1ID, ResultInput{
		Score1: 1, Score2: 3, Toss: &models.TossState{WinnerPlayerID: 9999, Choice: "break"},
	})
	assert.ErrorIs(t, err, ErrValidation)

	// Nothing was recorded by the failed calls.
	got, err := e.matches.GetMatch(ctx, m.ID, m.Player1ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Confirmations)
	assert.Nil(t, got.MyConfirmation)
}

func TestSubmitConfirmation_Boards(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, m, _ := e.firstMatch(t, 1)
	p1, p2 := m.Player1ID, m.Player2ID

	boards := []models.BoardResult{
		{BoardNumber: 1, PointsPlayer1: 13, WinnerPlayerID: &p1},
		{BoardNumber: 2, PointsPlayer2: 10, WinnerPlayerID: &p2},
		{BoardNumber: 3, PointsPlayer1: 12, WinnerPlayerID: &p1},
	}

	_, err := e.matches.SubmitConfirmation(ctx, m.ID, p1, ResultInput{Score1: 25, Score2: 12, Boards: boards})
	assert.ErrorIs(t, err, ErrBoardScoreMismatch)

	_, err = e.matches.SubmitConfirmation(ctx, m.ID, p1, ResultInput{Score1: 25, Score2: 10, Boards: boards[1:]})
	assert.ErrorIs(t, err, ErrState)

	got, err := e.matches.SubmitConfirmation(ctx, m.ID, p1, ResultInput{
		Score1: 25, Score2: 10, Boards: boards, Toss: &models.TossState{WinnerPlayerID: p2, Choice: "break"},
	})
	require.NoError(t, err)
	require.NotNil(t, got.MyConfirmation)
	assert.Len(t, got.MyConfirmation.Boards, 3)
	assert.Empty(t, got.Boards)

	// The opponent confirms the score only; the detail of the first claim is kept.
	got, err = e.matches.SubmitConfirmation(ctx, m.ID, p2, ResultInput{Score1: 25, Score2: 10})
	require.NoError(t, err)
	assert.Equal(t, models.MatchConfirmed, got.Status)
	assert.Len(t, got.Boards, 3)
	require.NotNil(t, got.Toss)
	assert.Equal(t, p2, got.Toss.WinnerPlayerID)
}

func TestSubmitConfirmation_SuddenDeathDecidesTie(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, m, _ := e.firstMatch(t, 1)
	p1, p2 := m.Player1ID, m.Player2ID

	boards := []models.BoardResult{
		{BoardNumber: 1, PointsPlayer1: 10},
		{BoardNumber: 2, PointsPlayer2: 10},
	}
	sd := &models.SuddenDeathResult{WinnerPlayerID: p2, Player1Hits: 1, Player2Hits: 2, Attempts: 3}

	_, err := e.matches.SubmitConfirmation(ctx, m.ID, p1, ResultInput{Score1: 10, Score2: 10, Boards: boards, SuddenDeath: sd})
	require.NoError(t, err)

	// A bare draw does not agree with a claim that names a winner.
	got, err := e.matches.SubmitConfirmation(ctx, m.ID, p2, ResultInput{Score1: 10, Score2: 10})
	require.NoError(t, err)
	assert.Equal(t, models.MatchDisputed, got.Status)
	assert.Nil(t, got.WinnerPlayerID)

	got, err = e.matches.SubmitConfirmation(ctx, m.ID, p2, ResultInput{Score1: 10, Score2: 10, SuddenDeath: sd})
	require.NoError(t, err)

	assert.Equal(t, models.MatchConfirmed, got.Status)
	require.NotNil(t, got.WinnerPlayerID)
	assert.Equal(t, p2, *got.WinnerPlayerID)
	assert.Equal(t, models.OutcomeWin, got.OutcomeFor(p2))

	_, err = e.matches.SubmitConfirmation(ctx, m.ID, p1, ResultInput{Score1: 10, Score2: 10,
		SuddenDeath: &models.SuddenDeathResult{WinnerPlayerID: p1, Player1Hits: 0, Player2Hits: 2}})
	assert.ErrorIs(t, err, ErrMatchAlreadyConfirmed)
}

func TestSubmitConfirmation_OppositeSuddenDeathWinnersDispute(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, m, _ := e.firstMatch(t, 1)
	p1, p2 := m.Player1ID, m.Player2ID

	p1Wins := &models.SuddenDeathResult{WinnerPlayerID: p1, Player1Hits: 2, Player2Hits: 1, Attempts: 3}
	p2Wins := &models.SuddenDeathResult{WinnerPlayerID: p2, Player1Hits: 1, Player2Hits: 2, Attempts: 3}

	_, err := e.matches.SubmitConfirmation(ctx, m.ID, p1, ResultInput{Score1: 10, Score2: 10, SuddenDeath: p1Wins})
	require.NoError(t, err)
	got, err := e.matches.SubmitConfirmation(ctx, m.ID, p2, ResultInput{Score1: 10, Score2: 10, SuddenDeath: p2Wins})
	require.NoError(t, err)

	assert.Equal(t, models.MatchDisputed, got.Status)
	assert.Nil(t, got.WinnerPlayerID)
	assert.Nil(t, got.ConfirmedScore1)
	assert.Nil(t, got.SuddenDeath)

	// Each player still sees the claim they made.
	mine, err := e.matches.GetMatch(ctx, m.ID, p1)
	require.NoError(t, err)
	require.NotNil(t, mine.MyConfirmation)
	require.NotNil(t, mine.MyConfirmation.WinnerPlayerID)
	assert.Equal(t, p1, *mine.MyConfirmation.WinnerPlayerID)

	got, err = e.matches.SubmitConfirmation(ctx, m.ID, p2, ResultInput{Score1: 10, Score2: 10, SuddenDeath: p1Wins})
	require.NoError(t, err)
	assert.Equal(t, models.MatchConfirmed, got.Status)
	require.NotNil(t, got.WinnerPlayerID)
	assert.Equal(t, p1, *got.WinnerPlayerID)
	require.NotNil(t, got.SuddenDeath)
	assert.Equal(t, p1, got.SuddenDeath.WinnerPlayerID)
}

func TestSubmitConfirmation_DrawWithoutSuddenDeath(t *testing.T) {
	e := newEnv()
	_, m, _ := e.firstMatch(t, 1)

	got := e.confirm(t, m, 18, 18)
	assert.Nil(t, got.WinnerPlayerID)
	assert.Equal(t, models.OutcomeTie, got.OutcomeFor(m.Player1ID))
}

func TestOverrideConfirmation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, m, _ := e.firstMatch(t, 1)

	player := Actor{UserID: m.Player1ID, Role: models.RolePlayer}
	_, err := e.matches.OverrideConfirmation(ctx, m.ID, player, OverrideInput{ResultInput: ResultInput{Score1: 1}, Reason: "x"})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = e.matches.OverrideConfirmation(ctx, m.ID, e.admin(), OverrideInput{ResultInput: ResultInput{Score1: 1}, Reason: "  "})
	assert.ErrorIs(t, err, ErrOverrideReasonEmpty)

	_, err = e.matches.SubmitConfirmation(ctx, m.ID, m.Player1ID, ResultInput{Score1: 25, Score2: 0})
	require.NoError(t, err)
	_, err = e.matches.SubmitConfirmation(ctx, m.ID, m.Player2ID, ResultInput{Score1: 0, Score2: 25})
	require.NoError(t, err)

	got, err := e.matches.OverrideConfirmation(ctx, m.ID, e.admin(), OverrideInput{
		ResultInput: ResultInput{Score1: 25, Score2: 0},
		Reason:      "scoresheet checked by referee",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MatchConfirmed, got.Status)
	assert.Equal(t, 25, *got.ConfirmedScore1)
	require.NotNil(t, got.OverriddenBy)
	assert.Equal(t, e.adminID, *got.OverriddenBy)
	assert.Equal(t, "scoresheet checked by referee", *got.OverrideReason)
	assert.Equal(t, 2, got.Confirmations)

	_, err = e.matches.OverrideConfirmation(ctx, m.ID, e.admin(), OverrideInput{ResultInput: ResultInput{Score1: 1}, Reason: "again"})
	assert.ErrorIs(t, err, ErrMatchAlreadyConfirmed)
}

func TestReopenMatch(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, m, _ := e.firstMatch(t, 3)
	e.confirm(t, m, 20, 7)

	_, err := e.matches.ReopenMatch(ctx, m.ID, Actor{UserID: m.Player1ID, Role: models.RolePlayer})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	got, err := e.matches.ReopenMatch(ctx, m.ID, e.admin())
	require.NoError(t, err)
	assert.Equal(t, models.MatchPending, got.Status)
	assert.Nil(t, got.ConfirmedScore1)
	assert.Nil(t, got.ConfirmedAt)
	assert.Nil(t, got.WinnerPlayerID)

	viewed, err := e.matches.GetMatch(ctx, m.ID, m.Player1ID)
	require.NoError(t, err)
	assert.Equal(t, 0, viewed.Confirmations)

	// Players can confirm again.
	e.confirm(t, m, 7, 20)
}

func TestReopenMatch_OnlyCurrentRound(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	tour, _ := e.setupTournament(t, 8, 2, 3, 0)
	r1, err := e.rounds.GenerateRound(ctx, tour.ID, 1, nil)
	require.NoError(t, err)
	for _, m := range r1.Matches {
		e.confirm(t, m, 20, 7)
	}
	_, err = e.rounds.GenerateRound(ctx, tour.ID, 1, nil)
	require.NoError(t, err)

	_, err = e.matches.ReopenMatch(ctx, r1.Matches[0].ID, e.admin())
	assert.ErrorIs(t, err, ErrRoundNotCurrent)
}

func TestTournamentCompletesAndReopens(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	tour, m, _ := e.firstMatch(t, 1)
	r2, err := e.rounds.GenerateRound(ctx, tour.ID, 2, nil)
	require.NoError(t, err)

	e.confirm(t, m, 20, 7)
	current, err := e.tournaments.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, current.Status)

	e.confirm(t, r2.Matches[0], 3, 9)
	current, err = e.tournaments.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, current.Status)

	_, err = e.matches.ReopenMatch(ctx, m.ID, e.admin())
	require.NoError(t, err)
	current, err = e.tournaments.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, current.Status)
}

func TestGetMatch_ShowsOwnConfirmation(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, m, _ := e.firstMatch(t, 1)
	_, err := e.matches.SubmitConfirmation(ctx, m.ID, m.Player2ID, ResultInput{Score1: 4, Score2: 9})
	require.NoError(t, err)

	mine, err := e.matches.GetMatch(ctx, m.ID, m.Player2ID)
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Confirmations)
	require.NotNil(t, mine.MyConfirmation)
	assert.Equal(t, 9, mine.MyConfirmation.Score2)

	theirs, err := e.matches.GetMatch(ctx, m.ID, m.Player1ID)
	require.NoError(t, err)
	assert.Equal(t, 1, theirs.Confirmations)
	assert.Nil(t, theirs.MyConfirmation)

	_, err = e.matches.GetMatch(ctx, 404, 0)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
