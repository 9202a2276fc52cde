package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conf(player, s1, s2 int) Confirmation {
	return Confirmation{MatchID: 1, SubmittingPlayerID: player, Score1: s1, Score2: s2}
}

func TestResolveConfirmations(t *testing.T) {
	status, agreed := ResolveConfirmations(nil)
	assert.Equal(t, MatchPending, status)
	assert.Nil(t, agreed)

	status, _ = ResolveConfirmations([]Confirmation{conf(1, 25, 10)})
	assert.Equal(t, MatchPending, status)

	status, agreed = ResolveConfirmations([]Confirmation{conf(1, 25, 10), conf(2, 25, 10)})
	assert.Equal(t, MatchConfirmed, status)
	require.NotNil(t, agreed)
	assert.Equal(t, 25, agreed.Score1)
	assert.Equal(t, 10, agreed.Score2)

	status, agreed = ResolveConfirmations([]Confirmation{conf(1, 25, 10), conf(2, 10, 25)})
	assert.Equal(t, MatchDisputed, status)
	assert.Nil(t, agreed)
}

func TestResolveConfirmations_SamePlayerTwiceIsPending(t *testing.T) {
	status, _ := ResolveConfirmations([]Confirmation{conf(1, 25, 10), conf(1, 25, 10)})
	assert.Equal(t, MatchPending, status)
}

func TestResolveConfirmations_WinnerMustAgree(t *testing.T) {
	p1, p2 := 1, 2
	claim := func(player int, winner *int) Confirmation {
		c := conf(player, 10, 10)
		c.WinnerPlayerID = winner
		return c
	}

	status, agreed := ResolveConfirmations([]Confirmation{claim(1, &p1), claim(2, &p2)})
	assert.Equal(t, MatchDisputed, status)
	assert.Nil(t, agreed)

	status, _ = ResolveConfirmations([]Confirmation{claim(1, &p1), claim(2, nil)})
	assert.Equal(t, MatchDisputed, status)

	status, agreed = ResolveConfirmations([]Confirmation{claim(1, nil), claim(2, nil)})
	assert.Equal(t, MatchConfirmed, status)
	require.NotNil(t, agreed)
	assert.Nil(t, agreed.WinnerPlayerID)

	other := p2
	status, agreed = ResolveConfirmations([]Confirmation{claim(1, &p2), claim(2, &other)})
	assert.Equal(t, MatchConfirmed, status)
	require.NotNil(t, agreed.WinnerPlayerID)
	assert.Equal(t, 2, *agreed.WinnerPlayerID)
}

func TestResolveConfirmations_MergesDetail(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	first := conf(1, 25, 10)
	first.SubmittedAt = start
	first.Boards = []BoardResult{{BoardNumber: 1, PointsPlayer1: 25, PointsPlayer2: 10}}
	first.Toss = &TossState{WinnerPlayerID: 2, Choice: "break"}
	second := conf(2, 25, 10)
	second.SubmittedAt = start.Add(time.Minute)
	second.Toss = &TossState{WinnerPlayerID: 1, Choice: "side"}

	status, agreed := ResolveConfirmations([]Confirmation{second, first})
	assert.Equal(t, MatchConfirmed, status)
	require.NotNil(t, agreed)
	assert.Len(t, agreed.Boards, 1)
	require.NotNil(t, agreed.Toss)
	assert.Equal(t, 1, agreed.Toss.WinnerPlayerID)
}

func TestMatchOutcomeFor(t *testing.T) {
	s1, s2 := 20, 20
	m := &Match{Player1ID: 1, Player2ID: 2, ConfirmedScore1: &s1, ConfirmedScore2: &s2, Status: MatchConfirmed}
	assert.Equal(t, OutcomeTie, m.OutcomeFor(1))
	assert.Equal(t, OutcomeTie, m.OutcomeFor(2))

	winner := 1
	m.WinnerPlayerID = &winner
	assert.Equal(t, OutcomeWin, m.OutcomeFor(1))
	assert.Equal(t, OutcomeLoss, m.OutcomeFor(2))

	hi := 21
	m.ConfirmedScore2 = &hi
	assert.Equal(t, OutcomeWin, m.OutcomeFor(2))

	m.Status = MatchDisputed
	assert.Equal(t, Outcome(""), m.OutcomeFor(1))
}

func TestMatchOpponent(t *testing.T) {
	m := &Match{Player1ID: 4, Player2ID: 9}
	assert.Equal(t, 9, m.Opponent(4))
	assert.Equal(t, 4, m.Opponent(9))
	assert.Equal(t, 0, m.Opponent(5))
	assert.True(t, m.IsParticipant(9))
	assert.False(t, m.IsParticipant(5))
	assert.Equal(t, [2]int{4, 9}, PairKey(9, 4))
}

func TestScoringTable(t *testing.T) {
	def := DefaultScoringTable()
	require.NoError(t, def.Validate())
	assert.Equal(t, 2, def.Points(OutcomeWin))
	assert.Equal(t, 1, def.Points(OutcomeTie))
	assert.Equal(t, 0, def.Points(OutcomeLoss))

	assert.Error(t, ScoringTable{Win: 1, Tie: 2}.Validate())
	assert.Error(t, ScoringTable{Win: 2, Tie: 1, Loss: -1}.Validate())

	var scanned ScoringTable
	require.NoError(t, scanned.Scan([]byte(`{"win":3,"tie":1,"loss":0}`)))
	assert.Equal(t, ScoringTable{Win: 3, Tie: 1}, scanned)
	require.NoError(t, scanned.Scan(nil))
	assert.Equal(t, def, scanned)
}

func TestRoundEvaluate(t *testing.T) {
	s := 1
	r := &Round{}
	r.Evaluate()
	assert.False(t, r.IsComplete)

	r.Matches = []*Match{
		{Status: MatchConfirmed, ConfirmedScore1: &s, ConfirmedScore2: &s},
		{Status: MatchPending},
	}
	r.Evaluate()
	assert.False(t, r.IsComplete)

	r.Matches[1] = &Match{Status: MatchConfirmed, ConfirmedScore1: &s, ConfirmedScore2: &s}
	r.Evaluate()
	assert.True(t, r.IsComplete)
}
