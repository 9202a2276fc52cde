package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

var (
	ErrIncompleteBoardSequence = errors.New("board numbers must run contiguously from 1")
	ErrInvalidBoard            = errors.New("invalid board result")
	ErrAmbiguousWinner         = errors.New("match winner cannot be derived from boards and sudden death")
)

// MatchResult is the match-level outcome derived from the boards. Score and
// winner are separate facts: a sudden death decides the winner of a tied
// match without touching the totals.
type MatchResult struct {
	Score1         int  `json:"score1"`
	Score2         int  `json:"score2"`
	WinnerPlayerID *int `json:"winner_player_id,omitempty"`
}

// IsDraw reports a level match with no sudden-death winner.
func (r MatchResult) IsDraw() bool {
	return r.WinnerPlayerID == nil
}

// Aggregate sums the board points of a match between player1ID and player2ID.
// Per-board points are trusted as supplied, queen adjustments included.
func Aggregate(boards []models.BoardResult, suddenDeath *models.SuddenDeathResult, player1ID, player2ID int) (MatchResult, error) {
	if len(boards) == 0 {
		return MatchResult{}, fmt.Errorf("%w: no boards supplied", ErrIncompleteBoardSequence)
	}

	sorted := make([]models.BoardResult, len(boards))
	copy(sorted, boards)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].BoardNumber < sorted[j].BoardNumber })

	var res MatchResult
	for i, b := range sorted {
		if b.BoardNumber != i+1 {
			return MatchResult{}, fmt.Errorf("%w: expected board %d, got %d", ErrIncompleteBoardSequence, i+1, b.BoardNumber)
		}
		if b.PointsPlayer1 < 0 || b.PointsPlayer2 < 0 {
			return MatchResult{}, fmt.Errorf("%w: board %d has negative points", ErrInvalidBoard, b.BoardNumber)
		}
		if b.WinnerPlayerID != nil && *b.WinnerPlayerID != player1ID && *b.WinnerPlayerID != player2ID {
			return MatchResult{}, fmt.Errorf("%w: board %d winner %d is not a participant", ErrInvalidBoard, b.BoardNumber, *b.WinnerPlayerID)
		}
		res.Score1 += b.PointsPlayer1
		res.Score2 += b.PointsPlayer2
	}

	winner, err := ResolveWinner(res.Score1, res.Score2, suddenDeath, player1ID, player2ID)
	if err != nil {
		return MatchResult{}, err
	}
	res.WinnerPlayerID = winner
	return res, nil
}

// ResolveWinner derives the winner of a match from its totals. A level score
// is decided by the sudden death when there is one and is a draw otherwise.
func ResolveWinner(score1, score2 int, suddenDeath *models.SuddenDeathResult, player1ID, player2ID int) (*int, error) {
	if suddenDeath != nil {
		if err := checkSuddenDeath(suddenDeath, player1ID, player2ID); err != nil {
			return nil, err
		}
	}

	var winner int
	switch {
	case score1 > score2:
		winner = player1ID
	case score2 > score1:
		winner = player2ID
	case suddenDeath != nil:
		return intPtr(suddenDeath.WinnerPlayerID), nil
	default:
		return nil, nil
	}

	if suddenDeath != nil && suddenDeath.WinnerPlayerID != winner {
		return nil, fmt.Errorf("%w: sudden death won by %d but score favours %d", ErrAmbiguousWinner, suddenDeath.WinnerPlayerID, winner)
	}
	return intPtr(winner), nil
}

func checkSuddenDeath(sd *models.SuddenDeathResult, player1ID, player2ID int) error {
	if sd.WinnerPlayerID != player1ID && sd.WinnerPlayerID != player2ID {
		return fmt.Errorf("%w: sudden death winner %d is not a participant", ErrAmbiguousWinner, sd.WinnerPlayerID)
	}
	if sd.Player1Hits < 0 || sd.Player2Hits < 0 || sd.Attempts < 0 {
		return fmt.Errorf("%w: negative sudden death counts", ErrInvalidBoard)
	}
	if sd.Player1Hits == sd.Player2Hits {
		return nil
	}
	byHits := player1ID
	if sd.Player2Hits > sd.Player1Hits {
		byHits = player2ID
	}
	if byHits != sd.WinnerPlayerID {
		return fmt.Errorf("%w: sudden death hits favour %d, winner recorded as %d", ErrAmbiguousWinner, byHits, sd.WinnerPlayerID)
	}
	return nil
}

func intPtr(v int) *int {
	return &v
}
