package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/cache"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/live"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/repositories"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/scoring"
)

type MatchService interface {
	// SubmitConfirmation records the caller's claimed result. Two equal
	// claims confirm the match, two different ones leave it disputed.
	SubmitConfirmation(ctx context.Context, matchID, playerID int, input ResultInput) (*models.Match, error)
	OverrideConfirmation(ctx context.Context, matchID int, actor Actor, input OverrideInput) (*models.Match, error)
	ReopenMatch(ctx context.Context, matchID int, actor Actor) (*models.Match, error)
	GetMatch(ctx context.Context, matchID, viewerID int) (*models.Match, error)
}

// ResultInput is a claimed match result. Boards and sudden death are optional;
// when boards are given their totals must equal the score.
type ResultInput struct {
	Score1      int                       `json:"score1"`
	Score2      int                       `json:"score2"`
	Toss        *models.TossState         `json:"toss,omitempty"`
	Boards      []models.BoardResult      `json:"boards,omitempty"`
	SuddenDeath *models.SuddenDeathResult `json:"sudden_death,omitempty"`
}

type OverrideInput struct {
	ResultInput
	Reason string `json:"reason"`
}

type matchService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	matchRepo      repositories.MatchRepository
	cache          cache.StandingsCache
	publisher      live.Publisher
	logger         *slog.Logger
	now            func() time.Time
}

func NewMatchService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	standingsCache cache.StandingsCache,
	publisher live.Publisher,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		matchRepo:      matchRepo,
		cache:          standingsCache,
		publisher:      publisher,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// checkResult validates a claimed result against the match and returns the
// winner it implies.
func checkResult(m *models.Match, in ResultInput) (*int, error) {
	if in.Score1 < 0 || in.Score2 < 0 {
		return nil, fmt.Errorf("%w: scores must not be negative", ErrInvalidInput)
	}
	if in.Toss != nil && !m.IsParticipant(in.Toss.WinnerPlayerID) {
		return nil, fmt.Errorf("%w: toss winner %d did not play this match", ErrInvalidInput, in.Toss.WinnerPlayerID)
	}
	if len(in.Boards) == 0 {
		return scoring.ResolveWinner(in.Score1, in.Score2, in.SuddenDeath, m.Player1ID, m.Player2ID)
	}
	res, err := scoring.Aggregate(in.Boards, in.SuddenDeath, m.Player1ID, m.Player2ID)
	if err != nil {
		return nil, err
	}
	if res.Score1 != in.Score1 || res.Score2 != in.Score2 {
		return nil, fmt.Errorf("%w: boards total %d-%d, submitted %d-%d", ErrBoardScoreMismatch, res.Score1, res.Score2, in.Score1, in.Score2)
	}
	return res.WinnerPlayerID, nil
}

// applyDetails stores the optional board detail of a settled result on the match.
func applyDetails(m *models.Match, toss *models.TossState, boards []models.BoardResult, sd *models.SuddenDeathResult) {
	if toss != nil {
		m.Toss = toss
	}
	if len(boards) > 0 {
		m.Boards = boards
	}
	m.SuddenDeath = sd
}

// lockMatch locks the match's group, then the match row. The group of a
// match never changes, so reading it before taking the lock is safe.
func (s *matchService) lockMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.Match, error) {
	peek, err := s.matchRepo.GetByID(ctx, exec, matchID, false)
	if err != nil {
		return nil, err
	}
	if err := repositories.LockTournament(ctx, exec, peek.TournamentID, true); err != nil {
		return nil, err
	}
	if err := repositories.LockGroup(ctx, exec, peek.TournamentID, peek.GroupNumber); err != nil {
		return nil, err
	}
	return s.matchRepo.GetByID(ctx, exec, matchID, true)
}

func (s *matchService) requireCurrentRound(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	current, err := s.roundRepo.CurrentRoundNumber(ctx, exec, m.TournamentID, m.GroupNumber)
	if err != nil {
		return err
	}
	if m.RoundNumber != current {
		return fmt.Errorf("%w: match is in round %d, current round is %d", ErrRoundNotCurrent, m.RoundNumber, current)
	}
	return nil
}

func (s *matchService) SubmitConfirmation(ctx context.Context, matchID, playerID int, input ResultInput) (*models.Match, error) {
	var match *models.Match
	var completed bool
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.lockMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if m.Status == models.MatchConfirmed {
			return ErrMatchAlreadyConfirmed
		}
		if !m.IsParticipant(playerID) {
			return ErrNotMatchParticipant
		}
		t, err := s.tournamentRepo.GetByID(ctx, exec, m.TournamentID)
		if err != nil {
			return err
		}
		if isClosed(t.Status) {
			return ErrTournamentClosed
		}
		if err := s.requireCurrentRound(ctx, exec, m); err != nil {
			return err
		}
		winner, err := checkResult(m, input)
		if err != nil {
			return err
		}

		mine := &models.Confirmation{
			MatchID:            m.ID,
			SubmittingPlayerID: playerID,
			Score1:             input.Score1,
			Score2:             input.Score2,
			WinnerPlayerID:     winner,
			Toss:               input.Toss,
			Boards:             input.Boards,
			SuddenDeath:        input.SuddenDeath,
		}
		if err := s.matchRepo.UpsertConfirmation(ctx, exec, mine); err != nil {
			return err
		}
		confs, err := s.matchRepo.ListConfirmations(ctx, exec, m.ID)
		if err != nil {
			return err
		}

		status, agreed := models.ResolveConfirmations(confs)
		m.Status = status
		if status == models.MatchConfirmed {
			confirmedAt := s.now()
			applyDetails(m, agreed.Toss, agreed.Boards, agreed.SuddenDeath)
			m.ConfirmedScore1 = &agreed.Score1
			m.ConfirmedScore2 = &agreed.Score2
			m.ConfirmedAt = &confirmedAt
			m.WinnerPlayerID = agreed.WinnerPlayerID
		}
		if err := s.matchRepo.UpdateResult(ctx, exec, m); err != nil {
			return err
		}

		m.Confirmations = len(confs)
		m.MyConfirmation = mine
		match = m
		if status == models.MatchConfirmed {
			completed, err = s.completeIfFinished(ctx, exec, t)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.InfoContext(ctx, "confirmation submitted",
		slog.Int("match_id", matchID),
		slog.Int("player_id", playerID),
		slog.String("status", string(match.Status)))
	s.notify(ctx, match, completed)
	return match, nil
}

func (s *matchService) OverrideConfirmation(ctx context.Context, matchID int, actor Actor, input OverrideInput) (*models.Match, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, ErrOverrideReasonEmpty
	}

	var match *models.Match
	var completed bool
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.lockMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if m.Status == models.MatchConfirmed {
			return ErrMatchAlreadyConfirmed
		}
		t, err := s.tournamentRepo.GetByID(ctx, exec, m.TournamentID)
		if err != nil {
			return err
		}
		if isClosed(t.Status) {
			return ErrTournamentClosed
		}
		winner, err := checkResult(m, input.ResultInput)
		if err != nil {
			return err
		}
		applyDetails(m, input.Toss, input.Boards, input.SuddenDeath)

		confirmedAt := s.now()
		score1, score2 := input.Score1, input.Score2
		m.Status = models.MatchConfirmed
		m.ConfirmedScore1 = &score1
		m.ConfirmedScore2 = &score2
		m.ConfirmedAt = &confirmedAt
		m.WinnerPlayerID = winner
		m.OverriddenBy = &actor.UserID
		m.OverrideReason = &reason
		if err := s.matchRepo.UpdateResult(ctx, exec, m); err != nil {
			return err
		}

		confs, err := s.matchRepo.ListConfirmations(ctx, exec, m.ID)
		if err != nil {
			return err
		}
		m.Confirmations = len(confs)
		match = m
		completed, err = s.completeIfFinished(ctx, exec, t)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.InfoContext(ctx, "confirmation overridden",
		slog.Int("match_id", matchID),
		slog.Int("admin_id", actor.UserID),
		slog.String("reason", reason))
	s.notify(ctx, match, completed)
	return match, nil
}

func (s *matchService) ReopenMatch(ctx context.Context, matchID int, actor Actor) (*models.Match, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	var match *models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.lockMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}
		t, err := s.tournamentRepo.GetByID(ctx, exec, m.TournamentID)
		if err != nil {
			return err
		}
		if t.Status == models.StatusCanceled {
			return ErrTournamentClosed
		}
		if err := s.requireCurrentRound(ctx, exec, m); err != nil {
			return err
		}
		if _, err := s.matchRepo.DeleteConfirmations(ctx, exec, m.ID); err != nil {
			return err
		}

		m.Status = models.MatchPending
		m.Boards = []models.BoardResult{}
		m.SuddenDeath = nil
		m.ConfirmedScore1 = nil
		m.ConfirmedScore2 = nil
		m.ConfirmedAt = nil
		m.WinnerPlayerID = nil
		m.OverriddenBy = nil
		m.OverrideReason = nil
		if err := s.matchRepo.UpdateResult(ctx, exec, m); err != nil {
			return err
		}
		if t.Status == models.StatusCompleted {
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, t.ID, models.StatusActive); err != nil {
				return err
			}
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.InfoContext(ctx, "match reopened", slog.Int("match_id", matchID), slog.Int("admin_id", actor.UserID))
	s.notify(ctx, match, false)
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, matchID, viewerID int) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, matchID, false)
	if err != nil {
		return nil, classify(err)
	}
	confs, err := s.matchRepo.ListConfirmations(ctx, nil, matchID)
	if err != nil {
		return nil, classify(err)
	}
	m.Confirmations = len(confs)
	for i := range confs {
		if confs[i].SubmittingPlayerID == viewerID {
			m.MyConfirmation = &confs[i]
			break
		}
	}
	return m, nil
}

// completeIfFinished marks the tournament completed once every group has
// played all of its rounds and every match is confirmed.
func (s *matchService) completeIfFinished(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) (bool, error) {
	if t.Status != models.StatusActive {
		return false, nil
	}
	current, err := s.roundRepo.CurrentRounds(ctx, exec, t.ID)
	if err != nil {
		return false, err
	}
	if len(current) == 0 {
		return false, nil
	}
	for _, r := range current {
		if r < t.SRRRounds {
			return false, nil
		}
	}
	matches, err := s.matchRepo.ListByTournament(ctx, exec, t.ID, 0)
	if err != nil {
		return false, err
	}
	for _, m := range matches {
		if !m.IsConfirmed() {
			return false, nil
		}
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, exec, t.ID, models.StatusCompleted); err != nil {
		return false, err
	}
	return true, nil
}

func (s *matchService) notify(ctx context.Context, m *models.Match, completed bool) {
	afterChange(ctx, s.logger, s.cache, s.publisher, m.TournamentID, live.EventMatchUpdated, m)
	if m.Status == models.MatchConfirmed && s.publisher != nil {
		s.publisher.Publish(m.TournamentID, live.EventStandingsUpdated, map[string]interface{}{
			"match_id":  m.ID,
			"completed": completed,
		})
	}
	if completed {
		s.logger.InfoContext(ctx, "tournament completed", slog.Int("tournament_id", m.TournamentID))
	}
}
