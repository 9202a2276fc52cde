package services

import (
	"context"
	"log/slog"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/brackets"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/cache"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/live"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/repositories"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/scoring"
)

type RoundService interface {
	// GenerateRound pairs the next round of one group. method overrides the
	// tournament's round one method and is ignored for later rounds.
	GenerateRound(ctx context.Context, tournamentID, groupNumber int, method *models.RoundOneMethod) (*models.Round, error)
	ListRounds(ctx context.Context, tournamentID, groupNumber int) ([]*models.Round, error)
	DeleteCurrentRound(ctx context.Context, tournamentID, groupNumber int) (*models.RoundDeletion, error)
}

type roundService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	groupRepo      repositories.GroupRepository
	roundRepo      repositories.RoundRepository
	matchRepo      repositories.MatchRepository
	generator      brackets.PairingGenerator
	cache          cache.StandingsCache
	publisher      live.Publisher
	logger         *slog.Logger
}

func NewRoundService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	groupRepo repositories.GroupRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	generator brackets.PairingGenerator,
	standingsCache cache.StandingsCache,
	publisher live.Publisher,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		groupRepo:      groupRepo,
		roundRepo:      roundRepo,
		matchRepo:      matchRepo,
		generator:      generator,
		cache:          standingsCache,
		publisher:      publisher,
		logger:         logger,
	}
}

func (s *roundService) GenerateRound(ctx context.Context, tournamentID, groupNumber int, method *models.RoundOneMethod) (*models.Round, error) {
	if groupNumber < 1 {
		return nil, ErrInvalidInput
	}
	if method != nil && !method.Valid() {
		return nil, classify(brackets.ErrUnknownRoundOne)
	}

	var round *models.Round
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// The table pool is shared by every group, so generation holds the
		// tournament lock exclusively. Confirmations only take it shared.
		if err := repositories.LockTournament(ctx, exec, tournamentID, false); err != nil {
			return err
		}
		if err := repositories.LockGroup(ctx, exec, tournamentID, groupNumber); err != nil {
			return err
		}

		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if isClosed(t.Status) {
			return ErrTournamentClosed
		}

		members, err := s.groupRepo.GetMembers(ctx, exec, tournamentID, groupNumber)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return ErrGroupsNotGenerated
		}

		current, err := s.roundRepo.CurrentRoundNumber(ctx, exec, tournamentID, groupNumber)
		if err != nil {
			return err
		}
		if current >= t.SRRRounds {
			return ErrMaxRoundsReached
		}

		history, err := s.matchRepo.ListByTournament(ctx, exec, tournamentID, groupNumber)
		if err != nil {
			return err
		}

		var standings []models.StandingRow
		if current > 0 {
			if !roundComplete(history, current) {
				return ErrRoundNotComplete
			}
			standings = scoring.Calculate(history, groupPlayers(groupNumber, members), t.Scoring,
				models.GroupAfterRoundScope(groupNumber, current))
		}

		busy, err := s.roundRepo.BusyTables(ctx, exec, tournamentID, groupNumber)
		if err != nil {
			return err
		}

		roundOne := t.RoundOneMethod
		if method != nil {
			roundOne = *method
		}
		pairings, err := s.generator.GeneratePairings(ctx, brackets.GeneratePairingsParams{
			GroupNumber:    groupNumber,
			RoundNumber:    current + 1,
			Members:        members,
			History:        history,
			Standings:      standings,
			RoundOneMethod: roundOne,
			TableCount:     t.TableCount,
			BusyTables:     busy,
		})
		if err != nil {
			return err
		}

		round = &models.Round{
			TournamentID: tournamentID,
			GroupNumber:  groupNumber,
			RoundNumber:  current + 1,
			Matches:      make([]*models.Match, len(pairings)),
		}
		for i, p := range pairings {
			round.Matches[i] = &models.Match{
				TournamentID: tournamentID,
				GroupNumber:  groupNumber,
				RoundNumber:  round.RoundNumber,
				TableNumber:  p.TableNumber,
				Player1ID:    p.Player1ID,
				Player2ID:    p.Player2ID,
				Boards:       []models.BoardResult{},
				Status:       models.MatchPending,
			}
		}
		if err := s.roundRepo.Create(ctx, exec, round); err != nil {
			return err
		}

		if t.Status == models.StatusSoon || t.Status == models.StatusRegistration {
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusActive); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.InfoContext(ctx, "round generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("group", groupNumber),
		slog.Int("round", round.RoundNumber),
		slog.Int("matches", len(round.Matches)),
		slog.String("generator", s.generator.GetName()))
	afterChange(ctx, s.logger, s.cache, s.publisher, tournamentID, live.EventRoundGenerated, round)
	return round, nil
}

func (s *roundService) ListRounds(ctx context.Context, tournamentID, groupNumber int) ([]*models.Round, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, classify(err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, groupNumber)
	if err != nil {
		return nil, classify(err)
	}
	return roundsOf(tournamentID, matches), nil
}

func (s *roundService) DeleteCurrentRound(ctx context.Context, tournamentID, groupNumber int) (*models.RoundDeletion, error) {
	if groupNumber < 1 {
		return nil, ErrInvalidInput
	}

	var deletion models.RoundDeletion
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := repositories.LockTournament(ctx, exec, tournamentID, false); err != nil {
			return err
		}
		if err := repositories.LockGroup(ctx, exec, tournamentID, groupNumber); err != nil {
			return err
		}
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if isClosed(t.Status) {
			return ErrTournamentClosed
		}
		current, err := s.roundRepo.CurrentRoundNumber(ctx, exec, tournamentID, groupNumber)
		if err != nil {
			return err
		}
		if current == 0 {
			return ErrNoRounds
		}
		matches, err := s.roundRepo.Delete(ctx, exec, tournamentID, groupNumber, current)
		if err != nil {
			return err
		}
		deletion = models.RoundDeletion{DeletedRoundNumber: current, DeletedMatches: matches}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.InfoContext(ctx, "round deleted",
		slog.Int("tournament_id", tournamentID),
		slog.Int("group", groupNumber),
		slog.Int("round", deletion.DeletedRoundNumber),
		slog.Int("matches", deletion.DeletedMatches))
	afterChange(ctx, s.logger, s.cache, s.publisher, tournamentID, live.EventRoundDeleted, deletion)
	return &deletion, nil
}
