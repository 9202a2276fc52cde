package services

import (
	"context"
	"log/slog"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/brackets"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/cache"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/live"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/repositories"
)

type GroupService interface {
	// AllocateGroups distributes the seeded players into groups. groupCount 0
	// uses the tournament's configured number of groups. With rounds already
	// played it fails unless reset is set, which wipes rounds and groups first.
	AllocateGroups(ctx context.Context, tournamentID, groupCount int, method models.GroupMethod, reset bool) ([]*models.Group, error)
	ListGroups(ctx context.Context, tournamentID int) ([]*models.Group, error)
	DeleteGroups(ctx context.Context, tournamentID int, cascade bool) (*models.GroupDeletion, error)
}

type groupService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	seedRepo       repositories.SeedRepository
	groupRepo      repositories.GroupRepository
	roundRepo      repositories.RoundRepository
	cache          cache.StandingsCache
	publisher      live.Publisher
	logger         *slog.Logger
}

func NewGroupService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	seedRepo repositories.SeedRepository,
	groupRepo repositories.GroupRepository,
	roundRepo repositories.RoundRepository,
	standingsCache cache.StandingsCache,
	publisher live.Publisher,
	logger *slog.Logger,
) GroupService {
	return &groupService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		seedRepo:       seedRepo,
		groupRepo:      groupRepo,
		roundRepo:      roundRepo,
		cache:          standingsCache,
		publisher:      publisher,
		logger:         logger,
	}
}

func (s *groupService) AllocateGroups(ctx context.Context, tournamentID, groupCount int, method models.GroupMethod, reset bool) ([]*models.Group, error) {
	if method == "" {
		method = models.GroupInterleaved
	}

	var groups []*models.Group
	var wiped models.GroupDeletion
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := repositories.LockTournament(ctx, exec, tournamentID, false); err != nil {
			return err
		}
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if isClosed(t.Status) {
			return ErrTournamentClosed
		}
		if groupCount == 0 {
			groupCount = t.NumberOfGroups
		}

		seeds, err := s.seedRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(seeds) == 0 {
			return ErrNotEnoughSeeds
		}

		roundCount, err := s.roundRepo.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if roundCount > 0 && !reset {
			return ErrRoundsExist
		}

		groups, err = brackets.AllocateGroups(tournamentID, seeds, groupCount, method)
		if err != nil {
			return err
		}

		if wiped, err = s.wipe(ctx, exec, tournamentID); err != nil {
			return err
		}
		return s.groupRepo.CreateAll(ctx, exec, groups)
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.InfoContext(ctx, "groups allocated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("group_count", len(groups)),
		slog.String("method", string(method)),
		slog.Bool("reset", reset),
		slog.Int("deleted_rounds", wiped.DeletedRounds),
		slog.Int("deleted_matches", wiped.DeletedMatches))
	afterChange(ctx, s.logger, s.cache, s.publisher, tournamentID, live.EventGroupsUpdated, groups)
	return groups, nil
}

// wipe removes rounds, matches and groups of a tournament. Confirmations go
// with their matches.
func (s *groupService) wipe(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (models.GroupDeletion, error) {
	var d models.GroupDeletion
	rounds, matches, err := s.roundRepo.DeleteByTournament(ctx, exec, tournamentID)
	if err != nil {
		return d, err
	}
	groups, members, err := s.groupRepo.DeleteByTournament(ctx, exec, tournamentID)
	if err != nil {
		return d, err
	}
	d.DeletedGroups = groups
	d.DeletedRounds = rounds
	d.DeletedMatches = matches
	d.DeletedRows = groups + members + rounds + matches
	return d, nil
}

func (s *groupService) ListGroups(ctx context.Context, tournamentID int) ([]*models.Group, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, classify(err)
	}
	groups, err := s.groupRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, classify(err)
	}
	return groups, nil
}

func (s *groupService) DeleteGroups(ctx context.Context, tournamentID int, cascade bool) (*models.GroupDeletion, error) {
	var deletion models.GroupDeletion
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := repositories.LockTournament(ctx, exec, tournamentID, false); err != nil {
			return err
		}
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Status == models.StatusCompleted {
			return ErrTournamentClosed
		}
		roundCount, err := s.roundRepo.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if roundCount > 0 && !cascade {
			return ErrRoundsExist
		}
		deletion, err = s.wipe(ctx, exec, tournamentID)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.InfoContext(ctx, "groups deleted",
		slog.Int("tournament_id", tournamentID),
		slog.Int("groups", deletion.DeletedGroups),
		slog.Int("rounds", deletion.DeletedRounds),
		slog.Int("matches", deletion.DeletedMatches))
	afterChange(ctx, s.logger, s.cache, s.publisher, tournamentID, live.EventGroupsUpdated, deletion)
	return &deletion, nil
}
