package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/repositories"
)

type SeedService interface {
	// ReplaceSeeds swaps the whole seeding list of a tournament. Seeds are
	// frozen once groups have been allocated.
	ReplaceSeeds(ctx context.Context, tournamentID int, entries []SeedInput) ([]models.SeedEntry, error)
	ListSeeds(ctx context.Context, tournamentID int) ([]models.SeedEntry, error)
}

type SeedInput struct {
	PlayerID   int               `json:"player_id"`
	Seed       int               `json:"seed"`
	SourceType models.SeedSource `json:"source_type,omitempty"`
}

type seedService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	seedRepo       repositories.SeedRepository
	groupRepo      repositories.GroupRepository
	logger         *slog.Logger
}

func NewSeedService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	seedRepo repositories.SeedRepository,
	groupRepo repositories.GroupRepository,
	logger *slog.Logger,
) SeedService {
	return &seedService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		seedRepo:       seedRepo,
		groupRepo:      groupRepo,
		logger:         logger,
	}
}

func validateSeeds(tournamentID int, input []SeedInput) ([]models.SeedEntry, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("%w: at least one seed entry is required", ErrInvalidInput)
	}
	seenSeed := make(map[int]bool, len(input))
	seenPlayer := make(map[int]bool, len(input))
	entries := make([]models.SeedEntry, len(input))
	for i, in := range input {
		if in.PlayerID <= 0 {
			return nil, fmt.Errorf("%w: entry %d has no player_id", ErrInvalidInput, i+1)
		}
		if in.Seed <= 0 {
			return nil, fmt.Errorf("%w: seed of player %d must be positive", ErrInvalidInput, in.PlayerID)
		}
		if seenSeed[in.Seed] {
			return nil, fmt.Errorf("%w: seed %d", ErrDuplicateSeed, in.Seed)
		}
		if seenPlayer[in.PlayerID] {
			return nil, fmt.Errorf("%w: player %d", ErrDuplicateSeed, in.PlayerID)
		}
		seenSeed[in.Seed] = true
		seenPlayer[in.PlayerID] = true

		source := in.SourceType
		if source == "" {
			source = models.SeedNational
		}
		if !source.Valid() {
			return nil, fmt.Errorf("%w: unknown source_type %q", ErrInvalidInput, source)
		}
		entries[i] = models.SeedEntry{TournamentID: tournamentID, PlayerID: in.PlayerID, Seed: in.Seed, SourceType: source}
	}
	return entries, nil
}

func (s *seedService) ReplaceSeeds(ctx context.Context, tournamentID int, input []SeedInput) ([]models.SeedEntry, error) {
	entries, err := validateSeeds(tournamentID, input)
	if err != nil {
		return nil, err
	}

	var saved []models.SeedEntry
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
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
		groups, err := s.groupRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(groups) > 0 {
			return ErrSeedsLocked
		}
		if err := s.seedRepo.ReplaceAll(ctx, exec, tournamentID, entries); err != nil {
			return err
		}
		saved, err = s.seedRepo.ListByTournament(ctx, exec, tournamentID)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	s.logger.InfoContext(ctx, "seeds replaced", slog.Int("tournament_id", tournamentID), slog.Int("count", len(saved)))
	return saved, nil
}

func (s *seedService) ListSeeds(ctx context.Context, tournamentID int) ([]models.SeedEntry, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, classify(err)
	}
	seeds, err := s.seedRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, classify(err)
	}
	return seeds, nil
}
