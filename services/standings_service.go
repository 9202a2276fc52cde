package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/cache"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/repositories"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/scoring"
)

type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID int, scope models.StandingsScope) ([]models.StandingRow, error)
	RoundPoints(ctx context.Context, tournamentID int) ([]models.RoundPoints, error)
	StandingsByRound(ctx context.Context, tournamentID int) ([]models.RoundStandings, error)
	LiveSnapshot(ctx context.Context, tournamentID int) (*models.LiveSnapshot, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	groupRepo      repositories.GroupRepository
	roundRepo      repositories.RoundRepository
	matchRepo      repositories.MatchRepository
	cache          cache.StandingsCache
	group          singleflight.Group
	logger         *slog.Logger
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	groupRepo repositories.GroupRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	standingsCache cache.StandingsCache,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		tournamentRepo: tournamentRepo,
		groupRepo:      groupRepo,
		roundRepo:      roundRepo,
		matchRepo:      matchRepo,
		cache:          standingsCache,
		logger:         logger,
	}
}

// tournamentData is everything standings are derived from.
type tournamentData struct {
	tournament *models.Tournament
	groups     []*models.Group
	matches    []*models.Match
	current    map[int]int
}

// load reads the tournament's data in parallel. Reads are not transactional;
// a confirmed match is written in one statement so it is seen whole or not at all.
func (s *standingsService) load(ctx context.Context, tournamentID int, withRounds bool) (*tournamentData, error) {
	var data tournamentData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gctx, nil, tournamentID)
		data.tournament = t
		return err
	})
	g.Go(func() error {
		groups, err := s.groupRepo.ListByTournament(gctx, nil, tournamentID)
		data.groups = groups
		return err
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gctx, nil, tournamentID, 0)
		data.matches = matches
		return err
	})
	if withRounds {
		g.Go(func() error {
			current, err := s.roundRepo.CurrentRounds(gctx, nil, tournamentID)
			data.current = current
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID int, scope models.StandingsScope) ([]models.StandingRow, error) {
	if scope.Round < 0 {
		return nil, ErrInvalidRoundNumber
	}
	if scope.Group < 0 {
		return nil, fmt.Errorf("%w: group must not be negative", ErrInvalidInput)
	}

	key := "standings:" + scope.String()
	cacheable := true
	version, err := s.cache.Version(ctx, tournamentID)
	if err != nil {
		cacheable = false
		s.logger.WarnContext(ctx, "standings cache version read failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
	if cacheable {
		var rows []models.StandingRow
		hit, err := s.cache.Get(ctx, tournamentID, version, key, &rows)
		if err != nil {
			s.logger.WarnContext(ctx, "standings cache read failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		}
		if hit {
			return rows, nil
		}
	}

	// The version is part of the flight key so a caller that arrives after an
	// invalidation never joins a load that started before it.
	flight := fmt.Sprintf("%d:v%d:%s", tournamentID, version, key)
	if !cacheable {
		flight = fmt.Sprintf("%d:nocache:%s", tournamentID, key)
	}
	v, err, shared := s.group.Do(flight, func() (interface{}, error) {
		data, err := s.load(ctx, tournamentID, false)
		if err != nil {
			return nil, err
		}
		if scope.Round > data.tournament.SRRRounds {
			return nil, fmt.Errorf("%w: round %d of %d", ErrInvalidRoundNumber, scope.Round, data.tournament.SRRRounds)
		}
		rows := scoring.Calculate(data.matches, playersOf(data.groups), data.tournament.Scoring, scope)
		if cacheable {
			if err := s.cache.Set(ctx, tournamentID, version, key, rows); err != nil {
				s.logger.WarnContext(ctx, "standings cache write failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
			}
		}
		return rows, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if shared {
		s.logger.DebugContext(ctx, "standings request collapsed", slog.Int("tournament_id", tournamentID), slog.String("scope", scope.String()))
	}
	return v.([]models.StandingRow), nil
}

func (s *standingsService) RoundPoints(ctx context.Context, tournamentID int) ([]models.RoundPoints, error) {
	data, err := s.load(ctx, tournamentID, false)
	if err != nil {
		return nil, classify(err)
	}
	points := scoring.PointsByRound(data.matches, data.tournament.Scoring)

	names := make(map[int]string)
	for _, p := range playersOf(data.groups) {
		names[p.ID] = p.DisplayName
	}
	for _, rp := range points {
		for i := range rp.Points {
			rp.Points[i].DisplayName = names[rp.Points[i].PlayerID]
		}
	}
	return points, nil
}

func (s *standingsService) StandingsByRound(ctx context.Context, tournamentID int) ([]models.RoundStandings, error) {
	data, err := s.load(ctx, tournamentID, false)
	if err != nil {
		return nil, classify(err)
	}
	maxRound := 0
	for _, m := range data.matches {
		if m.RoundNumber > maxRound {
			maxRound = m.RoundNumber
		}
	}

	players := playersOf(data.groups)
	result := make([]models.RoundStandings, 0, maxRound)
	for r := 1; r <= maxRound; r++ {
		result = append(result, models.RoundStandings{
			RoundNumber: r,
			IsComplete:  roundComplete(data.matches, r),
			Standings:   scoring.Calculate(data.matches, players, data.tournament.Scoring, models.AfterRoundScope(r)),
		})
	}
	return result, nil
}

func (s *standingsService) LiveSnapshot(ctx context.Context, tournamentID int) (*models.LiveSnapshot, error) {
	data, err := s.load(ctx, tournamentID, true)
	if err != nil {
		return nil, classify(err)
	}
	return &models.LiveSnapshot{
		TournamentID:  tournamentID,
		GeneratedAt:   time.Now().UTC(),
		Status:        data.tournament.Status,
		CurrentRounds: data.current,
		Rounds:        roundsOf(tournamentID, data.matches),
		Standings:     scoring.Calculate(data.matches, playersOf(data.groups), data.tournament.Scoring, models.LiveScope()),
	}, nil
}
