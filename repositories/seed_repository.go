package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

var (
	ErrSeedConflict      = errors.New("seed number or player listed twice")
	ErrSeedPlayerInvalid = errors.New("seeded player does not exist")
)

type SeedRepository interface {
	ReplaceAll(ctx context.Context, exec SQLExecutor, tournamentID int, entries []models.SeedEntry) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.SeedEntry, error)
}

type postgresSeedRepository struct {
	db *sql.DB
}

func NewPostgresSeedRepository(db *sql.DB) SeedRepository {
	return &postgresSeedRepository{db: db}
}

func (r *postgresSeedRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSeedRepository) ReplaceAll(ctx context.Context, exec SQLExecutor, tournamentID int, entries []models.SeedEntry) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM tournament_seeds WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("failed to clear seeds of tournament %d: %w", tournamentID, err)
	}

	query := `
		INSERT INTO tournament_seeds (tournament_id, player_id, seed, source_type)
		VALUES ($1, $2, $3, $4)`
	for _, e := range entries {
		if _, err := executor.ExecContext(ctx, query, tournamentID, e.PlayerID, e.Seed, e.SourceType); err != nil {
			if _, ok := pqConstraint(err, codeUniqueViolation); ok {
				return fmt.Errorf("%w: player %d seed %d", ErrSeedConflict, e.PlayerID, e.Seed)
			}
			if _, ok := pqConstraint(err, codeForeignKeyViolation); ok {
				return fmt.Errorf("%w: player %d", ErrSeedPlayerInvalid, e.PlayerID)
			}
			return fmt.Errorf("failed to insert seed for player %d: %w", e.PlayerID, err)
		}
	}
	return nil
}

func (r *postgresSeedRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.SeedEntry, error) {
	query := `
		SELECT s.tournament_id, s.player_id, s.seed, s.source_type, u.display_name
		FROM tournament_seeds s
		JOIN users u ON u.id = s.player_id
		WHERE s.tournament_id = $1
		ORDER BY s.seed`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	entries := make([]models.SeedEntry, 0)
	for rows.Next() {
		var e models.SeedEntry
		if err := rows.Scan(&e.TournamentID, &e.PlayerID, &e.Seed, &e.SourceType, &e.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan seed: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
