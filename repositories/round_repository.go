package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

var (
	ErrRoundExists   = errors.New("round already exists")
	ErrRoundNotFound = errors.New("round not found")
)

type RoundRepository interface {
	// Create inserts the round and its matches.
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	CurrentRoundNumber(ctx context.Context, exec SQLExecutor, tournamentID, groupNumber int) (int, error)
	CurrentRounds(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int]int, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	// BusyTables lists tables held by unconfirmed matches outside the given group.
	BusyTables(ctx context.Context, exec SQLExecutor, tournamentID, excludeGroup int) (map[int]bool, error)
	Delete(ctx context.Context, exec SQLExecutor, tournamentID, groupNumber, roundNumber int) (deletedMatches int, err error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (rounds int, matches int, err error)
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	err := executor.QueryRowContext(ctx, `
		INSERT INTO rounds (tournament_id, group_number, round_number)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		round.TournamentID, round.GroupNumber, round.RoundNumber,
	).Scan(&round.CreatedAt)
	if err != nil {
		if constraint, ok := pqConstraint(err, codeUniqueViolation); ok && constraint == "rounds_pkey" {
			return fmt.Errorf("%w: group %d round %d", ErrRoundExists, round.GroupNumber, round.RoundNumber)
		}
		return fmt.Errorf("failed to insert round: %w", err)
	}

	query := `
		INSERT INTO matches (tournament_id, group_number, round_number, table_number, player1_id, player2_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	for _, m := range round.Matches {
		err := executor.QueryRowContext(ctx, query,
			m.TournamentID, m.GroupNumber, m.RoundNumber, m.TableNumber, m.Player1ID, m.Player2ID, m.Status,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert match %d-%d: %w", m.Player1ID, m.Player2ID, err)
		}
	}
	return nil
}

func (r *postgresRoundRepository) CurrentRoundNumber(ctx context.Context, exec SQLExecutor, tournamentID, groupNumber int) (int, error) {
	var current int
	err := r.getExecutor(exec).QueryRowContext(ctx, `
		SELECT COALESCE(MAX(round_number), 0)
		FROM rounds
		WHERE tournament_id = $1 AND group_number = $2`, tournamentID, groupNumber).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("failed to get current round of group %d: %w", groupNumber, err)
	}
	return current, nil
}

func (r *postgresRoundRepository) CurrentRounds(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int]int, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, `
		SELECT g.group_number, COALESCE(MAX(r.round_number), 0)
		FROM tournament_groups g
		LEFT JOIN rounds r ON r.tournament_id = g.tournament_id AND r.group_number = g.group_number
		WHERE g.tournament_id = $1
		GROUP BY g.group_number`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current rounds of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	current := make(map[int]int)
	for rows.Next() {
		var group, round int
		if err := rows.Scan(&group, &round); err != nil {
			return nil, fmt.Errorf("failed to scan current round: %w", err)
		}
		current[group] = round
	}
	return current, rows.Err()
}

func (r *postgresRoundRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	var n int
	if err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM rounds WHERE tournament_id = $1`, tournamentID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rounds: %w", err)
	}
	return n, nil
}

func (r *postgresRoundRepository) BusyTables(ctx context.Context, exec SQLExecutor, tournamentID, excludeGroup int) (map[int]bool, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, `
		SELECT DISTINCT table_number
		FROM matches
		WHERE tournament_id = $1 AND group_number <> $2 AND status <> $3`,
		tournamentID, excludeGroup, models.MatchConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to list busy tables: %w", err)
	}
	defer rows.Close()

	busy := make(map[int]bool)
	for rows.Next() {
		var table int
		if err := rows.Scan(&table); err != nil {
			return nil, fmt.Errorf("failed to scan table number: %w", err)
		}
		busy[table] = true
	}
	return busy, rows.Err()
}

// Delete removes one round. Matches and their confirmations go with it.
func (r *postgresRoundRepository) Delete(ctx context.Context, exec SQLExecutor, tournamentID, groupNumber, roundNumber int) (int, error) {
	executor := r.getExecutor(exec)
	res, err := executor.ExecContext(ctx, `
		DELETE FROM matches
		WHERE tournament_id = $1 AND group_number = $2 AND round_number = $3`,
		tournamentID, groupNumber, roundNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches of round %d: %w", roundNumber, err)
	}
	matches, err := affectedRows(res)
	if err != nil {
		return 0, err
	}

	res, err = executor.ExecContext(ctx, `
		DELETE FROM rounds
		WHERE tournament_id = $1 AND group_number = $2 AND round_number = $3`,
		tournamentID, groupNumber, roundNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to delete round %d: %w", roundNumber, err)
	}
	if err := checkAffectedRows(res, ErrRoundNotFound); err != nil {
		return 0, err
	}
	return matches, nil
}

func (r *postgresRoundRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, int, error) {
	executor := r.getExecutor(exec)
	res, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete matches: %w", err)
	}
	matches, err := affectedRows(res)
	if err != nil {
		return 0, 0, err
	}
	res, err = executor.ExecContext(ctx, `DELETE FROM rounds WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete rounds: %w", err)
	}
	rounds, err := affectedRows(res)
	if err != nil {
		return 0, 0, err
	}
	return rounds, matches, nil
}
