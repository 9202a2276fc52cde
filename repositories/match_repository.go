package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchParticipantInvalid = errors.New("match participant conflict or invalid")
)

type MatchRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int, forUpdate bool) (*models.Match, error)
	// ListByTournament returns matches ordered by group, round and table.
	// groupNumber 0 lists every group.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID, groupNumber int) ([]*models.Match, error)
	// UpdateResult writes status, boards and every confirmed field in one statement.
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error

	UpsertConfirmation(ctx context.Context, exec SQLExecutor, c *models.Confirmation) error
	ListConfirmations(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Confirmation, error)
	DeleteConfirmations(ctx context.Context, exec SQLExecutor, matchID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, group_number, round_number, table_number, player1_id, player2_id,
	toss, boards, sudden_death, confirmed_score1, confirmed_score2, confirmed_at, winner_player_id,
	status, overridden_by, override_reason, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	var toss, boards, suddenDeath []byte
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.GroupNumber, &m.RoundNumber, &m.TableNumber, &m.Player1ID, &m.Player2ID,
		&toss, &boards, &suddenDeath, &m.ConfirmedScore1, &m.ConfirmedScore2, &m.ConfirmedAt, &m.WinnerPlayerID,
		&m.Status, &m.OverriddenBy, &m.OverrideReason, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(toss) > 0 {
		m.Toss = &models.TossState{}
		if err := json.Unmarshal(toss, m.Toss); err != nil {
			return nil, fmt.Errorf("failed to decode toss of match %d: %w", m.ID, err)
		}
	}
	m.Boards = []models.BoardResult{}
	if len(boards) > 0 {
		if err := json.Unmarshal(boards, &m.Boards); err != nil {
			return nil, fmt.Errorf("failed to decode boards of match %d: %w", m.ID, err)
		}
	}
	if len(suddenDeath) > 0 {
		m.SuddenDeath = &models.SuddenDeathResult{}
		if err := json.Unmarshal(suddenDeath, m.SuddenDeath); err != nil {
			return nil, fmt.Errorf("failed to decode sudden death of match %d: %w", m.ID, err)
		}
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int, forUpdate bool) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID, groupNumber int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if groupNumber > 0 {
		query += ` AND group_number = $2`
		args = append(args, groupNumber)
	}
	query += ` ORDER BY group_number, round_number, table_number, id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	toss, err := jsonValue(m.Toss)
	if err != nil {
		return fmt.Errorf("failed to encode toss: %w", err)
	}
	boards := m.Boards
	if boards == nil {
		boards = []models.BoardResult{}
	}
	boardsJSON, err := json.Marshal(boards)
	if err != nil {
		return fmt.Errorf("failed to encode boards: %w", err)
	}
	suddenDeath, err := jsonValue(m.SuddenDeath)
	if err != nil {
		return fmt.Errorf("failed to encode sudden death: %w", err)
	}

	query := `
		UPDATE matches SET
			toss = $1,
			boards = $2,
			sudden_death = $3,
			confirmed_score1 = $4,
			confirmed_score2 = $5,
			confirmed_at = $6,
			winner_player_id = $7,
			status = $8,
			overridden_by = $9,
			override_reason = $10
		WHERE id = $11`
	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		toss, boardsJSON, suddenDeath,
		m.ConfirmedScore1, m.ConfirmedScore2, m.ConfirmedAt, m.WinnerPlayerID,
		m.Status, m.OverriddenBy, m.OverrideReason,
		m.ID,
	)
	if err != nil {
		if _, ok := pqConstraint(err, codeForeignKeyViolation); ok {
			return ErrMatchParticipantInvalid
		}
		return fmt.Errorf("failed to update match %d: %w", m.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// UpsertConfirmation replaces the player's own confirmation slot, detail included.
func (r *postgresMatchRepository) UpsertConfirmation(ctx context.Context, exec SQLExecutor, c *models.Confirmation) error {
	toss, err := jsonValue(c.Toss)
	if err != nil {
		return fmt.Errorf("failed to encode toss: %w", err)
	}
	boards, err := jsonValue(c.Boards)
	if err != nil {
		return fmt.Errorf("failed to encode boards: %w", err)
	}
	suddenDeath, err := jsonValue(c.SuddenDeath)
	if err != nil {
		return fmt.Errorf("failed to encode sudden death: %w", err)
	}

	query := `
		INSERT INTO match_confirmations (match_id, player_id, score1, score2, winner_player_id, toss, boards, sudden_death)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (match_id, player_id)
		DO UPDATE SET
			score1 = EXCLUDED.score1,
			score2 = EXCLUDED.score2,
			winner_player_id = EXCLUDED.winner_player_id,
			toss = EXCLUDED.toss,
			boards = EXCLUDED.boards,
			sudden_death = EXCLUDED.sudden_death,
			submitted_at = NOW()
		RETURNING submitted_at`
	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		c.MatchID, c.SubmittingPlayerID, c.Score1, c.Score2, c.WinnerPlayerID, toss, boards, suddenDeath,
	).Scan(&c.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert confirmation of match %d: %w", c.MatchID, err)
	}
	return nil
}

func (r *postgresMatchRepository) ListConfirmations(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Confirmation, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, `
		SELECT match_id, player_id, score1, score2, winner_player_id, toss, boards, sudden_death, submitted_at
		FROM match_confirmations
		WHERE match_id = $1
		ORDER BY submitted_at, player_id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmations of match %d: %w", matchID, err)
	}
	defer rows.Close()

	confs := make([]models.Confirmation, 0, 2)
	for rows.Next() {
		var c models.Confirmation
		var toss, boards, suddenDeath []byte
		if err := rows.Scan(&c.MatchID, &c.SubmittingPlayerID, &c.Score1, &c.Score2, &c.WinnerPlayerID,
			&toss, &boards, &suddenDeath, &c.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan confirmation: %w", err)
		}
		if len(toss) > 0 {
			c.Toss = &models.TossState{}
			if err := json.Unmarshal(toss, c.Toss); err != nil {
				return nil, fmt.Errorf("failed to decode toss of confirmation: %w", err)
			}
		}
		if len(boards) > 0 {
			if err := json.Unmarshal(boards, &c.Boards); err != nil {
				return nil, fmt.Errorf("failed to decode boards of confirmation: %w", err)
			}
		}
		if len(suddenDeath) > 0 {
			c.SuddenDeath = &models.SuddenDeathResult{}
			if err := json.Unmarshal(suddenDeath, c.SuddenDeath); err != nil {
				return nil, fmt.Errorf("failed to decode sudden death of confirmation: %w", err)
			}
		}
		confs = append(confs, c)
	}
	return confs, rows.Err()
}

func (r *postgresMatchRepository) DeleteConfirmations(ctx context.Context, exec SQLExecutor, matchID int) (int, error) {
	res, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM match_confirmations WHERE match_id = $1`, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete confirmations of match %d: %w", matchID, err)
	}
	return affectedRows(res)
}
