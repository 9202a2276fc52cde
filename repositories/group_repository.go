package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

type GroupRepository interface {
	CreateAll(ctx context.Context, exec SQLExecutor, groups []*models.Group) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Group, error)
	GetMembers(ctx context.Context, exec SQLExecutor, tournamentID, groupNumber int) ([]models.SeedEntry, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (groups int, members int, err error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) CreateAll(ctx context.Context, exec SQLExecutor, groups []*models.Group) error {
	executor := r.getExecutor(exec)
	groupQuery := `
		INSERT INTO tournament_groups (tournament_id, group_number, group_count, method)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	memberQuery := `
		INSERT INTO group_members (tournament_id, group_number, player_id, seed)
		VALUES ($1, $2, $3, $4)`

	for _, g := range groups {
		if err := executor.QueryRowContext(ctx, groupQuery, g.TournamentID, g.GroupNumber, g.GroupCount, g.Method).Scan(&g.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert group %d: %w", g.GroupNumber, err)
		}
		for _, m := range g.Members {
			if _, err := executor.ExecContext(ctx, memberQuery, g.TournamentID, g.GroupNumber, m.PlayerID, m.Seed); err != nil {
				return fmt.Errorf("failed to insert member %d of group %d: %w", m.PlayerID, g.GroupNumber, err)
			}
		}
	}
	return nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Group, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `
		SELECT tournament_id, group_number, group_count, method, created_at
		FROM tournament_groups
		WHERE tournament_id = $1
		ORDER BY group_number`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	byNumber := make(map[int]*models.Group)
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.TournamentID, &g.GroupNumber, &g.GroupCount, &g.Method, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		g.Members = []models.SeedEntry{}
		groups = append(groups, g)
		byNumber[g.GroupNumber] = g
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return groups, nil
	}

	members, err := executor.QueryContext(ctx, `
		SELECT gm.group_number, gm.player_id, gm.seed, COALESCE(s.source_type, 'national'), u.display_name
		FROM group_members gm
		JOIN users u ON u.id = gm.player_id
		LEFT JOIN tournament_seeds s ON s.tournament_id = gm.tournament_id AND s.player_id = gm.player_id
		WHERE gm.tournament_id = $1
		ORDER BY gm.group_number, gm.seed`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members of tournament %d: %w", tournamentID, err)
	}
	defer members.Close()

	for members.Next() {
		var groupNumber int
		e := models.SeedEntry{TournamentID: tournamentID}
		if err := members.Scan(&groupNumber, &e.PlayerID, &e.Seed, &e.SourceType, &e.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		if g, ok := byNumber[groupNumber]; ok {
			g.Members = append(g.Members, e)
		}
	}
	return groups, members.Err()
}

func (r *postgresGroupRepository) GetMembers(ctx context.Context, exec SQLExecutor, tournamentID, groupNumber int) ([]models.SeedEntry, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, `
		SELECT gm.player_id, gm.seed, u.display_name
		FROM group_members gm
		JOIN users u ON u.id = gm.player_id
		WHERE gm.tournament_id = $1 AND gm.group_number = $2
		ORDER BY gm.seed`, tournamentID, groupNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of group %d: %w", groupNumber, err)
	}
	defer rows.Close()

	members := make([]models.SeedEntry, 0)
	for rows.Next() {
		e := models.SeedEntry{TournamentID: tournamentID}
		if err := rows.Scan(&e.PlayerID, &e.Seed, &e.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, e)
	}
	return members, rows.Err()
}

// DeleteByTournament removes groups and their members. Rounds must already
// be gone; the foreign keys would otherwise cascade into them.
func (r *postgresGroupRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, int, error) {
	executor := r.getExecutor(exec)
	res, err := executor.ExecContext(ctx, `DELETE FROM group_members WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete group members: %w", err)
	}
	members, err := affectedRows(res)
	if err != nil {
		return 0, 0, err
	}
	res, err = executor.ExecContext(ctx, `DELETE FROM tournament_groups WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete groups: %w", err)
	}
	groups, err := affectedRows(res)
	if err != nil {
		return 0, 0, err
	}
	return groups, members, nil
}
