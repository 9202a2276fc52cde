package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/cache"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/live"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/scoring"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID int
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusSoon:         {models.StatusRegistration, models.StatusActive, models.StatusCanceled},
		models.StatusRegistration: {models.StatusActive, models.StatusCanceled},
		models.StatusActive:       {models.StatusCompleted, models.StatusCanceled},
		models.StatusCompleted:    {},
		models.StatusCanceled:     {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

func isClosed(status models.TournamentStatus) bool {
	return status == models.StatusCompleted || status == models.StatusCanceled
}

func isValidStatus(status models.TournamentStatus) bool {
	switch status {
	case models.StatusSoon, models.StatusRegistration, models.StatusActive, models.StatusCompleted, models.StatusCanceled:
		return true
	}
	return false
}

// playersOf flattens group members into standings entrants.
func playersOf(groups []*models.Group) []scoring.Player {
	players := make([]scoring.Player, 0)
	for _, g := range groups {
		for _, m := range g.Members {
			players = append(players, scoring.Player{ID: m.PlayerID, DisplayName: m.DisplayName, GroupNumber: g.GroupNumber})
		}
	}
	return players
}

func groupPlayers(groupNumber int, members []models.SeedEntry) []scoring.Player {
	players := make([]scoring.Player, len(members))
	for i, m := range members {
		players[i] = scoring.Player{ID: m.PlayerID, DisplayName: m.DisplayName, GroupNumber: groupNumber}
	}
	return players
}

// roundsOf groups matches, already ordered by group, round and table, into rounds.
func roundsOf(tournamentID int, matches []*models.Match) []*models.Round {
	rounds := make([]*models.Round, 0)
	var cur *models.Round
	for _, m := range matches {
		if cur == nil || cur.GroupNumber != m.GroupNumber || cur.RoundNumber != m.RoundNumber {
			cur = &models.Round{
				TournamentID: tournamentID,
				GroupNumber:  m.GroupNumber,
				RoundNumber:  m.RoundNumber,
				Matches:      make([]*models.Match, 0),
				CreatedAt:    m.CreatedAt,
			}
			rounds = append(rounds, cur)
		}
		cur.Matches = append(cur.Matches, m)
	}
	for _, r := range rounds {
		r.Evaluate()
	}
	return rounds
}

// roundComplete reports whether every match of the given round is confirmed.
// A round without matches is not complete.
func roundComplete(matches []*models.Match, roundNumber int) bool {
	found := false
	for _, m := range matches {
		if m.RoundNumber != roundNumber {
			continue
		}
		found = true
		if !m.IsConfirmed() {
			return false
		}
	}
	return found
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// afterChange drops cached standings and notifies live clients. Both run
// after commit; failures are logged, the mutation already succeeded.
func afterChange(ctx context.Context, logger *slog.Logger, c cache.StandingsCache, pub live.Publisher, tournamentID int, eventType string, payload interface{}) {
	if err := c.Invalidate(ctx, tournamentID); err != nil {
		logger.WarnContext(ctx, "failed to invalidate standings cache", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
	if pub != nil {
		pub.Publish(tournamentID, eventType, payload)
	}
}
