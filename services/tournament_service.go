package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/brackets"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/repositories"
)

const defaultListLimit = 50

type TournamentService interface {
	Create(ctx context.Context, creatorID int, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus, limit, offset int) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
}

type CreateTournamentInput struct {
	Name           string                  `json:"name"`
	Venue          *string                 `json:"venue,omitempty"`
	SRRRounds      int                     `json:"srr_rounds"`
	NumberOfGroups int                     `json:"number_of_groups"`
	TableCount     int                     `json:"table_count"`
	RoundOneMethod models.RoundOneMethod   `json:"round_one_method,omitempty"`
	Scoring        *models.ScoringTable    `json:"scoring,omitempty"`
	Status         models.TournamentStatus `json:"status,omitempty"`
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, logger *slog.Logger) TournamentService {
	return &tournamentService{tournamentRepo: tournamentRepo, logger: logger}
}

func (s *tournamentService) Create(ctx context.Context, creatorID int, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.SRRRounds < 1 {
		return nil, fmt.Errorf("%w: srr_rounds must be at least 1", ErrInvalidInput)
	}
	if input.NumberOfGroups == 0 {
		input.NumberOfGroups = brackets.MinGroups
	}
	if input.NumberOfGroups < brackets.MinGroups || input.NumberOfGroups > brackets.MaxGroups {
		return nil, fmt.Errorf("%w: number_of_groups must be between %d and %d", ErrInvalidInput, brackets.MinGroups, brackets.MaxGroups)
	}
	if input.TableCount < 0 {
		return nil, fmt.Errorf("%w: table_count must not be negative", ErrInvalidInput)
	}
	if input.RoundOneMethod == "" {
		input.RoundOneMethod = models.RoundOneAdjacent
	}
	if !input.RoundOneMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown round_one_method %q", ErrInvalidInput, input.RoundOneMethod)
	}
	scoringTable := models.DefaultScoringTable()
	if input.Scoring != nil {
		scoringTable = *input.Scoring
	}
	if err := scoringTable.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Status == "" {
		input.Status = models.StatusSoon
	}
	if input.Status != models.StatusSoon && input.Status != models.StatusRegistration {
		return nil, fmt.Errorf("%w: a new tournament starts as %s or %s", ErrInvalidStatus, models.StatusSoon, models.StatusRegistration)
	}

	t := &models.Tournament{
		Name:           name,
		Venue:          input.Venue,
		SRRRounds:      input.SRRRounds,
		NumberOfGroups: input.NumberOfGroups,
		TableCount:     input.TableCount,
		RoundOneMethod: input.RoundOneMethod,
		Scoring:        scoringTable,
		Status:         input.Status,
		CreatedBy:      creatorID,
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, classify(err)
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.Int("tournament_id", t.ID),
		slog.String("name", t.Name),
		slog.Int("srr_rounds", t.SRRRounds),
		slog.String("venue", derefString(t.Venue)))
	return t, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, classify(err)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, status *models.TournamentStatus, limit, offset int) ([]models.Tournament, error) {
	if status != nil && !isValidStatus(*status) {
		return nil, ErrInvalidStatus
	}
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, classify(err)
	}
	return list, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	if !isValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, classify(err)
	}
	if !isValidStatusTransition(t.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, status)
	}
	if t.Status == status {
		return t, nil
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, classify(err)
	}
	s.logger.InfoContext(ctx, "tournament status changed",
		slog.Int("tournament_id", id),
		slog.String("from", string(t.Status)),
		slog.String("to", string(status)))
	t.Status = status
	return t, nil
}
