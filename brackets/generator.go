package brackets

import (
	"context"
	"errors"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
)

var (
	ErrInvalidGroupCount    = errors.New("group count must be between 2 and 64 and not exceed the number of players")
	ErrUnknownGroupMethod   = errors.New("unknown group allocation method")
	ErrUnknownRoundOne      = errors.New("unknown round one pairing method")
	ErrOddGroupSize         = errors.New("group has an odd number of members")
	ErrNoValidPairingExists = errors.New("no pairing avoids a rematch")
	ErrNotEnoughTables      = errors.New("not enough free tables for the round")
)

// GeneratePairingsParams carries everything a generator needs for one group.
type GeneratePairingsParams struct {
	GroupNumber int
	RoundNumber int

	// Members in seed order.
	Members []models.SeedEntry

	// All matches generated for the group so far.
	History []*models.Match

	// Group standings after the previous round. Unused for round 1.
	Standings []models.StandingRow

	RoundOneMethod models.RoundOneMethod

	TableCount int
	BusyTables map[int]bool
}

// Pairing is one generated match before it is persisted.
type Pairing struct {
	Player1ID   int
	Player2ID   int
	TableNumber int
}

type PairingGenerator interface {
	GeneratePairings(ctx context.Context, params GeneratePairingsParams) ([]Pairing, error)

	GetName() string
}
