package services

import (
	"errors"
	"fmt"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/brackets"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/repositories"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/scoring"
)

// Error kinds. Every service error wraps exactly one of them, handlers map
// the kind to a status code.
var (
	ErrValidation    = errors.New("validation error")
	ErrPrecondition  = errors.New("precondition failed")
	ErrConflict      = errors.New("conflict")
	ErrAuthorization = errors.New("authorization error")
	ErrState         = errors.New("state error")
	ErrNotFound      = errors.New("requested resource not found")
)

var (
	// Validation
	ErrInvalidInput        = fmt.Errorf("%w: invalid input", ErrValidation)
	ErrBoardScoreMismatch  = fmt.Errorf("%w: board totals do not match the submitted score", ErrValidation)
	ErrInvalidRoundNumber  = fmt.Errorf("%w: round number out of range", ErrValidation)
	ErrPasswordTooShort    = fmt.Errorf("%w: password is too short", ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: invalid tournament status", ErrValidation)
	ErrInvalidTransition   = fmt.Errorf("%w: invalid tournament status transition", ErrValidation)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid email or password", ErrAuthorization)
	ErrOverrideReasonEmpty = fmt.Errorf("%w: override reason is required", ErrValidation)

	// Preconditions
	ErrGroupsNotGenerated = fmt.Errorf("%w: groups have not been generated", ErrPrecondition)
	ErrRoundsExist        = fmt.Errorf("%w: rounds already exist for this tournament", ErrPrecondition)
	ErrRoundNotComplete   = fmt.Errorf("%w: previous round is not complete", ErrPrecondition)
	ErrMaxRoundsReached   = fmt.Errorf("%w: all SRR rounds have been generated", ErrPrecondition)
	ErrNoRounds           = fmt.Errorf("%w: group has no rounds", ErrPrecondition)
	ErrNotEnoughSeeds     = fmt.Errorf("%w: tournament has no seeded players", ErrPrecondition)
	ErrTournamentClosed   = fmt.Errorf("%w: tournament is completed or canceled", ErrPrecondition)

	// Conflicts
	ErrConcurrentGeneration = fmt.Errorf("%w: round was generated concurrently", ErrConflict)
	ErrSeedsLocked          = fmt.Errorf("%w: seeds cannot change once groups exist", ErrConflict)
	ErrEmailConflict        = fmt.Errorf("%w: email address is already in use", ErrConflict)
	ErrHandleConflict       = fmt.Errorf("%w: handle is already in use", ErrConflict)
	ErrDuplicateSeed        = fmt.Errorf("%w: seed or player listed twice", ErrConflict)

	// Authorization
	ErrNotMatchParticipant = fmt.Errorf("%w: only the two players of a match may confirm it", ErrAuthorization)
	ErrForbiddenOperation  = fmt.Errorf("%w: operation not allowed for the current user", ErrAuthorization)

	// State
	ErrMatchAlreadyConfirmed = fmt.Errorf("%w: match is already confirmed", ErrState)
	ErrRoundNotCurrent       = fmt.Errorf("%w: match does not belong to the current round", ErrState)
	ErrMatchNotConfirmed     = fmt.Errorf("%w: match is not confirmed", ErrState)

	// Not found
	ErrTournamentNotFound = fmt.Errorf("%w: tournament not found", ErrNotFound)
	ErrMatchNotFound      = fmt.Errorf("%w: match not found", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrSnapshotNotFound   = fmt.Errorf("%w: snapshot not found", ErrNotFound)
)

// classify attaches a kind to errors raised below the service layer so that
// every error leaving a service can be mapped by kind.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrPrecondition), errors.Is(err, ErrConflict),
		errors.Is(err, ErrAuthorization), errors.Is(err, ErrState), errors.Is(err, ErrNotFound):
		return err

	case errors.Is(err, brackets.ErrInvalidGroupCount),
		errors.Is(err, brackets.ErrUnknownGroupMethod),
		errors.Is(err, brackets.ErrUnknownRoundOne),
		errors.Is(err, brackets.ErrOddGroupSize),
		errors.Is(err, brackets.ErrNotEnoughTables),
		errors.Is(err, scoring.ErrInvalidBoard):
		return fmt.Errorf("%w: %w", ErrValidation, err)

	case errors.Is(err, brackets.ErrNoValidPairingExists):
		return fmt.Errorf("%w: %w", ErrConflict, err)

	case errors.Is(err, scoring.ErrIncompleteBoardSequence),
		errors.Is(err, scoring.ErrAmbiguousWinner):
		return fmt.Errorf("%w: %w", ErrState, err)

	case errors.Is(err, repositories.ErrTournamentNotFound):
		return fmt.Errorf("%w: %w", ErrTournamentNotFound, err)
	case errors.Is(err, repositories.ErrMatchNotFound):
		return fmt.Errorf("%w: %w", ErrMatchNotFound, err)
	case errors.Is(err, repositories.ErrUserNotFound):
		return fmt.Errorf("%w: %w", ErrUserNotFound, err)
	case errors.Is(err, repositories.ErrRoundExists):
		return fmt.Errorf("%w: %w", ErrConcurrentGeneration, err)
	case errors.Is(err, repositories.ErrSeedConflict):
		return fmt.Errorf("%w: %w", ErrDuplicateSeed, err)
	case errors.Is(err, repositories.ErrRoundNotFound):
		return fmt.Errorf("%w: %w", ErrNoRounds, err)
	case errors.Is(err, repositories.ErrSeedPlayerInvalid),
		errors.Is(err, repositories.ErrTournamentInvalidOwner),
		errors.Is(err, repositories.ErrMatchParticipantInvalid):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, repositories.ErrUserEmailConflict):
		return fmt.Errorf("%w: %w", ErrEmailConflict, err)
	case errors.Is(err, repositories.ErrUserHandleConflict):
		return fmt.Errorf("%w: %w", ErrHandleConflict, err)
	}
	return err
}
