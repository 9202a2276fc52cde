package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Transactor runs fn inside one transaction. fn's error rolls it back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type sqlTransactor struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewTransactor(db *sql.DB, logger *slog.Logger) Transactor {
	return &sqlTransactor{db: db, logger: logger}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) (txErr error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				t.logger.ErrorContext(ctx, "rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	return fn(tx)
}

// LockGroup serializes mutations of one tournament group until the
// surrounding transaction ends. Different groups never contend.
func LockGroup(ctx context.Context, exec SQLExecutor, tournamentID, groupNumber int) error {
	if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, tournamentID, groupNumber); err != nil {
		return fmt.Errorf("failed to lock group %d of tournament %d: %w", groupNumber, tournamentID, err)
	}
	return nil
}

// LockTournament takes the tournament-wide lock. Match mutations hold it
// shared so confirmations in different groups run in parallel. Round
// generation holds it exclusively because the table pool spans all groups,
// as do seeding, allocation and deletion. It must be taken before any group lock.
func LockTournament(ctx context.Context, exec SQLExecutor, tournamentID int, shared bool) error {
	query := `SELECT pg_advisory_xact_lock($1, 0)`
	if shared {
		query = `SELECT pg_advisory_xact_lock_shared($1, 0)`
	}
	if _, err := exec.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to lock tournament %d: %w", tournamentID, err)
	}
	return nil
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

func affectedRows(result sql.Result) (int, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(n), nil
}

func pqConstraint(err error, code pq.ErrorCode) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == code {
		return pqErr.Constraint, true
	}
	return "", false
}

const (
	codeUniqueViolation     pq.ErrorCode = "23505"
	codeForeignKeyViolation pq.ErrorCode = "23503"
)

// jsonValue encodes v for a JSONB column. Nil pointers become SQL NULL.
func jsonValue(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(raw) == "null" {
		return nil, nil
	}
	return raw, nil
}
