package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"uarchive/internal/repository"
)

// adjustVotesQuery adds a delta to the votes column of one row. SQLite turns an
// overflowing integer sum into a REAL, so the row only matches while the sum stays
// an integer. Arguments are delta, id, delta.
func adjustVotesQuery(table, columns string) string {
	return `
UPDATE ` + table + ` SET votes = votes + ?
WHERE id = ? AND typeof(votes + ?) = 'integer'
RETURNING ` + columns
}

// missedVote tells a missing row apart from a rejected overflow after the guarded
// update matched nothing.
func missedVote(ctx context.Context, db *sql.DB, table, id string, err error) error {
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	var exists bool
	if qerr := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = ?)`, id).Scan(&exists); qerr != nil {
		return fmt.Errorf("check %s row: %w", table, qerr)
	}
	if exists {
		return fmt.Errorf("%s votes: %w", table, repository.ErrOutOfRange)
	}
	return repository.ErrNotFound
}
