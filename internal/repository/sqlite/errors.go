package sqlite

import (
	"errors"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"uarchive/internal/repository"
)

// mapWriteError converts driver constraint failures into repository errors. It
// returns nil for anything else so callers can wrap the original error.
func mapWriteError(entity string, err error) error {
	var se *moderncsqlite.Error
	if !errors.As(err, &se) {
		return nil
	}

	code := se.Code()
	msg := se.Error()
	switch {
	case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(msg, "UNIQUE"):
		return repository.ConflictError{Entity: entity, Field: constraintColumn(msg)}
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
		code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(msg, "FOREIGN KEY"):
		return repository.ErrNotFound
	}
	return nil
}

// constraintColumn extracts "email" from
// "constraint failed: UNIQUE constraint failed: users.email (2067)".
func constraintColumn(msg string) string {
	idx := strings.LastIndex(msg, "constraint failed: ")
	if idx < 0 {
		return ""
	}
	rest := msg[idx+len("constraint failed: "):]
	rest, _, _ = strings.Cut(rest, " ")
	rest, _, _ = strings.Cut(rest, ",")
	if _, col, ok := strings.Cut(rest, "."); ok {
		return col
	}
	return rest
}
