package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"uarchive/internal/domain"
	"uarchive/internal/repository"
)

const userColumns = `id, username, email, password_hash, degree, year_of_study, preferences, contribution_count, reputation, joined_at, last_login_at`

const selectUser = `SELECT ` + userColumns + ` FROM users`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.JoinedAt = stamp(account.JoinedAt)
	if account.LastLoginAt.IsZero() {
		account.LastLoginAt = account.JoinedAt
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.Degree,
		nullInt(account.YearOfStudy),
		encodeTags(account.Preferences),
		account.ContributionCount,
		account.Reputation,
		account.JoinedAt,
		account.LastLoginAt.UTC(),
	)
	if err != nil {
		if mapped := mapWriteError("user", err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE username = ?`, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE email = ?`, email))
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return requireAffected(res, "touch last login")
}

func (r *UserRepository) IncrementContributions(ctx context.Context, id string, delta int64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET contribution_count = contribution_count + ? WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("increment contributions: %w", err)
	}
	return requireAffected(res, "increment contributions")
}

// SetPreferences replaces the stored preference list and returns the updated account.
func (r *UserRepository) SetPreferences(ctx context.Context, id string, preferences []string) (*domain.Account, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
UPDATE users SET preferences = ? WHERE id = ?
RETURNING `+userColumns, encodeTags(preferences), id))
}

func scanUser(row scanner) (*domain.Account, error) {
	var (
		account     domain.Account
		yearOfStudy sql.NullInt64
		preferences string
	)
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.Degree,
		&yearOfStudy,
		&preferences,
		&account.ContributionCount,
		&account.Reputation,
		timestamp{&account.JoinedAt},
		timestamp{&account.LastLoginAt},
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	account.YearOfStudy = intPtr(yearOfStudy)
	account.Preferences = decodeTags(preferences)
	return &account, nil
}

func requireAffected(res sql.Result, op string) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}
