package repository

import (
	"context"
	"time"

	"uarchive/internal/domain"
)

// UserRepository defines persistence operations for Account entities.
type UserRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	IncrementContributions(ctx context.Context, id string, delta int64) error
	SetPreferences(ctx context.Context, id string, preferences []string) (*domain.Account, error)
}
