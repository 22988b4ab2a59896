package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"uarchive/internal/auth"
	"uarchive/internal/clock"
	"uarchive/internal/domain"
	"uarchive/internal/metrics"
	"uarchive/internal/repository"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username    string `validate:"required,min=3,max=64"`
	Email       string `validate:"required,email,max=254"`
	Password    string `validate:"required,min=8,max=256"`
	Degree      string `validate:"max=128"`
	YearOfStudy *int   `validate:"omitempty,min=1,max=12"`
}

// PreferencesInput is the full preference list an account stores, for example the
// course codes or topics it follows.
type PreferencesInput struct {
	Preferences []string `validate:"max=50,dive,max=64"`
}

// LoginResult is a freshly issued token together with the authenticated account.
type LoginResult struct {
	Token   auth.Token
	Account *domain.Account
}

// UserService describes account lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, login, password string) (*LoginResult, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	SetPreferences(ctx context.Context, id string, in PreferencesInput) (*domain.Account, error)
}

type userService struct {
	users  repository.UserRepository
	hasher auth.Hasher
	tokens *auth.TokenService
	clock  clock.Clock
}

func NewUserService(users repository.UserRepository, hasher auth.Hasher, tokens *auth.TokenService, clk clock.Clock) UserService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &userService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		clock:  clk,
	}
}

// Register creates an account. The lookups before the insert only short-circuit the
// common case; the unique indexes on username and email decide concurrent races.
func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Degree = strings.TrimSpace(in.Degree)

	if err := validateInput(in); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if err := s.ensureFree(ctx, "username", s.users.GetByUsername, in.Username); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, "email", s.users.GetByEmail, in.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	account := &domain.Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Degree:       in.Degree,
		YearOfStudy:  in.YearOfStudy,
		JoinedAt:     now,
		LastLoginAt:  now,
	}

	if err := s.users.Create(ctx, account); err != nil {
		var conflict repository.ConflictError
		if errors.As(err, &conflict) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return nil, DuplicateAccountError{Field: conflict.Field}
		}
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return account.Sanitized(), nil
}

func (s *userService) ensureFree(ctx context.Context, field string, lookup func(context.Context, string) (*domain.Account, error), value string) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return DuplicateAccountError{Field: field}
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

// Login accepts a username or an email address. Unknown accounts and wrong passwords
// produce the same ErrInvalidCredentials.
func (s *userService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrInvalidInput)
	}

	account, err := s.findByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID, account.Username, s.tokens.DefaultTTL())
	if err != nil {
		return nil, err
	}
	metrics.TokensIssuedTotal.Inc()

	now := s.clock.Now()
	if err := s.users.TouchLastLogin(ctx, account.ID, now); err != nil {
		return nil, err
	}
	account.LastLoginAt = now

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &LoginResult{Token: token, Account: account.Sanitized()}, nil
}

func (s *userService) findByLogin(ctx context.Context, login string) (*domain.Account, error) {
	account, err := s.users.GetByUsername(ctx, login)
	if err == nil || !errors.Is(err, repository.ErrNotFound) {
		return account, err
	}
	return s.users.GetByEmail(ctx, strings.ToLower(login))
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("user")
		}
		return nil, err
	}
	return account.Sanitized(), nil
}

// SetPreferences replaces the account's preference list. Entries are trimmed and
// deduplicated case-insensitively; an empty list clears it.
func (s *userService) SetPreferences(ctx context.Context, id string, in PreferencesInput) (*domain.Account, error) {
	in.Preferences = normalizeTags(in.Preferences)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	account, err := s.users.SetPreferences(ctx, id, in.Preferences)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("user")
		}
		return nil, err
	}
	return account.Sanitized(), nil
}
