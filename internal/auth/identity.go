package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"uarchive/internal/domain"
	"uarchive/internal/repository"
)

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (Claims, error)
}

// AccountFinder loads the account a token was issued for.
type AccountFinder interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

// IdentityResolver turns an Authorization header value into the authenticated account.
type IdentityResolver struct {
	tokens   TokenVerifier
	accounts AccountFinder
}

func NewIdentityResolver(tokens TokenVerifier, accounts AccountFinder) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, accounts: accounts}
}

// Resolve parses "Bearer <token>", verifies the token and loads its subject. Tokens
// outlive account deletion; such tokens fail here with ErrAccountNotFound.
func (r *IdentityResolver) Resolve(ctx context.Context, header string) (*domain.Account, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, ErrMissingAuth
	}

	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return nil, ErrInvalidScheme
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	account, err := r.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	return account.Sanitized(), nil
}
