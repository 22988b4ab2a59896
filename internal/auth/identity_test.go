package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uarchive/internal/clock"
	"uarchive/internal/domain"
	"uarchive/internal/repository"
)

type fakeAccounts struct {
	accounts map[string]*domain.Account
	err      error
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	account, ok := f.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return account, nil
}

func newIdentityFixture(t *testing.T) (*IdentityResolver, *TokenService, *clock.MockClock, *fakeAccounts) {
	t.Helper()
	clk := clock.NewMockClock(epoch)
	tokens := NewTokenService("test-secret", time.Hour, clk)
	accounts := &fakeAccounts{accounts: map[string]*domain.Account{
		"user-1": {ID: "user-1", Username: "alice", PasswordHash: "$argon2id$stored"},
	}}
	return NewIdentityResolver(tokens, accounts), tokens, clk, accounts
}

func TestIdentityResolve(t *testing.T) {
	resolver, tokens, _, _ := newIdentityFixture(t)

	token, err := tokens.Issue("user-1", "alice", time.Hour)
	require.NoError(t, err)

	account, err := resolver.Resolve(context.Background(), "Bearer "+token.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
	assert.Empty(t, account.PasswordHash)

	account, err = resolver.Resolve(context.Background(), "  bearer "+token.Value+"  ")
	require.NoError(t, err)
	assert.Equal(t, "user-1", account.ID)
}

func TestIdentityResolveFailures(t *testing.T) {
	resolver, tokens, clk, accounts := newIdentityFixture(t)

	valid, err := tokens.Issue("user-1", "alice", time.Hour)
	require.NoError(t, err)
	orphan, err := tokens.Issue("user-gone", "bob", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{name: "missing", header: "", want: ErrMissingAuth},
		{name: "blank", header: "   ", want: ErrMissingAuth},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", want: ErrInvalidScheme},
		{name: "no scheme", header: valid.Value, want: ErrInvalidScheme},
		{name: "empty token", header: "Bearer", want: ErrMalformedToken},
		{name: "garbage token", header: "Bearer abc", want: ErrMalformedToken},
		{name: "deleted account", header: "Bearer " + orphan.Value, want: ErrAccountNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolver.Resolve(context.Background(), tc.header)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("expired", func(t *testing.T) {
		clk.Advance(2 * time.Hour)
		defer clk.Set(epoch)
		_, err := resolver.Resolve(context.Background(), "Bearer "+valid.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("store failure", func(t *testing.T) {
		storeErr := errors.New("disk on fire")
		accounts.err = storeErr
		defer func() { accounts.err = nil }()

		_, err := resolver.Resolve(context.Background(), "Bearer "+valid.Value)
		assert.ErrorIs(t, err, storeErr)
		assert.NotErrorIs(t, err, ErrAccountNotFound)
	})
}
