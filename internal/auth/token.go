package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"uarchive/internal/clock"
)

// Claims is the payload carried by an access token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Token is a signed access token and the instant it stops being accepted.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256 access tokens. The secret is fixed for the
// lifetime of the process; changing it invalidates every token issued before.
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
	clock      clock.Clock
}

func NewTokenService(secret string, defaultTTL time.Duration, clk clock.Clock) *TokenService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &TokenService{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		clock:      clk,
	}
}

// DefaultTTL is the configured token lifetime.
func (s *TokenService) DefaultTTL() time.Duration {
	return s.defaultTTL
}

// Issue signs a token for subjectID valid for ttl from now. A non-positive ttl yields
// a token that is already expired.
func (s *TokenService) Issue(subjectID, username string, ttl time.Duration) (Token, error) {
	now := s.clock.Now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded claims.
func (s *TokenService) Verify(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrMalformedToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" || claims.Username == "" {
		return Claims{}, fmt.Errorf("%w: missing subject or username", ErrMalformedToken)
	}
	return claims, nil
}
