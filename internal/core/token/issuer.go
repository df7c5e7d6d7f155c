// Package token issues and verifies the JWT access/refresh token pairs.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"authgate/internal/domain"
)

type claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	TokenType string `json:"typ"`
}

type Issuer struct {
	secret          []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration

	// now is swappable for tests.
	now func() time.Time
}

func NewIssuer(secret string, accessLifetime, refreshLifetime time.Duration) *Issuer {
	return &Issuer{
		secret:          []byte(secret),
		accessLifetime:  accessLifetime,
		refreshLifetime: refreshLifetime,
		now:             time.Now,
	}
}

// IssuePair mints a fresh access/refresh pair for the user. Each token
// carries its own jti so the pair members revoke independently.
func (i *Issuer) IssuePair(user *domain.User) (*domain.TokenPair, error) {
	now := i.now()

	access, err := i.sign(user, domain.TokenTypeAccess, now, i.accessLifetime)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := i.sign(user, domain.TokenTypeRefresh, now, i.refreshLifetime)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &domain.TokenPair{
		Access:          access,
		Refresh:         refresh,
		AccessLifetime:  int64(i.accessLifetime.Seconds()),
		RefreshLifetime: int64(i.refreshLifetime.Seconds()),
	}, nil
}

func (i *Issuer) sign(user *domain.User, tokenType string, now time.Time, lifetime time.Duration) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
		TokenType: tokenType,
	}
	if tokenType == domain.TokenTypeAccess {
		c.Email = user.Email
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

// Verify parses the token, checks the signature and expiry, and rejects
// tokens of the wrong type. Revocation is the caller's concern.
func (i *Issuer) Verify(tokenString, tokenType string) (*domain.TokenClaims, error) {
	c := &claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}

	if c.TokenType != tokenType {
		return nil, domain.ErrTokenInvalid
	}

	var userID int64
	if _, err := fmt.Sscanf(c.Subject, "%d", &userID); err != nil {
		return nil, domain.ErrTokenInvalid
	}

	out := &domain.TokenClaims{
		UserID:    userID,
		Email:     c.Email,
		JTI:       c.ID,
		TokenType: c.TokenType,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}

	return out, nil
}
