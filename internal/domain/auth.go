package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrResetTokenInvalid  = errors.New("invalid or expired reset token")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	AccessTokenLifetime  = 3600 * time.Second
	RefreshTokenLifetime = 604800 * time.Second
)

type TokenPair struct {
	Access          string `json:"access"`
	Refresh         string `json:"refresh"`
	AccessLifetime  int64  `json:"access_token_lifetime"`
	RefreshLifetime int64  `json:"refresh_token_lifetime"`
}

// TokenClaims is the decoded view of a verified token.
type TokenClaims struct {
	UserID    int64
	Email     string
	JTI       string
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	FullName        string `json:"full_name" validate:"required,fullname"`
	Password        string `json:"password" validate:"required,min=8,notcommon"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token              string `json:"token" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8,notcommon"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

type AuthResult struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Logout(ctx context.Context, access *TokenClaims, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Profile(ctx context.Context, userID int64) (*User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	Authenticate(ctx context.Context, accessToken string) (*TokenClaims, error)
	Health(ctx context.Context) *HealthStatus
}

type TokenIssuer interface {
	IssuePair(user *User) (*TokenPair, error)
	Verify(token, tokenType string) (*TokenClaims, error)
}

// RevocationSet stores tokens invalidated before their natural expiry.
// Entries only need to outlive the token they shadow, so every write
// carries a TTL.
type RevocationSet interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeAllForUser invalidates every token issued to the user before now.
	RevokeAllForUser(ctx context.Context, userID int64, ttl time.Duration) error
	UserRevokedAt(ctx context.Context, userID int64) (time.Time, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type RateLimiter interface {
	// Allow records one attempt for key and reports whether it stays within
	// limit attempts per window. When denied, retryAfter is how long the
	// caller must wait before the window frees up.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}

type ResetTokenStore interface {
	Store(ctx context.Context, token string, userID int64, ttl time.Duration) error

	// Consume atomically looks up and deletes the token, returning the bound
	// user ID. Returns ErrResetTokenInvalid when the token is unknown,
	// expired, or already used.
	Consume(ctx context.Context, token string) (int64, error)
}

type Mailer interface {
	SendPasswordReset(ctx context.Context, email, fullName, token string) error
}
