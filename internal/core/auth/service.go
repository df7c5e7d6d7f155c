// Package auth orchestrates the authentication session lifecycle over the
// injected collaborators: credential store, password hasher, token issuer,
// revocation set, and reset token store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"authgate/internal/domain"
	"authgate/internal/logger"
)

const resetTokenTTL = 600 * time.Second

type Service struct {
	users   domain.UserRepository
	hasher  domain.PasswordHasher
	tokens  domain.TokenIssuer
	revoked domain.RevocationSet
	resets  domain.ResetTokenStore
	mailer  domain.Mailer
	cache   domain.CachePinger
	log     logger.Logger

	refreshLifetime time.Duration
	now             func() time.Time
}

type ServiceDeps struct {
	Users   domain.UserRepository
	Hasher  domain.PasswordHasher
	Tokens  domain.TokenIssuer
	Revoked domain.RevocationSet
	Resets  domain.ResetTokenStore
	Mailer  domain.Mailer
	Cache   domain.CachePinger
	Log     logger.Logger

	RefreshLifetime time.Duration
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		users:           deps.Users,
		hasher:          deps.Hasher,
		tokens:          deps.Tokens,
		revoked:         deps.Revoked,
		resets:          deps.Resets,
		mailer:          deps.Mailer,
		cache:           deps.Cache,
		log:             deps.Log,
		refreshLifetime: deps.RefreshLifetime,
		now:             time.Now,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        NormalizeEmail(req.Email),
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hashed,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.log.Info("user registered", "user_id", user.ID, "email", user.Email)

	return &domain.AuthResult{User: user, Tokens: tokens}, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn a hash comparison anyway so a miss is not
			// distinguishable by response time.
			s.hasher.Verify(req.Password, dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now

	return &domain.AuthResult{User: user, Tokens: tokens}, nil
}

// Authenticate verifies an access token against signature, expiry, the
// revocation set, and the per-user revocation epoch.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*domain.TokenClaims, error) {
	claims, err := s.tokens.Verify(accessToken, domain.TokenTypeAccess)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	if err := s.checkRevocation(ctx, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

func (s *Service) Logout(ctx context.Context, access *domain.TokenClaims, refreshToken string) error {
	claims, err := s.tokens.Verify(refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return domain.ErrTokenInvalid
	}

	if claims.UserID != access.UserID {
		return domain.ErrTokenInvalid
	}

	// Revoking an already revoked token is a no-op success.
	if err := s.revoke(ctx, claims); err != nil {
		return err
	}
	if err := s.revoke(ctx, access); err != nil {
		return err
	}

	s.log.Info("user logged out", "user_id", access.UserID)

	return nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	if err := s.checkRevocation(ctx, claims); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	// Rotate: the presented refresh token dies before its successor is born.
	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	return tokens, nil
}

func (s *Service) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// ForgotPassword issues a single-use reset token and hands it to the mailer.
// An unknown email is not an error: the caller gets the same success-shaped
// answer either way, and the token only ever travels out-of-band.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("get user by email: %w", err)
	}

	token, err := GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	if err := s.resets.Store(ctx, token, user.ID, resetTokenTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.FullName, token); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	s.log.Info("password reset requested", "user_id", user.ID)

	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	userID, err := s.resets.Consume(ctx, req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("update password: %w", err)
	}

	// Session fixation guard: every token issued before this moment is dead.
	if err := s.revoked.RevokeAllForUser(ctx, userID, s.refreshLifetime); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}

	s.log.Info("password reset completed", "user_id", userID)

	return nil
}

func (s *Service) Health(ctx context.Context) *domain.HealthStatus {
	status := &domain.HealthStatus{
		Healthy:   true,
		Database:  "connected",
		Cache:     "connected",
		CheckedAt: s.now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.users.Count(gctx)
		if err != nil {
			status.Database = "disconnected"
			s.log.Error("health: database check failed", "error", err)
			return nil
		}
		status.TotalUsers = count
		return nil
	})

	g.Go(func() error {
		if err := s.cache.Ping(gctx); err != nil {
			status.Cache = "disconnected"
			s.log.Error("health: cache check failed", "error", err)
		}
		return nil
	})

	_ = g.Wait()

	status.Healthy = status.Database == "connected" && status.Cache == "connected"

	return status
}

func (s *Service) checkRevocation(ctx context.Context, claims *domain.TokenClaims) error {
	revoked, err := s.revoked.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return domain.ErrTokenInvalid
	}

	epoch, err := s.revoked.UserRevokedAt(ctx, claims.UserID)
	if err != nil {
		return fmt.Errorf("check revocation epoch: %w", err)
	}
	if !epoch.IsZero() && claims.IssuedAt.Before(epoch) {
		return domain.ErrTokenInvalid
	}

	return nil
}

func (s *Service) revoke(ctx context.Context, claims *domain.TokenClaims) error {
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.JTI, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ domain.AuthService = (*Service)(nil)
