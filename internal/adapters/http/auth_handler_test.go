package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/internal/config"
	"authgate/internal/domain"
)

// stubAuthService satisfies domain.AuthService with canned responses.
type stubAuthService struct {
	registerResult *domain.AuthResult
	registerErr    error
	loginResult    *domain.AuthResult
	loginErr       error
	logoutErr      error
	refreshTokens  *domain.TokenPair
	refreshErr     error
	profileUser    *domain.User
	profileErr     error
	forgotErr      error
	resetErr       error
	authClaims     *domain.TokenClaims
	authErr        error
	health         *domain.HealthStatus
}

func (s *stubAuthService) Register(context.Context, domain.RegisterRequest) (*domain.AuthResult, error) {
	return s.registerResult, s.registerErr
}

func (s *stubAuthService) Login(context.Context, domain.LoginRequest) (*domain.AuthResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) Logout(context.Context, *domain.TokenClaims, string) error {
	return s.logoutErr
}

func (s *stubAuthService) Refresh(context.Context, string) (*domain.TokenPair, error) {
	return s.refreshTokens, s.refreshErr
}

func (s *stubAuthService) Profile(context.Context, int64) (*domain.User, error) {
	return s.profileUser, s.profileErr
}

func (s *stubAuthService) ForgotPassword(context.Context, string) error { return s.forgotErr }

func (s *stubAuthService) ResetPassword(context.Context, domain.ResetPasswordRequest) error {
	return s.resetErr
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.TokenClaims, error) {
	return s.authClaims, s.authErr
}

func (s *stubAuthService) Health(context.Context) *domain.HealthStatus {
	if s.health != nil {
		return s.health
	}
	return &domain.HealthStatus{
		Healthy:   true,
		Database:  "connected",
		Cache:     "connected",
		CheckedAt: time.Now().UTC(),
	}
}

// fakeLimiter counts attempts in memory.
type fakeLimiter struct {
	hits map[string]int
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{hits: map[string]int{}}
}

func (l *fakeLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, time.Duration, error) {
	l.hits[key]++
	if l.hits[key] > limit {
		return false, 30 * time.Second, nil
	}
	return true, 0, nil
}

func testRouter(svc domain.AuthService, limiter domain.RateLimiter) http.Handler {
	log := slog.New(slog.DiscardHandler)
	cfg := &config.Config{RequestTimeout: 5 * time.Second}

	return NewRouter(cfg, &RouterDeps{
		Auth:    NewAuthHandler(svc, log),
		Svc:     svc,
		Limiter: limiter,
		Log:     log,
	})
}

func sampleUser() *domain.User {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return &domain.User{
		ID:        1,
		Email:     "a@b.com",
		FullName:  "A",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func samplePair() *domain.TokenPair {
	return &domain.TokenPair{
		Access:          "access-token",
		Refresh:         "refresh-token",
		AccessLifetime:  3600,
		RefreshLifetime: 604800,
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterEndpoint(t *testing.T) {
	svc := &stubAuthService{
		registerResult: &domain.AuthResult{User: sampleUser(), Tokens: samplePair()},
	}
	router := testRouter(svc, newFakeLimiter())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register/",
		`{"email":"a@b.com","full_name":"A","password":"Passw0rd!","password_confirm":"Passw0rd!"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	user := body["user"].(map[string]any)
	tokens := body["tokens"].(map[string]any)

	assert.Equal(t, "a@b.com", user["email"])
	assert.NotEmpty(t, tokens["access"])
	assert.NotEmpty(t, tokens["refresh"])
	assert.EqualValues(t, 3600, tokens["access_token_lifetime"])
	assert.EqualValues(t, 604800, tokens["refresh_token_lifetime"])
}

func TestRegisterValidationEnvelope(t *testing.T) {
	router := testRouter(&stubAuthService{}, newFakeLimiter())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register/",
		`{"email":"not-an-email","full_name":"A","password":"short","password_confirm":"other"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Registration failed", body["message"])

	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "password_confirm")
}

func TestRegisterDuplicateEmailEnvelope(t *testing.T) {
	svc := &stubAuthService{registerErr: domain.ErrEmailAlreadyExists}
	router := testRouter(svc, newFakeLimiter())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register/",
		`{"email":"a@b.com","full_name":"A","password":"Passw0rd!","password_confirm":"Passw0rd!"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs := decodeBody(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "email")
}

func TestLoginInvalidCredentialsEnvelope(t *testing.T) {
	svc := &stubAuthService{loginErr: domain.ErrInvalidCredentials}
	router := testRouter(svc, newFakeLimiter())

	wrongPass := doJSON(t, router, http.MethodPost, "/api/v1/auth/login/",
		`{"email":"a@b.com","password":"wrong"}`, nil)
	unknownUser := doJSON(t, router, http.MethodPost, "/api/v1/auth/login/",
		`{"email":"nobody@b.com","password":"Passw0rd!"}`, nil)

	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)

	// No user-enumeration signal in the body.
	assert.JSONEq(t, wrongPass.Body.String(), unknownUser.Body.String())

	body := decodeBody(t, wrongPass)
	assert.Equal(t, "Invalid email or password.", body["detail"])
	assert.Equal(t, "authentication_failed", body["code"])
}

func TestLoginSuccess(t *testing.T) {
	svc := &stubAuthService{
		loginResult: &domain.AuthResult{User: sampleUser(), Tokens: samplePair()},
	}
	router := testRouter(svc, newFakeLimiter())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login/",
		`{"email":"a@b.com","password":"Passw0rd!"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", decodeBody(t, rec)["message"])
}

func TestRateLimitEnvelope(t *testing.T) {
	svc := &stubAuthService{loginErr: domain.ErrInvalidCredentials}
	router := testRouter(svc, newFakeLimiter())

	body := `{"email":"a@b.com","password":"wrong"}`
	for range 5 {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login/", body, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login/", body, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, "Rate limit exceeded", payload["error"])
	assert.Greater(t, payload["retry_after"].(float64), float64(0))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitKeyedByIP(t *testing.T) {
	svc := &stubAuthService{loginErr: domain.ErrInvalidCredentials}
	router := testRouter(svc, newFakeLimiter())

	body := `{"email":"a@b.com","password":"wrong"}`
	for range 6 {
		doJSON(t, router, http.MethodPost, "/api/v1/auth/login/", body, nil)
	}

	// A different client is not throttled.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login/", body,
		map[string]string{"X-Forwarded-For": "10.1.2.3"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileRequiresBearer(t *testing.T) {
	svc := &stubAuthService{authErr: domain.ErrTokenInvalid}
	router := testRouter(svc, newFakeLimiter())

	noHeader := doJSON(t, router, http.MethodGet, "/api/v1/auth/profile/", "", nil)
	require.Equal(t, http.StatusUnauthorized, noHeader.Code)
	assert.Equal(t, "not_authenticated", decodeBody(t, noHeader)["code"])

	badToken := doJSON(t, router, http.MethodGet, "/api/v1/auth/profile/", "",
		map[string]string{"Authorization": "Bearer bogus"})
	require.Equal(t, http.StatusUnauthorized, badToken.Code)

	body := decodeBody(t, badToken)
	assert.Equal(t, "token_not_valid", body["code"])
	assert.Equal(t, "Given token not valid for any token type", body["detail"])
}

func TestProfileSuccess(t *testing.T) {
	svc := &stubAuthService{
		authClaims:  &domain.TokenClaims{UserID: 1, TokenType: domain.TokenTypeAccess},
		profileUser: sampleUser(),
	}
	router := testRouter(svc, newFakeLimiter())

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/profile/", "",
		map[string]string{"Authorization": "Bearer good"})

	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	user := body["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
	assert.NotContains(t, user, "password_hash")
}

func TestLogoutEndpoint(t *testing.T) {
	svc := &stubAuthService{
		authClaims: &domain.TokenClaims{UserID: 1, TokenType: domain.TokenTypeAccess},
	}
	router := testRouter(svc, newFakeLimiter())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout/",
		`{"refresh_token":"refresh-token"}`,
		map[string]string{"Authorization": "Bearer good"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful", decodeBody(t, rec)["message"])
}

func TestLogoutInvalidRefreshToken(t *testing.T) {
	svc := &stubAuthService{
		authClaims: &domain.TokenClaims{UserID: 1, TokenType: domain.TokenTypeAccess},
		logoutErr:  domain.ErrTokenInvalid,
	}
	router := testRouter(svc, newFakeLimiter())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout/",
		`{"refresh_token":"bogus"}`,
		map[string]string{"Authorization": "Bearer good"})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs := decodeBody(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "refresh_token")
}

func TestRefreshEndpoint(t *testing.T) {
	svc := &stubAuthService{refreshTokens: samplePair()}
	router := testRouter(svc, newFakeLimiter())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh/",
		`{"refresh_token":"refresh-token"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	tokens := decodeBody(t, rec)["tokens"].(map[string]any)
	assert.NotEmpty(t, tokens["access"])
}

func TestRefreshRejectsRotatedToken(t *testing.T) {
	svc := &stubAuthService{refreshErr: domain.ErrTokenInvalid}
	router := testRouter(svc, newFakeLimiter())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh/",
		`{"refresh_token":"already-rotated"}`, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token_not_valid", decodeBody(t, rec)["code"])
}

func TestForgotPasswordNeverEchoesToken(t *testing.T) {
	router := testRouter(&stubAuthService{}, newFakeLimiter())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/forgot-password/",
		`{"email":"a@b.com"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "a@b.com", body["email"])
	assert.NotContains(t, body, "token")
}

func TestResetPasswordInvalidToken(t *testing.T) {
	svc := &stubAuthService{resetErr: domain.ErrResetTokenInvalid}
	router := testRouter(svc, newFakeLimiter())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/reset-password/",
		`{"token":"bogus","new_password":"NewPassw0rd!","new_password_confirm":"NewPassw0rd!"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Password reset failed", body["message"])
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "token")
}

func TestHealthEndpoint(t *testing.T) {
	svc := &stubAuthService{
		health: &domain.HealthStatus{
			Healthy:    true,
			Database:   "connected",
			Cache:      "connected",
			TotalUsers: 25,
			CheckedAt:  time.Now().UTC(),
		},
	}
	router := testRouter(svc, newFakeLimiter())

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/health/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.EqualValues(t, 25, body["total_users"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHealthDegraded(t *testing.T) {
	svc := &stubAuthService{
		health: &domain.HealthStatus{
			Healthy:   false,
			Database:  "disconnected",
			Cache:     "connected",
			CheckedAt: time.Now().UTC(),
		},
	}
	router := testRouter(svc, newFakeLimiter())

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/health/", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", decodeBody(t, rec)["status"])
}

func TestUnknownRouteEnvelope(t *testing.T) {
	router := testRouter(&stubAuthService{}, newFakeLimiter())

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/unknown/", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found.", decodeBody(t, rec)["detail"])
}

func TestLivenessRoute(t *testing.T) {
	router := testRouter(&stubAuthService{}, newFakeLimiter())

	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
