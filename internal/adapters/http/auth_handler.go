// Package http
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"authgate/internal/adapters/http/middleware"
	"authgate/internal/adapters/http/response"
	"authgate/internal/core/auth"
	"authgate/internal/domain"
	"authgate/internal/logger"
)

type AuthHandler struct {
	svc domain.AuthService
	log logger.Logger
}

func NewAuthHandler(svc domain.AuthService, log logger.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

type authResponse struct {
	Message string            `json:"message"`
	User    *domain.User      `json:"user"`
	Tokens  *domain.TokenPair `json:"tokens"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ValidationError(w, "Registration failed", map[string][]string{
			"body": {"Invalid request body."},
		})
		return
	}

	if errs := ValidateStruct(&req); len(errs) > 0 {
		response.ValidationError(w, "Registration failed", errs)
		return
	}

	result, err := h.svc.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			response.ValidationError(w, "Registration failed", map[string][]string{
				"email": {"A user with this email already exists."},
			})
			return
		}

		h.log.Error("register failed", "error", err)
		response.InternalError(w)
		return
	}

	response.WriteJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		User:    result.User,
		Tokens:  result.Tokens,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ValidationError(w, "Login failed", map[string][]string{
			"body": {"Invalid request body."},
		})
		return
	}

	if errs := ValidateStruct(&req); len(errs) > 0 {
		response.ValidationError(w, "Login failed", errs)
		return
	}

	result, err := h.svc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			// Same body for unknown email and wrong password.
			response.AuthError(w, "Invalid email or password.", "authentication_failed", nil)
			return
		}

		h.log.Error("login failed", "error", err)
		response.InternalError(w)
		return
	}

	response.WriteJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		User:    result.User,
		Tokens:  result.Tokens,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.AuthError(w, "Authentication credentials were not provided.", "not_authenticated", nil)
		return
	}

	var req domain.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ValidationError(w, "Logout failed", map[string][]string{
			"body": {"Invalid request body."},
		})
		return
	}

	if errs := ValidateStruct(&req); len(errs) > 0 {
		response.ValidationError(w, "Logout failed", errs)
		return
	}

	if err := h.svc.Logout(r.Context(), claims, req.RefreshToken); err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			response.ValidationError(w, "Logout failed", map[string][]string{
				"refresh_token": {"Invalid token."},
			})
			return
		}

		h.log.Error("logout failed", "error", err)
		response.InternalError(w)
		return
	}

	response.WriteJSON(w, http.StatusOK, messageResponse{Message: "Logout successful"})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ValidationError(w, "Token refresh failed", map[string][]string{
			"body": {"Invalid request body."},
		})
		return
	}

	if errs := ValidateStruct(&req); len(errs) > 0 {
		response.ValidationError(w, "Token refresh failed", errs)
		return
	}

	tokens, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			response.AuthError(w, "Given token not valid for any token type", "token_not_valid",
				[]string{"Token is invalid or expired"})
			return
		}

		h.log.Error("refresh failed", "error", err)
		response.InternalError(w)
		return
	}

	response.WriteJSON(w, http.StatusOK, struct {
		Message string            `json:"message"`
		Tokens  *domain.TokenPair `json:"tokens"`
	}{
		Message: "Token refreshed successfully",
		Tokens:  tokens,
	})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.AuthError(w, "Authentication credentials were not provided.", "not_authenticated", nil)
		return
	}

	user, err := h.svc.Profile(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			response.AuthError(w, "Given token not valid for any token type", "token_not_valid",
				[]string{"User no longer exists"})
			return
		}

		h.log.Error("profile failed", "error", err)
		response.InternalError(w)
		return
	}

	response.WriteJSON(w, http.StatusOK, struct {
		Message string       `json:"message"`
		User    *domain.User `json:"user"`
	}{
		Message: "User profile retrieved successfully",
		User:    user,
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req domain.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ValidationError(w, "Invalid email address", map[string][]string{
			"body": {"Invalid request body."},
		})
		return
	}

	if errs := ValidateStruct(&req); len(errs) > 0 {
		response.ValidationError(w, "Invalid email address", errs)
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		h.log.Error("forgot password failed", "error", err)
		response.InternalError(w)
		return
	}

	// Success-shaped whether or not the email exists. The token itself goes
	// out-of-band only.
	response.WriteJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		Email   string `json:"email"`
	}{
		Message: "Password reset token sent to your email",
		Email:   auth.NormalizeEmail(req.Email),
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ValidationError(w, "Invalid data provided", map[string][]string{
			"body": {"Invalid request body."},
		})
		return
	}

	if errs := ValidateStruct(&req); len(errs) > 0 {
		response.ValidationError(w, "Invalid data provided", errs)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			response.ValidationError(w, "Password reset failed", map[string][]string{
				"token": {"Invalid or expired token."},
			})
			return
		}

		h.log.Error("reset password failed", "error", err)
		response.InternalError(w)
		return
	}

	response.WriteJSON(w, http.StatusOK, messageResponse{Message: "Password reset successful"})
}

func (h *AuthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.svc.Health(r.Context())

	body := struct {
		Status     string `json:"status"`
		Message    string `json:"message"`
		Database   string `json:"database"`
		Cache      string `json:"cache"`
		TotalUsers int64  `json:"total_users"`
		Timestamp  string `json:"timestamp"`
	}{
		Status:     "healthy",
		Message:    "Authentication API is running successfully",
		Database:   status.Database,
		Cache:      status.Cache,
		TotalUsers: status.TotalUsers,
		Timestamp:  status.CheckedAt.Format(time.RFC3339),
	}

	if !status.Healthy {
		body.Status = "unhealthy"
		body.Message = "One or more collaborators are unavailable"
		response.WriteJSON(w, http.StatusServiceUnavailable, body)
		return
	}

	response.WriteJSON(w, http.StatusOK, body)
}
