// Package response writes the JSON envelopes of the auth API. Each error
// status class has its own body shape.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

type validationErrorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

type authErrorBody struct {
	Detail   string   `json:"detail"`
	Code     string   `json:"code"`
	Messages []string `json:"messages"`
}

type rateLimitErrorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int64  `json:"retry_after"`
}

type notFoundBody struct {
	Detail string `json:"detail"`
}

type internalErrorBody struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ValidationError(w http.ResponseWriter, message string, errs map[string][]string) {
	if errs == nil {
		errs = map[string][]string{}
	}
	WriteJSON(w, http.StatusBadRequest, validationErrorBody{
		Message: message,
		Errors:  errs,
	})
}

func AuthError(w http.ResponseWriter, detail, code string, messages []string) {
	if messages == nil {
		messages = []string{}
	}
	WriteJSON(w, http.StatusUnauthorized, authErrorBody{
		Detail:   detail,
		Code:     code,
		Messages: messages,
	})
}

func RateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int64(retryAfter.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
	WriteJSON(w, http.StatusTooManyRequests, rateLimitErrorBody{
		Error:      "Rate limit exceeded",
		Message:    "Too many requests. Please try again later.",
		RetryAfter: seconds,
	})
}

func NotFound(w http.ResponseWriter) {
	WriteJSON(w, http.StatusNotFound, notFoundBody{Detail: "Not found."})
}

func InternalError(w http.ResponseWriter) {
	WriteJSON(w, http.StatusInternalServerError, internalErrorBody{
		Status:    "error",
		Message:   "Internal server error",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
