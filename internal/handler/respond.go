package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chorushq/chorus/internal/service"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// errorKinds maps service sentinel errors to a stable machine-readable kind
// and HTTP status. Anything unmapped is an internal error with no detail
// leaked to the caller.
var errorKinds = []struct {
	err    error
	kind   string
	status int
}{
	{service.ErrEmailTaken, "email_taken", http.StatusConflict},
	{service.ErrNicknameTaken, "nickname_taken", http.StatusConflict},
	{service.ErrGithubLoginTaken, "github_login_taken", http.StatusConflict},
	{service.ErrCurrentPasswordRequired, "current_password_required", http.StatusConflict},
	{service.ErrInvalidCredentials, "invalid_credentials", http.StatusUnauthorized},
	{service.ErrInvalidCurrentPassword, "invalid_current_password", http.StatusUnauthorized},
	{service.ErrInvalidToken, "invalid_token", http.StatusUnauthorized},
	{service.ErrAccountNotFound, "account_not_found", http.StatusUnauthorized},
	{service.ErrGoogleNotConfigured, "google_not_configured", http.StatusServiceUnavailable},
	{service.ErrGoogleExchangeFailed, "token_exchange_failed", http.StatusBadGateway},
	{service.ErrGoogleProfileFetchFailed, "profile_fetch_failed", http.StatusBadGateway},
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, err error) {
	for _, mapping := range errorKinds {
		if errors.Is(err, mapping.err) {
			WriteJSON(w, mapping.status, errorResponse{Error: errorBody{
				Kind:    mapping.kind,
				Message: mapping.err.Error(),
			}})
			return
		}
	}

	slog.Error("unhandled error", "error", err)
	WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{
		Kind:    "internal",
		Message: "internal server error",
	}})
}

func writeValidationError(w http.ResponseWriter, err error) {
	WriteJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
		Kind:    "validation_failed",
		Message: err.Error(),
	}})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
			Kind:    "malformed_body",
			Message: "request body must be valid JSON",
		}})
		return false
	}
	return true
}
