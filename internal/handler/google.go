package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/chorushq/chorus/internal/ctxkeys"
	"github.com/chorushq/chorus/internal/service"
)

type googleHandler struct {
	googleService *service.GoogleService
	isProduction  bool
}

func NewGoogleHandler(googleService *service.GoogleService, isProduction bool) *googleHandler {
	return &googleHandler{
		googleService: googleService,
		isProduction:  isProduction,
	}
}

// Auth redirects to the Google consent screen with a CSRF state cookie
func (h *googleHandler) Auth(w http.ResponseWriter, r *http.Request) {
	state := generateOAuthState()

	url, err := h.googleService.AuthorizationURL(state)
	if err != nil {
		WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Callback validates the state cookie, then completes the code exchange and
// identity reconciliation
func (h *googleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie("oauth_state")
	if err != nil || cookie.Value != state || state == "" {
		WriteJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
			Kind:    "invalid_oauth_state",
			Message: "oauth state validation failed",
		}})
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		WriteJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
			Kind:    "missing_code",
			Message: "authorization code is required",
		}})
		return
	}

	result, err := h.googleService.CompleteAuthorization(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

type connectedResponse struct {
	Connected bool `json:"connected"`
}

func (h *googleHandler) Connected(w http.ResponseWriter, r *http.Request) {
	account := ctxkeys.Account(r.Context())

	connected, err := h.googleService.Connected(account.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, connectedResponse{Connected: connected})
}

// generateOAuthState creates a cryptographically secure random state token
// for OAuth CSRF protection
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
